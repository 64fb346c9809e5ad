// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package form

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchForm() *Form {
	return New("search_block_form", "/search", "get").Add(
		&Element{Name: "search_block_form", Type: TypeTextField, Title: "Search"},
		&Element{Name: "actions", Type: TypeContainer, Children: []*Element{
			{Name: "submit", Type: TypeSubmit, Value: "Search"},
		}},
	)
}

func TestFind(t *testing.T) {
	f := searchForm()

	el, err := f.Find("actions", "submit")
	require.NoError(t, err)
	assert.Equal(t, TypeSubmit, el.Type)

	el, err = f.Find("search_block_form")
	require.NoError(t, err)
	assert.Equal(t, TypeTextField, el.Type)
}

func TestFind_Missing(t *testing.T) {
	f := searchForm()

	tests := [][]string{
		{},
		{"missing"},
		{"actions", "missing"},
		{"search_block_form", "submit"},
	}
	for _, path := range tests {
		_, err := f.Find(path...)
		assert.ErrorIs(t, err, ErrElementNotFound, "path %v", path)
	}
}

func TestReplace(t *testing.T) {
	f := searchForm()

	err := f.Replace(&Element{Name: "submit", Type: TypeImageButton, Src: "/icon.png"}, "actions", "submit")
	require.NoError(t, err)

	el, err := f.Find("actions", "submit")
	require.NoError(t, err)
	assert.Equal(t, TypeImageButton, el.Type)
	assert.Equal(t, "/icon.png", el.Src)

	actions, err := f.Find("actions")
	require.NoError(t, err)
	assert.Len(t, actions.Children, 1)
}

func TestReplace_TopLevel(t *testing.T) {
	f := searchForm()

	require.NoError(t, f.Replace(&Element{Name: "search_block_form", Type: TypeHidden}, "search_block_form"))
	assert.Equal(t, TypeHidden, f.Elements[0].Type)

	assert.ErrorIs(t, f.Replace(&Element{}, "nope"), ErrElementNotFound)
	assert.ErrorIs(t, f.Replace(&Element{}, "nope", "submit"), ErrElementNotFound)
	assert.ErrorIs(t, f.Replace(&Element{}), ErrElementNotFound)
}

func TestElementAttributes(t *testing.T) {
	el := &Element{}
	assert.Equal(t, "", el.Attr("placeholder"))

	el.SetAttr("placeholder", "Search")
	assert.Equal(t, "Search", el.Attr("placeholder"))
}

func TestRender(t *testing.T) {
	f := searchForm()
	text, err := f.Find("search_block_form")
	require.NoError(t, err)
	text.SetAttr("placeholder", `Find "it"`)

	html := string(f.Render())

	assert.True(t, strings.HasPrefix(html, `<form id="search-block-form" action="/search" method="get">`))
	assert.Contains(t, html, `name="form_id" value="search_block_form"`)
	assert.Contains(t, html, `placeholder="Find &#34;it&#34;"`)
	assert.Contains(t, html, `<input type="submit" name="op" value="Search" />`)
	assert.True(t, strings.HasSuffix(html, `</form>`))
}

func TestRender_ImageButton(t *testing.T) {
	f := searchForm()
	require.NoError(t, f.Replace(&Element{
		Name: "submit", Type: TypeImageButton, Value: "Search", Src: "/themes/corporate_blue/images/search_icon.png",
	}, "actions", "submit"))

	html := string(f.Render())
	assert.Contains(t, html, `<input type="image" name="op" src="/themes/corporate_blue/images/search_icon.png" value="Search" />`)
	assert.NotContains(t, html, `type="submit"`)
}
