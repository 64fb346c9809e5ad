// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/corporate-blue/internal/i18n"
	"github.com/olegiv/corporate-blue/internal/middleware"
	"github.com/olegiv/corporate-blue/internal/module"
	"github.com/olegiv/corporate-blue/internal/render"
	"github.com/olegiv/corporate-blue/internal/testutil"
	"github.com/olegiv/corporate-blue/internal/testutil/moduleutil"
	corporate_blue "github.com/olegiv/corporate-blue/modules/corporate_blue"
)

func TestMain(m *testing.M) {
	if err := i18n.Init(nil); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubComments map[string][]*render.CommentContext

func (s stubComments) ListComments(_ context.Context, slug string) ([]*render.CommentContext, error) {
	if slug == "broken" {
		return nil, errors.New("storage down")
	}
	return s[slug], nil
}

var commentTime = time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)

func newFrontendRouter(t *testing.T) (http.Handler, *module.HookRegistry) {
	t.Helper()
	return newFrontendRouterWith(t, stubComments{
		"about-us": {{Author: "anna", Body: "Nice page", Created: commentTime}},
	})
}

func newFrontendRouterWith(t *testing.T, comments CommentLister) (http.Handler, *module.HookRegistry) {
	t.Helper()

	mctx, hooks := moduleutil.TestModuleContext(t, testutil.TestDB(t))
	m := corporate_blue.New()
	require.NoError(t, m.Init(mctx))

	h := NewFrontendHandler(mctx.Themes, hooks, comments, "/", testutil.TestLogger())

	r := chi.NewRouter()
	r.Use(middleware.Language)
	r.Get("/", h.Home)
	r.Get("/search", h.Search)
	r.Get("/page/{slug}", h.Page)
	r.NotFound(h.NotFound)
	return r, hooks
}

func get(t *testing.T, h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFrontendHome(t *testing.T) {
	h, _ := newFrontendRouter(t)

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `<body class="front">`)
	assert.Contains(t, body, `<div id="orbitDemo">`)
	assert.Equal(t, 3, strings.Count(body, `class="img-sl"`))
	assert.Contains(t, body, `<script src="/themes/corporate_blue/js/slide.js"></script>`)
	assert.Contains(t, body, `<link rel="stylesheet" href="/themes/corporate_blue/css/slider.css">`)
	assert.Contains(t, body, `placeholder="Search"`)
	assert.Contains(t, body, `type="image"`)
	assert.NotContains(t, body, "\n\n")
}

func TestFrontendPage(t *testing.T) {
	h, _ := newFrontendRouter(t)

	rec := get(t, h, "/page/about-us")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `<body class="not-front">`)
	assert.Contains(t, body, "<h1>About Us</h1>")
	assert.NotContains(t, body, "orbitDemo")
	assert.NotContains(t, body, "slide.js")
	assert.Contains(t, body, `<img src="/themes/corporate_blue/images/default.png" />`)
	assert.Contains(t, body, "anna, 2026-03-04 05:06")
}

func TestFrontendPageWithoutComments(t *testing.T) {
	h, _ := newFrontendRouterWith(t, NoComments{})

	rec := get(t, h, "/page/about-us")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>About Us</h1>")
	assert.NotContains(t, rec.Body.String(), "Nice page")

	// No storage means no failure path either.
	assert.Equal(t, http.StatusOK, get(t, h, "/page/broken").Code)
}

func TestFrontendPageErrors(t *testing.T) {
	h, _ := newFrontendRouter(t)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/page/Not_A_Slug").Code)
	assert.Equal(t, http.StatusInternalServerError, get(t, h, "/page/broken").Code)
}

func TestFrontendSearch(t *testing.T) {
	h, _ := newFrontendRouter(t)

	rec := get(t, h, "/search?search_block_form=blue")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="blue"`)
	assert.Contains(t, body, "Your search yielded no results")
	assert.Equal(t, 2, strings.Count(body, `src="/themes/corporate_blue/images/search_icon.png"`))

	rec = get(t, h, "/search")
	assert.Contains(t, rec.Body.String(), "Enter the terms you wish to search for.")
}

func TestFrontendSearchLocalized(t *testing.T) {
	h, _ := newFrontendRouter(t)

	rec := get(t, h, "/search", "Accept-Language", "ru-RU,ru;q=0.9")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="ru">`)
	assert.Contains(t, body, `placeholder="Поиск"`)
}

func TestFrontendNotFound(t *testing.T) {
	h, _ := newFrontendRouter(t)

	rec := get(t, h, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestFrontendHookFailure(t *testing.T) {
	h, hooks := newFrontendRouter(t)

	hooks.Register(module.HookPagePreprocess, module.HookHandler{
		Name:     "failing",
		Module:   "test",
		Priority: -1,
		Fn: func(context.Context, any) (any, error) {
			return nil, errors.New("boom")
		},
	})

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
