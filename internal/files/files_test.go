// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package files

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_URL(t *testing.T) {
	r := NewResolver("https://example.com/", "sites/default/files/", "/var/files")

	tests := []struct {
		ref  string
		want string
	}{
		{"public://banners/slide-image-1.png", "https://example.com/sites/default/files/banners/slide-image-1.png"},
		{"public:///a.png", "https://example.com/sites/default/files/a.png"},
		{"http://cdn.example.com/a.png", "http://cdn.example.com/a.png"},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"//cdn.example.com/a.png", "//cdn.example.com/a.png"},
		{"a.png", "https://example.com/a.png"},
		{"/themes/corporate_blue/images/a.png", "https://example.com/themes/corporate_blue/images/a.png"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, r.URL(tt.ref))
		})
	}
}

func TestResolver_URL_RootRelative(t *testing.T) {
	r := NewResolver("", "/files", "uploads")

	assert.Equal(t, "/files/banners/b.png", r.URL("public://banners/b.png"))
	assert.Equal(t, "/b.png", r.URL("b.png"))
	assert.Equal(t, "", r.BaseURL())
	assert.Equal(t, "/files", r.FilesPath())
}

func TestResolver_LocalPath(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver("", "/files", dir)

	p, err := r.LocalPath("public://banners/slide-image-1.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "banners", "slide-image-1.png"), p)

	_, err = r.LocalPath("a.png")
	assert.ErrorIs(t, err, ErrNotPublic)

	_, err = r.LocalPath("public://../secret")
	assert.Error(t, err)

	_, err = r.LocalPath("public://")
	assert.Error(t, err)
}

func TestPublicRef(t *testing.T) {
	assert.Equal(t, "public://banners/a.png", PublicRef("banners", "a.png"))
	assert.Equal(t, "public://banners/a.png", PublicRef("/banners/", "", "a.png"))
}
