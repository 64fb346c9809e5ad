// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/corporate-blue/internal/util"
)

// FilesHandler serves the public files directory, e.g. uploaded banners,
// under a chi wildcard route. Directories are not listed.
type FilesHandler struct {
	dir string
}

// NewFilesHandler creates a handler serving files from dir.
func NewFilesHandler(dir string) *FilesHandler {
	return &FilesHandler{dir: dir}
}

// ServeHTTP handles GET {FilesPath}/*.
func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path, err := util.ResolvePublicPath(h.dir, chi.URLParam(r, "*"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}
