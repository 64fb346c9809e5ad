// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug and path helpers for uploaded banner images
// and page routes.
package util

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	nonSlugRuns = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lowercases s, transliterates non-ASCII text ("Привет" becomes
// "privet") and joins the remaining alphanumeric runs with single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(unidecode.Unidecode(s))
	return strings.Trim(nonSlugRuns.ReplaceAllString(s, "-"), "-")
}

// IsValidSlug reports whether s is already in Slugify form.
func IsValidSlug(s string) bool {
	return validSlug.MatchString(s)
}

// SlugifyFilename slugifies the base name of filename and keeps its
// lowercased extension. An empty slug falls back to "file".
func SlugifyFilename(filename string) string {
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)

	base := Slugify(strings.TrimSuffix(filename, ext))
	if base == "" {
		base = "file"
	}
	if ext = nonSlugRuns.ReplaceAllString(strings.ToLower(ext), ""); ext == "" {
		return base
	}
	return base + "." + ext
}
