// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package files maps stored file references to servable URLs and to
// paths on disk.
//
// A reference is either a stream URI such as "public://banners/a.png",
// an absolute URL, or a path relative to the site root.
package files

import (
	"errors"
	"fmt"
	"strings"

	"github.com/olegiv/corporate-blue/internal/util"
)

// PublicScheme prefixes references to files under the public files directory.
const PublicScheme = "public://"

// ErrNotPublic is returned by LocalPath for references outside public://.
var ErrNotPublic = errors.New("files: not a public:// reference")

// Resolver turns file references into URLs and local paths.
type Resolver struct {
	baseURL   string
	filesPath string
	publicDir string
}

// NewResolver creates a Resolver. baseURL may be empty to produce
// root-relative URLs; filesPath is the URL path under which publicDir is served.
func NewResolver(baseURL, filesPath, publicDir string) *Resolver {
	filesPath = "/" + strings.Trim(filesPath, "/")
	if filesPath == "/" {
		filesPath = ""
	}
	return &Resolver{
		baseURL:   strings.TrimRight(baseURL, "/"),
		filesPath: filesPath,
		publicDir: publicDir,
	}
}

// URL returns the servable URL of ref.
func (r *Resolver) URL(ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, PublicScheme):
		return r.baseURL + r.filesPath + "/" + strings.TrimLeft(strings.TrimPrefix(ref, PublicScheme), "/")
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "//"):
		return ref
	default:
		return r.baseURL + "/" + strings.TrimLeft(ref, "/")
	}
}

// BaseURL returns the configured base URL without a trailing slash.
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// FilesPath returns the URL path of the public files directory.
func (r *Resolver) FilesPath() string {
	return r.filesPath
}

// PublicDir returns the directory holding public:// files.
func (r *Resolver) PublicDir() string {
	return r.publicDir
}

// LocalPath returns the on-disk path of a public:// reference.
func (r *Resolver) LocalPath(ref string) (string, error) {
	if !strings.HasPrefix(ref, PublicScheme) {
		return "", fmt.Errorf("%w: %q", ErrNotPublic, ref)
	}
	path, err := util.ResolvePublicPath(r.publicDir, strings.TrimPrefix(ref, PublicScheme))
	if err != nil {
		return "", fmt.Errorf("invalid file reference %q: %w", ref, err)
	}
	return path, nil
}

// PublicRef builds a public:// reference from path segments.
func PublicRef(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = strings.Trim(s, "/"); s != "" {
			parts = append(parts, s)
		}
	}
	return PublicScheme + strings.Join(parts, "/")
}
