// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnsafePath is returned when a relative file path would leave its base
// directory or is otherwise unusable.
var ErrUnsafePath = errors.New("unsafe file path")

// ResolvePublicPath maps a slash separated path relative to a public files
// directory onto disk. Empty paths, absolute paths and any ".." segment are
// rejected, even when the cleaned result would stay inside base.
func ResolvePublicPath(base, rel string) (string, error) {
	rel = strings.TrimLeft(rel, "/")
	if rel == "" || strings.ContainsRune(rel, 0) || strings.Contains(rel, "\\") {
		return "", ErrUnsafePath
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", ErrUnsafePath
		}
	}

	cleaned := path.Clean(rel)
	if cleaned == "." {
		return "", ErrUnsafePath
	}

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absBase, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(full, absBase+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return full, nil
}
