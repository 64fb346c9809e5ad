// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"net/http"
	"regexp"
)

// blankLinesRegex matches runs of blank (or whitespace-only) lines.
var blankLinesRegex = regexp.MustCompile(`(?:\r?\n[ \t]*)+\r?\n`)

// CompactHTML collapses consecutive blank lines left behind by template actions.
func CompactHTML(b []byte) []byte {
	return blankLinesRegex.ReplaceAll(b, []byte("\n"))
}

// HTML writes a buffered HTML response with the given status.
func HTML(w http.ResponseWriter, status int, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(CompactHTML(buf.Bytes()))
}
