// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render defines the typed contexts that preprocess hooks fill in
// before a theme template is executed, and helpers for writing the result.
package render

import (
	"html/template"
	"time"
)

// PageContext carries the variables of a full page render.
type PageContext struct {
	// Path is the request path, e.g. "/" or "/page/about".
	Path string
	// IsFrontPage is set when Path is the configured front page.
	IsFrontPage bool
	Lang        string
	Title       string
	Theme       string

	// Banner is the rendered front page slider.
	Banner template.HTML
	// Content is the main region markup.
	Content template.HTML

	Assets *Assets

	// Vars holds additional template variables set by hooks.
	Vars map[string]any
}

// NewPageContext creates a PageContext with empty assets and vars.
func NewPageContext(path string, isFrontPage bool, lang string) *PageContext {
	return &PageContext{
		Path:        path,
		IsFrontPage: isFrontPage,
		Lang:        lang,
		Assets:      NewAssets(),
		Vars:        make(map[string]any),
	}
}

// Set stores a template variable.
func (p *PageContext) Set(name string, value any) {
	if p.Vars == nil {
		p.Vars = make(map[string]any)
	}
	p.Vars[name] = value
}

// CommentContext carries the variables of a single comment render.
type CommentContext struct {
	Author  string
	Body    template.HTML
	Created time.Time

	// Submitted mirrors Created for templates that print the submission date.
	Submitted time.Time
	// DefaultPhoto is shown when the author has no picture.
	DefaultPhoto template.HTML
}
