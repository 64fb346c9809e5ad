// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"
	"strings"
	"sync"
)

// Assets collects the scripts and stylesheets a page needs.
// Adding a path twice keeps only the first occurrence.
type Assets struct {
	mu   sync.Mutex
	js   []string
	css  []string
	seen map[string]struct{}
}

// NewAssets creates an empty asset list.
func NewAssets() *Assets {
	return &Assets{seen: make(map[string]struct{})}
}

// AddJS registers a script URL.
func (a *Assets) AddJS(src string) {
	a.add(&a.js, "js:"+src, src)
}

// AddCSS registers a stylesheet URL.
func (a *Assets) AddCSS(href string) {
	a.add(&a.css, "css:"+href, href)
}

func (a *Assets) add(list *[]string, key, value string) {
	if value == "" {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seen == nil {
		a.seen = make(map[string]struct{})
	}
	if _, ok := a.seen[key]; ok {
		return
	}
	a.seen[key] = struct{}{}
	*list = append(*list, value)
}

// JS returns the registered scripts in insertion order.
func (a *Assets) JS() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.js...)
}

// CSS returns the registered stylesheets in insertion order.
func (a *Assets) CSS() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.css...)
}

// Scripts renders <script> tags for the registered scripts.
func (a *Assets) Scripts() template.HTML {
	var b strings.Builder
	for _, src := range a.JS() {
		b.WriteString(`<script src="` + template.HTMLEscapeString(src) + `"></script>` + "\n")
	}
	return template.HTML(b.String()) // #nosec G203 -- URLs are escaped
}

// Styles renders <link> tags for the registered stylesheets.
func (a *Assets) Styles() template.HTML {
	var b strings.Builder
	for _, href := range a.CSS() {
		b.WriteString(`<link rel="stylesheet" href="` + template.HTMLEscapeString(href) + `">` + "\n")
	}
	return template.HTML(b.String()) // #nosec G203 -- URLs are escaped
}
