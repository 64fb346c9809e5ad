// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme provides theme loading, switching, rendering and static
// asset serving for the frontend.
package theme

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/olegiv/corporate-blue/internal/render"
)

// Config represents the configuration loaded from theme.json.
type Config struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Author      string            `json:"author"`
	Description string            `json:"description"`
	Screenshot  string            `json:"screenshot"`
	Templates   map[string]string `json:"templates"`
	Settings    []Setting         `json:"settings"`
	Regions     []Region          `json:"regions,omitempty"`
}

// Setting represents a configurable option for a theme.
type Setting struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"` // text, color, image, select, banners
	Default string   `json:"default"`
	Options []string `json:"options,omitempty"`
}

// Region is a named area of the page layout.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Theme represents a loaded theme with its templates and configuration.
type Theme struct {
	Name         string                       // directory name (used as identifier)
	Config       Config                       // parsed theme.json
	Templates    *template.Template           // parsed templates
	Translations map[string]map[string]string // lang -> key -> translation (optional overrides)
	IsEmbedded   bool                         // true if theme is embedded in binary
	FS           fs.FS                        // theme root (theme.json, templates/, static/)
}

// GetTemplate returns the page name for a template key.
// Falls back to a default if not specified in theme config.
func (t *Theme) GetTemplate(name string) string {
	if path, ok := t.Config.Templates[name]; ok {
		return path
	}
	switch name {
	case "home", "page", "search", "404":
		return name
	}
	return "page"
}

// StaticFS returns the theme's static directory.
func (t *Theme) StaticFS() (fs.FS, error) {
	if t.FS == nil {
		return nil, fmt.Errorf("theme %s has no filesystem", t.Name)
	}
	return fs.Sub(t.FS, "static")
}

// RenderPage renders a page template within the base layout.
// pageName selects the "content_<pageName>" block defined by pages/<pageName>.html.
func (t *Theme) RenderPage(w io.Writer, pageName string, data any) error {
	if t.Templates.Lookup("layouts/base.html") == nil {
		return fmt.Errorf("base layout not found")
	}

	contentName := t.GetContentTemplateName(pageName)
	if t.Templates.Lookup(contentName) == nil {
		return fmt.Errorf("content template not found: %s", contentName)
	}

	// Clone so the per-render "content" alias does not leak between pages.
	clone, err := t.Templates.Clone()
	if err != nil {
		return fmt.Errorf("cloning template: %w", err)
	}

	contentDef := fmt.Sprintf(`{{define "content"}}{{template "%s" .}}{{end}}`, contentName)
	if _, err := clone.Parse(contentDef); err != nil {
		return fmt.Errorf("parsing content definition: %w", err)
	}

	var buf bytes.Buffer
	if err := clone.ExecuteTemplate(&buf, "layouts/base.html", data); err != nil {
		return err
	}

	_, err = w.Write(render.CompactHTML(buf.Bytes()))
	return err
}

// GetContentTemplateName returns the content template name for a given page.
// "pages/home.html" and "home" both map to "content_home".
func (t *Theme) GetContentTemplateName(pageName string) string {
	baseName := strings.TrimPrefix(pageName, "pages/")
	baseName = strings.TrimSuffix(baseName, ".html")
	return "content_" + baseName
}

// Translate returns a theme-specific translation for key.
func (t *Theme) Translate(lang, key string) (string, bool) {
	if t.Translations == nil {
		return "", false
	}
	if langMap, ok := t.Translations[lang]; ok {
		if translation, ok := langMap[key]; ok {
			return translation, true
		}
	}
	return "", false
}

// findSetting returns a setting by key, or nil if not found.
func (t *Theme) findSetting(key string) *Setting {
	for i := range t.Config.Settings {
		if t.Config.Settings[i].Key == key {
			return &t.Config.Settings[i]
		}
	}
	return nil
}

// HasSetting returns true if the theme has a setting with the given key.
func (t *Theme) HasSetting(key string) bool {
	return t.findSetting(key) != nil
}

// GetSettingDefault returns the default value for a setting.
func (t *Theme) GetSettingDefault(key string) string {
	if s := t.findSetting(key); s != nil {
		return s.Default
	}
	return ""
}
