// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/corporate-blue/internal/i18n"
)

// URLPrefix is the URL path under which theme static files are served.
const URLPrefix = "/themes"

// ErrThemeNotFound is returned for unknown theme names.
var ErrThemeNotFound = errors.New("theme not found")

// Manager handles theme loading, switching, and rendering.
// Themes come from an embedded filesystem and an optional directory on
// disk; a directory theme overrides an embedded theme of the same name.
type Manager struct {
	embedded    fs.FS
	themesDir   string
	activeTheme *Theme
	themes      map[string]*Theme
	mu          sync.RWMutex
	logger      *slog.Logger
	funcMap     template.FuncMap
}

// NewManager creates a new theme manager. embedded may be nil and
// themesDir may be empty.
func NewManager(embedded fs.FS, themesDir string, logger *slog.Logger) *Manager {
	return &Manager{
		embedded:  embedded,
		themesDir: themesDir,
		themes:    make(map[string]*Theme),
		logger:    logger,
		funcMap:   make(template.FuncMap),
	}
}

// SetFuncMap sets the template function map to use when parsing templates.
// It must be called before LoadThemes.
func (m *Manager) SetFuncMap(funcMap template.FuncMap) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcMap = funcMap
}

// LoadThemes loads embedded themes, then themes from the themes directory.
func (m *Manager) LoadThemes() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.embedded != nil {
		if err := m.loadFrom(m.embedded, true); err != nil {
			return fmt.Errorf("loading embedded themes: %w", err)
		}
	}

	if m.themesDir != "" {
		if _, err := os.Stat(m.themesDir); os.IsNotExist(err) {
			m.logger.Debug("themes directory does not exist", "path", m.themesDir)
		} else if err := m.loadFrom(os.DirFS(m.themesDir), false); err != nil {
			return fmt.Errorf("reading themes directory: %w", err)
		}
	}

	// Keep the active pointer in sync with reloaded themes.
	if m.activeTheme != nil {
		if t, ok := m.themes[m.activeTheme.Name]; ok {
			m.activeTheme = t
		}
	}

	m.logger.Info("themes loaded", "count", len(m.themes))
	return nil
}

func (m *Manager) loadFrom(root fs.FS, embedded bool) error {
	entries, err := fs.ReadDir(root, ".")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		sub, err := fs.Sub(root, name)
		if err != nil {
			return err
		}

		t, err := m.loadTheme(name, sub, embedded)
		if err != nil {
			m.logger.Warn("failed to load theme", "theme", name, "error", err)
			continue
		}

		m.themes[name] = t
		m.logger.Info("loaded theme", "theme", name, "version", t.Config.Version, "embedded", embedded)
	}
	return nil
}

// loadTheme loads a single theme rooted at fsys.
func (m *Manager) loadTheme(name string, fsys fs.FS, embedded bool) (*Theme, error) {
	configData, err := fs.ReadFile(fsys, "theme.json")
	if err != nil {
		return nil, fmt.Errorf("reading theme.json: %w", err)
	}

	var config Config
	if err := json.Unmarshal(configData, &config); err != nil {
		return nil, fmt.Errorf("parsing theme.json: %w", err)
	}

	templates, err := m.parseTemplates(fsys)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	return &Theme{
		Name:         name,
		Config:       config,
		Templates:    templates,
		Translations: m.loadThemeTranslations(name, fsys),
		IsEmbedded:   embedded,
		FS:           fsys,
	}, nil
}

// loadThemeTranslations loads locales/{lang}/messages.json overrides.
// Returns nil if the theme has none.
func (m *Manager) loadThemeTranslations(name string, fsys fs.FS) map[string]map[string]string {
	translations := make(map[string]map[string]string)

	for _, lang := range i18n.SupportedLanguages {
		msgPath := path.Join("locales", lang, "messages.json")
		data, err := fs.ReadFile(fsys, msgPath)
		if err != nil {
			continue
		}

		var msgFile i18n.MessageFile
		if err := json.Unmarshal(data, &msgFile); err != nil {
			m.logger.Warn("failed to parse theme translations", "theme", name, "path", msgPath, "error", err)
			continue
		}

		translations[lang] = make(map[string]string, len(msgFile.Messages))
		for _, msg := range msgFile.Messages {
			translations[lang][msg.ID] = msg.Translation
		}
	}

	if len(translations) == 0 {
		return nil
	}
	return translations
}

// htmlFiles lists the .html files of dir, which may not exist.
func htmlFiles(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".html" {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files
}

// parseTemplates parses layouts, partials and pages under templates/.
// Layouts keep their relative path as name ("layouts/base.html"), partials
// use their file name ("header.html") and each page's "content" block is
// renamed to "content_<page>".
func (m *Manager) parseTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl := template.New("").Funcs(m.funcMap)

	parse := func(name, file string, rewrite func(string) string) error {
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		text := string(content)
		if rewrite != nil {
			text = rewrite(text)
		}
		if _, err := tmpl.New(name).Parse(text); err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}
		return nil
	}

	for _, f := range htmlFiles(fsys, "templates/layouts") {
		if err := parse(strings.TrimPrefix(f, "templates/"), f, nil); err != nil {
			return nil, err
		}
	}

	for _, f := range htmlFiles(fsys, "templates/partials") {
		if err := parse(path.Base(f), f, nil); err != nil {
			return nil, err
		}
	}

	for _, f := range htmlFiles(fsys, "templates/pages") {
		contentName := "content_" + strings.TrimSuffix(path.Base(f), ".html")
		rewrite := func(s string) string {
			return strings.Replace(s, `{{define "content"}}`, fmt.Sprintf(`{{define "%s"}}`, contentName), 1)
		}
		if err := parse(strings.TrimPrefix(f, "templates/"), f, rewrite); err != nil {
			return nil, err
		}
	}

	return tmpl, nil
}

// SetActiveTheme sets the active theme by name.
func (m *Manager) SetActiveTheme(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.themes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}

	m.activeTheme = t
	m.logger.Info("active theme set", "theme", name)
	return nil
}

// GetActiveTheme returns the currently active theme.
func (m *Manager) GetActiveTheme() *Theme {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeTheme
}

// GetTheme returns a theme by name.
func (m *Manager) GetTheme(name string) (*Theme, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.themes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}
	return t, nil
}

// ListThemes returns the names of all loaded themes, sorted.
func (m *Manager) ListThemes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasTheme checks if a theme exists.
func (m *Manager) HasTheme(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.themes[name]
	return ok
}

// IsEmbedded reports whether the named theme was loaded from the binary.
func (m *Manager) IsEmbedded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.themes[name]
	return ok && t.IsEmbedded
}

// ThemeCount returns the number of loaded themes.
func (m *Manager) ThemeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.themes)
}

// ThemesDir returns the themes directory path.
func (m *Manager) ThemesDir() string {
	return m.themesDir
}

// PublicPath returns the URL path of a theme's static directory.
func PublicPath(name string) string {
	return URLPrefix + "/" + name
}

// AssetURL returns the URL path of a theme static file, e.g.
// AssetURL("corporate_blue", "js/slide.js") is "/themes/corporate_blue/js/slide.js".
func AssetURL(name, rel string) string {
	return PublicPath(name) + "/" + strings.TrimLeft(rel, "/")
}

// ReadStatic reads a file from the static directory of the named theme.
// It works before LoadThemes by looking the theme up in the sources.
func (m *Manager) ReadStatic(name, rel string) ([]byte, error) {
	rel = strings.TrimLeft(rel, "/")
	if !fs.ValidPath(rel) {
		return nil, fmt.Errorf("invalid asset path %q", rel)
	}
	root, err := m.themeFS(name)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(root, path.Join("static", rel))
}

// themeFS returns the root filesystem of a theme, preferring loaded themes.
func (m *Manager) themeFS(name string) (fs.FS, error) {
	if !fs.ValidPath(name) || strings.Contains(name, "/") {
		return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
	}

	m.mu.RLock()
	t, ok := m.themes[name]
	m.mu.RUnlock()
	if ok {
		return t.FS, nil
	}

	if m.themesDir != "" {
		if st, err := os.Stat(path.Join(m.themesDir, name)); err == nil && st.IsDir() {
			return os.DirFS(path.Join(m.themesDir, name)), nil
		}
	}
	if m.embedded != nil {
		if st, err := fs.Stat(m.embedded, name); err == nil && st.IsDir() {
			return fs.Sub(m.embedded, name)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrThemeNotFound, name)
}

// StaticHandler serves /themes/{theme}/* from the theme's static directory.
// Directories are not listed.
func (m *Manager) StaticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "theme")
		rel := strings.TrimLeft(chi.URLParam(r, "*"), "/")
		if rel == "" || !fs.ValidPath(rel) {
			http.NotFound(w, r)
			return
		}

		t, err := m.GetTheme(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		static, err := t.StaticFS()
		if err != nil {
			http.NotFound(w, r)
			return
		}

		st, err := fs.Stat(static, rel)
		if err != nil || st.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=86400")
		http.ServeFileFS(w, r, static, rel)
	})
}

// Translate returns a translation for the given key, checking the active
// theme first, then falling back to the global i18n catalog.
func (m *Manager) Translate(lang, key string, args ...any) string {
	if t := m.GetActiveTheme(); t != nil {
		if translation, ok := t.Translate(lang, key); ok {
			if len(args) > 0 {
				return fmt.Sprintf(translation, args...)
			}
			return translation
		}
	}
	return i18n.T(lang, key, args...)
}

// TemplateFuncs returns template functions provided by the theme manager.
func (m *Manager) TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Usage: {{TTheme .Lang "Search"}}
		"TTheme": func(lang string, key string, args ...any) string {
			return m.Translate(lang, key, args...)
		},
		// Usage: {{themeAsset "css/style.css"}}
		"themeAsset": func(rel string) string {
			t := m.GetActiveTheme()
			if t == nil {
				return ""
			}
			return AssetURL(t.Name, rel)
		},
	}
}
