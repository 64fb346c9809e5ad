// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package corporate_blue implements the Corporate Blue theme behaviour:
// the front page banner slider, its settings and the search form styling.
package corporate_blue

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/olegiv/corporate-blue/internal/module"
)

//go:embed locales
var localesFS embed.FS

// ThemeName is the directory name of the theme this module drives.
const ThemeName = "corporate_blue"

// bannerDir is the public:// directory holding banner images.
const bannerDir = "banners"

// Module implements the module.Module interface for the Corporate Blue theme.
type Module struct {
	module.BaseModule
	ctx       *module.Context
	validate  *validator.Validate
	installMu sync.Mutex
}

// New creates a new instance of the corporate_blue module.
func New() *Module {
	return &Module{
		BaseModule: module.NewBaseModule(
			"corporate_blue",
			"2.1.0",
			"Front page banner slider and search form styling for the Corporate Blue theme",
		),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Init registers the theme hooks and installs the default banners on
// first run.
func (m *Module) Init(ctx *module.Context) error {
	m.ctx = ctx
	m.registerHooks()

	if err := m.EnsureInstalled(context.Background()); err != nil {
		return fmt.Errorf("corporate_blue install: %w", err)
	}

	m.ctx.Logger.Info("Corporate Blue module initialized")
	return nil
}

// Shutdown performs cleanup when the module is shutting down.
func (m *Module) Shutdown() error {
	if m.ctx != nil {
		m.ctx.Hooks.UnregisterAll(m.Name())
		m.ctx.Logger.Info("Corporate Blue module shutting down")
	}
	return nil
}

// RegisterAdminRoutes registers the banner settings API under /admin.
func (m *Module) RegisterAdminRoutes(r chi.Router) {
	r.Get("/banners", m.handleGetBanners)
	r.Put("/banners", m.handlePutBanners)
	r.Post("/banners/upload", m.handleUploadBanner)
}

// TemplateFuncs returns template functions provided by the module.
func (m *Module) TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Usage: {{bannerSlider}}
		"bannerSlider": func() template.HTML {
			out, err := m.RenderBanners(context.Background())
			if err != nil {
				m.ctx.Logger.Error("failed to render banners", "error", err)
				return ""
			}
			return out
		},
	}
}

// TranslationsFS returns the embedded filesystem containing module translations.
func (m *Module) TranslationsFS() fs.FS {
	return localesFS
}
