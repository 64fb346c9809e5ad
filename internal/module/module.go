// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package module provides the module system the theme runtime is built on.
// Modules register routes, admin routes, template functions and hooks.
package module

import (
	"database/sql"
	"html/template"
	"io/fs"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/corporate-blue/internal/config"
	"github.com/olegiv/corporate-blue/internal/files"
	"github.com/olegiv/corporate-blue/internal/metrics"
	"github.com/olegiv/corporate-blue/internal/settings"
	"github.com/olegiv/corporate-blue/internal/store"
	"github.com/olegiv/corporate-blue/internal/theme"
)

// Context provides access to application services for modules.
type Context struct {
	DB       *sql.DB
	Store    *store.Queries
	Logger   *slog.Logger
	Config   *config.Config
	Settings settings.Versioned
	Hooks    *HookRegistry
	Themes   *theme.Manager
	Files    *files.Resolver
	Metrics  *metrics.Metrics
}

// Module defines the interface that all modules must implement.
type Module interface {
	Name() string
	Version() string
	Description() string
	// Dependencies returns the names of modules that must be registered too.
	Dependencies() []string

	// Init initializes the module with the given context.
	Init(ctx *Context) error
	// Shutdown performs cleanup when the module is shutting down.
	Shutdown() error

	// RegisterRoutes registers public routes for the module.
	RegisterRoutes(r chi.Router)
	// RegisterAdminRoutes registers routes mounted under /admin.
	RegisterAdminRoutes(r chi.Router)

	// TemplateFuncs returns template functions provided by the module.
	TemplateFuncs() template.FuncMap

	// Migrations returns migrations for the module.
	Migrations() []Migration

	// TranslationsFS returns a filesystem containing locales/{lang}/messages.json,
	// or nil if the module has no translations.
	TranslationsFS() fs.FS
}

// Migration represents a database migration for a module.
type Migration struct {
	Version     int64
	Description string
	Up          func(db *sql.DB) error
	Down        func(db *sql.DB) error
}

// BaseModule provides no-op implementations of the Module interface.
// Modules embed it and override what they need.
type BaseModule struct {
	name        string
	version     string
	description string
	ctx         *Context
}

// NewBaseModule creates a new BaseModule with the given metadata.
func NewBaseModule(name, version, description string) BaseModule {
	return BaseModule{
		name:        name,
		version:     version,
		description: description,
	}
}

func (m *BaseModule) Name() string                     { return m.name }
func (m *BaseModule) Version() string                  { return m.version }
func (m *BaseModule) Description() string              { return m.description }
func (m *BaseModule) Dependencies() []string           { return nil }
func (m *BaseModule) Shutdown() error                  { return nil }
func (m *BaseModule) RegisterRoutes(_ chi.Router)      {}
func (m *BaseModule) RegisterAdminRoutes(_ chi.Router) {}
func (m *BaseModule) TemplateFuncs() template.FuncMap  { return nil }
func (m *BaseModule) Migrations() []Migration          { return nil }
func (m *BaseModule) TranslationsFS() fs.FS            { return nil }

// Init stores the module context.
func (m *BaseModule) Init(ctx *Context) error {
	m.ctx = ctx
	return nil
}

// Context returns the module context (for use by embedded modules).
func (m *BaseModule) Context() *Context                { return m.ctx }
