// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package moduleutil provides module-specific test helpers.
package moduleutil

import (
	"database/sql"
	"testing"

	"github.com/olegiv/corporate-blue/internal/config"
	"github.com/olegiv/corporate-blue/internal/files"
	"github.com/olegiv/corporate-blue/internal/metrics"
	"github.com/olegiv/corporate-blue/internal/module"
	"github.com/olegiv/corporate-blue/internal/settings"
	"github.com/olegiv/corporate-blue/internal/store"
	"github.com/olegiv/corporate-blue/internal/testutil"
	"github.com/olegiv/corporate-blue/internal/theme"
	"github.com/olegiv/corporate-blue/internal/themes"
)

// TestConfig returns a configuration pointing uploads at a temp directory.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:         "test",
		ActiveTheme: "corporate_blue",
		UploadsDir:  t.TempDir(),
		FilesPath:   "/files",
		FrontPage:   "/",
	}
}

// TestModuleContext creates a module.Context over db with the embedded
// themes loaded and corporate_blue active. Settings use the database
// repository so the context behaves like production.
func TestModuleContext(t *testing.T, db *sql.DB) (*module.Context, *module.HookRegistry) {
	t.Helper()

	logger := testutil.TestLogger()
	cfg := TestConfig(t)
	hooks := module.NewHookRegistry(logger)

	tm := NewThemeManager(t)

	return &module.Context{
		DB:       db,
		Store:    store.New(db),
		Logger:   logger,
		Config:   cfg,
		Settings: settings.NewDBRepository(db),
		Hooks:    hooks,
		Themes:   tm,
		Files:    files.NewResolver(cfg.BaseURL, cfg.FilesPath, cfg.UploadsDir),
		Metrics:  metrics.New(),
	}, hooks
}

// NewThemeManager returns a manager with the embedded themes loaded and
// corporate_blue active.
func NewThemeManager(t *testing.T) *theme.Manager {
	t.Helper()

	m := theme.NewManager(themes.FS, "", testutil.TestLoggerSilent())
	funcs := testutil.MinimalThemeFuncMap()
	for k, v := range m.TemplateFuncs() {
		funcs[k] = v
	}
	m.SetFuncMap(funcs)
	if err := m.LoadThemes(); err != nil {
		t.Fatalf("LoadThemes: %v", err)
	}
	if err := m.SetActiveTheme("corporate_blue"); err != nil {
		t.Fatalf("SetActiveTheme: %v", err)
	}
	return m
}
