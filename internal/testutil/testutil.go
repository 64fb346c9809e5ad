// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers.
package testutil

import (
	"database/sql"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/corporate-blue/internal/store"

	_ "github.com/mattn/go-sqlite3" // cgo driver for in-memory test databases
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a test logger that only outputs errors.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary on-disk database with migrations applied.
// The database is closed when the test ends.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "corporate-blue-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestMemoryDB creates an in-memory database with migrations applied.
// It is limited to one connection so every query sees the same database.
func TestMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// MinimalThemeFuncMap returns stub template functions for parsing theme
// templates in tests that do not build a theme.Manager func map.
func MinimalThemeFuncMap() template.FuncMap {
	return template.FuncMap{
		"T":          func(lang, key string, args ...any) string { return key },
		"TTheme":     func(lang, key string, args ...any) string { return key },
		"themeAsset": func(rel string) string { return "/themes/test/" + rel },
		"bannerSlider": func() template.HTML {
			return `<div id="orbitDemo"></div>`
		},
	}
}
