// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command corporate-blue serves a site rendered with the Corporate Blue theme.
package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/corporate-blue/internal/auth"
	"github.com/olegiv/corporate-blue/internal/cache"
	"github.com/olegiv/corporate-blue/internal/config"
	"github.com/olegiv/corporate-blue/internal/files"
	"github.com/olegiv/corporate-blue/internal/handler"
	"github.com/olegiv/corporate-blue/internal/i18n"
	"github.com/olegiv/corporate-blue/internal/logging"
	"github.com/olegiv/corporate-blue/internal/metrics"
	"github.com/olegiv/corporate-blue/internal/middleware"
	"github.com/olegiv/corporate-blue/internal/module"
	"github.com/olegiv/corporate-blue/internal/settings"
	"github.com/olegiv/corporate-blue/internal/store"
	"github.com/olegiv/corporate-blue/internal/theme"
	"github.com/olegiv/corporate-blue/internal/themes"
	"github.com/olegiv/corporate-blue/internal/version"
	corporate_blue "github.com/olegiv/corporate-blue/modules/corporate_blue"
)

// Build information, injected via ldflags.
var (
	appVersion   = ""
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	hashPassword := flag.String("hash-password", "", "Print the argon2id hash of a password for OCMS_ADMIN_PASSWORD_HASH and exit")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Corporate Blue - theme runtime\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_DB_PATH              SQLite database path (default: ./data/corporate-blue.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_THEMES_DIR           Directory of themes overriding the embedded ones (default: ./custom/themes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ACTIVE_THEME         Active theme name (default: corporate_blue)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_REDIS_URL            Redis URL for the settings cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OCMS_ADMIN_PASSWORD_HASH  Enables the /admin banner API\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Println(version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime})
		os.Exit(0)
	}

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "hashing password: %v\n", err)
			os.Exit(1)
		}
		_, _ = fmt.Println(hash)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Write WARN and ERROR records to the event log as well
	logger = slog.New(logging.NewEventLogHandler(
		slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}), db))
	slog.SetDefault(logger)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// Settings cache
	cacheCfg := cache.DefaultCacheConfig()
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.DefaultTTL = cfg.CacheTTLDuration()
	cacheCfg.MaxSize = cfg.CacheMaxSize
	if cfg.UseRedisCache() {
		cacheCfg.Type = string(cache.CacheBackendRedis)
		cacheCfg.RedisURL = cfg.RedisURL
	}
	cacheResult, err := cache.NewCacheWithInfo(cacheCfg)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheResult.Cache.Close() }()
	if cacheResult.IsFallback {
		slog.Warn("settings cache initialized", "backend", cacheResult.BackendType,
			"note", "Redis unavailable, using fallback", "url", cache.MaskRedisURL(cfg.RedisURL), "error", cacheResult.Err)
	} else {
		slog.Info("settings cache initialized", "backend", cacheResult.BackendType)
	}

	settingsRepo := settings.NewCachedRepository(
		settings.NewDBRepository(db), cacheResult.Cache, cfg.CacheTTLDuration(),
		settings.WithLogger(logger),
		settings.WithObserver(m.SettingsLookup),
	)

	// Modules
	hooks := module.NewHookRegistry(logger)
	hooks.SetObserver(m.ObserveHook)
	registry := module.NewRegistry(logger)
	if err := registry.Register(corporate_blue.New()); err != nil {
		return fmt.Errorf("registering modules: %w", err)
	}

	// Themes
	themeManager := theme.NewManager(themes.FS, cfg.ThemesDir, logger)
	funcs := template.FuncMap{"T": i18n.T}
	for name, fn := range themeManager.TemplateFuncs() {
		funcs[name] = fn
	}
	for name, fn := range registry.AllTemplateFuncs() {
		funcs[name] = fn
	}
	themeManager.SetFuncMap(funcs)
	if err := themeManager.LoadThemes(); err != nil {
		return fmt.Errorf("loading themes: %w", err)
	}
	if err := themeManager.SetActiveTheme(cfg.ActiveTheme); err != nil {
		return fmt.Errorf("activating theme: %w", err)
	}
	slog.Info("themes loaded", "count", themeManager.ThemeCount(), "active", cfg.ActiveTheme)

	moduleCtx := &module.Context{
		DB:       db,
		Store:    store.New(db),
		Logger:   logger,
		Config:   cfg,
		Settings: settingsRepo,
		Hooks:    hooks,
		Themes:   themeManager,
		Files:    files.NewResolver(cfg.BaseURL, cfg.FilesPath, cfg.UploadsDir),
		Metrics:  m,
	}
	if err := registry.InitAll(moduleCtx); err != nil {
		return fmt.Errorf("initializing modules: %w", err)
	}
	defer func() {
		if err := registry.ShutdownAll(); err != nil {
			slog.Error("error shutting down modules", "error", err)
		}
	}()

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)
	r.Use(m.Middleware)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Language)

	frontendHandler := handler.NewFrontendHandler(themeManager, hooks, handler.NoComments{}, cfg.FrontPage, logger)
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir, cacheResult.Cache)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	r.Handle(theme.URLPrefix+"/{theme}/*", themeManager.StaticHandler())
	r.Handle(cfg.FilesPath+"/*", handler.NewFilesHandler(cfg.UploadsDir))

	r.Get("/", frontendHandler.Home)
	if cfg.FrontPage != "/" {
		r.Get(cfg.FrontPage, frontendHandler.Home)
	}
	r.Get("/search", frontendHandler.Search)
	r.Get("/page/{slug}", frontendHandler.Page)

	registry.RouteAll(r)

	var adminAuth *middleware.AdminAuth
	if cfg.AdminEnabled() {
		csrfKey := make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			return fmt.Errorf("generating CSRF key: %w", err)
		}
		adminAuth = middleware.NewAdminAuth(middleware.AdminAuthConfig{
			User:         cfg.AdminUser,
			PasswordHash: cfg.AdminPasswordHash,
			IPRateLimit:  cfg.AdminRateLimit,
			Logger:       logger,
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth.Middleware)
			r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(csrfKey, cfg.IsDevelopment(), cfg.ServerAddr())))
			handler.NewAdminHandler(moduleCtx.Store, registry, logger).Routes(r)
			registry.AdminRouteAll(r)
		})
		slog.Info("admin API enabled", "user", cfg.AdminUser)
	} else {
		slog.Info("admin API disabled, set OCMS_ADMIN_PASSWORD_HASH to enable it")
	}

	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if adminAuth != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					adminAuth.Cleanup()
				}
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
