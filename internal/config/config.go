// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// validLogLevels lists the accepted values of OCMS_LOG_LEVEL.
var validLogLevels = []string{"debug", "info", "warn", "error"}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath      string `env:"OCMS_DB_PATH" envDefault:"./data/corporate-blue.db"`
	ServerHost  string `env:"OCMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort  int    `env:"OCMS_SERVER_PORT" envDefault:"8080"`
	Env         string `env:"OCMS_ENV" envDefault:"development"`
	LogLevel    string `env:"OCMS_LOG_LEVEL" envDefault:"info"`
	ThemesDir   string `env:"OCMS_THEMES_DIR" envDefault:"./custom/themes"`
	ActiveTheme string `env:"OCMS_ACTIVE_THEME" envDefault:"corporate_blue"`
	UploadsDir  string `env:"OCMS_UPLOADS_DIR" envDefault:"./uploads"`

	// Public URLs
	BaseURL   string `env:"OCMS_BASE_URL"`                      // Prefix for generated URLs, empty for root-relative
	FilesPath string `env:"OCMS_FILES_PATH" envDefault:"/files"` // URL path the uploads directory is served under
	FrontPage string `env:"OCMS_FRONT_PAGE" envDefault:"/"`      // Path treated as the site front page

	// Cache configuration
	RedisURL     string `env:"OCMS_REDIS_URL"`                                 // Optional Redis URL for a shared settings cache
	CachePrefix  string `env:"OCMS_CACHE_PREFIX" envDefault:"corporate-blue:"` // Redis key prefix
	CacheTTL     int    `env:"OCMS_CACHE_TTL" envDefault:"3600"`               // Default cache TTL in seconds
	CacheMaxSize int    `env:"OCMS_CACHE_MAX_SIZE" envDefault:"10000"`         // Max memory cache entries

	// Admin API
	AdminUser         string  `env:"OCMS_ADMIN_USER" envDefault:"admin"`
	AdminPasswordHash string  `env:"OCMS_ADMIN_PASSWORD_HASH"` // argon2id hash; admin routes are disabled when empty
	AdminRateLimit    float64 `env:"OCMS_ADMIN_RATE_LIMIT" envDefault:"1"`

	MetricsEnabled bool `env:"OCMS_METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AdminEnabled returns true if an admin password hash is configured.
func (c Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SlogLevel maps LogLevel to a slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks values that env tags cannot express.
func (c *Config) validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("OCMS_SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("OCMS_LOG_LEVEL must be one of %s, got %q",
			strings.Join(validLogLevels, ", "), c.LogLevel)
	}

	if c.AdminPasswordHash != "" && !strings.HasPrefix(c.AdminPasswordHash, "$argon2id$") {
		return fmt.Errorf("OCMS_ADMIN_PASSWORD_HASH must be an argon2id hash; " +
			"generate one with: corporate-blue -hash-password <password>")
	}

	if c.AdminRateLimit <= 0 {
		return fmt.Errorf("OCMS_ADMIN_RATE_LIMIT must be positive, got %v", c.AdminRateLimit)
	}

	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if !strings.HasPrefix(c.FilesPath, "/") {
		c.FilesPath = "/" + c.FilesPath
	}
	c.FilesPath = strings.TrimRight(c.FilesPath, "/")

	return nil
}

func isValidLogLevel(level string) bool {
	for _, l := range validLogLevels {
		if l == level {
			return true
		}
	}
	return false
}
