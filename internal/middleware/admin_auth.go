// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/olegiv/corporate-blue/internal/auth"
)

// AdminAuthConfig holds configuration for the admin API guard.
type AdminAuthConfig struct {
	User         string
	PasswordHash string // argon2id, see auth.HashPassword

	// IPRateLimit is requests per second per IP (default: 1).
	IPRateLimit float64
	// IPBurst is the maximum burst per IP (default: 5).
	IPBurst int
	// MaxFailedAttempts before the IP is locked out (default: 5).
	MaxFailedAttempts int
	// LockoutDuration is the base lockout, doubled on every repeat (default: 15 minutes).
	LockoutDuration time.Duration
	// AttemptWindow is the window for counting failures (default: 15 minutes).
	AttemptWindow time.Duration

	Logger *slog.Logger
}

// failedAttempts tracks failed logins for one client IP.
type failedAttempts struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// AdminAuth guards admin routes with HTTP basic authentication, a per-IP
// rate limit and a lockout after repeated failures.
type AdminAuth struct {
	user string
	hash string

	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	failures map[string]*failedAttempts

	maxFailed     int
	lockout       time.Duration
	attemptWindow time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewAdminAuth creates the guard, filling zero config values with defaults.
func NewAdminAuth(cfg AdminAuthConfig) *AdminAuth {
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = 1
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = 5
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 15 * time.Minute
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.PasswordHash != "" && auth.NeedsRehash(cfg.PasswordHash) {
		cfg.Logger.Warn("admin password hash uses outdated argon2id parameters, regenerate it with -hash-password",
			"category", "auth")
	}

	return &AdminAuth{
		user:          cfg.User,
		hash:          cfg.PasswordHash,
		ipLimiters:    newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		failures:      make(map[string]*failedAttempts),
		maxFailed:     cfg.MaxFailedAttempts,
		lockout:       cfg.LockoutDuration,
		attemptWindow: cfg.AttemptWindow,
		logger:        cfg.Logger,
		now:           time.Now,
	}
}

// Middleware returns the guard as chi-compatible middleware.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		if !a.ipLimiters.get(ip).Allow() {
			a.logger.Warn("admin rate limit exceeded", "ip", ip, "category", "auth")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		if locked, remaining := a.isLocked(ip); locked {
			w.Header().Set("Retry-After", strconv.Itoa(int(remaining.Seconds())+1))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !a.verify(user, pass) {
			if ok {
				a.recordFailure(ip)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="corporate-blue admin", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		a.recordSuccess(ip)
		next.ServeHTTP(w, r)
	})
}

func (a *AdminAuth) verify(user, pass string) bool {
	if a.hash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK, err := auth.CheckPassword(pass, a.hash)
	if err != nil {
		a.logger.Error("admin password hash invalid", "error", err, "category", "auth")
		return false
	}
	return userOK && passOK
}

func (a *AdminAuth) isLocked(ip string) (bool, time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, ok := a.failures[ip]
	if !ok {
		return false, 0
	}
	if now := a.now(); now.Before(f.lockedUntil) {
		return true, f.lockedUntil.Sub(now)
	}
	return false, 0
}

// recordFailure counts a failed login and locks the IP when the limit is
// reached. Each lockout doubles the previous one, capped at 24 hours.
func (a *AdminAuth) recordFailure(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	f, ok := a.failures[ip]
	if !ok || now.Sub(f.firstFailed) > a.attemptWindow {
		if !ok {
			f = &failedAttempts{}
			a.failures[ip] = f
		}
		f.count = 0
		f.firstFailed = now
	}

	f.count++
	if f.count < a.maxFailed {
		return
	}

	d := a.lockout
	for i := 0; i < f.lockouts && d < 24*time.Hour; i++ {
		d *= 2
	}
	if d > 24*time.Hour {
		d = 24 * time.Hour
	}

	f.lockedUntil = now.Add(d)
	f.lockouts++
	f.count = 0

	a.logger.Warn("admin login locked due to failed attempts",
		"ip", ip,
		"lockouts", f.lockouts,
		"duration", d,
		"category", "auth",
	)
}

func (a *AdminAuth) recordSuccess(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.failures, ip)
}

// Cleanup drops expired failure records and oversized limiter state.
// It is meant to be called periodically.
func (a *AdminAuth) Cleanup() {
	if a.ipLimiters.clearIfExceeds(10000) {
		a.logger.Info("cleared admin IP rate limiters due to size")
	}

	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for ip, f := range a.failures {
		if now.After(f.lockedUntil) && now.Sub(f.firstFailed) > a.attemptWindow {
			delete(a.failures, ip)
		}
	}
}
