// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/render"

	"github.com/olegiv/corporate-blue/internal/cache"
	"github.com/olegiv/corporate-blue/internal/store"
)

// Check statuses. Only "unhealthy" fails readiness; "degraded" is reported
// but still serves traffic.
const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

const (
	checkTimeout  = 2 * time.Second
	minFreeUpload = 100 * 1024 * 1024
)

// HealthHandler reports database, settings cache and upload disk health.
type HealthHandler struct {
	db         *sql.DB
	uploadsDir string
	cache      cache.Cache
	startTime  time.Time
}

// NewHealthHandler creates a health handler. c may be nil; it is only
// probed when it implements cache.Pinger.
func NewHealthHandler(db *sql.DB, uploadsDir string, c cache.Cache) *HealthHandler {
	return &HealthHandler{db: db, uploadsDir: uploadsDir, cache: c, startTime: time.Now()}
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Schema    int64            `json:"schema_version"`
	Checks    map[string]Check `json:"checks"`
}

// Check is the result of one probe.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Health handles GET /health. Any non-healthy check answers 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"disk":     h.checkDiskSpace(),
	}
	if p, ok := h.cache.(cache.Pinger); ok {
		checks["cache"] = probe(r.Context(), p.Ping)
	}

	status := HealthStatus{
		Status:    statusHealthy,
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Schema:    -1,
		Checks:    checks,
	}
	for _, c := range checks {
		if c.Status != statusHealthy {
			status.Status = statusDegraded
		}
	}
	if v, err := store.MigrationVersion(h.db); err == nil {
		status.Schema = v
	}

	if status.Status != statusHealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}

// Liveness handles GET /health/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/ready. Only the database gates readiness;
// the cache falls back to the database on errors.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.checkDatabase(r.Context()).Status != statusHealthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "not_ready"})
		return
	}
	render.JSON(w, r, map[string]string{"status": "ready"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	c := probe(ctx, h.db.PingContext)
	if c.Status == statusHealthy {
		c.Message = "Connected"
	}
	return c
}

// probe runs ping with checkTimeout and reports its latency.
func probe(ctx context.Context, ping func(context.Context) error) Check {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Latency: latency}
}

func (h *HealthHandler) checkDiskSpace() Check {
	if _, err := os.Stat(h.uploadsDir); os.IsNotExist(err) {
		return Check{Status: statusHealthy, Message: "Uploads directory does not exist yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.uploadsDir, &stat); err != nil {
		return Check{Status: statusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}

	free := stat.Bavail * uint64(stat.Bsize) // #nosec G115 -- block size is positive
	if free < minFreeUpload {
		return Check{Status: statusDegraded, Message: "Low disk space: " + humanize.IBytes(free) + " available"}
	}
	return Check{Status: statusHealthy, Message: humanize.IBytes(free) + " available"}
}
