// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/corporate-blue/internal/cache"
	"github.com/olegiv/corporate-blue/internal/testutil"
)

// pingCache is a memory cache whose Ping result is fixed.
type pingCache struct {
	*cache.MemoryCache
	err error
}

func (c pingCache) Ping(context.Context) error { return c.err }

func getHealth(t *testing.T, h *HealthHandler) (int, HealthStatus) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	return rec.Code, status
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), t.TempDir(), cache.NewSimpleMemoryCache(time.Minute))

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, int64(3), status.Schema)
	assert.Equal(t, "healthy", status.Checks["database"].Status)
	assert.Contains(t, status.Checks, "disk")
	assert.NotContains(t, status.Checks, "cache", "memory cache has nothing to ping")
}

func TestHealthCacheCheck(t *testing.T) {
	db := testutil.TestDB(t)
	mem := cache.NewSimpleMemoryCache(time.Minute)

	code, status := getHealth(t, NewHealthHandler(db, t.TempDir(), pingCache{MemoryCache: mem}))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", status.Checks["cache"].Status)

	down := pingCache{MemoryCache: mem, err: errors.New("connection refused")}
	code, status = getHealth(t, NewHealthHandler(db, t.TempDir(), down))
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Checks["cache"].Status)
	assert.Equal(t, "connection refused", status.Checks["cache"].Message)
}

func TestHealthDatabaseDown(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, t.TempDir(), nil)
	require.NoError(t, db.Close())

	code, status := getHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", status.Checks["database"].Status)
	assert.Equal(t, int64(-1), status.Schema)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"not_ready"}`, rec.Body.String())
}

func TestLivenessAndReadiness(t *testing.T) {
	h := NewHealthHandler(testutil.TestDB(t), "/nonexistent-uploads", nil)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}
