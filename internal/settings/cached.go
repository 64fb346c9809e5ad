// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/olegiv/corporate-blue/internal/cache"
)

const cacheKeyPrefix = "settings:"

// CachedRepository fronts a Versioned repository with a cache.Cache.
// Plain reads are served from the cache; versioned reads always go to the
// underlying repository. Every write invalidates the cached entry.
//
// Each key carries a generation bumped on invalidation. A fill after a miss
// is dropped when a write landed between the inner read and the fill, so a
// stale read never repopulates the cache.
type CachedRepository struct {
	inner   Versioned
	cache   cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
	observe func(hit bool)

	mu   sync.Mutex
	gens map[string]uint64
}

// CachedOption configures a CachedRepository.
type CachedOption func(*CachedRepository)

// WithLogger sets the logger used for cache failures.
func WithLogger(l *slog.Logger) CachedOption {
	return func(r *CachedRepository) { r.logger = l }
}

// WithObserver registers a callback invoked on every cached lookup.
func WithObserver(fn func(hit bool)) CachedOption {
	return func(r *CachedRepository) { r.observe = fn }
}

// NewCachedRepository wraps inner with c. A zero ttl uses the cache default.
func NewCachedRepository(inner Versioned, c cache.Cache, ttl time.Duration, opts ...CachedOption) *CachedRepository {
	r := &CachedRepository{
		inner:  inner,
		cache:  c,
		ttl:    ttl,
		logger: slog.Default(),
		gens:   make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the value of key, from cache when possible.
func (r *CachedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	ck := cacheKeyPrefix + key

	value, err := r.cache.Get(ctx, ck)
	if err == nil {
		r.record(true)
		return value, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.logger.Warn("settings cache read failed", "key", key, "error", err)
	}
	r.record(false)

	gen := r.generation(key)
	value, err = r.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, key, value, gen)
	return value, nil
}

func (r *CachedRepository) generation(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[key]
}

// fill stores value unless key was invalidated after gen was read.
func (r *CachedRepository) fill(ctx context.Context, key string, value []byte, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gens[key] != gen {
		return
	}
	if err := r.cache.Set(ctx, cacheKeyPrefix+key, value, r.ttl); err != nil {
		r.logger.Warn("settings cache write failed", "key", key, "error", err)
	}
}

// Set writes through to the underlying repository.
func (r *CachedRepository) Set(ctx context.Context, key string, value []byte) error {
	if err := r.inner.Set(ctx, key, value); err != nil {
		return err
	}
	r.invalidate(ctx, key)
	return nil
}

// GetVersioned bypasses the cache.
func (r *CachedRepository) GetVersioned(ctx context.Context, key string) ([]byte, int64, error) {
	return r.inner.GetVersioned(ctx, key)
}

// SetIfVersion writes through and invalidates the cached entry on success.
func (r *CachedRepository) SetIfVersion(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	newVersion, err := r.inner.SetIfVersion(ctx, key, value, version)
	if err != nil {
		return 0, err
	}
	r.invalidate(ctx, key)
	return newVersion, nil
}

func (r *CachedRepository) invalidate(ctx context.Context, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gens[key]++
	if err := r.cache.Delete(ctx, cacheKeyPrefix+key); err != nil {
		r.logger.Warn("settings cache invalidation failed", "key", key, "error", err)
	}
}

func (r *CachedRepository) record(hit bool) {
	if r.observe != nil {
		r.observe(hit)
	}
}

var _ Versioned = (*CachedRepository)(nil)
