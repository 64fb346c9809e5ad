// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"strings"
	"time"
)

// Backend identifies the storage behind a Cache.
type Backend string

const (
	CacheBackendMemory Backend = "memory"
	CacheBackendRedis  Backend = "redis"
)

// CacheConfig holds configuration for cache creation.
type CacheConfig struct {
	// Type is the cache backend type: "memory" or "redis".
	Type string

	// RedisURL is the Redis connection URL, e.g. redis://localhost:6379/0.
	RedisURL string

	// Prefix is the key prefix for Redis.
	Prefix string

	// FallbackToMemory uses a memory cache when Redis is unreachable.
	FallbackToMemory bool

	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited).
	MaxSize int

	CleanupInterval time.Duration
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Type:             string(CacheBackendMemory),
		FallbackToMemory: true,
		DefaultTTL:       time.Hour,
		MaxSize:          10000,
		CleanupInterval:  time.Minute,
	}
}

// Result describes the cache created by NewCacheWithInfo.
type Result struct {
	Cache       Cache
	BackendType Backend
	IsFallback  bool
	// Err is the Redis error that caused a fallback, if any.
	Err error
}

// NewCacheWithInfo creates a cache based on cfg and reports which backend
// was actually used.
func NewCacheWithInfo(cfg CacheConfig) (*Result, error) {
	if cfg.Type == string(CacheBackendRedis) && cfg.RedisURL != "" {
		opts := DefaultRedisCacheOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}

		rc, err := NewRedisCache(opts)
		if err == nil {
			return &Result{Cache: rc, BackendType: CacheBackendRedis}, nil
		}
		if !cfg.FallbackToMemory {
			return nil, fmt.Errorf("connecting to redis at %s: %w", maskRedisURL(cfg.RedisURL), err)
		}
		return &Result{
			Cache:       newMemoryFromConfig(cfg),
			BackendType: CacheBackendMemory,
			IsFallback:  true,
			Err:         err,
		}, nil
	}

	return &Result{Cache: newMemoryFromConfig(cfg), BackendType: CacheBackendMemory}, nil
}

func newMemoryFromConfig(cfg CacheConfig) *MemoryCache {
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	})
}

// maskRedisURL hides credentials in a Redis URL for logging.
func maskRedisURL(url string) string {
	schemeEnd := strings.Index(url, "://")
	at := strings.LastIndex(url, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return url
	}
	return url[:schemeEnd+3] + "***" + url[at:]
}

// MaskRedisURL is the exported form of maskRedisURL for startup logging.
func MaskRedisURL(url string) string {
	return maskRedisURL(url)
}
