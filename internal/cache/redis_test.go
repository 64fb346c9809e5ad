// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// skipIfNoRedis skips the test unless OCMS_TEST_REDIS_URL is set.
func skipIfNoRedis(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("OCMS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: OCMS_TEST_REDIS_URL not set")
	}

	opts := DefaultRedisCacheOptions()
	opts.URL = url
	opts.Prefix = "corporate-blue-test:" + t.Name() + ":"
	opts.DefaultTTL = time.Minute
	c, err := NewRedisCache(opts)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	c := skipIfNoRedis(t)
	ctx := context.Background()

	if _, err := c.Get(ctx, "banners"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("Get missing: err = %v, want ErrCacheMiss", err)
	}
	if err := c.Set(ctx, "banners", []byte(`[]`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, "banners")
	if err != nil || string(got) != `[]` {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := c.Delete(ctx, "banners"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.Get(ctx, "banners"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after Delete: err = %v", err)
	}
}

func TestRedisCache_TTL(t *testing.T) {
	c := skipIfNoRedis(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("x"), 100*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(250 * time.Millisecond)
	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after TTL: err = %v, want ErrCacheMiss", err)
	}
}

func TestRedisCache_Close(t *testing.T) {
	c := skipIfNoRedis(t)
	ctx := context.Background()

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get after Close: err = %v", err)
	}
	if err := c.Ping(ctx); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Ping after Close: err = %v", err)
	}
}

func TestNewRedisCache_BadURL(t *testing.T) {
	for _, url := range []string{"", "invalid-url"} {
		opts := DefaultRedisCacheOptions()
		opts.URL = url
		if _, err := NewRedisCache(opts); err == nil {
			t.Errorf("NewRedisCache(%q) succeeded", url)
		}
	}
}
