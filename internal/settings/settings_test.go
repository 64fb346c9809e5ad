// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/corporate-blue/internal/cache"
	"github.com/olegiv/corporate-blue/internal/testutil"
)

// repositories returns every Versioned implementation under test.
func repositories(t *testing.T) map[string]Versioned {
	t.Helper()

	mc := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = mc.Close() })

	return map[string]Versioned{
		"memory":    NewMemoryRepository(),
		"db":        NewDBRepository(testutil.TestDB(t)),
		"db-memory": NewDBRepository(testutil.TestMemoryDB(t)),
		"cached":    NewCachedRepository(NewDBRepository(testutil.TestDB(t)), mc, time.Minute),
	}
}

func TestRepository_GetMissing(t *testing.T) {
	for name, r := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := r.Get(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			_, version, err := r.GetVersioned(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Zero(t, version)
		})
	}
}

func TestRepository_SetGet(t *testing.T) {
	for name, r := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, r.Set(ctx, "k", []byte(`"one"`)))
			got, err := r.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"one"`, string(got))

			require.NoError(t, r.Set(ctx, "k", []byte(`"two"`)))
			got, err = r.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"two"`, string(got))

			_, version, err := r.GetVersioned(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, int64(2), version)
		})
	}
}

func TestRepository_SetIfVersion(t *testing.T) {
	for name, r := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			v1, err := r.SetIfVersion(ctx, "k", []byte("1"), 0)
			require.NoError(t, err)
			assert.Equal(t, int64(1), v1)

			// Creating again fails: the key exists now.
			_, err = r.SetIfVersion(ctx, "k", []byte("x"), 0)
			assert.ErrorIs(t, err, ErrVersionConflict)

			v2, err := r.SetIfVersion(ctx, "k", []byte("2"), v1)
			require.NoError(t, err)
			assert.Equal(t, int64(2), v2)

			// Stale version.
			_, err = r.SetIfVersion(ctx, "k", []byte("x"), v1)
			assert.ErrorIs(t, err, ErrVersionConflict)

			got, err := r.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "2", string(got))
		})
	}
}

func TestMemoryRepository_Concurrent(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Set(ctx, "k", []byte("v"))
			_, _ = r.Get(ctx, "k")
		}()
	}
	wg.Wait()

	_, version, err := r.GetVersioned(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(50), version)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, r.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestJSONHelpers(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	type item struct {
		Name string `json:"name"`
	}

	var items []item
	found, err := GetJSON(ctx, r, "items", &items)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, r, "items", []item{{"a"}, {"b"}}))
	found, err = GetJSON(ctx, r, "items", &items)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []item{{"a"}, {"b"}}, items)

	require.NoError(t, r.Set(ctx, "broken", []byte("{")))
	_, err = GetJSON(ctx, r, "broken", &items)
	assert.Error(t, err)
}

func TestBoolAndStringHelpers(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	v, err := GetBool(ctx, r, "flag", true)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, SetBool(ctx, r, "flag", false))
	v, err = GetBool(ctx, r, "flag", true)
	require.NoError(t, err)
	assert.False(t, v)

	s, err := GetString(ctx, r, "theme_default", "corporate_blue")
	require.NoError(t, err)
	assert.Equal(t, "corporate_blue", s)

	require.NoError(t, SetJSON(ctx, r, "theme_default", ""))
	s, err = GetString(ctx, r, "theme_default", "corporate_blue")
	require.NoError(t, err)
	assert.Equal(t, "corporate_blue", s)

	require.NoError(t, SetJSON(ctx, r, "theme_default", "garland"))
	s, err = GetString(ctx, r, "theme_default", "corporate_blue")
	require.NoError(t, err)
	assert.Equal(t, "garland", s)
}

func TestVersionedJSONHelpers(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	var list []string
	version, err := GetJSONVersioned(ctx, r, "list", &list)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.Nil(t, list)

	version, err = SetJSONIfVersion(ctx, r, "list", []string{"a"}, version)
	require.NoError(t, err)

	_, err = SetJSONIfVersion(ctx, r, "list", []string{"stale"}, 0)
	assert.True(t, errors.Is(err, ErrVersionConflict))

	got, err := GetJSONVersioned(ctx, r, "list", &list)
	require.NoError(t, err)
	assert.Equal(t, version, got)
	assert.Equal(t, []string{"a"}, list)
}

func TestCachedRepository_HitsAndInvalidation(t *testing.T) {
	inner := NewMemoryRepository()
	mc := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = mc.Close() })

	var hits, misses int
	r := NewCachedRepository(inner, mc, time.Minute, WithObserver(func(hit bool) {
		if hit {
			hits++
		} else {
			misses++
		}
	}))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("1")))

	for i := 0; i < 3; i++ {
		got, err := r.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "1", string(got))
	}
	assert.Equal(t, 1, misses)
	assert.Equal(t, 2, hits)

	// A write through the cached repository invalidates the entry.
	_, version, err := r.GetVersioned(ctx, "k")
	require.NoError(t, err)
	_, err = r.SetIfVersion(ctx, "k", []byte("2"), version)
	require.NoError(t, err)

	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))
	assert.Equal(t, 2, misses)
}

func TestCachedRepository_MissingNotCached(t *testing.T) {
	inner := NewMemoryRepository()
	mc := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = mc.Close() })

	r := NewCachedRepository(inner, mc, time.Minute)
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Written behind the cache's back: visible because misses are not cached.
	require.NoError(t, inner.Set(ctx, "k", []byte("v")))
	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

// interleavedRepository runs onGet once, after the inner read has finished
// but before the caller sees the value.
type interleavedRepository struct {
	*MemoryRepository
	onGet func()
}

func (r *interleavedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.MemoryRepository.Get(ctx, key)
	if fn := r.onGet; fn != nil {
		r.onGet = nil
		fn()
	}
	return value, err
}

func TestCachedRepository_WriteDuringFill(t *testing.T) {
	ctx := context.Background()
	inner := &interleavedRepository{MemoryRepository: NewMemoryRepository()}
	require.NoError(t, inner.Set(ctx, "k", []byte("old")))

	mc := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = mc.Close() })
	r := NewCachedRepository(inner, mc, time.Minute)

	inner.onGet = func() {
		require.NoError(t, r.Set(ctx, "k", []byte("new")))
	}

	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))

	got, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))

	// The next miss fills normally again.
	got, err = r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
	_, err = mc.Get(ctx, cacheKeyPrefix+"k")
	assert.NoError(t, err)
}

func TestCachedRepository_VersionedWriteDuringFill(t *testing.T) {
	ctx := context.Background()
	inner := &interleavedRepository{MemoryRepository: NewMemoryRepository()}
	version, err := inner.SetIfVersion(ctx, "k", []byte("old"), 0)
	require.NoError(t, err)

	mc := cache.NewSimpleMemoryCache(time.Minute)
	t.Cleanup(func() { _ = mc.Close() })
	r := NewCachedRepository(inner, mc, time.Minute)

	inner.onGet = func() {
		_, err := r.SetIfVersion(ctx, "k", []byte("new"), version)
		require.NoError(t, err)
	}

	_, err = r.Get(ctx, "k")
	require.NoError(t, err)

	got, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}
