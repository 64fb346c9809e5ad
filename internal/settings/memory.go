// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"context"
	"sync"
)

type memoryEntry struct {
	value   []byte
	version int64
}

// MemoryRepository is a thread-safe in-memory Repository, used in tests
// and when running without a database.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string]memoryEntry)}
}

// Get returns the stored value or ErrNotFound.
func (r *MemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, _, err := r.GetVersioned(ctx, key)
	return value, err
}

// Set overwrites the value of key.
func (r *MemoryRepository) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.data[key]
	r.data[key] = memoryEntry{value: clone(value), version: e.version + 1}
	return nil
}

// GetVersioned returns the value and its version.
func (r *MemoryRepository) GetVersioned(_ context.Context, key string) ([]byte, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.data[key]
	if !ok {
		return nil, 0, ErrNotFound
	}
	return clone(e.value), e.version, nil
}

// SetIfVersion writes value only if the stored version equals version.
func (r *MemoryRepository) SetIfVersion(_ context.Context, key string, value []byte, version int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.data[key].version != version {
		return 0, ErrVersionConflict
	}
	r.data[key] = memoryEntry{value: clone(value), version: version + 1}
	return version + 1, nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

var _ Versioned = (*MemoryRepository)(nil)
