// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package settings provides key/value site configuration storage.
//
// Values are opaque bytes at the repository level; the helpers in this
// package encode them as JSON.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a key has never been set.
	ErrNotFound = errors.New("settings: key not found")

	// ErrVersionConflict is returned by SetIfVersion when the stored
	// version differs from the expected one.
	ErrVersionConflict = errors.New("settings: version conflict")
)

// Repository reads and writes raw setting values.
type Repository interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value of key.
	Set(ctx context.Context, key string, value []byte) error
}

// Versioned is a Repository that tracks a per-key version for
// compare-and-swap writes. A key that was never set has version 0.
type Versioned interface {
	Repository

	// GetVersioned returns the value and its version. For a missing key
	// it returns ErrNotFound and version 0.
	GetVersioned(ctx context.Context, key string) ([]byte, int64, error)

	// SetIfVersion writes value only if the current version equals
	// version and returns the new version. Version 0 means the key must
	// not exist yet.
	SetIfVersion(ctx context.Context, key string, value []byte, version int64) (int64, error)
}

// GetJSON decodes the value of key into dst.
// It reports false with a nil error when the key is unset.
func GetJSON(ctx context.Context, r Repository, key string, dst any) (bool, error) {
	raw, err := r.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading setting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, r Repository, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}
	if err := r.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("writing setting %s: %w", key, err)
	}
	return nil
}

// GetBool returns the boolean stored under key, or def when unset.
func GetBool(ctx context.Context, r Repository, key string, def bool) (bool, error) {
	var v bool
	found, err := GetJSON(ctx, r, key, &v)
	if err != nil {
		return def, err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// SetBool stores a boolean under key.
func SetBool(ctx context.Context, r Repository, key string, v bool) error {
	return SetJSON(ctx, r, key, v)
}

// GetString returns the string stored under key, or def when unset or empty.
func GetString(ctx context.Context, r Repository, key, def string) (string, error) {
	var v string
	found, err := GetJSON(ctx, r, key, &v)
	if err != nil {
		return def, err
	}
	if !found || v == "" {
		return def, nil
	}
	return v, nil
}

// GetJSONVersioned is GetJSON for a Versioned repository; it also returns
// the stored version (0 when unset).
func GetJSONVersioned(ctx context.Context, r Versioned, key string, dst any) (int64, error) {
	raw, version, err := r.GetVersioned(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading setting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return version, fmt.Errorf("decoding setting %s: %w", key, err)
	}
	return version, nil
}

// SetJSONIfVersion encodes v and writes it with SetIfVersion.
func SetJSONIfVersion(ctx context.Context, r Versioned, key string, v any, version int64) (int64, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encoding setting %s: %w", key, err)
	}
	newVersion, err := r.SetIfVersion(ctx, key, raw, version)
	if err != nil {
		return 0, fmt.Errorf("writing setting %s: %w", key, err)
	}
	return newVersion, nil
}
