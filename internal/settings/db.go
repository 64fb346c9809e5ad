// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/olegiv/corporate-blue/internal/store"
)

// DBRepository stores settings in the variables table.
type DBRepository struct {
	queries *store.Queries
}

// NewDBRepository creates a repository backed by db.
func NewDBRepository(db store.DBTX) *DBRepository {
	return &DBRepository{queries: store.New(db)}
}

// Get returns the stored value or ErrNotFound.
func (r *DBRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, _, err := r.GetVersioned(ctx, key)
	return value, err
}

// Set overwrites the value of key.
func (r *DBRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.queries.UpsertVariable(ctx, store.UpsertVariableParams{
		Name:      key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
	return err
}

// GetVersioned returns the value and its version.
func (r *DBRepository) GetVersioned(ctx context.Context, key string) ([]byte, int64, error) {
	v, err := r.queries.GetVariable(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	return v.Value, v.Version, nil
}

// SetIfVersion writes value only if the stored version equals version.
func (r *DBRepository) SetIfVersion(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	now := time.Now().UTC()

	var (
		n   int64
		err error
	)
	if version == 0 {
		n, err = r.queries.InsertVariableIfAbsent(ctx, store.InsertVariableIfAbsentParams{
			Name:      key,
			Value:     value,
			UpdatedAt: now,
		})
	} else {
		n, err = r.queries.UpdateVariableIfVersion(ctx, store.UpdateVariableIfVersionParams{
			Value:     value,
			UpdatedAt: now,
			Name:      key,
			Version:   version,
		})
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrVersionConflict
	}
	return version + 1, nil
}

var _ Versioned = (*DBRepository)(nil)
