// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getModuleActive = `
SELECT is_active FROM modules WHERE name = ?
`

// GetModuleActive returns the stored active flag of a module or sql.ErrNoRows.
func (q *Queries) GetModuleActive(ctx context.Context, name string) (bool, error) {
	var active bool
	err := q.db.QueryRowContext(ctx, getModuleActive, name).Scan(&active)
	return active, err
}

const insertModule = `
INSERT INTO modules (name, is_active, updated_at) VALUES (?, ?, ?)
ON CONFLICT(name) DO NOTHING
`

// InsertModule records a module the first time it is seen.
func (q *Queries) InsertModule(ctx context.Context, name string, active bool) error {
	_, err := q.db.ExecContext(ctx, insertModule, name, active, time.Now().UTC())
	return err
}

const setModuleActive = `
UPDATE modules SET is_active = ?, updated_at = ? WHERE name = ?
`

// SetModuleActive updates the active flag of a module.
// It returns the number of rows affected (0 or 1).
func (q *Queries) SetModuleActive(ctx context.Context, name string, active bool) (int64, error) {
	result, err := q.db.ExecContext(ctx, setModuleActive, active, time.Now().UTC(), name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const isModuleMigrationApplied = `
SELECT COUNT(*) FROM module_migrations WHERE module = ? AND version = ?
`

// IsModuleMigrationApplied reports whether a module migration was recorded.
func (q *Queries) IsModuleMigrationApplied(ctx context.Context, module string, version int64) (bool, error) {
	var count int64
	if err := q.db.QueryRowContext(ctx, isModuleMigrationApplied, module, version).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const recordModuleMigration = `
INSERT INTO module_migrations (module, version, applied_at) VALUES (?, ?, ?)
`

// RecordModuleMigration marks a module migration as applied.
func (q *Queries) RecordModuleMigration(ctx context.Context, module string, version int64) error {
	_, err := q.db.ExecContext(ctx, recordModuleMigration, module, version, time.Now().UTC())
	return err
}
