// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

const getVariable = `
SELECT name, value, version, updated_at FROM variables WHERE name = ?
`

// GetVariable returns the variable with the given name or sql.ErrNoRows.
func (q *Queries) GetVariable(ctx context.Context, name string) (Variable, error) {
	row := q.db.QueryRowContext(ctx, getVariable, name)
	var v Variable
	err := row.Scan(&v.Name, &v.Value, &v.Version, &v.UpdatedAt)
	return v, err
}

const listVariables = `
SELECT name, value, version, updated_at FROM variables ORDER BY name
`

// ListVariables returns all variables ordered by name.
func (q *Queries) ListVariables(ctx context.Context) ([]Variable, error) {
	rows, err := q.db.QueryContext(ctx, listVariables)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Variable
	for rows.Next() {
		var v Variable
		if err := rows.Scan(&v.Name, &v.Value, &v.Version, &v.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertVariable = `
INSERT INTO variables (name, value, version, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT(name) DO UPDATE SET
    value = excluded.value,
    version = variables.version + 1,
    updated_at = excluded.updated_at
RETURNING name, value, version, updated_at
`

// UpsertVariableParams holds the arguments of UpsertVariable.
type UpsertVariableParams struct {
	Name      string
	Value     []byte
	UpdatedAt time.Time
}

// UpsertVariable writes a variable unconditionally and bumps its version.
func (q *Queries) UpsertVariable(ctx context.Context, arg UpsertVariableParams) (Variable, error) {
	row := q.db.QueryRowContext(ctx, upsertVariable, arg.Name, arg.Value, arg.UpdatedAt)
	var v Variable
	err := row.Scan(&v.Name, &v.Value, &v.Version, &v.UpdatedAt)
	return v, err
}

const updateVariableIfVersion = `
UPDATE variables
SET value = ?, version = version + 1, updated_at = ?
WHERE name = ? AND version = ?
`

// UpdateVariableIfVersionParams holds the arguments of UpdateVariableIfVersion.
type UpdateVariableIfVersionParams struct {
	Value     []byte
	UpdatedAt time.Time
	Name      string
	Version   int64
}

// UpdateVariableIfVersion writes a variable only if its stored version matches.
// It returns the number of rows affected (0 or 1).
func (q *Queries) UpdateVariableIfVersion(ctx context.Context, arg UpdateVariableIfVersionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateVariableIfVersion,
		arg.Value, arg.UpdatedAt, arg.Name, arg.Version)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertVariableIfAbsent = `
INSERT INTO variables (name, value, version, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT(name) DO NOTHING
`

// InsertVariableIfAbsentParams holds the arguments of InsertVariableIfAbsent.
type InsertVariableIfAbsentParams struct {
	Name      string
	Value     []byte
	UpdatedAt time.Time
}

// InsertVariableIfAbsent creates a variable only if the name is unused.
// It returns the number of rows affected (0 or 1).
func (q *Queries) InsertVariableIfAbsent(ctx context.Context, arg InsertVariableIfAbsentParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertVariableIfAbsent, arg.Name, arg.Value, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
