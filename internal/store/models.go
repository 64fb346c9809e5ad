// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "time"

// Variable is a named, versioned configuration value.
type Variable struct {
	Name      string
	Value     []byte
	Version   int64
	UpdatedAt time.Time
}

// Event is an event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
