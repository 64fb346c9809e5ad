// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package themes embeds core themes into the binary.
package themes

import "embed"

// FS contains the embedded corporate_blue theme. A theme of the same name
// in the themes directory takes precedence.
//
//go:embed all:corporate_blue
var FS embed.FS
