// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across askdesk.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width aware truncation (CJK, emoji)
//   - PadRight: display-width aware padding for tables
//   - SingleLine: collapse newlines for one-line previews
//
// File Operations:
//   - WritePrivateFile: owner-only, crash-safe replace of a file
//
// # Usage
//
//	title := util.TruncateRunes(question, 50)
//	err := util.WritePrivateFile(path, data)
package util
