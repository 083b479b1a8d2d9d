// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders saved chat sessions for sharing outside askdesk.
//
// # Supported Formats
//
//   - JSON: the session as stored, re-importable
//   - Markdown: human-readable, with cited sources under each answer
//   - HTML: a standalone page with embedded CSS
//
// # Usage
//
//	exporter, err := export.ForFormat("markdown", nil)
//	data, err := exporter.Export(&session)
//
// Or straight to a file:
//
//	path, err := export.ExportToFile(&session, exporter, &export.Options{OutputDir: "."})
package export
