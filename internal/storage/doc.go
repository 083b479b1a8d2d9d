// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat session persistence for askdesk.
//
// # Layout
//
// All sessions of one namespace live under a single key,
// "<namespace>_chat_sessions", as a JSON array:
//
//	[{"id":"session_...","title":"...","messages":[...],
//	  "createdAt":"2025-03-01T10:30:00.000Z","updatedAt":"..."}]
//
// The key is held by a Backend: one JSON file per key (default), a SQLite
// key/value table, or an in-memory map.
//
// # Failure model
//
// List never fails. Missing data and any decode or shape problem both yield
// an empty list and a log line, so a corrupt store cannot break the chat.
// Writes return their error; callers that must not fail simply log it.
//
// The store serialises its own read-modify-write cycles but does no
// cross-process locking.
package storage
