// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// =============================================================================
// BACKEND INTERFACE
// =============================================================================

// Backend is a durable key/value map holding raw values.
type Backend interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set replaces the value for key as a whole.
	Set(key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// SQLiteFileName is the database file created in the storage directory.
const SQLiteFileName = "askdesk.db"

// Kinds lists every backend kind.
var Kinds = []string{KindFile, KindSQLite, KindMemory}

// ValidKind reports whether kind names a known backend.
func ValidKind(kind string) bool {
	for _, k := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Open creates the backend named by kind rooted at dir.
func Open(kind, dir string) (Backend, error) {
	switch kind {
	case KindFile, "":
		return NewFileBackend(dir)
	case KindSQLite:
		return OpenSQLite(filepath.Join(dir, SQLiteFileName))
	case KindMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
}

// validateKey rejects keys that could escape a directory or are empty.
func validateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." || strings.Contains(key, "\x00") {
		return ErrInvalidKey
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// StoreError represents a storage-related error.
// It implements the error interface and can be compared using errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing store errors.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

var (
	// ErrInvalidKey is returned for empty keys or keys containing path separators.
	ErrInvalidKey = &StoreError{Message: "invalid storage key"}

	// ErrSessionNotFound is returned by Lookup when no session matches.
	ErrSessionNotFound = &StoreError{Message: "session not found"}

	// ErrAmbiguousID is returned by Lookup when a prefix matches several sessions.
	ErrAmbiguousID = &StoreError{Message: "session id prefix is ambiguous"}

	// ErrClosed is returned by backends used after Close.
	ErrClosed = &StoreError{Message: "storage backend closed"}
)
