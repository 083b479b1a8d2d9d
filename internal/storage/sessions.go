// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/askdesk/internal/logging"
	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

const (
	// DefaultNamespace prefixes the storage key when none is configured.
	DefaultNamespace = "vit_chennai"

	// DefaultMaxSessions is the default cap on stored sessions.
	DefaultMaxSessions = 100

	keySuffix = "_chat_sessions"
)

// StoreOptions configures a SessionStore.
type StoreOptions struct {
	// Namespace selects the key "<namespace>_chat_sessions".
	// Empty means DefaultNamespace.
	Namespace string

	// MaxSessions limits stored sessions; the least recently updated are
	// dropped on save. 0 = unlimited.
	MaxSessions int

	// Logger receives decode and write failures. Nil discards.
	Logger *log.Logger
}

// SessionStore persists chat sessions of one namespace in a Backend.
// It is safe for concurrent use within a process.
type SessionStore struct {
	backend     Backend
	key         string
	maxSessions int
	log         *log.Logger

	mu sync.Mutex
}

// NewSessionStore creates a store over backend.
func NewSessionStore(backend Backend, opts StoreOptions) *SessionStore {
	ns := strings.TrimSpace(opts.Namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	max := opts.MaxSessions
	if max < 0 {
		max = 0
	}
	return &SessionStore{
		backend:     backend,
		key:         KeyFor(ns),
		maxSessions: max,
		log:         logging.OrDiscard(opts.Logger),
	}
}

// KeyFor returns the storage key used for namespace.
func KeyFor(namespace string) string {
	return namespace + keySuffix
}

// Key returns the storage key of this store.
func (s *SessionStore) Key() string {
	return s.key
}

// Backend returns the underlying backend.
func (s *SessionStore) Backend() Backend {
	return s.backend
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// List returns all stored sessions in storage order. It never fails: read
// errors, missing data and corrupt data all produce an empty list.
func (s *SessionStore) List() []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions, _ := s.load()
	return sessions
}

// load reads and decodes the collection. Caller holds mu.
// A backend read error is returned so writers do not overwrite data they
// could not see; undecodable data fails closed to an empty collection.
func (s *SessionStore) load() ([]model.ChatSession, error) {
	data, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.log.Error("Error loading chat sessions", "key", s.key, "err", err)
		return []model.ChatSession{}, fmt.Errorf("read sessions: %w", err)
	}
	if !ok {
		return []model.ChatSession{}, nil
	}

	sessions, err := decodeSessions(data)
	if err != nil {
		s.log.Error("Error loading chat sessions", "key", s.key, "err", err)
		return []model.ChatSession{}, nil
	}
	if sessions == nil {
		return []model.ChatSession{}, nil
	}
	return sessions, nil
}

// Get returns the session with id.
func (s *SessionStore) Get(id string) (model.ChatSession, bool) {
	for _, sess := range s.List() {
		if sess.ID == id {
			return sess, true
		}
	}
	return model.ChatSession{}, false
}

// Lookup finds a session by exact id or by unique id prefix.
func (s *SessionStore) Lookup(idOrPrefix string) (model.ChatSession, error) {
	if idOrPrefix == "" {
		return model.ChatSession{}, ErrSessionNotFound
	}
	var matches []model.ChatSession
	for _, sess := range s.List() {
		if sess.ID == idOrPrefix {
			return sess, nil
		}
		if strings.HasPrefix(sess.ID, idOrPrefix) {
			matches = append(matches, sess)
		}
	}
	switch len(matches) {
	case 0:
		return model.ChatSession{}, ErrSessionNotFound
	case 1:
		return matches[0], nil
	default:
		return model.ChatSession{}, fmt.Errorf("%w: %q matches %d sessions", ErrAmbiguousID, idOrPrefix, len(matches))
	}
}

// Recent returns sessions ordered by UpdatedAt, most recent first.
func (s *SessionStore) Recent() []model.ChatSession {
	sessions := s.List()
	SortByUpdated(sessions)
	return sessions
}

// SortByUpdated orders sessions most recently updated first, in place.
func SortByUpdated(sessions []model.ChatSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Save replaces the stored session with the same id, or appends it, and
// writes the whole collection back.
func (s *SessionStore) Save(session model.ChatSession) error {
	if session.ID == "" {
		return fmt.Errorf("save session: empty id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	replaced := false
	for i := range sessions {
		if sessions[i].ID == session.ID {
			sessions[i] = session
			replaced = true
			break
		}
	}
	if !replaced {
		sessions = append(sessions, session)
	}

	sessions = s.enforceLimit(sessions, session.ID)
	return s.write(sessions, "save", session.ID)
}

// enforceLimit drops the least recently updated sessions over the cap,
// never the one just saved. Storage order is otherwise preserved.
func (s *SessionStore) enforceLimit(sessions []model.ChatSession, keepID string) []model.ChatSession {
	if s.maxSessions <= 0 || len(sessions) <= s.maxSessions {
		return sessions
	}

	candidates := make([]model.ChatSession, 0, len(sessions))
	for _, sess := range sessions {
		if sess.ID != keepID {
			candidates = append(candidates, sess)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.Before(candidates[j].UpdatedAt)
	})

	excess := len(sessions) - s.maxSessions
	drop := make(map[string]struct{}, excess)
	for i := 0; i < excess && i < len(candidates); i++ {
		drop[candidates[i].ID] = struct{}{}
	}

	kept := sessions[:0]
	for _, sess := range sessions {
		if _, gone := drop[sess.ID]; !gone {
			kept = append(kept, sess)
		}
	}
	s.log.Debug("Trimmed chat sessions", "dropped", len(drop), "max", s.maxSessions)
	return kept
}

// Delete removes the session with id. Deleting an absent id is a no-op.
func (s *SessionStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	filtered := make([]model.ChatSession, 0, len(sessions))
	for _, sess := range sessions {
		if sess.ID != id {
			filtered = append(filtered, sess)
		}
	}
	if len(filtered) == len(sessions) {
		return nil
	}
	return s.write(filtered, "delete", id)
}

// Clear removes every stored session of this namespace.
func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(s.key); err != nil {
		s.log.Error("Error clearing chat sessions", "key", s.key, "err", err)
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

// write encodes and stores the collection. Caller holds mu.
func (s *SessionStore) write(sessions []model.ChatSession, op, id string) error {
	data, err := encodeSessions(sessions)
	if err != nil {
		s.log.Error("Error encoding chat sessions", "op", op, "id", id, "err", err)
		return fmt.Errorf("%s session: %w", op, err)
	}
	if err := s.backend.Set(s.key, data); err != nil {
		s.log.Error("Error saving chat sessions", "op", op, "id", id, "err", err)
		return fmt.Errorf("%s session: %w", op, err)
	}
	s.log.Debug("Wrote chat sessions", "op", op, "id", id, "count", len(sessions))
	return nil
}
