// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// STORED RECORD TYPES
// =============================================================================

// storedSession is the on-disk shape of a ChatSession. Times are strings so
// decode can reject anything that does not parse.
type storedSession struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Messages  *[]storedMessage `json:"messages"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
}

// storedMessage is the on-disk shape of a Message.
type storedMessage struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Sources   []model.Source `json:"sources,omitempty"`
}

// timeLayout is written on save. RFC3339Nano parsing also accepts the
// millisecond form produced by JavaScript's toISOString.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(field, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return t, nil
}

// =============================================================================
// ENCODE
// =============================================================================

func encodeSessions(sessions []model.ChatSession) ([]byte, error) {
	records := make([]storedSession, 0, len(sessions))
	for _, s := range sessions {
		msgs := make([]storedMessage, 0, len(s.Messages))
		for _, m := range s.Messages {
			msgs = append(msgs, storedMessage{
				ID:        m.ID,
				Role:      string(m.Role),
				Content:   m.Content,
				Timestamp: formatTime(m.Timestamp),
				Sources:   m.Sources,
			})
		}
		records = append(records, storedSession{
			ID:        s.ID,
			Title:     s.Title,
			Messages:  &msgs,
			CreatedAt: formatTime(s.CreatedAt),
			UpdatedAt: formatTime(s.UpdatedAt),
		})
	}
	return json.Marshal(records)
}

// =============================================================================
// SCHEMA-VALIDATED DECODE
// =============================================================================

// decodeSessions parses a stored collection. Any shape problem anywhere in
// the collection fails the whole decode.
func decodeSessions(data []byte) ([]model.ChatSession, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("stored sessions: expected JSON array")
	}

	var records []storedSession
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("stored sessions: %w", err)
	}

	sessions := make([]model.ChatSession, 0, len(records))
	for i, rec := range records {
		s, err := rec.toModel()
		if err != nil {
			return nil, fmt.Errorf("stored session %d: %w", i, err)
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r storedSession) toModel() (model.ChatSession, error) {
	if r.ID == "" {
		return model.ChatSession{}, fmt.Errorf("missing id")
	}
	if r.Messages == nil {
		return model.ChatSession{}, fmt.Errorf("session %s: missing messages", r.ID)
	}
	created, err := parseTime("createdAt", r.CreatedAt)
	if err != nil {
		return model.ChatSession{}, fmt.Errorf("session %s: %w", r.ID, err)
	}
	updated, err := parseTime("updatedAt", r.UpdatedAt)
	if err != nil {
		return model.ChatSession{}, fmt.Errorf("session %s: %w", r.ID, err)
	}

	msgs := make([]model.Message, 0, len(*r.Messages))
	for j, m := range *r.Messages {
		if m.ID == "" {
			return model.ChatSession{}, fmt.Errorf("session %s: message %d: missing id", r.ID, j)
		}
		role := model.Role(m.Role)
		if !role.Valid() {
			return model.ChatSession{}, fmt.Errorf("session %s: message %d: invalid role %q", r.ID, j, m.Role)
		}
		ts, err := parseTime("timestamp", m.Timestamp)
		if err != nil {
			return model.ChatSession{}, fmt.Errorf("session %s: message %d: %w", r.ID, j, err)
		}
		msgs = append(msgs, model.Message{
			ID:        m.ID,
			Role:      role,
			Content:   m.Content,
			Timestamp: ts,
			Sources:   m.Sources,
		})
	}

	return model.ChatSession{
		ID:        r.ID,
		Title:     r.Title,
		Messages:  msgs,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
