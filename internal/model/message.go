// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/askdesk/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// Messages are values: once appended to a session they are never edited.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// Sources is only set on assistant messages.
	Sources []Source `json:"sources,omitempty"`
}

// NewUserMessage creates a user message stamped with ts.
func NewUserMessage(content string, ts time.Time) Message {
	return Message{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: ts,
	}
}

// NewAssistantMessage creates an assistant message stamped with ts.
// Sources are de-duplicated by file before being attached.
func NewAssistantMessage(content string, sources []Source, ts time.Time) Message {
	return Message{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: ts,
		Sources:   UniqueSources(sources),
	}
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// IsAssistant reports whether the message is an answer.
func (m Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// HasSources reports whether the message carries any citations.
func (m Message) HasSources() bool {
	return len(m.Sources) > 0
}

// Preview returns a single-line preview truncated to maxLen characters.
func (m Message) Preview(maxLen int) string {
	return util.TruncateRunes(util.SingleLine(m.Content), maxLen)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

// NewMessageID returns a fresh message identifier.
func NewMessageID() string {
	return "msg_" + uuid.NewString()
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return "session_" + uuid.NewString()
}
