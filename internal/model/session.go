// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/jeranaias/askdesk/internal/util"
)

// TitleMaxRunes is the number of characters of the first question kept as a
// session title.
const TitleMaxRunes = 50

// ChatSession represents one persisted conversation.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionTitle derives a title from the first question of a conversation:
// its first 50 characters with line breaks flattened.
func SessionTitle(firstQuestion string) string {
	return util.TruncateRunesNoEllipsis(util.SingleLine(firstQuestion), TitleMaxRunes)
}

// PlaceholderTitle is the title used when a session's first saved exchange
// was not its first question.
func PlaceholderTitle(sessionID string) string {
	return "Chat " + sessionID
}

// MessageCount returns the number of messages in the session.
func (s ChatSession) MessageCount() int {
	return len(s.Messages)
}

// Preview returns the first user message truncated to maxLen characters.
// Returns empty string if no user messages exist.
func (s ChatSession) Preview(maxLen int) string {
	for _, msg := range s.Messages {
		if msg.IsUser() && msg.Content != "" {
			return msg.Preview(maxLen)
		}
	}
	return ""
}

// Clone returns a deep copy so callers can hand sessions across goroutines.
func (s ChatSession) Clone() ChatSession {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, msg := range s.Messages {
		out.Messages[i] = msg
		if msg.Sources != nil {
			out.Messages[i].Sources = append([]Source(nil), msg.Sources...)
		}
	}
	return out
}
