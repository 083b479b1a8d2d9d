// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleUser, true},
		{RoleAssistant, true},
		{Role("system"), false},
		{Role(""), false},
	}

	for _, tc := range tests {
		if got := tc.role.Valid(); got != tc.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tc.role, got, tc.want)
		}
	}
}

func TestRole_DisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Assistant" {
		t.Errorf("RoleAssistant.DisplayName() = %q", RoleAssistant.DisplayName())
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	msg := NewUserMessage("What are the hostel facilities?", now)

	if !msg.IsUser() {
		t.Errorf("expected user role, got %q", msg.Role)
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if !msg.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, now)
	}
	if msg.HasSources() {
		t.Error("user message should not carry sources")
	}
}

func TestNewAssistantMessage_DedupsSources(t *testing.T) {
	sources := []Source{
		{SourceFile: "faq.pdf", TextChunk: "first"},
		{SourceFile: "faq.pdf", TextChunk: "second"},
	}
	msg := NewAssistantMessage("answer", sources, time.Now())

	if !msg.IsAssistant() {
		t.Fatalf("expected assistant role, got %q", msg.Role)
	}
	if len(msg.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(msg.Sources))
	}
	if msg.Sources[0].TextChunk != "first" {
		t.Errorf("kept excerpt %q, want %q", msg.Sources[0].TextChunk, "first")
	}
}

func TestMessageIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewMessageID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if !strings.HasPrefix(NewSessionID(), "session_") {
		t.Error("session ids should use the session_ prefix")
	}
}

func TestMessage_Preview(t *testing.T) {
	msg := Message{Content: "line one\nline two"}
	if got := msg.Preview(100); got != "line one line two" {
		t.Errorf("Preview = %q", got)
	}
	if got := msg.Preview(9); got != "line o..." {
		t.Errorf("Preview(9) = %q", got)
	}
}

// =============================================================================
// SOURCE TESTS
// =============================================================================

func TestUniqueSources(t *testing.T) {
	tests := []struct {
		name  string
		input []Source
		want  []string // "file:chunk"
	}{
		{"nil", nil, nil},
		{"empty", []Source{}, nil},
		{
			name:  "single",
			input: []Source{{SourceFile: "hostel.pdf", TextChunk: "rooms"}},
			want:  []string{"hostel.pdf:rooms"},
		},
		{
			name: "first excerpt wins",
			input: []Source{
				{SourceFile: "faq.pdf", TextChunk: "A"},
				{SourceFile: "faq.pdf", TextChunk: "B"},
			},
			want: []string{"faq.pdf:A"},
		},
		{
			name: "order preserved",
			input: []Source{
				{SourceFile: "b.pdf", TextChunk: "1"},
				{SourceFile: "a.pdf", TextChunk: "2"},
				{SourceFile: "b.pdf", TextChunk: "3"},
				{SourceFile: "c.pdf", TextChunk: "4"},
			},
			want: []string{"b.pdf:1", "a.pdf:2", "c.pdf:4"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := UniqueSources(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tc.want), got)
			}
			for i, s := range got {
				if key := s.SourceFile + ":" + s.TextChunk; key != tc.want[i] {
					t.Errorf("[%d] = %q, want %q", i, key, tc.want[i])
				}
			}
		})
	}
}

func TestUniqueSources_DoesNotModifyInput(t *testing.T) {
	input := []Source{
		{SourceFile: "faq.pdf", TextChunk: "A"},
		{SourceFile: "faq.pdf", TextChunk: "B"},
	}
	_ = UniqueSources(input)
	if len(input) != 2 || input[1].TextChunk != "B" {
		t.Errorf("input was modified: %v", input)
	}
}

func TestSourcesLabel(t *testing.T) {
	if SourcesLabel(1) != "Source" {
		t.Error("singular label wrong")
	}
	if SourcesLabel(0) != "Sources" || SourcesLabel(3) != "Sources" {
		t.Error("plural label wrong")
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "What are the hostel facilities?", "What are the hostel facilities?"},
		{
			name:  "cut at 50",
			input: strings.Repeat("a", 60),
			want:  strings.Repeat("a", 50),
		},
		{"newlines", "first line\nsecond", "first line second"},
		{"unicode", strings.Repeat("é", 55), strings.Repeat("é", 50)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SessionTitle(tc.input); got != tc.want {
				t.Errorf("SessionTitle(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestPlaceholderTitle(t *testing.T) {
	if got := PlaceholderTitle("session_42"); got != "Chat session_42" {
		t.Errorf("PlaceholderTitle = %q", got)
	}
}

func TestChatSession_Preview(t *testing.T) {
	s := ChatSession{Messages: []Message{
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "Library timings?"},
	}}
	if got := s.Preview(50); got != "Library timings?" {
		t.Errorf("Preview = %q", got)
	}
	if got := (ChatSession{}).Preview(50); got != "" {
		t.Errorf("empty Preview = %q", got)
	}
}

func TestChatSession_Clone(t *testing.T) {
	orig := ChatSession{
		ID: "session_1",
		Messages: []Message{
			{Role: RoleAssistant, Content: "a", Sources: []Source{{SourceFile: "x.pdf"}}},
		},
	}
	clone := orig.Clone()
	clone.Messages[0].Content = "changed"
	clone.Messages[0].Sources[0].SourceFile = "y.pdf"

	if orig.Messages[0].Content != "a" {
		t.Error("clone shares message slice")
	}
	if orig.Messages[0].Sources[0].SourceFile != "x.pdf" {
		t.Error("clone shares sources slice")
	}
	if clone.MessageCount() != 1 {
		t.Errorf("MessageCount = %d", clone.MessageCount())
	}
}
