// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strings"
	"testing"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/util"
)

func TestFormatSessionList_Empty(t *testing.T) {
	if got := FormatSessionList(nil, 80); got != "No sessions found." {
		t.Errorf("FormatSessionList(nil) = %q", got)
	}
}

func TestFormatSessionList_FitsWidth(t *testing.T) {
	sessions := []model.ChatSession{
		sampleSession("session_0f8fad5b-d9cb-469f-a165-70867728950e", base),
		{ID: "session_2", Title: strings.Repeat("宿舍", 40), UpdatedAt: base},
	}

	out := FormatSessionList(sessions, 80)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), out)
	}
	for i, line := range lines {
		if w := util.StringWidth(line); w > 80 {
			t.Errorf("line %d is %d cells wide: %q", i, w, line)
		}
	}
	if !strings.Contains(out, "What are the hostel facilities?") {
		t.Error("missing title")
	}
	if !strings.Contains(lines[4], "2 ") {
		t.Errorf("missing message count in %q", lines[4])
	}
}

func TestFormatSessionList_PreviewFallback(t *testing.T) {
	s := sampleSession("session_1", base)
	s.Title = ""
	out := FormatSessionList([]model.ChatSession{s}, 100)
	if !strings.Contains(out, "What are the hostel facilities?") {
		t.Errorf("expected preview as title:\n%s", out)
	}
}
