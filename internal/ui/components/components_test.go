// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/ui/styles"
	"github.com/jeranaias/askdesk/internal/util"
)

func testTheme() *styles.Theme {
	return styles.NewThemeFor(termenv.Ascii, true)
}

// =============================================================================
// TOASTS
// =============================================================================

func TestToastManager_NewestFirstAndLimit(t *testing.T) {
	m := NewToastManager()
	for _, msg := range []string{"one", "two", "three", "four"} {
		m.Add(ToastKindInfo, msg)
	}

	toasts := m.Toasts()
	require.Len(t, toasts, 3)
	assert.Equal(t, "four", toasts[0].Message)
	assert.Equal(t, "two", toasts[2].Message)
}

func TestToastManager_Prune(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.SetClock(func() time.Time { return now })

	m.AddSuccess("Copied to clipboard!")
	m.AddError("Request timeout. Please try again.")
	assert.True(t, m.Prune())

	now = now.Add(DefaultToastDuration)
	assert.True(t, m.Prune(), "error toast outlives success toast")
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, ToastKindError, m.Toasts()[0].Kind)

	now = now.Add(ErrorToastDuration)
	assert.False(t, m.Prune())
	assert.Equal(t, 0, m.Len())
}

func TestToastManager_Notify(t *testing.T) {
	m := NewToastManager()
	var n conversation.Notifier = m

	n.Notify(conversation.Notification{Level: conversation.LevelError, Message: "boom"})
	n.Notify(conversation.Notification{Level: conversation.LevelSuccess, Message: "yay"})
	n.Notify(conversation.Notification{Level: conversation.LevelInfo, Message: "fyi"})

	toasts := m.Toasts()
	require.Len(t, toasts, 3)
	assert.Equal(t, ToastKindInfo, toasts[0].Kind)
	assert.Equal(t, ToastKindSuccess, toasts[1].Kind)
	assert.Equal(t, ToastKindError, toasts[2].Kind)
	assert.Equal(t, ErrorToastDuration, toasts[2].Duration)
}

func TestToastManager_Dismiss(t *testing.T) {
	m := NewToastManager()
	id := m.AddError("a")
	m.AddError("b")

	m.Dismiss(id)
	require.Len(t, m.Toasts(), 1)
	assert.Equal(t, "b", m.Toasts()[0].Message)

	m.DismissAll()
	assert.Equal(t, 0, m.Len())
}

func TestRenderToasts(t *testing.T) {
	th := testTheme()
	assert.Empty(t, RenderToasts(th, nil, 80))

	out := RenderToasts(th, []Toast{{Message: "Copied to clipboard!", Kind: ToastKindSuccess}}, 80)
	assert.Contains(t, out, "Copied to clipboard!")
}

// =============================================================================
// MESSAGES
// =============================================================================

func assistantMsg() model.Message {
	return model.Message{
		ID:        "msg_2",
		Role:      model.RoleAssistant,
		Content:   "There are separate hostels.",
		Timestamp: time.Date(2025, 3, 14, 9, 5, 0, 0, time.Local),
		Sources: []model.Source{
			{SourceFile: "hostel.pdf", TextChunk: "Hostel blocks A to D house first years."},
		},
	}
}

func TestRenderMessage_User(t *testing.T) {
	msg := model.Message{
		ID:        "msg_1",
		Role:      model.RoleUser,
		Content:   "What are the hostel facilities?",
		Timestamp: time.Date(2025, 3, 14, 9, 4, 0, 0, time.Local),
	}
	out := RenderMessage(testTheme(), msg, MessageOptions{Width: 100})
	assert.Contains(t, out, "What are the hostel facilities?")
	assert.Contains(t, out, "09:04")
}

func TestRenderMessage_AssistantCollapsed(t *testing.T) {
	out := RenderMessage(testTheme(), assistantMsg(), MessageOptions{Width: 100})
	assert.Contains(t, out, "There are separate hostels.")
	assert.Contains(t, out, "09:05")
	assert.Contains(t, out, "1 Source")
	assert.NotContains(t, out, "hostel.pdf")
	assert.NotContains(t, out, "ctrl+y copy")
}

func TestRenderMessage_AssistantExpandedAndSelected(t *testing.T) {
	out := RenderMessage(testTheme(), assistantMsg(), MessageOptions{
		Width:           100,
		Selected:        true,
		SourcesExpanded: true,
	})
	assert.Contains(t, out, "hostel.pdf")
	assert.Contains(t, out, "Hostel blocks A to D")
	assert.Contains(t, out, "ctrl+y copy")
	assert.Contains(t, out, "ctrl+s sources")
}

func TestRenderMessage_UsesMarkdown(t *testing.T) {
	var gotWidth int
	md := func(content string, width int) string {
		gotWidth = width
		return "RENDERED:" + content
	}
	out := RenderMessage(testTheme(), assistantMsg(), MessageOptions{Width: 100, Markdown: md})
	assert.Contains(t, out, "RENDERED:There are separate hostels.")
	assert.Greater(t, gotWidth, 0)
	assert.Less(t, gotWidth, 100)
}

func TestRenderMessage_NoSourcesNoToggle(t *testing.T) {
	msg := assistantMsg()
	msg.Sources = nil
	out := RenderMessage(testTheme(), msg, MessageOptions{Width: 100, Selected: true})
	assert.NotContains(t, out, "Source")
	assert.NotContains(t, out, "ctrl+s")
}

func TestSourcesToggleLabel(t *testing.T) {
	assert.Equal(t, "▸ 1 Source", SourcesToggleLabel(1, false))
	assert.Equal(t, "▾ 3 Sources", SourcesToggleLabel(3, true))
}

func TestClampLines(t *testing.T) {
	short := ClampLines("one line", 40, 2)
	assert.Equal(t, []string{"one line"}, short)

	long := strings.Repeat("excerpt words ", 20)
	lines := ClampLines(long, 30, 2)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], "..."))
	for _, l := range lines {
		assert.LessOrEqual(t, util.StringWidth(l), 30)
	}

	assert.Nil(t, ClampLines("x", 10, 0))
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 1, 1, 21, 7, 0, 0, time.Local)
	assert.Equal(t, "21:07", FormatTime(ts))
}

// =============================================================================
// SCREENS
// =============================================================================

func TestRenderWelcome(t *testing.T) {
	out := RenderWelcome(testTheme(), Welcome{
		Title:    "VIT Chennai AI Assistant",
		Message:  "Ask me anything",
		Prompts:  []string{"Library timings?", "Grading system?"},
		Selected: 1,
	}, 100)
	assert.Contains(t, out, "VIT Chennai AI Assistant")
	assert.Contains(t, out, "Library timings?")
	assert.Contains(t, out, "Grading system?")
	assert.Contains(t, out, "tab to pick")
}

func TestRenderWelcome_NoPrompts(t *testing.T) {
	out := RenderWelcome(testTheme(), Welcome{Title: "Hi", Selected: -1}, 60)
	assert.Contains(t, out, "Hi")
	assert.NotContains(t, out, "tab to pick")
}

func TestRenderConfirm(t *testing.T) {
	out := RenderConfirm(testTheme(), NewChatPrompt, 100, 20)
	assert.Contains(t, out, "Start a new chat? Current conversation will be saved.")
	assert.Contains(t, out, "yes")
}

func TestRenderHeader(t *testing.T) {
	out := RenderHeader(testTheme(), "VIT Chennai AI Assistant", "Your smart college companion", 100)
	assert.Contains(t, out, "VIT Chennai AI Assistant")
	assert.Contains(t, out, "New Chat")
}

func TestRenderHistory(t *testing.T) {
	th := testTheme()
	assert.Contains(t, RenderHistory(th, nil, 0, "", 40, 20), "No saved chats yet.")

	sessions := []model.ChatSession{
		{ID: "session_a", Title: "Hostel facilities", UpdatedAt: time.Now(), Messages: make([]model.Message, 2)},
		{ID: "session_b", Title: "Library timings", UpdatedAt: time.Now(), Messages: make([]model.Message, 1)},
	}
	out := RenderHistory(th, sessions, 1, "session_a", 40, 20)
	assert.Contains(t, out, "Hostel facilities")
	assert.Contains(t, out, "Library timings")
	assert.Contains(t, out, "● Hostel")
	assert.Contains(t, out, "1 message")
}
