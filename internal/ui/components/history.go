// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/ui/styles"
	"github.com/jeranaias/askdesk/internal/util"
)

// RenderHistory draws the saved-sessions panel. sessions are shown in the
// given order; selected highlights one row and currentID marks the open
// conversation.
func RenderHistory(theme *styles.Theme, sessions []model.ChatSession, selected int, currentID string, width, height int) string {
	inner := width - theme.HistoryBox.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	lines := []string{theme.HistoryTitle.Render("History"), ""}
	if len(sessions) == 0 {
		lines = append(lines, theme.HistoryMeta.Render("No saved chats yet."))
	}

	// Each entry takes two lines; scroll so the selection stays visible.
	visible := (height - 6) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if selected >= visible {
		start = selected - visible + 1
	}

	for i := start; i < len(sessions) && i < start+visible; i++ {
		s := sessions[i]
		marker := "  "
		if s.ID == currentID {
			marker = "● "
		}
		title := marker + util.TruncateWidth(s.Title, inner-2)
		meta := fmt.Sprintf("  %s · %d %s", s.UpdatedAt.Local().Format("Jan 02 15:04"), s.MessageCount(), pluralMessages(s.MessageCount()))

		style := theme.HistoryItem
		if i == selected {
			style = theme.HistorySelected
		}
		lines = append(lines, style.Render(util.PadRight(title, inner)), theme.HistoryMeta.Render(util.TruncateWidth(meta, inner)))
	}

	lines = append(lines, "", theme.Hint.Render("enter open · del delete · esc close"))
	return theme.HistoryBox.Width(width - theme.HistoryBox.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n"))
}

func pluralMessages(n int) string {
	if n == 1 {
		return "message"
	}
	return "messages"
}
