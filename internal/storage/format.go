// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"strconv"
	"strings"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/util"
)

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// Column widths for FormatSessionList, in terminal cells.
const (
	listIDWidth      = 20
	listUpdatedWidth = 16
	listCountWidth   = 8
	minTitleWidth    = 10
)

// FormatSessionList formats sessions as a table fitting width cells.
// A width of 0 means 80. Sessions are shown in the order given.
func FormatSessionList(sessions []model.ChatSession, width int) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}
	if width <= 0 {
		width = 80
	}

	titleWidth := width - listIDWidth - listUpdatedWidth - listCountWidth - 3
	if titleWidth < minTitleWidth {
		titleWidth = minTitleWidth
	}
	rule := strings.Repeat("-", listIDWidth+listUpdatedWidth+listCountWidth+titleWidth+3)

	var sb strings.Builder
	sb.WriteString("Sessions:\n")
	sb.WriteString(rule + "\n")
	sb.WriteString(util.PadRight("ID", listIDWidth) + " " +
		util.PadRight("Updated", listUpdatedWidth) + " " +
		util.PadRight("Messages", listCountWidth) + " Title\n")
	sb.WriteString(rule + "\n")

	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = s.Preview(titleWidth)
		}
		sb.WriteString(util.PadRight(util.TruncateWidth(s.ID, listIDWidth), listIDWidth) + " " +
			util.PadRight(s.UpdatedAt.Local().Format("2006-01-02 15:04"), listUpdatedWidth) + " " +
			util.PadRight(strconv.Itoa(s.MessageCount()), listCountWidth) + " " +
			util.TruncateWidth(util.SingleLine(title), titleWidth) + "\n")
	}
	return sb.String()
}
