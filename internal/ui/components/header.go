// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/ui/styles"
	"github.com/jeranaias/askdesk/internal/util"
)

// RenderHeader draws the title bar with the New Chat action on the right.
func RenderHeader(theme *styles.Theme, title, subtitle string, width int) string {
	button := theme.HeaderButton.Render("+ New Chat (ctrl+n)")
	inner := width - theme.Header.GetHorizontalFrameSize()
	room := inner - lipgloss.Width(button) - 1

	left := theme.HeaderTitle.Render(util.TruncateWidth(title, room))
	if subtitle != "" {
		if rest := room - lipgloss.Width(left) - 3; rest > 5 {
			left += "  " + theme.HeaderSubtitle.Render(util.TruncateWidth(subtitle, rest))
		}
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(button)
	if gap < 1 {
		gap = 1
	}
	line := left + lipgloss.NewStyle().Width(gap).Render("") + button
	return theme.Header.Width(width - theme.Header.GetHorizontalBorderSize()).Render(line)
}
