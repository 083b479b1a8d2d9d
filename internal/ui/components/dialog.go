// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// NewChatPrompt is the confirmation shown before discarding a conversation.
const NewChatPrompt = "Start a new chat? Current conversation will be saved."

// RenderConfirm draws a yes/no dialog centred in a width x height area.
func RenderConfirm(theme *styles.Theme, question string, width, height int) string {
	keys := theme.DialogKey.Render("y") + " yes   " + theme.DialogKey.Render("n") + " no"
	box := theme.DialogBox.Render(lipgloss.JoinVertical(lipgloss.Center,
		theme.DialogTitle.Render(question),
		"",
		keys,
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
