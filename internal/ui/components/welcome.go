// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/ui/styles"
	"github.com/jeranaias/askdesk/internal/util"
)

// Welcome describes the empty-conversation screen.
type Welcome struct {
	Title   string
	Message string

	// Prompts are the starter questions; Selected indexes the highlighted
	// one, or -1 for none.
	Prompts  []string
	Selected int
}

// RenderWelcome draws the welcome text and the starter prompts, centred
// in width.
func RenderWelcome(theme *styles.Theme, w Welcome, width int) string {
	var parts []string
	if w.Title != "" {
		parts = append(parts, theme.WelcomeTitle.Render(w.Title))
	}
	if w.Message != "" {
		parts = append(parts, theme.WelcomeText.Render(w.Message))
	}

	// Two columns when there is room, like the grid in the web client.
	promptW := width - 4
	cols := 1
	if width >= 90 {
		cols = 2
		promptW = width/2 - 4
	}
	if promptW < 10 {
		promptW = 10
	}

	var cells []string
	for i, p := range w.Prompts {
		style := theme.Prompt
		if i == w.Selected {
			style = theme.PromptSelected
		}
		label := util.TruncateWidth(p, promptW-style.GetHorizontalFrameSize())
		cells = append(cells, style.Width(promptW-style.GetHorizontalBorderSize()).Render(label))
	}

	var rows []string
	for i := 0; i < len(cells); i += cols {
		end := i + cols
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells[i:end]...))
	}
	if len(rows) > 0 {
		parts = append(parts, strings.Join(rows, "\n"))
		parts = append(parts, theme.Hint.Render("tab to pick a question · enter to ask"))
	}

	block := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, block)
}
