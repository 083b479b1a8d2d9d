// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the askdesk TUI.

# Color System (colors.go)

All colors use Lip Gloss AdaptiveColor so the same palette works on light and
dark terminals:

  - Indigo - brand, header, user bubbles
  - Violet - assistant bubbles and selections
  - Emerald - success toasts
  - Rose - error toasts
  - Amber - confirm dialog

# Theme (theme.go)

Theme detects the terminal's color profile and background with termenv and
builds every lipgloss.Style the components use. The glamour style used for
answer markdown follows the detected background:

	theme := styles.NewTheme()
	renderer, _ := glamour.NewTermRenderer(glamour.WithStandardStyle(theme.GlamourStyle()))
*/
package styles
