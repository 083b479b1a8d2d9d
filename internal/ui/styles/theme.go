// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	HeaderButton   lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble        lipgloss.Style
	AssistantBubble   lipgloss.Style
	AssistantSelected lipgloss.Style
	Timestamp         lipgloss.Style
	Action            lipgloss.Style
	SourcesToggle     lipgloss.Style
	SourceCard        lipgloss.Style
	SourceFile        lipgloss.Style
	SourceExcerpt     lipgloss.Style

	// ==========================================================================
	// WELCOME STYLES
	// ==========================================================================

	WelcomeTitle   lipgloss.Style
	WelcomeText    lipgloss.Style
	Prompt         lipgloss.Style
	PromptSelected lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer lipgloss.Style
	InputDisabled  lipgloss.Style
	CharCount      lipgloss.Style
	Hint           lipgloss.Style

	// ==========================================================================
	// LOADING, TOAST, DIALOG STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	DialogBox   lipgloss.Style
	DialogTitle lipgloss.Style
	DialogKey   lipgloss.Style

	// ==========================================================================
	// HISTORY PANEL STYLES
	// ==========================================================================

	HistoryBox      lipgloss.Style
	HistoryTitle    lipgloss.Style
	HistoryItem     lipgloss.Style
	HistorySelected lipgloss.Style
	HistoryMeta     lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	// Detect terminal capabilities
	return NewThemeFor(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeFor creates a theme for an explicit profile and background.
func NewThemeFor(profile termenv.Profile, isDark bool) *Theme {
	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Indigo)
	t.HeaderSubtitle = lipgloss.NewStyle().Foreground(TextSecondary)
	t.HeaderButton = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Indigo).
		Padding(0, 1)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 2)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1)
	t.AssistantSelected = t.AssistantBubble.
		BorderForeground(AssistantBubbleSelected)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Action = lipgloss.NewStyle().Foreground(TextSecondary)
	t.SourcesToggle = lipgloss.NewStyle().Bold(true).Foreground(Violet)
	t.SourceCard = lipgloss.NewStyle().
		Background(SourceBg).
		Padding(0, 1).
		MarginTop(1)
	t.SourceFile = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.SourceExcerpt = lipgloss.NewStyle().Foreground(TextSecondary)

	// Welcome
	t.WelcomeTitle = lipgloss.NewStyle().Bold(true).Foreground(Indigo).MarginBottom(1)
	t.WelcomeText = lipgloss.NewStyle().Foreground(TextSecondary).MarginBottom(1)
	t.Prompt = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.PromptSelected = t.Prompt.BorderForeground(Violet).Foreground(Violet)

	// Input
	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Indigo)
	t.InputDisabled = t.InputContainer.BorderForeground(Overlay)
	t.CharCount = lipgloss.NewStyle().Foreground(TextMuted)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	// Loading
	t.Spinner = lipgloss.NewStyle().Foreground(Violet)
	t.ThinkingText = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	// Toasts
	toast := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())
	t.ToastInfo = toast.BorderForeground(Cyan).Foreground(Cyan)
	t.ToastSuccess = toast.BorderForeground(Emerald).Foreground(Emerald)
	t.ToastError = toast.BorderForeground(Rose).Foreground(Rose)

	// Dialog
	t.DialogBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.DialogKey = lipgloss.NewStyle().Bold(true).Foreground(Amber)

	// History
	t.HistoryBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Violet).
		Padding(0, 1)
	t.HistoryTitle = lipgloss.NewStyle().Bold(true).Foreground(Violet)
	t.HistoryItem = lipgloss.NewStyle().Foreground(TextPrimary)
	t.HistorySelected = lipgloss.NewStyle().Bold(true).Foreground(TextInverse).Background(Violet)
	t.HistoryMeta = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the layout dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GlamourStyle returns the glamour standard style matching the terminal.
func (t *Theme) GlamourStyle() string {
	switch {
	case t.ColorProfile == termenv.Ascii:
		return "notty"
	case t.IsDark:
		return "dark"
	default:
		return "light"
	}
}

// BubbleWidth returns the maximum width of a message bubble for a screen
// of the given width.
func BubbleWidth(screenWidth int) int {
	w := screenWidth * 4 / 5
	if w < 20 {
		w = screenWidth - 2
	}
	if w < 10 {
		w = 10
	}
	return w
}
