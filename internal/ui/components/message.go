// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/ui/styles"
	"github.com/jeranaias/askdesk/internal/util"
)

// ExcerptLines is how many lines of a source excerpt are shown.
const ExcerptLines = 2

// MarkdownFunc renders answer markdown to fit width cells.
type MarkdownFunc func(content string, width int) string

// MessageOptions controls how one message bubble is drawn.
type MessageOptions struct {
	// Width is the full screen width available to the message list.
	Width int

	// Selected marks the bubble the copy and sources keys act on.
	Selected bool

	// SourcesExpanded shows the source cards under the answer.
	SourcesExpanded bool

	// Markdown renders assistant content. Nil wraps plain text.
	Markdown MarkdownFunc
}

// =============================================================================
// MESSAGE BUBBLES
// =============================================================================

// RenderMessage draws a message as a chat bubble: user messages right
// aligned, assistant messages in a bordered card with a time, copy hint and
// sources toggle.
func RenderMessage(theme *styles.Theme, msg model.Message, opts MessageOptions) string {
	if msg.IsUser() {
		return renderUser(theme, msg, opts)
	}
	return renderAssistant(theme, msg, opts)
}

func renderUser(theme *styles.Theme, msg model.Message, opts MessageOptions) string {
	maxW := styles.BubbleWidth(opts.Width)
	w := lipgloss.Width(msg.Content) + theme.UserBubble.GetHorizontalPadding()
	if w > maxW {
		w = maxW
	}

	bubble := theme.UserBubble.Width(w).Render(msg.Content)
	ts := theme.Timestamp.Render(FormatTime(msg.Timestamp))
	block := lipgloss.JoinVertical(lipgloss.Right, bubble, ts)
	return lipgloss.PlaceHorizontal(opts.Width, lipgloss.Right, block)
}

func renderAssistant(theme *styles.Theme, msg model.Message, opts MessageOptions) string {
	style := theme.AssistantBubble
	if opts.Selected {
		style = theme.AssistantSelected
	}

	// Width covers padding, not the border.
	outer := styles.BubbleWidth(opts.Width)
	inner := outer - style.GetHorizontalBorderSize() - style.GetHorizontalPadding()
	if inner < 1 {
		inner = 1
	}

	var body string
	if opts.Markdown != nil {
		body = strings.TrimRight(opts.Markdown(msg.Content, inner), "\n")
	} else {
		body = wrap(msg.Content, inner)
	}

	parts := []string{body, "", footer(theme, msg, opts.Selected)}
	if msg.HasSources() {
		parts = append(parts, theme.SourcesToggle.Render(SourcesToggleLabel(len(msg.Sources), opts.SourcesExpanded)))
		if opts.SourcesExpanded {
			for _, src := range msg.Sources {
				parts = append(parts, RenderSource(theme, src, inner))
			}
		}
	}

	return style.Width(outer - style.GetHorizontalBorderSize()).Render(strings.Join(parts, "\n"))
}

func footer(theme *styles.Theme, msg model.Message, selected bool) string {
	line := theme.Timestamp.Render(FormatTime(msg.Timestamp))
	if selected {
		hint := "ctrl+y copy"
		if msg.HasSources() {
			hint += " · ctrl+s sources"
		}
		line += "  " + theme.Action.Render(hint)
	}
	return line
}

// RenderSource draws one source card: file name and a clamped excerpt.
func RenderSource(theme *styles.Theme, src model.Source, width int) string {
	cardInner := width - theme.SourceCard.GetHorizontalPadding()
	if cardInner < 1 {
		cardInner = 1
	}
	lines := []string{
		theme.SourceFile.Render("📄 " + util.TruncateWidth(src.SourceFile, cardInner-3)),
	}
	for _, l := range ClampLines(src.TextChunk, cardInner, ExcerptLines) {
		lines = append(lines, theme.SourceExcerpt.Render(l))
	}
	return theme.SourceCard.Width(width).Render(strings.Join(lines, "\n"))
}

// =============================================================================
// HELPERS
// =============================================================================

// FormatTime renders a message time as HH:MM in local time.
func FormatTime(ts time.Time) string {
	return ts.Local().Format("15:04")
}

// SourcesToggleLabel returns the toggle text, e.g. "▸ 2 Sources".
func SourcesToggleLabel(n int, expanded bool) string {
	arrow := "▸"
	if expanded {
		arrow = "▾"
	}
	return fmt.Sprintf("%s %d %s", arrow, n, model.SourcesLabel(n))
}

// ClampLines word-wraps text to width and keeps at most n lines. A
// truncated last line ends in "...".
func ClampLines(text string, width, n int) []string {
	if n <= 0 || width <= 0 {
		return nil
	}
	wrapped := strings.Split(wrap(util.SingleLine(text), width), "\n")
	for i := range wrapped {
		wrapped[i] = strings.TrimRight(wrapped[i], " ")
	}
	if len(wrapped) <= n {
		return wrapped
	}
	out := wrapped[:n]
	last := out[n-1]
	if util.StringWidth(last)+3 > width {
		last = strings.TrimRight(runewidth.Truncate(last, width-3, ""), " ")
	}
	out[n-1] = last + "..."
	return out
}

// wrap word-wraps text to width cells.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
