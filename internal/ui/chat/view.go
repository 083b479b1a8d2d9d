// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/ui/components"
	"github.com/jeranaias/askdesk/internal/util"
)

// historyWidth is the width of the history panel.
const historyWidth = 44

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	body := m.viewport.View()
	listH := m.viewport.Height
	switch {
	case m.confirming:
		body = components.RenderConfirm(m.theme, components.NewChatPrompt, m.width, listH)
	case m.historyOpen:
		w := historyWidth
		if w > m.width {
			w = m.width
		}
		panel := components.RenderHistory(m.theme, m.history, m.historyIdx, m.ctrl.SessionID(), w, listH)
		body = lipgloss.Place(m.width, listH, lipgloss.Left, lipgloss.Top, panel)
	}

	if toasts := components.RenderToasts(m.theme, m.toasts.Toasts(), m.width); toasts != "" {
		body = overlayTop(body, toasts)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) renderHeader() string {
	return components.RenderHeader(m.theme, m.ui.Title, m.ui.Subtitle, m.width)
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.ctrl.Pending() {
		style = m.theme.InputDisabled
	}
	return style.Render(m.input.View())
}

// renderStatus is the line under the input: send hint on the left,
// character count on the right.
func (m Model) renderStatus() string {
	left := m.theme.Hint.Render("Press Enter to send · Alt+Enter for new line")
	if m.ctrl.Pending() {
		left = m.theme.ThinkingText.Render("Waiting for the answer...")
	}
	right := ""
	if n := util.RuneLen(m.input.Value()); n > 0 {
		right = m.theme.CharCount.Render(fmt.Sprintf("%d", n))
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// =============================================================================
// MESSAGE LIST
// =============================================================================

// showingWelcome reports whether the empty-conversation screen is shown.
func (m Model) showingWelcome() bool {
	return m.ctrl.Len() == 0 && !m.ctrl.Pending()
}

// refreshContent re-renders the message list into the viewport.
func (m *Model) refreshContent(toBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	if toBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderMessages() string {
	if m.showingWelcome() {
		return components.RenderWelcome(m.theme, components.Welcome{
			Title:    m.ui.Title,
			Message:  m.ui.Welcome,
			Prompts:  m.ui.StarterPrompts,
			Selected: m.promptIdx,
		}, m.width)
	}

	msgs := m.ctrl.Messages()
	selected := m.selectedID(msgs)

	var blocks []string
	for _, msg := range msgs {
		blocks = append(blocks, components.RenderMessage(m.theme, msg, components.MessageOptions{
			Width:           m.width,
			Selected:        msg.ID == selected,
			SourcesExpanded: m.expanded[msg.ID],
			Markdown:        m.wrappedMarkdown(),
		}))
	}
	if m.ctrl.Pending() {
		blocks = append(blocks, m.spinner.View()+" "+m.theme.ThinkingText.Render("Thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

// selectedID resolves the selected answer id, following the latest answer
// when nothing is pinned.
func (m Model) selectedID(msgs []model.Message) string {
	if m.selected != "" {
		return m.selected
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsAssistant() {
			return msgs[i].ID
		}
	}
	return ""
}

// wrappedMarkdown caps the markdown width at ui.word_wrap.
func (m Model) wrappedMarkdown() components.MarkdownFunc {
	if m.markdown == nil {
		return nil
	}
	limit := m.ui.WordWrap
	render := m.markdown
	return func(content string, width int) string {
		if limit > 0 && width > limit {
			width = limit
		}
		return render(content, width)
	}
}

// overlayTop replaces the first lines of base with overlay.
func overlayTop(base, overlay string) string {
	baseLines := strings.Split(base, "\n")
	over := strings.Split(overlay, "\n")
	for i, l := range over {
		if i >= len(baseLines) {
			break
		}
		baseLines[i] = l
	}
	return strings.Join(baseLines, "\n")
}
