// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/conversation"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.ctrl.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshContent(false)
		return m, cmd

	case AnswerMsg:
		return m.handleAnswer(msg)

	case ToastTickMsg:
		if m.toasts.Prune() {
			return m, toastTickCmd()
		}
		m.toastTicking = false
		return m, nil

	case StoreChangedMsg:
		m.reloadHistory()
		return m, waitForStoreChange(m.watcher)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	frame := m.theme.InputContainer.GetHorizontalFrameSize()
	m.input.SetWidth(msg.Width - frame)
	m.help.Width = msg.Width

	m.viewport.Width = msg.Width
	m.viewport.Height = m.listHeight()
	m.ready = true
	m.refreshContent(true)
	return m, nil
}

// listHeight is what remains for the message list after the header, the
// input box, the counter line and the help line.
func (m Model) listHeight() int {
	header := lipgloss.Height(m.renderHeader())
	input := inputHeight + m.theme.InputContainer.GetVerticalFrameSize()
	h := m.height - header - input - 2
	if h < 1 {
		h = 1
	}
	return h
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.confirming {
		return m.handleConfirmKey(msg)
	}
	if m.historyOpen {
		return m.handleHistoryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NewChat):
		return m.requestNewChat()

	case key.Matches(msg, m.keys.History):
		if m.store == nil {
			return m, nil
		}
		m.reloadHistory()
		m.historyOpen = true
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m.copySelected()

	case key.Matches(msg, m.keys.ToggleSources):
		if sel, ok := m.SelectedAnswer(); ok && sel.HasSources() {
			m.expanded[sel.ID] = !m.expanded[sel.ID]
			m.refreshContent(false)
		}
		return m, nil

	case key.Matches(msg, m.keys.PrevAnswer):
		m.moveSelection(-1)
		m.refreshContent(false)
		return m, nil

	case key.Matches(msg, m.keys.NextAnswer):
		m.moveSelection(1)
		m.refreshContent(false)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.DismissAll()
		m.promptIdx = -1
		m.refreshContent(false)
		return m, nil

	case key.Matches(msg, m.keys.NextPrompt), key.Matches(msg, m.keys.PrevPrompt):
		if m.showingWelcome() && len(m.ui.StarterPrompts) > 0 {
			m.cyclePrompt(key.Matches(msg, m.keys.NextPrompt))
			m.refreshContent(false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	// The input is disabled while an answer is pending.
	if m.ctrl.Pending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) cyclePrompt(forward bool) {
	n := len(m.ui.StarterPrompts)
	switch {
	case forward:
		m.promptIdx = (m.promptIdx + 1) % n
	case m.promptIdx <= 0:
		m.promptIdx = n - 1
	default:
		m.promptIdx--
	}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.confirming = false
		if m.ctrl.Reset(func() bool { return true }) {
			m.resetPresentation()
			m.reloadHistory()
		}
		m.refreshContent(true)
	case key.Matches(msg, m.keys.No):
		m.confirming = false
	}
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.History):
		m.historyOpen = false

	case key.Matches(msg, m.keys.Up):
		if m.historyIdx > 0 {
			m.historyIdx--
		}

	case key.Matches(msg, m.keys.Down):
		if m.historyIdx < len(m.history)-1 {
			m.historyIdx++
		}

	case key.Matches(msg, m.keys.Submit):
		if m.historyIdx < len(m.history) && m.ctrl.Resume(m.history[m.historyIdx]) {
			m.resetPresentation()
			m.historyOpen = false
			m.refreshContent(true)
		}

	case key.Matches(msg, m.keys.Delete):
		if m.historyIdx >= len(m.history) {
			return m, nil
		}
		id := m.history[m.historyIdx].ID
		if id == m.ctrl.SessionID() {
			m.toasts.AddError("Cannot delete the open chat")
			cmd := m.startToastTick()
			return m, cmd
		}
		if err := m.store.Delete(id); err != nil {
			m.logger.Warn("Delete from history failed", "id", id, "err", err)
			m.toasts.AddError("Failed to delete chat")
			cmd := m.startToastTick()
			return m, cmd
		}
		m.reloadHistory()
	}
	return m, nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) requestNewChat() (tea.Model, tea.Cmd) {
	if m.ctrl.Pending() {
		return m, nil
	}
	if m.ctrl.Len() == 0 {
		m.ctrl.Reset(nil)
		m.resetPresentation()
		m.refreshContent(true)
		return m, nil
	}
	m.confirming = true
	return m, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.ctrl.Pending() {
		return m, nil
	}

	text := m.input.Value()
	if strings.TrimSpace(text) == "" && m.showingWelcome() &&
		m.promptIdx >= 0 && m.promptIdx < len(m.ui.StarterPrompts) {
		text = m.ui.StarterPrompts[m.promptIdx]
	}

	turn, ok := m.ctrl.Begin(text)
	if !ok {
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.promptIdx = -1
	m.selected = ""
	m.refreshContent(true)
	return m, tea.Batch(resolveCmd(m.ctx, m.ctrl, turn), m.spinner.Tick)
}

func (m Model) handleAnswer(msg AnswerMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Result.Err, conversation.ErrNotPending) {
		return m, nil
	}

	m.input.Focus()
	if msg.Result.OK() {
		m.selected = ""
		m.reloadHistory()
	}
	m.refreshContent(true)

	cmds := []tea.Cmd{textarea.Blink}
	if m.toasts.Len() > 0 {
		cmds = append(cmds, m.startToastTick())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) copySelected() (tea.Model, tea.Cmd) {
	sel, ok := m.SelectedAnswer()
	if !ok || sel.Content == "" {
		return m, nil
	}
	if err := m.clipboard(sel.Content); err != nil {
		m.logger.Debug("Clipboard write failed", "err", err)
		m.toasts.AddError(CopyFailedText)
	} else {
		m.toasts.AddSuccess(CopiedText)
	}
	cmd := m.startToastTick()
	return m, cmd
}

// startToastTick starts the prune loop unless it is already running.
func (m *Model) startToastTick() tea.Cmd {
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return toastTickCmd()
}
