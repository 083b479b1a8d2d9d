// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/logging"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
	"github.com/jeranaias/askdesk/internal/ui/components"
	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the chat view to its collaborators. Controller and Theme
// are required.
type Options struct {
	Controller *conversation.Controller

	// Store feeds the history panel. Nil hides it.
	Store *storage.SessionStore

	// Watcher reloads the history panel on external writes. Optional.
	Watcher *storage.Watcher

	// Toasts must be the controller's Notifier for answer errors to show.
	Toasts *components.ToastManager

	Theme *styles.Theme
	UI    config.UIConfig

	// Context bounds every Resolve call. Defaults to context.Background.
	Context context.Context

	// Markdown renders answers. Nil builds a glamour renderer when
	// UI.Markdown is set.
	Markdown components.MarkdownFunc

	// Clipboard defaults to SystemClipboard.
	Clipboard ClipboardFunc

	Logger *log.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctrl    *conversation.Controller
	store   *storage.SessionStore
	watcher *storage.Watcher
	toasts  *components.ToastManager
	theme   *styles.Theme
	ui      config.UIConfig
	ctx     context.Context
	logger  *log.Logger

	markdown  components.MarkdownFunc
	clipboard ClipboardFunc

	// Bubbles
	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	// Dimensions
	width  int
	height int
	ready  bool

	// Presentation state
	selected     string          // id of the selected answer; "" follows the latest
	expanded     map[string]bool // message id -> sources shown
	promptIdx    int             // highlighted starter prompt, -1 for none
	confirming   bool
	historyOpen  bool
	historyIdx   int
	history      []model.ChatSession
	toastTicking bool
}

// inputHeight is the number of text rows in the input box.
const inputHeight = 3

// New creates the chat model.
func New(opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = opts.UI.Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline = DefaultKeyMap().Newline
	ta.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = opts.Theme.Spinner

	toasts := opts.Toasts
	if toasts == nil {
		toasts = components.NewToastManager()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	md := opts.Markdown
	if md == nil && opts.UI.Markdown {
		md = NewMarkdown(opts.Theme.GlamourStyle())
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = SystemClipboard
	}

	m := Model{
		ctrl:      opts.Controller,
		store:     opts.Store,
		watcher:   opts.Watcher,
		toasts:    toasts,
		theme:     opts.Theme,
		ui:        opts.UI,
		ctx:       ctx,
		logger:    logging.OrDiscard(opts.Logger),
		markdown:  md,
		clipboard: clip,
		input:     ta,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		expanded:  make(map[string]bool),
		promptIdx: -1,
	}
	m.reloadHistory()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, waitForStoreChange(m.watcher))
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Controller returns the conversation controller.
func (m Model) Controller() *conversation.Controller { return m.ctrl }

// InputValue returns the current input text.
func (m Model) InputValue() string { return m.input.Value() }

// Confirming reports whether the new-chat dialog is open.
func (m Model) Confirming() bool { return m.confirming }

// HistoryOpen reports whether the history panel is open.
func (m Model) HistoryOpen() bool { return m.historyOpen }

// History returns the sessions listed in the history panel.
func (m Model) History() []model.ChatSession { return m.history }

// PromptIndex returns the highlighted starter prompt, or -1.
func (m Model) PromptIndex() int { return m.promptIdx }

// SourcesExpanded reports whether the sources of message id are shown.
func (m Model) SourcesExpanded(id string) bool { return m.expanded[id] }

// SelectedAnswer returns the answer the copy and sources keys act on.
func (m Model) SelectedAnswer() (model.Message, bool) {
	if m.selected != "" {
		for _, msg := range m.ctrl.Messages() {
			if msg.ID == m.selected {
				return msg, true
			}
		}
	}
	return m.ctrl.LastAssistant()
}

// =============================================================================
// INTERNAL STATE HELPERS
// =============================================================================

// reloadHistory refreshes the history list from the store, newest first.
func (m *Model) reloadHistory() {
	if m.store == nil {
		m.history = nil
		return
	}
	m.history = m.store.Recent()
	if m.historyIdx >= len(m.history) {
		m.historyIdx = len(m.history) - 1
	}
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
}

// answerIDs returns the ids of assistant messages in order.
func answerIDs(msgs []model.Message) []string {
	var ids []string
	for _, msg := range msgs {
		if msg.IsAssistant() {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

// moveSelection steps the selected answer by delta, clamped.
func (m *Model) moveSelection(delta int) {
	ids := answerIDs(m.ctrl.Messages())
	if len(ids) == 0 {
		return
	}
	cur := len(ids) - 1
	if m.selected != "" {
		for i, id := range ids {
			if id == m.selected {
				cur = i
				break
			}
		}
	}
	cur += delta
	if cur < 0 {
		cur = 0
	}
	if cur >= len(ids) {
		cur = len(ids) - 1
	}
	if cur == len(ids)-1 {
		m.selected = ""
	} else {
		m.selected = ids[cur]
	}
}

// resetPresentation clears per-conversation view state.
func (m *Model) resetPresentation() {
	m.selected = ""
	m.expanded = make(map[string]bool)
	m.promptIdx = -1
	m.input.Reset()
}
