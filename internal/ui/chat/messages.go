// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AnswerMsg carries the outcome of a resolved turn.
type AnswerMsg struct {
	Result conversation.Result
}

// ToastTickMsg prunes expired toasts.
type ToastTickMsg struct{}

// StoreChangedMsg reports a write to the session store by any process.
type StoreChangedMsg struct{}

// toastTick is how often expired toasts are pruned.
const toastTick = 500 * time.Millisecond

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// resolveCmd runs the blocking half of a submission off the update loop.
func resolveCmd(ctx context.Context, ctrl *conversation.Controller, turn *conversation.Turn) tea.Cmd {
	return func() tea.Msg {
		return AnswerMsg{Result: ctrl.Resolve(ctx, turn)}
	}
}

func toastTickCmd() tea.Cmd {
	return tea.Tick(toastTick, func(time.Time) tea.Msg {
		return ToastTickMsg{}
	})
}

// waitForStoreChange blocks until the watcher fires. Closing the watcher
// ends the chain.
func waitForStoreChange(w *storage.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-w.Changes():
			return StoreChangedMsg{}
		case <-w.Done():
			return nil
		}
	}
}
