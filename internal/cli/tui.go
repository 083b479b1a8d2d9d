// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/storage"
	"github.com/jeranaias/askdesk/internal/ui/chat"
	"github.com/jeranaias/askdesk/internal/ui/components"
	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// =============================================================================
// TUI COMMAND
// =============================================================================

func (app *App) addTUICommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTUI(cmd)
		},
	}
	root.AddCommand(cmd)
}

func (app *App) runTUI(cmd *cobra.Command) error {
	if !IsTTY() || !IsStdoutTTY() {
		return &TTYRequiredError{Operation: "open the chat TUI (try 'askdesk ask')"}
	}

	cfg, err := app.Config()
	if err != nil {
		return err
	}
	store, err := app.Store()
	if err != nil {
		return err
	}

	toasts := components.NewToastManager()
	ctrl, err := app.Controller(toasts)
	if err != nil {
		return err
	}

	logger := app.Logger()
	watcher, ok, err := storage.WatchStore(store, logger)
	if err != nil {
		logger.Warn("History watcher unavailable", "err", err)
	}
	if ok {
		defer watcher.Close()
	} else {
		watcher = nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	model := chat.New(chat.Options{
		Controller: ctrl,
		Store:      store,
		Watcher:    watcher,
		Toasts:     toasts,
		Theme:      styles.NewTheme(),
		UI:         cfg.UI,
		Context:    ctx,
		Logger:     logger,
	})

	opts := []tea.ProgramOption{tea.WithMouseCellMotion(), tea.WithContext(ctx)}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	logger.Info("TUI started", "api", cfg.API.BaseURL, "store", store.Key())
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return err
	}
	logger.Info("TUI exited", "messages", ctrl.Len())
	return nil
}
