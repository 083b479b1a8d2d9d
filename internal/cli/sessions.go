// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/export"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// SESSIONS COMMAND
// =============================================================================

// SessionSummary is one row of `sessions list --json`.
type SessionSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Messages  int    `json:"messages"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func summarize(s model.ChatSession) SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Title:     s.Title,
		Messages:  s.MessageCount(),
		CreatedAt: s.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt: s.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (app *App) addSessionsCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"session", "history"},
		Short:   "Manage saved chats",
	}

	app.addSessionsListCommand(cmd)
	app.addSessionsShowCommand(cmd)
	app.addSessionsDeleteCommand(cmd)
	app.addSessionsClearCommand(cmd)
	app.addSessionsExportCommand(cmd)

	root.AddCommand(cmd)
}

func (app *App) addSessionsListCommand(parent *cobra.Command) {
	var (
		jsonOut bool
		limit   int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved chats, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			sessions := store.Recent()
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				rows := make([]SessionSummary, 0, len(sessions))
				for _, s := range sessions {
					rows = append(rows, summarize(s))
				}
				return NewJSONResponse("sessions list", rows).Print(out)
			}
			fmt.Fprint(out, storage.FormatSessionList(sessions, GetTerminalWidth()))
			if len(sessions) == 0 {
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n sessions")
	parent.AddCommand(cmd)
}

func (app *App) addSessionsShowCommand(parent *cobra.Command) {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved chat",
		Long:  "Print a saved chat. The id may be any unique prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			session, err := store.Lookup(args[0])
			if err != nil {
				err = fmt.Errorf("%s: %w", args[0], err)
				if jsonOut {
					return jsonFailure(out, "sessions show", err)
				}
				return err
			}
			if jsonOut {
				return NewJSONResponse("sessions show", session).Print(out)
			}

			r := &repl{out: out, width: GetTerminalWidth(), showSources: true}
			r.printTranscript(session)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	parent.AddCommand(cmd)
}

func (app *App) addSessionsDeleteCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved chat",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			session, err := store.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := store.Delete(session.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted %s (%s)\n", RenderStatus("ok"), session.ID, session.Title)
			return nil
		},
	}
	parent.AddCommand(cmd)
}

func (app *App) addSessionsClearCommand(parent *cobra.Command) {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved chat in the namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			n := len(store.List())
			out := cmd.OutOrStdout()
			if n == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}

			ok, err := RequireConfirmation(cmd.InOrStdin(), out,
				fmt.Sprintf("delete all %d sessions", n),
				ConfirmationOptions{Yes: yes, Interactive: IsTTY()})
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%s Deleted %d sessions\n", RenderStatus("ok"), n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	parent.AddCommand(cmd)
}

func (app *App) addSessionsExportCommand(parent *cobra.Command) {
	opts := export.DefaultOptions()
	var (
		format    string
		noSources bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a saved chat to Markdown, JSON or HTML",
		Args:  cobra.ExactArgs(1),
		Example: `  askdesk sessions export session_1712 --format html --output ./exports
  askdesk sessions export 1712 --format md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.Store()
			if err != nil {
				return err
			}
			session, err := store.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			opts.IncludeSources = !noSources
			exporter, err := export.ForFormat(format, opts)
			if err != nil {
				return &UsageError{Reason: err.Error()}
			}
			path, err := export.ExportToFile(&session, exporter, opts)
			if err != nil {
				return err
			}
			app.Logger().Info("Session exported", "id", session.ID, "format", format, "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "%s Exported to %s\n", RenderStatus("ok"), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatMarkdown, "export format: markdown (md), json, html")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", ".", "output directory")
	cmd.Flags().StringVar(&opts.Theme, "theme", "light", "HTML theme: light or dark")
	cmd.Flags().BoolVar(&noSources, "no-sources", false, "leave cited sources out")
	parent.AddCommand(cmd)
}
