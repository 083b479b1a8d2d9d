// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/model"
)

// AskResult is the --json payload of ask.
type AskResult struct {
	Question  string         `json:"question"`
	Answer    string         `json:"answer"`
	Sources   []model.Source `json:"sources"`
	SessionID string         `json:"session_id"`
}

func (app *App) addAskCommand(root *cobra.Command) {
	var (
		jsonOut     bool
		showSources bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask one question and print the answer",
		Long: `Ask a single question. The exchange is saved as a new chat session.
With no arguments the question is read from stdin.`,
		Example: `  askdesk ask What are the library timings?
  echo "Explain the grading system" | askdesk ask --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if len(args) == 0 && !IsTTY() {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				question = string(data)
			}
			if conversation.Normalize(question) == "" {
				return &UsageError{Reason: "no question given", Example: "askdesk ask How do I register for courses?"}
			}
			return app.runAsk(cmd, question, jsonOut, showSources)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the answer as JSON")
	cmd.Flags().BoolVar(&showSources, "sources", false, "print source excerpts")
	root.AddCommand(cmd)
}

func (app *App) runAsk(cmd *cobra.Command, question string, jsonOut, showSources bool) error {
	ctrl, err := app.Controller(nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	res, _ := ctrl.Submit(cmd.Context(), question)
	if !res.OK() {
		err := &AnswerError{Err: res.Err}
		if jsonOut {
			return jsonFailure(out, "ask", err)
		}
		return err
	}

	if jsonOut {
		sources := res.Assistant.Sources
		if sources == nil {
			sources = []model.Source{}
		}
		return NewJSONResponse("ask", AskResult{
			Question:  res.Turn.Query,
			Answer:    res.Assistant.Content,
			Sources:   sources,
			SessionID: ctrl.SessionID(),
		}).Print(out)
	}

	fmt.Fprintln(out, res.Assistant.Content)
	if res.Assistant.HasSources() {
		fmt.Fprintln(out)
		r := &repl{out: out, width: GetTerminalWidth(), showSources: showSources}
		r.printSources(res.Assistant.Sources)
	}
	return nil
}
