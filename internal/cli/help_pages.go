// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/ui/chat"
	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// =============================================================================
// FAQ AND ABOUT PAGES
// =============================================================================

type faqEntry struct {
	Question string
	Answer   string
}

func faqEntries(cfg *config.Config) []faqEntry {
	return []faqEntry{
		{
			"How accurate are the answers?",
			"Answers come from a retrieval-augmented backend that searches the official documents it was built from. " +
				"Every answer lists its sources so you can check them. For critical decisions, confirm with the responsible office.",
		},
		{
			"What kind of questions can I ask?",
			"Anything the document collection covers: hostel facilities, academic programs, course registration, " +
				"placements, clubs, library services, examinations, grading and more.",
		},
		{
			"Is my conversation data saved?",
			fmt.Sprintf("Conversations are stored on this machine only, in the %q storage backend. "+
				"Use `askdesk sessions delete` or `askdesk sessions clear` to remove them, or `--ephemeral` to keep nothing.",
				cfg.Storage.Backend),
		},
		{
			"Why am I not getting answers?",
			fmt.Sprintf("The backend at %s must be running. Run `askdesk doctor` to check it, "+
				"and `askdesk config set api.base_url <url>` to point somewhere else.", cfg.API.BaseURL),
		},
		{
			"How do I see the sources for an answer?",
			"Press ctrl+s in the chat view, type /sources in the line chat, or pass --sources to `askdesk ask`.",
		},
		{
			"What should I do if I get an error?",
			"Most errors mean the backend is down or unreachable. Run `askdesk doctor`, " +
				"which also reports where the log file with details is written.",
		},
		{
			"Can I copy an answer?",
			"Press ctrl+y in the chat view or type /copy in the line chat to copy the latest answer to the clipboard.",
		},
		{
			"How do I start a new conversation?",
			"Press ctrl+n in the chat view or type /new in the line chat. The current conversation stays in history.",
		},
		{
			"Is this official software?",
			"No. It is a demonstration assistant. Always verify critical information with official sources.",
		},
	}
}

func faqMarkdown(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("# Frequently Asked Questions\n\n")
	sb.WriteString("Everything you need to know about using " + cfg.UI.Title + ".\n\n")
	for _, e := range faqEntries(cfg) {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", e.Question, e.Answer)
	}
	sb.WriteString("Still have questions? Run `askdesk` and ask.\n")
	return sb.String()
}

func aboutMarkdown(cfg *config.Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# About %s\n\n", cfg.UI.Title)
	if cfg.UI.Subtitle != "" {
		sb.WriteString(cfg.UI.Subtitle + "\n\n")
	}
	sb.WriteString("## What is this?\n\n")
	sb.WriteString("A terminal client for a question-answering backend. It sends your question, " +
		"shows the answer with the documents it came from, and keeps your conversations locally.\n\n")

	sb.WriteString("## Key Features\n\n")
	sb.WriteString("- **Source-backed**: retrieval-augmented answers with references\n")
	sb.WriteString("- **Instant answers**: one command or a full chat view\n")
	sb.WriteString("- **Local history**: sessions saved on this machine, exportable\n")
	sb.WriteString("- **Scriptable**: `--json` output on every data command\n\n")

	sb.WriteString("## How to Use\n\n")
	sb.WriteString("1. Type your question in the input box at the bottom of the chat\n")
	sb.WriteString("2. Press Enter to send it\n")
	sb.WriteString("3. Wait for the answer\n")
	sb.WriteString("4. Press ctrl+s to view the sources under each answer\n\n")

	fmt.Fprintf(&sb, "Backend: %s\n", cfg.API.BaseURL)
	return sb.String()
}

// renderPage writes a markdown page, styled when out is a color terminal.
func (app *App) renderPage(out io.Writer, cfg *config.Config, content string) {
	if cfg.UI.Markdown && isTerminalWriter(out) && ColorsEnabled() {
		render := chat.NewMarkdown(styles.NewTheme().GlamourStyle())
		fmt.Fprint(out, render(content, GetTerminalWidth()))
		return
	}
	fmt.Fprint(out, content)
}

func (app *App) addPageCommands(root *cobra.Command) {
	pages := []struct {
		use, short string
		build      func(*config.Config) string
	}{
		{"faq", "Show frequently asked questions", faqMarkdown},
		{"about", "Show what askdesk is and how to use it", aboutMarkdown},
	}
	for _, p := range pages {
		build := p.build
		root.AddCommand(&cobra.Command{
			Use:   p.use,
			Short: p.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := app.Config()
				if err != nil {
					return err
				}
				app.renderPage(cmd.OutOrStdout(), cfg, build(cfg))
				return nil
			},
		})
	}
}
