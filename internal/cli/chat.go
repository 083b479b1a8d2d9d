// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/model"
	"github.com/jeranaias/askdesk/internal/storage"
	"github.com/jeranaias/askdesk/internal/ui/chat"
	"github.com/jeranaias/askdesk/internal/ui/components"
	"github.com/jeranaias/askdesk/internal/ui/styles"
	"github.com/jeranaias/askdesk/internal/util"
)

// replHelp lists the slash commands understood by the line chat.
const replHelp = `Commands:
  /new            start a new chat (the current one stays saved)
  /copy           copy the last answer to the clipboard
  /sources        show or hide source excerpts
  /sessions       list saved chats
  /open <id>      reopen a saved chat by id or prefix
  /help           show this help
  /quit           leave (also: exit, quit, Ctrl+D)`

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for the line chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI whose history lives in the data directory.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.Dir()
	if err != nil {
		dir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(dir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Confirm asks a yes/no question. Anything but y or yes declines.
func (c *ChatCLI) Confirm(question string) bool {
	answer, err := c.line.Prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func (app *App) addChatCommand(root *cobra.Command) {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line in the current terminal",
		Long: `Chat with the assistant without the full-screen TUI. Answers are printed
as they arrive and the conversation is saved like in the TUI.

Type /help inside the chat for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !IsTTY() {
				return &TTYRequiredError{Operation: "chat (try 'askdesk ask')"}
			}
			return app.runChat(cmd, showSources)
		},
	}
	cmd.Flags().BoolVar(&showSources, "sources", false, "print source excerpts under every answer")
	root.AddCommand(cmd)
}

func (app *App) runChat(cmd *cobra.Command, showSources bool) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	store, err := app.Store()
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	ctrl, err := app.Controller(printNotifier(errOut))
	if err != nil {
		return err
	}

	input := NewChatCLI()
	defer input.Close()

	r := &repl{
		ctrl:        ctrl,
		store:       store,
		out:         cmd.OutOrStdout(),
		errOut:      errOut,
		width:       GetTerminalWidth(),
		showSources: showSources,
		clipboard:   chat.SystemClipboard,
		confirm:     input.Confirm,
	}
	if cfg.UI.Markdown && isTerminalWriter(r.out) && ColorsEnabled() {
		r.markdown = chat.NewMarkdown(styles.NewTheme().GlamourStyle())
	}

	r.printWelcome(cfg.UI)

	for {
		line, err := input.ReadInput(UserStyle.Render("you> "))
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D, or a closed terminal.
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				app.Logger().Debug("Input closed", "err", err)
			}
			fmt.Fprintln(r.out)
			return nil
		}

		if !r.handleLine(cmd.Context(), line) {
			return nil
		}
	}
}

// printNotifier writes error notifications to w.
func printNotifier(w io.Writer) conversation.Notifier {
	return conversation.NotifierFunc(func(n conversation.Notification) {
		switch n.Level {
		case conversation.LevelError:
			fmt.Fprintln(w, ErrorStyle.Render("[Error]"), n.Message)
		case conversation.LevelSuccess:
			fmt.Fprintln(w, SuccessStyle.Render(n.Message))
		default:
			fmt.Fprintln(w, DimStyle.Render(n.Message))
		}
	})
}

// =============================================================================
// REPL
// =============================================================================

// repl is the line chat state, independent of the terminal.
type repl struct {
	ctrl   *conversation.Controller
	store  *storage.SessionStore
	out    io.Writer
	errOut io.Writer
	width  int

	showSources bool
	markdown    components.MarkdownFunc
	clipboard   chat.ClipboardFunc
	confirm     func(question string) bool
}

func (r *repl) printWelcome(ui config.UIConfig) {
	fmt.Fprintln(r.out, TitleStyle.Render(ui.Title))
	if ui.Welcome != "" {
		fmt.Fprintln(r.out, DimStyle.Render(ui.Welcome))
	}
	if len(ui.StarterPrompts) > 0 && r.ctrl.Len() == 0 {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, LabelStyle.Render("Try asking:"))
		for _, p := range ui.StarterPrompts {
			fmt.Fprintln(r.out, "  "+DimStyle.Render("• ")+p)
		}
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands."))
	fmt.Fprintln(r.out)
}

// handleLine processes one input line and reports whether to keep reading.
func (r *repl) handleLine(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}

	if strings.HasPrefix(input, "/") {
		return r.handleCommand(input)
	}
	if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
		return false
	}

	r.ask(ctx, input)
	return true
}

// ask runs one question to completion. An in-flight request is never
// cancelled; it ends on its own or on the client timeout.
func (r *repl) ask(ctx context.Context, question string) {
	fmt.Fprintln(r.out, DimStyle.Render("Thinking..."))
	res, ok := r.ctrl.Submit(context.WithoutCancel(ctx), question)
	if !ok || !res.OK() {
		// Failures were already reported through the notifier.
		return
	}
	r.printAnswer(*res.Assistant)
}

func (r *repl) printAnswer(msg model.Message) {
	fmt.Fprintln(r.out, AssistantStyle.Render("assistant")+" "+DimStyle.Render(components.FormatTime(msg.Timestamp)))

	content := msg.Content
	if r.markdown != nil {
		content = strings.TrimRight(r.markdown(content, r.width), "\n")
	}
	fmt.Fprintln(r.out, content)

	if msg.HasSources() {
		r.printSources(msg.Sources)
	}
	fmt.Fprintln(r.out)
}

func (r *repl) printSources(sources []model.Source) {
	fmt.Fprintln(r.out, SeparatorStyle.Render(fmt.Sprintf("%d %s", len(sources), model.SourcesLabel(len(sources)))))
	for _, src := range sources {
		fmt.Fprintln(r.out, "  📄 "+src.SourceFile)
		if r.showSources {
			for _, l := range components.ClampLines(src.TextChunk, r.width-4, components.ExcerptLines) {
				fmt.Fprintln(r.out, "    "+DimStyle.Render(l))
			}
		}
	}
}

// handleCommand runs a slash command and reports whether to keep reading.
func (r *repl) handleCommand(input string) bool {
	fields := strings.Fields(input)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/quit", "/exit", "/q":
		return false

	case "/help", "/?":
		fmt.Fprintln(r.out, replHelp)

	case "/new":
		started := r.ctrl.Reset(func() bool {
			return r.confirm != nil && r.confirm(components.NewChatPrompt)
		})
		if started {
			fmt.Fprintln(r.out, SuccessStyle.Render("New chat started."))
		}

	case "/copy":
		last, ok := r.ctrl.LastAssistant()
		if !ok {
			fmt.Fprintln(r.errOut, WarningStyle.Render("Nothing to copy yet."))
			break
		}
		if err := r.clipboard(last.Content); err != nil {
			fmt.Fprintln(r.errOut, ErrorStyle.Render(chat.CopyFailedText))
			break
		}
		fmt.Fprintln(r.out, SuccessStyle.Render(chat.CopiedText))

	case "/sources":
		r.showSources = !r.showSources
		if last, ok := r.ctrl.LastAssistant(); ok && r.showSources && last.HasSources() {
			r.printSources(last.Sources)
		} else if r.showSources {
			fmt.Fprintln(r.out, DimStyle.Render("Source excerpts on."))
		} else {
			fmt.Fprintln(r.out, DimStyle.Render("Source excerpts off."))
		}

	case "/sessions":
		fmt.Fprintln(r.out, storage.FormatSessionList(r.store.Recent(), r.width))

	case "/open":
		if len(args) != 1 {
			fmt.Fprintln(r.errOut, ErrorStyle.Render("usage: /open <id>"))
			break
		}
		session, err := r.store.Lookup(args[0])
		if err != nil {
			fmt.Fprintln(r.errOut, ErrorStyle.Render("[Error]"), err)
			break
		}
		if !r.ctrl.Resume(session) {
			fmt.Fprintln(r.errOut, WarningStyle.Render("Wait for the current answer first."))
			break
		}
		r.printTranscript(session)

	default:
		fmt.Fprintf(r.errOut, "%s unknown command %s (try /help)\n", ErrorStyle.Render("[Error]"), name)
	}
	return true
}

func (r *repl) printTranscript(session model.ChatSession) {
	fmt.Fprintln(r.out, TitleStyle.Render(session.Title))
	fmt.Fprintln(r.out, RenderSeparator(util.RuneLen(session.Title)))
	for _, msg := range session.Messages {
		if msg.IsUser() {
			fmt.Fprintln(r.out, UserStyle.Render("you")+" "+msg.Content)
			continue
		}
		r.printAnswer(msg)
	}
}
