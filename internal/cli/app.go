// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/answer"
	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/logging"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// GlobalOptions holds the persistent flags.
type GlobalOptions struct {
	ConfigPath string
	APIURL     string
	Namespace  string
	Ephemeral  bool
	LogLevel   string
}

// =============================================================================
// APP
// =============================================================================

// App represents the askdesk CLI application. Resources are opened on
// first use and released by Close.
type App struct {
	Options GlobalOptions

	// DotEnvFiles are loaded before the config. Defaults to ".env".
	DotEnvFiles []string

	cfg     *config.Config
	logger  *log.Logger
	closers []io.Closer
	backend storage.Backend
	store   *storage.SessionStore
	client  *answer.Client
}

// NewApp creates a new askdesk CLI application.
func NewApp() *App {
	return &App{}
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	app := NewApp()
	root := app.CreateRootCommand()
	err := root.Execute()
	app.Close()
	if err != nil {
		DisplayError(os.Stderr, err, false)
		os.Exit(GetExitCode(err))
	}
}

// CreateRootCommand creates and configures the root command.
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "askdesk",
		Short: "Terminal chat client for the campus assistant",
		Long: `askdesk sends your questions to the campus assistant backend and shows
the answers with the documents they came from. Conversations are saved
locally and can be reopened, listed and exported.

Run without a command to open the chat TUI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTUI(cmd)
		},
	}

	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Options.ConfigPath, "config", "", "config file (default ~/.askdesk/config.toml)")
	flags.StringVar(&app.Options.APIURL, "api-url", "", "backend base URL (overrides config and ASKDESK_API_URL)")
	flags.StringVar(&app.Options.Namespace, "namespace", "", "storage namespace")
	flags.BoolVar(&app.Options.Ephemeral, "ephemeral", false, "keep sessions in memory only")
	flags.StringVar(&app.Options.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	// Add all subcommands
	app.addTUICommand(rootCmd)
	app.addChatCommand(rootCmd)
	app.addAskCommand(rootCmd)
	app.addSessionsCommand(rootCmd)
	app.addConfigCommand(rootCmd)
	app.addDoctorCommand(rootCmd)
	app.addPageCommands(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

// Close releases everything opened by the app.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
	app.closers = nil
}

// =============================================================================
// LAZY RESOURCES
// =============================================================================

// Config loads .env files, the config file and environment, then applies
// the global flags.
func (app *App) Config() (*config.Config, error) {
	if app.cfg != nil {
		return app.cfg, nil
	}

	if err := config.LoadDotEnv(app.DotEnvFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Load(app.Options.ConfigPath)
	if err != nil {
		return nil, err
	}

	if app.Options.APIURL != "" {
		cfg.API.BaseURL = app.Options.APIURL
	}
	if app.Options.Namespace != "" {
		cfg.Storage.Namespace = app.Options.Namespace
	}
	if app.Options.Ephemeral {
		cfg.Storage.Backend = storage.KindMemory
	}
	if app.Options.LogLevel != "" {
		cfg.Log.Level = app.Options.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	app.cfg = cfg
	return cfg, nil
}

// Logger returns the file logger. Logging problems never stop a command;
// a logger that cannot open its file discards.
func (app *App) Logger() *log.Logger {
	if app.logger != nil {
		return app.logger
	}
	app.logger = logging.Discard()

	cfg, err := app.Config()
	if err != nil {
		return app.logger
	}
	path, err := cfg.LogFile()
	if err != nil {
		return app.logger
	}
	logger, closer, err := logging.New(logging.Options{Level: cfg.Log.Level, File: path})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning:"), "logging disabled:", err)
		return app.logger
	}
	app.logger = logger
	app.closers = append(app.closers, closer)
	return logger
}

// Store opens the configured backend and returns the namespaced store.
func (app *App) Store() (*storage.SessionStore, error) {
	if app.store != nil {
		return app.store, nil
	}
	cfg, err := app.Config()
	if err != nil {
		return nil, err
	}

	dir, err := cfg.StorageDir()
	if err != nil {
		return nil, err
	}
	backend, err := storage.Open(cfg.Storage.Backend, dir)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	app.backend = backend
	app.closers = append(app.closers, backend)

	app.store = storage.NewSessionStore(backend, storage.StoreOptions{
		Namespace:   cfg.Storage.Namespace,
		MaxSessions: cfg.Storage.MaxSessions,
		Logger:      app.Logger(),
	})
	app.Logger().Debug("Session store open", "backend", cfg.Storage.Backend, "dir", dir, "key", app.store.Key())
	return app.store, nil
}

// Client returns the answer client.
func (app *App) Client() (*answer.Client, error) {
	if app.client != nil {
		return app.client, nil
	}
	cfg, err := app.Config()
	if err != nil {
		return nil, err
	}
	app.client = answer.NewClient(&answer.ClientConfig{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.Timeout(),
		RequestsPerMinute: cfg.API.RequestsPerMinute,
		Logger:            app.Logger(),
	})
	return app.client, nil
}

// Controller builds a conversation controller over the app's client and
// store.
func (app *App) Controller(notifier conversation.Notifier) (*conversation.Controller, error) {
	client, err := app.Client()
	if err != nil {
		return nil, err
	}
	store, err := app.Store()
	if err != nil {
		return nil, err
	}
	return conversation.New(conversation.Config{
		Asker:    client,
		Store:    store,
		Notifier: notifier,
		Logger:   app.Logger(),
	}), nil
}

// errAborted is returned when the user declines a confirmation.
var errAborted = errors.New("aborted")
