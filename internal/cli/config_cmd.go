// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func (app *App) addConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  app.runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List every settable key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, k := range config.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:     "get <key>",
		Short:   "Print one effective value",
		Example: "  askdesk config get api.base_url",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config()
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return &UsageError{Reason: err.Error(), Example: "askdesk config keys"}
			}
			if list, ok := v.([]string); ok {
				v = strings.Join(list, ",")
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the config file",
		Long: `Change one value in the config file. Environment variables and flags
still override the file. Lists take comma-separated values.`,
		Example: `  askdesk config set storage.backend sqlite
  askdesk config set ui.starter_prompts "Library timings?,Hostel fees?"`,
		Args: cobra.ExactArgs(2),
		RunE: app.runConfigSet,
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := app.configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return &UsageError{Reason: "config file already exists at " + path, Example: "askdesk config init --force"}
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s\n", RenderStatus("ok"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	root.AddCommand(cmd)
}

// configPath is --config or the default location.
func (app *App) configPath() (string, error) {
	if app.Options.ConfigPath != "" {
		return app.Options.ConfigPath, nil
	}
	return config.Path()
}

func (app *App) runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := app.Config()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	path, _ := app.configPath()

	fmt.Fprintln(out, TitleStyle.Render("askdesk configuration"))
	fmt.Fprintln(out, RenderLabel("Config file:")+path)
	fmt.Fprintln(out)
	fmt.Fprint(out, cfg.String())

	var set []string
	for _, name := range config.EnvVars {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			set = append(set, fmt.Sprintf("  %s=%s", name, v))
		}
	}
	if len(set) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, TitleStyle.Render("Environment overrides:"))
		for _, line := range set {
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

// runConfigSet edits the file alone so environment overrides are not
// written back.
func (app *App) runConfigSet(cmd *cobra.Command, args []string) error {
	path, err := app.configPath()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if err := config.LoadTOML(cfg, path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return &UsageError{Reason: err.Error(), Example: "askdesk config keys"}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", RenderStatus("ok"), args[0], args[1])
	return nil
}
