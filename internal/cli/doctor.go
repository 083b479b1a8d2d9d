// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/askdesk/internal/answer"
	"github.com/jeranaias/askdesk/internal/storage"
)

// healthTimeout bounds the backend health check.
const healthTimeout = 5 * time.Second

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed successfully.
	CheckPass CheckStatus = iota
	// CheckWarn indicates the check passed with warnings.
	CheckWarn
	// CheckFail indicates the check failed.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarn:
		return "warn"
	case CheckFail:
		return "fail"
	default:
		return "unknown"
	}
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"-"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// Render returns a formatted line for the check.
func (c *HealthCheck) Render() string {
	status := "ok"
	switch c.Status {
	case CheckWarn:
		status = "warn"
	case CheckFail:
		status = "fail"
	}
	result := fmt.Sprintf("%s %s", RenderStatus(status), c.Message)
	if c.Status != CheckPass && c.Fix != "" {
		result += "\n     " + DimStyle.Render("-> "+c.Fix)
	}
	return result
}

// doctorCheck is the JSON form of a HealthCheck.
type doctorCheck struct {
	*HealthCheck
	State string `json:"status"`
}

// DoctorSummary counts check outcomes.
type DoctorSummary struct {
	Passed  int  `json:"passed"`
	Warned  int  `json:"warned"`
	Failed  int  `json:"failed"`
	Healthy bool `json:"healthy"`
}

// =============================================================================
// DOCTOR COMMAND
// =============================================================================

func (app *App) addDoctorCommand(root *cobra.Command) {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check config, backend, storage and logging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			checks := app.runAllChecks(cmd.Context())
			return reportChecks(cmd.OutOrStdout(), checks, jsonOut)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	root.AddCommand(cmd)
}

func reportChecks(out io.Writer, checks []*HealthCheck, jsonOut bool) error {
	var sum DoctorSummary
	for _, c := range checks {
		switch c.Status {
		case CheckPass:
			sum.Passed++
		case CheckWarn:
			sum.Warned++
		case CheckFail:
			sum.Failed++
		}
	}
	sum.Healthy = sum.Failed == 0

	var failure error
	if sum.Failed > 0 {
		failure = fmt.Errorf("%d health check(s) failed", sum.Failed)
	}

	if jsonOut {
		rows := make([]doctorCheck, 0, len(checks))
		for _, c := range checks {
			rows = append(rows, doctorCheck{HealthCheck: c, State: c.Status.String()})
		}
		resp := NewJSONResponse("doctor", map[string]interface{}{"checks": rows, "summary": sum})
		if failure != nil {
			msg := failure.Error()
			resp.Success = false
			resp.Error = &msg
		}
		if err := resp.Print(out); err != nil {
			return err
		}
		if failure != nil {
			return &reportedError{err: failure}
		}
		return nil
	}

	fmt.Fprintln(out, TitleStyle.Render("askdesk doctor"))
	fmt.Fprintln(out, RenderSeparator(41))
	for _, c := range checks {
		fmt.Fprintln(out, c.Render())
	}
	fmt.Fprintln(out, RenderSeparator(41))

	parts := []string{fmt.Sprintf("%d passed", sum.Passed)}
	if sum.Warned > 0 {
		parts = append(parts, WarningStyle.Render(fmt.Sprintf("%d warning", sum.Warned)))
	}
	if sum.Failed > 0 {
		parts = append(parts, ErrorStyle.Render(fmt.Sprintf("%d failed", sum.Failed)))
	}
	fmt.Fprintln(out, strings.Join(parts, ", "))
	return failure
}

// =============================================================================
// HEALTH CHECK FUNCTIONS
// =============================================================================

// runAllChecks stops after the config check when the config is unusable.
func (app *App) runAllChecks(ctx context.Context) []*HealthCheck {
	cfgCheck := app.checkConfig()
	checks := []*HealthCheck{cfgCheck}
	if cfgCheck.Status == CheckFail {
		return checks
	}
	return append(checks,
		app.checkBackend(ctx),
		app.checkStorage(),
		app.checkLogFile(),
	)
}

func (app *App) checkConfig() *HealthCheck {
	check := &HealthCheck{Name: "config"}

	path, err := app.configPath()
	if err != nil {
		check.Status = CheckFail
		check.Message = "Could not determine config path: " + err.Error()
		check.Fix = "Set ASKDESK_HOME or HOME"
		return check
	}

	if _, err := app.Config(); err != nil {
		check.Status = CheckFail
		check.Message = "Config invalid: " + err.Error()
		check.Fix = "Edit " + path + " or run: askdesk config init --force"
		return check
	}

	check.Status = CheckPass
	if _, err := os.Stat(path); err != nil {
		check.Message = "Config valid (using defaults)"
	} else {
		check.Message = "Config valid (" + path + ")"
	}
	return check
}

func (app *App) checkBackend(ctx context.Context) *HealthCheck {
	check := &HealthCheck{Name: "backend"}

	client, err := app.Client()
	if err != nil {
		check.Status = CheckFail
		check.Message = err.Error()
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := client.Health(ctx); err != nil {
		check.Status = CheckFail
		check.Message = answer.UserMessage(err)
		check.Fix = "Start the backend or set api.base_url / ASKDESK_API_URL"
		return check
	}

	check.Status = CheckPass
	check.Message = "Backend reachable at " + client.BaseURL()
	return check
}

func (app *App) checkStorage() *HealthCheck {
	check := &HealthCheck{Name: "storage"}

	cfg, _ := app.Config()
	store, err := app.Store()
	if err != nil {
		check.Status = CheckFail
		check.Message = "Storage unavailable: " + err.Error()
		if dir, derr := cfg.StorageDir(); derr == nil {
			check.Fix = "Check permissions on " + dir
		}
		return check
	}

	n := len(store.List())
	check.Message = fmt.Sprintf("%s storage, key %s, %d session(s)", cfg.Storage.Backend, store.Key(), n)
	if cfg.Storage.Backend == storage.KindMemory {
		check.Status = CheckWarn
		check.Message += "; sessions are lost on exit"
		check.Fix = "askdesk config set storage.backend file"
		return check
	}
	check.Status = CheckPass
	return check
}

func (app *App) checkLogFile() *HealthCheck {
	check := &HealthCheck{Name: "log"}

	cfg, _ := app.Config()
	path, err := cfg.LogFile()
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Could not determine log file: " + err.Error()
		return check
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		check.Status = CheckWarn
		check.Message = "Log directory not writable: " + err.Error()
		return check
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		check.Status = CheckWarn
		check.Message = "Log file not writable: " + err.Error()
		check.Fix = "Set log.file or ASKDESK_LOG_FILE"
		return check
	}
	f.Close()

	check.Status = CheckPass
	check.Message = "Logging to " + path
	return check
}
