// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/askdesk/internal/answer"
	"github.com/jeranaias/askdesk/internal/config"
	"github.com/jeranaias/askdesk/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the backend could not be reached or failed
	ExitNetworkError = 5
	// ExitNotFoundError indicates a session was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates a question timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// AnswerError reports a failed question with the message the user sees.
type AnswerError struct {
	Err error
}

func (e *AnswerError) Error() string {
	return answer.UserMessage(e.Err)
}

func (e *AnswerError) Unwrap() error {
	return e.Err
}

// UsageError reports bad arguments.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nExample: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// reportedError has already been shown to the user, usually as a JSON
// envelope. Execute only uses it for the exit code.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// jsonFailure prints err as a JSON envelope to w and marks it reported.
func jsonFailure(w io.Writer, command string, err error) error {
	_ = NewJSONErrorResponse(command, err).Print(w)
	return &reportedError{err: err}
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError prints err to w, or a JSON error envelope when jsonMode is set.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}
	if jsonMode {
		_ = NewJSONErrorResponse("", err).Print(w)
		return
	}
	fmt.Fprintln(w, ErrorStyle.Render("Error:"), err)
}

// GetExitCode maps err to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}

	var ce *answer.ClientError
	if errors.As(err, &ce) {
		if ce.Type == answer.ErrTypeTimeout {
			return ExitTimeoutError
		}
		return ExitNetworkError
	}

	if errors.Is(err, storage.ErrSessionNotFound) {
		return ExitNotFoundError
	}

	var verrs config.ValidateErrors
	if errors.As(err, &verrs) || errors.Is(err, os.ErrNotExist) {
		return ExitConfigError
	}

	return ExitGeneralError
}
