// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// CONFIRMATION
// =============================================================================

// ConfirmationOptions controls RequireConfirmation.
type ConfirmationOptions struct {
	// Yes is set by --yes and skips the prompt.
	Yes bool
	// JSONMode never prompts; --yes is required.
	JSONMode bool
	// Interactive reports whether the input can be prompted.
	Interactive bool
}

// RequireConfirmation asks before a destructive action.
//
//  1. --yes proceeds without prompting
//  2. JSON mode or non-interactive input requires --yes
//  3. otherwise the user is asked on in/out
func RequireConfirmation(in io.Reader, out io.Writer, action string, opts ConfirmationOptions) (bool, error) {
	if opts.Yes {
		return true, nil
	}
	if opts.JSONMode {
		return false, &UsageError{Reason: action + " requires --yes in JSON mode"}
	}
	if !opts.Interactive {
		return false, &TTYRequiredError{Operation: "confirm " + action + " (pass --yes)"}
	}

	fmt.Fprintf(out, "%s %s? [y/N] ", WarningStyle.Render("Confirm:"), action)
	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
