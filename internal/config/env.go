// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// Environment variable names.
const (
	EnvAPIURL         = "ASKDESK_API_URL"
	EnvViteAPIURL     = "VITE_API_URL"
	EnvTimeout        = "ASKDESK_TIMEOUT"
	EnvStorageBackend = "ASKDESK_STORAGE_BACKEND"
	EnvStorageDir     = "ASKDESK_STORAGE_DIR"
	EnvNamespace      = "ASKDESK_NAMESPACE"
	EnvLogLevel       = "ASKDESK_LOG_LEVEL"
	EnvLogFile        = "ASKDESK_LOG_FILE"
)

// EnvVars lists every variable ApplyEnvOverrides reads, for `config show`.
var EnvVars = []string{
	EnvAPIURL, EnvViteAPIURL, EnvTimeout, EnvStorageBackend,
	EnvStorageDir, EnvNamespace, EnvLogLevel, EnvLogFile, HomeEnv,
}

// ApplyEnvOverrides applies ASKDESK_* variables over c.
func (c *Config) ApplyEnvOverrides() error {
	// ASKDESK_API_URL, falling back to the frontend's VITE_API_URL
	if u := os.Getenv(EnvAPIURL); u != "" {
		c.API.BaseURL = u
	} else if u := os.Getenv(EnvViteAPIURL); u != "" {
		c.API.BaseURL = u
	}

	// ASKDESK_TIMEOUT: whole seconds ("45") or a duration ("45s", "1m")
	if t := os.Getenv(EnvTimeout); t != "" {
		secs, err := parseTimeoutSecs(t)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.API.TimeoutSecs = secs
	}

	if b := os.Getenv(EnvStorageBackend); b != "" {
		c.Storage.Backend = strings.ToLower(b)
	}
	if d := os.Getenv(EnvStorageDir); d != "" {
		c.Storage.Dir = d
	}
	if ns := os.Getenv(EnvNamespace); ns != "" {
		c.Storage.Namespace = ns
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.Log.Level = strings.ToLower(lvl)
	}
	if f := os.Getenv(EnvLogFile); f != "" {
		c.Log.File = f
	}
	return nil
}

func parseTimeoutSecs(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", s)
	}
	secs := int(d.Round(time.Second) / time.Second)
	if secs == 0 && d > 0 {
		secs = 1
	}
	return secs, nil
}
