// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for askdesk.
//
// Values are layered, later layers winning:
//
//   - Built-in defaults (Default)
//   - ~/.askdesk/config.toml, or the file passed with --config
//   - A .env file in the working directory (existing environment wins)
//   - ASKDESK_* environment variables (VITE_API_URL is accepted too)
//   - Command-line flags, applied by the cli package
//
// The data directory defaults to ~/.askdesk and can be moved with
// ASKDESK_HOME.
package config
