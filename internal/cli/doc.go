// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the askdesk command tree.
//
// Commands:
//
//	askdesk                      open the chat TUI (same as "askdesk tui")
//	askdesk chat                 line-mode chat with history and slash commands
//	askdesk ask <question>       ask one question and print the answer
//	askdesk sessions list|show|delete|clear|export
//	askdesk config show|path|keys|init|get|set
//	askdesk doctor               check config, backend and storage
//	askdesk version
//
// Global flags --config, --api-url, --namespace, --ephemeral and
// --log-level are applied over the config file and environment.
//
// The App type carries the resolved configuration and opens the session
// store, answer client and logger lazily so that commands such as
// "config path" and "version" work without a usable config.
package cli
