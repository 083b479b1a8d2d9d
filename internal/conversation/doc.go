// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation coordinates one chat: the message history, the
// single outstanding answer request, and persistence of the session after
// each successful exchange.
//
// A question is submitted in two steps. Begin appends the user message and
// marks the controller pending; Resolve performs the remote call and applies
// the outcome. Callers that block may use Submit, which does both. The TUI
// runs Resolve inside a tea.Cmd so the update loop never waits on the
// network.
//
// Failures never reach the caller as errors to handle: they are delivered
// to the injected Notifier as a user-facing message and the history keeps
// the user's question so it can be retried.
package conversation
