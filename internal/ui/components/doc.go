// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the rendering pieces of the askdesk TUI:
// header, welcome screen with starter prompts, message bubbles with their
// sources list, toasts, the new-chat confirmation and the history panel.
//
// Components are plain render functions over a *styles.Theme. State such
// as the selected bubble or which source lists are expanded lives in the
// chat model and is passed in. ToastManager is the exception: it owns the
// toast queue so that it can receive notifications from any goroutine.
package components
