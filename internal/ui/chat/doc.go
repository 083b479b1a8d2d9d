// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view of the askdesk TUI.

# Model (model.go)

Model is the Bubble Tea model. It holds no conversation state of its own:
messages, the pending flag and session identity live in a
*conversation.Controller, and the model renders whatever the controller
reports. The model owns presentation state only:
  - textarea input with a live character count
  - viewport over the rendered message list
  - spinner shown while an answer is pending
  - the selected answer and which source lists are expanded
  - the new-chat confirmation and the history panel

# Update Loop (update.go)

Enter calls Controller.Begin synchronously and returns a tea.Cmd that runs
Controller.Resolve; its AnswerMsg refreshes the view. While a turn is
pending the input is blurred and keystrokes are not forwarded to it.

When the session store is file backed, a storage.Watcher feeds
StoreChangedMsg so the history panel follows writes from other processes.

# View (view.go)

Header, message list (or welcome screen with starter prompts), toast stack
over the top-right of the list, input box, and a short help line.
*/
package chat
