// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/atotto/clipboard"

// Toast texts for the copy action.
const (
	CopiedText     = "Copied to clipboard!"
	CopyFailedText = "Failed to copy"
)

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(text string) error

// SystemClipboard copies through atotto/clipboard (pbcopy, xclip, xsel,
// wl-copy or the Windows API, whichever is present).
func SystemClipboard(text string) error {
	return clipboard.WriteAll(text)
}
