// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package answer provides the HTTP client for the campus assistant backend.
//
// A single call, Ask, posts the question to {base}/retrieve/ and returns the
// answer with its source excerpts. Every failure is reported as a
// *ClientError whose Message is ready to show to the user:
//
//	resp, err := client.Ask(ctx, "What are the hostel facilities?")
//	if errors.Is(err, answer.ErrTimeout) {
//	    // "Request timeout. Please try again."
//	}
//
// The client never retries.
package answer
