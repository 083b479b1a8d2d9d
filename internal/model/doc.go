// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for questions, answers and
// saved chat sessions.
//
// # Key Types
//
//   - Message: one user question or assistant answer, immutable once created
//   - Source: an excerpt plus the document it came from, attached to answers
//   - ChatSession: one persisted conversation with its ordered messages
//   - Role: message sender (user, assistant)
//
// # Usage
//
//	q := model.NewUserMessage("What are the library timings?", time.Now())
//	a := model.NewAssistantMessage(resp.Answer, resp.Sources, time.Now())
//	shown := model.UniqueSources(a.Sources)
package model
