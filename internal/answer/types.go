// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import "github.com/jeranaias/askdesk/internal/model"

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// QueryRequest is the request body for the /retrieve/ endpoint.
type QueryRequest struct {
	Query string `json:"query"`
}

// Response is the decoded success body of /retrieve/.
// Sources are returned as sent; de-duplication happens when the answer is
// turned into a message.
type Response struct {
	Answer  string         `json:"answer"`
	Sources []model.Source `json:"sources"`
}

// errorBody is the structured error body the backend may send with a non-2xx
// status. Either field may be absent or of an unexpected type.
type errorBody struct {
	Detail  any `json:"detail"`
	Message any `json:"message"`
}

// text returns the first non-empty string among detail and message.
func (b errorBody) text() string {
	if s, ok := b.Detail.(string); ok && s != "" {
		return s
	}
	if s, ok := b.Message.(string); ok && s != "" {
		return s
	}
	return ""
}
