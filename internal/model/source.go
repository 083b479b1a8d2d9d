// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "github.com/jeranaias/askdesk/internal/util"

// Source is a supporting excerpt returned alongside an answer.
type Source struct {
	TextChunk  string `json:"text_chunk"`
	SourceFile string `json:"source_file"`
}

// UniqueSources collapses sources that share a SourceFile, keeping the first
// occurrence (and its excerpt) in original order. The input is not modified.
// A nil or empty input yields nil.
func UniqueSources(sources []Source) []Source {
	if len(sources) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(sources))
	out := make([]Source, 0, len(sources))
	for _, s := range sources {
		if _, dup := seen[s.SourceFile]; dup {
			continue
		}
		seen[s.SourceFile] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Excerpt returns the text chunk flattened to one line and cut to maxLen.
func (s Source) Excerpt(maxLen int) string {
	return util.TruncateRunes(util.SingleLine(s.TextChunk), maxLen)
}

// SourcesLabel returns "Source" or "Sources" depending on n.
func SourcesLabel(n int) string {
	if n == 1 {
		return "Source"
	}
	return "Sources"
}
