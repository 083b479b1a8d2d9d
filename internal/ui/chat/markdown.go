// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/askdesk/internal/ui/components"
)

// markdownRenderer keeps one glamour renderer per wrap width; building a
// renderer parses the whole style sheet.
type markdownRenderer struct {
	style string

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

// NewMarkdown returns a MarkdownFunc rendering with the glamour standard
// style (e.g. "dark", "light", "notty"). Rendering failures fall back to
// the raw text.
func NewMarkdown(style string) components.MarkdownFunc {
	r := &markdownRenderer{style: style, byWidth: make(map[int]*glamour.TermRenderer)}
	return r.render
}

func (r *markdownRenderer) render(content string, width int) string {
	tr, err := r.renderer(width)
	if err != nil {
		return content
	}
	out, err := tr.Render(content)
	if err != nil {
		return content
	}
	return out
}

func (r *markdownRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.byWidth[width]; ok {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(r.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.byWidth[width] = tr
	return tr, nil
}
