// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askdesk/internal/conversation"
	"github.com/jeranaias/askdesk/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastKindInfo ToastKind = iota
	ToastKindSuccess
	ToastKindError
)

// DefaultToastDuration is the auto-dismiss duration for info and success toasts.
const DefaultToastDuration = 3 * time.Second

// ErrorToastDuration is the auto-dismiss duration for error toasts (longer to read).
const ErrorToastDuration = 6 * time.Second

// Toast is a non-blocking notification that auto-dismisses.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// ExpiredAt reports whether the toast should be gone at now.
func (t Toast) ExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager queues toasts. It implements conversation.Notifier and is
// safe for concurrent use.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
	now       func() time.Time
}

// NewToastManager creates a toast manager.
func NewToastManager() *ToastManager {
	return &ToastManager{
		nextID:    1,
		maxToasts: 3,
		now:       time.Now,
	}
}

// SetClock replaces the clock, for tests.
func (m *ToastManager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Add queues a toast and returns its id. Newest first; the oldest is
// dropped beyond the limit.
func (m *ToastManager) Add(kind ToastKind, message string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := DefaultToastDuration
	if kind == ToastKindError {
		d = ErrorToastDuration
	}
	t := Toast{
		ID:        m.nextID,
		Message:   message,
		Kind:      kind,
		CreatedAt: m.now(),
		Duration:  d,
	}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// AddError queues an error toast.
func (m *ToastManager) AddError(message string) int {
	return m.Add(ToastKindError, message)
}

// AddSuccess queues a success toast.
func (m *ToastManager) AddSuccess(message string) int {
	return m.Add(ToastKindSuccess, message)
}

// Notify implements conversation.Notifier.
func (m *ToastManager) Notify(n conversation.Notification) {
	switch n.Level {
	case conversation.LevelError:
		m.Add(ToastKindError, n.Message)
	case conversation.LevelSuccess:
		m.Add(ToastKindSuccess, n.Message)
	default:
		m.Add(ToastKindInfo, n.Message)
	}
}

// Dismiss removes the toast with id.
func (m *ToastManager) Dismiss(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissAll removes every toast.
func (m *ToastManager) DismissAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// Prune drops expired toasts and reports whether any remain.
func (m *ToastManager) Prune() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.ExpiredAt(now) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return len(m.toasts) > 0
}

// Toasts returns the live toasts, newest first.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// Len returns the number of queued toasts.
func (m *ToastManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderToasts renders the toast stack right-aligned within width.
// Returns "" when there is nothing to show.
func RenderToasts(theme *styles.Theme, toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	maxW := width / 2
	if maxW < 24 {
		maxW = width
	}

	var lines []string
	for _, t := range toasts {
		style := theme.ToastInfo
		icon := "i"
		switch t.Kind {
		case ToastKindSuccess:
			style, icon = theme.ToastSuccess, "✓"
		case ToastKindError:
			style, icon = theme.ToastError, "✗"
		}
		text := icon + " " + t.Message
		// Width covers padding, not the border.
		if inner := maxW - 2; lipgloss.Width(text)+2 > inner && inner > 4 {
			style = style.Width(inner)
		}
		box := style.Render(text)
		lines = append(lines, lipgloss.PlaceHorizontal(width, lipgloss.Right, box))
	}
	return strings.Join(lines, "\n")
}
