// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/askdesk/internal/answer"
	"github.com/jeranaias/askdesk/internal/logging"
	"github.com/jeranaias/askdesk/internal/model"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Asker answers one question. *answer.Client satisfies it.
type Asker interface {
	Ask(ctx context.Context, query string) (*answer.Response, error)
}

// Store persists session snapshots. *storage.SessionStore satisfies it.
type Store interface {
	Save(session model.ChatSession) error
}

// ErrNotPending is returned by Resolve for a turn that is not the one the
// controller is waiting on.
var ErrNotPending = errors.New("conversation: turn is not pending")

// =============================================================================
// TYPES
// =============================================================================

// Config holds the controller's collaborators. Asker is required; the rest
// default to no-ops.
type Config struct {
	Asker    Asker
	Store    Store
	Notifier Notifier
	Logger   *log.Logger

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Turn is one submitted question awaiting its answer.
type Turn struct {
	// Query is the normalised, trimmed text sent to the backend.
	Query string

	// User is the message appended by Begin.
	User model.Message
}

// Result is the outcome of a resolved turn.
type Result struct {
	Turn *Turn

	// Assistant is the appended answer; nil on failure.
	Assistant *model.Message

	// Session is the snapshot handed to the store; nil on failure.
	Session *model.ChatSession

	// Err is the answer error on failure. It has already been notified.
	Err error
}

// OK reports whether the turn produced an answer.
func (r Result) OK() bool {
	return r.Err == nil && r.Assistant != nil
}

// Controller owns the state of the current conversation. It is safe for use
// by the TUI update loop and the goroutine running Resolve at the same time.
type Controller struct {
	asker    Asker
	store    Store
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time

	mu        sync.Mutex
	messages  []model.Message
	current   *Turn
	sessionID string

	// Fixed on the session's first write.
	written   bool
	title     string
	createdAt time.Time
}

// New creates a controller with a fresh session id.
func New(cfg Config) *Controller {
	c := &Controller{
		asker:     cfg.Asker,
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		logger:    logging.OrDiscard(cfg.Logger),
		now:       cfg.Now,
		sessionID: model.NewSessionID(),
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Normalize returns text in NFC with surrounding whitespace removed.
func Normalize(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}

// Begin appends a user message for text and marks the controller pending.
// It returns false, changing nothing, when the text is blank or a turn is
// already pending.
func (c *Controller) Begin(text string) (*Turn, bool) {
	query := Normalize(text)
	if query == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.logger.Debug("Submit ignored while pending", "session", c.sessionID)
		return nil, false
	}

	msg := model.NewUserMessage(query, c.nextTimestamp())
	c.messages = append(c.messages, msg)
	turn := &Turn{Query: query, User: msg}
	c.current = turn

	c.logger.Debug("Turn started", "session", c.sessionID, "message", msg.ID)
	return turn, true
}

// Resolve asks the backend for turn and applies the outcome. It is the only
// blocking step of a submission. On success the answer is appended and the
// session is saved; on failure the error is notified and the history is
// left with the user's message.
func (c *Controller) Resolve(ctx context.Context, turn *Turn) Result {
	if turn == nil {
		return Result{Err: ErrNotPending}
	}

	c.mu.Lock()
	if c.current != turn {
		c.mu.Unlock()
		return Result{Turn: turn, Err: ErrNotPending}
	}
	c.mu.Unlock()

	resp, err := c.asker.Ask(ctx, turn.Query)
	if err == nil && resp == nil {
		err = errors.New("empty response")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil

	if err != nil {
		c.logger.Debug("Turn failed", "session", c.sessionID, "err", err)
		c.notifier.Notify(Notification{Level: LevelError, Message: answer.UserMessage(err)})
		return Result{Turn: turn, Err: err}
	}

	msg := model.NewAssistantMessage(resp.Answer, resp.Sources, c.nextTimestamp())
	c.messages = append(c.messages, msg)

	session := c.snapshot()
	if c.store != nil {
		if serr := c.store.Save(session); serr != nil {
			c.logger.Warn("Session not saved", "session", c.sessionID, "err", serr)
		}
	}

	c.logger.Debug("Turn answered", "session", c.sessionID, "message", msg.ID, "sources", len(msg.Sources))
	return Result{Turn: turn, Assistant: &msg, Session: &session}
}

// Submit runs Begin and Resolve back to back. The bool is false when Begin
// rejected the text.
func (c *Controller) Submit(ctx context.Context, text string) (Result, bool) {
	turn, ok := c.Begin(text)
	if !ok {
		return Result{}, false
	}
	return c.Resolve(ctx, turn), true
}

// nextTimestamp returns the current time, bumped past the last message so
// the history stays strictly ordered. Caller holds mu.
func (c *Controller) nextTimestamp() time.Time {
	ts := c.now()
	if n := len(c.messages); n > 0 {
		if last := c.messages[n-1].Timestamp; !ts.After(last) {
			ts = last.Add(time.Nanosecond)
		}
	}
	return ts
}

// snapshot builds the session record after a successful exchange. Title and
// creation time are fixed on the first write. Caller holds mu.
func (c *Controller) snapshot() model.ChatSession {
	now := c.now()
	if !c.written {
		c.written = true
		c.createdAt = now
		if len(c.messages) == 2 {
			c.title = model.SessionTitle(c.messages[0].Content)
		} else {
			c.title = model.PlaceholderTitle(c.sessionID)
		}
	}
	if now.Before(c.createdAt) {
		now = c.createdAt
	}

	return model.ChatSession{
		ID:        c.sessionID,
		Title:     c.title,
		Messages:  append([]model.Message(nil), c.messages...),
		CreatedAt: c.createdAt,
		UpdatedAt: now,
	}
}

// =============================================================================
// SESSION CONTROL
// =============================================================================

// Reset starts a new conversation. A non-empty history is only discarded
// when confirm returns true. Reset is refused while a turn is pending.
// The previous session needs no flush: it was saved on its last success.
func (c *Controller) Reset(confirm func() bool) bool {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		return false
	}
	needConfirm := len(c.messages) > 0
	c.mu.Unlock()

	// confirm may block on the user; do not hold the lock across it.
	if needConfirm && (confirm == nil || !confirm()) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return false
	}
	old := c.sessionID
	c.messages = nil
	c.sessionID = model.NewSessionID()
	c.written = false
	c.title = ""
	c.createdAt = time.Time{}

	c.logger.Debug("Conversation reset", "old", old, "session", c.sessionID)
	return true
}

// Resume replaces the current conversation with a stored session so that
// further answers are appended to it. Refused while a turn is pending.
func (c *Controller) Resume(session model.ChatSession) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		return false
	}

	clone := session.Clone()
	c.messages = clone.Messages
	c.sessionID = clone.ID
	c.written = true
	c.title = clone.Title
	c.createdAt = clone.CreatedAt

	c.logger.Debug("Conversation resumed", "session", c.sessionID, "messages", len(c.messages))
	return true
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Messages returns a copy of the history.
func (c *Controller) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Message(nil), c.messages...)
}

// Len returns the number of messages.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Pending reports whether a turn is awaiting its answer.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// SessionID returns the current session id.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Title returns the stored title, or "" before the first save.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// LastAssistant returns the most recent assistant message.
func (c *Controller) LastAssistant() (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].IsAssistant() {
			return c.messages[i], true
		}
	}
	return model.Message{}, false
}
