// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/askdesk/internal/logging"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is used when no backend URL is configured.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a whole request, including any rate-limit wait.
	DefaultTimeout = 30 * time.Second

	// retrievePath is appended to the base URL for questions.
	retrievePath = "/retrieve/"

	// maxErrorBody caps how much of a failed response is read for its message.
	maxErrorBody = 64 << 10
)

// ClientConfig holds configuration options for the answer client.
type ClientConfig struct {
	// BaseURL is the backend origin (default: http://localhost:8000).
	// A trailing slash is ignored.
	BaseURL string

	// Timeout is the upper bound on one Ask call (default: 30s).
	Timeout time.Duration

	// RequestsPerMinute paces outgoing questions. 0 disables pacing.
	RequestsPerMinute int

	// HTTPClient overrides the transport. Its own Timeout should be zero;
	// the client applies Timeout through the request context.
	HTTPClient *http.Client

	// Logger receives request outcomes. Nil discards.
	Logger *log.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client sends questions to the backend.
//
// The Client is safe for concurrent use, though the conversation controller
// only ever has one call in flight.
//
// Example:
//
//	client := answer.NewClient(&answer.ClientConfig{BaseURL: "http://localhost:8000"})
//	resp, err := client.Ask(ctx, "What are the library timings?")
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *log.Logger
}

// NewClient creates a client, filling defaults for zero values.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		config:     cfg,
		httpClient: httpClient,
		log:        logging.OrDiscard(cfg.Logger),
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// BaseURL returns the normalised backend origin.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Timeout returns the per-call wait bound.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout
}

// =============================================================================
// ASK
// =============================================================================

// Ask posts query to {base}/retrieve/ and returns the decoded answer.
// All errors are *ClientError.
func (c *Client) Ask(ctx context.Context, query string) (*Response, error) {
	start := time.Now()
	resp, err := c.ask(ctx, query)

	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		var ce *ClientError
		if errors.As(err, &ce) {
			c.log.Warn("answer request failed", "type", ce.Type, "status", ce.StatusCode, "duration", elapsed, "err", err)
		}
		return nil, err
	}
	c.log.Info("answer request ok", "sources", len(resp.Sources), "duration", elapsed)
	return resp, nil
}

func (c *Client) ask(parent context.Context, query string) (*Response, error) {
	ctx, cancel := context.WithTimeout(parent, c.config.Timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next slot lies past the deadline.
			if callerCanceled(parent) {
				return nil, unknownError(err)
			}
			return nil, timeoutError(err)
		}
	}

	body, err := json.Marshal(QueryRequest{Query: query})
	if err != nil {
		return nil, unknownError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+retrievePath, bytes.NewReader(body))
	if err != nil {
		return nil, unknownError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(parent, ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverError(resp.StatusCode, readErrorMessage(resp.Body))
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if isTimeout(ctx, err) && !callerCanceled(parent) {
			return nil, timeoutError(err)
		}
		return nil, unknownError(err)
	}
	return &result, nil
}

// transportError classifies a failure where no response arrived.
func (c *Client) transportError(parent, ctx context.Context, err error) error {
	switch {
	case callerCanceled(parent):
		return unknownError(err)
	case isTimeout(ctx, err):
		return timeoutError(err)
	default:
		return unreachableError(c.config.BaseURL, err)
	}
}

// callerCanceled reports whether the caller's own context was cancelled.
// A caller deadline still counts as a timeout.
func callerCanceled(parent context.Context) bool {
	return errors.Is(parent.Err(), context.Canceled)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// readErrorMessage extracts detail or message from an error body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil {
		return ""
	}
	return eb.text()
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Health verifies that the backend answers GET {base}/.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return unknownError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return timeoutError(err)
		}
		return unreachableError(c.config.BaseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return serverError(resp.StatusCode, "")
	}
	return nil
}
