// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// HELPERS
// =============================================================================

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&ClientConfig{BaseURL: server.URL, Timeout: 2 * time.Second}), server
}

func requireClientError(t *testing.T, err error, want ErrorType) *ClientError {
	t.Helper()
	require.Error(t, err)
	var ce *ClientError
	require.True(t, errors.As(err, &ce), "expected *ClientError, got %T", err)
	require.Equal(t, want, ce.Type, "error: %v", err)
	return ce
}

// =============================================================================
// SUCCESS
// =============================================================================

func TestAsk_Success(t *testing.T) {
	var gotQuery QueryRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/retrieve/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotQuery))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"answer":"Hostels are...","sources":[{"source_file":"hostel.pdf","text_chunk":"Rooms are"}]}`))
	})

	resp, err := client.Ask(context.Background(), "What are the hostel facilities?")
	require.NoError(t, err)

	assert.Equal(t, "What are the hostel facilities?", gotQuery.Query)
	assert.Equal(t, "Hostels are...", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "hostel.pdf", resp.Sources[0].SourceFile)
	assert.Equal(t, "Rooms are", resp.Sources[0].TextChunk)
}

func TestAsk_SourcesReturnedAsSent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"a","sources":[{"source_file":"faq.pdf","text_chunk":"A"},{"source_file":"faq.pdf","text_chunk":"B"}]}`))
	})

	resp, err := client.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, resp.Sources, 2)
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"answer":"ok","sources":[]}`))
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL + "/"})
	_, err := client.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "/retrieve/", path)
	assert.Equal(t, server.URL, client.BaseURL())
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(nil)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.Timeout())

	client = NewClient(&ClientConfig{BaseURL: "  ", Timeout: -1})
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
	assert.Equal(t, DefaultTimeout, client.Timeout())
}

// =============================================================================
// ERRORS
// =============================================================================

func TestAsk_ServerErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail", http.StatusUnprocessableEntity, `{"detail":"Query too long"}`, "Query too long"},
		{"message", http.StatusInternalServerError, `{"message":"index offline"}`, "index offline"},
		{"detail wins", http.StatusBadRequest, `{"detail":"first","message":"second"}`, "first"},
		{"non-string detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body"]}],"message":"bad body"}`, "bad body"},
		{"empty json", http.StatusInternalServerError, `{}`, "Server error: 500"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "Server error: 502"},
		{"empty body", http.StatusServiceUnavailable, ``, "Server error: 503"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := client.Ask(context.Background(), "q")
			ce := requireClientError(t, err, ErrTypeServer)
			assert.Equal(t, tc.want, ce.Message)
			assert.Equal(t, tc.status, ce.StatusCode)
			assert.True(t, errors.Is(err, ErrServer))
		})
	}
}

func TestAsk_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL, Timeout: 50 * time.Millisecond})
	_, err := client.Ask(context.Background(), "q")

	ce := requireClientError(t, err, ErrTypeTimeout)
	assert.Equal(t, "Request timeout. Please try again.", ce.Message)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, ErrUnreachable))
}

func TestAsk_CallerDeadlineIsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL, Timeout: 5 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Ask(ctx, "q")
	requireClientError(t, err, ErrTypeTimeout)
}

func TestAsk_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	client := NewClient(&ClientConfig{BaseURL: base, Timeout: 2 * time.Second})
	_, err := client.Ask(context.Background(), "q")

	ce := requireClientError(t, err, ErrTypeUnreachable)
	assert.Equal(t, base, ce.Endpoint)
	assert.Equal(t, "Unable to connect to the server. Please check if the backend is running at "+base, ce.Message)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestAsk_UndecodableBodyIsUnknown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.Ask(context.Background(), "q")
	ce := requireClientError(t, err, ErrTypeUnknown)
	assert.Equal(t, "An unexpected error occurred. Please try again.", ce.Message)
}

func TestAsk_CancelledContextIsUnknown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"late"}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Ask(ctx, "q")
	requireClientError(t, err, ErrTypeUnknown)
}

func TestAsk_MalformedBaseURLIsUnknown(t *testing.T) {
	client := NewClient(&ClientConfig{BaseURL: "http://bad host\x7f"})
	_, err := client.Ask(context.Background(), "q")
	requireClientError(t, err, ErrTypeUnknown)
}

func TestAsk_NoRetries(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Ask(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

// =============================================================================
// RATE LIMIT
// =============================================================================

func TestAsk_RateLimitCountsAgainstDeadline(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"answer":"ok","sources":[]}`))
	}))
	defer server.Close()

	client := NewClient(&ClientConfig{BaseURL: server.URL, Timeout: 100 * time.Millisecond, RequestsPerMinute: 1})

	_, err := client.Ask(context.Background(), "first")
	require.NoError(t, err)

	_, err = client.Ask(context.Background(), "second")
	requireClientError(t, err, ErrTypeTimeout)
	assert.Equal(t, int32(1), calls.Load(), "paced request must not reach the server")
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		w.Write([]byte(`["status : ok"]`))
	})
	assert.NoError(t, client.Health(context.Background()))
}

func TestHealth_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	err := NewClient(&ClientConfig{BaseURL: base}).Health(context.Background())
	requireClientError(t, err, ErrTypeUnreachable)
}

func TestHealth_BadStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := client.Health(context.Background())
	ce := requireClientError(t, err, ErrTypeServer)
	assert.True(t, strings.Contains(ce.Message, "500"))
}

// =============================================================================
// ERROR TYPE TESTS
// =============================================================================

func TestClientError_Is(t *testing.T) {
	err := timeoutError(context.DeadlineExceeded)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrServer))
	assert.False(t, errors.Is(err, ErrUnknown))
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "timeout", ErrTypeTimeout.String())
	assert.Equal(t, "server", ErrTypeServer.String())
	assert.Equal(t, "unreachable", ErrTypeUnreachable.String())
	assert.Equal(t, "unknown", ErrTypeUnknown.String())
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "Server error: 500", UserMessage(serverError(500, "")))
	assert.Equal(t, "An unexpected error occurred. Please try again.", UserMessage(errors.New("boom")))
}
