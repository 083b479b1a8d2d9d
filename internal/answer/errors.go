// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTimeout
	ErrTypeServer
	ErrTypeUnreachable
)

// String returns the name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeServer:
		return "server"
	case ErrTypeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	msgTimeout     = "Request timeout. Please try again."
	msgUnreachable = "Unable to connect to the server. Please check if the backend is running at "
	msgUnknown     = "An unexpected error occurred. Please try again."
)

// ClientError represents an error from the answer client.
// Message is always suitable for display; Cause carries the transport detail.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int    // set for ErrTypeServer
	Endpoint   string // set for ErrTypeUnreachable
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type, so errors.Is works against
// the sentinels below.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// Sentinel errors for easy checking.
var (
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: msgTimeout}
	ErrServer      = &ClientError{Type: ErrTypeServer, Message: "server error"}
	ErrUnreachable = &ClientError{Type: ErrTypeUnreachable, Message: "backend unreachable"}
	ErrUnknown     = &ClientError{Type: ErrTypeUnknown, Message: msgUnknown}
)

func timeoutError(cause error) *ClientError {
	return &ClientError{Type: ErrTypeTimeout, Message: msgTimeout, Cause: cause}
}

func serverError(status int, message string) *ClientError {
	if message == "" {
		message = fmt.Sprintf("Server error: %d", status)
	}
	return &ClientError{Type: ErrTypeServer, Message: message, StatusCode: status}
}

func unreachableError(endpoint string, cause error) *ClientError {
	return &ClientError{
		Type:     ErrTypeUnreachable,
		Message:  msgUnreachable + endpoint,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

func unknownError(cause error) *ClientError {
	return &ClientError{Type: ErrTypeUnknown, Message: msgUnknown, Cause: cause}
}

// UserMessage returns the text to show for err. Non-client errors map to the
// generic unknown-error message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return msgUnknown
}
