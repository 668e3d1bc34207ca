package backend

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	KindConnectivity  ErrorKind = "connectivity"
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindNotReady      ErrorKind = "not_ready"
	KindUnknown       ErrorKind = "unknown"
)

// Error is the classified form of any failure crossing the backend boundary.
// Detail carries the raw cause for diagnostics.
type Error struct {
	Kind   ErrorKind
	Msg    string
	Detail string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail != "" && e.Detail != e.Msg {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Msg, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// UserMessage is the human-readable form surfaced by views.
func (e *Error) UserMessage() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case KindConnectivity:
		return "Cannot reach the backend. Check your connection and try again."
	case KindValidation:
		return e.Msg
	case KindAuthorization:
		return "You are not allowed to do that."
	case KindConflict:
		return e.Msg
	case KindNotReady:
		return "The backend is still starting up. Try again in a moment."
	default:
		if e.Detail != "" {
			return "Something went wrong. Please try again. (" + e.Detail + ")"
		}
		return "Something went wrong. Please try again."
	}
}

// APIError is the raw transport-level failure: a non-2xx response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// Classify maps an arbitrary error from a backend call onto the taxonomy.
// Already-classified errors pass through untouched.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	if apiErr := asAPIError(err); apiErr != nil {
		return classifyAPI(apiErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindConnectivity, Msg: "backend unreachable", Detail: err.Error()}
	}
	if msg := err.Error(); containsAny(msg, "connection refused", "no such host", "connection reset", "EOF") {
		return &Error{Kind: KindConnectivity, Msg: "backend unreachable", Detail: msg}
	}
	return classifyMessage(err.Error())
}

func classifyAPI(apiErr *APIError) *Error {
	detail := apiErr.Message
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &Error{Kind: KindValidation, Msg: apiErr.Message, Detail: detail}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Kind: KindAuthorization, Msg: apiErr.Message, Detail: detail}
	case http.StatusConflict:
		return &Error{Kind: KindConflict, Msg: apiErr.Message, Detail: detail}
	case http.StatusServiceUnavailable:
		return &Error{Kind: KindNotReady, Msg: apiErr.Message, Detail: detail}
	}
	return classifyMessage(apiErr.Message)
}

// classifyMessage falls back to inspecting the failure text against known
// substrings from the backend.
func classifyMessage(msg string) *Error {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, "already registered", "already exists"):
		return &Error{Kind: KindConflict, Msg: msg, Detail: msg}
	case containsAny(lower, "unauthorized", "anonymous", "not allowed", "permission"):
		return &Error{Kind: KindAuthorization, Msg: msg, Detail: msg}
	case containsAny(lower, "not initialized", "not ready"):
		return &Error{Kind: KindNotReady, Msg: msg, Detail: msg}
	case containsAny(lower, "invalid", "required", "too long", "too short", "empty"):
		return &Error{Kind: KindValidation, Msg: msg, Detail: msg}
	}
	return &Error{Kind: KindUnknown, Msg: msg, Detail: msg}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
