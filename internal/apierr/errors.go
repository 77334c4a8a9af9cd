// Package apierr provides the error taxonomy for the Raindrop.io API client.
// Every failure surfaced by the transport is an *Error carrying a Kind, the
// HTTP-like status code and a human message.
//
// Callers check categories with errors.Is(err, apierr.ErrServer) etc., or
// extract the status with errors.As.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrServer indicates the API answered with a 5xx status.
	ErrServer = errors.New("server error")

	// ErrClient indicates a 4xx response other than 429. Never retried.
	ErrClient = errors.New("client error")

	// ErrNetwork indicates the request never produced a response
	// (connection refused, DNS, timeout).
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse indicates a successful status with a body that is not JSON.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrRetriesExhausted indicates the retry budget ran out without a terminal decision.
	ErrRetriesExhausted = errors.New("maximum retries exceeded")

	// ErrAuthFailed indicates the token was rejected (401).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the requested resource does not exist (404).
	ErrNotFound = errors.New("not found")
)

// Kind classifies an Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindRateLimit
	KindServer
	KindClient
	KindNetwork
	KindInvalidResponse
	KindRetriesExhausted
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindNetwork:
		return "network"
	case KindInvalidResponse:
		return "invalid_response"
	case KindRetriesExhausted:
		return "retries_exhausted"
	default:
		return "unknown"
	}
}

// sentinel returns the sentinel matching k.
func (k Kind) sentinel() error {
	switch k {
	case KindRateLimit:
		return ErrRateLimit
	case KindServer:
		return ErrServer
	case KindClient:
		return ErrClient
	case KindNetwork:
		return ErrNetwork
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindRetriesExhausted:
		return ErrRetriesExhausted
	default:
		return nil
	}
}

// Error is a classified API failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string

	// Hint is an optional remediation suggestion. The transport leaves it
	// empty; the presentation layer fills it for well-known statuses.
	Hint string

	// Err is the underlying cause, if any (e.g. the net/http error).
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel matching by kind and status.
func (e *Error) Is(target error) bool {
	if s := e.Kind.sentinel(); s != nil && target == s {
		return true
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return target == ErrAuthFailed
	case http.StatusNotFound:
		return target == ErrNotFound
	}
	return false
}

// RateLimited builds a RateLimitExceeded error.
func RateLimited(retryAfterSeconds int) *Error {
	return &Error{
		Kind:    KindRateLimit,
		Status:  http.StatusTooManyRequests,
		Message: fmt.Sprintf("Rate limit exceeded. Retry after %ds", retryAfterSeconds),
	}
}

// Server builds a ServerFailure error for the given 5xx status.
func Server(status int) *Error {
	return &Error{
		Kind:    KindServer,
		Status:  status,
		Message: fmt.Sprintf("Raindrop.io Server Error: %d", status),
	}
}

// Client builds a ClientFailure error carrying the upstream message.
func Client(status int, detail string) *Error {
	return &Error{
		Kind:    KindClient,
		Status:  status,
		Message: fmt.Sprintf("API Error %d: %s", status, detail),
	}
}

// Network builds a NetworkFailure error (status 503) wrapping err.
func Network(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Status:  http.StatusServiceUnavailable,
		Message: fmt.Sprintf("Network Error: %v", err),
		Err:     err,
	}
}

// InvalidResponse builds an InvalidResponse error (status 502) wrapping the decode error.
func InvalidResponse(err error) *Error {
	return &Error{
		Kind:    KindInvalidResponse,
		Status:  http.StatusBadGateway,
		Message: fmt.Sprintf("Invalid JSON response from API: %v", err),
		Err:     err,
	}
}

// RetriesExhausted builds the catch-all error (status 504).
func RetriesExhausted() *Error {
	return &Error{
		Kind:    KindRetriesExhausted,
		Status:  http.StatusGatewayTimeout,
		Message: "Maximum retries exceeded",
	}
}

// StatusOf returns the status carried by err, or 0 when err is not an *Error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
