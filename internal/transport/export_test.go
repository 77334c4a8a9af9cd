package transport

import (
	"context"
	"time"
)

// Exports for testing.

// WithSleep exports withSleep for testing.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return withSleep(fn)
}

// Function exports for unit testing internal logic.
var (
	RedactPayload  = redactPayload
	ErrorDetail    = errorDetail
	DecodeEnvelope = decodeEnvelope
	IsMutating     = isMutating
)
