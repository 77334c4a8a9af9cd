package apierr

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Default retry parameters for the Raindrop.io API.
const (
	DefaultMaxAttempts      = 3
	DefaultRateLimitDelay   = 10 * time.Second
	DefaultServerErrorDelay = 2 * time.Second
)

// RetryPolicy holds the attempt budget and fixed delays of the retry loop.
//
// Invalid values are normalized:
//   - MaxAttempts < 1 becomes 1 (single attempt)
//   - RateLimitDelay < 0 becomes DefaultRateLimitDelay
//   - ServerErrorDelay < 0 becomes 0
type RetryPolicy struct {
	MaxAttempts int

	// RateLimitDelay is used when a 429 response carries no usable Retry-After.
	RateLimitDelay time.Duration

	// ServerErrorDelay is the fixed pause between attempts after a 5xx.
	ServerErrorDelay time.Duration
}

// DefaultRetryPolicy returns the policy used in production.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      DefaultMaxAttempts,
		RateLimitDelay:   DefaultRateLimitDelay,
		ServerErrorDelay: DefaultServerErrorDelay,
	}
}

// Normalize returns a copy of p with all fields valid.
func (p RetryPolicy) Normalize() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.RateLimitDelay < 0 {
		p.RateLimitDelay = DefaultRateLimitDelay
	}
	if p.ServerErrorDelay < 0 {
		p.ServerErrorDelay = 0
	}
	return p
}

// RetryAfter parses a Retry-After header value in seconds.
// Returns fallback when the header is empty, negative or not an integer.
// HTTP-date values are not used by Raindrop.io and fall back too.
func RetryAfter(header string, fallback time.Duration) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// Sleep pauses for d or until ctx is done, whichever comes first.
// Returns ctx.Err() when interrupted.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
