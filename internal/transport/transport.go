// Package transport executes Raindrop.io API calls: it applies the bearer
// token, retries rate-limited and failed calls within a fixed attempt budget,
// and classifies terminal failures into apierr errors.
//
// New picks the executor strategy once. With dry-run enabled, mutating calls
// are logged and answered with a synthetic envelope instead of reaching the
// network; reads still go through the real executor.
package transport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alnah/raindrip/internal/apierr"
)

// API defaults.
const (
	DefaultBaseURL = "https://api.raindrop.io/rest/v1"

	// DefaultTimeout bounds a single attempt. There is no timeout around the
	// whole retry loop.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024
)

// Request describes one logical API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Body is JSON-encoded when non-nil.
	Body any
}

// Upload describes a single multipart file upload.
type Upload struct {
	Method      string
	Path        string
	Field       string
	FileName    string
	ContentType string
	Content     io.Reader
}

// Executor runs API calls.
type Executor interface {
	// Do executes req with retry and returns the decoded response body.
	// Every network or API failure is an *apierr.Error.
	Do(ctx context.Context, req Request) (Envelope, error)

	// Upload sends a multipart request exactly once. The content reader cannot
	// be replayed, so uploads are never retried.
	Upload(ctx context.Context, up Upload) (Envelope, error)
}

// HTTPDoer abstracts the HTTP client for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// sleepFunc pauses between attempts. Replaced in tests to observe delays.
type sleepFunc func(ctx context.Context, d time.Duration) error

// Compile-time interface compliance checks.
var (
	_ Executor = (*httpExecutor)(nil)
	_ Executor = (*dryRunExecutor)(nil)
	_ HTTPDoer = (*http.Client)(nil)
)

type settings struct {
	baseURL    string
	userAgent  string
	httpClient HTTPDoer
	policy     apierr.RetryPolicy
	logger     *slog.Logger
	dryRun     bool
	sleep      sleepFunc
}

// Option configures an Executor.
type Option func(*settings)

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(u string) Option {
	return func(s *settings) {
		if u != "" {
			s.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client shared with the caller.
func WithHTTPClient(c HTTPDoer) Option {
	return func(s *settings) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithRetryPolicy overrides the attempt budget and delays.
func WithRetryPolicy(p apierr.RetryPolicy) Option {
	return func(s *settings) {
		s.policy = p.Normalize()
	}
}

// WithLogger sets the logger for retries and dry-run output.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDryRun selects the simulated executor for mutating calls.
func WithDryRun(enabled bool) Option {
	return func(s *settings) {
		s.dryRun = enabled
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// withSleep replaces the pause between attempts (for testing).
func withSleep(fn sleepFunc) Option {
	return func(s *settings) {
		s.sleep = fn
	}
}

// New creates the executor for token.
func New(token string, opts ...Option) Executor {
	s := settings{
		baseURL:    DefaultBaseURL,
		userAgent:  "raindrip",
		httpClient: &http.Client{Timeout: DefaultTimeout},
		policy:     apierr.DefaultRetryPolicy(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		sleep:      apierr.Sleep,
	}
	for _, opt := range opts {
		opt(&s)
	}

	real := &httpExecutor{
		baseURL:   s.baseURL,
		token:     token,
		userAgent: s.userAgent,
		client:    s.httpClient,
		policy:    s.policy,
		logger:    s.logger,
		sleep:     s.sleep,
	}
	if !s.dryRun {
		return real
	}
	return &dryRunExecutor{next: real, logger: s.logger}
}

// isMutating reports whether method changes server state.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}
