// Package raindrop is the typed façade over the Raindrop.io REST API.
//
// A Client owns one HTTP session shared by API calls, the Wayback lookup and
// file downloads. API calls go through a transport.Executor, so retry, error
// classification and dry-run behavior are uniform across operations.
package raindrop

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alnah/raindrip/internal/apierr"
	"github.com/alnah/raindrip/internal/transport"
)

// DefaultWaybackURL is the Wayback Machine availability endpoint.
const DefaultWaybackURL = "https://archive.org/wayback/available"

// Special collection ids.
const (
	CollectionAll      = 0
	CollectionUnsorted = -1
	CollectionTrash    = -99
)

// Client is a Raindrop.io API client.
type Client struct {
	exec       transport.Executor
	http       *http.Client
	waybackURL string
	dryRun     bool
	logger     *slog.Logger
}

type config struct {
	baseURL    string
	waybackURL string
	userAgent  string
	httpClient *http.Client
	policy     *apierr.RetryPolicy
	logger     *slog.Logger
	dryRun     bool
}

// Option configures a Client.
type Option func(*config)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = u }
}

// WithWaybackURL sets the Wayback availability endpoint.
func WithWaybackURL(u string) Option {
	return func(c *config) {
		if u != "" {
			c.waybackURL = u
		}
	}
}

// WithHTTPClient sets the shared HTTP session.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetryPolicy overrides the transport retry policy.
func WithRetryPolicy(p apierr.RetryPolicy) Option {
	return func(c *config) { c.policy = &p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDryRun simulates mutating calls instead of sending them.
func WithDryRun(enabled bool) Option {
	return func(c *config) { c.dryRun = enabled }
}

// WithUserAgent sets the User-Agent header for API calls.
func WithUserAgent(ua string) Option {
	return func(c *config) { c.userAgent = ua }
}

// New creates a Client authenticated with token.
func New(token string, opts ...Option) *Client {
	cfg := config{
		waybackURL: DefaultWaybackURL,
		httpClient: &http.Client{Timeout: transport.DefaultTimeout},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	topts := []transport.Option{
		transport.WithBaseURL(cfg.baseURL),
		transport.WithHTTPClient(cfg.httpClient),
		transport.WithLogger(cfg.logger),
		transport.WithDryRun(cfg.dryRun),
		transport.WithUserAgent(cfg.userAgent),
	}
	if cfg.policy != nil {
		topts = append(topts, transport.WithRetryPolicy(*cfg.policy))
	}

	return &Client{
		exec:       transport.New(token, topts...),
		http:       cfg.httpClient,
		waybackURL: cfg.waybackURL,
		dryRun:     cfg.dryRun,
		logger:     cfg.logger,
	}
}

// Close releases idle connections of the shared session.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// DryRun reports whether mutating calls are simulated.
func (c *Client) DryRun() bool {
	return c.dryRun
}

// User returns the authenticated account.
func (c *Client) User(ctx context.Context) (User, error) {
	env, err := c.get(ctx, "/user", nil)
	if err != nil {
		return User{}, err
	}
	var u User
	if err := requireKey(env, "user", &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Stats returns the account counters.
func (c *Client) Stats(ctx context.Context) ([]Stat, error) {
	env, err := c.get(ctx, "/user/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats []Stat
	if err := optionalList(env, "items", &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ---------------------------------------------------------------------------
// Envelope helpers
// ---------------------------------------------------------------------------

func (c *Client) get(ctx context.Context, path string, query url.Values) (transport.Envelope, error) {
	return c.exec.Do(ctx, transport.Request{Method: http.MethodGet, Path: path, Query: query})
}

func (c *Client) send(ctx context.Context, method, path string, body any) (transport.Envelope, error) {
	return c.exec.Do(ctx, transport.Request{Method: method, Path: path, Body: body})
}

// requireKey decodes a key the call cannot succeed without.
func requireKey(env transport.Envelope, key string, v any) error {
	ok, err := env.Decode(key, v)
	if err != nil {
		return apierr.InvalidResponse(err)
	}
	if !ok {
		return apierr.InvalidResponse(fmt.Errorf("missing %q in response", key))
	}
	return nil
}

// optionalList decodes a list that is treated as empty when absent.
func optionalList[T any](env transport.Envelope, key string, v *[]T) error {
	ok, err := env.Decode(key, v)
	if err != nil {
		return apierr.InvalidResponse(err)
	}
	if !ok || *v == nil {
		*v = []T{}
	}
	return nil
}
