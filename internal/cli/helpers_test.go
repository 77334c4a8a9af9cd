package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/raindrip/internal/apierr"
	"github.com/alnah/raindrip/internal/config"
	"github.com/alnah/raindrip/internal/raindrop"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

type mockCredentials struct {
	SaveErr error

	mu      sync.Mutex
	token   string
	saved   []string
	deleted int
}

func (m *mockCredentials) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *mockCredentials) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saved = append(m.saved, token)
	m.token = token
	return nil
}

func (m *mockCredentials) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted++
	m.token = ""
	return nil
}

func (m *mockCredentials) Saved() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saved...)
}

// fakeFactory builds clients aimed at the fake API without retry delays.
type fakeFactory struct {
	baseURL string

	mu     sync.Mutex
	tokens []string
}

func (f *fakeFactory) NewClient(token string, opts ...raindrop.Option) *raindrop.Client {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()

	opts = append(opts,
		raindrop.WithBaseURL(f.baseURL),
		raindrop.WithWaybackURL(f.baseURL+"/wayback"),
		raindrop.WithRetryPolicy(apierr.RetryPolicy{MaxAttempts: 3}),
	)
	return raindrop.New(token, opts...)
}

func (f *fakeFactory) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

// ---------------------------------------------------------------------------
// Fake API
// ---------------------------------------------------------------------------

type seenRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   string
}

// fakeAPI routes "METHOD /path" to canned JSON bodies and records calls.
// Unrouted calls get a 404 envelope.
type fakeAPI struct {
	srv    *httptest.Server
	routes map[string]string

	mu       sync.Mutex
	seen     []seenRequest
	statuses map[string]int
}

func newFakeAPI(t *testing.T, routes map[string]string) *fakeAPI {
	t.Helper()
	f := &fakeAPI{routes: routes}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.seen = append(f.seen, seenRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   string(body),
		})
		key := r.Method + " " + r.URL.Path
		status, hasStatus := f.statuses[key]
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		resp, ok := f.routes[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":false,"errorMessage":"Not found"}`)
			return
		}
		if hasStatus {
			w.WriteHeader(status)
		}
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) Requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.seen...)
}

// find returns the first recorded request for method and path.
func (f *fakeAPI) find(t *testing.T, method, path string) seenRequest {
	t.Helper()
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			return r
		}
	}
	t.Fatalf("no %s %s request recorded; got %+v", method, path, f.Requests())
	return seenRequest{}
}

// ---------------------------------------------------------------------------
// testEnv - a fully wired Env against the fake API
// ---------------------------------------------------------------------------

type testHarness struct {
	env     *Env
	api     *fakeAPI
	stdout  *syncBuffer
	stderr  *syncBuffer
	creds   *mockCredentials
	factory *fakeFactory
}

type testOption func(*testHarness)

func withToken(token string) testOption {
	return func(h *testHarness) { h.creds.token = token }
}

// withStatus makes the route answer with status instead of 200.
func withStatus(route string, status int) testOption {
	return func(h *testHarness) {
		h.api.mu.Lock()
		defer h.api.mu.Unlock()
		if h.api.statuses == nil {
			h.api.statuses = map[string]int{}
		}
		h.api.statuses[route] = status
	}
}

func withStdinText(s string) testOption {
	return func(h *testHarness) { h.env.Stdin = strings.NewReader(s) }
}

func withSettings(cfg config.Config) testOption {
	return func(h *testHarness) {
		h.env.ConfigLoader = &mockConfigLoader{LoadFunc: func() (config.Config, error) { return cfg, nil }}
	}
}

func withGetenv(vars map[string]string) testOption {
	return func(h *testHarness) { h.env.Getenv = staticEnv(vars) }
}

// testEnv creates an Env logged in with "test-token" and aimed at a fake API.
func testEnv(t *testing.T, routes map[string]string, opts ...testOption) *testHarness {
	t.Helper()

	api := newFakeAPI(t, routes)
	h := &testHarness{
		api:     api,
		stdout:  &syncBuffer{},
		stderr:  &syncBuffer{},
		creds:   &mockCredentials{token: "test-token"},
		factory: &fakeFactory{baseURL: api.srv.URL},
	}
	h.env = &Env{
		Stdout:        h.stdout,
		Stderr:        h.stderr,
		Stdin:         strings.NewReader(""),
		Getenv:        staticEnv(nil),
		ReadSecret:    func() (string, error) { return "", nil },
		ConfigLoader:  &mockConfigLoader{},
		Credentials:   h.creds,
		ClientFactory: h.factory,
	}

	for _, opt := range opts {
		opt(h)
	}
	return h
}

// run executes the command tree with args.
func (h *testHarness) run(args ...string) error {
	root := NewRootCmd(h.env, "test")
	root.SetArgs(args)
	root.SetOut(h.stderr)
	root.SetErr(h.stderr)
	return root.ExecuteContext(context.Background())
}

// jsonOut decodes stdout, which must hold a single JSON document.
func (h *testHarness) jsonOut(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(h.stdout.String()), v); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, h.stdout.String())
	}
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}
