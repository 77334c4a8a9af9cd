package raindrop_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alnah/raindrip/internal/apierr"
	"github.com/alnah/raindrip/internal/raindrop"
)

// seenRequest is what the fake API observed for one call.
type seenRequest struct {
	Method      string
	Path        string
	Query       map[string][]string
	Body        []byte
	ContentType string
	Auth        string
}

// fakeAPI is an httptest server that records requests and delegates
// responses to a handler.
type fakeAPI struct {
	srv *httptest.Server

	mu   sync.Mutex
	seen []seenRequest
}

func newFakeAPI(t *testing.T, handler http.HandlerFunc) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.seen = append(f.seen, seenRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Query:       r.URL.Query(),
			Body:        body,
			ContentType: r.Header.Get("Content-Type"),
			Auth:        r.Header.Get("Authorization"),
		})
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) Requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]seenRequest, len(f.seen))
	copy(out, f.seen)
	return out
}

func (f *fakeAPI) Last(t *testing.T) seenRequest {
	t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("no request recorded")
	}
	return reqs[len(reqs)-1]
}

// client returns a Client pointed at the fake API with no retry delays.
func (f *fakeAPI) client(opts ...raindrop.Option) *raindrop.Client {
	base := []raindrop.Option{
		raindrop.WithBaseURL(f.srv.URL),
		raindrop.WithRetryPolicy(apierr.RetryPolicy{MaxAttempts: 3}),
	}
	return raindrop.New("test-token", append(base, opts...)...)
}

// reply returns a handler answering every call with status and body.
func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

// syncBuffer is a goroutine-safe buffer for log capture.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func bufferLogger(buf *syncBuffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
