package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/alnah/raindrip/internal/apierr"
)

// httpExecutor talks to the real API.
type httpExecutor struct {
	baseURL   string
	token     string
	userAgent string
	client    HTTPDoer
	policy    apierr.RetryPolicy
	logger    *slog.Logger
	sleep     sleepFunc
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// Do executes req, retrying 429 and 5xx responses within the attempt budget.
//
// Outcomes per attempt:
//   - transport failure: NetworkFailure (503), not retried
//   - 429: wait Retry-After (default 10s) and retry
//   - 5xx: wait 2s and retry; ServerFailure once the budget is spent
//   - other 4xx: ClientFailure with the upstream errorMessage, not retried
//   - success with a non-JSON body: InvalidResponse (502)
//   - success: the decoded envelope
func (e *httpExecutor) Do(ctx context.Context, req Request) (Envelope, error) {
	var body []byte
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apierr.Client(http.StatusBadRequest, "cannot encode request body: "+err.Error())
		}
		body = data
	}

	maxAttempts := e.policy.MaxAttempts
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		e.logger.Debug("api request",
			"method", req.Method, "path", req.Path, "attempt", attempt)

		resp, err := e.send(ctx, req, body)
		if err != nil {
			return nil, apierr.Network(err)
		}

		switch {
		case resp.status == http.StatusTooManyRequests:
			if attempt == maxAttempts {
				// Budget spent: fall through to the catch-all below.
				continue
			}
			delay := apierr.RetryAfter(resp.header.Get("Retry-After"), e.policy.RateLimitDelay)
			e.logger.Warn("rate limited, retrying",
				"path", req.Path, "retry_after", delay, "retries_left", maxAttempts-attempt)
			if err := e.sleep(ctx, delay); err != nil {
				return nil, apierr.Network(err)
			}

		case resp.status >= http.StatusInternalServerError:
			if attempt == maxAttempts {
				return nil, apierr.Server(resp.status)
			}
			e.logger.Warn("server error, retrying",
				"path", req.Path, "status", resp.status, "retries_left", maxAttempts-attempt)
			if err := e.sleep(ctx, e.policy.ServerErrorDelay); err != nil {
				return nil, apierr.Network(err)
			}

		case resp.status >= http.StatusBadRequest:
			return nil, apierr.Client(resp.status, errorDetail(resp.body))

		default:
			env, err := decodeEnvelope(resp.body)
			if err != nil {
				return nil, apierr.InvalidResponse(err)
			}
			return env, nil
		}
	}

	return nil, apierr.RetriesExhausted()
}

// Upload sends a multipart request once. Failures are classified like the
// terminal outcomes of Do; a 429 becomes a RateLimitExceeded error.
func (e *httpExecutor) Upload(ctx context.Context, up Upload) (Envelope, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, up.Field, up.FileName))
	h.Set("Content-Type", up.ContentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, apierr.Client(http.StatusBadRequest, "cannot build upload form: "+err.Error())
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return nil, apierr.Client(http.StatusBadRequest, "cannot read upload content: "+err.Error())
	}
	if err := writer.Close(); err != nil {
		return nil, apierr.Client(http.StatusBadRequest, "cannot build upload form: "+err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, up.Method, e.baseURL+up.Path, &buf)
	if err != nil {
		return nil, apierr.Network(err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.token)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", e.userAgent)

	e.logger.Debug("api upload", "method", up.Method, "path", up.Path, "file", up.FileName)

	resp, err := e.roundTrip(httpReq)
	if err != nil {
		return nil, apierr.Network(err)
	}

	switch {
	case resp.status == http.StatusTooManyRequests:
		delay := apierr.RetryAfter(resp.header.Get("Retry-After"), e.policy.RateLimitDelay)
		return nil, apierr.RateLimited(int(delay.Seconds()))
	case resp.status >= http.StatusInternalServerError:
		return nil, apierr.Server(resp.status)
	case resp.status >= http.StatusBadRequest:
		return nil, apierr.Client(resp.status, errorDetail(resp.body))
	}

	env, err := decodeEnvelope(resp.body)
	if err != nil {
		return nil, apierr.InvalidResponse(err)
	}
	return env, nil
}

// send builds and performs one attempt of req.
func (e *httpExecutor) send(ctx context.Context, req Request, body []byte) (*response, error) {
	target := e.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", e.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return e.roundTrip(httpReq)
}

// roundTrip performs httpReq and reads the whole body.
// The body is always closed, so the connection returns to the pool.
func (e *httpExecutor) roundTrip(httpReq *http.Request) (*response, error) {
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// errorDetail extracts the errorMessage field of an error body,
// falling back to the raw text.
func errorDetail(body []byte) string {
	var errResp struct {
		ErrorMessage *string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.ErrorMessage != nil {
		return *errResp.ErrorMessage
	}
	return strings.TrimSpace(string(body))
}
