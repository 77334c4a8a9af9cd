package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// dryRunExecutor answers mutating calls locally and forwards reads.
type dryRunExecutor struct {
	next   Executor
	logger *slog.Logger
}

// Do logs mutating calls instead of sending them.
func (d *dryRunExecutor) Do(ctx context.Context, req Request) (Envelope, error) {
	if !isMutating(req.Method) {
		return d.next.Do(ctx, req)
	}

	var payload any
	if req.Body != nil {
		payload = req.Body
	} else if len(req.Query) > 0 {
		payload = req.Query
	}

	attrs := []any{"method", req.Method, "path", req.Path}
	if p := redactPayload(payload); p != "" {
		attrs = append(attrs, "payload", p)
	}
	d.logger.Info("DRY RUN", attrs...)

	if req.Method == http.MethodDelete {
		return Envelope{"result": json.RawMessage(`true`)}, nil
	}
	return Envelope{
		"result": json.RawMessage(`true`),
		"item":   json.RawMessage(`{"_id":0,"title":"Dry Run Item","link":"http://dryrun.com"}`),
		"items":  json.RawMessage(`[]`),
	}, nil
}

// Upload logs the file instead of sending it. The content is not read.
func (d *dryRunExecutor) Upload(_ context.Context, up Upload) (Envelope, error) {
	d.logger.Info("DRY RUN", "method", up.Method, "path", up.Path, "file", up.FileName)
	return Envelope{
		"result": json.RawMessage(`true`),
		"item":   json.RawMessage(`{"title":"Dry Run Icon"}`),
	}, nil
}

// redactPayload renders payload as JSON with every top-level field whose
// name contains "token" (any case) removed. Returns "" for an empty payload.
func redactPayload(payload any) string {
	if payload == nil {
		return ""
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		// Not an object: nothing to redact by name.
		return string(data)
	}
	if len(fields) == 0 {
		return ""
	}
	for name := range fields {
		if strings.Contains(strings.ToLower(name), "token") {
			delete(fields, name)
		}
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}
