package transport

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the decoded top-level JSON object of a response.
// Its keys depend on the call: item, items, result, count, user.
type Envelope map[string]json.RawMessage

var errNotObject = errors.New("response is not a JSON object")

// decodeEnvelope parses a response body. Anything other than a JSON object
// (including an empty body or "null") is rejected.
func decodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env == nil {
		return nil, errNotObject
	}
	return env, nil
}

// Has reports whether key is present and not null.
func (e Envelope) Has(key string) bool {
	raw, ok := e[key]
	return ok && string(raw) != "null"
}

// Decode unmarshals the value under key into v.
// Returns false without error when the key is absent or null.
func (e Envelope) Decode(key string, v any) (bool, error) {
	if !e.Has(key) {
		return false, nil
	}
	if err := json.Unmarshal(e[key], v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// Bool returns the boolean under key, or def when absent or not a boolean.
func (e Envelope) Bool(key string, def bool) bool {
	var b bool
	if ok, err := e.Decode(key, &b); !ok || err != nil {
		return def
	}
	return b
}

// Int returns the integer under key, or def when absent or not a number.
func (e Envelope) Int(key string, def int) int {
	var n int
	if ok, err := e.Decode(key, &n); !ok || err != nil {
		return def
	}
	return n
}
