// Package format renders command results as JSON, TOON or YAML, and as
// terminal tables for humans.
//
// Values are first encoded with encoding/json, so json struct tags drive the
// field names everywhere and struct field order is preserved in every format.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	TOON Format = "toon"
	YAML Format = "yaml"
)

// Default is used when neither flag, settings nor environment pick one.
const Default = TOON

// Names lists the supported format names.
var Names = []string{string(JSON), string(TOON), string(YAML)}

// Parse returns the Format named s (case-insensitive).
func Parse(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Names, string(f)) {
		return "", fmt.Errorf("unknown format %q (valid: %s)", s, strings.Join(Names, ", "))
	}
	return f, nil
}

// Write encodes v to w in format f, followed by a newline.
func Write(w io.Writer, f Format, v any) error {
	switch f {
	case JSON:
		return writeJSON(w, v)
	case TOON, YAML:
		n, err := toTree(v)
		if err != nil {
			return err
		}
		if f == TOON {
			return writeTOON(w, n)
		}
		return writeYAML(w, n)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// Size formats a size in bytes for human display.
// Uses MB for sizes >= 1MB, KB otherwise.
func Size(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	if bytes >= mb {
		return fmt.Sprintf("%d MB", bytes/mb)
	}
	if bytes >= kb {
		return fmt.Sprintf("%d KB", bytes/kb)
	}
	return fmt.Sprintf("%d bytes", bytes)
}
