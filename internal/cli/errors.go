package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alnah/raindrip/internal/apierr"
)

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.
var (
	// ErrNotLoggedIn indicates no token is stored and RAINDRIP_TOKEN is unset.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidJSON indicates a JSON argument could not be parsed.
	ErrInvalidJSON = errors.New("invalid JSON input")

	// ErrInvalidIDs indicates an id or id list argument is malformed.
	ErrInvalidIDs = errors.New("invalid ids")

	// ErrNoIcons indicates an icon search returned nothing.
	ErrNoIcons = errors.New("no icons found")
)

// Remediation hints shown with failures.
const (
	hintAuth        = "Authentication failed. Try running 'raindrip login' again."
	hintNotFound    = "The requested resource was not found. Verify the ID is correct."
	hintInvalidJSON = "Ensure your JSON data is valid and properly escaped for the shell."
	hintNotLoggedIn = "Run 'raindrip login' first, or set RAINDRIP_TOKEN."
	hintUnexpected  = "Check the CLI logs or report this issue."
)

// ErrorPayload is the structured failure written to stdout.
type ErrorPayload struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
	Hint   string `json:"hint,omitempty"`
}

// Payload classifies err into the structured failure shape.
func Payload(err error) ErrorPayload {
	var apiErr *apierr.Error
	switch {
	case errors.Is(err, ErrInvalidJSON):
		return ErrorPayload{Error: err.Error(), Status: 400, Hint: hintInvalidJSON}
	case errors.Is(err, ErrNotLoggedIn):
		return ErrorPayload{Error: err.Error(), Status: 401, Hint: hintNotLoggedIn}
	case errors.As(err, &apiErr):
		p := ErrorPayload{Error: apiErr.Error(), Status: apiErr.Status, Hint: apiErr.Hint}
		if p.Hint == "" {
			switch {
			case errors.Is(err, apierr.ErrAuthFailed):
				p.Hint = hintAuth
			case errors.Is(err, apierr.ErrNotFound):
				p.Hint = hintNotFound
			}
		}
		return p
	case errors.Is(err, ErrInvalidIDs), errors.Is(err, ErrNoIcons):
		return ErrorPayload{Error: err.Error(), Status: 400}
	default:
		return ErrorPayload{Error: fmt.Sprintf("Unexpected error: %v", err), Status: 500, Hint: hintUnexpected}
	}
}

// RenderError writes the structured failure for err to w as indented JSON.
// Failures are always JSON regardless of --format so callers can parse them.
func RenderError(w io.Writer, err error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(Payload(err))
}
