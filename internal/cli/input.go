package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
)

// maxInputSize caps JSON read from stdin.
const maxInputSize = 1 << 20

// parseID parses a single numeric id argument.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidIDs, s)
	}
	return id, nil
}

// parseIDs parses a comma-separated id list like "1, 2,3".
func parseIDs(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no ids given", ErrInvalidIDs)
	}
	return ids, nil
}

// decodeJSONArg decodes a JSON object argument into v. Comments and
// trailing commas are accepted. "-" reads the object from stdin.
func decodeJSONArg(env *Env, arg string, v any) error {
	data := []byte(arg)
	if arg == "-" {
		b, err := io.ReadAll(io.LimitReader(env.Stdin, maxInputSize))
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		data = b
	}

	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return nil
}
