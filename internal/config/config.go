// Package config manages persistent raindrip settings and the stored API
// token. Both live under $XDG_CONFIG_HOME/raindrip (default ~/.config/raindrip).
package config

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Config keys.
const (
	KeyFormat  = "format"
	KeyBaseURL = "base-url"
)

// Environment variable fallbacks.
const (
	EnvFormat  = "RAINDRIP_FORMAT"
	EnvBaseURL = "RAINDRIP_BASE_URL"
)

// appDir is the directory name under the XDG config home.
const appDir = "raindrip"

// settingsFile holds key=value settings.
const settingsFile = "settings"

// Formats lists the accepted values for the format key.
var Formats = []string{"json", "toon", "yaml"}

// Keys lists every supported setting.
var Keys = []string{KeyFormat, KeyBaseURL}

// Config holds user settings loaded from ~/.config/raindrip/settings.
type Config struct {
	Format  string
	BaseURL string
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/raindrip.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appDir), nil
}

// path returns the full path to the settings file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, settingsFile), nil
}

// Load reads the settings file, then fills unset keys from the environment.
// A missing file is not an error.
func Load() (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	if data, err := parseFile(p); err == nil {
		cfg.Format = data[KeyFormat]
		cfg.BaseURL = data[KeyBaseURL]
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if cfg.Format == "" {
		cfg.Format = os.Getenv(EnvFormat)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv(EnvBaseURL)
	}

	return cfg, nil
}

// EnvVar returns the environment variable backing key, or "".
func EnvVar(key string) string {
	switch key {
	case KeyFormat:
		return EnvFormat
	case KeyBaseURL:
		return EnvBaseURL
	}
	return ""
}

// ValidKey reports whether key is a supported setting.
func ValidKey(key string) bool {
	return slices.Contains(Keys, key)
}

// Validate checks value for key.
func Validate(key, value string) error {
	switch key {
	case KeyFormat:
		if !slices.Contains(Formats, value) {
			return fmt.Errorf("invalid format %q (valid: %s)", value, strings.Join(Formats, ", "))
		}
	case KeyBaseURL:
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid base-url %q: must be an http(s) URL", value)
		}
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the settings file, keeping other keys.
// Comments are discarded.
func Save(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	if err := ensureDir(filepath.Dir(p)); err != nil {
		return err
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// Unset removes key from the settings file. Missing keys are ignored.
func Unset(key string) error {
	p, err := path()
	if err != nil {
		return err
	}
	existing, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if _, ok := existing[key]; !ok {
		return nil
	}
	delete(existing, key)
	return writeFile(p, existing)
}

// ensureDir creates the config directory, private to the user.
// An existing directory is tightened to 0700 as well.
func ensureDir(d string) error {
	if err := os.MkdirAll(d, 0700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	// #nosec G302 -- directory needs the execute bit
	if err := os.Chmod(d, 0700); err != nil {
		return fmt.Errorf("cannot restrict config directory: %w", err)
	}
	return nil
}

// writeFile writes the settings map sorted by key.
func writeFile(p string, data map[string]string) error {
	// #nosec G304 -- path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the settings file.
// Returns "" if the key is not set.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all settings from the file.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}
