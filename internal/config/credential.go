package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvToken overrides the stored token when set.
const EnvToken = "RAINDRIP_TOKEN"

// credentialFile holds {"token": "..."}.
const credentialFile = "config.json"

// Credentials is the on-disk credential record.
type Credentials struct {
	Token string `json:"token"`
}

// CredentialPath returns the full path to the credential file.
func CredentialPath() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, credentialFile), nil
}

// LoadToken returns the API token from RAINDRIP_TOKEN or the credential file.
// A missing or malformed file means not logged in and yields "".
func LoadToken() string {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok
	}

	p, err := CredentialPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(p) // #nosec G304 -- path from home dir
	if err != nil {
		return ""
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return ""
	}
	return strings.TrimSpace(creds.Token)
}

// SaveToken stores token in the credential file with owner-only permissions.
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}

	p, err := CredentialPath()
	if err != nil {
		return err
	}
	if err := ensureDir(filepath.Dir(p)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(Credentials{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("cannot write credentials: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot write credentials: %w", err)
	}
	// WriteFile keeps the mode of a leftover temp file.
	if err := os.Chmod(p, 0600); err != nil {
		return fmt.Errorf("cannot secure credentials: %w", err)
	}
	return nil
}

// DeleteToken removes the credential file. A missing file is not an error.
func DeleteToken() error {
	p, err := CredentialPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cannot remove credentials: %w", err)
	}
	return nil
}
