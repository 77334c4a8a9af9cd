package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/alnah/raindrip/internal/config"
	"github.com/alnah/raindrip/internal/raindrop"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have defaults via DefaultEnv(). Tests can override specific
// fields using the With* options or by creating a custom Env.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Getenv func(string) string

	// ReadSecret reads the API token without echoing it.
	ReadSecret func() (string, error)

	// Factories and stores
	ConfigLoader  ConfigLoader
	Credentials   CredentialStore
	ClientFactory ClientFactory
}

// ConfigLoader loads user settings.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// CredentialStore persists the API token.
type CredentialStore interface {
	// Token returns the stored token, or "" when not logged in.
	Token() string
	Save(token string) error
	Delete() error
}

// ClientFactory creates API clients.
type ClientFactory interface {
	NewClient(token string, opts ...raindrop.Option) *raindrop.Client
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdin sets the stdin reader.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) {
		e.Stdin = r
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithReadSecret sets the hidden token reader.
func WithReadSecret(fn func() (string, error)) EnvOption {
	return func(e *Env) {
		e.ReadSecret = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithCredentials sets the credential store.
func WithCredentials(s CredentialStore) EnvOption {
	return func(e *Env) {
		e.Credentials = s
	}
}

// WithClientFactory sets the client factory.
func WithClientFactory(f ClientFactory) EnvOption {
	return func(e *Env) {
		e.ClientFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Stdin:         os.Stdin,
		Getenv:        os.Getenv,
		ReadSecret:    readTerminalSecret,
		ConfigLoader:  &defaultConfigLoader{},
		Credentials:   &fileCredentials{},
		ClientFactory: &defaultClientFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// fileCredentials implements CredentialStore using the config package.
type fileCredentials struct{}

func (fileCredentials) Token() string         { return config.LoadToken() }
func (fileCredentials) Save(tok string) error { return config.SaveToken(tok) }
func (fileCredentials) Delete() error         { return config.DeleteToken() }

// defaultClientFactory implements ClientFactory with raindrop.New.
type defaultClientFactory struct{}

func (defaultClientFactory) NewClient(token string, opts ...raindrop.Option) *raindrop.Client {
	return raindrop.New(token, opts...)
}

// readTerminalSecret reads a line from stdin, hiding input on a terminal.
func readTerminalSecret() (string, error) {
	fd := int(os.Stdin.Fd()) // #nosec G115 -- file descriptors fit in int
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(os.Stdin)
}

// readLine reads one trimmed line from r.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Compile-time interface verification.
var (
	_ ConfigLoader    = (*defaultConfigLoader)(nil)
	_ CredentialStore = (*fileCredentials)(nil)
	_ ClientFactory   = (*defaultClientFactory)(nil)
)
