package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/alnah/raindrip/internal/apierr"
	"github.com/alnah/raindrip/internal/cli"
	"github.com/alnah/raindrip/internal/interrupt"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitGeneral   = 1
	ExitUsage     = 2
	ExitAuth      = 3
	ExitNotFound  = 4
	ExitAPI       = 5
	ExitInterrupt = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C cancels in-flight requests; a second one exits.
	handler, ctx := interrupt.NewHandler(context.Background())

	root := cli.NewRootCmd(cli.DefaultEnv(), fmt.Sprintf("%s (commit: %s)", version, commit))

	err := root.ExecuteContext(ctx)
	handler.Stop()
	if err != nil {
		report(err)
		os.Exit(exitCode(err))
	}
}

// report prints err. Usage errors and interrupts go to stderr as text;
// everything else is the structured JSON failure on stdout.
func report(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Interrupted.")
	case isCobraUsageError(err):
		fmt.Fprintln(os.Stderr, "Error:", err)
		fmt.Fprintln(os.Stderr, "Run 'raindrip --help' for usage.")
	default:
		cli.RenderError(os.Stdout, err)
	}
}

// exitCode maps errors to exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) || errors.Is(err, cli.ErrInvalidJSON) || errors.Is(err, cli.ErrInvalidIDs) {
		return ExitUsage
	}

	if errors.Is(err, cli.ErrNotLoggedIn) || errors.Is(err, apierr.ErrAuthFailed) {
		return ExitAuth
	}

	if errors.Is(err, apierr.ErrNotFound) {
		return ExitNotFound
	}

	if errors.Is(err, apierr.ErrRateLimit) || errors.Is(err, apierr.ErrServer) ||
		errors.Is(err, apierr.ErrNetwork) || errors.Is(err, apierr.ErrInvalidResponse) ||
		errors.Is(err, apierr.ErrRetriesExhausted) || errors.Is(err, apierr.ErrClient) {
		return ExitAPI
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",             // Missing required flag
	"unknown flag",              // Flag doesn't exist
	"unknown shorthand",         // Short flag doesn't exist
	"unknown command",           // Subcommand doesn't exist
	"flag needs an argument",    // Flag provided without value
	"invalid argument",          // Invalid flag or argument value
	"if any flags in the group", // Mutually exclusive flag violation
	"accepts ",                  // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",         // Too few arguments
	"requires at most",          // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	// API failures can quote arbitrary upstream text.
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
