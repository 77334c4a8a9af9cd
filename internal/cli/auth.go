package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/raindrip/internal/config"
	"github.com/alnah/raindrip/internal/raindrop"
)

// LoginCmd creates the login command.
func LoginCmd(env *Env) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save your Raindrop.io API token (verified first)",
		Long: `Save your Raindrop.io API token.

The token is checked against the API before it is stored in
~/.config/raindrip/config.json with owner-only permissions.
Without --token you are prompted for it; input is hidden on a terminal.

Create a test token at https://app.raindrop.io/settings/integrations.`,
		Example: `  raindrip login
  raindrip login --token "$RAINDROP_TEST_TOKEN"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd.Context(), env, token)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token (prompted when omitted)")

	return cmd
}

// runLogin verifies token with the API and stores it.
func runLogin(ctx context.Context, env *Env, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		fmt.Fprint(env.Stderr, "Enter your Raindrop.io API token: ")
		t, err := env.ReadSecret()
		if err != nil {
			return err
		}
		token = t
	}
	if token == "" {
		return errors.New("token is empty")
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}

	client := env.ClientFactory.NewClient(token, raindrop.WithBaseURL(cfg.BaseURL))
	defer client.Close()

	fmt.Fprintln(env.Stderr, "Verifying token...")
	user, err := client.User(ctx)
	if err != nil {
		return err
	}

	if err := env.Credentials.Save(token); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Success! Logged in as %s.\n", user.FullName)
	return nil
}

// LogoutCmd creates the logout command.
func LogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove your stored credentials",
		Example: `  raindrip logout`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(env)
		},
	}
}

// runLogout deletes the stored token.
func runLogout(env *Env) error {
	if err := env.Credentials.Delete(); err != nil {
		return err
	}
	fmt.Fprintln(env.Stderr, "Logged out. Credentials removed.")
	if env.Getenv(config.EnvToken) != "" {
		fmt.Fprintf(env.Stderr, "Note: %s is still set in the environment.\n", config.EnvToken)
	}
	return nil
}

// WhoamiCmd creates the whoami command.
func WhoamiCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show current user details",
		Example: `  raindrip whoami`,
		Args:    cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			return runWhoami(ctx, inv)
		}),
	}
}

func runWhoami(ctx context.Context, inv *invocation) error {
	user, err := inv.client.User(ctx)
	if err != nil {
		return err
	}
	return inv.emit(user)
}
