package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/raindrip/internal/config"
)

// ConfigCmd creates the config command with subcommands.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Settings are stored in ~/.config/raindrip/settings.
Environment variables apply when a key is not set in the file.

Supported settings:
  format      Default output format: json, toon, yaml (env: RAINDRIP_FORMAT)
  base-url    API base URL (env: RAINDRIP_BASE_URL)`,
		Example: `  raindrip config set format json
  raindrip config get format
  raindrip config list
  raindrip config unset base-url`,
	}

	cmd.AddCommand(
		configSetCmd(env),
		configGetCmd(env),
		configListCmd(env),
		configUnsetCmd(env),
	)

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  raindrip config set format yaml
  raindrip config set base-url https://api.raindrop.io/rest/v1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  raindrip config get format`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all configuration values",
		Example: `  raindrip config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

func configUnsetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "unset <key>",
		Short:   "Remove a configuration value",
		Example: `  raindrip config unset format`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigUnset(env, args[0])
		},
	}
}

func checkKey(key string) error {
	if !config.ValidKey(key) {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(config.Keys, ", "))
	}
	return nil
}

func runConfigSet(env *Env, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if key == config.KeyFormat {
		value = strings.ToLower(strings.TrimSpace(value))
	}
	if err := config.Validate(key, value); err != nil {
		return err
	}
	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

func runConfigGet(env *Env, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	for _, key := range config.Keys {
		if _, ok := data[key]; ok {
			continue
		}
		if v := env.Getenv(config.EnvVar(key)); v != "" {
			data[key] = v + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", k, data[k])
	}
	return nil
}

func runConfigUnset(env *Env, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := config.Unset(key); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "Unset %s\n", key)
	return nil
}
