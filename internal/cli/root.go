package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alnah/raindrip/internal/config"
	"github.com/alnah/raindrip/internal/format"
	"github.com/alnah/raindrip/internal/raindrop"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	dryRun bool
	debug  bool
	format formatValue
}

// formatValue is a pflag.Value restricted to the supported formats.
type formatValue struct {
	value format.Format
}

func (f *formatValue) String() string { return string(f.value) }
func (f *formatValue) Type() string   { return "format" }

func (f *formatValue) Set(s string) error {
	v, err := format.Parse(s)
	if err != nil {
		return err
	}
	f.value = v
	return nil
}

var _ pflag.Value = (*formatValue)(nil)

// NewRootCmd builds the raindrip command tree.
func NewRootCmd(env *Env, version string) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "raindrip",
		Short: "Manage Raindrop.io bookmarks from the command line",
		Long: `raindrip manages Raindrop.io bookmarks, collections and tags.

Output defaults to TOON, a compact encoding for AI agents. Use --format json
or --format yaml for other consumers, and --pretty on list commands for
human-readable tables. Failures are printed to stdout as JSON with an error,
a status and a hint. Logs go to stderr.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&g.dryRun, "dry-run", false, "Log mutating requests instead of sending them")
	pf.BoolVar(&g.debug, "debug", false, "Log every API attempt")
	pf.VarP(&g.format, "format", "f", "Output format: "+strings.Join(format.Names, ", "))

	root.AddCommand(
		LoginCmd(env),
		LogoutCmd(env),
		WhoamiCmd(env, g),
		ContextCmd(env, g),
		StructureCmd(env, g),
		SchemaCmd(env, g),
		SearchCmd(env, g),
		GetCmd(env, g),
		SuggestCmd(env, g),
		WaybackCmd(env, g),
		AddCmd(env, g),
		PatchCmd(env, g),
		DeleteCmd(env, g),
		SortCmd(env, g),
		CollectionCmd(env, g),
		TagCmd(env, g),
		BatchCmd(env, g),
		ConfigCmd(env),
	)

	return root
}

// invocation holds what a command needs once flags and settings are resolved.
type invocation struct {
	cmd    *cobra.Command
	env    *Env
	client *raindrop.Client
	format format.Format
	logger *slog.Logger
}

// emit writes v to stdout in the selected format.
func (inv *invocation) emit(v any) error {
	return format.Write(inv.env.Stdout, inv.format, v)
}

// flagChanged reports whether the named flag was set on the command line.
func (inv *invocation) flagChanged(name string) bool {
	return inv.cmd != nil && inv.cmd.Flags().Changed(name)
}

// success emits the {"success": ok} result of a mutating command.
func (inv *invocation) success(ok bool) error {
	return inv.emit(map[string]bool{"success": ok})
}

// resolveFormat picks the output format: flag, then settings, then default.
func resolveFormat(g *globalFlags, cfg config.Config) (format.Format, error) {
	if g.format.value != "" {
		return g.format.value, nil
	}
	if cfg.Format != "" {
		f, err := format.Parse(cfg.Format)
		if err != nil {
			return "", fmt.Errorf("config %s: %w", config.KeyFormat, err)
		}
		return f, nil
	}
	return format.Default, nil
}

// prepare resolves settings and the logger without requiring a login.
func prepare(env *Env, g *globalFlags) (*invocation, config.Config, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return nil, cfg, err
	}
	f, err := resolveFormat(g, cfg)
	if err != nil {
		return nil, cfg, err
	}
	return &invocation{
		env:    env,
		format: f,
		logger: NewLogger(env.Stderr, g.debug),
	}, cfg, nil
}

// withClient runs fn with an authenticated client and closes it afterwards.
func withClient(ctx context.Context, env *Env, g *globalFlags, fn func(context.Context, *invocation) error) error {
	inv, cfg, err := prepare(env, g)
	if err != nil {
		return err
	}

	token := env.Credentials.Token()
	if token == "" {
		return ErrNotLoggedIn
	}

	inv.client = env.ClientFactory.NewClient(token,
		raindrop.WithBaseURL(cfg.BaseURL),
		raindrop.WithDryRun(g.dryRun),
		raindrop.WithLogger(inv.logger),
	)
	defer inv.client.Close()

	return fn(ctx, inv)
}

// clientRunE adapts a command body to cobra's RunE with an authenticated client.
func clientRunE(env *Env, g *globalFlags, fn func(ctx context.Context, inv *invocation, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), env, g, func(ctx context.Context, inv *invocation) error {
			inv.cmd = cmd
			return fn(ctx, inv, args)
		})
	}
}
