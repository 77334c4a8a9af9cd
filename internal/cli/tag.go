package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alnah/raindrip/internal/raindrop"
)

// TagCmd creates the tag command group.
func TagCmd(env *Env, g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage tags",
	}

	cmd.AddCommand(
		tagListCmd(env, g),
		tagDeleteCmd(env, g),
		tagRenameCmd(env, g),
	)

	return cmd
}

func tagListCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all tags",
		Example: `  raindrip tag list`,
		Args:    cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			tags, err := inv.client.Tags(ctx)
			if err != nil {
				return err
			}
			return inv.emit(map[string][]string{"tags": tags})
		}),
	}
}

func tagDeleteCmd(env *Env, g *globalFlags) *cobra.Command {
	var collection int

	cmd := &cobra.Command{
		Use:   "delete <tag>...",
		Short: "Delete tags from all bookmarks or from one collection",
		Example: `  raindrip tag delete "old-tag" "useless-tag"
  raindrip tag delete draft --collection 123`,
		Args: cobra.MinimumNArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			ok, err := inv.client.DeleteTags(ctx, args, collection)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}

	cmd.Flags().IntVar(&collection, "collection", raindrop.CollectionAll, "Collection id (0 for all)")

	return cmd
}

func tagRenameCmd(env *Env, g *globalFlags) *cobra.Command {
	var collection int

	cmd := &cobra.Command{
		Use:     "rename <old> <new>",
		Short:   "Rename a tag, merging into the new name if it exists",
		Example: `  raindrip tag rename "work" "career"`,
		Args:    cobra.ExactArgs(2),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			ok, err := inv.client.RenameTag(ctx, args[0], args[1], collection)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}

	cmd.Flags().IntVar(&collection, "collection", raindrop.CollectionAll, "Collection id (0 for all)")

	return cmd
}
