package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/alnah/raindrip/internal/raindrop"
)

// BatchCmd creates the batch command group.
func BatchCmd(env *Env, g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Update or delete many bookmarks at once",
	}

	cmd.AddCommand(
		batchUpdateCmd(env, g),
		batchDeleteCmd(env, g),
	)

	return cmd
}

func batchUpdateCmd(env *Env, g *globalFlags) *cobra.Command {
	var (
		ids        string
		collection int
	)

	cmd := &cobra.Command{
		Use:   "update <json|->",
		Short: "Apply one JSON patch to several bookmarks",
		Example: `  raindrip batch update --ids 1,2,3 '{"tags": ["research"]}'
  raindrip batch update --ids 1,2 --collection 55 '{"collection": {"$id": 66}}'`,
		Args: cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			idList, err := parseIDs(ids)
			if err != nil {
				return err
			}
			var upd raindrop.RaindropUpdate
			if err := decodeJSONArg(inv.env, args[0], &upd); err != nil {
				return err
			}
			ok, err := inv.client.BatchUpdateRaindrops(ctx, collection, idList, upd)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}

	cmd.Flags().StringVar(&ids, "ids", "", "Comma-separated bookmark ids")
	cmd.Flags().IntVar(&collection, "collection", raindrop.CollectionAll, "Collection the bookmarks are in")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

func batchDeleteCmd(env *Env, g *globalFlags) *cobra.Command {
	var (
		ids        string
		collection int
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete several bookmarks at once",
		Long: `Delete several bookmarks at once. They move to the trash; with
--collection -99 they are deleted permanently.`,
		Example: `  raindrip batch delete --ids 1,2,3
  raindrip batch delete --ids 1,2 --collection -99`,
		Args: cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			idList, err := parseIDs(ids)
			if err != nil {
				return err
			}
			ok, err := inv.client.BatchDeleteRaindrops(ctx, collection, idList)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}

	cmd.Flags().StringVar(&ids, "ids", "", "Comma-separated bookmark ids")
	cmd.Flags().IntVar(&collection, "collection", raindrop.CollectionAll, "Collection id (-99 deletes permanently)")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}
