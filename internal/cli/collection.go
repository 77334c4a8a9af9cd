package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/raindrip/internal/format"
	"github.com/alnah/raindrip/internal/raindrop"
)

// CollectionCmd creates the collection command group.
func CollectionCmd(env *Env, g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage collections",
		Long: `Manage collections: create, update, delete, merge, reorder and set covers.

Special collection ids: 0 all, -1 unsorted, -99 trash.`,
	}

	cmd.AddCommand(
		collectionListCmd(env, g),
		collectionGetCmd(env, g),
		collectionCreateCmd(env, g),
		collectionUpdateCmd(env, g),
		collectionDeleteCmd(env, g),
		collectionDeleteMultipleCmd(env, g),
		collectionReorderCmd(env, g),
		collectionExpandAllCmd(env, g),
		collectionMergeCmd(env, g),
		collectionCoverCmd(env, g),
		collectionSetIconCmd(env, g),
		collectionCleanCmd(env, g),
		collectionEmptyTrashCmd(env, g),
	)

	return cmd
}

func collectionListCmd(env *Env, g *globalFlags) *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all collections",
		Example: `  raindrip collection list
  raindrip collection list --pretty`,
		Args: cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			collections, err := inv.client.Collections(ctx)
			if err != nil {
				return err
			}
			if !pretty {
				return inv.emit(collections)
			}

			rows := make([][]string, 0, len(collections))
			for _, c := range collections {
				parent := ""
				if !c.IsRoot() {
					parent = strconv.Itoa(c.ParentID())
				}
				rows = append(rows, []string{
					strconv.Itoa(c.ID),
					format.Truncate(c.Title, prettyWidth),
					strconv.Itoa(c.Count),
					parent,
				})
			}
			fmt.Fprintln(inv.env.Stdout, format.Table([]string{"ID", "Title", "Count", "Parent"}, rows))
			fmt.Fprintf(inv.env.Stderr, "\nTotal collections: %d\n", len(collections))
			return nil
		}),
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Display collections as a table for humans")

	return cmd
}

func collectionGetCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Get details of a collection",
		Example: `  raindrip collection get 123`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := inv.client.Collection(ctx, id)
			if err != nil {
				return err
			}
			return inv.emit(c)
		}),
	}
}

func collectionCreateCmd(env *Env, g *globalFlags) *cobra.Command {
	var (
		parent int
		public bool
		view   string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a collection",
		Example: `  raindrip collection create "Research" --public
  raindrip collection create "Papers" --parent 123 --view grid`,
		Args: cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			in := raindrop.CollectionCreate{Title: args[0], View: view}
			if inv.flagChanged("parent") {
				in.Parent = raindrop.RefTo(parent)
			}
			if inv.flagChanged("public") {
				in.Public = &public
			}
			c, err := inv.client.CreateCollection(ctx, in)
			if err != nil {
				return err
			}
			return inv.emit(c)
		}),
	}

	cmd.Flags().IntVar(&parent, "parent", 0, "Parent collection id")
	cmd.Flags().BoolVar(&public, "public", false, "Make the collection public")
	cmd.Flags().StringVar(&view, "view", "", "View style: list, simple, grid, masonry")

	return cmd
}

func collectionUpdateCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <json|->",
		Short: "Update a collection with a JSON patch",
		Example: `  raindrip collection update 123 '{"title": "New Name"}'
  raindrip collection update 123 '{"parent": {"$id": 456}}'`,
		Args: cobra.ExactArgs(2),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd raindrop.CollectionUpdate
			if err := decodeJSONArg(inv.env, args[1], &upd); err != nil {
				return err
			}
			c, err := inv.client.UpdateCollection(ctx, id, upd)
			if err != nil {
				return err
			}
			return inv.emit(c)
		}),
	}
}

func collectionDeleteCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a collection",
		Example: `  raindrip collection delete 123`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := inv.client.DeleteCollection(ctx, id)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}

func collectionDeleteMultipleCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete-multiple <ids>",
		Short:   "Delete several collections at once",
		Example: `  raindrip collection delete-multiple 123,456`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			ids, err := parseIDs(args[0])
			if err != nil {
				return err
			}
			ok, err := inv.client.DeleteCollections(ctx, ids)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}

func collectionReorderCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <sort>",
		Short: "Reorder all collections (title, -title, -count)",
		Example: `  raindrip collection reorder title
  raindrip collection reorder -- -count`,
		Args: cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			ok, err := inv.client.ReorderCollections(ctx, args[0])
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}

func collectionExpandAllCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "expand-all <true|false>",
		Short: "Expand or collapse all collections",
		Example: `  raindrip collection expand-all true
  raindrip collection expand-all false`,
		Args: cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			expanded, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("invalid argument %q: expected true or false", args[0])
			}
			ok, err := inv.client.ExpandAllCollections(ctx, expanded)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}

func collectionMergeCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "merge <ids> <target-id>",
		Short:   "Merge collections into a target collection",
		Example: `  raindrip collection merge 123,456 789`,
		Args:    cobra.ExactArgs(2),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			ids, err := parseIDs(args[0])
			if err != nil {
				return err
			}
			target, err := parseID(args[1])
			if err != nil {
				return err
			}
			ok, err := inv.client.MergeCollections(ctx, ids, target)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}

func collectionCoverCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cover <id> <path|url>",
		Short: "Upload a cover image to a collection",
		Long: `Upload a cover image to a collection. The source is a local file or an
http(s) URL, which is downloaded in memory first.`,
		Example: `  raindrip collection cover 123 ./icon.png
  raindrip collection cover 123 "https://example.com/icon.png"`,
		Args: cobra.ExactArgs(2),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := uploadCover(ctx, inv, id, args[1])
			if err != nil {
				return err
			}
			return inv.emit(c)
		}),
	}
}

// uploadCover uploads source, a file path or an http(s) URL, as the cover of id.
func uploadCover(ctx context.Context, inv *invocation, id int, source string) (raindrop.Collection, error) {
	if !isRemote(source) {
		f, err := os.Open(source) // #nosec G304 -- user-provided cover path
		if err != nil {
			return raindrop.Collection{}, fmt.Errorf("failed to open cover: %w", err)
		}
		defer func() { _ = f.Close() }()

		inv.logger.Info("uploading cover", "collection", id, "file", filepath.Base(source))
		return inv.client.UploadCollectionCover(ctx, id, source, f)
	}

	inv.logger.Info("downloading cover", "url", source)
	var buf bytes.Buffer
	n, err := inv.client.Download(ctx, source, &buf)
	if err != nil {
		return raindrop.Collection{}, err
	}

	inv.logger.Info("uploading cover", "collection", id, "size", format.Size(n))
	return inv.client.UploadCollectionCover(ctx, id, remoteFileName(source), &buf)
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// remoteFileName derives an upload file name from a URL path.
func remoteFileName(source string) string {
	u, err := url.Parse(source)
	if err != nil {
		return "cover.png"
	}
	name := path.Base(u.Path)
	if !strings.Contains(name, ".") {
		return "cover.png"
	}
	return name
}

func collectionSetIconCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "set-icon <id> <query>",
		Short: "Search Raindrop's icon library and set the first match as cover",
		Example: `  raindrip collection set-icon 123 "robot"
  raindrip collection set-icon 123 code --dry-run`,
		Args: cobra.ExactArgs(2),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			inv.logger.Info("searching icons", "query", args[1])
			icons, err := inv.client.SearchCovers(ctx, args[1])
			if err != nil {
				return err
			}
			if len(icons) == 0 {
				return fmt.Errorf("%w for %q", ErrNoIcons, args[1])
			}

			c, err := uploadCover(ctx, inv, id, icons[0])
			if err != nil {
				return err
			}
			return inv.emit(c)
		}),
	}
}

func collectionCleanCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "clean",
		Short:   "Remove all empty collections",
		Example: `  raindrip collection clean`,
		Args:    cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			n, err := inv.client.CleanEmptyCollections(ctx)
			if err != nil {
				return err
			}
			return inv.emit(map[string]int{"removed_count": n})
		}),
	}
}

func collectionEmptyTrashCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "empty-trash",
		Short:   "Permanently delete everything in the trash",
		Example: `  raindrip collection empty-trash`,
		Args:    cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			ok, err := inv.client.EmptyTrash(ctx)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}
