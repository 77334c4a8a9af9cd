package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/raindrip/internal/format"
	"github.com/alnah/raindrip/internal/raindrop"
)

// prettyWidth is the cell width of titles and links in --pretty tables.
const prettyWidth = 50

// sortSuggestionLimit caps the collections suggested by sort.
const sortSuggestionLimit = 3

// SearchCmd creates the search command.
func SearchCmd(env *Env, g *globalFlags) *cobra.Command {
	var (
		collection int
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search bookmarks (all pages)",
		Long: `Search bookmarks using Raindrop.io query syntax. Every result page is
fetched. Without a query the most recent bookmarks are listed.

Collection ids: 0 all, -1 unsorted, -99 trash.`,
		Example: `  raindrip search "python"
  raindrip search "tag:important" --pretty
  raindrip search --collection 12345 --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(ctx, inv, query, collection, pretty)
		}),
	}

	cmd.Flags().IntVar(&collection, "collection", raindrop.CollectionAll, "Collection id to search in")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Display results as a table for humans")

	return cmd
}

type searchItem struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Tags    string `json:"tags"`
	Type    string `json:"type"`
	Created string `json:"created"`
}

type searchResult struct {
	Items []searchItem `json:"items"`
}

func runSearch(ctx context.Context, inv *invocation, query string, collection int, pretty bool) error {
	results, err := inv.client.Search(ctx, query, collection)
	if err != nil {
		return err
	}

	if pretty {
		rows := make([][]string, 0, len(results))
		for _, r := range results {
			rows = append(rows, []string{
				strconv.Itoa(r.ID),
				format.Truncate(r.Title, prettyWidth),
				strings.Join(r.Tags, ", "),
				format.Truncate(r.Link, prettyWidth),
			})
		}
		title := "Recent Bookmarks"
		if query != "" {
			title = "Search Results: " + query
		}
		fmt.Fprintln(inv.env.Stdout, title)
		fmt.Fprintln(inv.env.Stdout, format.Table([]string{"ID", "Title", "Tags", "Link"}, rows))
		fmt.Fprintf(inv.env.Stderr, "\nTotal results: %d\n", len(results))
		return nil
	}

	out := searchResult{Items: make([]searchItem, 0, len(results))}
	for _, r := range results {
		out.Items = append(out.Items, searchItem{
			ID:      r.ID,
			Title:   r.Title,
			Link:    r.Link,
			Tags:    strings.Join(r.Tags, ","),
			Type:    r.Type,
			Created: r.Created,
		})
	}
	return inv.emit(out)
}

// GetCmd creates the get command.
func GetCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Get full details of a bookmark",
		Example: `  raindrip get 123456`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			r, err := inv.client.Raindrop(ctx, id)
			if err != nil {
				return err
			}
			return inv.emit(r)
		}),
	}
}

// SuggestCmd creates the suggest command.
func SuggestCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "suggest <id>",
		Short:   "Get tag and collection suggestions for a bookmark",
		Example: `  raindrip suggest 123456`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := inv.client.Suggestions(ctx, id)
			if err != nil {
				return err
			}
			return inv.emit(s)
		}),
	}
}

type waybackResult struct {
	URL      string  `json:"url"`
	Snapshot *string `json:"snapshot"`
}

// WaybackCmd creates the wayback command.
func WaybackCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "wayback <url>",
		Short:   "Check whether a URL is archived in the Wayback Machine",
		Example: `  raindrip wayback "https://go.dev"`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			out := waybackResult{URL: args[0]}
			if snapshot, ok := inv.client.CheckWayback(ctx, args[0]); ok {
				out.Snapshot = &snapshot
			}
			return inv.emit(out)
		}),
	}
}

// AddCmd creates the add command.
func AddCmd(env *Env, g *globalFlags) *cobra.Command {
	var (
		title      string
		tags       string
		collection int
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a bookmark",
		Example: `  raindrip add "https://example.com" --title "Example" --tags "tag1,tag2"
  raindrip add "https://go.dev" --collection 12345`,
		Args: cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			in := raindrop.NewRaindrop{
				Link:  args[0],
				Title: title,
				Tags:  splitList(tags),
			}
			if inv.flagChanged("collection") {
				in.CollectionID = &collection
			}
			r, err := inv.client.AddRaindrop(ctx, in)
			if err != nil {
				return err
			}
			return inv.emit(r)
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "Bookmark title")
	cmd.Flags().StringVar(&tags, "tags", "", "Comma-separated tags")
	cmd.Flags().IntVar(&collection, "collection", 0, "Collection id (default: unsorted)")

	return cmd
}

// PatchCmd creates the patch command.
func PatchCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "patch <id> <json|->",
		Short: "Update a bookmark with a JSON patch",
		Long: `Update a bookmark with a JSON patch. Only the fields present are changed;
"tags": [] clears the tags. Pass "-" to read the patch from stdin.

Run 'raindrip schema' for the accepted fields.`,
		Example: `  raindrip patch 123456 '{"title": "New Title", "tags": ["updated"]}'
  raindrip patch 123456 '{"collectionId": 789}'
  echo '{"note": "read later"}' | raindrip patch 123456 -`,
		Args: cobra.ExactArgs(2),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var upd raindrop.RaindropUpdate
			if err := decodeJSONArg(inv.env, args[1], &upd); err != nil {
				return err
			}
			r, err := inv.client.UpdateRaindrop(ctx, id, upd)
			if err != nil {
				return err
			}
			return inv.emit(r)
		}),
	}
}

// DeleteCmd creates the delete command.
func DeleteCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a bookmark (moves it to trash)",
		Example: `  raindrip delete 123456`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := inv.client.DeleteRaindrop(ctx, id)
			if err != nil {
				return err
			}
			return inv.success(ok)
		}),
	}
}

// SortCmd creates the sort command.
func SortCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <id>",
		Short: "Suggest the best collection for a bookmark from its title",
		Long: `Suggest up to three collections for a bookmark. A collection matches when
its title, or any word of it, appears in the bookmark title (case-insensitive).`,
		Example: `  raindrip sort 123456`,
		Args:    cobra.ExactArgs(1),
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			bookmark, err := inv.client.Raindrop(ctx, id)
			if err != nil {
				return err
			}
			collections, err := inv.client.Collections(ctx)
			if err != nil {
				return err
			}
			return inv.emit(sortReport{
				Bookmark:  sortBookmark{ID: bookmark.ID, Title: bookmark.Title},
				Suggested: matchCollections(bookmark.Title, collections),
			})
		}),
	}
}

type sortBookmark struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type sortSuggestion struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	MatchReason string `json:"match_reason"`
}

type sortReport struct {
	Bookmark  sortBookmark     `json:"bookmark"`
	Suggested []sortSuggestion `json:"suggested_collections"`
}

// matchCollections returns the first collections whose title or title
// words occur in the bookmark title. Collections with blank titles never match.
func matchCollections(title string, collections []raindrop.Collection) []sortSuggestion {
	title = strings.ToLower(title)
	out := []sortSuggestion{}
	for _, c := range collections {
		if len(out) == sortSuggestionLimit {
			break
		}
		name := strings.ToLower(strings.TrimSpace(c.Title))
		if name == "" {
			continue
		}
		if !strings.Contains(title, name) && !anyWordIn(title, name) {
			continue
		}
		out = append(out, sortSuggestion{
			ID:          c.ID,
			Title:       c.Title,
			MatchReason: fmt.Sprintf("Matches keyword '%s'", c.Title),
		})
	}
	return out
}

func anyWordIn(s, words string) bool {
	for _, w := range strings.Fields(words) {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
