package cli

import (
	"context"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/raindrip/internal/raindrop"
)

// recentLimit is how many recent bookmarks context reports.
const recentLimit = 5

// ContextCmd creates the context command.
func ContextCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "context",
		Short: "Show high-level account context (user, stats, recent activity)",
		Long: `Show high-level account context in one call: the user, totals,
the root collections and the five most recent bookmarks.

The four API requests run concurrently.`,
		Example: `  raindrip context
  raindrip context --format json`,
		Args: cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			return runContext(ctx, inv)
		}),
	}
}

type contextUser struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type contextStats struct {
	TotalBookmarks   int `json:"total_bookmarks"`
	TotalCollections int `json:"total_collections"`
}

type contextCollection struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

type contextStructure struct {
	RootCollections []contextCollection `json:"root_collections"`
}

type contextActivity struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Created string `json:"created"`
}

type contextReport struct {
	User           []contextUser     `json:"user"`
	Stats          []contextStats    `json:"stats"`
	Structure      contextStructure  `json:"structure"`
	RecentActivity []contextActivity `json:"recent_activity"`
}

func runContext(ctx context.Context, inv *invocation) error {
	var (
		user        raindrop.User
		stats       []raindrop.Stat
		recent      []raindrop.Raindrop
		collections []raindrop.Collection
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		user, err = inv.client.User(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		stats, err = inv.client.Stats(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		recent, err = inv.client.SearchPage(ctx, "", raindrop.CollectionAll, 0)
		return err
	})
	eg.Go(func() error {
		var err error
		collections, err = inv.client.Collections(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	return inv.emit(buildContext(user, stats, recent, collections))
}

// buildContext assembles the context report from the fetched parts.
func buildContext(user raindrop.User, stats []raindrop.Stat, recent []raindrop.Raindrop, collections []raindrop.Collection) contextReport {
	total := 0
	for _, s := range stats {
		if s.ID == raindrop.CollectionAll {
			total = s.Count
			break
		}
	}

	roots := make([]contextCollection, 0, len(collections))
	for _, c := range collections {
		if c.IsRoot() {
			roots = append(roots, contextCollection{ID: c.ID, Title: c.Title, Count: c.Count})
		}
	}

	recent = recent[:min(len(recent), recentLimit)]
	activity := make([]contextActivity, 0, len(recent))
	for _, r := range recent {
		activity = append(activity, contextActivity{ID: r.ID, Title: r.Title, Created: r.Created})
	}

	return contextReport{
		User:           []contextUser{{ID: user.ID, Name: user.FullName}},
		Stats:          []contextStats{{TotalBookmarks: total, TotalCollections: len(collections)}},
		Structure:      contextStructure{RootCollections: roots},
		RecentActivity: activity,
	}
}

// StructureCmd creates the structure command.
func StructureCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "structure",
		Short:   "Show all collections and tags",
		Example: `  raindrip structure`,
		Args:    cobra.NoArgs,
		RunE: clientRunE(env, g, func(ctx context.Context, inv *invocation, _ []string) error {
			return runStructure(ctx, inv)
		}),
	}
}

type structureCollection struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Count      int    `json:"count"`
	ParentID   *int   `json:"parent_id"`
	LastUpdate string `json:"last_update"`
}

type structureReport struct {
	Collections []structureCollection `json:"collections"`
	Tags        []string              `json:"tags"`
}

func runStructure(ctx context.Context, inv *invocation) error {
	var (
		collections []raindrop.Collection
		tags        []string
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		collections, err = inv.client.Collections(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		tags, err = inv.client.Tags(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	report := structureReport{
		Collections: make([]structureCollection, 0, len(collections)),
		Tags:        tags,
	}
	for _, c := range collections {
		sc := structureCollection{ID: c.ID, Title: c.Title, Count: c.Count, LastUpdate: c.LastUpdate}
		if !c.IsRoot() {
			sc.ParentID = raindrop.Ptr(c.ParentID())
		}
		report.Collections = append(report.Collections, sc)
	}

	return inv.emit(report)
}

// SchemaCmd creates the schema command.
func SchemaCmd(env *Env, g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Dump the data schemas and usage examples (for AI context)",
		Long: `Dump the JSON schemas of the bookmark and collection payloads together
with example invocations. No login is needed.`,
		Example: `  raindrip schema --format json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, _, err := prepare(env, g)
			if err != nil {
				return err
			}
			return inv.emit(schemaDocument())
		},
	}
}

var usageExamples = map[string]string{
	"patch_update_title_tags":    `raindrip patch <id> '{"title": "New Title", "tags": ["ai", "cli"]}'`,
	"move_single_bookmark":       `raindrip patch <id> '{"collectionId": <target_col_id>}'`,
	"move_batch_bookmarks":       `raindrip batch update --ids 1,2 --collection <source_col_id> '{"collection": {"$id": <target_col_id>}}'`,
	"create_collection":          `raindrip collection create "Research" --public`,
	"set_collection_icon_search": `raindrip collection set-icon <id> "robot"`,
	"set_collection_icon_url":    `raindrip collection cover <id> "https://example.com/icon.png"`,
	"complex_query":              `raindrip search "python tag:important" --pretty`,
}

// schemaDocument describes the payload types accepted and returned by the CLI.
func schemaDocument() map[string]any {
	return map[string]any{
		"schemas": map[string]any{
			"Raindrop":         schemaOf(reflect.TypeOf((*raindrop.Raindrop)(nil)).Elem()),
			"RaindropUpdate":   schemaOf(reflect.TypeOf((*raindrop.RaindropUpdate)(nil)).Elem()),
			"CollectionCreate": schemaOf(reflect.TypeOf((*raindrop.CollectionCreate)(nil)).Elem()),
			"CollectionUpdate": schemaOf(reflect.TypeOf((*raindrop.CollectionUpdate)(nil)).Elem()),
		},
		"usage_examples": usageExamples,
	}
}

// schemaOf derives a JSON schema from t's json struct tags.
func schemaOf(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int64, reflect.Int32:
		return map[string]any{"type": "integer"}
	case reflect.Float64, reflect.Float32:
		return map[string]any{"type": "number"}
	case reflect.Slice:
		return map[string]any{"type": "array", "items": schemaOf(t.Elem())}
	case reflect.Map, reflect.Interface:
		return map[string]any{"type": "object"}
	case reflect.Struct:
	default:
		return map[string]any{}
	}

	props := map[string]any{}
	required := []string{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		props[name] = schemaOf(f.Type)
		optional := strings.Contains(opts, "omitempty") || strings.Contains(opts, "omitzero")
		if !optional && f.Type.Kind() != reflect.Pointer {
			required = append(required, name)
		}
	}

	s := map[string]any{
		"title":      t.Name(),
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}
