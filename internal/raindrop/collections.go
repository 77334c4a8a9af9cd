package raindrop

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/alnah/raindrip/internal/transport"
)

// Collections returns every collection, root and nested.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	return c.listCollections(ctx, "/collections/all")
}

// RootCollections returns the top-level collections.
func (c *Client) RootCollections(ctx context.Context) ([]Collection, error) {
	return c.listCollections(ctx, "/collections")
}

// ChildCollections returns the nested collections.
func (c *Client) ChildCollections(ctx context.Context) ([]Collection, error) {
	return c.listCollections(ctx, "/collections/childrens")
}

func (c *Client) listCollections(ctx context.Context, path string) ([]Collection, error) {
	env, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	var items []Collection
	if err := optionalList(env, "items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Collection returns the collection with id.
func (c *Client) Collection(ctx context.Context, id int) (Collection, error) {
	env, err := c.get(ctx, collectionPath(id), nil)
	if err != nil {
		return Collection{}, err
	}
	return decodeCollection(env)
}

// CreateCollection creates a collection.
func (c *Client) CreateCollection(ctx context.Context, in CollectionCreate) (Collection, error) {
	env, err := c.send(ctx, http.MethodPost, "/collection", in)
	if err != nil {
		return Collection{}, err
	}
	return decodeCollection(env)
}

// UpdateCollection applies the set fields of upd to the collection with id.
func (c *Client) UpdateCollection(ctx context.Context, id int, upd CollectionUpdate) (Collection, error) {
	env, err := c.send(ctx, http.MethodPut, collectionPath(id), upd)
	if err != nil {
		return Collection{}, err
	}
	return decodeCollection(env)
}

// DeleteCollection moves the collection with id to the trash.
func (c *Client) DeleteCollection(ctx context.Context, id int) (bool, error) {
	env, err := c.send(ctx, http.MethodDelete, collectionPath(id), nil)
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// DeleteCollections removes several collections at once.
// The API sometimes answers with an empty object, which counts as success.
func (c *Client) DeleteCollections(ctx context.Context, ids []int) (bool, error) {
	env, err := c.send(ctx, http.MethodDelete, "/collections", map[string]any{"ids": ids})
	if err != nil {
		return false, err
	}
	return env.Bool("result", true), nil
}

// ReorderCollections sorts the root collections. sort is one of
// "title", "-title" or "-count".
func (c *Client) ReorderCollections(ctx context.Context, sort string) (bool, error) {
	env, err := c.send(ctx, http.MethodPut, "/collections", map[string]any{"sort": sort})
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// ExpandAllCollections expands or collapses every collection.
func (c *Client) ExpandAllCollections(ctx context.Context, expanded bool) (bool, error) {
	env, err := c.send(ctx, http.MethodPut, "/collections", map[string]any{"expanded": expanded})
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// MergeCollections moves the bookmarks of ids into target and removes ids.
func (c *Client) MergeCollections(ctx context.Context, ids []int, target int) (bool, error) {
	env, err := c.send(ctx, http.MethodPut, "/collections/merge", map[string]any{"ids": ids, "to": target})
	if err != nil {
		return false, err
	}
	return env.Bool("result", true), nil
}

// CleanEmptyCollections removes empty collections and returns how many went away.
func (c *Client) CleanEmptyCollections(ctx context.Context) (int, error) {
	env, err := c.send(ctx, http.MethodPut, "/collections/clean", nil)
	if err != nil {
		return 0, err
	}
	return env.Int("count", 0), nil
}

// EmptyTrash permanently deletes everything in the trash.
func (c *Client) EmptyTrash(ctx context.Context) (bool, error) {
	env, err := c.send(ctx, http.MethodDelete, collectionPath(CollectionTrash), nil)
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// UploadCollectionCover sets the cover of collection id from a PNG image.
// The upload is attempted once.
func (c *Client) UploadCollectionCover(ctx context.Context, id int, fileName string, content io.Reader) (Collection, error) {
	env, err := c.exec.Upload(ctx, transport.Upload{
		Method:      http.MethodPut,
		Path:        collectionPath(id) + "/cover",
		Field:       "cover",
		FileName:    filepath.Base(fileName),
		ContentType: "image/png",
		Content:     content,
	})
	if err != nil {
		return Collection{}, err
	}
	col, err := decodeCollection(env)
	if err != nil {
		return Collection{}, err
	}
	if col.ID == 0 {
		col.ID = id
	}
	return col, nil
}

// SearchCovers returns PNG icon URLs matching text.
func (c *Client) SearchCovers(ctx context.Context, text string) ([]string, error) {
	env, err := c.get(ctx, "/collections/covers/"+url.PathEscape(text), nil)
	if err != nil {
		return nil, err
	}

	var groups []struct {
		Icons []struct {
			PNG string `json:"png"`
		} `json:"icons"`
	}
	if err := optionalList(env, "items", &groups); err != nil {
		return nil, err
	}

	icons := []string{}
	for _, g := range groups {
		for _, icon := range g.Icons {
			if icon.PNG != "" {
				icons = append(icons, icon.PNG)
			}
		}
	}
	return icons, nil
}

func collectionPath(id int) string {
	return "/collection/" + strconv.Itoa(id)
}

func decodeCollection(env transport.Envelope) (Collection, error) {
	var col Collection
	if err := requireKey(env, "item", &col); err != nil {
		return Collection{}, fmt.Errorf("collection: %w", err)
	}
	return col, nil
}
