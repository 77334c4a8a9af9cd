package raindrop

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/alnah/raindrip/internal/transport"
)

// PerPage is the page size used when listing bookmarks.
const PerPage = 50

// Search returns every bookmark in collection matching query, following
// pages until a short page. An empty query matches everything.
func (c *Client) Search(ctx context.Context, query string, collection int) ([]Raindrop, error) {
	all := []Raindrop{}
	for page := 0; ; page++ {
		items, err := c.SearchPage(ctx, query, collection, page)
		if err != nil {
			return nil, fmt.Errorf("search page %d: %w", page, err)
		}
		all = append(all, items...)
		if len(items) < PerPage {
			return all, nil
		}
	}
}

// SearchPage returns one page of bookmarks. Pages start at 0.
func (c *Client) SearchPage(ctx context.Context, query string, collection, page int) ([]Raindrop, error) {
	q := url.Values{}
	q.Set("search", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("perpage", strconv.Itoa(PerPage))

	env, err := c.get(ctx, raindropsPath(collection), q)
	if err != nil {
		return nil, err
	}
	var items []Raindrop
	if err := optionalList(env, "items", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Raindrop returns the bookmark with id.
func (c *Client) Raindrop(ctx context.Context, id int) (Raindrop, error) {
	env, err := c.get(ctx, raindropPath(id), nil)
	if err != nil {
		return Raindrop{}, err
	}
	return decodeRaindrop(env)
}

// AddRaindrop creates a bookmark. Empty title and tags are left to the API.
func (c *Client) AddRaindrop(ctx context.Context, in NewRaindrop) (Raindrop, error) {
	payload := map[string]any{"link": in.Link}
	if in.Title != "" {
		payload["title"] = in.Title
	}
	if len(in.Tags) > 0 {
		payload["tags"] = in.Tags
	}
	if in.CollectionID != nil {
		payload["collectionId"] = *in.CollectionID
	}

	env, err := c.send(ctx, http.MethodPost, "/raindrop", payload)
	if err != nil {
		return Raindrop{}, err
	}
	return decodeRaindrop(env)
}

// UpdateRaindrop applies the set fields of upd to the bookmark with id.
func (c *Client) UpdateRaindrop(ctx context.Context, id int, upd RaindropUpdate) (Raindrop, error) {
	env, err := c.send(ctx, http.MethodPut, raindropPath(id), upd)
	if err != nil {
		return Raindrop{}, err
	}
	return decodeRaindrop(env)
}

// DeleteRaindrop moves the bookmark with id to the trash.
func (c *Client) DeleteRaindrop(ctx context.Context, id int) (bool, error) {
	env, err := c.send(ctx, http.MethodDelete, raindropPath(id), nil)
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// BatchUpdateRaindrops applies upd to the bookmarks ids within collection.
func (c *Client) BatchUpdateRaindrops(ctx context.Context, collection int, ids []int, upd RaindropUpdate) (bool, error) {
	payload, err := withIDs(upd, ids)
	if err != nil {
		return false, err
	}
	env, err := c.send(ctx, http.MethodPut, raindropsPath(collection), payload)
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// BatchDeleteRaindrops removes the bookmarks ids within collection.
func (c *Client) BatchDeleteRaindrops(ctx context.Context, collection int, ids []int) (bool, error) {
	env, err := c.send(ctx, http.MethodDelete, raindropsPath(collection), map[string]any{"ids": ids})
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// Suggestions returns suggested tags and collections for the bookmark with id.
func (c *Client) Suggestions(ctx context.Context, id int) (Suggestions, error) {
	env, err := c.get(ctx, raindropPath(id)+"/suggest", nil)
	if err != nil {
		return nil, err
	}
	s := Suggestions{}
	if _, err := env.Decode("item", &s); err != nil {
		return nil, fmt.Errorf("suggestions: %w", err)
	}
	return s, nil
}

func raindropPath(id int) string {
	return "/raindrop/" + strconv.Itoa(id)
}

func raindropsPath(collection int) string {
	return "/raindrops/" + strconv.Itoa(collection)
}

func decodeRaindrop(env transport.Envelope) (Raindrop, error) {
	var r Raindrop
	if err := requireKey(env, "item", &r); err != nil {
		return Raindrop{}, fmt.Errorf("raindrop: %w", err)
	}
	return r, nil
}

// withIDs flattens upd into a JSON object and adds the ids field.
func withIDs(upd RaindropUpdate, ids []int) (map[string]any, error) {
	data, err := json.Marshal(upd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to encode update: %w", err)
	}
	payload["ids"] = ids
	return payload, nil
}
