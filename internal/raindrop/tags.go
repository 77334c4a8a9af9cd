package raindrop

import (
	"context"
	"net/http"
	"strconv"
)

// Tags returns every tag name in the account.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	env, err := c.get(ctx, "/tags", nil)
	if err != nil {
		return nil, err
	}
	var items []struct {
		ID string `json:"_id"`
	}
	if err := optionalList(env, "items", &items); err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(items))
	for _, it := range items {
		tags = append(tags, it.ID)
	}
	return tags, nil
}

// DeleteTags removes tags from every bookmark in collection (0 for all).
func (c *Client) DeleteTags(ctx context.Context, tags []string, collection int) (bool, error) {
	env, err := c.send(ctx, http.MethodDelete, tagsPath(collection), map[string]any{"tags": tags})
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

// RenameTag renames oldName to newName within collection (0 for all).
// Renaming onto an existing tag merges the two.
func (c *Client) RenameTag(ctx context.Context, oldName, newName string, collection int) (bool, error) {
	env, err := c.send(ctx, http.MethodPut, tagsPath(collection), map[string]any{
		"replace": newName,
		"tags":    []string{oldName},
	})
	if err != nil {
		return false, err
	}
	return env.Bool("result", false), nil
}

func tagsPath(collection int) string {
	return "/tags/" + strconv.Itoa(collection)
}
