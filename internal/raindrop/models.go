package raindrop

import "encoding/json"

// Ref is the API's reference shape {"$id": N}.
type Ref struct {
	ID int `json:"$id"`
}

// RefTo returns a reference to id.
func RefTo(id int) *Ref {
	return &Ref{ID: id}
}

// Collection is a Raindrop.io collection.
type Collection struct {
	ID            int            `json:"_id"`
	Title         string         `json:"title"`
	Count         int            `json:"count"`
	Parent        *Ref           `json:"parent,omitempty"`
	View          string         `json:"view,omitempty"`
	Public        *bool          `json:"public,omitempty"`
	Expanded      *bool          `json:"expanded,omitempty"`
	Sort          *int           `json:"sort,omitempty"`
	Cover         []string       `json:"cover,omitempty"`
	Created       string         `json:"created,omitempty"`
	LastUpdate    string         `json:"lastUpdate,omitempty"`
	Color         string         `json:"color,omitempty"`
	Access        map[string]any `json:"access,omitempty"`
	Collaborators map[string]any `json:"collaborators,omitempty"`
	User          *Ref           `json:"user,omitempty"`
}

// ParentID returns the parent collection id, or 0 for a root collection.
func (c Collection) ParentID() int {
	if c.Parent == nil {
		return 0
	}
	return c.Parent.ID
}

// IsRoot reports whether the collection has no parent.
func (c Collection) IsRoot() bool {
	return c.Parent == nil
}

// CollectionCreate is the payload for creating a collection.
type CollectionCreate struct {
	Title  string `json:"title"`
	View   string `json:"view,omitempty"`
	Public *bool  `json:"public,omitempty"`
	Parent *Ref   `json:"parent,omitempty"`
}

// CollectionUpdate is a partial collection update. Nil fields are not sent.
type CollectionUpdate struct {
	Title    *string `json:"title,omitempty"`
	View     *string `json:"view,omitempty"`
	Public   *bool   `json:"public,omitempty"`
	Parent   *Ref    `json:"parent,omitempty"`
	Expanded *bool   `json:"expanded,omitempty"`
}

// Raindrop is a bookmark.
type Raindrop struct {
	ID           int              `json:"_id"`
	Link         string           `json:"link"`
	Title        string           `json:"title"`
	Excerpt      string           `json:"excerpt"`
	Note         string           `json:"note"`
	Tags         []string         `json:"tags"`
	Cover        string           `json:"cover,omitempty"`
	Created      string           `json:"created,omitempty"`
	LastUpdate   string           `json:"lastUpdate,omitempty"`
	Type         string           `json:"type"`
	Important    bool             `json:"important"`
	CollectionID int              `json:"collectionId"`
	Domain       string           `json:"domain,omitempty"`
	Media        []map[string]any `json:"media,omitempty"`
	Broken       bool             `json:"broken"`
}

// UnmarshalJSON applies the API defaults (type "link", collection -1)
// for fields missing from the payload.
func (r *Raindrop) UnmarshalJSON(data []byte) error {
	type plain Raindrop
	p := plain{Type: "link", CollectionID: -1}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Type == "" {
		p.Type = "link"
	}
	*r = Raindrop(p)
	return nil
}

// RaindropUpdate is a partial bookmark update. Nil fields are not sent;
// a non-nil empty Tags slice clears the tags.
type RaindropUpdate struct {
	Link         *string  `json:"link,omitempty"`
	Title        *string  `json:"title,omitempty"`
	Excerpt      *string  `json:"excerpt,omitempty"`
	Note         *string  `json:"note,omitempty"`
	Tags         []string `json:"tags,omitzero"`
	CollectionID *int     `json:"collectionId,omitempty"`
	Collection   *Ref     `json:"collection,omitempty"`
}

// NewRaindrop holds the fields of a bookmark to create.
type NewRaindrop struct {
	Link         string
	Title        string
	Tags         []string
	CollectionID *int
}

// User is the authenticated account.
type User struct {
	ID         int    `json:"_id"`
	FullName   string `json:"fullName"`
	Email      string `json:"email,omitempty"`
	Pro        bool   `json:"pro"`
	ProExpire  string `json:"proExpire,omitempty"`
	Registered string `json:"registered,omitempty"`
	LastAction string `json:"lastAction,omitempty"`
}

// Stat is one account counter. ID 0 counts all bookmarks, -1 unsorted, -99 trash.
type Stat struct {
	ID    int `json:"_id"`
	Count int `json:"count"`
}

// Suggestions are the tag and collection suggestions for a bookmark.
type Suggestions map[string]any

// Ptr returns a pointer to v. Handy for partial updates.
func Ptr[T any](v T) *T {
	return &v
}
