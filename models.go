package realestates

import (
	"slices"
	"time"

	"github.com/nrfta/realestates-go/filter"
)

// Well-known groups and actions.
const (
	// PublicGroup is implicitly held by every principal, anonymous callers
	// included. A group grant for PublicGroup with ActionRead makes a resource
	// public.
	PublicGroup = "public"

	// AdminGroup members bypass visibility checks.
	AdminGroup = "admin"

	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resource statuses.
const (
	StatusEditing     = "editing"
	StatusReviewing   = "reviewing"
	StatusUnpublished = "unpublished"
	StatusPublished   = "published"
)

// Tag is a name/value label attached to a real estate.
type Tag struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

// Grant is an access control entry. Exactly one of User or Group is set.
type Grant struct {
	User    string   `json:"user,omitempty" bson:"user,omitempty"`
	Group   string   `json:"group,omitempty" bson:"group,omitempty"`
	Actions []string `json:"actions" bson:"actions"`
}

// UserGrant grants actions to a single principal.
func UserGrant(id string, actions ...string) Grant {
	return Grant{User: id, Actions: actions}
}

// GroupGrant grants actions to every member of a group.
func GroupGrant(id string, actions ...string) Grant {
	return Grant{Group: id, Actions: actions}
}

// Allows reports whether the grant includes action.
func (g Grant) Allows(action string) bool {
	return slices.Contains(g.Actions, action)
}

// Matches reports whether the grant names p directly or one of p's groups.
func (g Grant) Matches(p Principal) bool {
	if g.User != "" {
		return p.ID != "" && g.User == p.ID
	}
	return g.Group != "" && p.MemberOf(g.Group)
}

// Principal is the authenticated caller.
type Principal struct {
	ID     string
	Groups []string
	Admin  bool
}

// Anonymous returns the principal used for unauthenticated requests.
func Anonymous() Principal {
	return Principal{Groups: []string{PublicGroup}}
}

// IsAnonymous reports whether p carries no identity.
func (p Principal) IsAnonymous() bool {
	return p.ID == ""
}

// MemberOf reports whether p belongs to group. Every principal is a member of
// PublicGroup.
func (p Principal) MemberOf(group string) bool {
	return group == PublicGroup || slices.Contains(p.Groups, group)
}

// AllGroups returns p's groups including the implicit PublicGroup.
func (p Principal) AllGroups() []string {
	if slices.Contains(p.Groups, PublicGroup) {
		return slices.Clone(p.Groups)
	}
	return append([]string{PublicGroup}, p.Groups...)
}

// RealEstate is the listed resource.
type RealEstate struct {
	ID          string              `json:"id"`
	User        string              `json:"user"`
	Status      string              `json:"status"`
	Type        string              `json:"type"`
	Offer       string              `json:"offer"`
	Price       float64             `json:"price"`
	Currency    string              `json:"currency"`
	Extent      float64             `json:"extent,omitempty"`
	Area        float64             `json:"area,omitempty"`
	Bedrooms    int                 `json:"bedrooms,omitempty"`
	Bathrooms   int                 `json:"bathrooms,omitempty"`
	Parking     int                 `json:"parking,omitempty"`
	Location    string              `json:"location,omitempty"`
	Contact     string              `json:"contact,omitempty"`
	Description string              `json:"description,omitempty"`
	Images      []string            `json:"images,omitempty"`
	Tags        []Tag               `json:"tags,omitempty"`
	Permissions []Grant             `json:"permissions,omitempty"`
	Visibility  map[string][]string `json:"visibility,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
	ModifiedAt  time.Time           `json:"modifiedAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// IsPublic reports whether the public group may read the resource.
func (r *RealEstate) IsPublic() bool {
	for _, g := range r.Permissions {
		if g.Group == PublicGroup && g.Allows(ActionRead) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of r.
func (r *RealEstate) Clone() *RealEstate {
	c := *r
	c.Images = slices.Clone(r.Images)
	c.Tags = slices.Clone(r.Tags)
	if r.Permissions != nil {
		c.Permissions = make([]Grant, len(r.Permissions))
		for i, g := range r.Permissions {
			c.Permissions[i] = Grant{User: g.User, Group: g.Group, Actions: slices.Clone(g.Actions)}
		}
	}
	if r.Visibility != nil {
		c.Visibility = make(map[string][]string, len(r.Visibility))
		for k, v := range r.Visibility {
			c.Visibility[k] = slices.Clone(v)
		}
	}
	return &c
}

// Values implements filter.Document.
func (r *RealEstate) Values(field string) []any {
	switch field {
	case "id":
		return []any{r.ID}
	case "user":
		return []any{r.User}
	case "status":
		return []any{r.Status}
	case "type":
		return []any{r.Type}
	case "offer":
		return []any{r.Offer}
	case "price":
		return []any{r.Price}
	case "currency":
		return []any{r.Currency}
	case "extent":
		return []any{r.Extent}
	case "area":
		return []any{r.Area}
	case "bedrooms":
		return []any{r.Bedrooms}
	case "bathrooms":
		return []any{r.Bathrooms}
	case "parking":
		return []any{r.Parking}
	case "location":
		return optional(r.Location)
	case "contact":
		return optional(r.Contact)
	case "description":
		return optional(r.Description)
	case "images":
		out := make([]any, len(r.Images))
		for i, img := range r.Images {
			out[i] = img
		}
		return out
	case "createdAt":
		return []any{r.CreatedAt}
	case "modifiedAt":
		return []any{r.ModifiedAt}
	case "updatedAt":
		return []any{r.UpdatedAt}
	}
	return nil
}

// Elements implements filter.Document.
func (r *RealEstate) Elements(field string) []filter.Document {
	switch field {
	case "tags":
		out := make([]filter.Document, len(r.Tags))
		for i := range r.Tags {
			out[i] = r.Tags[i]
		}
		return out
	case "permissions":
		out := make([]filter.Document, len(r.Permissions))
		for i := range r.Permissions {
			out[i] = r.Permissions[i]
		}
		return out
	}
	return nil
}

// Values implements filter.Document.
func (t Tag) Values(field string) []any {
	switch field {
	case "name":
		return []any{t.Name}
	case "value":
		return []any{t.Value}
	}
	return nil
}

// Elements implements filter.Document.
func (t Tag) Elements(string) []filter.Document { return nil }

// Values implements filter.Document.
func (g Grant) Values(field string) []any {
	switch field {
	case "user":
		return optional(g.User)
	case "group":
		return optional(g.Group)
	case "actions":
		out := make([]any, len(g.Actions))
		for i, a := range g.Actions {
			out[i] = a
		}
		return out
	}
	return nil
}

// Elements implements filter.Document.
func (g Grant) Elements(string) []filter.Document { return nil }

func optional(s string) []any {
	if s == "" {
		return nil
	}
	return []any{s}
}
