package query

// Kind is the value kind a filterable field holds.
type Kind int

const (
	KindString Kind = iota
	KindID
	KindNumber
	KindTime
	KindTags
	KindPermissions
)

// Index describes which real estate fields clients may filter, sort and
// project on. Filtering is limited to fields the stores keep indexed so a
// client can never force an unbounded scan.
type Index struct {
	// Filterable maps indexed field names to their kind.
	Filterable map[string]Kind

	// Sortable lists the fields a client may sort by.
	Sortable map[string]bool

	// Projectable lists the fields a client may request in "fields".
	Projectable map[string]bool
}

// AlwaysProjected are included in every projection.
var AlwaysProjected = []string{"id", "user", "createdAt", "modifiedAt"}

// DefaultIndex is the real estates index.
var DefaultIndex = &Index{
	Filterable: map[string]Kind{
		"id":          KindID,
		"user":        KindString,
		"status":      KindString,
		"type":        KindString,
		"offer":       KindString,
		"currency":    KindString,
		"price":       KindNumber,
		"createdAt":   KindTime,
		"updatedAt":   KindTime,
		"tags":        KindTags,
		"permissions": KindPermissions,
	},
	Sortable: map[string]bool{
		"price":     true,
		"createdAt": true,
		"updatedAt": true,
	},
	Projectable: set(
		"id", "user", "status", "type", "offer", "price", "currency", "extent", "area",
		"bedrooms", "bathrooms", "parking", "location", "contact", "description", "images",
		"tags", "permissions", "visibility", "createdAt", "modifiedAt", "updatedAt",
	),
}

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
