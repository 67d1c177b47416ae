package sqlboiler

import (
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"
)

// Table is the real estates table.
const Table = "real_estates"

var (
	// scalarColumns are the columns filters and orders may reference by
	// their public field name.
	scalarColumns = map[string]bool{
		"id": true, "user": true, "status": true, "type": true, "offer": true,
		"price": true, "currency": true, "extent": true, "area": true,
		"bedrooms": true, "bathrooms": true, "parking": true, "location": true,
		"contact": true, "description": true,
		"created_at": true, "modified_at": true, "updated_at": true,
	}

	// jsonArrayColumns hold JSONB arrays of objects.
	jsonArrayColumns = map[string]bool{"tags": true, "permissions": true}

	// allColumns is the column list in table order.
	allColumns = []string{
		"id", "user", "status", "type", "offer", "price", "currency", "extent", "area",
		"bedrooms", "bathrooms", "parking", "location", "contact", "description",
		"images", "tags", "permissions", "visibility", "created_at", "modified_at", "updated_at",
	}
)

// column maps a public field name ("createdAt") to its column ("created_at").
func column(field string) string {
	return strmangle.SnakeCase(field)
}

func quote(col string) string {
	return strmangle.IdentQuote('"', '"', col)
}

// scalarColumn returns the quoted column for field or an error when field
// is not a plain column.
func scalarColumn(field string) (string, error) {
	col := column(field)
	if !scalarColumns[col] {
		return "", errors.Errorf("sqlboiler: %q is not a filterable column", field)
	}
	return quote(col), nil
}
