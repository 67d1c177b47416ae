package realestates

import (
	"context"
	"errors"

	"github.com/nrfta/realestates-go/filter"
)

// ErrNoRecord is returned by a Store when the requested id does not exist.
// Callers translate it into NotFound.
var ErrNoRecord = errors.New("realestates: no record")

// Store is the persistence collaborator for real estates.
// Implementations live in the memory, sqlboiler and mongo packages.
//
// Find is the only list operation. It receives a fully planned FetchParams:
// the visibility-scoped filter, the order (already flipped when paging
// backwards), the keyset cursor and the probe-inclusive limit. A Store applies
// them as given and does not reinterpret paging direction.
type Store interface {
	// Create persists a new record. The caller assigns ID and timestamps.
	Create(ctx context.Context, re *RealEstate) error

	// FindOne returns the record with the given id or ErrNoRecord.
	FindOne(ctx context.Context, id string) (*RealEstate, error)

	// Find returns the records matching params, ordered and limited.
	Find(ctx context.Context, params FetchParams) ([]*RealEstate, error)

	// Update replaces the stored record with the same ID or returns ErrNoRecord.
	Update(ctx context.Context, re *RealEstate) error

	// Remove deletes the record with the given id or returns ErrNoRecord.
	Remove(ctx context.Context, id string) error
}

// FetchParams contains all parameters needed to fetch a page of data.
// The Page Executor constructs them from a planned query.
type FetchParams struct {
	// Filter is the combined client and visibility predicate.
	Filter filter.Node

	// Cursor is the keyset position. Only records strictly after it in
	// OrderBy order are returned. Nil means start from the beginning.
	Cursor *CursorPosition

	// OrderBy specifies the sort order for results, tiebreakers included.
	OrderBy []OrderBy

	// Limit is the maximum number of items to fetch. It already includes
	// the probe record.
	Limit int
}

// OrderBy represents a sort directive for query results.
type OrderBy struct {
	// Column is the public field name (e.g. "price", "createdAt").
	Column string

	// Desc indicates descending order. False means ascending.
	Desc bool
}

// Reverse returns the same keys with every direction flipped.
func Reverse(orderBy []OrderBy) []OrderBy {
	out := make([]OrderBy, len(orderBy))
	for i, o := range orderBy {
		out[i] = OrderBy{Column: o.Column, Desc: !o.Desc}
	}
	return out
}

// Direction tells which neighbour page a cursor points at.
type Direction int

const (
	// Next selects records after the cursor in query order.
	Next Direction = iota
	// Prev selects records before the cursor in query order.
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// CursorPosition encodes the pagination position for keyset paging.
// It contains the values of the order keys of the page-adjacent record.
//
// Example for sorting by (price DESC, id ASC):
//
//	CursorPosition{
//	    Direction: Next,
//	    Values: map[string]any{
//	        "price": 45000.0,
//	        "id":    "7f1d...",
//	    },
//	}
//
// This translates to: price < 45000 OR (price = 45000 AND id > '7f1d...')
type CursorPosition struct {
	// Direction is the paging direction the cursor was issued for.
	Direction Direction

	// Values maps column names to their values at the cursor position.
	Values map[string]any
}

// CursorEncoder handles cursor serialization for keyset paging.
// It converts items into opaque cursor strings and decodes cursor strings
// back into CursorPosition values.
//
// Type parameter T is the item type (e.g., *RealEstate).
type CursorEncoder[T any] interface {
	// Encode creates an opaque cursor string pointing from item in direction dir.
	Encode(item T, dir Direction) (*string, error)

	// Decode extracts cursor position from an opaque cursor string.
	Decode(cursor string) (*CursorPosition, error)
}
