package realestates

import "fmt"

// Page represents a single page of results.
//
// Type parameter T is the item type after transformation (for listings, the
// projected representation).
type Page[T any] struct {
	// Nodes contains the items for this page in query order.
	Nodes []T

	// PageInfo contains pagination metadata (neighbours and their cursors).
	PageInfo *PageInfo

	// Metadata provides observability information.
	Metadata Metadata
}

// Metadata provides observability and debugging information about a fetch.
type Metadata struct {
	// Direction is the paging direction that produced the page.
	Direction Direction

	// QueryTimeMs is the time spent in the store.
	QueryTimeMs int64

	// ItemsExamined is the number of records returned by the store,
	// the probe record included.
	ItemsExamined int
}

// BuildPage transforms items and wraps them with pageInfo.
//
// Example usage:
//
//	page, err := realestates.BuildPage(records, pageInfo,
//	    func(re *realestates.RealEstate) (map[string]any, error) {
//	        return executor.Project(re, fields), nil
//	    },
//	)
func BuildPage[From any, To any](
	items []From,
	pageInfo *PageInfo,
	transform func(From) (To, error),
) (*Page[To], error) {
	page := &Page[To]{
		Nodes:    make([]To, 0, len(items)),
		PageInfo: pageInfo,
	}

	for i, item := range items {
		transformed, err := transform(item)
		if err != nil {
			return nil, fmt.Errorf("transform item at index %d: %w", i, err)
		}
		page.Nodes = append(page.Nodes, transformed)
	}

	return page, nil
}
