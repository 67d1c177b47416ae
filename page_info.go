package realestates

// PageInfo contains metadata about a page of results.
// It uses function fields to enable lazy evaluation, so cursors are only
// encoded when a caller renders them.
//
// StartCursor points backwards from the first item and EndCursor points
// forwards from the last item. Both return nil when the page has no neighbour
// in that direction.
type PageInfo struct {
	HasPreviousPage func() (bool, error)
	HasNextPage     func() (bool, error)
	StartCursor     func() (*string, error)
	EndCursor       func() (*string, error)
}

// NewEmptyPageInfo returns a PageInfo for a page without neighbours.
func NewEmptyPageInfo() *PageInfo {
	return &PageInfo{
		HasPreviousPage: func() (bool, error) { return false, nil },
		HasNextPage:     func() (bool, error) { return false, nil },
		StartCursor:     func() (*string, error) { return nil, nil },
		EndCursor:       func() (*string, error) { return nil, nil },
	}
}

// NewPageInfo builds PageInfo for items already trimmed to the page size and
// in query order. Cursors are only produced for the directions flagged.
func NewPageInfo[T any](
	encoder CursorEncoder[T],
	items []T,
	hasPrevious bool,
	hasNext bool,
) *PageInfo {
	return &PageInfo{
		HasPreviousPage: func() (bool, error) {
			return hasPrevious && len(items) > 0, nil
		},
		HasNextPage: func() (bool, error) {
			return hasNext && len(items) > 0, nil
		},
		StartCursor: func() (*string, error) {
			if !hasPrevious || len(items) == 0 {
				return nil, nil
			}
			return encoder.Encode(items[0], Prev)
		},
		EndCursor: func() (*string, error) {
			if !hasNext || len(items) == 0 {
				return nil, nil
			}
			return encoder.Encode(items[len(items)-1], Next)
		},
	}
}
