package cursor

import (
	"slices"

	"github.com/nrfta/realestates-go"
)

// Paginate turns the records a store returned for plan into a page.
//
// The store was asked for Count+1 records (N+1 pattern). The extra record
// only proves another page exists in the fetch direction and is dropped.
// Records fetched backwards are reversed into query order.
//
// Neighbour rules:
//   - forward: next exists iff the probe came back; prev exists iff a cursor was given
//   - backward: prev exists iff the probe came back; next always exists
//     because the cursor record itself follows the page
func Paginate[T any](plan *Plan[T], items []T) ([]T, *realestates.PageInfo) {
	hasMore := len(items) > plan.Count

	trimmed := items
	if hasMore {
		trimmed = items[:plan.Count]
	}

	var hasPrevious, hasNext bool
	if plan.Direction() == realestates.Prev {
		trimmed = slices.Clone(trimmed)
		slices.Reverse(trimmed)
		hasPrevious = hasMore
		hasNext = true
	} else {
		hasPrevious = plan.Cursor != nil
		hasNext = hasMore
	}

	return trimmed, realestates.NewPageInfo[T](plan.Encoder, trimmed, hasPrevious, hasNext)
}
