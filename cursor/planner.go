package cursor

import (
	"github.com/nrfta/realestates-go"
	"github.com/nrfta/realestates-go/filter"
)

// Plan is the resumable ordering and page boundary for one list request.
type Plan[T any] struct {
	// Encoder encodes cursors for the planned order.
	Encoder *Spec[T]

	// OrderBy is the query order, tiebreakers included.
	OrderBy []realestates.OrderBy

	// Cursor is the decoded boundary, nil on a first page.
	Cursor *realestates.CursorPosition

	// Count is the page size.
	Count int
}

// NewPlan validates the sort of spec against schema and decodes its cursor.
// Unknown sort keys and undecodable cursors are BadRequest errors.
func NewPlan[T any](schema *Schema[T], spec *realestates.QuerySpec) (*Plan[T], error) {
	encoder, err := schema.EncoderFor(spec.Sort)
	if err != nil {
		return nil, realestates.BadRequest("%s", err.Error())
	}

	plan := &Plan[T]{
		Encoder: encoder,
		OrderBy: encoder.OrderBy(),
		Count:   spec.Count,
	}

	if spec.Cursor != "" {
		pos, err := encoder.Decode(spec.Cursor)
		if err != nil {
			return nil, realestates.BadRequest("%s", err.Error())
		}
		plan.Cursor = pos
	}

	return plan, nil
}

// Direction is the paging direction of the request.
func (p *Plan[T]) Direction() realestates.Direction {
	if p.Cursor == nil {
		return realestates.Next
	}
	return p.Cursor.Direction
}

// FetchParams returns the store parameters for f. Backward requests read in
// flipped order so the store only ever returns records after the cursor; the
// caller reverses them. The limit includes one probe record.
func (p *Plan[T]) FetchParams(f filter.Node) realestates.FetchParams {
	orderBy := p.OrderBy
	if p.Direction() == realestates.Prev {
		orderBy = realestates.Reverse(orderBy)
	}

	return realestates.FetchParams{
		Filter:  f,
		Cursor:  p.Cursor,
		OrderBy: orderBy,
		Limit:   p.Count + 1,
	}
}

// Compare is the query order comparator.
func (p *Plan[T]) Compare(a, b filter.Document) int {
	return Comparator(p.OrderBy)(a, b)
}

// Comparator orders documents lexicographically over orderBy. Documents
// missing a key sort before documents that have it.
func Comparator(orderBy []realestates.OrderBy) func(a, b filter.Document) int {
	return func(a, b filter.Document) int {
		for _, o := range orderBy {
			cmp := compareFirst(a.Values(o.Column), b.Values(o.Column))
			if cmp == 0 {
				continue
			}
			if o.Desc {
				return -cmp
			}
			return cmp
		}
		return 0
	}
}

func compareFirst(a, b []any) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		return -1
	case len(b) == 0:
		return 1
	}
	cmp, _ := filter.CompareValues(a[0], b[0])
	return cmp
}

// Boundary returns the keyset predicate selecting records strictly after
// cursor in orderBy order:
//
//	k1 op v1 OR (k1 = v1 AND k2 op v2) OR ...
//
// where op is "<" for descending keys and ">" for ascending ones. A nil
// cursor selects everything.
func Boundary(orderBy []realestates.OrderBy, cursor *realestates.CursorPosition) filter.Node {
	if cursor == nil || len(cursor.Values) == 0 || len(orderBy) == 0 {
		return filter.All{}
	}

	branches := make([]filter.Node, 0, len(orderBy))
	for i, o := range orderBy {
		val, ok := cursor.Values[o.Column]
		if !ok {
			return filter.All{}
		}

		nodes := make([]filter.Node, 0, i+1)
		for _, prev := range orderBy[:i] {
			nodes = append(nodes, filter.Cmp(prev.Column, filter.OpEq, cursor.Values[prev.Column]))
		}
		op := filter.OpGt
		if o.Desc {
			op = filter.OpLt
		}
		nodes = append(nodes, filter.Cmp(o.Column, op, val))

		branches = append(branches, filter.Conjoin(nodes...))
	}

	return filter.Disjoin(branches...)
}
