package cursor

import (
	"fmt"

	"github.com/nrfta/realestates-go"
)

// Direction represents the sort direction for a fixed field.
type Direction bool

const (
	ASC  Direction = false
	DESC Direction = true
)

// fieldSpec defines a single sortable field in a schema.
type fieldSpec[T any] struct {
	name      string      // Public field name: "createdAt"
	cursorKey string      // Short key for cursor: "c"
	extractor func(T) any // Extract value from item
	isFixed   bool        // Fixed vs user-sortable
	direction *Direction  // For fixed fields (nil for user-sortable)
	position  int         // Declaration order
}

// Schema defines the sortable and fixed fields for keyset paging.
// It is the single source of truth for which keys a client may sort by,
// which tiebreakers are always appended, and which short keys appear in
// cursors.
//
// Example:
//
//	var schema = cursor.NewSchema[*realestates.RealEstate]().
//	    Field("price", "p", func(r *realestates.RealEstate) any { return r.Price }).
//	    Field("createdAt", "c", func(r *realestates.RealEstate) any { return r.CreatedAt }).
//	    FixedField("id", cursor.ASC, "i", func(r *realestates.RealEstate) any { return r.ID }).
//	    WithDefault(realestates.OrderBy{Column: "createdAt", Desc: true})
type Schema[T any] struct {
	sortableFields map[string]*fieldSpec[T]
	fixedFields    []*fieldSpec[T]
	allFields      []*fieldSpec[T]
	byKey          map[string]*fieldSpec[T]
	defaultSort    []realestates.OrderBy
	nextPosition   int
}

// NewSchema creates a new Schema.
func NewSchema[T any]() *Schema[T] {
	return &Schema[T]{
		sortableFields: make(map[string]*fieldSpec[T]),
		fixedFields:    make([]*fieldSpec[T], 0),
		allFields:      make([]*fieldSpec[T], 0),
		byKey:          make(map[string]*fieldSpec[T]),
	}
}

// Field adds a user-sortable field to the schema.
func (s *Schema[T]) Field(name, cursorKey string, extractor func(T) any) *Schema[T] {
	spec := &fieldSpec[T]{
		name:      name,
		cursorKey: cursorKey,
		extractor: extractor,
		position:  s.nextPosition,
	}
	s.nextPosition++

	s.sortableFields[name] = spec
	s.allFields = append(s.allFields, spec)
	s.byKey[cursorKey] = spec
	return s
}

// FixedField adds a field that is always part of the order and the cursor
// but cannot be chosen by clients.
//
// Declaration order matters:
//   - FixedField before Field: prepended to the order (partitioning)
//   - FixedField after Field: appended to the order (tiebreaker)
func (s *Schema[T]) FixedField(name string, direction Direction, cursorKey string, extractor func(T) any) *Schema[T] {
	spec := &fieldSpec[T]{
		name:      name,
		cursorKey: cursorKey,
		extractor: extractor,
		isFixed:   true,
		direction: &direction,
		position:  s.nextPosition,
	}
	s.nextPosition++

	s.fixedFields = append(s.fixedFields, spec)
	s.allFields = append(s.allFields, spec)
	s.byKey[cursorKey] = spec
	return s
}

// WithDefault sets the user sort applied when a query names none.
func (s *Schema[T]) WithDefault(sorts ...realestates.OrderBy) *Schema[T] {
	s.defaultSort = sorts
	return s
}

// Sortable reports whether clients may sort by name.
func (s *Schema[T]) Sortable(name string) bool {
	_, ok := s.sortableFields[name]
	return ok
}

// EncoderFor validates the client sort and returns the Spec that encodes and
// decodes cursors for the resulting order.
func (s *Schema[T]) EncoderFor(userSorts []realestates.OrderBy) (*Spec[T], error) {
	if len(userSorts) == 0 {
		userSorts = s.defaultSort
	}

	for _, sort := range userSorts {
		if _, exists := s.sortableFields[sort.Column]; !exists {
			return nil, fmt.Errorf("invalid sort field: %s (not registered in schema)", sort.Column)
		}
	}

	return &Spec[T]{
		schema:  s,
		orderBy: s.BuildOrderBy(userSorts),
	}, nil
}

// BuildOrderBy constructs the complete order including fixed fields.
// Fixed fields declared before user-sortable fields are prepended and fixed
// fields declared after them are appended. An empty user sort falls back to
// the schema default.
//
// Example:
//
//	schema.Field("price", ...)              // User-sortable
//	schema.FixedField("id", ASC, ...)       // Declared last
//
//	BuildOrderBy([{Column: "price", Desc: true}])
//	// Returns: [price DESC, id ASC]
func (s *Schema[T]) BuildOrderBy(userSorts []realestates.OrderBy) []realestates.OrderBy {
	if len(userSorts) == 0 {
		userSorts = s.defaultSort
	}

	firstSortablePos := -1
	lastSortablePos := -1
	for _, spec := range s.allFields {
		if !spec.isFixed {
			if firstSortablePos == -1 {
				firstSortablePos = spec.position
			}
			lastSortablePos = spec.position
		}
	}

	result := make([]realestates.OrderBy, 0, len(userSorts)+len(s.fixedFields))

	// Only fixed fields registered.
	if firstSortablePos == -1 {
		for _, spec := range s.fixedFields {
			result = append(result, realestates.OrderBy{Column: spec.name, Desc: bool(*spec.direction)})
		}
		return result
	}

	for _, spec := range s.fixedFields {
		if spec.position < firstSortablePos {
			result = append(result, realestates.OrderBy{Column: spec.name, Desc: bool(*spec.direction)})
		}
	}

	result = append(result, userSorts...)

	for _, spec := range s.fixedFields {
		if spec.position > lastSortablePos {
			result = append(result, realestates.OrderBy{Column: spec.name, Desc: bool(*spec.direction)})
		}
	}

	return result
}

func (s *Schema[T]) field(name string) *fieldSpec[T] {
	if spec, ok := s.sortableFields[name]; ok {
		return spec
	}
	for _, spec := range s.fixedFields {
		if spec.name == name {
			return spec
		}
	}
	return nil
}
