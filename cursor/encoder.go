// Package cursor plans keyset (cursor-based) paging for real estate lists.
//
// Keyset paging uses the values of the order keys of the page-adjacent
// record to resume a listing, so pages stay cheap regardless of depth and
// no server-side session is kept.
//
// Key Features:
//   - Schema-driven sort allow-list with fixed tiebreakers (id ASC)
//   - Opaque, self-describing cursors (base64url JSON with short keys)
//   - Bidirectional paging: "next" reads forwards, "prev" reads backwards
//     with flipped order and is reversed by the caller
//   - N+1 probe to detect further pages without counting
//
// Cursor Format:
//
//	Cursors are base64url-encoded JSON objects holding the direction and the
//	order key values under short keys:
//	{"d":"n","v":{"p":45000,"i":"8b0d..."}}
//	→ eyJkIjoibiIsInYiOnsicCI6NDUwMDAsImkiOiI4YjBkLi4uIn19
//
// Column names never appear in a cursor.
//
// Limitations:
//   - Cursors are loosely consistent: records inserted or deleted between
//     requests can shift which records fall on either side of a boundary.
package cursor

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/nrfta/realestates-go"
)

// ErrInvalidCursor is returned for tokens that do not decode against the
// current order.
var ErrInvalidCursor = errors.New("invalid cursor")

const (
	dirNext = "n"
	dirPrev = "p"
)

type token struct {
	Direction string         `json:"d"`
	Values    map[string]any `json:"v"`
}

// Spec is the runtime configuration for cursor encoding and decoding of one
// order. It implements realestates.CursorEncoder[T].
type Spec[T any] struct {
	schema  *Schema[T]
	orderBy []realestates.OrderBy
}

var _ realestates.CursorEncoder[*realestates.RealEstate] = (*Spec[*realestates.RealEstate])(nil)

// OrderBy returns the complete order, tiebreakers included.
func (s *Spec[T]) OrderBy() []realestates.OrderBy {
	return s.orderBy
}

// Encode implements CursorEncoder.Encode using short cursor keys.
func (s *Spec[T]) Encode(item T, dir realestates.Direction) (*string, error) {
	t := token{Direction: dirNext, Values: make(map[string]any, len(s.orderBy))}
	if dir == realestates.Prev {
		t.Direction = dirPrev
	}

	for _, o := range s.orderBy {
		spec := s.schema.field(o.Column)
		if spec == nil {
			continue
		}
		t.Values[spec.cursorKey] = spec.extractor(item)
	}

	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	encoded := base64.RawURLEncoding.EncodeToString(data)
	return &encoded, nil
}

// Decode implements CursorEncoder.Decode. The token must carry a value for
// every key of the order and nothing else.
func (s *Spec[T]) Decode(cursor string) (*realestates.CursorPosition, error) {
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var t token
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, ErrInvalidCursor
	}

	pos := &realestates.CursorPosition{Values: make(map[string]any, len(s.orderBy))}
	switch t.Direction {
	case dirNext:
		pos.Direction = realestates.Next
	case dirPrev:
		pos.Direction = realestates.Prev
	default:
		return nil, ErrInvalidCursor
	}

	if len(t.Values) != len(s.orderBy) {
		return nil, ErrInvalidCursor
	}
	for _, o := range s.orderBy {
		spec := s.schema.field(o.Column)
		if spec == nil {
			return nil, ErrInvalidCursor
		}
		v, ok := t.Values[spec.cursorKey]
		if !ok {
			return nil, ErrInvalidCursor
		}
		pos.Values[o.Column] = normalize(v)
	}

	return pos, nil
}

// normalize restores values JSON flattened: RFC 3339 strings become times.
func normalize(v any) any {
	if s, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return v
}
