package filter

import (
	"encoding/json"
	"strings"
	"time"
)

// Document is anything a predicate tree can be evaluated against.
type Document interface {
	// Values returns the values stored under field. Scalar fields return a
	// single value, array fields return one value per element and absent
	// fields return nil.
	Values(field string) []any

	// Elements returns the sub-documents of an array field.
	Elements(field string) []Document
}

// Match evaluates node against doc. A nil node matches.
//
// Comparisons follow document store semantics: a leaf on an array-valued
// field matches when any element matches, OpNe and OpNin match only when no
// element equals the operand, and comparing values of different kinds is false.
func Match(node Node, doc Document) bool {
	switch n := node.(type) {
	case nil, All:
		return true
	case None:
		return false
	case And:
		for _, child := range n.Nodes {
			if !Match(child, doc) {
				return false
			}
		}
		return true
	case Or:
		for _, child := range n.Nodes {
			if Match(child, doc) {
				return true
			}
		}
		return false
	case Nor:
		for _, child := range n.Nodes {
			if Match(child, doc) {
				return false
			}
		}
		return true
	case ElemMatch:
		for _, elem := range doc.Elements(n.Field) {
			if Match(n.Node, elem) {
				return true
			}
		}
		return false
	case Compare:
		return matchCompare(n, doc.Values(n.Field))
	}
	return false
}

func matchCompare(c Compare, values []any) bool {
	switch c.Op {
	case OpEq:
		if c.Value == nil {
			return len(values) == 0
		}
		return anyEqual(values, c.Value)
	case OpNe:
		if c.Value == nil {
			return len(values) > 0
		}
		return !anyEqual(values, c.Value)
	case OpIn:
		for _, operand := range asList(c.Value) {
			if anyEqual(values, operand) {
				return true
			}
		}
		return false
	case OpNin:
		for _, operand := range asList(c.Value) {
			if anyEqual(values, operand) {
				return false
			}
		}
		return true
	}

	for _, v := range values {
		cmp, ok := CompareValues(v, c.Value)
		if !ok {
			continue
		}
		switch c.Op {
		case OpGt:
			if cmp > 0 {
				return true
			}
		case OpGte:
			if cmp >= 0 {
				return true
			}
		case OpLt:
			if cmp < 0 {
				return true
			}
		case OpLte:
			if cmp <= 0 {
				return true
			}
		}
	}
	return false
}

func anyEqual(values []any, operand any) bool {
	for _, v := range values {
		if cmp, ok := CompareValues(v, operand); ok && cmp == 0 {
			return true
		}
	}
	return false
}

func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return []any{v}
}

// CompareValues orders two scalar values. Numbers compare numerically across
// integer and float kinds, times chronologically (an RFC 3339 string is
// accepted on either side of a time), strings lexically and booleans with
// false before true. The second result is false when the kinds differ.
func CompareValues(a, b any) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		tb, ok := asTime(b)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}
	if tb, ok := b.(time.Time); ok {
		ta, ok := asTime(a)
		if !ok {
			return 0, false
		}
		return ta.Compare(tb), true
	}

	if fa, ok := asFloat(a); ok {
		fb, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}

	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(va, vb), true
	case bool:
		vb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case va == vb:
			return 0, true
		case !va:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
