// Package filter models list filters as a predicate tree that is independent
// of any particular storage query language.
//
// A tree is built from logical nodes (And, Or, Nor), comparison leaves
// (Compare) and array element matches (ElemMatch). Stores translate the tree
// into their own dialect (SQL, bson); the memory store and single-record
// visibility checks evaluate it directly with Match.
//
// Example:
//
//	// price <= 50000 AND tags contains {name: "location:postal", value: "00700"}
//	node := filter.Conjoin(
//	    filter.Cmp("price", filter.OpLte, 50000.0),
//	    filter.ElemMatch{Field: "tags", Node: filter.Conjoin(
//	        filter.Cmp("name", filter.OpEq, "location:postal"),
//	        filter.Cmp("value", filter.OpEq, "00700"),
//	    )},
//	)
package filter

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpNe  Op = "ne"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
	OpNin Op = "nin"
)

// Node is an element of a predicate tree.
type Node interface {
	node()
}

// And matches when every child matches. An empty And matches everything.
type And struct {
	Nodes []Node
}

// Or matches when at least one child matches. An empty Or matches nothing.
type Or struct {
	Nodes []Node
}

// Nor matches when no child matches.
type Nor struct {
	Nodes []Node
}

// Compare is a leaf comparing a field with a value.
// For OpIn and OpNin the value is a []any.
type Compare struct {
	Field string
	Op    Op
	Value any
}

// ElemMatch matches when at least one element of the array field satisfies Node.
// Field names inside Node refer to the element's own fields.
type ElemMatch struct {
	Field string
	Node  Node
}

// All matches every document.
type All struct{}

// None matches no document.
type None struct{}

func (And) node()       {}
func (Or) node()        {}
func (Nor) node()       {}
func (Compare) node()   {}
func (ElemMatch) node() {}
func (All) node()       {}
func (None) node()      {}

// Cmp builds a comparison leaf.
func Cmp(field string, op Op, value any) Compare {
	return Compare{Field: field, Op: op, Value: value}
}

// Conjoin combines nodes with AND. Nil and All nodes are dropped and nested
// Ands are flattened. It returns All when nothing is left and the single node
// when only one remains.
func Conjoin(nodes ...Node) Node {
	flat := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case nil, All, *All:
		case And:
			switch inner := Conjoin(v.Nodes...).(type) {
			case And:
				flat = append(flat, inner.Nodes...)
			case All:
			default:
				flat = append(flat, inner)
			}
		default:
			flat = append(flat, n)
		}
	}

	switch len(flat) {
	case 0:
		return All{}
	case 1:
		return flat[0]
	}
	return And{Nodes: flat}
}

// Disjoin combines nodes with OR. It returns the single node when only one
// is given and None when none are.
func Disjoin(nodes ...Node) Node {
	kept := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if isAll(n) {
			return All{}
		}
		kept = append(kept, n)
	}

	switch len(kept) {
	case 0:
		return None{}
	case 1:
		return kept[0]
	}
	return Or{Nodes: kept}
}

func isAll(n Node) bool {
	switch n.(type) {
	case All, *All:
		return true
	}
	return false
}
