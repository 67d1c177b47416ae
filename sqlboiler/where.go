package sqlboiler

import (
	"fmt"
	"strings"

	"github.com/friendsofgo/errors"

	"github.com/nrfta/realestates-go/filter"
)

// Where translates a predicate tree into a SQL boolean expression with "?"
// placeholders and its arguments.
//
// ElemMatch over the JSONB array columns becomes an EXISTS subquery over
// jsonb_array_elements; inside it, fields address the element object.
// Comparisons follow document store semantics: ne and nin also match
// missing values, and array fields match when any element does.
func Where(n filter.Node) (string, []any, error) {
	b := &whereBuilder{}
	clause, err := b.node(n, nil)
	if err != nil {
		return "", nil, err
	}
	return clause, b.args, nil
}

type whereBuilder struct {
	args    []any
	aliases int
}

// elem is the element scope of an ElemMatch. A nil elem is the row.
type elem struct {
	alias string
}

func (b *whereBuilder) node(n filter.Node, scope *elem) (string, error) {
	switch n := n.(type) {
	case nil, filter.All:
		return "TRUE", nil
	case filter.None:
		return "FALSE", nil
	case filter.And:
		return b.join(n.Nodes, " AND ", "TRUE", scope)
	case filter.Or:
		return b.join(n.Nodes, " OR ", "FALSE", scope)
	case filter.Nor:
		clause, err := b.join(n.Nodes, " OR ", "FALSE", scope)
		if err != nil {
			return "", err
		}
		return "NOT " + clause, nil
	case filter.Compare:
		if scope != nil {
			return b.elemCompare(n, scope)
		}
		col, err := scalarColumn(n.Field)
		if err != nil {
			return "", err
		}
		return b.compare(col, n.Op, n.Value)
	case filter.ElemMatch:
		if scope != nil {
			return "", errors.Errorf("sqlboiler: nested element match on %q", n.Field)
		}
		col := column(n.Field)
		if !jsonArrayColumns[col] {
			return "", errors.Errorf("sqlboiler: %q is not an element array", n.Field)
		}
		b.aliases++
		inner := &elem{alias: fmt.Sprintf("e%d", b.aliases)}
		clause, err := b.node(n.Node, inner)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM jsonb_array_elements(%s) AS %s WHERE %s)",
			quote(col), inner.alias, clause), nil
	}
	return "", errors.Errorf("sqlboiler: unsupported filter node %T", n)
}

func (b *whereBuilder) join(nodes []filter.Node, sep, empty string, scope *elem) (string, error) {
	if len(nodes) == 0 {
		return empty, nil
	}
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		clause, err := b.node(n, scope)
		if err != nil {
			return "", err
		}
		parts = append(parts, clause)
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// elemCompare compares a field of the element object. "actions" is the only
// array inside an element and is matched element-wise.
func (b *whereBuilder) elemCompare(c filter.Compare, scope *elem) (string, error) {
	if c.Field != "actions" {
		expr := fmt.Sprintf("(%s->>'%s')", scope.alias, sqlSafeKey(c.Field))
		return b.compare(expr, c.Op, c.Value)
	}

	value := scope.alias + "a.v"
	from := fmt.Sprintf("jsonb_array_elements_text(%s->'actions') AS %sa(v)", scope.alias, scope.alias)
	exists := func(op filter.Op) (string, error) {
		clause, err := b.compare(value, op, c.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s)", from, clause), nil
	}

	switch c.Op {
	case filter.OpNe:
		clause, err := exists(filter.OpEq)
		return "NOT " + clause, err
	case filter.OpNin:
		clause, err := exists(filter.OpIn)
		return "NOT " + clause, err
	}
	return exists(c.Op)
}

func (b *whereBuilder) compare(expr string, op filter.Op, value any) (string, error) {
	switch op {
	case filter.OpEq:
		if value == nil {
			return expr + " IS NULL", nil
		}
		return b.bind(expr+" = ?", value), nil
	case filter.OpNe:
		if value == nil {
			return expr + " IS NOT NULL", nil
		}
		return b.bind(expr+" IS DISTINCT FROM ?", value), nil
	case filter.OpGt:
		return b.bind(expr+" > ?", value), nil
	case filter.OpGte:
		return b.bind(expr+" >= ?", value), nil
	case filter.OpLt:
		return b.bind(expr+" < ?", value), nil
	case filter.OpLte:
		return b.bind(expr+" <= ?", value), nil
	case filter.OpIn, filter.OpNin:
		values, err := list(value)
		if err != nil {
			return "", err
		}
		if len(values) == 0 {
			if op == filter.OpIn {
				return "FALSE", nil
			}
			return "TRUE", nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		b.args = append(b.args, values...)
		if op == filter.OpIn {
			return fmt.Sprintf("%s IN (%s)", expr, marks), nil
		}
		return fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", expr, expr, marks), nil
	}
	return "", errors.Errorf("sqlboiler: unsupported operator %q", op)
}

func (b *whereBuilder) bind(clause string, value any) string {
	b.args = append(b.args, convertValueForSQL(value))
	return clause
}

func list(value any) ([]any, error) {
	switch v := value.(type) {
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = convertValueForSQL(x)
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	}
	return nil, errors.Errorf("sqlboiler: expected a list operand, got %T", value)
}

// sqlSafeKey keeps only identifier characters of an element key.
func sqlSafeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, key)
}
