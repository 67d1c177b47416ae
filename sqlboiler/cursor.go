package sqlboiler

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"

	"github.com/nrfta/realestates-go"
)

// FetchParamsToQueryMods converts FetchParams into SQLBoiler query mods.
//
// The conversion follows these rules:
//   - Filter → rawWhereClause(Where(filter))
//   - Cursor → rawWhereClause("col1 < ? OR (col1 = ? AND col2 > ?)")
//   - Limit → qm.Limit(n)
//   - OrderBy → qm.OrderBy(`"col1" DESC, "col2" ASC`)
//
// Requirements:
//   - PostgreSQL (JSONB functions in element matches)
//   - Composite indexes on the sort columns, see db/migrations
func FetchParamsToQueryMods(params realestates.FetchParams) ([]qm.QueryMod, error) {
	mods := []qm.QueryMod{}

	if params.Filter != nil {
		clause, args, err := Where(params.Filter)
		if err != nil {
			return nil, err
		}
		if clause != "TRUE" {
			mods = append(mods, rawWhereClause(clause, args))
		}
	}

	if params.Cursor != nil && len(params.OrderBy) > 0 {
		whereClause, args, err := buildKeysetWhereClause(params.Cursor, params.OrderBy)
		if err != nil {
			return nil, err
		}
		if whereClause != "" {
			mods = append(mods, rawWhereClause(whereClause, args))
		}
	}

	if params.Limit > 0 {
		mods = append(mods, qm.Limit(params.Limit))
	}

	if len(params.OrderBy) > 0 {
		clause, err := buildOrderByClause(params.OrderBy)
		if err != nil {
			return nil, err
		}
		mods = append(mods, qm.OrderBy(clause))
	}

	return mods, nil
}

// buildKeysetWhereClause builds a WHERE clause for keyset pagination using
// the expanded comparison:
//
//	col1 OP1 ? OR (col1 = ? AND col2 OP2 ?)
//
// Each key carries its own operator, "<" for DESC and ">" for ASC, so mixed
// direction orders such as "price DESC, id ASC" page correctly.
//
// Returns an empty clause if the cursor lacks a key of the order.
func buildKeysetWhereClause(cursor *realestates.CursorPosition, orderBy []realestates.OrderBy) (string, []any, error) {
	if cursor == nil || len(cursor.Values) == 0 || len(orderBy) == 0 {
		return "", nil, nil
	}

	var parts []string
	var args []any

	for i, order := range orderBy {
		val, exists := cursor.Values[order.Column]
		if !exists {
			return "", nil, nil
		}

		col, err := scalarColumn(order.Column)
		if err != nil {
			return "", nil, err
		}
		operator := ">"
		if order.Desc {
			operator = "<"
		}

		if i == 0 {
			parts = append(parts, fmt.Sprintf("%s %s ?", col, operator))
			args = append(args, convertValueForSQL(val))
			continue
		}

		var equalityParts []string
		for _, prevOrder := range orderBy[:i] {
			prevCol, err := scalarColumn(prevOrder.Column)
			if err != nil {
				return "", nil, err
			}
			equalityParts = append(equalityParts, fmt.Sprintf("%s = ?", prevCol))
			args = append(args, convertValueForSQL(cursor.Values[prevOrder.Column]))
		}

		parts = append(parts, fmt.Sprintf("(%s AND %s %s ?)",
			strings.Join(equalityParts, " AND "),
			col,
			operator,
		))
		args = append(args, convertValueForSQL(val))
	}

	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

// buildOrderByClause renders the order with quoted columns.
func buildOrderByClause(orderBy []realestates.OrderBy) (string, error) {
	parts := make([]string, 0, len(orderBy))
	for _, o := range orderBy {
		col, err := scalarColumn(o.Column)
		if err != nil {
			return "", err
		}
		if o.Desc {
			parts = append(parts, col+" DESC")
		} else {
			parts = append(parts, col+" ASC")
		}
	}
	return strings.Join(parts, ", "), nil
}

// rawWhereClause creates a custom query mod that appends clause and its
// arguments to the query's WHERE buffer.
func rawWhereClause(clause string, args []any) qm.QueryMod {
	return qm.QueryModFunc(func(q *queries.Query) {
		queries.AppendWhere(q, clause, args...)
	})
}

// convertValueForSQL converts JSON-decoded values to proper SQL types.
// JSON unmarshaling can change types (e.g., int → float64), so we normalize them here.
func convertValueForSQL(val any) any {
	switch v := val.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		return v
	case float64, float32, int, int64, bool, time.Time, nil:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
