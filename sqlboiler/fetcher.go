// Package sqlboiler is a realestates.Store on PostgreSQL built with
// SQLBoiler query mods.
//
// Lists are assembled from FetchParams by FetchParamsToQueryMods: the
// predicate tree becomes a WHERE expression (JSONB EXISTS subqueries for
// tags and permissions), the keyset cursor becomes the expanded comparison,
// and the N+1 limit and order are applied as given. Single record reads and
// writes are raw statements bound through queries.Raw.
//
// Example usage:
//
//	conn, _ := db.Open(ctx, databaseURL)
//	store := sqlboiler.New(conn)
//	items, err := store.Find(ctx, plan.FetchParams(scoped.Filter))
package sqlboiler

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/drivers"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/realestates-go"
)

var dialect = drivers.Dialect{
	LQ: '"',
	RQ: '"',

	UseIndexPlaceholders:    true,
	UseLastInsertID:         false,
	UseSchema:               false,
	UseDefaultKeyword:       true,
	UseAutoColumns:          false,
	UseTopClause:            false,
	UseOutputClause:         false,
	UseCaseWhenExistsClause: false,
}

// Store implements realestates.Store on a real_estates table.
type Store struct {
	exec boil.ContextExecutor
}

var _ realestates.Store = (*Store)(nil)

// New creates a Store. exec is usually a *sql.DB.
func New(exec boil.ContextExecutor) *Store {
	return &Store{exec: exec}
}

// NewQuery builds a select over the real estates table with the Postgres
// dialect.
func NewQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &dialect)
	qm.Apply(q, append([]qm.QueryMod{qm.From(Table)}, mods...)...)
	return q
}

// Find retrieves one fetch worth of rows. The query mods are built from
// params by FetchParamsToQueryMods.
func (s *Store) Find(ctx context.Context, params realestates.FetchParams) ([]*realestates.RealEstate, error) {
	mods, err := FetchParamsToQueryMods(params)
	if err != nil {
		return nil, err
	}

	var rows []*realEstateRow
	if err := NewQuery(mods...).Bind(ctx, s.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "sqlboiler: failed to bind real estates")
	}

	out := make([]*realestates.RealEstate, 0, len(rows))
	for _, row := range rows {
		re, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}
