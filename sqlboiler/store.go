package sqlboiler

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"

	"github.com/nrfta/realestates-go"
)

var (
	quotedTable   = quote(Table)
	quotedColumns = strings.Join(strmangle.IdentQuoteSlice('"', '"', allColumns), ", ")

	insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quotedTable, quotedColumns, strmangle.Placeholders(true, len(allColumns), 1, 1))
	selectOneSQL = fmt.Sprintf(`SELECT %s FROM %s WHERE "id" = $1`, quotedColumns, quotedTable)
	updateSQL    = fmt.Sprintf(`UPDATE %s SET %s WHERE "id" = $1`,
		quotedTable, strmangle.SetParamNames(`"`, `"`, 2, allColumns[1:]))
	deleteSQL = fmt.Sprintf(`DELETE FROM %s WHERE "id" = $1`, quotedTable)
)

func (s *Store) Create(ctx context.Context, re *realestates.RealEstate) error {
	row, err := toRow(re)
	if err != nil {
		return err
	}
	if _, err := queries.Raw(insertSQL, row.values()...).ExecContext(ctx, s.exec); err != nil {
		return errors.Wrap(err, "sqlboiler: unable to insert into real_estates")
	}
	return nil
}

func (s *Store) FindOne(ctx context.Context, id string) (*realestates.RealEstate, error) {
	row := &realEstateRow{}
	err := queries.Raw(selectOneSQL, id).Bind(ctx, s.exec, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, realestates.ErrNoRecord
	}
	if err != nil {
		return nil, errors.Wrap(err, "sqlboiler: unable to select from real_estates")
	}
	return row.model()
}

func (s *Store) Update(ctx context.Context, re *realestates.RealEstate) error {
	row, err := toRow(re)
	if err != nil {
		return err
	}
	result, err := queries.Raw(updateSQL, row.values()...).ExecContext(ctx, s.exec)
	if err != nil {
		return errors.Wrap(err, "sqlboiler: unable to update real_estates row")
	}
	return affected(result, "update")
}

func (s *Store) Remove(ctx context.Context, id string) error {
	result, err := queries.Raw(deleteSQL, id).ExecContext(ctx, s.exec)
	if err != nil {
		return errors.Wrap(err, "sqlboiler: unable to delete from real_estates")
	}
	return affected(result, "delete")
}

func affected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "sqlboiler: failed to get rows affected by %s", op)
	}
	if n == 0 {
		return realestates.ErrNoRecord
	}
	return nil
}
