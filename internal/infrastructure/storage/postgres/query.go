package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"szafa/internal/core/apperror"
)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Get scans the single row of q into dst. A missing row yields apperror.CodeNotFound for
// entity.
func (m *TxManager) Get(ctx context.Context, dst any, q squirrel.Sqlizer, entity string, key any) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, m.GetQuerier(ctx), dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(entity, key)
		}
		return fmt.Errorf("get %s: %w", entity, err)
	}
	return nil
}

// Find is Get for optional rows: it reports false instead of failing when nothing matches.
func (m *TxManager) Find(ctx context.Context, dst any, q squirrel.Sqlizer) (bool, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, m.GetQuerier(ctx), dst, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Select scans every row of q into dst, a pointer to a slice.
func (m *TxManager) Select(ctx context.Context, dst any, q squirrel.Sqlizer) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, m.GetQuerier(ctx), dst, sql, args...)
}

// Exec runs q and returns the number of affected rows. Constraint violations come back as
// application errors.
func (m *TxManager) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build statement: %w", err)
	}
	tag, err := m.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, WrapDBError(err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of rows q selects.
func (m *TxManager) Count(ctx context.Context, q squirrel.SelectBuilder) (int64, error) {
	sql, args, err := Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int64
	if err := m.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Insert stores v in table using its "db" tags, limited to columns.
func (m *TxManager) Insert(ctx context.Context, table string, columns []string, v any) error {
	data := StructToMap(v)
	values := make(map[string]any, len(columns))
	for _, col := range columns {
		if val, ok := data[col]; ok {
			values[col] = val
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("insert %s: no columns", table)
	}
	if _, err := m.Exec(ctx, Builder().Insert(table).SetMap(values)); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Page applies limit and offset to q.
func Page(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
