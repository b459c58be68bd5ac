package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// CopyRows bulk-inserts rows with the COPY protocol. Staged deliveries can carry hundreds
// of lines; COPY keeps their ingestion to one round-trip. It requires a transaction.
func (m *TxManager) CopyRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	t := m.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("copy into %s requires a transaction", table)
	}
	for _, row := range rows {
		for i, v := range row {
			converted, err := copyValue(v)
			if err != nil {
				return 0, fmt.Errorf("copy into %s: column %s: %w", table, columns[i], err)
			}
			row[i] = converted
		}
	}
	n, err := t.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, WrapDBError(fmt.Errorf("copy into %s: %w", table, err))
	}
	return n, nil
}

// copyValue converts values COPY cannot send in binary form. Money travels as numeric.
func copyValue(v any) (any, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		var n pgtype.Numeric
		if err := n.Scan(val.String()); err != nil {
			return nil, err
		}
		return n, nil
	case *decimal.Decimal:
		if val == nil {
			return nil, nil
		}
		return copyValue(*val)
	}
	return v, nil
}

// BatchQuery is one statement of a batch.
type BatchQuery struct {
	SQL  string
	Args []any
}

// ExecBatch sends queries in a single round-trip and returns the total number of affected
// rows. It requires a transaction.
func (m *TxManager) ExecBatch(ctx context.Context, queries []BatchQuery) (int64, error) {
	t := m.GetTx(ctx)
	if t == nil {
		return 0, fmt.Errorf("batch requires a transaction")
	}
	if len(queries) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q.SQL, q.Args...)
	}

	results := t.SendBatch(ctx, batch)
	defer results.Close()

	var total int64
	for range queries {
		tag, err := results.Exec()
		if err != nil {
			return 0, WrapDBError(fmt.Errorf("batch statement: %w", err))
		}
		total += tag.RowsAffected()
	}
	return total, nil
}
