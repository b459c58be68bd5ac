// Package register_repo provides the PostgreSQL stock register: balances per
// (product, size) and the append-only movement ledger.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/infrastructure/storage/postgres"
)

const (
	balancesTable  = "warehouse_stock"
	movementsTable = "stock_movements"
)

var (
	balanceColumns  = postgres.Columns[stock.Balance]()
	movementColumns = postgres.Columns[stock.Movement]()
)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm *postgres.TxManager
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

var _ stock.Repository = (*StockRepo)(nil)

// LockBalance creates the row when missing and locks it with FOR UPDATE. Concurrent
// movements on the same (product, size) queue on that lock.
func (r *StockRepo) LockBalance(ctx context.Context, productID id.ID, size string) (stock.Balance, error) {
	if r.txm.GetTx(ctx) == nil {
		return stock.Balance{}, fmt.Errorf("lock balance requires a transaction")
	}

	insert := postgres.Builder().
		Insert(balancesTable).
		Columns("product_id", "size", "quantity", "updated_at").
		Values(productID, size, 0, time.Now().UTC()).
		Suffix("ON CONFLICT (product_id, size) DO NOTHING")
	if _, err := r.txm.Exec(ctx, insert); err != nil {
		return stock.Balance{}, fmt.Errorf("ensure balance row: %w", err)
	}

	var b stock.Balance
	q := postgres.Builder().Select(balanceColumns...).From(balancesTable).
		Where(squirrel.Eq{"product_id": productID, "size": size}).
		Suffix("FOR UPDATE")
	if err := r.txm.Get(ctx, &b, q, "warehouse_stock", productID); err != nil {
		return stock.Balance{}, err
	}
	return b, nil
}

func (r *StockRepo) SaveBalance(ctx context.Context, balance stock.Balance) error {
	q := postgres.Builder().Update(balancesTable).
		Set("quantity", balance.Quantity).
		Set("updated_at", balance.UpdatedAt).
		Where(squirrel.Eq{"product_id": balance.ProductID, "size": balance.Size})
	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("warehouse_stock", balance.ProductID)
	}
	return nil
}

func (r *StockRepo) AppendMovement(ctx context.Context, movement stock.Movement) error {
	return r.txm.Insert(ctx, movementsTable, movementColumns, movement)
}

func (r *StockRepo) GetBalance(ctx context.Context, productID id.ID, size string) (stock.Balance, error) {
	b := stock.Balance{ProductID: productID, Size: size}
	q := postgres.Builder().Select(balanceColumns...).From(balancesTable).
		Where(squirrel.Eq{"product_id": productID, "size": size})
	if _, err := r.txm.Find(ctx, &b, q); err != nil {
		return stock.Balance{}, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

func (r *StockRepo) ListBalances(ctx context.Context, filter stock.BalanceFilter) ([]stock.BalanceView, error) {
	q := postgres.Builder().
		Select(
			"s.product_id", "s.size", "s.quantity", "s.updated_at",
			"p.code AS product_code", "p.name AS product_name", "p.unit_price",
		).
		From(balancesTable + " s").
		Join("products p ON p.id = s.product_id").
		OrderBy("p.code", "s.size")
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"s.product_id": *filter.ProductID})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"s.quantity": 0})
	}

	var out []stock.BalanceView
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return out, nil
}

func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	q := postgres.Builder().Select(movementColumns...).From(movementsTable).
		OrderBy("created_at DESC", "id DESC")
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Size != nil {
		q = q.Where(squirrel.Eq{"size": *filter.Size})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"movement_type": *filter.Kind})
	}
	if filter.DocumentType != "" {
		q = q.Where(squirrel.Eq{"document_type": filter.DocumentType})
	}
	if filter.DocumentID != nil {
		q = q.Where(squirrel.Eq{"document_id": *filter.DocumentID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	q = postgres.Page(q, filter.Limit, filter.Offset)

	var out []stock.Movement
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return out, nil
}

// BackfillDocumentNumbers copies numbers from the origin documents. RETURN movements
// reference the issue document the item came from.
func (r *StockRepo) BackfillDocumentNumbers(ctx context.Context) (int64, error) {
	const sql = `
		UPDATE stock_movements m
		SET document_number = d.document_number
		FROM (
			SELECT id, document_number, 'DW' AS origin FROM issue_documents
			UNION ALL
			SELECT id, document_number, 'RETURN' FROM issue_documents
			UNION ALL
			SELECT id, document_number, 'PZ' FROM receipt_documents
		) d
		WHERE m.document_number IS NULL
		  AND m.document_id = d.id
		  AND m.document_type = d.origin`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("backfill document numbers: %w", err)
	}
	return tag.RowsAffected(), nil
}
