package stock

import (
	"context"
	"time"

	"szafa/internal/core/id"
)

// Repository persists balances and movements.
type Repository interface {
	// LockBalance returns the (product, size) row locked until the surrounding transaction
	// ends, inserting it with quantity 0 first when missing.
	LockBalance(ctx context.Context, productID id.ID, size string) (Balance, error)

	// SaveBalance writes the quantity of an existing row.
	SaveBalance(ctx context.Context, balance Balance) error

	// AppendMovement inserts one movement. Movements are never updated or deleted.
	AppendMovement(ctx context.Context, movement Movement) error

	// GetBalance returns the current row or a zero balance when none exists.
	GetBalance(ctx context.Context, productID id.ID, size string) (Balance, error)

	// ListBalances returns balances joined with product data.
	ListBalances(ctx context.Context, filter BalanceFilter) ([]BalanceView, error)

	// ListMovements returns movement history, newest first.
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)

	// BackfillDocumentNumbers fills missing document numbers of DW, PZ and RETURN movements
	// from their origin documents and returns the number of rows updated.
	BackfillDocumentNumbers(ctx context.Context) (int64, error)
}

// BalanceFilter narrows balance listings.
type BalanceFilter struct {
	ProductID   *id.ID
	ExcludeZero bool
}

// MovementFilter narrows movement history.
type MovementFilter struct {
	ProductID    *id.ID
	Size         *string
	Kind         *Kind
	DocumentType string
	DocumentID   *id.ID
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}
