package stock

import (
	"context"
	"fmt"
	"time"

	"szafa/internal/core/id"
	"szafa/internal/core/tx"
	"szafa/pkg/logger"
)

// Service is the stock ledger. ApplyMovement is the only way quantities change.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
	now       func() time.Time
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		now:       time.Now,
	}
}

// ApplyMovement adds the signed quantity to the (product, size) row, creating the row on
// first use, and appends the matching movement. Both writes share one transaction; when
// called inside a caller's transaction they join it.
//
// The resulting quantity is floored at zero. The movement keeps the requested quantity, so
// clamped volume shows up as a gap between history and balance rather than a negative row.
func (s *Service) ApplyMovement(ctx context.Context, in MovementInput) (Balance, error) {
	if err := in.Validate(); err != nil {
		return Balance{}, err
	}

	var result Balance
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		balance, err := s.repo.LockBalance(ctx, in.ProductID, in.Size)
		if err != nil {
			return fmt.Errorf("lock balance: %w", err)
		}

		before := balance.Quantity
		at := s.now().UTC()
		if balance.Apply(in.Quantity) {
			logger.Warn(ctx, "stock clamped at zero",
				"product_id", in.ProductID,
				"size", in.Size,
				"before", before,
				"delta", in.Quantity,
			)
		}
		balance.UpdatedAt = at

		if err := s.repo.SaveBalance(ctx, balance); err != nil {
			return fmt.Errorf("save balance: %w", err)
		}
		if err := s.repo.AppendMovement(ctx, in.toMovement(at)); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		result = balance
		return nil
	})
	if err != nil {
		return Balance{}, err
	}

	logger.Debug(ctx, "stock movement applied",
		"product_id", in.ProductID,
		"size", in.Size,
		"kind", in.Kind,
		"quantity", in.Quantity,
		"document_type", in.DocumentType,
		"document_number", in.DocumentNumber,
		"balance", result.Quantity,
	)

	return result, nil
}

// Adjust posts a manual correction not tied to any document.
func (s *Service) Adjust(ctx context.Context, productID id.ID, size string, delta int, note string) (Balance, error) {
	balance, err := s.ApplyMovement(ctx, MovementInput{
		ProductID:    productID,
		Size:         size,
		Quantity:     delta,
		Kind:         KindAdjustment,
		DocumentType: OriginAdjustment,
		Note:         note,
	})
	if err != nil {
		return Balance{}, err
	}

	logger.Info(ctx, "manual stock adjustment",
		"product_id", productID,
		"size", size,
		"delta", delta,
		"balance", balance.Quantity,
	)
	return balance, nil
}

// GetBalance returns the on-hand quantity of a (product, size) pair.
func (s *Service) GetBalance(ctx context.Context, productID id.ID, size string) (Balance, error) {
	var b Balance
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		b, err = s.repo.GetBalance(ctx, productID, size)
		return err
	})
	return b, err
}

// ListBalances returns balances with product data.
func (s *Service) ListBalances(ctx context.Context, filter BalanceFilter) ([]BalanceView, error) {
	var views []BalanceView
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		views, err = s.repo.ListBalances(ctx, filter)
		return err
	})
	return views, err
}

// ListMovements returns movement history.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 100
	}
	var movements []Movement
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		movements, err = s.repo.ListMovements(ctx, filter)
		return err
	})
	return movements, err
}

// BackfillDocumentNumbers repairs movements recorded before document numbers were stored.
func (s *Service) BackfillDocumentNumbers(ctx context.Context) (int64, error) {
	var updated int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.repo.BackfillDocumentNumbers(ctx)
		updated = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("backfill document numbers: %w", err)
	}

	logger.Info(ctx, "movement document numbers backfilled", "updated", updated)
	return updated, nil
}
