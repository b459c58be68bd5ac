package pending

import (
	"context"
	"fmt"

	"szafa/internal/core/id"
	"szafa/internal/core/tx"
	"szafa/internal/domain/catalogs/product"
	"szafa/pkg/logger"
)

// DefaultRelinkBatchSize bounds the lines read and written per round trip.
const DefaultRelinkBatchSize = 500

// ProductFinder bulk-fetches catalog products by code.
type ProductFinder interface {
	ListByCodes(ctx context.Context, codes []string) (map[string]product.Product, error)
}

// Relinker is the retroactive replacement pass: staged lines that still point at a
// placeholder are relinked to the catalog product carrying the same code.
type Relinker struct {
	repo      Repository
	products  ProductFinder
	txManager tx.Manager
	batchSize int
}

// NewRelinker creates a relinker. batchSize <= 0 selects DefaultRelinkBatchSize.
func NewRelinker(repo Repository, products ProductFinder, txManager tx.Manager, batchSize int) *Relinker {
	if batchSize <= 0 {
		batchSize = DefaultRelinkBatchSize
	}
	return &Relinker{repo: repo, products: products, txManager: txManager, batchSize: batchSize}
}

// Run relinks every resolvable line in one transaction and returns how many changed.
// Lines whose code has no product yet are left alone, so running it again is a no-op.
func (r *Relinker) Run(ctx context.Context) (int64, error) {
	var total int64
	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		after := id.Nil()
		for {
			lines, err := r.repo.ListPlaceholderLines(ctx, after, r.batchSize)
			if err != nil {
				return fmt.Errorf("list placeholder lines: %w", err)
			}
			if len(lines) == 0 {
				return nil
			}
			after = lines[len(lines)-1].ItemID

			codes := distinctCodes(lines)
			found, err := r.products.ListByCodes(ctx, codes)
			if err != nil {
				return fmt.Errorf("fetch products: %w", err)
			}

			links := make([]Relink, 0, len(lines))
			for _, line := range lines {
				if p, ok := found[line.Code]; ok {
					links = append(links, Relink{ItemID: line.ItemID, ProductID: p.ID})
				}
			}
			if len(links) > 0 {
				n, err := r.repo.RelinkItems(ctx, links)
				if err != nil {
					return fmt.Errorf("relink items: %w", err)
				}
				total += n
			}

			if len(lines) < r.batchSize {
				return nil
			}
		}
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "placeholder lines relinked", "updated", total)
	return total, nil
}

func distinctCodes(lines []PlaceholderLine) []string {
	seen := make(map[string]struct{}, len(lines))
	codes := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.Code]; ok {
			continue
		}
		seen[l.Code] = struct{}{}
		codes = append(codes, l.Code)
	}
	return codes
}
