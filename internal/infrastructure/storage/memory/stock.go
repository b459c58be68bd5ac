package memory

import (
	"cmp"
	"context"
	"slices"

	"szafa/internal/core/id"
	"szafa/internal/domain/registers/stock"
)

// StockRepo implements stock.Repository.
type StockRepo struct{ s *Store }

// Stock returns the ledger repository.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

func (r *StockRepo) LockBalance(ctx context.Context, productID id.ID, size string) (stock.Balance, error) {
	var b stock.Balance
	err := r.s.write(ctx, func(st *state) error {
		key := balanceKey{productID: productID, size: size}
		existing, ok := st.balances[key]
		if !ok {
			existing = stock.Balance{ProductID: productID, Size: size}
			st.balances[key] = existing
		}
		b = existing
		return nil
	})
	return b, err
}

func (r *StockRepo) SaveBalance(ctx context.Context, balance stock.Balance) error {
	return r.s.write(ctx, func(st *state) error {
		st.balances[balanceKey{productID: balance.ProductID, size: balance.Size}] = balance
		return nil
	})
}

func (r *StockRepo) AppendMovement(ctx context.Context, movement stock.Movement) error {
	return r.s.write(ctx, func(st *state) error {
		st.movements = append(st.movements, movement)
		return nil
	})
}

func (r *StockRepo) GetBalance(ctx context.Context, productID id.ID, size string) (stock.Balance, error) {
	var (
		b  stock.Balance
		ok bool
	)
	r.s.read(func(st *state) { b, ok = st.balances[balanceKey{productID: productID, size: size}] })
	if !ok {
		return stock.Balance{ProductID: productID, Size: size}, nil
	}
	return b, nil
}

func (r *StockRepo) ListBalances(ctx context.Context, filter stock.BalanceFilter) ([]stock.BalanceView, error) {
	var out []stock.BalanceView
	r.s.read(func(st *state) {
		for _, b := range st.balances {
			if filter.ProductID != nil && b.ProductID != *filter.ProductID {
				continue
			}
			if filter.ExcludeZero && b.Quantity == 0 {
				continue
			}
			p := st.products[b.ProductID]
			out = append(out, stock.BalanceView{
				Balance:     b,
				ProductCode: p.Code,
				ProductName: p.Name,
				UnitPrice:   p.UnitPrice,
			})
		}
	})
	slices.SortFunc(out, func(a, b stock.BalanceView) int {
		if c := cmp.Compare(a.ProductCode, b.ProductCode); c != 0 {
			return c
		}
		return cmp.Compare(a.Size, b.Size)
	})
	return out, nil
}

func (r *StockRepo) ListMovements(ctx context.Context, filter stock.MovementFilter) ([]stock.Movement, error) {
	var out []stock.Movement
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			switch {
			case filter.ProductID != nil && m.ProductID != *filter.ProductID,
				filter.Size != nil && m.Size != *filter.Size,
				filter.Kind != nil && m.Kind != *filter.Kind,
				filter.DocumentType != "" && m.DocumentType != filter.DocumentType,
				filter.DocumentID != nil && (m.DocumentID == nil || *m.DocumentID != *filter.DocumentID),
				!inRange(m.CreatedAt, filter.FromDate, filter.ToDate):
				continue
			}
			out = append(out, m)
		}
	})
	slices.SortStableFunc(out, func(a, b stock.Movement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})

	start := min(max(filter.Offset, 0), len(out))
	end := len(out)
	if filter.Limit > 0 {
		end = min(start+filter.Limit, len(out))
	}
	return out[start:end], nil
}

func (r *StockRepo) BackfillDocumentNumbers(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(st *state) error {
		for i, m := range st.movements {
			if m.DocumentNumber != nil || m.DocumentID == nil {
				continue
			}
			var number string
			switch m.DocumentType {
			case stock.OriginIssue, stock.OriginReturn:
				number = st.issueDocs[*m.DocumentID].Number
			case stock.OriginReceipt:
				number = st.receiptDocs[*m.DocumentID].Number
			}
			if number == "" {
				continue
			}
			m.DocumentNumber = &number
			st.movements[i] = m
			n++
		}
		return nil
	})
	return n, err
}
