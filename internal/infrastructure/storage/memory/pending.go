package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/pending"
)

// PendingRepo implements pending.Repository.
type PendingRepo struct{ s *Store }

// Pending returns the staging repository.
func (s *Store) Pending() *PendingRepo { return &PendingRepo{s: s} }

func (r *PendingRepo) CreateProduct(ctx context.Context, p *pending.Product) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.pendingProducts {
			if existing.Code == p.Code {
				return apperror.NewDuplicate("pending_product", "code", p.Code)
			}
		}
		st.pendingProducts[p.ID] = *p
		return nil
	})
}

func (r *PendingRepo) GetProducts(ctx context.Context, ids []id.ID) ([]pending.Product, error) {
	var out []pending.Product
	r.s.read(func(st *state) {
		for _, pid := range ids {
			if p, ok := st.pendingProducts[pid]; ok {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (r *PendingRepo) ProductsByCodes(ctx context.Context, codes []string) (map[string]pending.Product, error) {
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	out := make(map[string]pending.Product)
	r.s.read(func(st *state) {
		for _, p := range st.pendingProducts {
			if _, ok := want[p.Code]; ok {
				out[p.Code] = p
			}
		}
	})
	return out, nil
}

func (r *PendingRepo) ListProducts(ctx context.Context, filter domain.ListFilter) (domain.ListResult[pending.Product], error) {
	search := strings.ToLower(filter.Search)
	var items []pending.Product
	r.s.read(func(st *state) {
		for _, p := range st.pendingProducts {
			if search != "" && !strings.Contains(strings.ToLower(p.Code+" "+p.Name), search) {
				continue
			}
			items = append(items, p)
		}
	})
	slices.SortFunc(items, func(a, b pending.Product) int { return cmp.Compare(a.Code, b.Code) })
	return domain.Page(items, filter), nil
}

func (r *PendingRepo) DeleteProducts(ctx context.Context, ids []id.ID) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(st *state) error {
		for _, pid := range ids {
			if _, ok := st.pendingProducts[pid]; !ok {
				continue
			}
			delete(st.pendingProducts, pid)
			n++
			for itemID, it := range st.pendingItems {
				if it.PendingProductID != nil && *it.PendingProductID == pid {
					it.PendingProductID = nil
					st.pendingItems[itemID] = it
				}
			}
		}
		return nil
	})
	return n, err
}

func (r *PendingRepo) CreateReceipt(ctx context.Context, doc *pending.ReceiptDocument) error {
	return r.s.write(ctx, func(st *state) error {
		header := *doc
		header.Items = nil
		st.pendingDocs[doc.ID] = header
		return nil
	})
}

func (r *PendingRepo) CreateReceiptItems(ctx context.Context, items []pending.ReceiptItem) error {
	return r.s.write(ctx, func(st *state) error {
		for _, it := range items {
			if _, ok := st.pendingDocs[it.DocumentID]; !ok {
				return apperror.NewNotFound("pending_receipt_document", it.DocumentID)
			}
			st.pendingItems[it.ID] = it
		}
		return nil
	})
}

func (r *PendingRepo) GetReceipt(ctx context.Context, docID id.ID) (*pending.ReceiptDocument, error) {
	var (
		d  pending.ReceiptDocument
		ok bool
	)
	r.s.read(func(st *state) { d, ok = st.pendingDocs[docID] })
	if !ok {
		return nil, apperror.NewNotFound("pending_receipt_document", docID)
	}
	return &d, nil
}

func (r *PendingRepo) GetReceiptForUpdate(ctx context.Context, docID id.ID) (*pending.ReceiptDocument, error) {
	return r.GetReceipt(ctx, docID)
}

func (r *PendingRepo) GetReceiptItems(ctx context.Context, docID id.ID) ([]pending.ReceiptItem, error) {
	var out []pending.ReceiptItem
	r.s.read(func(st *state) {
		for _, it := range st.pendingItems {
			if it.DocumentID == docID {
				out = append(out, it)
			}
		}
	})
	slices.SortFunc(out, func(a, b pending.ReceiptItem) int { return compareIDs(a.ID, b.ID) })
	return out, nil
}

func (r *PendingRepo) DeleteReceipt(ctx context.Context, docID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.pendingDocs[docID]; !ok {
			return apperror.NewNotFound("pending_receipt_document", docID)
		}
		for itemID, it := range st.pendingItems {
			if it.DocumentID == docID {
				delete(st.pendingItems, itemID)
			}
		}
		delete(st.pendingDocs, docID)
		return nil
	})
}

func (r *PendingRepo) ListPlaceholderLines(ctx context.Context, after id.ID, limit int) ([]pending.PlaceholderLine, error) {
	var out []pending.PlaceholderLine
	r.s.read(func(st *state) {
		for _, it := range st.pendingItems {
			if it.ProductID != nil || it.PendingProductID == nil || compareIDs(it.ID, after) <= 0 {
				continue
			}
			placeholder, ok := st.pendingProducts[*it.PendingProductID]
			if !ok {
				continue
			}
			out = append(out, pending.PlaceholderLine{ItemID: it.ID, Code: placeholder.Code})
		}
	})
	slices.SortFunc(out, func(a, b pending.PlaceholderLine) int { return compareIDs(a.ItemID, b.ItemID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PendingRepo) RelinkItems(ctx context.Context, links []pending.Relink) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(st *state) error {
		for _, l := range links {
			it, ok := st.pendingItems[l.ItemID]
			if !ok {
				continue
			}
			productID := l.ProductID
			it.ProductID = &productID
			it.PendingProductID = nil
			st.pendingItems[l.ItemID] = it
			n++
		}
		return nil
	})
	return n, err
}
