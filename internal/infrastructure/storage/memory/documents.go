package memory

import (
	"cmp"
	"context"
	"slices"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/domain/documents/receipt"
)

// IssueRepo implements issue.Repository.
type IssueRepo struct{ s *Store }

// Issues returns the DW repository.
func (s *Store) Issues() *IssueRepo { return &IssueRepo{s: s} }

func (r *IssueRepo) Create(ctx context.Context, doc *issue.Document) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.issueDocs {
			if existing.Number == doc.Number {
				return apperror.NewDuplicate("issue_document", "document_number", doc.Number)
			}
		}
		if _, ok := st.employees[doc.EmployeeID]; !ok {
			return apperror.NewValidation("employee does not exist").WithDetail("field", "employee_id")
		}
		header := *doc
		header.Items = nil
		st.issueDocs[doc.ID] = header
		return nil
	})
}

func (r *IssueRepo) GetByID(ctx context.Context, docID id.ID) (*issue.Document, error) {
	var (
		d  issue.Document
		ok bool
	)
	r.s.read(func(st *state) { d, ok = st.issueDocs[docID] })
	if !ok {
		return nil, apperror.NewNotFound("issue_document", docID)
	}
	return &d, nil
}

func (r *IssueRepo) GetItems(ctx context.Context, docID id.ID) ([]issue.Item, error) {
	var out []issue.Item
	r.s.read(func(st *state) {
		for _, it := range st.issueItems {
			if it.DocumentID == docID {
				out = append(out, it)
			}
		}
	})
	slices.SortFunc(out, func(a, b issue.Item) int { return compareIDs(a.ID, b.ID) })
	return out, nil
}

func (r *IssueRepo) List(ctx context.Context, filter issue.ListFilter) (domain.ListResult[issue.Document], error) {
	var items []issue.Document
	r.s.read(func(st *state) {
		for _, d := range st.issueDocs {
			if filter.EmployeeID != nil && d.EmployeeID != *filter.EmployeeID {
				continue
			}
			if !inRange(d.IssueDate, filter.DateFrom, filter.DateTo) {
				continue
			}
			items = append(items, d)
		}
	})
	slices.SortFunc(items, func(a, b issue.Document) int {
		if c := b.IssueDate.Compare(a.IssueDate); c != 0 {
			return c
		}
		return cmp.Compare(b.Number, a.Number)
	})
	return domain.Page(items, filter.ListFilter), nil
}

func (r *IssueRepo) Delete(ctx context.Context, docID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.issueDocs[docID]; !ok {
			return apperror.NewNotFound("issue_document", docID)
		}
		for itemID, it := range st.issueItems {
			if it.DocumentID == docID {
				delete(st.issueItems, itemID)
			}
		}
		delete(st.issueDocs, docID)
		return nil
	})
}

func (r *IssueRepo) CreateItem(ctx context.Context, item *issue.Item) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.issueDocs[item.DocumentID]; !ok {
			return apperror.NewNotFound("issue_document", item.DocumentID)
		}
		st.issueItems[item.ID] = *item
		return nil
	})
}

func (r *IssueRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*issue.ItemDetail, error) {
	var (
		detail *issue.ItemDetail
	)
	r.s.read(func(st *state) {
		it, ok := st.issueItems[itemID]
		if !ok {
			return
		}
		d := st.issueDocs[it.DocumentID]
		detail = &issue.ItemDetail{
			Item:           it,
			DocumentNumber: d.Number,
			IssueDate:      d.IssueDate,
			EmployeeID:     d.EmployeeID,
		}
	})
	if detail == nil {
		return nil, apperror.NewNotFound("issue_item", itemID)
	}
	return detail, nil
}

func (r *IssueRepo) UpdateItem(ctx context.Context, item *issue.Item) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.issueItems[item.ID]; !ok {
			return apperror.NewNotFound("issue_item", item.ID)
		}
		st.issueItems[item.ID] = *item
		return nil
	})
}

func (r *IssueRepo) DeactivateActiveByEmployee(ctx context.Context, employeeID id.ID) (int, error) {
	var n int
	err := r.s.write(ctx, func(st *state) error {
		for itemID, it := range st.issueItems {
			if it.Status != issue.StatusActive || st.issueDocs[it.DocumentID].EmployeeID != employeeID {
				continue
			}
			it.Status = issue.StatusUsed
			it.AutoDeactivated = true
			st.issueItems[itemID] = it
			n++
		}
		return nil
	})
	return n, err
}

func (r *IssueRepo) RecomputeValuesFromProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(st *state) error {
		for itemID, it := range st.issueItems {
			p, ok := st.products[it.ProductID]
			if !ok {
				continue
			}
			price := p.UnitPrice
			it.UnitPrice = &price
			it.TotalValue = types.OptionalLineTotal(it.Quantity, it.UnitPrice)
			st.issueItems[itemID] = it
			n++
		}
		return nil
	})
	return n, err
}

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct{ s *Store }

// Receipts returns the PZ repository.
func (s *Store) Receipts() *ReceiptRepo { return &ReceiptRepo{s: s} }

func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.Document) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.receiptDocs {
			if existing.Number == doc.Number {
				return apperror.NewDuplicate("receipt_document", "document_number", doc.Number)
			}
		}
		header := *doc
		header.Items = nil
		st.receiptDocs[doc.ID] = header
		return nil
	})
}

func (r *ReceiptRepo) GetByID(ctx context.Context, docID id.ID) (*receipt.Document, error) {
	var (
		d  receipt.Document
		ok bool
	)
	r.s.read(func(st *state) { d, ok = st.receiptDocs[docID] })
	if !ok {
		return nil, apperror.NewNotFound("receipt_document", docID)
	}
	return &d, nil
}

func (r *ReceiptRepo) GetItems(ctx context.Context, docID id.ID) ([]receipt.Item, error) {
	var out []receipt.Item
	r.s.read(func(st *state) {
		for _, it := range st.receiptItems {
			if it.DocumentID == docID {
				out = append(out, it)
			}
		}
	})
	slices.SortFunc(out, func(a, b receipt.Item) int { return compareIDs(a.ID, b.ID) })
	return out, nil
}

func (r *ReceiptRepo) List(ctx context.Context, filter receipt.ListFilter) (domain.ListResult[receipt.Document], error) {
	var items []receipt.Document
	r.s.read(func(st *state) {
		for _, d := range st.receiptDocs {
			if filter.SupplierID != nil && d.SupplierID != *filter.SupplierID {
				continue
			}
			if filter.RecipientID != nil && d.RecipientID != *filter.RecipientID {
				continue
			}
			if !inRange(d.IssueDate, filter.DateFrom, filter.DateTo) {
				continue
			}
			items = append(items, d)
		}
	})
	slices.SortFunc(items, func(a, b receipt.Document) int {
		if c := b.IssueDate.Compare(a.IssueDate); c != 0 {
			return c
		}
		return cmp.Compare(b.Number, a.Number)
	})
	return domain.Page(items, filter.ListFilter), nil
}

func (r *ReceiptRepo) Delete(ctx context.Context, docID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.receiptDocs[docID]; !ok {
			return apperror.NewNotFound("receipt_document", docID)
		}
		for itemID, it := range st.receiptItems {
			if it.DocumentID == docID {
				delete(st.receiptItems, itemID)
			}
		}
		delete(st.receiptDocs, docID)
		return nil
	})
}

func (r *ReceiptRepo) CreateItem(ctx context.Context, item *receipt.Item) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.receiptDocs[item.DocumentID]; !ok {
			return apperror.NewNotFound("receipt_document", item.DocumentID)
		}
		st.receiptItems[item.ID] = *item
		return nil
	})
}

func (r *ReceiptRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*receipt.ItemDetail, error) {
	var detail *receipt.ItemDetail
	r.s.read(func(st *state) {
		it, ok := st.receiptItems[itemID]
		if !ok {
			return
		}
		detail = &receipt.ItemDetail{Item: it, DocumentNumber: st.receiptDocs[it.DocumentID].Number}
	})
	if detail == nil {
		return nil, apperror.NewNotFound("receipt_item", itemID)
	}
	return detail, nil
}

func (r *ReceiptRepo) UpdateItem(ctx context.Context, item *receipt.Item) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.receiptItems[item.ID]; !ok {
			return apperror.NewNotFound("receipt_item", item.ID)
		}
		st.receiptItems[item.ID] = *item
		return nil
	})
}
