package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/infrastructure/storage/postgres"
)

const (
	receiptDocumentsTable = "receipt_documents"
	receiptItemsTable     = "receipt_items"
)

var (
	receiptDocumentColumns = postgres.Columns[receipt.Document]()
	receiptItemColumns     = postgres.Columns[receipt.Item]()
)

// ReceiptRepo implements receipt.Repository.
type ReceiptRepo struct {
	txm *postgres.TxManager
}

// NewReceiptRepo creates a new PZ repository.
func NewReceiptRepo(txm *postgres.TxManager) *ReceiptRepo {
	return &ReceiptRepo{txm: txm}
}

var _ receipt.Repository = (*ReceiptRepo)(nil)

func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.Document) error {
	return r.txm.Insert(ctx, receiptDocumentsTable, receiptDocumentColumns, doc)
}

func (r *ReceiptRepo) GetByID(ctx context.Context, docID id.ID) (*receipt.Document, error) {
	var doc receipt.Document
	q := postgres.Builder().Select(receiptDocumentColumns...).From(receiptDocumentsTable).Where(squirrel.Eq{"id": docID})
	if err := r.txm.Get(ctx, &doc, q, "receipt_document", docID); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *ReceiptRepo) GetItems(ctx context.Context, docID id.ID) ([]receipt.Item, error) {
	var out []receipt.Item
	q := postgres.Builder().Select(receiptItemColumns...).From(receiptItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("id")
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list receipt items: %w", err)
	}
	return out, nil
}

func (r *ReceiptRepo) List(ctx context.Context, filter receipt.ListFilter) (domain.ListResult[receipt.Document], error) {
	result := domain.ListResult[receipt.Document]{Limit: filter.Limit, Offset: filter.Offset}

	q := postgres.Builder().Select(receiptDocumentColumns...).From(receiptDocumentsTable)
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"document_number": "%" + filter.Search + "%"})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.RecipientID != nil {
		q = q.Where(squirrel.Eq{"recipient_id": *filter.RecipientID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"issue_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"issue_date": *filter.DateTo})
	}

	total, err := r.txm.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = postgres.Page(q.OrderBy("issue_date DESC", "document_number DESC"), filter.Limit, filter.Offset)
	if err := r.txm.Select(ctx, &result.Items, q); err != nil {
		return result, fmt.Errorf("list receipt documents: %w", err)
	}
	return result, nil
}

func (r *ReceiptRepo) Delete(ctx context.Context, docID id.ID) error {
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(receiptDocumentsTable).Where(squirrel.Eq{"id": docID}))
	if err != nil {
		return fmt.Errorf("delete receipt document: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("receipt_document", docID)
	}
	return nil
}

func (r *ReceiptRepo) CreateItem(ctx context.Context, item *receipt.Item) error {
	return r.txm.Insert(ctx, receiptItemsTable, receiptItemColumns, item)
}

func (r *ReceiptRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*receipt.ItemDetail, error) {
	cols := append(qualify("i", receiptItemColumns), "d.document_number")
	q := postgres.Builder().Select(cols...).
		From(receiptItemsTable + " i").
		Join(receiptDocumentsTable + " d ON d.id = i.document_id").
		Where(squirrel.Eq{"i.id": itemID}).
		Suffix("FOR UPDATE OF i")

	var detail receipt.ItemDetail
	if err := r.txm.Get(ctx, &detail, q, "receipt_item", itemID); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *ReceiptRepo) UpdateItem(ctx context.Context, item *receipt.Item) error {
	q := postgres.Builder().Update(receiptItemsTable).
		SetMap(map[string]any{
			"quantity":    item.Quantity,
			"unit_price":  item.UnitPrice,
			"total_value": item.TotalValue,
			"notes":       item.Notes,
		}).
		Where(squirrel.Eq{"id": item.ID})

	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update receipt item: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("receipt_item", item.ID)
	}
	return nil
}
