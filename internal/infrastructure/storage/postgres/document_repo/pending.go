package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/pending"
	"szafa/internal/infrastructure/storage/postgres"
)

const (
	pendingProductsTable  = "pending_products"
	pendingDocumentsTable = "pending_receipt_documents"
	pendingItemsTable     = "pending_receipt_items"
)

var (
	pendingProductColumns  = postgres.Columns[pending.Product]()
	pendingDocumentColumns = postgres.Columns[pending.ReceiptDocument]()
	pendingItemColumns     = postgres.Columns[pending.ReceiptItem]()
)

// PendingRepo implements pending.Repository. Raw payloads are stored zstd-compressed.
type PendingRepo struct {
	txm *postgres.TxManager
}

// NewPendingRepo creates a new staging repository.
func NewPendingRepo(txm *postgres.TxManager) *PendingRepo {
	return &PendingRepo{txm: txm}
}

var _ pending.Repository = (*PendingRepo)(nil)

func (r *PendingRepo) productSelect() squirrel.SelectBuilder {
	return postgres.Builder().Select(pendingProductColumns...).From(pendingProductsTable)
}

func (r *PendingRepo) CreateProduct(ctx context.Context, p *pending.Product) error {
	return r.txm.Insert(ctx, pendingProductsTable, pendingProductColumns, p)
}

func (r *PendingRepo) GetProducts(ctx context.Context, ids []id.ID) ([]pending.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []pending.Product
	if err := r.txm.Select(ctx, &out, r.productSelect().Where(squirrel.Eq{"id": ids}).OrderBy("code")); err != nil {
		return nil, fmt.Errorf("get pending products: %w", err)
	}
	return out, nil
}

func (r *PendingRepo) ProductsByCodes(ctx context.Context, codes []string) (map[string]pending.Product, error) {
	out := make(map[string]pending.Product, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var items []pending.Product
	if err := r.txm.Select(ctx, &items, r.productSelect().Where(squirrel.Eq{"code": codes})); err != nil {
		return nil, fmt.Errorf("get pending products by code: %w", err)
	}
	for _, p := range items {
		out[p.Code] = p
	}
	return out, nil
}

func (r *PendingRepo) ListProducts(ctx context.Context, filter domain.ListFilter) (domain.ListResult[pending.Product], error) {
	result := domain.ListResult[pending.Product]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.productSelect()
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
		})
	}

	total, err := r.txm.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = postgres.Page(q.OrderBy("code"), filter.Limit, filter.Offset)
	if err := r.txm.Select(ctx, &result.Items, q); err != nil {
		return result, fmt.Errorf("list pending products: %w", err)
	}
	return result, nil
}

// DeleteProducts removes staged products; pending_product_id on staged lines is set to
// NULL by the foreign key.
func (r *PendingRepo) DeleteProducts(ctx context.Context, ids []id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(pendingProductsTable).Where(squirrel.Eq{"id": ids}))
	if err != nil {
		return 0, fmt.Errorf("delete pending products: %w", err)
	}
	return n, nil
}

func (r *PendingRepo) CreateReceipt(ctx context.Context, doc *pending.ReceiptDocument) error {
	stored := *doc
	stored.Items = nil
	compressed, err := postgres.CompressPayload(doc.RawPayload)
	if err != nil {
		return err
	}
	stored.RawPayload = compressed
	return r.txm.Insert(ctx, pendingDocumentsTable, pendingDocumentColumns, &stored)
}

// CreateReceiptItems copies the lines in one round-trip.
func (r *PendingRepo) CreateReceiptItems(ctx context.Context, items []pending.ReceiptItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(items))
	for i := range items {
		row := postgres.StructToMap(&items[i])
		values := make([]any, len(pendingItemColumns))
		for j, col := range pendingItemColumns {
			values[j] = row[col]
		}
		rows = append(rows, values)
	}
	if _, err := r.txm.CopyRows(ctx, pendingItemsTable, pendingItemColumns, rows); err != nil {
		return fmt.Errorf("create pending items: %w", err)
	}
	return nil
}

func (r *PendingRepo) getReceipt(ctx context.Context, docID id.ID, forUpdate bool) (*pending.ReceiptDocument, error) {
	q := postgres.Builder().Select(pendingDocumentColumns...).From(pendingDocumentsTable).Where(squirrel.Eq{"id": docID})
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	var doc pending.ReceiptDocument
	if err := r.txm.Get(ctx, &doc, q, "pending_receipt_document", docID); err != nil {
		return nil, err
	}
	raw, err := postgres.DecompressPayload(doc.RawPayload)
	if err != nil {
		return nil, err
	}
	doc.RawPayload = raw
	return &doc, nil
}

func (r *PendingRepo) GetReceipt(ctx context.Context, docID id.ID) (*pending.ReceiptDocument, error) {
	return r.getReceipt(ctx, docID, false)
}

func (r *PendingRepo) GetReceiptForUpdate(ctx context.Context, docID id.ID) (*pending.ReceiptDocument, error) {
	return r.getReceipt(ctx, docID, true)
}

func (r *PendingRepo) GetReceiptItems(ctx context.Context, docID id.ID) ([]pending.ReceiptItem, error) {
	var out []pending.ReceiptItem
	q := postgres.Builder().Select(pendingItemColumns...).From(pendingItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("id")
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list pending items: %w", err)
	}
	return out, nil
}

// DeleteReceipt removes the staged document; its lines cascade.
func (r *PendingRepo) DeleteReceipt(ctx context.Context, docID id.ID) error {
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(pendingDocumentsTable).Where(squirrel.Eq{"id": docID}))
	if err != nil {
		return fmt.Errorf("delete pending receipt: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("pending_receipt_document", docID)
	}
	return nil
}

func (r *PendingRepo) ListPlaceholderLines(ctx context.Context, after id.ID, limit int) ([]pending.PlaceholderLine, error) {
	q := postgres.Builder().
		Select("i.id AS item_id", "p.code").
		From(pendingItemsTable + " i").
		Join(pendingProductsTable + " p ON p.id = i.pending_product_id").
		Where(squirrel.Eq{"i.product_id": nil}).
		Where(squirrel.Gt{"i.id": after}).
		OrderBy("i.id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	var out []pending.PlaceholderLine
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list placeholder lines: %w", err)
	}
	return out, nil
}

// RelinkItems sends one UPDATE per line in a single batch.
func (r *PendingRepo) RelinkItems(ctx context.Context, links []pending.Relink) (int64, error) {
	queries := make([]postgres.BatchQuery, 0, len(links))
	for _, l := range links {
		queries = append(queries, postgres.BatchQuery{
			SQL:  "UPDATE pending_receipt_items SET product_id = $1, pending_product_id = NULL WHERE id = $2",
			Args: []any{l.ProductID, l.ItemID},
		})
	}
	n, err := r.txm.ExecBatch(ctx, queries)
	if err != nil {
		return 0, fmt.Errorf("relink items: %w", err)
	}
	return n, nil
}
