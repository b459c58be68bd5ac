package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/infrastructure/storage/postgres"
)

const (
	issueDocumentsTable = "issue_documents"
	issueItemsTable     = "issue_items"
)

var (
	issueDocumentColumns = postgres.Columns[issue.Document]()
	issueItemColumns     = postgres.Columns[issue.Item]()
)

// IssueRepo implements issue.Repository.
type IssueRepo struct {
	txm *postgres.TxManager
}

// NewIssueRepo creates a new DW repository.
func NewIssueRepo(txm *postgres.TxManager) *IssueRepo {
	return &IssueRepo{txm: txm}
}

var _ issue.Repository = (*IssueRepo)(nil)

func (r *IssueRepo) Create(ctx context.Context, doc *issue.Document) error {
	return r.txm.Insert(ctx, issueDocumentsTable, issueDocumentColumns, doc)
}

func (r *IssueRepo) GetByID(ctx context.Context, docID id.ID) (*issue.Document, error) {
	var doc issue.Document
	q := postgres.Builder().Select(issueDocumentColumns...).From(issueDocumentsTable).Where(squirrel.Eq{"id": docID})
	if err := r.txm.Get(ctx, &doc, q, "issue_document", docID); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *IssueRepo) GetItems(ctx context.Context, docID id.ID) ([]issue.Item, error) {
	var out []issue.Item
	q := postgres.Builder().Select(issueItemColumns...).From(issueItemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("id")
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list issue items: %w", err)
	}
	return out, nil
}

func (r *IssueRepo) List(ctx context.Context, filter issue.ListFilter) (domain.ListResult[issue.Document], error) {
	result := domain.ListResult[issue.Document]{Limit: filter.Limit, Offset: filter.Offset}

	q := postgres.Builder().Select(issueDocumentColumns...).From(issueDocumentsTable)
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"document_number": "%" + filter.Search + "%"})
	}
	if filter.EmployeeID != nil {
		q = q.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
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
		return result, fmt.Errorf("list issue documents: %w", err)
	}
	return result, nil
}

// Delete removes the header; items cascade.
func (r *IssueRepo) Delete(ctx context.Context, docID id.ID) error {
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(issueDocumentsTable).Where(squirrel.Eq{"id": docID}))
	if err != nil {
		return fmt.Errorf("delete issue document: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("issue_document", docID)
	}
	return nil
}

func (r *IssueRepo) CreateItem(ctx context.Context, item *issue.Item) error {
	return r.txm.Insert(ctx, issueItemsTable, issueItemColumns, item)
}

func (r *IssueRepo) GetItemForUpdate(ctx context.Context, itemID id.ID) (*issue.ItemDetail, error) {
	cols := append(qualify("i", issueItemColumns), "d.document_number", "d.issue_date", "d.employee_id")
	q := postgres.Builder().Select(cols...).
		From(issueItemsTable + " i").
		Join(issueDocumentsTable + " d ON d.id = i.document_id").
		Where(squirrel.Eq{"i.id": itemID}).
		Suffix("FOR UPDATE OF i")

	var detail issue.ItemDetail
	if err := r.txm.Get(ctx, &detail, q, "issue_item", itemID); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *IssueRepo) UpdateItem(ctx context.Context, item *issue.Item) error {
	q := postgres.Builder().Update(issueItemsTable).
		SetMap(map[string]any{
			"quantity":         item.Quantity,
			"unit_price":       item.UnitPrice,
			"total_value":      item.TotalValue,
			"size":             item.Size,
			"notes":            item.Notes,
			"status":           item.Status,
			"next_issue_date":  item.NextIssueDate,
			"auto_deactivated": item.AutoDeactivated,
		}).
		Where(squirrel.Eq{"id": item.ID})

	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update issue item: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("issue_item", item.ID)
	}
	return nil
}

func (r *IssueRepo) DeactivateActiveByEmployee(ctx context.Context, employeeID id.ID) (int, error) {
	q := postgres.Builder().Update(issueItemsTable).
		Set("status", issue.StatusUsed).
		Set("auto_deactivated", true).
		Where(squirrel.Eq{"status": issue.StatusActive}).
		Where(squirrel.Expr("document_id IN (SELECT id FROM issue_documents WHERE employee_id = ?)", employeeID))

	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("deactivate items: %w", err)
	}
	return int(n), nil
}

func (r *IssueRepo) RecomputeValuesFromProducts(ctx context.Context) (int64, error) {
	const sql = `
		UPDATE issue_items i
		SET unit_price = p.unit_price,
		    total_value = i.quantity * p.unit_price
		FROM products p
		WHERE p.id = i.product_id`

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("recompute issue values: %w", err)
	}
	return tag.RowsAffected(), nil
}
