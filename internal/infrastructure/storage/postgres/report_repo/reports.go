// Package report_repo provides the PostgreSQL queries behind the read-only reports.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"szafa/internal/domain/registers/stock"
	"szafa/internal/domain/reports"
	"szafa/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txm: txm}
}

var _ reports.Repository = (*ReportRepo)(nil)

func (r *ReportRepo) issueLineSelect(filter reports.IssueFilter) squirrel.SelectBuilder {
	q := postgres.Builder().
		Select(
			"i.id AS item_id",
			"d.id AS document_id",
			"d.document_number",
			"d.issue_date",
			"e.id AS employee_id",
			"e.first_name || ' ' || e.last_name AS employee_name",
			"e.card_number",
			"e.company_id",
			"e.department_id",
			"p.id AS product_id",
			"p.code AS product_code",
			"p.name AS product_name",
			"i.size",
			"i.quantity",
			"i.unit_price",
			"i.total_value",
			"i.status",
			"i.next_issue_date",
		).
		From("issue_items i").
		Join("issue_documents d ON d.id = i.document_id").
		Join("employees e ON e.id = d.employee_id").
		Join("products p ON p.id = i.product_id")

	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"e.company_id": *filter.CompanyID})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"e.department_id": *filter.DepartmentID})
	}
	return q
}

func dateRange(q squirrel.SelectBuilder, column string, from, to *time.Time) squirrel.SelectBuilder {
	if from != nil {
		q = q.Where(squirrel.GtOrEq{column: *from})
	}
	if to != nil {
		q = q.Where(squirrel.LtOrEq{column: *to})
	}
	return q
}

func (r *ReportRepo) IssueLines(ctx context.Context, filter reports.IssueFilter) ([]reports.IssueLine, error) {
	q := dateRange(r.issueLineSelect(filter), "d.issue_date", filter.DateFrom, filter.DateTo)

	var out []reports.IssueLine
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("issue report: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) DemandLines(ctx context.Context, filter reports.IssueFilter) ([]reports.IssueLine, error) {
	q := r.issueLineSelect(filter).
		Where(squirrel.Eq{"i.status": "active"}).
		Where(squirrel.NotEq{"i.next_issue_date": nil})
	q = dateRange(q, "i.next_issue_date", filter.DateFrom, filter.DateTo)

	var out []reports.IssueLine
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("demand report: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) ReceiptLines(ctx context.Context, filter reports.ReceiptFilter) ([]reports.ReceiptLine, error) {
	q := postgres.Builder().
		Select(
			"i.id AS item_id",
			"d.id AS document_id",
			"d.document_number",
			"d.issue_date",
			"s.id AS supplier_id",
			"s.name AS supplier_name",
			"c.id AS recipient_id",
			"c.name AS recipient_name",
			"p.id AS product_id",
			"p.code AS product_code",
			"p.name AS product_name",
			"i.size",
			"i.quantity",
			"i.unit_price",
			"i.total_value",
		).
		From("receipt_items i").
		Join("receipt_documents d ON d.id = i.document_id").
		Join("suppliers s ON s.id = d.supplier_id").
		Join("companies c ON c.id = d.recipient_id").
		Join("products p ON p.id = i.product_id")

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"d.supplier_id": *filter.SupplierID})
	}
	if filter.RecipientID != nil {
		q = q.Where(squirrel.Eq{"d.recipient_id": *filter.RecipientID})
	}
	q = dateRange(q, "d.issue_date", filter.DateFrom, filter.DateTo).
		OrderBy("d.issue_date", "d.document_number", "i.id")

	var out []reports.ReceiptLine
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("receipt report: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) Forecast(ctx context.Context, from, to time.Time) ([]reports.ForecastRow, error) {
	q := postgres.Builder().
		Select(
			"p.id AS product_id",
			"p.code AS product_code",
			"p.name AS product_name",
			"p.min_qty_on_stock",
			"i.size",
			"SUM(i.quantity) AS quantity",
		).
		From("issue_items i").
		Join("products p ON p.id = i.product_id").
		Where(squirrel.Eq{"i.status": "active"}).
		Where(squirrel.GtOrEq{"i.next_issue_date": from}).
		Where(squirrel.LtOrEq{"i.next_issue_date": to}).
		GroupBy("p.id", "p.code", "p.name", "p.min_qty_on_stock", "i.size").
		OrderBy("p.code", "i.size")

	var out []reports.ForecastRow
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("demand forecast: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) StockLevels(ctx context.Context) ([]stock.Balance, error) {
	q := postgres.Builder().
		Select("product_id", "size", "quantity", "updated_at").
		From("warehouse_stock")

	var out []stock.Balance
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("stock levels: %w", err)
	}
	return out, nil
}
