package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/domain/reports"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct{ s *Store }

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }

func (r *ReportRepo) issueLines(filter reports.IssueFilter, keep func(issue.Document, issue.Item) bool) []reports.IssueLine {
	var out []reports.IssueLine
	r.s.read(func(st *state) {
		for _, it := range st.issueItems {
			doc := st.issueDocs[it.DocumentID]
			emp := st.employees[doc.EmployeeID]
			if filter.CompanyID != nil && emp.CompanyID != *filter.CompanyID {
				continue
			}
			if filter.DepartmentID != nil && emp.DepartmentID != *filter.DepartmentID {
				continue
			}
			if !keep(doc, it) {
				continue
			}
			p := st.products[it.ProductID]
			out = append(out, reports.IssueLine{
				ItemID:         it.ID,
				DocumentID:     doc.ID,
				DocumentNumber: doc.Number,
				IssueDate:      doc.IssueDate,
				EmployeeID:     emp.ID,
				EmployeeName:   emp.FirstName + " " + emp.LastName,
				CardNumber:     emp.CardNumber,
				CompanyID:      emp.CompanyID,
				DepartmentID:   emp.DepartmentID,
				ProductID:      p.ID,
				ProductCode:    p.Code,
				ProductName:    p.Name,
				Size:           it.Size,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				TotalValue:     it.TotalValue,
				Status:         string(it.Status),
				NextIssueDate:  it.NextIssueDate,
			})
		}
	})
	return out
}

func (r *ReportRepo) IssueLines(ctx context.Context, filter reports.IssueFilter) ([]reports.IssueLine, error) {
	return r.issueLines(filter, func(d issue.Document, _ issue.Item) bool {
		return inRange(d.IssueDate, filter.DateFrom, filter.DateTo)
	}), nil
}

func (r *ReportRepo) DemandLines(ctx context.Context, filter reports.IssueFilter) ([]reports.IssueLine, error) {
	return r.issueLines(filter, func(_ issue.Document, it issue.Item) bool {
		return it.Status == issue.StatusActive && it.NextIssueDate != nil &&
			inRange(*it.NextIssueDate, filter.DateFrom, filter.DateTo)
	}), nil
}

func (r *ReportRepo) ReceiptLines(ctx context.Context, filter reports.ReceiptFilter) ([]reports.ReceiptLine, error) {
	var out []reports.ReceiptLine
	r.s.read(func(st *state) {
		for _, it := range st.receiptItems {
			doc := st.receiptDocs[it.DocumentID]
			if filter.SupplierID != nil && doc.SupplierID != *filter.SupplierID {
				continue
			}
			if filter.RecipientID != nil && doc.RecipientID != *filter.RecipientID {
				continue
			}
			if !inRange(doc.IssueDate, filter.DateFrom, filter.DateTo) {
				continue
			}
			p := st.products[it.ProductID]
			out = append(out, reports.ReceiptLine{
				ItemID:         it.ID,
				DocumentID:     doc.ID,
				DocumentNumber: doc.Number,
				IssueDate:      doc.IssueDate,
				SupplierID:     doc.SupplierID,
				SupplierName:   st.dict[dictionary.KindSupplier][doc.SupplierID].Name,
				RecipientID:    doc.RecipientID,
				RecipientName:  st.dict[dictionary.KindCompany][doc.RecipientID].Name,
				ProductID:      p.ID,
				ProductCode:    p.Code,
				ProductName:    p.Name,
				Size:           it.Size,
				Quantity:       it.Quantity,
				UnitPrice:      it.UnitPrice,
				TotalValue:     it.TotalValue,
			})
		}
	})
	return out, nil
}

func (r *ReportRepo) Forecast(ctx context.Context, from, to time.Time) ([]reports.ForecastRow, error) {
	type key struct {
		product string
		size    string
	}
	sums := map[key]*reports.ForecastRow{}
	r.s.read(func(st *state) {
		for _, it := range st.issueItems {
			if it.Status != issue.StatusActive || it.NextIssueDate == nil || !inRange(*it.NextIssueDate, &from, &to) {
				continue
			}
			k := key{product: it.ProductID.String(), size: it.Size}
			row, ok := sums[k]
			if !ok {
				p := st.products[it.ProductID]
				row = &reports.ForecastRow{
					ProductID:     p.ID,
					ProductCode:   p.Code,
					ProductName:   p.Name,
					MinQtyOnStock: p.MinQtyOnStock,
					Size:          it.Size,
				}
				sums[k] = row
			}
			row.Quantity += it.Quantity
		}
	})
	out := make([]reports.ForecastRow, 0, len(sums))
	for _, row := range sums {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(a, b reports.ForecastRow) int {
		if c := cmp.Compare(a.ProductCode, b.ProductCode); c != 0 {
			return c
		}
		return cmp.Compare(a.Size, b.Size)
	})
	return out, nil
}

func (r *ReportRepo) StockLevels(ctx context.Context) ([]stock.Balance, error) {
	var out []stock.Balance
	r.s.read(func(st *state) {
		for _, b := range st.balances {
			out = append(out, b)
		}
	})
	return out, nil
}
