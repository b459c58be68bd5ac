package reports_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/types"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/domain/employees"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/domain/reports"
	"szafa/internal/infrastructure/storage/memory"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fixture struct {
	products *product.Service
	ledger   *stock.Service
	issues   *issue.Service
	reports  *reports.Service
	category product.Category
	employee employees.Employee
}

func newFixture(t *testing.T, ctx context.Context) *fixture {
	t.Helper()
	store := memory.NewStore()
	dicts := dictionary.NewService(store.Dictionaries())
	products := product.NewService(store.Products(), store)
	ledger := stock.NewService(store.Stock(), store)
	emps := employees.NewService(store.Employees(), store, dicts, nil)
	issues := issue.NewService(store.Issues(), products, emps, ledger, store.Numerator(), store)
	emps.SetDeactivator(issues)

	refs := map[dictionary.Kind]*dictionary.Entry{}
	for _, kind := range []dictionary.Kind{dictionary.KindCompany, dictionary.KindDepartment, dictionary.KindPosition} {
		e := &dictionary.Entry{Kind: kind, Name: string(kind) + " A"}
		require.NoError(t, dicts.Create(ctx, e))
		refs[kind] = e
	}
	cat, err := products.EnsureCategory(ctx, "Workwear", product.CategoryClothing)
	require.NoError(t, err)

	e := &employees.Employee{
		CardNumber:   "2002",
		FirstName:    "Jan",
		LastName:     "Kowalski",
		CompanyID:    refs[dictionary.KindCompany].ID,
		DepartmentID: refs[dictionary.KindDepartment].ID,
		PositionID:   refs[dictionary.KindPosition].ID,
	}
	require.NoError(t, emps.Create(ctx, e))
	require.NoError(t, emps.SavePeriod(ctx, &employees.Period{EmployeeID: e.ID, StartDate: day("2024-01-01")}))

	return &fixture{
		products: products,
		ledger:   ledger,
		issues:   issues,
		reports:  reports.NewService(store.Reports(), store),
		category: *cat,
		employee: *e,
	}
}

// stocked creates a product and puts qty units of size on stock.
func (f *fixture) stocked(t *testing.T, ctx context.Context, code string, periodDays, minQty int, size string, qty int) product.Product {
	t.Helper()
	p := &product.Product{
		Code:          code,
		Name:          "Product " + code,
		CategoryID:    f.category.ID,
		UnitPrice:     types.MustMoney("10.00"),
		PeriodDays:    periodDays,
		MinQtyOnStock: minQty,
	}
	require.NoError(t, f.products.Create(ctx, p))
	if qty > 0 {
		_, err := f.ledger.Adjust(ctx, p.ID, size, qty, "opening balance")
		require.NoError(t, err)
	}
	return *p
}

func (f *fixture) issue(t *testing.T, ctx context.Context, p product.Product, size string, qty int, date string) *issue.Document {
	t.Helper()
	doc := &issue.Document{
		EmployeeID: f.employee.ID,
		IssueDate:  day(date),
		Items:      []issue.Item{{ProductID: p.ID, Size: size, Quantity: qty}},
	}
	require.NoError(t, f.issues.Create(ctx, doc))
	return doc
}

func TestOrderDemand_NeedPerProductAndSize(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)

	boots := f.stocked(t, ctx, "BUT-01", 30, 2, "42", 10)
	gloves := f.stocked(t, ctx, "GLV-01", 10, 5, "", 2)
	f.issue(t, ctx, boots, "42", 3, "2024-06-01")
	f.issue(t, ctx, gloves, "", 2, "2024-06-01")

	report, err := f.reports.OrderDemand(ctx, reports.OrderDemandFilter{})
	require.NoError(t, err)
	assert.Equal(t, day("2024-06-01"), report.From)
	assert.Equal(t, day("2024-07-01"), report.To)

	// Boots: forecast 3 + min 2 - stock 7 is covered. Gloves: 2 + 5 - 0.
	require.Len(t, report.Rows, 1)
	row := report.Rows[0]
	assert.Equal(t, gloves.ID, row.ProductID)
	assert.Equal(t, 2, row.Forecast)
	assert.Equal(t, 5, row.MinStock)
	assert.Zero(t, row.CurrentStock)
	assert.Equal(t, 7, row.Need)
	assert.Equal(t, 7, report.TotalNeed)

	all, err := f.reports.OrderDemand(ctx, reports.OrderDemandFilter{MonthsAhead: 1, ShowZero: true})
	require.NoError(t, err)
	require.Len(t, all.Rows, 2)
	assert.Equal(t, "BUT-01", all.Rows[0].ProductCode)
	assert.Equal(t, 7, all.Rows[0].CurrentStock)
	assert.Zero(t, all.Rows[0].Need)
	assert.Equal(t, 7, all.TotalNeed)
}

func TestOrderDemand_WindowExcludesLaterDueDates(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)

	jacket := f.stocked(t, ctx, "JKT-01", 365, 0, "L", 1)
	f.issue(t, ctx, jacket, "L", 1, "2024-06-01")

	report, err := f.reports.OrderDemand(ctx, reports.OrderDemandFilter{MonthsAhead: 3, ShowZero: true})
	require.NoError(t, err)
	assert.Empty(t, report.Rows)
	assert.Zero(t, report.TotalNeed)

	report, err = f.reports.OrderDemand(ctx, reports.OrderDemandFilter{MonthsAhead: 13})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.Equal(t, 1, report.Rows[0].Need)
}

func TestIssuesAndDemand(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-20"))
	f := newFixture(t, ctx)

	boots := f.stocked(t, ctx, "BUT-01", 30, 0, "42", 10)
	late := f.issue(t, ctx, boots, "42", 1, "2024-06-10")
	early := f.issue(t, ctx, boots, "42", 2, "2024-05-02")

	lines, err := f.reports.Issues(ctx, reports.IssueFilter{SortBy: reports.SortDateEmployee})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, early.Number, lines[0].DocumentNumber)
	assert.Equal(t, late.Number, lines[1].DocumentNumber)
	assert.Equal(t, "Jan Kowalski", lines[0].EmployeeName)

	from := day("2024-06-01")
	lines, err = f.reports.Issues(ctx, reports.IssueFilter{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, late.Number, lines[0].DocumentNumber)

	// Due dates: 2024-06-01 and 2024-07-10.
	to := day("2024-06-30")
	due, err := f.reports.Demand(ctx, reports.IssueFilter{DateTo: &to})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, early.Number, due[0].DocumentNumber)
	require.NotNil(t, due[0].NextIssueDate)
	assert.Equal(t, day("2024-06-01"), *due[0].NextIssueDate)
}

func TestIssues_RejectsInvertedRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx)

	from, to := day("2024-07-01"), day("2024-06-01")
	_, err := f.reports.Issues(ctx, reports.IssueFilter{DateFrom: &from, DateTo: &to})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.reports.Receipts(ctx, reports.ReceiptFilter{DateFrom: &from, DateTo: &to})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
