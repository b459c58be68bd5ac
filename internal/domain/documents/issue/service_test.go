package issue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/id"
	"szafa/internal/core/numerator"
	"szafa/internal/core/types"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/domain/employees"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/infrastructure/storage/memory"
)

type fixture struct {
	store     *memory.Store
	ledger    *stock.Service
	employees *employees.Service
	issues    *issue.Service

	product  product.Product
	employee employees.Employee
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// newFixture wires the services over one store and seeds a product with a 30 day usage
// period, 10 units of stock in size 42 and an employee hired on 2024-05-01.
func newFixture(t *testing.T, ctx context.Context) *fixture {
	t.Helper()

	store := memory.NewStore()
	dicts := dictionary.NewService(store.Dictionaries())
	products := product.NewService(store.Products(), store)
	ledger := stock.NewService(store.Stock(), store)
	emps := employees.NewService(store.Employees(), store, dicts, nil)
	issues := issue.NewService(store.Issues(), products, emps, ledger, store.Numerator(), store)
	emps.SetDeactivator(issues)

	entries := map[dictionary.Kind]*dictionary.Entry{}
	for _, kind := range []dictionary.Kind{dictionary.KindCompany, dictionary.KindDepartment, dictionary.KindPosition} {
		e := &dictionary.Entry{Kind: kind, Name: string(kind) + " A"}
		require.NoError(t, dicts.Create(ctx, e))
		entries[kind] = e
	}

	cat, err := products.EnsureCategory(ctx, "Safety shoes", product.CategoryFootwear)
	require.NoError(t, err)
	p := &product.Product{
		Code:       "BUT-01",
		Name:       "Safety boot S3",
		CategoryID: cat.ID,
		UnitPrice:  types.MustMoney("120.00"),
		PeriodDays: 30,
	}
	require.NoError(t, products.Create(ctx, p))

	_, err = ledger.Adjust(ctx, p.ID, "42", 10, "opening balance")
	require.NoError(t, err)

	e := &employees.Employee{
		CardNumber:   "1001",
		FirstName:    "Anna",
		LastName:     "Nowak",
		CompanyID:    entries[dictionary.KindCompany].ID,
		DepartmentID: entries[dictionary.KindDepartment].ID,
		PositionID:   entries[dictionary.KindPosition].ID,
	}
	require.NoError(t, emps.Create(ctx, e))
	require.NoError(t, emps.SavePeriod(ctx, &employees.Period{EmployeeID: e.ID, StartDate: day("2024-05-01")}))

	return &fixture{store: store, ledger: ledger, employees: emps, issues: issues, product: *p, employee: *e}
}

func (f *fixture) balance(t *testing.T, ctx context.Context) int {
	t.Helper()
	b, err := f.ledger.GetBalance(ctx, f.product.ID, "42")
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) movements(t *testing.T, ctx context.Context) []stock.Movement {
	t.Helper()
	m, err := f.ledger.ListMovements(ctx, stock.MovementFilter{ProductID: &f.product.ID})
	require.NoError(t, err)
	return m
}

func (f *fixture) issueOne(t *testing.T, ctx context.Context, qty int, price *types.Money) *issue.Document {
	t.Helper()
	doc := &issue.Document{
		EmployeeID: f.employee.ID,
		IssueDate:  day("2024-06-01"),
		Items: []issue.Item{{
			ProductID: f.product.ID,
			Quantity:  qty,
			Size:      "42",
			UnitPrice: price,
		}},
	}
	require.NoError(t, f.issues.Create(ctx, doc))
	return doc
}

func TestCreate_EmployeeScenario(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)

	doc := f.issueOne(t, ctx, 1, nil)

	assert.Equal(t, "DW/2024/06/0001", doc.Number)
	item := doc.Items[0]
	assert.Equal(t, issue.StatusActive, item.Status)
	assert.False(t, item.AutoDeactivated)
	require.NotNil(t, item.NextIssueDate)
	assert.Equal(t, day("2024-07-01"), *item.NextIssueDate)
	assert.Nil(t, item.TotalValue)
	assert.Equal(t, 9, f.balance(t, ctx))

	// Employment ends on 2024-06-15 and the period is saved that day.
	closing := appctx.WithToday(context.Background(), day("2024-06-15"))
	periods, err := f.employees.ListPeriods(closing, f.employee.ID)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	end := day("2024-06-15")
	periods[0].EndDate = &end
	require.NoError(t, f.employees.SavePeriod(closing, &periods[0]))

	got, err := f.issues.GetByID(closing, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, issue.StatusUsed, got.Items[0].Status)
	assert.True(t, got.Items[0].AutoDeactivated)

	assert.Equal(t, 9, f.balance(t, closing))
	assert.Len(t, f.movements(t, closing), 2, "opening balance and issuance only")
}

func TestCreate_TotalValueAndMovement(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)

	price := types.MustMoney("12.50")
	doc := f.issueOne(t, ctx, 3, &price)

	require.NotNil(t, doc.Items[0].TotalValue)
	assert.True(t, types.MustMoney("37.50").Equal(*doc.Items[0].TotalValue))

	movements := f.movements(t, ctx)
	require.Len(t, movements, 2)
	out := movements[0]
	assert.Equal(t, stock.KindOut, out.Kind)
	assert.Equal(t, -3, out.Quantity)
	assert.Equal(t, stock.OriginIssue, out.DocumentType)
	require.NotNil(t, out.DocumentNumber)
	assert.Equal(t, doc.Number, *out.DocumentNumber)
	assert.Equal(t, "Employee issuance: Anna Nowak (1001)", out.Notes)
}

func TestCreate_EndedEmploymentStoresUsedItem(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-20"))
	f := newFixture(t, ctx)

	periods, err := f.employees.ListPeriods(ctx, f.employee.ID)
	require.NoError(t, err)
	end := day("2024-06-10")
	periods[0].EndDate = &end
	require.NoError(t, f.employees.SavePeriod(ctx, &periods[0]))

	doc := f.issueOne(t, ctx, 2, nil)
	assert.Equal(t, issue.StatusUsed, doc.Items[0].Status)
	assert.True(t, doc.Items[0].AutoDeactivated)
	assert.Equal(t, 8, f.balance(t, ctx))
}

func TestCreate_RollsBackOnUnknownProduct(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)

	doc := &issue.Document{
		EmployeeID: f.employee.ID,
		IssueDate:  day("2024-06-01"),
		Items: []issue.Item{
			{ProductID: f.product.ID, Quantity: 1, Size: "42"},
			{ProductID: id.New(), Quantity: 1},
		},
	}
	err := f.issues.Create(ctx, doc)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	assert.Equal(t, 10, f.balance(t, ctx))
	list, err := f.issues.List(ctx, issue.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestReturn_CreditsStock(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	doc := f.issueOne(t, ctx, 2, nil)

	item, err := f.issues.Return(ctx, doc.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, issue.StatusReturned, item.Status)
	assert.Equal(t, 10, f.balance(t, ctx))

	ret := f.movements(t, ctx)[0]
	assert.Equal(t, stock.KindIn, ret.Kind)
	assert.Equal(t, 2, ret.Quantity)
	assert.Equal(t, stock.OriginReturn, ret.DocumentType)
	assert.Equal(t, "Return from employee: Anna Nowak (1001)", ret.Notes)

	_, err = f.issues.Return(ctx, doc.Items[0].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
	_, err = f.issues.MarkUsed(ctx, doc.Items[0].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
	assert.Equal(t, 10, f.balance(t, ctx))
}

func TestMarkUsed_NoMovement(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	doc := f.issueOne(t, ctx, 1, nil)

	item, err := f.issues.MarkUsed(ctx, doc.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, issue.StatusUsed, item.Status)
	assert.False(t, item.AutoDeactivated)
	assert.Len(t, f.movements(t, ctx), 2)

	_, err = f.issues.Return(ctx, doc.Items[0].ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidTransition))
}

func TestUpdateItem_QuantityCorrections(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	price := types.MustMoney("10.00")
	doc := f.issueOne(t, ctx, 2, &price)
	itemID := doc.Items[0].ID

	more := 5
	item, err := f.issues.UpdateItem(ctx, itemID, issue.ItemPatch{Quantity: &more})
	require.NoError(t, err)
	assert.True(t, types.MustMoney("50.00").Equal(*item.TotalValue))
	assert.Equal(t, 5, f.balance(t, ctx))

	correction := f.movements(t, ctx)[0]
	assert.Equal(t, stock.KindOut, correction.Kind)
	assert.Equal(t, -3, correction.Quantity)
	assert.Equal(t, "Correction of issued quantity: 2 -> 5", correction.Notes)

	fewer := 1
	_, err = f.issues.UpdateItem(ctx, itemID, issue.ItemPatch{Quantity: &fewer})
	require.NoError(t, err)
	assert.Equal(t, 9, f.balance(t, ctx))
	correction = f.movements(t, ctx)[0]
	assert.Equal(t, stock.KindIn, correction.Kind)
	assert.Equal(t, 4, correction.Quantity)

	// Price-only edits leave stock alone.
	notes := "size swapped"
	item, err = f.issues.UpdateItem(ctx, itemID, issue.ItemPatch{ClearPrice: true, Notes: &notes})
	require.NoError(t, err)
	assert.Nil(t, item.UnitPrice)
	assert.Nil(t, item.TotalValue)
	assert.Len(t, f.movements(t, ctx), 4)
}

func TestUpdateItem_ReturnedIsClosed(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	doc := f.issueOne(t, ctx, 1, nil)

	_, err := f.issues.Return(ctx, doc.Items[0].ID)
	require.NoError(t, err)

	qty := 3
	_, err = f.issues.UpdateItem(ctx, doc.Items[0].ID, issue.ItemPatch{Quantity: &qty})
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
}

func TestDelete_KeepsMovements(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	doc := f.issueOne(t, ctx, 4, nil)

	require.NoError(t, f.issues.Delete(ctx, doc.ID))

	_, err := f.issues.GetByID(ctx, doc.ID)
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, 6, f.balance(t, ctx))
	assert.Len(t, f.movements(t, ctx), 2)
}

func TestCreate_ConcurrentNumbering(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	_, err := f.ledger.Adjust(ctx, f.product.ID, "42", 100, "restock")
	require.NoError(t, err)

	const workers = 20
	numbers := make([]string, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := range workers {
		g.Go(func() error {
			doc := &issue.Document{
				EmployeeID: f.employee.ID,
				IssueDate:  day("2024-06-03"),
				Items:      []issue.Item{{ProductID: f.product.ID, Quantity: 1, Size: "42"}},
			}
			err := numerator.WithRetry(gctx, numerator.DefaultRetryAttempts, func(ctx context.Context) error {
				return f.issues.Create(ctx, doc)
			})
			numbers[i] = doc.Number
			return err
		})
	}
	require.NoError(t, g.Wait())

	seen := make(map[string]bool, workers)
	for _, n := range numbers {
		assert.False(t, seen[n], "duplicate number %s", n)
		seen[n] = true
	}
	for i := 1; i <= workers; i++ {
		assert.True(t, seen[numerator.ScopeOf(numerator.DocTypeIssue, day("2024-06-01")).Format(int64(i))])
	}
	assert.Equal(t, 110-workers, f.balance(t, ctx))
}

func TestRecomputeValues(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-06-01"))
	f := newFixture(t, ctx)
	doc := f.issueOne(t, ctx, 2, nil)

	n, err := f.issues.RecomputeValues(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.issues.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Items[0].TotalValue)
	assert.True(t, types.MustMoney("240.00").Equal(*got.Items[0].TotalValue))
}
