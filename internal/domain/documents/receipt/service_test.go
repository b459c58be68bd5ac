package receipt_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/infrastructure/storage/memory"
)

type fixture struct {
	receipts  *receipt.Service
	ledger    *stock.Service
	product   product.Product
	supplier  id.ID
	recipient id.ID
}

func newFixture(t *testing.T, ctx context.Context) *fixture {
	t.Helper()
	store := memory.NewStore()
	dicts := dictionary.NewService(store.Dictionaries())
	products := product.NewService(store.Products(), store)
	ledger := stock.NewService(store.Stock(), store)

	supplier := &dictionary.Entry{Kind: dictionary.KindSupplier, Name: "Acme"}
	require.NoError(t, dicts.Create(ctx, supplier))
	recipient := &dictionary.Entry{Kind: dictionary.KindCompany, Name: "Ceva 1"}
	require.NoError(t, dicts.Create(ctx, recipient))

	cat, err := products.EnsureCategory(ctx, "Gloves", product.CategorySafety)
	require.NoError(t, err)
	p := &product.Product{Code: "RK-7", Name: "Work gloves", CategoryID: cat.ID, UnitPrice: types.MustMoney("4.50"), PeriodDays: 7}
	require.NoError(t, products.Create(ctx, p))

	return &fixture{
		receipts:  receipt.NewService(store.Receipts(), products, dicts, ledger, store.Numerator(), store),
		ledger:    ledger,
		product:   *p,
		supplier:  supplier.ID,
		recipient: recipient.ID,
	}
}

func (f *fixture) create(t *testing.T, ctx context.Context, qty int, price string) *receipt.Document {
	t.Helper()
	doc := &receipt.Document{
		IssueDate:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		SupplierID:  f.supplier,
		RecipientID: f.recipient,
		Items:       []receipt.Item{{ProductID: f.product.ID, Quantity: qty, UnitPrice: types.MustMoney(price)}},
	}
	require.NoError(t, f.receipts.Create(ctx, doc))
	return doc
}

func TestCreate_TotalsAndStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx)

	doc := f.create(t, ctx, 12, "4.50")

	assert.Equal(t, "PZ/2024/06/0001", doc.Number)
	assert.True(t, types.MustMoney("54.00").Equal(doc.Items[0].TotalValue))

	b, err := f.ledger.GetBalance(ctx, f.product.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 12, b.Quantity)

	movements, err := f.ledger.ListMovements(ctx, stock.MovementFilter{DocumentID: &doc.ID})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, stock.KindIn, movements[0].Kind)
	assert.Equal(t, 12, movements[0].Quantity)
	assert.Equal(t, "External reception: PZ/2024/06/0001", movements[0].Notes)

	second := f.create(t, ctx, 1, "4.50")
	assert.Equal(t, "PZ/2024/06/0002", second.Number)
}

func TestUpdateItem_QuantityCorrection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx)
	doc := f.create(t, ctx, 12, "4.50")

	qty := 20
	item, err := f.receipts.UpdateItem(ctx, doc.Items[0].ID, receipt.ItemPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.True(t, types.MustMoney("90.00").Equal(item.TotalValue))

	movements, err := f.ledger.ListMovements(ctx, stock.MovementFilter{DocumentID: &doc.ID})
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, 8, movements[0].Quantity)
	assert.Equal(t, stock.KindIn, movements[0].Kind)

	b, err := f.ledger.GetBalance(ctx, f.product.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 20, b.Quantity)
}

func TestUpdateItem_PriceOnlyMovesNoStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx)
	doc := f.create(t, ctx, 12, "4.50")

	price := types.MustMoney("5.00")
	item, err := f.receipts.UpdateItem(ctx, doc.Items[0].ID, receipt.ItemPatch{UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, types.MustMoney("60.00").Equal(item.TotalValue))

	movements, err := f.ledger.ListMovements(ctx, stock.MovementFilter{DocumentID: &doc.ID})
	require.NoError(t, err)
	assert.Len(t, movements, 1)
}

func TestCreate_UnknownSupplier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx)

	doc := &receipt.Document{
		IssueDate:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		SupplierID:  id.New(),
		RecipientID: f.recipient,
		Items:       []receipt.Item{{ProductID: f.product.ID, Quantity: 1, UnitPrice: types.MustMoney("1")}},
	}
	err := f.receipts.Create(ctx, doc)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	b, err := f.ledger.GetBalance(ctx, f.product.ID, "")
	require.NoError(t, err)
	assert.Zero(t, b.Quantity)
}
