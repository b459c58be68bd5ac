package pending_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/domain/pending"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/infrastructure/storage/memory"
)

type fixture struct {
	store    *memory.Store
	products *product.Service
	ledger   *stock.Service
	pending  *pending.Service
	supplier dictionary.Entry
	category product.Category
}

func newFixture(t *testing.T, ctx context.Context, batchSize int) *fixture {
	t.Helper()
	store := memory.NewStore()
	dicts := dictionary.NewService(store.Dictionaries())
	products := product.NewService(store.Products(), store)
	ledger := stock.NewService(store.Stock(), store)
	receipts := receipt.NewService(store.Receipts(), products, dicts, ledger, store.Numerator(), store)
	relinker := pending.NewRelinker(store.Pending(), products, store, batchSize)

	supplier := &dictionary.Entry{Kind: dictionary.KindSupplier, Name: "Acme"}
	require.NoError(t, dicts.Create(ctx, supplier))
	require.NoError(t, dicts.Create(ctx, &dictionary.Entry{Kind: dictionary.KindCompany, Name: "Ceva 1"}))

	cat, err := products.EnsureCategory(ctx, "Workwear", product.CategoryClothing)
	require.NoError(t, err)

	svc := pending.NewService(
		store.Pending(),
		products,
		pending.NewFirstTokenMatcher(dicts),
		dicts,
		receipts,
		relinker,
		store,
		pending.Config{},
	)
	return &fixture{store: store, products: products, ledger: ledger, pending: svc, supplier: *supplier, category: *cat}
}

func (f *fixture) createProduct(t *testing.T, ctx context.Context, code string) product.Product {
	t.Helper()
	p := &product.Product{Code: code, Name: "Product " + code, CategoryID: f.category.ID, UnitPrice: types.MustMoney("9.99"), PeriodDays: 90}
	require.NoError(t, f.products.Create(ctx, p))
	return *p
}

const deliveryNote = `{
	"seller": {"name": "ACME Sp. z o.o."},
	"dates": {"order_date": "03.06.2024", "delivery_date": "07.06.2024"},
	"document_number": "WZ/1",
	"items": [
		{"code": "X1", "price": "12,50", "quantity_ordered": 3},
		{"code": "K9", "name": "Known", "price": "2", "quantity_ordered": 5, "quantity_delivered": 4}
	]
}`

func TestIngestReceipt_UnmatchedLineRelinkedLater(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	f := newFixture(t, ctx, 0)
	known := f.createProduct(t, ctx, "K9")

	res, err := f.pending.IngestReceipt(ctx, []byte(deliveryNote))
	require.NoError(t, err)
	assert.Equal(t, 2, res.ItemsCreated)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 1, res.Unmatched)
	assert.False(t, res.DateFallback)
	assert.Empty(t, res.Rejected)

	doc, err := f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)
	stagedIDs := make([]id.ID, 0, len(doc.Items))
	for _, it := range doc.Items {
		stagedIDs = append(stagedIDs, it.ID)
	}
	assert.ElementsMatch(t, stagedIDs, res.ItemIDs)
	require.NotNil(t, doc.SupplierID)
	assert.Equal(t, f.supplier.ID, *doc.SupplierID)
	assert.NotNil(t, doc.RecipientID)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), doc.IssueDate)
	require.Len(t, doc.Items, 2)

	byCode := map[string]pending.ReceiptItem{}
	for _, it := range doc.Items {
		byCode[it.Code] = it
	}
	x1 := byCode["X1"]
	assert.Nil(t, x1.ProductID)
	require.NotNil(t, x1.PendingProductID)
	assert.True(t, types.MustMoney("12.50").Equal(x1.UnitPrice))
	assert.Equal(t, 3, x1.QuantityOrdered)
	require.NotNil(t, byCode["K9"].ProductID)
	assert.Equal(t, known.ID, *byCode["K9"].ProductID)

	// Nothing to relink while X1 is not in the catalog.
	n, err := f.pending.Relink(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	x1Product := f.createProduct(t, ctx, "X1")
	n, err = f.pending.Relink(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.pending.Relink(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second pass changes nothing")

	doc, err = f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)
	for _, it := range doc.Items {
		require.NotNil(t, it.ProductID, it.Code)
		assert.Nil(t, it.PendingProductID, it.Code)
		if it.Code == "X1" {
			assert.Equal(t, x1Product.ID, *it.ProductID)
		}
	}
}

func TestIngestReceipt_DateFallback(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	ctx := appctx.WithToday(context.Background(), today)
	f := newFixture(t, ctx, 0)

	res, err := f.pending.IngestReceipt(ctx, []byte(`{"seller": {"name": "Nobody"}, "dates": {"order_date": "soon"}, "items": []}`))
	require.NoError(t, err)
	assert.True(t, res.DateFallback)
	assert.Zero(t, res.ItemsCreated)

	doc, err := f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, today, doc.IssueDate)
	assert.Nil(t, doc.SupplierID)
	assert.Nil(t, doc.DeliveryDate)
}

func TestRelink_BatchesAcrossManyLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 2)

	for range 3 {
		_, err := f.pending.IngestReceipt(ctx, []byte(`{"items": [{"code": "A"}, {"code": "B"}, {"code": "C"}]}`))
		require.NoError(t, err)
	}
	f.createProduct(t, ctx, "A")
	f.createProduct(t, ctx, "C")

	n, err := f.pending.Relink(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, n)

	n, err = f.pending.Relink(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIngestProducts_SkipsKnownCodes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)
	f.createProduct(t, ctx, "EXIST")

	res, err := f.pending.IngestProducts(ctx, []byte(`{"items": [
		{"code": "N1", "name": "Fleece", "unit_price": "30,00", "size": "L"},
		{"sku": "N2"},
		{"code": "EXIST"},
		{"code": "N1"},
		{"name": "no code"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"N1", "N2"}, res.Created)
	assert.Equal(t, []string{"EXIST", "N1"}, res.Skipped)

	again, err := f.pending.IngestProducts(ctx, []byte(`{"items": [{"code": "N2"}]}`))
	require.NoError(t, err)
	assert.Empty(t, again.Created)

	list, err := f.pending.ListProducts(ctx, f.listAll())
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "Fleece", list.Items[0].Name)
	assert.Equal(t, pending.DefaultProductName, list.Items[1].Name)
}

func TestApproveProducts_PromotesAndRelinks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)

	res, err := f.pending.IngestReceipt(ctx, []byte(`{"items": [{"code": "X1", "name": "Jacket", "price": "12,50", "quantity_ordered": 3}]}`))
	require.NoError(t, err)
	list, err := f.pending.ListProducts(ctx, f.listAll())
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	placeholder := list.Items[0]
	assert.Equal(t, "Jacket", placeholder.Name)

	period := 180
	created, err := f.pending.ApproveProducts(ctx, pending.ApproveProductsInput{
		CategoryID: f.category.ID,
		Items:      []pending.ProductApproval{{PendingID: placeholder.ID, PeriodDays: &period}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "X1", created[0].Code)
	assert.Equal(t, 180, created[0].PeriodDays)
	assert.True(t, types.MustMoney("12.50").Equal(created[0].UnitPrice))

	list, err = f.pending.ListProducts(ctx, f.listAll())
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	doc, err := f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc.Items[0].ProductID)
	assert.Equal(t, created[0].ID, *doc.Items[0].ProductID)
}

func TestApproveProducts_DuplicateCodeRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)

	res, err := f.pending.IngestProducts(ctx, []byte(`{"items": [{"code": "D1"}, {"code": "D2"}]}`))
	require.NoError(t, err)
	f.createProduct(t, ctx, "D2")

	_, err = f.pending.ApproveProducts(ctx, pending.ApproveProductsInput{
		CategoryID: f.category.ID,
		Items:      []pending.ProductApproval{{PendingID: res.IDs[0]}, {PendingID: res.IDs[1]}},
	})
	assert.True(t, apperror.IsDuplicate(err))

	_, err = f.products.GetByCode(ctx, "D1")
	assert.True(t, apperror.IsNotFound(err))
	list, err := f.pending.ListProducts(ctx, f.listAll())
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}

func TestApproveProducts_ValidatesInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)

	_, err := f.pending.ApproveProducts(ctx, pending.ApproveProductsInput{CategoryID: f.category.ID})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	negative := -1
	_, err = f.pending.ApproveProducts(ctx, pending.ApproveProductsInput{
		CategoryID: f.category.ID,
		Items:      []pending.ProductApproval{{PendingID: id.New(), PeriodDays: &negative}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestRejectProducts_RelinksFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)

	res, err := f.pending.IngestReceipt(ctx, []byte(`{"items": [{"code": "R1", "quantity": 2}]}`))
	require.NoError(t, err)
	list, err := f.pending.ListProducts(ctx, f.listAll())
	require.NoError(t, err)
	require.Len(t, list.Items, 1)

	catalogued := f.createProduct(t, ctx, "R1")
	deleted, err := f.pending.RejectProducts(ctx, []id.ID{list.Items[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	doc, err := f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)
	require.NotNil(t, doc.Items[0].ProductID)
	assert.Equal(t, catalogued.ID, *doc.Items[0].ProductID)
}

func TestApproveReceipt_CreatesPZ(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	f := newFixture(t, ctx, 0)
	known := f.createProduct(t, ctx, "K9")

	res, err := f.pending.IngestReceipt(ctx, []byte(deliveryNote))
	require.NoError(t, err)

	// X1 has no product yet.
	_, err = f.pending.ApproveReceipt(ctx, res.DocumentID, pending.ApproveReceiptInput{})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, []string{"X1"}, appErr.Details["codes"])

	x1 := f.createProduct(t, ctx, "X1")
	pz, err := f.pending.ApproveReceipt(ctx, res.DocumentID, pending.ApproveReceiptInput{})
	require.NoError(t, err)
	assert.Equal(t, "PZ/2024/06/0001", pz.Number)
	assert.Equal(t, f.supplier.ID, pz.SupplierID)
	require.Len(t, pz.Items, 2)

	b, err := f.ledger.GetBalance(ctx, x1.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Quantity)
	b, err = f.ledger.GetBalance(ctx, known.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 4, b.Quantity, "delivered quantity wins over ordered")

	_, err = f.pending.GetReceipt(ctx, res.DocumentID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestIngestReceipt_InvalidLinesSkippedRestApproved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)
	good := f.createProduct(t, ctx, "B2")
	f.createProduct(t, ctx, "A1")

	res, err := f.pending.IngestReceipt(ctx, []byte(`{"seller": {"name": "Acme"}, "dates": {"order_date": "2024-06-03"}, "items": [
		{"code": "A1", "quantity_ordered": -3, "price": "-5"},
		{"code": "B2", "quantity_ordered": 4, "price": "2,50"},
		{"code": "C3", "quantity": "a few"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, res.ItemsCreated)
	require.Len(t, res.ItemIDs, 1)
	require.Len(t, res.Rejected, 2)
	assert.Equal(t, "A1", res.Rejected[0].Code)
	assert.Equal(t, 1, res.Rejected[0].Line)
	assert.Equal(t, "C3", res.Rejected[1].Code)
	assert.Equal(t, "quantity_ordered", res.Rejected[1].Field)

	doc, err := f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, res.ItemIDs[0], doc.Items[0].ID)

	pz, err := f.pending.ApproveReceipt(ctx, res.DocumentID, pending.ApproveReceiptInput{})
	require.NoError(t, err)
	require.Len(t, pz.Items, 1)
	assert.Equal(t, good.ID, pz.Items[0].ProductID)
	assert.True(t, types.MustMoney("10.00").Equal(pz.Items[0].TotalValue))

	b, err := f.ledger.GetBalance(ctx, good.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 4, b.Quantity)
}

func TestApproveReceipt_OverridesAndZeroLines(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)
	p := f.createProduct(t, ctx, "Z1")

	res, err := f.pending.IngestReceipt(ctx, []byte(`{"seller": {"name": "Acme"}, "dates": {"order_date": "2024-06-03"}, "items": [
		{"code": "Z1", "quantity": 2},
		{"code": "UNKNOWN", "quantity": 0}
	]}`))
	require.NoError(t, err)
	doc, err := f.pending.GetReceipt(ctx, res.DocumentID)
	require.NoError(t, err)

	var z1 pending.ReceiptItem
	for _, it := range doc.Items {
		if it.Code == "Z1" {
			z1 = it
		}
	}
	qty := 6
	price := types.MustMoney("3.00")
	pz, err := f.pending.ApproveReceipt(ctx, res.DocumentID, pending.ApproveReceiptInput{
		Items: []pending.ReceiptLineOverride{{ItemID: z1.ID, Quantity: &qty, UnitPrice: &price}},
	})
	require.NoError(t, err)
	require.Len(t, pz.Items, 1)
	assert.True(t, types.MustMoney("18.00").Equal(pz.Items[0].TotalValue))

	b, err := f.ledger.GetBalance(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 6, b.Quantity)
}

func TestApproveReceipt_RequiresSupplier(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, ctx, 0)
	f.createProduct(t, ctx, "S1")

	res, err := f.pending.IngestReceipt(ctx, []byte(`{"seller": {"name": "Unknown Ltd"}, "items": [{"code": "S1", "quantity": 1}]}`))
	require.NoError(t, err)

	_, err = f.pending.ApproveReceipt(ctx, res.DocumentID, pending.ApproveReceiptInput{})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	supplierID := f.supplier.ID
	pz, err := f.pending.ApproveReceipt(ctx, res.DocumentID, pending.ApproveReceiptInput{SupplierID: &supplierID})
	require.NoError(t, err)
	assert.Equal(t, supplierID, pz.SupplierID)
}

func (f *fixture) listAll() domain.ListFilter {
	return domain.ListFilter{Limit: 100}
}
