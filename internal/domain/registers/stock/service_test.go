package stock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain/registers/stock"
	"szafa/internal/infrastructure/storage/memory"
)

func newLedger() (*stock.Service, *memory.Store) {
	store := memory.NewStore()
	return stock.NewService(store.Stock(), store), store
}

func TestApplyMovement_ConservationWithClamp(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger()
	productID := id.New()

	steps := []struct {
		kind stock.Kind
		qty  int
		want int
	}{
		{stock.KindIn, 10, 10},
		{stock.KindOut, -4, 6},
		{stock.KindOut, -9, 0}, // clamped: 3 units of history have no stock behind them
		{stock.KindIn, 5, 5},
		{stock.KindAdjustment, -2, 3},
		{stock.KindReturn, 1, 4},
	}

	for _, step := range steps {
		b, err := ledger.ApplyMovement(ctx, stock.MovementInput{
			ProductID:    productID,
			Size:         "42",
			Quantity:     step.qty,
			Kind:         step.kind,
			DocumentType: stock.OriginAdjustment,
		})
		require.NoError(t, err)
		assert.Equal(t, step.want, b.Quantity)
	}

	movements, err := ledger.ListMovements(ctx, stock.MovementFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, movements, len(steps))

	// Replaying the history with the floor applied at every step reproduces the balance.
	replayed := 0
	for i := len(movements) - 1; i >= 0; i-- {
		replayed = max(0, replayed+movements[i].Quantity)
	}
	balance, err := ledger.GetBalance(ctx, productID, "42")
	require.NoError(t, err)
	assert.Equal(t, replayed, balance.Quantity)
	assert.Equal(t, 4, balance.Quantity)
}

func TestApplyMovement_SizesAreSeparateRows(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger()
	productID := id.New()

	_, err := ledger.ApplyMovement(ctx, stock.MovementInput{ProductID: productID, Size: "M", Quantity: 3, Kind: stock.KindIn, DocumentType: stock.OriginReceipt})
	require.NoError(t, err)
	_, err = ledger.ApplyMovement(ctx, stock.MovementInput{ProductID: productID, Quantity: 2, Kind: stock.KindIn, DocumentType: stock.OriginReceipt})
	require.NoError(t, err)

	m, err := ledger.GetBalance(ctx, productID, "M")
	require.NoError(t, err)
	none, err := ledger.GetBalance(ctx, productID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, m.Quantity)
	assert.Equal(t, 2, none.Quantity)
}

func TestApplyMovement_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger()
	productID := id.New()

	cases := []stock.MovementInput{
		{ProductID: productID, Quantity: 0, Kind: stock.KindIn, DocumentType: "PZ"},
		{ProductID: productID, Quantity: -1, Kind: stock.KindIn, DocumentType: "PZ"},
		{ProductID: productID, Quantity: 1, Kind: stock.KindOut, DocumentType: "DW"},
		{ProductID: productID, Quantity: 1, Kind: "transfer", DocumentType: "DW"},
		{ProductID: productID, Quantity: 1, Kind: stock.KindIn},
		{Quantity: 1, Kind: stock.KindIn, DocumentType: "PZ"},
	}
	for _, in := range cases {
		_, err := ledger.ApplyMovement(ctx, in)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "input %+v", in)
	}

	movements, err := ledger.ListMovements(ctx, stock.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestApplyMovement_RollsBackWithCaller(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger()
	productID := id.New()

	err := store.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := ledger.ApplyMovement(ctx, stock.MovementInput{ProductID: productID, Quantity: 5, Kind: stock.KindIn, DocumentType: "PZ"}); err != nil {
			return err
		}
		return apperror.NewConflict("abort")
	})
	require.Error(t, err)

	b, err := ledger.GetBalance(ctx, productID, "")
	require.NoError(t, err)
	assert.Zero(t, b.Quantity)
	movements, err := ledger.ListMovements(ctx, stock.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movements)
}

func TestAdjust_RecordsOrigin(t *testing.T) {
	ctx := context.Background()
	ledger, _ := newLedger()
	productID := id.New()

	b, err := ledger.Adjust(ctx, productID, "L", 7, "inventory count")
	require.NoError(t, err)
	assert.Equal(t, 7, b.Quantity)

	movements, err := ledger.ListMovements(ctx, stock.MovementFilter{ProductID: &productID})
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, stock.KindAdjustment, movements[0].Kind)
	assert.Equal(t, stock.OriginAdjustment, movements[0].DocumentType)
	assert.Nil(t, movements[0].DocumentID)
	assert.Nil(t, movements[0].DocumentNumber)
	assert.Equal(t, "inventory count", movements[0].Notes)
}

type countingTx struct {
	*memory.Store
	readOnly int
}

func (c *countingTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	c.readOnly++
	return c.Store.ReadOnly(ctx, fn)
}

func TestReads_RunReadOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	txm := &countingTx{Store: store}
	ledger := stock.NewService(store.Stock(), txm)
	productID := id.New()

	_, err := ledger.ApplyMovement(ctx, stock.MovementInput{
		ProductID: productID, Quantity: 3, Kind: stock.KindIn, DocumentType: stock.OriginAdjustment,
	})
	require.NoError(t, err)
	assert.Zero(t, txm.readOnly)

	b, err := ledger.GetBalance(ctx, productID, "")
	require.NoError(t, err)
	assert.Equal(t, 3, b.Quantity)
	_, err = ledger.ListBalances(ctx, stock.BalanceFilter{})
	require.NoError(t, err)
	movements, err := ledger.ListMovements(ctx, stock.MovementFilter{ProductID: &productID})
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	assert.Equal(t, 3, txm.readOnly)
}
