package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/domain/registers/stock"
)

func TestColumns_FollowsEmbeddedStructs(t *testing.T) {
	cols := Columns[receipt.ItemDetail]()

	assert.Equal(t, []string{
		"id", "document_id", "product_id", "quantity", "size", "unit_price", "total_value", "notes",
		"document_number",
	}, cols)
}

func TestColumns_SkipsUntaggedFields(t *testing.T) {
	cols := Columns[receipt.Document]()

	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, 6)
}

func TestStructToMap(t *testing.T) {
	productID := id.New()
	view := stock.BalanceView{
		Balance:     stock.Balance{ProductID: productID, Size: "42", Quantity: 7},
		ProductCode: "BUT-01",
		UnitPrice:   types.MustMoney("120.00"),
	}

	m := StructToMap(&view)

	assert.Equal(t, productID, m["product_id"])
	assert.Equal(t, "42", m["size"])
	assert.Equal(t, 7, m["quantity"])
	assert.Equal(t, "BUT-01", m["product_code"])
	assert.True(t, types.MustMoney("120").Equal(m["unit_price"].(types.Money)))
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
