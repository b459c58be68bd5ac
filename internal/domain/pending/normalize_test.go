package pending

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	"szafa/internal/core/types"
)

func TestDecodePayload_TolerantLines(t *testing.T) {
	raw := []byte(`{
		"seller": {"name": "ACME Sp. z o.o."},
		"dates": {"order_date": "03.06.2024", "delivery_date": "2024-06-07"},
		"reference_number": "ZAM/77",
		"document_number": "WZ 1234",
		"items": [
			{"code": "X1", "price": "12,50", "quantity_ordered": 3},
			{"sku": "X2", "product_name": "Vest", "unit_price": 7.2, "quantity": "4", "quantity_delivered": 2},
			{"name": "no code here", "quantity": 1},
			{"code": "X3", "unit_price": "n/a"}
		]
	}`)

	p, err := DecodePayload(raw)
	require.NoError(t, err)

	assert.Equal(t, "ACME Sp. z o.o.", p.Header.SellerName)
	assert.Equal(t, "03.06.2024", p.Header.OrderDate)
	assert.Equal(t, "ZAM/77", p.Header.ReferenceNumber)
	assert.Equal(t, "WZ 1234", p.Header.DocumentNumber)
	assert.Equal(t, 1, p.Skipped)
	require.Len(t, p.Lines, 3)

	x1 := p.Lines[0]
	assert.Equal(t, "X1", x1.Code)
	assert.Empty(t, x1.Name)
	assert.True(t, types.MustMoney("12.50").Equal(x1.UnitPrice))
	assert.Equal(t, 3, x1.QuantityOrdered)
	assert.Zero(t, x1.QuantityDelivered)

	x2 := p.Lines[1]
	assert.Equal(t, "X2", x2.Code)
	assert.Equal(t, "Vest", x2.Name)
	assert.True(t, types.MustMoney("7.2").Equal(x2.UnitPrice))
	assert.Equal(t, 4, x2.QuantityOrdered)
	assert.Equal(t, 2, x2.QuantityDelivered)

	x3 := p.Lines[2]
	assert.True(t, x3.UnitPrice.IsZero())
	assert.True(t, x3.PriceInvalid)
	assert.Zero(t, x3.QuantityOrdered)
}

func TestDecodePayload_RejectsInvalidValuesPerLine(t *testing.T) {
	raw := []byte(`{"items": [
		{"code": "A1", "quantity_ordered": -3, "price": "-5"},
		{"code": "B2", "quantity_ordered": 2, "price": "4,00"},
		{"code": "C3", "quantity": "several"},
		{"code": "D4", "quantity": 1, "quantity_delivered": -1},
		{"code": "E5", "price": "-0,01", "quantity": 1}
	]}`)

	p, err := DecodePayload(raw)
	require.NoError(t, err)

	require.Len(t, p.Lines, 1)
	assert.Equal(t, "B2", p.Lines[0].Code)
	assert.Equal(t, 2, p.Lines[0].QuantityOrdered)
	assert.Zero(t, p.Skipped)

	assert.Equal(t, []RejectedLine{
		{Line: 1, Code: "A1", Field: "unit_price", Reason: "must not be negative"},
		{Line: 3, Code: "C3", Field: "quantity_ordered", Reason: "must be a number"},
		{Line: 4, Code: "D4", Field: "quantity_delivered", Reason: "must not be negative"},
		{Line: 5, Code: "E5", Field: "unit_price", Reason: "must not be negative"},
	}, p.Rejected)
}

func TestNormalizeLine_LineError(t *testing.T) {
	line, ok, err := NormalizeLine(map[string]any{"code": "Q1", "quantity": json.Number("-2")})
	assert.False(t, ok)
	assert.Equal(t, "Q1", line.Code)

	var lineErr *LineError
	require.ErrorAs(t, err, &lineErr)
	assert.Equal(t, "quantity_ordered", lineErr.Field)

	_, ok, err = NormalizeLine(map[string]any{"name": "no code"})
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestDecodePayload_ShapeErrors(t *testing.T) {
	for _, raw := range []string{
		`[1,2]`,
		`"text"`,
		`null`,
		`{"items": {"code": "X1"}}`,
		`{"items": ["X1"]}`,
		`{broken`,
	} {
		_, err := DecodePayload([]byte(raw))
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), raw)
	}

	p, err := DecodePayload([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, p.Lines)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"03.06.2024", "2024-06-03", "03/06/2024", " 2024-06-03 "} {
		got, ok := ParseDate(s)
		assert.True(t, ok, s)
		assert.Equal(t, want, got, s)
	}

	for _, s := range []string{"", "June 3rd", "2024/06/03", "31.02.2024"} {
		_, ok := ParseDate(s)
		assert.False(t, ok, s)
	}
}
