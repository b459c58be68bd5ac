// Package stock is the warehouse stock ledger: one quantity row per (product, size)
// and an append-only history of movements explaining every change.
package stock

import (
	"fmt"
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
)

// Kind classifies a movement.
type Kind string

const (
	KindIn         Kind = "in"
	KindOut        Kind = "out"
	KindAdjustment Kind = "adjustment"
	KindReturn     Kind = "return"
)

// Valid reports whether k is a known movement kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIn, KindOut, KindAdjustment, KindReturn:
		return true
	}
	return false
}

// CorrectionKind picks the kind of a correction posting: in when stock grows, out when it shrinks.
func CorrectionKind(delta int) Kind {
	if delta > 0 {
		return KindIn
	}
	return KindOut
}

// Origin document types recorded on movements.
const (
	OriginIssue      = "DW"
	OriginReceipt    = "PZ"
	OriginReturn     = "RETURN"
	OriginAdjustment = "ADJUSTMENT"
)

// Balance is the on-hand quantity of one (product, size) pair.
// Size is "" for products without sizes.
type Balance struct {
	ProductID id.ID     `db:"product_id" json:"productId"`
	Size      string    `db:"size" json:"size"`
	Quantity  int       `db:"quantity" json:"quantity"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Movement is one immutable ledger entry. Quantity is signed: receipts and returns are
// positive, issues negative, adjustments either.
type Movement struct {
	ID             id.ID     `db:"id" json:"id"`
	ProductID      id.ID     `db:"product_id" json:"productId"`
	Size           string    `db:"size" json:"size"`
	Kind           Kind      `db:"movement_type" json:"kind"`
	Quantity       int       `db:"quantity" json:"quantity"`
	DocumentType   string    `db:"document_type" json:"documentType"`
	DocumentID     *id.ID    `db:"document_id" json:"documentId,omitempty"`
	DocumentNumber *string   `db:"document_number" json:"documentNumber,omitempty"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// MovementInput describes a requested stock change.
type MovementInput struct {
	ProductID      id.ID
	Size           string
	Quantity       int
	Kind           Kind
	DocumentType   string
	DocumentID     id.ID
	DocumentNumber string
	Note           string
}

// Validate checks the input before anything is locked.
// in and return must add stock, out must remove it; adjustments go either way.
func (in MovementInput) Validate() error {
	if id.IsNil(in.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "product_id")
	}
	if !in.Kind.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown movement kind %q", in.Kind)).WithDetail("field", "kind")
	}
	if in.Quantity == 0 {
		return apperror.NewValidation("movement quantity must be non-zero").WithDetail("field", "quantity")
	}
	switch in.Kind {
	case KindIn, KindReturn:
		if in.Quantity < 0 {
			return apperror.NewValidation(fmt.Sprintf("%s movement must be positive", in.Kind)).WithDetail("field", "quantity")
		}
	case KindOut:
		if in.Quantity > 0 {
			return apperror.NewValidation("out movement must be negative").WithDetail("field", "quantity")
		}
	}
	if in.DocumentType == "" {
		return apperror.NewValidation("document type is required").WithDetail("field", "document_type")
	}
	return nil
}

// toMovement builds the ledger entry for the input.
func (in MovementInput) toMovement(at time.Time) Movement {
	m := Movement{
		ID:           id.New(),
		ProductID:    in.ProductID,
		Size:         in.Size,
		Kind:         in.Kind,
		Quantity:     in.Quantity,
		DocumentType: in.DocumentType,
		DocumentID:   id.Ptr(in.DocumentID),
		Notes:        in.Note,
		CreatedAt:    at,
	}
	if in.DocumentNumber != "" {
		number := in.DocumentNumber
		m.DocumentNumber = &number
	}
	return m
}

// Apply adds delta to the balance and floors the result at zero.
// It returns true when the floor swallowed part of the delta.
func (b *Balance) Apply(delta int) (clamped bool) {
	next := b.Quantity + delta
	if next < 0 {
		b.Quantity = 0
		return true
	}
	b.Quantity = next
	return false
}

// BalanceView is a balance joined with its product for display. Value is derived from the
// current product price and never stored.
type BalanceView struct {
	Balance
	ProductCode string      `db:"product_code" json:"productCode"`
	ProductName string      `db:"product_name" json:"productName"`
	UnitPrice   types.Money `db:"unit_price" json:"unitPrice"`
}

// Value returns quantity x current unit price.
func (v BalanceView) Value() types.Money {
	return types.LineTotal(v.Quantity, v.UnitPrice)
}
