// Package receipt implements PZ documents: goods received from a supplier for a
// recipient company.
package receipt

import (
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
)

// Document is the PZ header.
type Document struct {
	ID          id.ID     `db:"id" json:"id"`
	Number      string    `db:"document_number" json:"documentNumber"`
	IssueDate   time.Time `db:"issue_date" json:"issueDate"`
	SupplierID  id.ID     `db:"supplier_id" json:"supplierId"`
	RecipientID id.ID     `db:"recipient_id" json:"recipientId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`

	Items []Item `db:"-" json:"items"`
}

// Validate checks the header and every line.
func (d *Document) Validate() error {
	if d.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").WithDetail("field", "issue_date")
	}
	if id.IsNil(d.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplier_id")
	}
	if id.IsNil(d.RecipientID) {
		return apperror.NewValidation("recipient is required").WithDetail("field", "recipient_id")
	}
	for i := range d.Items {
		if err := d.Items[i].Validate(); err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				return appErr.WithDetail("line", i+1)
			}
			return err
		}
	}
	return nil
}

// Item is one received line. TotalValue always equals Quantity x UnitPrice.
type Item struct {
	ID         id.ID       `db:"id" json:"id"`
	DocumentID id.ID       `db:"document_id" json:"documentId"`
	ProductID  id.ID       `db:"product_id" json:"productId"`
	Quantity   int         `db:"quantity" json:"quantity"`
	Size       string      `db:"size" json:"size"`
	UnitPrice  types.Money `db:"unit_price" json:"unitPrice"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`
	Notes      string      `db:"notes" json:"notes"`
}

// Validate checks a line.
func (it *Item) Validate() error {
	if id.IsNil(it.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "product_id")
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if it.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unit_price")
	}
	return nil
}

func (it *Item) recomputeTotal() {
	it.TotalValue = types.LineTotal(it.Quantity, it.UnitPrice)
}

// ItemPatch carries editable fields; nil means unchanged.
type ItemPatch struct {
	Quantity  *int
	UnitPrice *types.Money
	Notes     *string
}

// ItemDetail is an item with its header number.
type ItemDetail struct {
	Item
	DocumentNumber string `db:"document_number" json:"documentNumber"`
}
