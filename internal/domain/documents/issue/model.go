// Package issue implements DW documents: equipment issued to an employee and the
// lifecycle of each issued item.
package issue

import (
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
)

// Status of an issued item.
type Status string

const (
	StatusActive   Status = "active"
	StatusUsed     Status = "used"
	StatusReturned Status = "returned"
)

// Document is the DW header.
type Document struct {
	ID         id.ID     `db:"id" json:"id"`
	Number     string    `db:"document_number" json:"documentNumber"`
	IssueDate  time.Time `db:"issue_date" json:"issueDate"`
	EmployeeID id.ID     `db:"employee_id" json:"employeeId"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`

	Items []Item `db:"-" json:"items"`
}

// Validate checks header fields and every line.
func (d *Document) Validate() error {
	if id.IsNil(d.EmployeeID) {
		return apperror.NewValidation("employee is required").WithDetail("field", "employee_id")
	}
	if d.IssueDate.IsZero() {
		return apperror.NewValidation("issue date is required").WithDetail("field", "issue_date")
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

// Item is one issued line.
type Item struct {
	ID         id.ID `db:"id" json:"id"`
	DocumentID id.ID `db:"document_id" json:"documentId"`
	ProductID  id.ID `db:"product_id" json:"productId"`
	Quantity   int   `db:"quantity" json:"quantity"`

	// UnitPrice is optional; TotalValue is nil whenever it is
	UnitPrice  *types.Money `db:"unit_price" json:"unitPrice,omitempty"`
	TotalValue *types.Money `db:"total_value" json:"totalValue,omitempty"`

	Size   string `db:"size" json:"size"`
	Notes  string `db:"notes" json:"notes"`
	Status Status `db:"status" json:"status"`

	// NextIssueDate is when the employee is due a replacement
	NextIssueDate *time.Time `db:"next_issue_date" json:"nextIssueDate,omitempty"`

	// AutoDeactivated marks items closed because the employment ended
	AutoDeactivated bool `db:"auto_deactivated" json:"autoDeactivated"`
}

// Validate checks a line before creation.
func (it *Item) Validate() error {
	if id.IsNil(it.ProductID) {
		return apperror.NewValidation("product is required").WithDetail("field", "product_id")
	}
	if it.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unit_price")
	}
	if it.Status != "" && it.Status != StatusActive {
		return apperror.NewValidation("new items start active").WithDetail("field", "status")
	}
	return nil
}

// recomputeTotal sets TotalValue from quantity and unit price.
func (it *Item) recomputeTotal() {
	it.TotalValue = types.OptionalLineTotal(it.Quantity, it.UnitPrice)
}

// transition moves the item to next, enforcing active -> used and active -> returned.
func (it *Item) transition(next Status) error {
	if it.Status != StatusActive {
		return apperror.NewInvalidTransition("issue item", string(it.Status), string(next))
	}
	it.Status = next
	return nil
}

// ItemPatch carries the editable fields of an issued item; nil means unchanged.
type ItemPatch struct {
	Quantity  *int
	UnitPrice *types.Money
	// ClearPrice drops the unit price (and so the total)
	ClearPrice bool
	Notes      *string
}

// ItemDetail is an item with its document header, as returned by lookups.
type ItemDetail struct {
	Item
	DocumentNumber string    `db:"document_number" json:"documentNumber"`
	IssueDate      time.Time `db:"issue_date" json:"issueDate"`
	EmployeeID     id.ID     `db:"employee_id" json:"employeeId"`
}
