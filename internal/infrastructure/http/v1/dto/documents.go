package dto

import (
	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/domain/documents/receipt"
)

// --- Issue (DW) ---

// IssueItemRequest is one issued line. Without a unit price the line carries no value.
type IssueItemRequest struct {
	ProductID id.ID        `json:"productId" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required,gt=0"`
	UnitPrice *types.Money `json:"unitPrice"`
	Size      string       `json:"size" binding:"max=20"`
	Notes     string       `json:"notes"`
	// NextIssueDate overrides issue date + product usage period
	NextIssueDate *types.Date `json:"nextIssueDate"`
}

// ToEntity converts request to domain entity.
func (r *IssueItemRequest) ToEntity() *issue.Item {
	return &issue.Item{
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Size:          r.Size,
		Notes:         r.Notes,
		NextIssueDate: r.NextIssueDate.Ptr(),
	}
}

// CreateIssueRequest creates a DW document; its number is allocated by the server.
type CreateIssueRequest struct {
	EmployeeID id.ID              `json:"employeeId" binding:"required"`
	IssueDate  types.Date         `json:"issueDate"`
	Items      []IssueItemRequest `json:"items" binding:"dive"`
}

// ToEntity converts request to domain entity.
func (r *CreateIssueRequest) ToEntity() *issue.Document {
	doc := &issue.Document{
		EmployeeID: r.EmployeeID,
		IssueDate:  r.IssueDate.Time,
		Items:      make([]issue.Item, 0, len(r.Items)),
	}
	for i := range r.Items {
		doc.Items = append(doc.Items, *r.Items[i].ToEntity())
	}
	return doc
}

// UpdateIssueItemRequest edits an issued item. clearPrice drops the price and the total.
type UpdateIssueItemRequest struct {
	Quantity   *int         `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice  *types.Money `json:"unitPrice"`
	ClearPrice bool         `json:"clearPrice"`
	Notes      *string      `json:"notes"`
}

// ToPatch converts request to a domain patch.
func (r *UpdateIssueItemRequest) ToPatch() issue.ItemPatch {
	return issue.ItemPatch{
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		ClearPrice: r.ClearPrice,
		Notes:      r.Notes,
	}
}

// --- Receipt (PZ) ---

// ReceiptItemRequest is one received line. A missing unit price is stored as zero.
type ReceiptItemRequest struct {
	ProductID id.ID        `json:"productId" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required,gt=0"`
	UnitPrice *types.Money `json:"unitPrice"`
	Size      string       `json:"size" binding:"max=20"`
	Notes     string       `json:"notes"`
}

// ToEntity converts request to domain entity.
func (r *ReceiptItemRequest) ToEntity() *receipt.Item {
	item := &receipt.Item{
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Size:      r.Size,
		Notes:     r.Notes,
		UnitPrice: types.Zero(),
	}
	if r.UnitPrice != nil {
		item.UnitPrice = *r.UnitPrice
	}
	return item
}

// CreateReceiptRequest creates a PZ document; its number is allocated by the server.
type CreateReceiptRequest struct {
	SupplierID  id.ID                `json:"supplierId" binding:"required"`
	RecipientID id.ID                `json:"recipientId" binding:"required"`
	IssueDate   types.Date           `json:"issueDate"`
	Items       []ReceiptItemRequest `json:"items" binding:"dive"`
}

// ToEntity converts request to domain entity.
func (r *CreateReceiptRequest) ToEntity() *receipt.Document {
	doc := &receipt.Document{
		SupplierID:  r.SupplierID,
		RecipientID: r.RecipientID,
		IssueDate:   r.IssueDate.Time,
		Items:       make([]receipt.Item, 0, len(r.Items)),
	}
	for i := range r.Items {
		doc.Items = append(doc.Items, *r.Items[i].ToEntity())
	}
	return doc
}

// UpdateReceiptItemRequest edits a received line.
type UpdateReceiptItemRequest struct {
	Quantity  *int         `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice *types.Money `json:"unitPrice"`
	Notes     *string      `json:"notes"`
}

// ToPatch converts request to a domain patch.
func (r *UpdateReceiptItemRequest) ToPatch() receipt.ItemPatch {
	return receipt.ItemPatch{
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		Notes:     r.Notes,
	}
}
