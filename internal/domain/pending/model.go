// Package pending stages externally parsed invoices and delivery notes until an operator
// approves them into the catalog and the receipt lifecycle.
package pending

import (
	"time"

	"szafa/internal/core/id"
	"szafa/internal/core/types"
)

// Product is a product candidate from ingestion. It has no stock until approved.
type Product struct {
	ID            id.ID       `db:"id" json:"id"`
	Code          string      `db:"code" json:"code"`
	Name          string      `db:"name" json:"name"`
	CategoryID    id.ID       `db:"category_id" json:"categoryId"`
	Size          string      `db:"size" json:"size"`
	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	PeriodDays    int         `db:"period_days" json:"periodDays"`
	MinQtyOnStock int         `db:"min_qty_on_stock" json:"minQtyOnStock"`
	Description   string      `db:"description" json:"description"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// ReceiptDocument is a staged delivery awaiting approval.
type ReceiptDocument struct {
	ID          id.ID  `db:"id" json:"id"`
	SupplierID  *id.ID `db:"supplier_id" json:"supplierId,omitempty"`
	RecipientID *id.ID `db:"recipient_id" json:"recipientId,omitempty"`
	SellerName  string `db:"seller_name" json:"sellerName"`

	IssueDate time.Time `db:"issue_date" json:"issueDate"`
	// DateFallback is set when the order date could not be read and today was used
	DateFallback bool       `db:"date_fallback" json:"dateFallback"`
	DeliveryDate *time.Time `db:"delivery_date" json:"deliveryDate,omitempty"`

	ReferenceNumber string `db:"reference_number" json:"referenceNumber"`
	DocumentNumber  string `db:"document_number" json:"documentNumber"`

	// RawPayload is the ingested body as received
	RawPayload []byte    `db:"raw_payload" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`

	Items []ReceiptItem `db:"-" json:"items"`
}

// ReceiptItem is a staged line. ProductID is set when the code matched the catalog;
// otherwise PendingProductID points at the placeholder candidate for the same code.
type ReceiptItem struct {
	ID                id.ID       `db:"id" json:"id"`
	DocumentID        id.ID       `db:"document_id" json:"documentId"`
	Code              string      `db:"code" json:"code"`
	Name              string      `db:"name" json:"name"`
	Size              string      `db:"size" json:"size"`
	UnitPrice         types.Money `db:"unit_price" json:"unitPrice"`
	QuantityOrdered   int         `db:"quantity_ordered" json:"quantityOrdered"`
	QuantityDelivered int         `db:"quantity_delivered" json:"quantityDelivered"`
	ProductID         *id.ID      `db:"product_id" json:"productId,omitempty"`
	PendingProductID  *id.ID      `db:"pending_product_id" json:"pendingProductId,omitempty"`
}

// Matched reports whether the line resolved to a catalog product.
func (it *ReceiptItem) Matched() bool {
	return it.ProductID != nil
}

// ReceivedQuantity is the quantity that goes into the receipt: delivered when the
// supplier reported it, ordered otherwise.
func (it *ReceiptItem) ReceivedQuantity() int {
	if it.QuantityDelivered > 0 {
		return it.QuantityDelivered
	}
	return it.QuantityOrdered
}

// Relink assigns a resolved product to a staged line.
type Relink struct {
	ItemID    id.ID
	ProductID id.ID
}

// PlaceholderLine is a staged line still waiting for its placeholder to become a product.
type PlaceholderLine struct {
	ItemID id.ID  `db:"item_id"`
	Code   string `db:"code"`
}

// --- Results and operator input ---

// IngestProductsResult reports a product import.
type IngestProductsResult struct {
	Created  []string       `json:"createdProducts"`
	IDs      []id.ID        `json:"ids"`
	Skipped  []string       `json:"skipped,omitempty"`
	Rejected []RejectedLine `json:"rejected,omitempty"`
}

// IngestReceiptResult reports a staged delivery.
type IngestReceiptResult struct {
	DocumentID   id.ID          `json:"pendingDocumentId"`
	ItemsCreated int            `json:"itemsCreated"`
	ItemIDs      []id.ID        `json:"itemIds"`
	Matched      int            `json:"matched"`
	Unmatched    int            `json:"unmatched"`
	Rejected     []RejectedLine `json:"rejected,omitempty"`
	DateFallback bool           `json:"dateFallback"`
}

// ProductApproval carries operator corrections for one staged product.
// Nil fields keep the staged value.
type ProductApproval struct {
	PendingID     id.ID        `json:"pendingId" validate:"required"`
	Name          *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Size          *string      `json:"size,omitempty" validate:"omitempty,max=20"`
	UnitPrice     *types.Money `json:"unitPrice,omitempty"`
	PeriodDays    *int         `json:"periodDays,omitempty" validate:"omitempty,min=0"`
	MinQtyOnStock *int         `json:"minQtyOnStock,omitempty" validate:"omitempty,min=0"`
	Description   *string      `json:"description,omitempty"`
}

// ApproveProductsInput promotes staged products into one target category.
type ApproveProductsInput struct {
	CategoryID id.ID             `json:"categoryId" validate:"required"`
	Items      []ProductApproval `json:"items" validate:"required,min=1,dive"`
}

// ReceiptLineOverride corrects one staged line before approval.
type ReceiptLineOverride struct {
	ItemID    id.ID        `json:"itemId" validate:"required"`
	ProductID *id.ID       `json:"productId,omitempty"`
	Quantity  *int         `json:"quantity,omitempty" validate:"omitempty,min=0"`
	UnitPrice *types.Money `json:"unitPrice,omitempty"`
	Size      *string      `json:"size,omitempty" validate:"omitempty,max=20"`
}

// ApproveReceiptInput turns a staged delivery into a PZ document.
type ApproveReceiptInput struct {
	SupplierID  *id.ID                `json:"supplierId,omitempty"`
	RecipientID *id.ID                `json:"recipientId,omitempty"`
	IssueDate   *time.Time            `json:"issueDate,omitempty"`
	Items       []ReceiptLineOverride `json:"items" validate:"dive"`
}
