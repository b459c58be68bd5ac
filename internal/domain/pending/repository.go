package pending

import (
	"context"

	"szafa/internal/core/id"
	"szafa/internal/domain"
)

// Repository persists the staging tables.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProducts(ctx context.Context, ids []id.ID) ([]Product, error)
	// ProductsByCodes returns staged products keyed by code.
	ProductsByCodes(ctx context.Context, codes []string) (map[string]Product, error)
	ListProducts(ctx context.Context, filter domain.ListFilter) (domain.ListResult[Product], error)
	// DeleteProducts removes staged products; staged lines pointing at them lose the link.
	DeleteProducts(ctx context.Context, ids []id.ID) (int64, error)

	CreateReceipt(ctx context.Context, doc *ReceiptDocument) error
	CreateReceiptItems(ctx context.Context, items []ReceiptItem) error
	GetReceipt(ctx context.Context, docID id.ID) (*ReceiptDocument, error)
	// GetReceiptForUpdate locks the staged document until the transaction ends.
	GetReceiptForUpdate(ctx context.Context, docID id.ID) (*ReceiptDocument, error)
	GetReceiptItems(ctx context.Context, docID id.ID) ([]ReceiptItem, error)
	DeleteReceipt(ctx context.Context, docID id.ID) error

	// ListPlaceholderLines returns lines with no product and a placeholder, ordered by
	// item id, starting after the given id.
	ListPlaceholderLines(ctx context.Context, after id.ID, limit int) ([]PlaceholderLine, error)
	// RelinkItems sets the product and clears the placeholder on each line.
	RelinkItems(ctx context.Context, links []Relink) (int64, error)
}
