package receipt

import (
	"context"
	"time"

	"szafa/internal/core/id"
	"szafa/internal/domain"
)

// Repository persists PZ documents and items.
type Repository interface {
	// Create inserts the header; a taken number yields apperror.CodeDuplicate.
	Create(ctx context.Context, doc *Document) error

	GetByID(ctx context.Context, docID id.ID) (*Document, error)
	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[Document], error)
	Delete(ctx context.Context, docID id.ID) error

	CreateItem(ctx context.Context, item *Item) error
	GetItemForUpdate(ctx context.Context, itemID id.ID) (*ItemDetail, error)
	UpdateItem(ctx context.Context, item *Item) error
}

// ListFilter for PZ listings.
type ListFilter struct {
	domain.ListFilter
	SupplierID  *id.ID
	RecipientID *id.ID
	DateFrom    *time.Time
	DateTo      *time.Time
}
