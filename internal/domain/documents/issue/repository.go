package issue

import (
	"context"
	"time"

	"szafa/internal/core/id"
	"szafa/internal/domain"
)

// Repository persists DW documents and items.
type Repository interface {
	// Create inserts the header; a taken number yields apperror.CodeDuplicate.
	Create(ctx context.Context, doc *Document) error

	GetByID(ctx context.Context, docID id.ID) (*Document, error)
	GetItems(ctx context.Context, docID id.ID) ([]Item, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[Document], error)

	// Delete removes the header and its items. Ledger movements stay.
	Delete(ctx context.Context, docID id.ID) error

	CreateItem(ctx context.Context, item *Item) error

	// GetItemForUpdate returns the item with its header, locked until the transaction ends.
	GetItemForUpdate(ctx context.Context, itemID id.ID) (*ItemDetail, error)

	UpdateItem(ctx context.Context, item *Item) error

	// DeactivateActiveByEmployee moves every active item of the employee to used with
	// auto_deactivated set, returning the number of items changed.
	DeactivateActiveByEmployee(ctx context.Context, employeeID id.ID) (int, error)

	// RecomputeValuesFromProducts sets unit_price from the current product price and
	// total_value = quantity x unit_price on every item.
	RecomputeValuesFromProducts(ctx context.Context) (int64, error)
}

// ListFilter for DW listings.
type ListFilter struct {
	domain.ListFilter
	EmployeeID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
}
