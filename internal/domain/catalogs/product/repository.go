package product

import (
	"context"

	"szafa/internal/core/id"
	"szafa/internal/domain"
)

// Repository defines product and category persistence.
type Repository interface {
	// Create inserts a product; a taken code yields apperror.CodeDuplicate.
	Create(ctx context.Context, p *Product) error

	Update(ctx context.Context, p *Product) error

	// Delete removes a product; references from stock or documents yield apperror.CodeProtected.
	Delete(ctx context.Context, productID id.ID) error

	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByCode(ctx context.Context, code string) (*Product, error)

	// ListByCodes returns the products whose code is in codes, keyed by code.
	ListByCodes(ctx context.Context, codes []string) (map[string]Product, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[Product], error)

	// IsReferenced reports whether stock rows, movements or document lines point at the product.
	IsReferenced(ctx context.Context, productID id.ID) (bool, error)

	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, categoryID id.ID) (*Category, error)

	// FindCategory returns the category with the given name and type, or nil.
	FindCategory(ctx context.Context, name string, categoryType CategoryType) (*Category, error)

	ListCategories(ctx context.Context) ([]Category, error)
}

// ListFilter for product listings.
type ListFilter struct {
	domain.ListFilter
	CategoryID *id.ID
}
