package dto

import (
	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
)

// --- Products ---

// ProductRequest creates or replaces a product.
type ProductRequest struct {
	Code          string       `json:"code" binding:"required,max=50"`
	Name          string       `json:"name" binding:"required,max=200"`
	CategoryID    id.ID        `json:"categoryId" binding:"required"`
	Size          string       `json:"size" binding:"max=20"`
	UnitPrice     *types.Money `json:"unitPrice"`
	PeriodDays    int          `json:"periodDays" binding:"min=0"`
	MinQtyOnStock int          `json:"minQtyOnStock" binding:"min=0"`
	Description   string       `json:"description"`
}

// ToEntity converts request to domain entity.
func (r *ProductRequest) ToEntity() *product.Product {
	p := &product.Product{
		Code:          r.Code,
		Name:          r.Name,
		CategoryID:    r.CategoryID,
		Size:          r.Size,
		UnitPrice:     types.Zero(),
		PeriodDays:    r.PeriodDays,
		MinQtyOnStock: r.MinQtyOnStock,
		Description:   r.Description,
	}
	if r.UnitPrice != nil {
		p.UnitPrice = *r.UnitPrice
	}
	return p
}

// ApplyTo copies the request onto an existing product, keeping its id and creation time.
func (r *ProductRequest) ApplyTo(p *product.Product) {
	updated := r.ToEntity()
	updated.ID = p.ID
	updated.CreatedAt = p.CreatedAt
	*p = *updated
}

// CategoryRequest creates a product category.
type CategoryRequest struct {
	Name string               `json:"name" binding:"required,max=100"`
	Type product.CategoryType `json:"type" binding:"required,oneof=footwear clothing bhp"`
}

// ToEntity converts request to domain entity.
func (r *CategoryRequest) ToEntity() *product.Category {
	return &product.Category{Name: r.Name, Type: r.Type}
}

// --- Dictionaries ---

// DictionaryEntryRequest creates a company, department, position or supplier.
type DictionaryEntryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ToEntity converts request to domain entity.
func (r *DictionaryEntryRequest) ToEntity(kind dictionary.Kind) *dictionary.Entry {
	return &dictionary.Entry{Kind: kind, Name: r.Name}
}
