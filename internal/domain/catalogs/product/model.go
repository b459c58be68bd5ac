// Package product provides the product catalog and product categories.
package product

import (
	"strings"
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/types"
)

// CategoryType groups categories.
type CategoryType string

const (
	CategoryFootwear CategoryType = "footwear"
	CategoryClothing CategoryType = "clothing"
	CategorySafety   CategoryType = "bhp"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	switch t {
	case CategoryFootwear, CategoryClothing, CategorySafety:
		return true
	}
	return false
}

// Category is a product category; (name, type) is unique.
type Category struct {
	ID   id.ID        `db:"id" json:"id"`
	Name string       `db:"name" json:"name"`
	Type CategoryType `db:"type" json:"type"`
}

// Validate checks category fields.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("category name is required").WithDetail("field", "name")
	}
	if !c.Type.Valid() {
		return apperror.NewValidation("unknown category type").WithDetail("field", "type").WithDetail("value", c.Type)
	}
	return nil
}

// Product is a catalog item that can be received and issued.
type Product struct {
	ID id.ID `db:"id" json:"id"`

	// Code is the unique business key; it cannot change once documents or stock reference it
	Code string `db:"code" json:"code"`

	Name       string `db:"name" json:"name"`
	CategoryID id.ID  `db:"category_id" json:"categoryId"`

	// Size is the default size; stock rows carry their own size
	Size string `db:"size" json:"size"`

	// UnitPrice applies to future documents only
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// PeriodDays is the usage period after which an issued item is due again
	PeriodDays int `db:"period_days" json:"periodDays"`

	// MinQtyOnStock feeds the order-demand report
	MinQtyOnStock int `db:"min_qty_on_stock" json:"minQtyOnStock"`

	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks product fields.
func (p *Product) Validate() error {
	p.Code = strings.TrimSpace(p.Code)
	if p.Code == "" {
		return apperror.NewValidation("product code is required").WithDetail("field", "code")
	}
	if len(p.Code) > 50 {
		return apperror.NewValidation("product code is too long").WithDetail("field", "code")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("product category is required").WithDetail("field", "category_id")
	}
	if p.UnitPrice.IsNegative() {
		return apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unit_price")
	}
	if p.PeriodDays < 0 {
		return apperror.NewValidation("period days cannot be negative").WithDetail("field", "period_days")
	}
	if p.MinQtyOnStock < 0 {
		return apperror.NewValidation("minimum stock cannot be negative").WithDetail("field", "min_qty_on_stock")
	}
	return nil
}
