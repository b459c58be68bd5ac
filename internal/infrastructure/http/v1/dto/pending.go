package dto

import (
	"szafa/internal/core/id"
)

// RejectProductsRequest lists staged products to discard.
type RejectProductsRequest struct {
	IDs []id.ID `json:"ids" binding:"required,min=1"`
}
