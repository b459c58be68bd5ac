package dto

import (
	"szafa/internal/core/id"
)

// AdjustmentRequest posts a manual stock correction. Delta may be negative.
type AdjustmentRequest struct {
	ProductID id.ID  `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"max=20"`
	Delta     int    `json:"delta" binding:"required"`
	Note      string `json:"note"`
}
