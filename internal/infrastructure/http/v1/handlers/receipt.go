package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"szafa/internal/core/numerator"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler serves PZ documents.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
	retries int
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service, retries int) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service, retries: retries}
}

// Create handles POST /receipts.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var doc *receipt.Document
	err := numerator.WithRetry(c.Request.Context(), h.retries, func(ctx context.Context) error {
		doc = req.ToEntity()
		return h.service.Create(ctx, doc)
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Get handles GET /receipts/:id.
func (h *ReceiptHandler) Get(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /receipts?supplierId=&recipientId=&dateFrom=&dateTo=.
func (h *ReceiptHandler) List(c *gin.Context) {
	supplierID, ok := h.ParseIDQuery(c, "supplierId")
	if !ok {
		return
	}
	recipientID, ok := h.ParseIDQuery(c, "recipientId")
	if !ok {
		return
	}
	from, ok := h.ParseDateQuery(c, "dateFrom")
	if !ok {
		return
	}
	to, ok := h.ParseDateQuery(c, "dateTo")
	if !ok {
		return
	}
	filter := receipt.ListFilter{
		ListFilter:  h.ListFilter(c),
		SupplierID:  supplierID,
		RecipientID: recipientID,
		DateFrom:    from,
		DateTo:      to,
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Delete handles DELETE /receipts/:id.
func (h *ReceiptHandler) Delete(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// AddItem handles POST /receipts/:id/items.
func (h *ReceiptHandler) AddItem(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ReceiptItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item := req.ToEntity()
	if err := h.service.AddItem(c.Request.Context(), docID, item); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem handles PATCH /receipt-items/:id.
func (h *ReceiptHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateReceiptItemRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item, err := h.service.UpdateItem(c.Request.Context(), itemID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}
