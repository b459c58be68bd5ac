package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"szafa/internal/core/apperror"
	"szafa/internal/core/numerator"
	"szafa/internal/domain/documents/receipt"
	"szafa/internal/domain/pending"
	"szafa/internal/infrastructure/http/v1/dto"
)

// maxImportBody caps ingested JSON payloads.
const maxImportBody = 8 << 20

// PendingHandler serves the staging pipeline: ingestion, approval, rejection and relinking.
type PendingHandler struct {
	*BaseHandler
	service *pending.Service
	retries int
}

// NewPendingHandler creates a new pending handler.
func NewPendingHandler(base *BaseHandler, service *pending.Service, retries int) *PendingHandler {
	return &PendingHandler{BaseHandler: base, service: service, retries: retries}
}

func (h *PendingHandler) readBody(c *gin.Context) ([]byte, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBody))
	if err != nil {
		h.Error(c, apperror.NewValidation("cannot read request body").WithDetail("error", err.Error()))
		return nil, false
	}
	return raw, true
}

// ImportProducts handles POST /pending/products/import with a parsed invoice body.
func (h *PendingHandler) ImportProducts(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.service.IngestProducts(c.Request.Context(), raw)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// ListProducts handles GET /pending/products.
func (h *PendingHandler) ListProducts(c *gin.Context) {
	result, err := h.service.ListProducts(c.Request.Context(), h.ListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// ApproveProducts handles POST /pending/products/approve.
func (h *PendingHandler) ApproveProducts(c *gin.Context) {
	var in pending.ApproveProductsInput
	if !h.BindJSON(c, &in) {
		return
	}
	created, err := h.service.ApproveProducts(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, gin.H{"items": created})
}

// RejectProducts handles POST /pending/products/reject.
func (h *PendingHandler) RejectProducts(c *gin.Context) {
	var req dto.RejectProductsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	n, err := h.service.RejectProducts(c.Request.Context(), req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CountResponse{Count: n})
}

// ImportReceipt handles POST /pending/receipts/import with a parsed delivery note body.
func (h *PendingHandler) ImportReceipt(c *gin.Context) {
	raw, ok := h.readBody(c)
	if !ok {
		return
	}
	result, err := h.service.IngestReceipt(c.Request.Context(), raw)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, result)
}

// GetReceipt handles GET /pending/receipts/:id.
func (h *PendingHandler) GetReceipt(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.GetReceipt(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// ApproveReceipt handles POST /pending/receipts/:id/approve.
func (h *PendingHandler) ApproveReceipt(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var in pending.ApproveReceiptInput
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &in) {
		return
	}

	var doc *receipt.Document
	err := numerator.WithRetry(c.Request.Context(), h.retries, func(ctx context.Context) error {
		var err error
		doc, err = h.service.ApproveReceipt(ctx, docID, in)
		return err
	})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// RejectReceipt handles DELETE /pending/receipts/:id.
func (h *PendingHandler) RejectReceipt(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.RejectReceipt(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Relink handles POST /pending/relink.
func (h *PendingHandler) Relink(c *gin.Context) {
	n, err := h.service.Relink(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CountResponse{Count: n})
}
