package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"szafa/internal/core/numerator"
	"szafa/internal/domain/documents/issue"
	"szafa/internal/infrastructure/http/v1/dto"
)

// IssueHandler serves DW documents and the lifecycle of issued items.
type IssueHandler struct {
	*BaseHandler
	service *issue.Service
	retries int
}

// NewIssueHandler creates a new issue handler. retries bounds number collision retries.
func NewIssueHandler(base *BaseHandler, service *issue.Service, retries int) *IssueHandler {
	return &IssueHandler{BaseHandler: base, service: service, retries: retries}
}

// Create handles POST /issues.
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if !h.BindJSON(c, &req) {
		return
	}

	var doc *issue.Document
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

// Get handles GET /issues/:id.
func (h *IssueHandler) Get(c *gin.Context) {
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

// List handles GET /issues?employeeId=&dateFrom=&dateTo=&limit=&offset=.
func (h *IssueHandler) List(c *gin.Context) {
	employeeID, ok := h.ParseIDQuery(c, "employeeId")
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
	filter := issue.ListFilter{
		ListFilter: h.ListFilter(c),
		EmployeeID: employeeID,
		DateFrom:   from,
		DateTo:     to,
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Delete handles DELETE /issues/:id. Stock movements already posted stay in the ledger.
func (h *IssueHandler) Delete(c *gin.Context) {
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

// AddItem handles POST /issues/:id/items.
func (h *IssueHandler) AddItem(c *gin.Context) {
	docID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.IssueItemRequest
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

// MarkUsed handles POST /issue-items/:id/use.
func (h *IssueHandler) MarkUsed(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.service.MarkUsed(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// Return handles POST /issue-items/:id/return.
func (h *IssueHandler) Return(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.service.Return(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, item)
}

// UpdateItem handles PATCH /issue-items/:id.
func (h *IssueHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateIssueItemRequest
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
