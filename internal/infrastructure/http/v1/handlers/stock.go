package handlers

import (
	"github.com/gin-gonic/gin"

	"szafa/internal/domain/registers/stock"
	"szafa/internal/infrastructure/http/v1/dto"
)

// StockHandler serves balances, movement history and manual adjustments.
type StockHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// Balances handles GET /stock?productId=&excludeZero=.
func (h *StockHandler) Balances(c *gin.Context) {
	productID, ok := h.ParseIDQuery(c, "productId")
	if !ok {
		return
	}
	filter := stock.BalanceFilter{
		ProductID:   productID,
		ExcludeZero: h.ParseBoolQuery(c, "excludeZero"),
	}

	items, err := h.service.ListBalances(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// Movements handles GET /stock/movements.
func (h *StockHandler) Movements(c *gin.Context) {
	productID, ok := h.ParseIDQuery(c, "productId")
	if !ok {
		return
	}
	documentID, ok := h.ParseIDQuery(c, "documentId")
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
	filter := stock.MovementFilter{
		ProductID:    productID,
		DocumentType: c.Query("documentType"),
		DocumentID:   documentID,
		FromDate:     from,
		ToDate:       to,
		Limit:        h.ParseIntQuery(c, "limit", 100),
		Offset:       h.ParseIntQuery(c, "offset", 0),
	}
	if size, ok := c.GetQuery("size"); ok {
		filter.Size = &size
	}
	if kind := c.Query("kind"); kind != "" {
		k := stock.Kind(kind)
		filter.Kind = &k
	}

	items, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": items})
}

// Adjust handles POST /stock/adjustments.
func (h *StockHandler) Adjust(c *gin.Context) {
	var req dto.AdjustmentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	balance, err := h.service.Adjust(c.Request.Context(), req.ProductID, req.Size, req.Delta, req.Note)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, balance)
}
