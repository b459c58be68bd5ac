package handlers

import (
	"github.com/gin-gonic/gin"

	"szafa/internal/core/apperror"
	"szafa/internal/domain/reports"
)

// ReportHandler serves the read-only reports.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

func (h *ReportHandler) issueFilter(c *gin.Context) (reports.IssueFilter, bool) {
	var filter reports.IssueFilter
	var ok bool
	if filter.CompanyID, ok = h.ParseIDQuery(c, "companyId"); !ok {
		return filter, false
	}
	if filter.DepartmentID, ok = h.ParseIDQuery(c, "departmentId"); !ok {
		return filter, false
	}
	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return filter, false
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return filter, false
	}
	switch sortBy := reports.SortBy(c.DefaultQuery("sortBy", string(reports.SortEmployeeDate))); sortBy {
	case reports.SortEmployeeDate, reports.SortDateEmployee:
		filter.SortBy = sortBy
	default:
		h.Error(c, apperror.NewValidation("unknown sort order").WithDetail("sortBy", sortBy))
		return filter, false
	}
	return filter, true
}

// Issues handles GET /reports/issues.
func (h *ReportHandler) Issues(c *gin.Context) {
	filter, ok := h.issueFilter(c)
	if !ok {
		return
	}
	lines, err := h.service.Issues(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": lines})
}

// Demand handles GET /reports/demand.
func (h *ReportHandler) Demand(c *gin.Context) {
	filter, ok := h.issueFilter(c)
	if !ok {
		return
	}
	lines, err := h.service.Demand(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": lines})
}

// Receipts handles GET /reports/receipts.
func (h *ReportHandler) Receipts(c *gin.Context) {
	var filter reports.ReceiptFilter
	var ok bool
	if filter.SupplierID, ok = h.ParseIDQuery(c, "supplierId"); !ok {
		return
	}
	if filter.RecipientID, ok = h.ParseIDQuery(c, "recipientId"); !ok {
		return
	}
	if filter.DateFrom, ok = h.ParseDateQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.ParseDateQuery(c, "dateTo"); !ok {
		return
	}

	lines, err := h.service.Receipts(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": lines})
}

// OrderDemand handles GET /reports/order-demand?months=&showZero=.
func (h *ReportHandler) OrderDemand(c *gin.Context) {
	filter := reports.OrderDemandFilter{
		MonthsAhead: h.ParseIntQuery(c, "months", 1),
		ShowZero:    h.ParseBoolQuery(c, "showZero"),
	}
	report, err := h.service.OrderDemand(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}
