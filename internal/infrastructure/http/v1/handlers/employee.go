package handlers

import (
	"github.com/gin-gonic/gin"

	"szafa/internal/domain/employees"
	"szafa/internal/infrastructure/http/v1/dto"
)

// EmployeeHandler serves employees and their employment periods.
type EmployeeHandler struct {
	*BaseHandler
	service *employees.Service
}

// NewEmployeeHandler creates a new employee handler.
func NewEmployeeHandler(base *BaseHandler, service *employees.Service) *EmployeeHandler {
	return &EmployeeHandler{BaseHandler: base, service: service}
}

// Create handles POST /employees.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var req dto.EmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	e := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), e); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, e)
}

// Get handles GET /employees/:id.
func (h *EmployeeHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	e, err := h.service.GetByID(ctx, employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	periods, err := h.service.ListPeriods(ctx, employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.EmployeeResponse{Employee: *e, Periods: periods})
}

// Update handles PUT /employees/:id.
func (h *EmployeeHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.EmployeeRequest
	if !h.BindJSON(c, &req) {
		return
	}
	e, err := h.service.GetByID(ctx, employeeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(e)
	if err := h.service.Update(ctx, e); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// Delete handles DELETE /employees/:id.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), employeeID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /employees?search=&companyId=&departmentId=&activeOnly=.
func (h *EmployeeHandler) List(c *gin.Context) {
	companyID, ok := h.ParseIDQuery(c, "companyId")
	if !ok {
		return
	}
	departmentID, ok := h.ParseIDQuery(c, "departmentId")
	if !ok {
		return
	}
	filter := employees.ListFilter{
		ListFilter:   h.ListFilter(c),
		CompanyID:    companyID,
		DepartmentID: departmentID,
		ActiveOnly:   h.ParseBoolQuery(c, "activeOnly"),
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreatePeriod handles POST /employees/:id/periods.
func (h *EmployeeHandler) CreatePeriod(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.PeriodRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToEntity(employeeID)
	if err := h.service.SavePeriod(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// UpdatePeriod handles PUT /employees/:id/periods/:periodId.
func (h *EmployeeHandler) UpdatePeriod(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	periodID, ok := h.ParseIDParam(c, "periodId")
	if !ok {
		return
	}
	var req dto.PeriodRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToEntity(employeeID)
	p.ID = periodID
	if err := h.service.SavePeriod(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// DeletePeriod handles DELETE /employees/:id/periods/:periodId.
func (h *EmployeeHandler) DeletePeriod(c *gin.Context) {
	employeeID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	periodID, ok := h.ParseIDParam(c, "periodId")
	if !ok {
		return
	}
	if err := h.service.DeletePeriod(c.Request.Context(), employeeID, periodID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
