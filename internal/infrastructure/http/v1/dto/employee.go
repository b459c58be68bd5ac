package dto

import (
	"szafa/internal/core/id"
	"szafa/internal/core/types"
	"szafa/internal/domain/employees"
)

// EmployeeRequest creates or replaces an employee. The active flag is derived from periods.
type EmployeeRequest struct {
	CardNumber   string `json:"cardNumber" binding:"required,max=20"`
	FirstName    string `json:"firstName" binding:"required,max=100"`
	LastName     string `json:"lastName" binding:"required,max=100"`
	PositionID   id.ID  `json:"positionId" binding:"required"`
	DepartmentID id.ID  `json:"departmentId" binding:"required"`
	CompanyID    id.ID  `json:"companyId" binding:"required"`
}

// ToEntity converts request to domain entity.
func (r *EmployeeRequest) ToEntity() *employees.Employee {
	return &employees.Employee{
		CardNumber:   r.CardNumber,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		PositionID:   r.PositionID,
		DepartmentID: r.DepartmentID,
		CompanyID:    r.CompanyID,
	}
}

// ApplyTo copies the request onto an existing employee.
func (r *EmployeeRequest) ApplyTo(e *employees.Employee) {
	e.CardNumber = r.CardNumber
	e.FirstName = r.FirstName
	e.LastName = r.LastName
	e.PositionID = r.PositionID
	e.DepartmentID = r.DepartmentID
	e.CompanyID = r.CompanyID
}

// EmployeeResponse is an employee with their periods, newest first.
type EmployeeResponse struct {
	employees.Employee
	Periods []employees.Period `json:"periods"`
}

// PeriodRequest creates or replaces an employment period.
type PeriodRequest struct {
	StartDate types.Date  `json:"startDate"`
	EndDate   *types.Date `json:"endDate"`
}

// ToEntity converts request to domain entity.
func (r *PeriodRequest) ToEntity(employeeID id.ID) *employees.Period {
	return &employees.Period{
		EmployeeID: employeeID,
		StartDate:  r.StartDate.Time,
		EndDate:    r.EndDate.Ptr(),
	}
}
