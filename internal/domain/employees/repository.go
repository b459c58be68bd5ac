package employees

import (
	"context"

	"szafa/internal/core/id"
	"szafa/internal/domain"
)

// Repository persists employees and periods.
type Repository interface {
	// Create inserts an employee; a taken card number yields apperror.CodeDuplicate.
	Create(ctx context.Context, e *Employee) error
	Update(ctx context.Context, e *Employee) error

	// Delete removes an employee with their periods; issue documents yield apperror.CodeProtected.
	Delete(ctx context.Context, employeeID id.ID) error

	GetByID(ctx context.Context, employeeID id.ID) (*Employee, error)

	// GetForUpdate returns the employee locked until the transaction ends.
	// Period writes take this lock so overlap checks of one employee run one at a time.
	GetForUpdate(ctx context.Context, employeeID id.ID) (*Employee, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[Employee], error)

	// ListIDs returns the id of every employee.
	ListIDs(ctx context.Context) ([]id.ID, error)

	SetActive(ctx context.Context, employeeID id.ID, active bool) error

	// ListPeriods returns the employee's periods, newest start first.
	ListPeriods(ctx context.Context, employeeID id.ID) ([]Period, error)

	GetPeriod(ctx context.Context, periodID id.ID) (*Period, error)
	CreatePeriod(ctx context.Context, p *Period) error
	UpdatePeriod(ctx context.Context, p *Period) error
	DeletePeriod(ctx context.Context, periodID id.ID) error
}

// ListFilter for employee listings.
type ListFilter struct {
	domain.ListFilter
	CompanyID    *id.ID
	DepartmentID *id.ID
	ActiveOnly   bool
}
