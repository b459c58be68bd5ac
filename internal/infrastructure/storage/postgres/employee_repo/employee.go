// Package employee_repo provides the PostgreSQL employee repository.
package employee_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/employees"
	"szafa/internal/infrastructure/storage/postgres"
)

const (
	employeesTable = "employees"
	periodsTable   = "employment_periods"
)

var (
	employeeColumns = postgres.Columns[employees.Employee]()
	periodColumns   = postgres.Columns[employees.Period]()
)

// Repo implements employees.Repository.
type Repo struct {
	txm *postgres.TxManager
}

// NewRepo creates a new employee repository.
func NewRepo(txm *postgres.TxManager) *Repo {
	return &Repo{txm: txm}
}

var _ employees.Repository = (*Repo)(nil)

func (r *Repo) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().Select(employeeColumns...).From(employeesTable)
}

func (r *Repo) Create(ctx context.Context, e *employees.Employee) error {
	return r.txm.Insert(ctx, employeesTable, employeeColumns, e)
}

func (r *Repo) Update(ctx context.Context, e *employees.Employee) error {
	q := postgres.Builder().
		Update(employeesTable).
		SetMap(map[string]any{
			"card_number":   e.CardNumber,
			"first_name":    e.FirstName,
			"last_name":     e.LastName,
			"position_id":   e.PositionID,
			"department_id": e.DepartmentID,
			"company_id":    e.CompanyID,
			"is_active":     e.IsActive,
		}).
		Where(squirrel.Eq{"id": e.ID})

	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("employee", e.ID)
	}
	return nil
}

// Delete removes the employee; periods cascade and issue documents restrict.
func (r *Repo) Delete(ctx context.Context, employeeID id.ID) error {
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(employeesTable).Where(squirrel.Eq{"id": employeeID}))
	if err != nil {
		return postgres.ForEntity(err, "employee")
	}
	if n == 0 {
		return apperror.NewNotFound("employee", employeeID)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, employeeID id.ID) (*employees.Employee, error) {
	var e employees.Employee
	if err := r.txm.Get(ctx, &e, r.baseSelect().Where(squirrel.Eq{"id": employeeID}), "employee", employeeID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) GetForUpdate(ctx context.Context, employeeID id.ID) (*employees.Employee, error) {
	var e employees.Employee
	q := r.baseSelect().Where(squirrel.Eq{"id": employeeID}).Suffix("FOR UPDATE")
	if err := r.txm.Get(ctx, &e, q, "employee", employeeID); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repo) List(ctx context.Context, filter employees.ListFilter) (domain.ListResult[employees.Employee], error) {
	result := domain.ListResult[employees.Employee]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.baseSelect()
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"card_number": pattern},
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
		})
	}
	if filter.CompanyID != nil {
		q = q.Where(squirrel.Eq{"company_id": *filter.CompanyID})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"department_id": *filter.DepartmentID})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	total, err := r.txm.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = postgres.Page(q.OrderBy("last_name", "first_name"), filter.Limit, filter.Offset)
	if err := r.txm.Select(ctx, &result.Items, q); err != nil {
		return result, fmt.Errorf("list employees: %w", err)
	}
	return result, nil
}

func (r *Repo) ListIDs(ctx context.Context) ([]id.ID, error) {
	var out []id.ID
	if err := r.txm.Select(ctx, &out, postgres.Builder().Select("id").From(employeesTable).OrderBy("id")); err != nil {
		return nil, fmt.Errorf("list employee ids: %w", err)
	}
	return out, nil
}

func (r *Repo) SetActive(ctx context.Context, employeeID id.ID, active bool) error {
	q := postgres.Builder().Update(employeesTable).Set("is_active", active).Where(squirrel.Eq{"id": employeeID})
	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("set employee active: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("employee", employeeID)
	}
	return nil
}

func (r *Repo) ListPeriods(ctx context.Context, employeeID id.ID) ([]employees.Period, error) {
	var out []employees.Period
	q := postgres.Builder().Select(periodColumns...).From(periodsTable).
		Where(squirrel.Eq{"employee_id": employeeID}).
		OrderBy("start_date DESC")
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return out, nil
}

func (r *Repo) GetPeriod(ctx context.Context, periodID id.ID) (*employees.Period, error) {
	var p employees.Period
	q := postgres.Builder().Select(periodColumns...).From(periodsTable).Where(squirrel.Eq{"id": periodID})
	if err := r.txm.Get(ctx, &p, q, "employment_period", periodID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) CreatePeriod(ctx context.Context, p *employees.Period) error {
	return r.txm.Insert(ctx, periodsTable, periodColumns, p)
}

func (r *Repo) UpdatePeriod(ctx context.Context, p *employees.Period) error {
	q := postgres.Builder().Update(periodsTable).
		Set("start_date", p.StartDate).
		Set("end_date", p.EndDate).
		Where(squirrel.Eq{"id": p.ID})
	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("employment_period", p.ID)
	}
	return nil
}

func (r *Repo) DeletePeriod(ctx context.Context, periodID id.ID) error {
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(periodsTable).Where(squirrel.Eq{"id": periodID}))
	if err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("employment_period", periodID)
	}
	return nil
}
