package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/employees"
)

// EmployeeRepo implements employees.Repository.
type EmployeeRepo struct{ s *Store }

// Employees returns the employee repository.
func (s *Store) Employees() *EmployeeRepo { return &EmployeeRepo{s: s} }

func (r *EmployeeRepo) Create(ctx context.Context, e *employees.Employee) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.employees {
			if existing.CardNumber == e.CardNumber {
				return apperror.NewDuplicate("employee", "card_number", e.CardNumber)
			}
		}
		st.employees[e.ID] = *e
		return nil
	})
}

func (r *EmployeeRepo) Update(ctx context.Context, e *employees.Employee) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.employees[e.ID]; !ok {
			return apperror.NewNotFound("employee", e.ID)
		}
		for _, existing := range st.employees {
			if existing.CardNumber == e.CardNumber && existing.ID != e.ID {
				return apperror.NewDuplicate("employee", "card_number", e.CardNumber)
			}
		}
		st.employees[e.ID] = *e
		return nil
	})
}

func (r *EmployeeRepo) Delete(ctx context.Context, employeeID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.employees[employeeID]; !ok {
			return apperror.NewNotFound("employee", employeeID)
		}
		for _, d := range st.issueDocs {
			if d.EmployeeID == employeeID {
				return apperror.NewProtected("employee", "issue_documents")
			}
		}
		for pid, p := range st.periods {
			if p.EmployeeID == employeeID {
				delete(st.periods, pid)
			}
		}
		delete(st.employees, employeeID)
		return nil
	})
}

func (r *EmployeeRepo) GetByID(ctx context.Context, employeeID id.ID) (*employees.Employee, error) {
	var (
		e  employees.Employee
		ok bool
	)
	r.s.read(func(st *state) { e, ok = st.employees[employeeID] })
	if !ok {
		return nil, apperror.NewNotFound("employee", employeeID)
	}
	return &e, nil
}

// GetForUpdate relies on transaction serialization for the lock.
func (r *EmployeeRepo) GetForUpdate(ctx context.Context, employeeID id.ID) (*employees.Employee, error) {
	return r.GetByID(ctx, employeeID)
}

func (r *EmployeeRepo) List(ctx context.Context, filter employees.ListFilter) (domain.ListResult[employees.Employee], error) {
	search := strings.ToLower(filter.Search)
	var items []employees.Employee
	r.s.read(func(st *state) {
		for _, e := range st.employees {
			if filter.CompanyID != nil && e.CompanyID != *filter.CompanyID {
				continue
			}
			if filter.DepartmentID != nil && e.DepartmentID != *filter.DepartmentID {
				continue
			}
			if filter.ActiveOnly && !e.IsActive {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(e.CardNumber+" "+e.FirstName+" "+e.LastName), search) {
				continue
			}
			items = append(items, e)
		}
	})
	slices.SortFunc(items, func(a, b employees.Employee) int {
		if c := cmp.Compare(a.LastName, b.LastName); c != 0 {
			return c
		}
		return cmp.Compare(a.FirstName, b.FirstName)
	})
	return domain.Page(items, filter.ListFilter), nil
}

func (r *EmployeeRepo) SetActive(ctx context.Context, employeeID id.ID, active bool) error {
	return r.s.write(ctx, func(st *state) error {
		e, ok := st.employees[employeeID]
		if !ok {
			return apperror.NewNotFound("employee", employeeID)
		}
		e.IsActive = active
		st.employees[employeeID] = e
		return nil
	})
}

func (r *EmployeeRepo) ListPeriods(ctx context.Context, employeeID id.ID) ([]employees.Period, error) {
	var out []employees.Period
	r.s.read(func(st *state) {
		for _, p := range st.periods {
			if p.EmployeeID == employeeID {
				out = append(out, p)
			}
		}
	})
	slices.SortFunc(out, func(a, b employees.Period) int { return b.StartDate.Compare(a.StartDate) })
	return out, nil
}

func (r *EmployeeRepo) GetPeriod(ctx context.Context, periodID id.ID) (*employees.Period, error) {
	var (
		p  employees.Period
		ok bool
	)
	r.s.read(func(st *state) { p, ok = st.periods[periodID] })
	if !ok {
		return nil, apperror.NewNotFound("employment_period", periodID)
	}
	return &p, nil
}

func (r *EmployeeRepo) CreatePeriod(ctx context.Context, p *employees.Period) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.employees[p.EmployeeID]; !ok {
			return apperror.NewNotFound("employee", p.EmployeeID)
		}
		st.periods[p.ID] = *p
		return nil
	})
}

func (r *EmployeeRepo) UpdatePeriod(ctx context.Context, p *employees.Period) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.periods[p.ID]; !ok {
			return apperror.NewNotFound("employment_period", p.ID)
		}
		st.periods[p.ID] = *p
		return nil
	})
}

func (r *EmployeeRepo) DeletePeriod(ctx context.Context, periodID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.periods[periodID]; !ok {
			return apperror.NewNotFound("employment_period", periodID)
		}
		delete(st.periods, periodID)
		return nil
	})
}

func (r *EmployeeRepo) ListIDs(ctx context.Context) ([]id.ID, error) {
	var out []id.ID
	r.s.read(func(st *state) {
		for eid := range st.employees {
			out = append(out, eid)
		}
	})
	slices.SortFunc(out, compareIDs)
	return out, nil
}
