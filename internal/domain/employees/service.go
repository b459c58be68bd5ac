package employees

import (
	"context"
	"fmt"
	"time"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/id"
	"szafa/internal/core/tx"
	"szafa/internal/domain"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/pkg/logger"
)

// ItemDeactivator closes the usage records of an employee whose employment ended.
// Implemented by the issuance lifecycle.
type ItemDeactivator interface {
	DeactivateForEmployee(ctx context.Context, employeeID id.ID) (int, error)
}

// ReferenceChecker validates dictionary references.
type ReferenceChecker interface {
	Exists(ctx context.Context, kind dictionary.Kind, entryID id.ID, field string) error
}

// Service provides employee and employment period operations.
type Service struct {
	repo        Repository
	txManager   tx.Manager
	refs        ReferenceChecker
	deactivator ItemDeactivator
}

// NewService creates a new employee service.
func NewService(repo Repository, txManager tx.Manager, refs ReferenceChecker, deactivator ItemDeactivator) *Service {
	return &Service{
		repo:        repo,
		txManager:   txManager,
		refs:        refs,
		deactivator: deactivator,
	}
}

// SetDeactivator wires the issuance lifecycle after construction; the two services
// depend on each other.
func (s *Service) SetDeactivator(d ItemDeactivator) {
	s.deactivator = d
}

func (s *Service) checkRefs(ctx context.Context, e *Employee) error {
	if err := s.refs.Exists(ctx, dictionary.KindPosition, e.PositionID, "position_id"); err != nil {
		return err
	}
	if err := s.refs.Exists(ctx, dictionary.KindDepartment, e.DepartmentID, "department_id"); err != nil {
		return err
	}
	return s.refs.Exists(ctx, dictionary.KindCompany, e.CompanyID, "company_id")
}

// Create stores a new employee. Without periods the employee starts inactive.
func (s *Service) Create(ctx context.Context, e *Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	e.IsActive = false
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, e); err != nil {
			return err
		}
		return s.repo.Create(ctx, e)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "employee created", "id", e.ID, "card_number", e.CardNumber)
	return nil
}

// Update changes employee attributes. IsActive is not taken from the caller.
func (s *Service) Update(ctx context.Context, e *Employee) error {
	if err := e.Validate(); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, e.ID)
		if err != nil {
			return err
		}
		if err := s.checkRefs(ctx, e); err != nil {
			return err
		}
		e.IsActive = current.IsActive
		e.CreatedAt = current.CreatedAt
		return s.repo.Update(ctx, e)
	})
}

// Delete removes an employee. Employees with issue documents are protected.
func (s *Service) Delete(ctx context.Context, employeeID id.ID) error {
	if err := s.repo.Delete(ctx, employeeID); err != nil {
		return err
	}
	logger.Info(ctx, "employee deleted", "id", employeeID)
	return nil
}

// GetByID returns an employee.
func (s *Service) GetByID(ctx context.Context, employeeID id.ID) (*Employee, error) {
	return s.repo.GetByID(ctx, employeeID)
}

// List returns employees.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Employee], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// ListPeriods returns the employee's periods, newest first.
func (s *Service) ListPeriods(ctx context.Context, employeeID id.ID) ([]Period, error) {
	return s.repo.ListPeriods(ctx, employeeID)
}

// CurrentPeriod returns the period deciding the employee's status today, or nil.
func (s *Service) CurrentPeriod(ctx context.Context, employeeID id.ID) (*Period, error) {
	periods, err := s.repo.ListPeriods(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return CurrentPeriod(periods, appctx.Today(ctx)), nil
}

// SavePeriod creates (zero ID) or updates a period.
//
// The period is checked against every other period of the employee before anything is
// written. After the write the employee's active flag is recomputed, and when the period
// ends today or earlier all active items of the employee are deactivated. This is the only
// path that triggers deactivation for a period save.
func (s *Service) SavePeriod(ctx context.Context, p *Period) error {
	if err := p.Validate(); err != nil {
		return err
	}

	today := appctx.Today(ctx)
	deactivated := 0
	activeChanged := false
	var cardNumber string

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.repo.GetForUpdate(ctx, p.EmployeeID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("employee does not exist").WithDetail("field", "employee_id")
			}
			return err
		}
		cardNumber = emp.CardNumber

		periods, err := s.repo.ListPeriods(ctx, p.EmployeeID)
		if err != nil {
			return fmt.Errorf("list periods: %w", err)
		}

		creating := id.IsNil(p.ID)
		if !creating {
			existing, err := s.repo.GetPeriod(ctx, p.ID)
			if err != nil {
				return err
			}
			if existing.EmployeeID != p.EmployeeID {
				return apperror.NewValidation("period belongs to another employee").WithDetail("field", "employee_id")
			}
		}

		for _, other := range periods {
			if other.ID == p.ID {
				continue
			}
			if p.Overlaps(other) {
				return apperror.NewInvariantViolation("employment period overlaps an existing period").
					WithDetail("conflicting_period_id", other.ID).
					WithDetail("conflicting_period", other.String())
			}
		}

		if creating {
			p.ID = id.New()
			if err := s.repo.CreatePeriod(ctx, p); err != nil {
				return fmt.Errorf("create period: %w", err)
			}
		} else if err := s.repo.UpdatePeriod(ctx, p); err != nil {
			return fmt.Errorf("update period: %w", err)
		}

		updated := replacePeriod(periods, *p)
		if active := ActiveOn(updated, today); active != emp.IsActive {
			if err := s.repo.SetActive(ctx, emp.ID, active); err != nil {
				return fmt.Errorf("set active: %w", err)
			}
			activeChanged = true
		}

		if p.EndedBy(today) && s.deactivator != nil {
			n, err := s.deactivator.DeactivateForEmployee(ctx, emp.ID)
			if err != nil {
				return fmt.Errorf("deactivate items: %w", err)
			}
			deactivated = n
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.FromContext(ctx).WithEmployee(cardNumber).Infow("employment period saved",
		"employee_id", p.EmployeeID,
		"period_id", p.ID,
		"period", p.String(),
		"active_changed", activeChanged,
		"items_deactivated", deactivated,
	)
	return nil
}

// DeletePeriod removes a period and recomputes the employee's active flag.
func (s *Service) DeletePeriod(ctx context.Context, employeeID, periodID id.ID) error {
	today := appctx.Today(ctx)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.repo.GetForUpdate(ctx, employeeID)
		if err != nil {
			return err
		}
		period, err := s.repo.GetPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if period.EmployeeID != employeeID {
			return apperror.NewNotFound("employment_period", periodID)
		}
		if err := s.repo.DeletePeriod(ctx, periodID); err != nil {
			return fmt.Errorf("delete period: %w", err)
		}

		periods, err := s.repo.ListPeriods(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("list periods: %w", err)
		}
		if active := ActiveOn(periods, today); active != emp.IsActive {
			return s.repo.SetActive(ctx, employeeID, active)
		}
		return nil
	})
}

// RefreshActive recomputes the cached active flag of every listed employee against today.
// Periods that start or end with the passing of days do not trigger a save, so the flag
// drifts unless something refreshes it.
func (s *Service) RefreshActive(ctx context.Context, employeeIDs []id.ID) (int, error) {
	today := appctx.Today(ctx)
	changed := 0

	for _, employeeID := range employeeIDs {
		err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			emp, err := s.repo.GetForUpdate(ctx, employeeID)
			if err != nil {
				return err
			}
			periods, err := s.repo.ListPeriods(ctx, employeeID)
			if err != nil {
				return err
			}
			if active := ActiveOn(periods, today); active != emp.IsActive {
				changed++
				return s.repo.SetActive(ctx, employeeID, active)
			}
			return nil
		})
		if err != nil {
			return changed, fmt.Errorf("refresh employee %s: %w", employeeID, err)
		}
	}

	logger.Info(ctx, "employee active flags refreshed", "checked", len(employeeIDs), "changed", changed)
	return changed, nil
}

// RefreshAll runs RefreshActive over every employee.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}
	return s.RefreshActive(ctx, ids)
}

func replacePeriod(periods []Period, p Period) []Period {
	out := make([]Period, 0, len(periods)+1)
	for _, existing := range periods {
		if existing.ID != p.ID {
			out = append(out, existing)
		}
	}
	return append(out, p)
}
