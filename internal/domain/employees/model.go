// Package employees manages employees and their employment periods.
package employees

import (
	"fmt"
	"strings"
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
)

// Employee is a person equipment is issued to.
type Employee struct {
	ID           id.ID  `db:"id" json:"id"`
	CardNumber   string `db:"card_number" json:"cardNumber"`
	FirstName    string `db:"first_name" json:"firstName"`
	LastName     string `db:"last_name" json:"lastName"`
	PositionID   id.ID  `db:"position_id" json:"positionId"`
	DepartmentID id.ID  `db:"department_id" json:"departmentId"`
	CompanyID    id.ID  `db:"company_id" json:"companyId"`

	// IsActive caches whether some period covers today; maintained by Service
	IsActive bool `db:"is_active" json:"isActive"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// String renders the employee the way movement notes and reports show it.
func (e *Employee) String() string {
	return fmt.Sprintf("%s %s (%s)", e.FirstName, e.LastName, e.CardNumber)
}

// Validate checks employee fields.
func (e *Employee) Validate() error {
	e.CardNumber = strings.TrimSpace(e.CardNumber)
	switch {
	case e.CardNumber == "":
		return apperror.NewValidation("card number is required").WithDetail("field", "card_number")
	case len(e.CardNumber) > 20:
		return apperror.NewValidation("card number is too long").WithDetail("field", "card_number")
	case strings.TrimSpace(e.FirstName) == "":
		return apperror.NewValidation("first name is required").WithDetail("field", "first_name")
	case strings.TrimSpace(e.LastName) == "":
		return apperror.NewValidation("last name is required").WithDetail("field", "last_name")
	}
	return nil
}

// Period is one employment period. EndDate nil means open-ended.
type Period struct {
	ID         id.ID      `db:"id" json:"id"`
	EmployeeID id.ID      `db:"employee_id" json:"employeeId"`
	StartDate  time.Time  `db:"start_date" json:"startDate"`
	EndDate    *time.Time `db:"end_date" json:"endDate,omitempty"`
}

// Validate checks the period on its own.
func (p *Period) Validate() error {
	if id.IsNil(p.EmployeeID) {
		return apperror.NewValidation("employee is required").WithDetail("field", "employee_id")
	}
	if p.StartDate.IsZero() {
		return apperror.NewValidation("start date is required").WithDetail("field", "start_date")
	}
	if p.EndDate != nil && !p.EndDate.After(p.StartDate) {
		return apperror.NewInvariantViolation("end date must be after start date").
			WithDetail("start_date", p.StartDate.Format(time.DateOnly)).
			WithDetail("end_date", p.EndDate.Format(time.DateOnly))
	}
	return nil
}

// Overlaps reports whether two periods share at least one day.
// An open end counts as +inf.
func (p Period) Overlaps(other Period) bool {
	return beforeOrEqualEnd(p.StartDate, other.EndDate) && beforeOrEqualEnd(other.StartDate, p.EndDate)
}

// Covers reports whether day falls inside the period, bounds included.
func (p Period) Covers(day time.Time) bool {
	return !p.StartDate.After(day) && beforeOrEqualEnd(day, p.EndDate)
}

// EndedBy reports whether the period has an end date on or before day.
func (p Period) EndedBy(day time.Time) bool {
	return p.EndDate != nil && !p.EndDate.After(day)
}

// String renders the period for error details.
func (p Period) String() string {
	end := "present"
	if p.EndDate != nil {
		end = p.EndDate.Format(time.DateOnly)
	}
	return p.StartDate.Format(time.DateOnly) + " - " + end
}

func beforeOrEqualEnd(t time.Time, end *time.Time) bool {
	return end == nil || !t.After(*end)
}

// CurrentPeriod picks the period that decides whether the employee is working on day:
// the one covering day, else the latest one that started on or before day. Nil when the
// employee has not started yet or has no periods.
func CurrentPeriod(periods []Period, day time.Time) *Period {
	var latest *Period
	for i := range periods {
		p := &periods[i]
		if p.StartDate.After(day) {
			continue
		}
		if p.Covers(day) {
			return p
		}
		if latest == nil || p.StartDate.After(latest.StartDate) {
			latest = p
		}
	}
	return latest
}

// ActiveOn reports whether some period covers day.
func ActiveOn(periods []Period, day time.Time) bool {
	for _, p := range periods {
		if p.Covers(day) {
			return true
		}
	}
	return false
}
