package employees_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/id"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/employees"
	"szafa/internal/infrastructure/storage/memory"
)

type recordingDeactivator struct {
	calls []id.ID
}

func (d *recordingDeactivator) DeactivateForEmployee(_ context.Context, employeeID id.ID) (int, error) {
	d.calls = append(d.calls, employeeID)
	return 0, nil
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := day(s)
	return &t
}

func setup(t *testing.T, ctx context.Context) (*employees.Service, *recordingDeactivator, *employees.Employee) {
	t.Helper()
	store := memory.NewStore()
	dicts := dictionary.NewService(store.Dictionaries())
	deact := &recordingDeactivator{}
	svc := employees.NewService(store.Employees(), store, dicts, deact)

	refs := map[dictionary.Kind]id.ID{}
	for _, kind := range []dictionary.Kind{dictionary.KindCompany, dictionary.KindDepartment, dictionary.KindPosition} {
		e := &dictionary.Entry{Kind: kind, Name: "X " + string(kind)}
		require.NoError(t, dicts.Create(ctx, e))
		refs[kind] = e.ID
	}

	emp := &employees.Employee{
		CardNumber:   "2002",
		FirstName:    "Jan",
		LastName:     "Kowalski",
		CompanyID:    refs[dictionary.KindCompany],
		DepartmentID: refs[dictionary.KindDepartment],
		PositionID:   refs[dictionary.KindPosition],
	}
	require.NoError(t, svc.Create(ctx, emp))
	return svc, deact, emp
}

func TestSavePeriod_RejectsOverlap(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-03-01"))
	svc, _, emp := setup(t, ctx)

	require.NoError(t, svc.SavePeriod(ctx, &employees.Period{
		EmployeeID: emp.ID, StartDate: day("2024-01-01"), EndDate: datePtr("2024-06-30"),
	}))

	overlapping := []employees.Period{
		{EmployeeID: emp.ID, StartDate: day("2024-06-30")},
		{EmployeeID: emp.ID, StartDate: day("2023-12-01"), EndDate: datePtr("2024-01-01")},
		{EmployeeID: emp.ID, StartDate: day("2023-01-01")},
		{EmployeeID: emp.ID, StartDate: day("2024-02-01"), EndDate: datePtr("2024-03-01")},
	}
	for _, p := range overlapping {
		err := svc.SavePeriod(ctx, &p)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok, "period %s", p.String())
		assert.Equal(t, apperror.CodeInvariantViolation, appErr.Code)
		assert.Equal(t, "2024-01-01 - 2024-06-30", appErr.Details["conflicting_period"])
	}

	periods, err := svc.ListPeriods(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, periods, 1)

	// Adjacent periods do not overlap.
	require.NoError(t, svc.SavePeriod(ctx, &employees.Period{EmployeeID: emp.ID, StartDate: day("2024-07-01")}))
}

func TestSavePeriod_RejectsOverlapOnUpdate(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-03-01"))
	svc, _, emp := setup(t, ctx)

	earlier := &employees.Period{EmployeeID: emp.ID, StartDate: day("2023-01-01"), EndDate: datePtr("2023-12-31")}
	require.NoError(t, svc.SavePeriod(ctx, earlier))
	current := &employees.Period{EmployeeID: emp.ID, StartDate: day("2024-01-01")}
	require.NoError(t, svc.SavePeriod(ctx, current))

	moves := []employees.Period{
		{ID: earlier.ID, EmployeeID: emp.ID, StartDate: day("2023-01-01"), EndDate: datePtr("2024-02-01")},
		{ID: earlier.ID, EmployeeID: emp.ID, StartDate: day("2023-01-01")},
		{ID: current.ID, EmployeeID: emp.ID, StartDate: day("2023-12-31")},
	}
	for _, p := range moves {
		err := svc.SavePeriod(ctx, &p)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvariantViolation), "period %s", p.String())
	}

	periods, err := svc.ListPeriods(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, periods, 2)
	assert.Equal(t, current.ID, periods[0].ID)
	assert.Equal(t, day("2024-01-01"), periods[0].StartDate)
	assert.Nil(t, periods[0].EndDate)
	assert.Equal(t, earlier.ID, periods[1].ID)
	assert.Equal(t, day("2023-01-01"), periods[1].StartDate)
	require.NotNil(t, periods[1].EndDate)
	assert.Equal(t, day("2023-12-31"), *periods[1].EndDate)
}

func TestSavePeriod_RejectsEndBeforeStart(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-03-01"))
	svc, _, emp := setup(t, ctx)

	for _, end := range []string{"2024-01-01", "2023-12-31"} {
		err := svc.SavePeriod(ctx, &employees.Period{EmployeeID: emp.ID, StartDate: day("2024-01-01"), EndDate: datePtr(end)})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvariantViolation), end)
	}
}

func TestSavePeriod_MaintainsActiveFlag(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-03-01"))
	svc, deact, emp := setup(t, ctx)

	got, err := svc.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	p := &employees.Period{EmployeeID: emp.ID, StartDate: day("2024-01-01")}
	require.NoError(t, svc.SavePeriod(ctx, p))
	got, err = svc.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Empty(t, deact.calls)

	// A future end date keeps the employee active and deactivates nothing.
	p.EndDate = datePtr("2024-04-01")
	require.NoError(t, svc.SavePeriod(ctx, p))
	assert.Empty(t, deact.calls)

	p.EndDate = datePtr("2024-03-01")
	require.NoError(t, svc.SavePeriod(ctx, p))
	assert.Equal(t, []id.ID{emp.ID}, deact.calls)
	got, err = svc.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive, "the last day is still covered")

	later := appctx.WithToday(context.Background(), day("2024-03-02"))
	changed, err := svc.RefreshAll(later)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	got, err = svc.GetByID(later, emp.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestCurrentPeriod(t *testing.T) {
	periods := []employees.Period{
		{StartDate: day("2024-01-01"), EndDate: datePtr("2024-02-01")},
		{StartDate: day("2024-03-01"), EndDate: datePtr("2024-04-01")},
		{StartDate: day("2024-06-01")},
	}

	assert.Nil(t, employees.CurrentPeriod(periods, day("2023-12-31")))
	assert.Equal(t, day("2024-01-01"), employees.CurrentPeriod(periods, day("2024-02-15")).StartDate)
	assert.Equal(t, day("2024-03-01"), employees.CurrentPeriod(periods, day("2024-04-01")).StartDate)
	assert.Equal(t, day("2024-03-01"), employees.CurrentPeriod(periods, day("2024-05-01")).StartDate)
	assert.Equal(t, day("2024-06-01"), employees.CurrentPeriod(periods, day("2030-01-01")).StartDate)

	assert.False(t, employees.ActiveOn(periods, day("2024-05-01")))
	assert.True(t, employees.ActiveOn(periods, day("2024-04-01")))
}

func TestDeletePeriod_RecomputesActive(t *testing.T) {
	ctx := appctx.WithToday(context.Background(), day("2024-03-01"))
	svc, _, emp := setup(t, ctx)

	p := &employees.Period{EmployeeID: emp.ID, StartDate: day("2024-01-01")}
	require.NoError(t, svc.SavePeriod(ctx, p))
	require.NoError(t, svc.DeletePeriod(ctx, emp.ID, p.ID))

	got, err := svc.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	err = svc.DeletePeriod(ctx, emp.ID, p.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreate_ValidatesReferences(t *testing.T) {
	ctx := context.Background()
	svc, _, emp := setup(t, ctx)

	dup := *emp
	dup.ID = id.Nil()
	err := svc.Create(ctx, &dup)
	assert.True(t, apperror.IsDuplicate(err))

	bad := &employees.Employee{CardNumber: "3003", FirstName: "Ewa", LastName: "Lis", CompanyID: id.New(), DepartmentID: emp.DepartmentID, PositionID: emp.PositionID}
	err = svc.Create(ctx, bad)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}
