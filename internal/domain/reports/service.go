package reports

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/tx"
)

// Service provides report generation operations. Line reports read inside one read-only
// transaction.
type Service struct {
	repo      Repository
	txManager tx.ReadOnlyManager
}

// NewService creates a new reports service.
func NewService(repo Repository, txManager tx.ReadOnlyManager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Issues lists issued items by issue date.
func (s *Service) Issues(ctx context.Context, filter IssueFilter) ([]IssueLine, error) {
	if err := checkRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, err
	}
	var lines []IssueLine
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.repo.IssueLines(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get issue lines: %w", err)
	}
	sortIssueLines(lines, filter.SortBy, func(l IssueLine) time.Time { return l.IssueDate })
	return lines, nil
}

// Demand lists active items coming due, by next issue date.
func (s *Service) Demand(ctx context.Context, filter IssueFilter) ([]IssueLine, error) {
	if err := checkRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, err
	}
	var lines []IssueLine
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.repo.DemandLines(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get demand lines: %w", err)
	}
	sortIssueLines(lines, filter.SortBy, func(l IssueLine) time.Time {
		if l.NextIssueDate == nil {
			return time.Time{}
		}
		return *l.NextIssueDate
	})
	return lines, nil
}

// Receipts lists received items.
func (s *Service) Receipts(ctx context.Context, filter ReceiptFilter) ([]ReceiptLine, error) {
	if err := checkRange(filter.DateFrom, filter.DateTo); err != nil {
		return nil, err
	}
	var lines []ReceiptLine
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		lines, err = s.repo.ReceiptLines(ctx, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get receipt lines: %w", err)
	}
	slices.SortStableFunc(lines, func(a, b ReceiptLine) int {
		if c := a.IssueDate.Compare(b.IssueDate); c != 0 {
			return c
		}
		return cmp.Compare(a.DocumentNumber, b.DocumentNumber)
	})
	return lines, nil
}

// OrderDemand computes what to order to cover upcoming issues:
// need = max(0, forecast + minimum stock - current stock) per (product, size).
// The two reads run concurrently on separate connections, so they stay outside a transaction.
func (s *Service) OrderDemand(ctx context.Context, filter OrderDemandFilter) (*OrderDemandReport, error) {
	if filter.MonthsAhead <= 0 {
		filter.MonthsAhead = 1
	}
	from := appctx.Today(ctx)
	to := from.AddDate(0, 0, 30*filter.MonthsAhead)

	var (
		forecast []ForecastRow
		levels   map[string]int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.repo.Forecast(gctx, from, to)
		if err != nil {
			return fmt.Errorf("get forecast: %w", err)
		}
		forecast = rows
		return nil
	})
	g.Go(func() error {
		balances, err := s.repo.StockLevels(gctx)
		if err != nil {
			return fmt.Errorf("get stock levels: %w", err)
		}
		levels = make(map[string]int, len(balances))
		for _, b := range balances {
			levels[stockKey(b.ProductID.String(), b.Size)] = b.Quantity
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &OrderDemandReport{From: from, To: to, Rows: []OrderDemandRow{}}
	for _, f := range forecast {
		current := levels[stockKey(f.ProductID.String(), f.Size)]
		need := max(0, f.Quantity+f.MinQtyOnStock-current)
		if need == 0 && !filter.ShowZero {
			continue
		}
		report.Rows = append(report.Rows, OrderDemandRow{
			ProductID:    f.ProductID,
			ProductCode:  f.ProductCode,
			ProductName:  f.ProductName,
			Size:         f.Size,
			CurrentStock: current,
			MinStock:     f.MinQtyOnStock,
			Forecast:     f.Quantity,
			Need:         need,
		})
		report.TotalNeed += need
	}
	slices.SortStableFunc(report.Rows, func(a, b OrderDemandRow) int {
		if c := cmp.Compare(a.ProductCode, b.ProductCode); c != 0 {
			return c
		}
		return cmp.Compare(a.Size, b.Size)
	})
	return report, nil
}

func stockKey(productID, size string) string {
	return productID + "\x00" + size
}

func checkRange(from, to *time.Time) error {
	if from != nil && to != nil && from.After(*to) {
		return apperror.NewValidation("date_from must not be after date_to").WithDetail("field", "date_from")
	}
	return nil
}

func sortIssueLines(lines []IssueLine, by SortBy, date func(IssueLine) time.Time) {
	byEmployee := func(a, b IssueLine) int {
		return cmp.Compare(a.EmployeeID.String(), b.EmployeeID.String())
	}
	byDate := func(a, b IssueLine) int {
		return date(a).Compare(date(b))
	}
	first, second := byEmployee, byDate
	if by == SortDateEmployee {
		first, second = byDate, byEmployee
	}
	slices.SortStableFunc(lines, func(a, b IssueLine) int {
		if c := first(a, b); c != 0 {
			return c
		}
		return second(a, b)
	})
}
