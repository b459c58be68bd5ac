package reports

import (
	"context"
	"time"

	"szafa/internal/domain/registers/stock"
)

// Repository defines report data access. Ordering is applied by the service.
type Repository interface {
	// IssueLines returns items filtered on the document issue date.
	IssueLines(ctx context.Context, filter IssueFilter) ([]IssueLine, error)

	// DemandLines returns active items with a next issue date, filtered on that date.
	DemandLines(ctx context.Context, filter IssueFilter) ([]IssueLine, error)

	ReceiptLines(ctx context.Context, filter ReceiptFilter) ([]ReceiptLine, error)

	// Forecast sums active items whose next issue date falls in [from, to].
	Forecast(ctx context.Context, from, to time.Time) ([]ForecastRow, error)

	// StockLevels returns every stock row.
	StockLevels(ctx context.Context) ([]stock.Balance, error)
}
