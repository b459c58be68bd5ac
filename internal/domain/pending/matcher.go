package pending

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"szafa/internal/core/id"
	"szafa/internal/domain/catalogs/dictionary"
)

// SupplierMatcher resolves the seller named on an ingested document to a supplier.
// It returns nil when nothing matches.
type SupplierMatcher interface {
	Match(ctx context.Context, sellerName string) (*id.ID, error)
}

// SupplierLister lists supplier entries.
type SupplierLister interface {
	List(ctx context.Context, kind dictionary.Kind) ([]dictionary.Entry, error)
}

// FirstTokenMatcher compares the first whitespace-separated token of the seller name with
// supplier names, ignoring case. "ACME Sp. z o.o." matches a supplier named "acme".
type FirstTokenMatcher struct {
	suppliers SupplierLister
}

// NewFirstTokenMatcher creates a matcher over the supplier dictionary.
func NewFirstTokenMatcher(suppliers SupplierLister) *FirstTokenMatcher {
	return &FirstTokenMatcher{suppliers: suppliers}
}

// Match implements SupplierMatcher.
func (m *FirstTokenMatcher) Match(ctx context.Context, sellerName string) (*id.ID, error) {
	fields := strings.Fields(sellerName)
	if len(fields) == 0 {
		return nil, nil
	}
	// Casers keep state, so each call gets its own.
	fold := cases.Fold()
	token := fold.String(fields[0])

	entries, err := m.suppliers.List(ctx, dictionary.KindSupplier)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if fold.String(strings.TrimSpace(e.Name)) == token {
			supplierID := e.ID
			return &supplierID, nil
		}
	}
	return nil, nil
}
