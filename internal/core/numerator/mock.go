package numerator

import (
	"context"
	"time"
)

// MockGenerator is a test implementation of Generator.
type MockGenerator struct {
	NextNumberFunc func(ctx context.Context, docType DocType, issueDate time.Time) (string, error)
}

// NextNumber implements Generator.
func (m *MockGenerator) NextNumber(ctx context.Context, docType DocType, issueDate time.Time) (string, error) {
	if m.NextNumberFunc != nil {
		return m.NextNumberFunc(ctx, docType, issueDate)
	}
	return ScopeOf(docType, issueDate).Format(1), nil
}

var _ Generator = (*MockGenerator)(nil)
