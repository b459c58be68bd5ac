package numerator

import (
	"context"
	"time"
)

// Generator allocates document numbers.
//
// NextNumber must run inside the transaction that inserts the document: implementations lock
// the scope for the rest of that transaction so concurrent callers cannot read the same maximum.
// If the insert still collides on the unique number column, the caller gets an
// apperror.CodeDuplicate error and may retry the whole transaction (see WithRetry).
type Generator interface {
	NextNumber(ctx context.Context, docType DocType, issueDate time.Time) (string, error)
}
