// Package numerator provides the PostgreSQL implementation of document numbering.
// It implements core/numerator.Generator.
package numerator

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	corenumerator "szafa/internal/core/numerator"
	"szafa/internal/infrastructure/storage/postgres"
	"szafa/pkg/logger"
)

// Locker obtains a named lock. release is called when the transaction that allocated the
// number commits or rolls back.
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

var documentTables = map[corenumerator.DocType]string{
	corenumerator.DocTypeIssue:   "issue_documents",
	corenumerator.DocTypeReceipt: "receipt_documents",
}

// Service allocates the next number of a (type, year, month) scope from the highest number
// already stored. The scope is serialized with a transaction-level advisory lock, so callers
// must run NextNumber inside the transaction that inserts the document.
type Service struct {
	txm *postgres.TxManager
	// locker is optional; failures to obtain it are logged and ignored
	locker Locker
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a numbering service. locker may be nil.
func New(txm *postgres.TxManager, locker Locker) *Service {
	return &Service{txm: txm, locker: locker}
}

// NextNumber implements corenumerator.Generator.
func (s *Service) NextNumber(ctx context.Context, docType corenumerator.DocType, issueDate time.Time) (string, error) {
	table, ok := documentTables[docType]
	if !ok {
		return "", fmt.Errorf("numerator: unknown document type %q", docType)
	}
	scope := corenumerator.ScopeOf(docType, issueDate)

	if s.locker != nil {
		release, err := s.locker.Obtain(ctx, "szafa:numbering:"+scope.Key())
		if err != nil {
			logger.Warn(ctx, "numbering lock not obtained, relying on advisory lock",
				"scope", scope.Key(),
				"error", err,
			)
		} else {
			s.txm.OnComplete(ctx, release)
		}
	}

	if err := s.txm.AdvisoryXactLock(ctx, scope.Key()); err != nil {
		return "", err
	}

	q := postgres.Builder().
		Select("COALESCE(MAX(split_part(document_number, '/', 4)::bigint), 0)").
		From(table).
		Where(squirrel.Like{"document_number": scope.LikePattern()}).
		Where("split_part(document_number, '/', 4) ~ '^[0-9]+$'")

	var maxIndex int64
	if err := s.txm.Get(ctx, &maxIndex, q, table, scope.Key()); err != nil {
		return "", fmt.Errorf("read highest %s number: %w", docType, err)
	}

	number := scope.Format(maxIndex + 1)
	logger.Debug(ctx, "document number allocated", "number", number)
	return number, nil
}
