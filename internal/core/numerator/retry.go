package numerator

import (
	"context"

	"szafa/internal/core/apperror"
	"szafa/pkg/logger"
)

// DefaultRetryAttempts bounds WithRetry when the caller passes a non-positive value.
const DefaultRetryAttempts = 3

// WithRetry runs fn until it succeeds, fails with something other than a duplicate entry
// error, or attempts run out. fn must be the whole number-allocating transaction so every
// attempt recomputes the index.
func WithRetry(ctx context.Context, attempts int, fn func(ctx context.Context) error) error {
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil || !apperror.IsDuplicate(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		logger.Warn(ctx, "document number collision, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err,
		)
	}
	return err
}
