package dictionary

import (
	"context"

	"szafa/internal/core/id"
)

// Repository persists dictionary entries.
type Repository interface {
	// Create inserts an entry; a taken name yields apperror.CodeDuplicate.
	Create(ctx context.Context, e *Entry) error

	GetByID(ctx context.Context, kind Kind, entryID id.ID) (*Entry, error)

	// FindByName returns the entry whose name equals name ignoring case, or nil.
	FindByName(ctx context.Context, kind Kind, name string) (*Entry, error)

	List(ctx context.Context, kind Kind) ([]Entry, error)

	// Delete removes an entry; references yield apperror.CodeProtected.
	Delete(ctx context.Context, kind Kind, entryID id.ID) error
}
