package dictionary

import (
	"context"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/pkg/logger"
)

// Service provides dictionary operations.
type Service struct {
	repo Repository
}

// NewService creates a new dictionary service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new entry.
func (s *Service) Create(ctx context.Context, e *Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if id.IsNil(e.ID) {
		e.ID = id.New()
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	logger.Info(ctx, "dictionary entry created", "kind", e.Kind, "id", e.ID, "name", e.Name)
	return nil
}

// GetByID returns an entry.
func (s *Service) GetByID(ctx context.Context, kind Kind, entryID id.ID) (*Entry, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("unknown dictionary").WithDetail("kind", kind)
	}
	return s.repo.GetByID(ctx, kind, entryID)
}

// FindByName looks an entry up by name, ignoring case. It returns nil when nothing matches.
func (s *Service) FindByName(ctx context.Context, kind Kind, name string) (*Entry, error) {
	if name == "" {
		return nil, nil
	}
	return s.repo.FindByName(ctx, kind, name)
}

// List returns all entries of a dictionary ordered by name.
func (s *Service) List(ctx context.Context, kind Kind) ([]Entry, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("unknown dictionary").WithDetail("kind", kind)
	}
	return s.repo.List(ctx, kind)
}

// Delete removes an entry nothing references.
func (s *Service) Delete(ctx context.Context, kind Kind, entryID id.ID) error {
	if !kind.Valid() {
		return apperror.NewValidation("unknown dictionary").WithDetail("kind", kind)
	}
	if err := s.repo.Delete(ctx, kind, entryID); err != nil {
		return err
	}
	logger.Info(ctx, "dictionary entry deleted", "kind", kind, "id", entryID)
	return nil
}

// Exists returns a validation error naming field when the entry is missing.
func (s *Service) Exists(ctx context.Context, kind Kind, entryID id.ID, field string) error {
	if id.IsNil(entryID) {
		return apperror.NewValidation(field + " is required").WithDetail("field", field)
	}
	if _, err := s.repo.GetByID(ctx, kind, entryID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation(field + " does not exist").WithDetail("field", field).WithDetail("id", entryID)
		}
		return err
	}
	return nil
}
