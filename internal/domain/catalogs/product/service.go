package product

import (
	"context"
	"fmt"
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/core/tx"
	"szafa/internal/domain"
	"szafa/pkg/logger"
)

// Service provides product catalog operations.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new product service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{repo: repo, txManager: txManager}
}

// Create validates and stores a new product.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if id.IsNil(p.ID) {
		p.ID = id.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetCategory(ctx, p.CategoryID); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("category does not exist").WithDetail("field", "category_id")
			}
			return err
		}
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "code", p.Code)
	return nil
}

// Update changes product attributes. The code is frozen once anything references the product.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if current.Code != p.Code {
			referenced, err := s.repo.IsReferenced(ctx, p.ID)
			if err != nil {
				return fmt.Errorf("check references: %w", err)
			}
			if referenced {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule, "product code cannot change once stock or documents reference it").
					WithDetail("code", current.Code)
			}
		}
		p.CreatedAt = current.CreatedAt
		return s.repo.Update(ctx, p)
	})
}

// Delete removes a product that nothing references.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product deleted", "id", productID)
	return nil
}

// GetByID returns a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetByCode returns a product by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Product, error) {
	return s.repo.GetByCode(ctx, code)
}

// ListByCodes returns products keyed by code.
func (s *Service) ListByCodes(ctx context.Context, codes []string) (map[string]Product, error) {
	if len(codes) == 0 {
		return map[string]Product{}, nil
	}
	return s.repo.ListByCodes(ctx, codes)
}

// List returns products.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Product], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, c *Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if id.IsNil(c.ID) {
		c.ID = id.New()
	}
	return s.repo.CreateCategory(ctx, c)
}

// GetCategory returns a category.
func (s *Service) GetCategory(ctx context.Context, categoryID id.ID) (*Category, error) {
	return s.repo.GetCategory(ctx, categoryID)
}

// EnsureCategory returns the category with the given name and type, creating it when absent.
func (s *Service) EnsureCategory(ctx context.Context, name string, categoryType CategoryType) (*Category, error) {
	var result *Category
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindCategory(ctx, name, categoryType)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}
		c := &Category{ID: id.New(), Name: name, Type: categoryType}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := s.repo.CreateCategory(ctx, c); err != nil {
			return err
		}
		result = c
		return nil
	})
	return result, err
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}
