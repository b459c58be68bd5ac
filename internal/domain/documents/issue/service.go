package issue

import (
	"context"
	"fmt"
	"time"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/id"
	"szafa/internal/core/numerator"
	"szafa/internal/core/tx"
	"szafa/internal/domain"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/employees"
	"szafa/internal/domain/registers/stock"
	"szafa/pkg/logger"
)

// ProductReader resolves products of issued lines.
type ProductReader interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// EmployeeReader resolves the employee of a document and their employment periods.
type EmployeeReader interface {
	GetByID(ctx context.Context, employeeID id.ID) (*employees.Employee, error)
	ListPeriods(ctx context.Context, employeeID id.ID) ([]employees.Period, error)
}

// Ledger posts stock movements.
type Ledger interface {
	ApplyMovement(ctx context.Context, in stock.MovementInput) (stock.Balance, error)
}

// Service runs the DW document and item lifecycle.
type Service struct {
	repo      Repository
	products  ProductReader
	employees EmployeeReader
	ledger    Ledger
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new issue service.
func NewService(
	repo Repository,
	products ProductReader,
	employees EmployeeReader,
	ledger Ledger,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		employees: employees,
		ledger:    ledger,
		numerator: numerator,
		txManager: txManager,
	}
}

// Create numbers and stores a DW document with its items. Number allocation, header,
// items and their stock movements commit together. A number collision surfaces as
// apperror.CodeDuplicate; wrap the call in numerator.WithRetry to retry it.
func (s *Service) Create(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	doc.IssueDate = appctx.TruncateDay(doc.IssueDate)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		emp, periods, err := s.loadEmployee(ctx, doc.EmployeeID)
		if err != nil {
			return err
		}

		number, err := s.numerator.NextNumber(ctx, numerator.DocTypeIssue, doc.IssueDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.ID = id.New()
		doc.Number = number
		doc.CreatedAt = time.Now().UTC()
		ctx = appctx.WithDocument(ctx, string(numerator.DocTypeIssue), number)

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create issue document: %w", err)
		}

		for i := range doc.Items {
			if err := s.addItem(ctx, doc, emp, periods, &doc.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "issue document created",
		"id", doc.ID,
		"number", doc.Number,
		"employee_id", doc.EmployeeID,
		"items", len(doc.Items),
	)
	return nil
}

// AddItem appends a line to an existing document.
func (s *Service) AddItem(ctx context.Context, docID id.ID, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetByID(ctx, docID)
		if err != nil {
			return err
		}
		emp, periods, err := s.loadEmployee(ctx, doc.EmployeeID)
		if err != nil {
			return err
		}
		ctx = appctx.WithDocument(ctx, string(numerator.DocTypeIssue), doc.Number)
		return s.addItem(ctx, doc, emp, periods, item)
	})
}

func (s *Service) loadEmployee(ctx context.Context, employeeID id.ID) (*employees.Employee, []employees.Period, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, apperror.NewValidation("employee does not exist").WithDetail("field", "employee_id")
		}
		return nil, nil, err
	}
	periods, err := s.employees.ListPeriods(ctx, employeeID)
	if err != nil {
		return nil, nil, fmt.Errorf("list periods: %w", err)
	}
	return emp, periods, nil
}

// addItem computes derived fields, stores the item and posts its issuance movement.
// Items issued to an employee whose current period already ended are stored as used and
// auto-deactivated; the goods still left the warehouse, so the movement is posted anyway.
func (s *Service) addItem(ctx context.Context, doc *Document, emp *employees.Employee, periods []employees.Period, item *Item) error {
	p, err := s.products.GetByID(ctx, item.ProductID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("product does not exist").WithDetail("field", "product_id").WithDetail("id", item.ProductID)
		}
		return err
	}

	item.ID = id.New()
	item.DocumentID = doc.ID
	item.Status = StatusActive
	item.AutoDeactivated = false
	item.recomputeTotal()

	if item.NextIssueDate == nil {
		next := doc.IssueDate.AddDate(0, 0, p.PeriodDays)
		item.NextIssueDate = &next
	}

	if current := employees.CurrentPeriod(periods, appctx.Today(ctx)); current != nil && current.EndedBy(appctx.Today(ctx)) {
		item.Status = StatusUsed
		item.AutoDeactivated = true
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return fmt.Errorf("create issue item: %w", err)
	}

	_, err = s.ledger.ApplyMovement(ctx, stock.MovementInput{
		ProductID:      item.ProductID,
		Size:           item.Size,
		Quantity:       -item.Quantity,
		Kind:           stock.KindOut,
		DocumentType:   stock.OriginIssue,
		DocumentID:     doc.ID,
		DocumentNumber: doc.Number,
		Note:           fmt.Sprintf("Employee issuance: %s", emp),
	})
	if err != nil {
		return fmt.Errorf("post issuance movement: %w", err)
	}

	if item.AutoDeactivated {
		logger.Warn(ctx, "item issued to employee with ended employment, stored as used",
			"item_id", item.ID,
			"employee_id", emp.ID,
		)
	}
	return nil
}

// MarkUsed closes an active item without touching stock.
func (s *Service) MarkUsed(ctx context.Context, itemID id.ID) (*Item, error) {
	var result *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		detail, err := s.repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		item := detail.Item
		if err := item.transition(StatusUsed); err != nil {
			return err
		}
		if err := s.repo.UpdateItem(ctx, &item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		result = &item
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "issue item marked used", "item_id", itemID)
	return result, nil
}

// Return takes an active item back into the warehouse: the quantity is credited with an
// in movement and the item becomes returned.
func (s *Service) Return(ctx context.Context, itemID id.ID) (*Item, error) {
	var result *Item
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		detail, err := s.repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		item := detail.Item
		if err := item.transition(StatusReturned); err != nil {
			return err
		}

		emp, err := s.employees.GetByID(ctx, detail.EmployeeID)
		if err != nil {
			return fmt.Errorf("get employee: %w", err)
		}

		_, err = s.ledger.ApplyMovement(ctx, stock.MovementInput{
			ProductID:      item.ProductID,
			Size:           item.Size,
			Quantity:       item.Quantity,
			Kind:           stock.KindIn,
			DocumentType:   stock.OriginReturn,
			DocumentID:     item.DocumentID,
			DocumentNumber: detail.DocumentNumber,
			Note:           fmt.Sprintf("Return from employee: %s", emp),
		})
		if err != nil {
			return fmt.Errorf("post return movement: %w", err)
		}

		if err := s.repo.UpdateItem(ctx, &item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		result = &item
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "issue item returned", "item_id", itemID, "quantity", result.Quantity)
	return result, nil
}

// UpdateItem edits quantity, price or notes. A quantity change posts a correction
// movement for the difference: more issued takes stock out, less issued puts it back.
// Returned items are closed for edits.
func (s *Service) UpdateItem(ctx context.Context, itemID id.ID, patch ItemPatch) (*Item, error) {
	if patch.Quantity != nil && *patch.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if patch.UnitPrice != nil && patch.UnitPrice.IsNegative() {
		return nil, apperror.NewValidation("unit price cannot be negative").WithDetail("field", "unit_price")
	}

	var (
		result *Item
		delta  int
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		detail, err := s.repo.GetItemForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		item := detail.Item
		if item.Status == StatusReturned {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule, "returned items cannot be edited").
				WithDetail("item_id", itemID)
		}

		oldQty := item.Quantity
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		switch {
		case patch.ClearPrice:
			item.UnitPrice = nil
		case patch.UnitPrice != nil:
			price := *patch.UnitPrice
			item.UnitPrice = &price
		}
		if patch.Notes != nil {
			item.Notes = *patch.Notes
		}
		item.recomputeTotal()

		delta = item.Quantity - oldQty
		if delta != 0 {
			_, err = s.ledger.ApplyMovement(ctx, stock.MovementInput{
				ProductID:      item.ProductID,
				Size:           item.Size,
				Quantity:       -delta,
				Kind:           stock.CorrectionKind(-delta),
				DocumentType:   stock.OriginIssue,
				DocumentID:     item.DocumentID,
				DocumentNumber: detail.DocumentNumber,
				Note:           fmt.Sprintf("Correction of issued quantity: %d -> %d", oldQty, item.Quantity),
			})
			if err != nil {
				return fmt.Errorf("post correction movement: %w", err)
			}
		}

		if err := s.repo.UpdateItem(ctx, &item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		result = &item
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "issue item updated", "item_id", itemID, "quantity_delta", delta)
	return result, nil
}

// DeactivateForEmployee closes every active item of the employee as used and
// auto-deactivated. Stock is not credited: the goods stay with the former employee.
func (s *Service) DeactivateForEmployee(ctx context.Context, employeeID id.ID) (int, error) {
	var n int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.repo.DeactivateActiveByEmployee(ctx, employeeID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("deactivate items: %w", err)
	}

	logger.Info(ctx, "employee items auto-deactivated", "employee_id", employeeID, "items", n)
	return n, nil
}

// GetByID returns a document with its items.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Document, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// List returns DW headers.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Document], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// Delete removes a document and its items. Stock already moved is not reversed.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	if err := s.repo.Delete(ctx, docID); err != nil {
		return err
	}
	logger.Info(ctx, "issue document deleted", "id", docID)
	return nil
}

// RecomputeValues refreshes unit prices and totals of all items from current product prices.
func (s *Service) RecomputeValues(ctx context.Context) (int64, error) {
	var n int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.repo.RecomputeValuesFromProducts(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("recompute values: %w", err)
	}

	logger.Info(ctx, "issue item values recomputed", "items", n)
	return n, nil
}
