package receipt

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
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/registers/stock"
	"szafa/pkg/logger"
)

// ProductReader resolves products of received lines.
type ProductReader interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// ReferenceChecker validates supplier and recipient references.
type ReferenceChecker interface {
	Exists(ctx context.Context, kind dictionary.Kind, entryID id.ID, field string) error
}

// Ledger posts stock movements.
type Ledger interface {
	ApplyMovement(ctx context.Context, in stock.MovementInput) (stock.Balance, error)
}

// Service runs the PZ lifecycle.
type Service struct {
	repo      Repository
	products  ProductReader
	refs      ReferenceChecker
	ledger    Ledger
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new receipt service.
func NewService(
	repo Repository,
	products ProductReader,
	refs ReferenceChecker,
	ledger Ledger,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		refs:      refs,
		ledger:    ledger,
		numerator: numerator,
		txManager: txManager,
	}
}

// Create numbers and stores a PZ document; every line credits stock.
func (s *Service) Create(ctx context.Context, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	doc.IssueDate = appctx.TruncateDay(doc.IssueDate)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.refs.Exists(ctx, dictionary.KindSupplier, doc.SupplierID, "supplier_id"); err != nil {
			return err
		}
		if err := s.refs.Exists(ctx, dictionary.KindCompany, doc.RecipientID, "recipient_id"); err != nil {
			return err
		}

		number, err := s.numerator.NextNumber(ctx, numerator.DocTypeReceipt, doc.IssueDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.ID = id.New()
		doc.Number = number
		doc.CreatedAt = time.Now().UTC()
		ctx = appctx.WithDocument(ctx, string(numerator.DocTypeReceipt), number)

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create receipt document: %w", err)
		}
		for i := range doc.Items {
			if err := s.addItem(ctx, doc, &doc.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "receipt document created",
		"id", doc.ID,
		"number", doc.Number,
		"supplier_id", doc.SupplierID,
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
		ctx = appctx.WithDocument(ctx, string(numerator.DocTypeReceipt), doc.Number)
		return s.addItem(ctx, doc, item)
	})
}

func (s *Service) addItem(ctx context.Context, doc *Document, item *Item) error {
	if _, err := s.products.GetByID(ctx, item.ProductID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("product does not exist").WithDetail("field", "product_id").WithDetail("id", item.ProductID)
		}
		return err
	}

	item.ID = id.New()
	item.DocumentID = doc.ID
	item.recomputeTotal()

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return fmt.Errorf("create receipt item: %w", err)
	}

	_, err := s.ledger.ApplyMovement(ctx, stock.MovementInput{
		ProductID:      item.ProductID,
		Size:           item.Size,
		Quantity:       item.Quantity,
		Kind:           stock.KindIn,
		DocumentType:   stock.OriginReceipt,
		DocumentID:     doc.ID,
		DocumentNumber: doc.Number,
		Note:           fmt.Sprintf("External reception: %s", doc.Number),
	})
	if err != nil {
		return fmt.Errorf("post receipt movement: %w", err)
	}
	return nil
}

// UpdateItem edits quantity, price or notes. The total is always recomputed; only a
// quantity change moves stock.
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

		oldQty := item.Quantity
		if patch.Quantity != nil {
			item.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			item.UnitPrice = *patch.UnitPrice
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
				Quantity:       delta,
				Kind:           stock.CorrectionKind(delta),
				DocumentType:   stock.OriginReceipt,
				DocumentID:     item.DocumentID,
				DocumentNumber: detail.DocumentNumber,
				Note:           fmt.Sprintf("Correction of received quantity: %d -> %d", oldQty, item.Quantity),
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

	logger.Info(ctx, "receipt item updated", "item_id", itemID, "quantity_delta", delta, "total_value", result.TotalValue)
	return result, nil
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

// List returns PZ headers.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Document], error) {
	filter.ListFilter = filter.ListFilter.Normalize()
	return s.repo.List(ctx, filter)
}

// Delete removes a document and its items. Stock already credited stays.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	if err := s.repo.Delete(ctx, docID); err != nil {
		return err
	}
	logger.Info(ctx, "receipt document deleted", "id", docID)
	return nil
}
