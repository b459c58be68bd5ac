package pending

import (
	"context"
	"fmt"
	"time"

	"szafa/internal/core/apperror"
	appctx "szafa/internal/core/context"
	"szafa/internal/core/id"
	"szafa/internal/core/tx"
	"szafa/internal/core/validation"
	"szafa/internal/domain"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/domain/documents/receipt"
	"szafa/pkg/logger"
)

// Catalog is the part of the product catalog the pipeline needs.
type Catalog interface {
	ProductFinder
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
	Create(ctx context.Context, p *product.Product) error
	GetCategory(ctx context.Context, categoryID id.ID) (*product.Category, error)
	EnsureCategory(ctx context.Context, name string, categoryType product.CategoryType) (*product.Category, error)
}

// CompanyFinder resolves the recipient company by name.
type CompanyFinder interface {
	FindByName(ctx context.Context, kind dictionary.Kind, name string) (*dictionary.Entry, error)
}

// ReceiptCreator turns approved lines into a PZ document.
type ReceiptCreator interface {
	Create(ctx context.Context, doc *receipt.Document) error
}

// Config holds pipeline settings.
type Config struct {
	// RecipientName is the company every staged delivery is addressed to
	RecipientName string
	// DefaultCategory receives staged products until an operator approves them
	DefaultCategory string
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{RecipientName: "Ceva 1", DefaultCategory: "clothing"}
}

// Service runs ingestion, approval and rejection of staged data.
type Service struct {
	repo      Repository
	catalog   Catalog
	suppliers SupplierMatcher
	companies CompanyFinder
	receipts  ReceiptCreator
	relinker  *Relinker
	txManager tx.Manager
	cfg       Config
}

// NewService creates a new pending pipeline service.
func NewService(
	repo Repository,
	catalog Catalog,
	suppliers SupplierMatcher,
	companies CompanyFinder,
	receipts ReceiptCreator,
	relinker *Relinker,
	txManager tx.Manager,
	cfg Config,
) *Service {
	def := DefaultConfig()
	if cfg.RecipientName == "" {
		cfg.RecipientName = def.RecipientName
	}
	if cfg.DefaultCategory == "" {
		cfg.DefaultCategory = def.DefaultCategory
	}
	return &Service{
		repo:      repo,
		catalog:   catalog,
		suppliers: suppliers,
		companies: companies,
		receipts:  receipts,
		relinker:  relinker,
		txManager: txManager,
		cfg:       cfg,
	}
}

// IngestProducts stages every line of an invoice as a product candidate. Codes already
// staged or already in the catalog are skipped. The batch commits as a whole.
func (s *Service) IngestProducts(ctx context.Context, raw []byte) (IngestProductsResult, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return IngestProductsResult{}, err
	}

	logRejectedLines(ctx, payload.Rejected)

	result := IngestProductsResult{Rejected: payload.Rejected}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		category, err := s.catalog.EnsureCategory(ctx, s.cfg.DefaultCategory, product.CategoryClothing)
		if err != nil {
			return fmt.Errorf("ensure default category: %w", err)
		}

		codes := lineCodes(payload.Lines)
		staged, err := s.repo.ProductsByCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("load staged products: %w", err)
		}
		existing, err := s.catalog.ListByCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		seen := make(map[string]struct{}, len(payload.Lines))
		for _, line := range payload.Lines {
			_, dup := seen[line.Code]
			_, isStaged := staged[line.Code]
			_, isProduct := existing[line.Code]
			if dup || isStaged || isProduct {
				result.Skipped = append(result.Skipped, line.Code)
				continue
			}
			seen[line.Code] = struct{}{}

			p := newStagedProduct(line, category.ID)
			if err := s.repo.CreateProduct(ctx, &p); err != nil {
				return fmt.Errorf("stage product %s: %w", line.Code, err)
			}
			result.Created = append(result.Created, p.Code)
			result.IDs = append(result.IDs, p.ID)
		}
		return nil
	})
	if err != nil {
		return IngestProductsResult{}, err
	}

	logger.Info(ctx, "invoice products staged",
		"created", len(result.Created),
		"skipped", len(result.Skipped),
		"rejected", len(result.Rejected),
		"lines_without_code", payload.Skipped,
	)
	return result, nil
}

// IngestReceipt stages a delivery note. Lines whose code is in the catalog are linked to
// the product; the rest are linked to a staged placeholder for their code, created when
// none exists, so the replacement pass can resolve them later.
func (s *Service) IngestReceipt(ctx context.Context, raw []byte) (IngestReceiptResult, error) {
	payload, err := DecodePayload(raw)
	if err != nil {
		return IngestReceiptResult{}, err
	}

	doc := &ReceiptDocument{
		ID:              id.New(),
		SellerName:      payload.Header.SellerName,
		ReferenceNumber: payload.Header.ReferenceNumber,
		DocumentNumber:  payload.Header.DocumentNumber,
		RawPayload:      raw,
		CreatedAt:       time.Now().UTC(),
	}
	if issueDate, ok := ParseDate(payload.Header.OrderDate); ok {
		doc.IssueDate = issueDate
	} else {
		doc.IssueDate = appctx.Today(ctx)
		doc.DateFallback = true
		logger.Warn(ctx, "unrecognized order date, using today",
			"order_date", payload.Header.OrderDate,
			"document_number", payload.Header.DocumentNumber,
		)
	}
	if delivery, ok := ParseDate(payload.Header.DeliveryDate); ok {
		doc.DeliveryDate = &delivery
	}

	logRejectedLines(ctx, payload.Rejected)

	result := IngestReceiptResult{
		DocumentID:   doc.ID,
		DateFallback: doc.DateFallback,
		Rejected:     payload.Rejected,
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		supplierID, err := s.suppliers.Match(ctx, payload.Header.SellerName)
		if err != nil {
			return fmt.Errorf("match supplier: %w", err)
		}
		doc.SupplierID = supplierID

		recipient, err := s.companies.FindByName(ctx, dictionary.KindCompany, s.cfg.RecipientName)
		if err != nil {
			return fmt.Errorf("find recipient: %w", err)
		}
		if recipient != nil {
			doc.RecipientID = &recipient.ID
		}

		if err := s.repo.CreateReceipt(ctx, doc); err != nil {
			return fmt.Errorf("create staged receipt: %w", err)
		}

		codes := lineCodes(payload.Lines)
		products, err := s.catalog.ListByCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		placeholders, err := s.repo.ProductsByCodes(ctx, codes)
		if err != nil {
			return fmt.Errorf("load staged products: %w", err)
		}

		var category *product.Category
		items := make([]ReceiptItem, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			item := ReceiptItem{
				ID:                id.New(),
				DocumentID:        doc.ID,
				Code:              line.Code,
				Name:              line.Name,
				Size:              line.Size,
				UnitPrice:         line.UnitPrice,
				QuantityOrdered:   line.QuantityOrdered,
				QuantityDelivered: line.QuantityDelivered,
			}

			if p, ok := products[line.Code]; ok {
				productID := p.ID
				item.ProductID = &productID
				result.Matched++
				items = append(items, item)
				continue
			}

			placeholder, ok := placeholders[line.Code]
			if !ok {
				if category == nil {
					category, err = s.catalog.EnsureCategory(ctx, s.cfg.DefaultCategory, product.CategoryClothing)
					if err != nil {
						return fmt.Errorf("ensure default category: %w", err)
					}
				}
				placeholder = newStagedProduct(line, category.ID)
				if err := s.repo.CreateProduct(ctx, &placeholder); err != nil {
					return fmt.Errorf("stage placeholder %s: %w", line.Code, err)
				}
				placeholders[line.Code] = placeholder
			}
			placeholderID := placeholder.ID
			item.PendingProductID = &placeholderID
			result.Unmatched++
			items = append(items, item)
		}

		if len(items) > 0 {
			if err := s.repo.CreateReceiptItems(ctx, items); err != nil {
				return fmt.Errorf("create staged items: %w", err)
			}
		}
		result.ItemsCreated = len(items)
		result.ItemIDs = make([]id.ID, len(items))
		for i, it := range items {
			result.ItemIDs[i] = it.ID
		}
		return nil
	})
	if err != nil {
		return IngestReceiptResult{}, err
	}

	logger.Info(ctx, "delivery note staged",
		"pending_document_id", doc.ID,
		"document_number", doc.DocumentNumber,
		"items", result.ItemsCreated,
		"matched", result.Matched,
		"unmatched", result.Unmatched,
		"rejected", len(result.Rejected),
	)
	return result, nil
}

// ApproveProducts promotes staged products into the catalog under one category, relinks
// staged lines that pointed at them and drops the staged rows. It is all or nothing: a code
// already present in the catalog fails the whole approval.
func (s *Service) ApproveProducts(ctx context.Context, in ApproveProductsInput) ([]product.Product, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var created []product.Product
	var relinked int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.catalog.GetCategory(ctx, in.CategoryID); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("category does not exist").WithDetail("field", "category_id")
			}
			return err
		}

		ids := make([]id.ID, len(in.Items))
		for i, item := range in.Items {
			ids[i] = item.PendingID
		}
		staged, err := s.repo.GetProducts(ctx, ids)
		if err != nil {
			return fmt.Errorf("load staged products: %w", err)
		}
		byID := make(map[id.ID]Product, len(staged))
		for _, p := range staged {
			byID[p.ID] = p
		}

		for _, approval := range in.Items {
			sp, ok := byID[approval.PendingID]
			if !ok {
				return apperror.NewNotFound("pending_product", approval.PendingID)
			}
			p := approval.apply(sp, in.CategoryID)
			if err := s.catalog.Create(ctx, &p); err != nil {
				return err
			}
			created = append(created, p)
		}

		relinked, err = s.relinker.Run(ctx)
		if err != nil {
			return err
		}
		if _, err := s.repo.DeleteProducts(ctx, ids); err != nil {
			return fmt.Errorf("delete staged products: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "staged products approved", "created", len(created), "relinked", relinked)
	return created, nil
}

// RejectProducts runs the replacement pass and then discards the staged products.
func (s *Service) RejectProducts(ctx context.Context, ids []id.ID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperror.NewValidation("no products selected").WithDetail("field", "ids")
	}

	var deleted int64
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.relinker.Run(ctx); err != nil {
			return err
		}
		n, err := s.repo.DeleteProducts(ctx, ids)
		if err != nil {
			return fmt.Errorf("delete staged products: %w", err)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "staged products rejected", "deleted", deleted)
	return deleted, nil
}

// ApproveReceipt converts a staged delivery into a PZ document. Placeholders are relinked
// first, operator overrides are applied, zero-quantity lines are dropped, and every
// remaining line must resolve to a catalog product. The staged document is removed once
// the receipt exists.
func (s *Service) ApproveReceipt(ctx context.Context, docID id.ID, in ApproveReceiptInput) (*receipt.Document, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var result *receipt.Document
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		staged, err := s.repo.GetReceiptForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if _, err := s.relinker.Run(ctx); err != nil {
			return err
		}
		items, err := s.repo.GetReceiptItems(ctx, docID)
		if err != nil {
			return fmt.Errorf("load staged items: %w", err)
		}

		overrides := make(map[id.ID]ReceiptLineOverride, len(in.Items))
		for _, o := range in.Items {
			overrides[o.ItemID] = o
		}
		for itemID := range overrides {
			if !containsItem(items, itemID) {
				return apperror.NewValidation("override refers to an unknown line").WithDetail("item_id", itemID)
			}
		}

		doc := &receipt.Document{IssueDate: staged.IssueDate}
		if in.IssueDate != nil {
			doc.IssueDate = *in.IssueDate
		}
		switch {
		case in.SupplierID != nil:
			doc.SupplierID = *in.SupplierID
		case staged.SupplierID != nil:
			doc.SupplierID = *staged.SupplierID
		}
		switch {
		case in.RecipientID != nil:
			doc.RecipientID = *in.RecipientID
		case staged.RecipientID != nil:
			doc.RecipientID = *staged.RecipientID
		}

		var unresolved []string
		for _, item := range items {
			line, keep, err := s.receiptLine(ctx, item, overrides[item.ID])
			if err != nil {
				return err
			}
			if !keep {
				continue
			}
			if line == nil {
				unresolved = append(unresolved, item.Code)
				continue
			}
			doc.Items = append(doc.Items, *line)
		}
		if len(unresolved) > 0 {
			return apperror.NewValidation("some lines have no catalog product").WithDetail("codes", unresolved)
		}
		if len(doc.Items) == 0 {
			return apperror.NewValidation("nothing to receive: every line has zero quantity")
		}

		if err := s.receipts.Create(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.DeleteReceipt(ctx, docID); err != nil {
			return fmt.Errorf("delete staged receipt: %w", err)
		}
		result = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "staged delivery approved",
		"pending_document_id", docID,
		"receipt_id", result.ID,
		"number", result.Number,
		"items", len(result.Items),
	)
	return result, nil
}

// receiptLine builds the receipt line for a staged item. keep is false for zero-quantity
// lines; a nil line with keep set means the item has no product.
func (s *Service) receiptLine(ctx context.Context, item ReceiptItem, o ReceiptLineOverride) (line *receipt.Item, keep bool, err error) {
	qty := item.ReceivedQuantity()
	if o.Quantity != nil {
		qty = *o.Quantity
	}
	if qty == 0 {
		return nil, false, nil
	}

	productID := item.ProductID
	if o.ProductID != nil {
		productID = o.ProductID
	}
	if productID == nil {
		return nil, true, nil
	}

	p, err := s.catalog.GetByID(ctx, *productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, true, apperror.NewValidation("product does not exist").WithDetail("code", item.Code)
		}
		return nil, true, err
	}

	price := item.UnitPrice
	if o.UnitPrice != nil {
		price = *o.UnitPrice
	} else if price.IsZero() {
		price = p.UnitPrice
	}
	size := item.Size
	if o.Size != nil {
		size = *o.Size
	}

	return &receipt.Item{
		ProductID: p.ID,
		Quantity:  qty,
		Size:      size,
		UnitPrice: price,
		Notes:     item.Name,
	}, true, nil
}

// RejectReceipt discards a staged delivery.
func (s *Service) RejectReceipt(ctx context.Context, docID id.ID) error {
	if err := s.repo.DeleteReceipt(ctx, docID); err != nil {
		return err
	}
	logger.Info(ctx, "staged delivery rejected", "pending_document_id", docID)
	return nil
}

// Relink runs the replacement pass on demand.
func (s *Service) Relink(ctx context.Context) (int64, error) {
	return s.relinker.Run(ctx)
}

// GetReceipt returns a staged delivery with its lines.
func (s *Service) GetReceipt(ctx context.Context, docID id.ID) (*ReceiptDocument, error) {
	doc, err := s.repo.GetReceipt(ctx, docID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.GetReceiptItems(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("load staged items: %w", err)
	}
	doc.Items = items
	return doc, nil
}

// ListProducts returns staged products.
func (s *Service) ListProducts(ctx context.Context, filter domain.ListFilter) (domain.ListResult[Product], error) {
	return s.repo.ListProducts(ctx, filter.Normalize())
}

func newStagedProduct(line Line, categoryID id.ID) Product {
	name := line.Name
	if name == "" {
		name = DefaultProductName
	}
	return Product{
		ID:          id.New(),
		Code:        line.Code,
		Name:        name,
		CategoryID:  categoryID,
		Size:        line.Size,
		UnitPrice:   line.UnitPrice,
		Description: line.Description,
		CreatedAt:   time.Now().UTC(),
	}
}

// apply merges operator corrections into a catalog product.
func (a ProductApproval) apply(sp Product, categoryID id.ID) product.Product {
	p := product.Product{
		Code:          sp.Code,
		Name:          sp.Name,
		CategoryID:    categoryID,
		Size:          sp.Size,
		UnitPrice:     sp.UnitPrice,
		PeriodDays:    sp.PeriodDays,
		MinQtyOnStock: sp.MinQtyOnStock,
		Description:   sp.Description,
	}
	if a.Name != nil {
		p.Name = *a.Name
	}
	if a.Size != nil {
		p.Size = *a.Size
	}
	if a.UnitPrice != nil {
		p.UnitPrice = *a.UnitPrice
	}
	if a.PeriodDays != nil {
		p.PeriodDays = *a.PeriodDays
	}
	if a.MinQtyOnStock != nil {
		p.MinQtyOnStock = *a.MinQtyOnStock
	}
	if a.Description != nil {
		p.Description = *a.Description
	}
	return p
}

func logRejectedLines(ctx context.Context, rejected []RejectedLine) {
	for _, r := range rejected {
		logger.Warn(ctx, "ingestion line rejected",
			"line", r.Line,
			"code", r.Code,
			"field", r.Field,
			"reason", r.Reason,
		)
	}
}

func lineCodes(lines []Line) []string {
	codes := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.Code]; ok {
			continue
		}
		seen[l.Code] = struct{}{}
		codes = append(codes, l.Code)
	}
	return codes
}

func containsItem(items []ReceiptItem, itemID id.ID) bool {
	for _, it := range items {
		if it.ID == itemID {
			return true
		}
	}
	return false
}
