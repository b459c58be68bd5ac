// Package catalog_repo provides PostgreSQL implementations of the catalog repositories:
// products with their categories, and the name dictionaries.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/infrastructure/storage/postgres"
)

const (
	productsTable   = "products"
	categoriesTable = "product_categories"
)

var (
	productColumns  = postgres.Columns[product.Product]()
	categoryColumns = postgres.Columns[product.Category]()
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm *postgres.TxManager
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{txm: txm}
}

var _ product.Repository = (*ProductRepo)(nil)

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().Select(productColumns...).From(productsTable)
}

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.txm.Insert(ctx, productsTable, productColumns, p)
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := postgres.Builder().
		Update(productsTable).
		SetMap(map[string]any{
			"code":             p.Code,
			"name":             p.Name,
			"category_id":      p.CategoryID,
			"size":             p.Size,
			"unit_price":       p.UnitPrice,
			"period_days":      p.PeriodDays,
			"min_qty_on_stock": p.MinQtyOnStock,
			"description":      p.Description,
		}).
		Where(squirrel.Eq{"id": p.ID})

	n, err := r.txm.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	n, err := r.txm.Exec(ctx, postgres.Builder().Delete(productsTable).Where(squirrel.Eq{"id": productID}))
	if err != nil {
		return postgres.ForEntity(err, "product")
	}
	if n == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	var p product.Product
	if err := r.txm.Get(ctx, &p, r.baseSelect().Where(squirrel.Eq{"id": productID}), "product", productID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	var p product.Product
	if err := r.txm.Get(ctx, &p, r.baseSelect().Where(squirrel.Eq{"code": code}), "product", code); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) ListByCodes(ctx context.Context, codes []string) (map[string]product.Product, error) {
	out := make(map[string]product.Product, len(codes))
	if len(codes) == 0 {
		return out, nil
	}
	var items []product.Product
	if err := r.txm.Select(ctx, &items, r.baseSelect().Where(squirrel.Eq{"code": codes})); err != nil {
		return nil, fmt.Errorf("list products by code: %w", err)
	}
	for _, p := range items {
		out[p.Code] = p
	}
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (domain.ListResult[product.Product], error) {
	result := domain.ListResult[product.Product]{Limit: filter.Limit, Offset: filter.Offset}

	q := r.baseSelect()
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
		})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}

	total, err := r.txm.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = postgres.Page(q.OrderBy("code"), filter.Limit, filter.Offset)
	if err := r.txm.Select(ctx, &result.Items, q); err != nil {
		return result, fmt.Errorf("list products: %w", err)
	}
	return result, nil
}

// IsReferenced checks every table that can point at a product.
func (r *ProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	const sql = `SELECT
		EXISTS (SELECT 1 FROM warehouse_stock WHERE product_id = $1)
		OR EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)
		OR EXISTS (SELECT 1 FROM issue_items WHERE product_id = $1)
		OR EXISTS (SELECT 1 FROM receipt_items WHERE product_id = $1)
		OR EXISTS (SELECT 1 FROM pending_receipt_items WHERE product_id = $1)`

	var referenced bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, productID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("check product references: %w", err)
	}
	return referenced, nil
}

func (r *ProductRepo) CreateCategory(ctx context.Context, c *product.Category) error {
	return r.txm.Insert(ctx, categoriesTable, categoryColumns, c)
}

func (r *ProductRepo) GetCategory(ctx context.Context, categoryID id.ID) (*product.Category, error) {
	var c product.Category
	q := postgres.Builder().Select(categoryColumns...).From(categoriesTable).Where(squirrel.Eq{"id": categoryID})
	if err := r.txm.Get(ctx, &c, q, "product_category", categoryID); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ProductRepo) FindCategory(ctx context.Context, name string, categoryType product.CategoryType) (*product.Category, error) {
	var c product.Category
	q := postgres.Builder().Select(categoryColumns...).From(categoriesTable).
		Where(squirrel.Eq{"name": name, "type": categoryType})
	found, err := r.txm.Find(ctx, &c, q)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

func (r *ProductRepo) ListCategories(ctx context.Context) ([]product.Category, error) {
	var out []product.Category
	q := postgres.Builder().Select(categoryColumns...).From(categoriesTable).OrderBy("type", "name")
	if err := r.txm.Select(ctx, &out, q); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}
