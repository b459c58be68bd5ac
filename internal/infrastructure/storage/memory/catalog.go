package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"szafa/internal/core/apperror"
	"szafa/internal/core/id"
	"szafa/internal/domain"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
)

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.products {
			if existing.Code == p.Code {
				return apperror.NewDuplicate("product", "code", p.Code)
			}
		}
		if _, ok := st.categories[p.CategoryID]; !ok {
			return apperror.NewValidation("category does not exist").WithDetail("field", "category_id")
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return apperror.NewNotFound("product", p.ID)
		}
		for _, existing := range st.products {
			if existing.Code == p.Code && existing.ID != p.ID {
				return apperror.NewDuplicate("product", "code", p.Code)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return apperror.NewNotFound("product", productID)
		}
		if dep := productDependency(st, productID); dep != "" {
			return apperror.NewProtected("product", dep)
		}
		delete(st.products, productID)
		return nil
	})
}

func productDependency(st *state, productID id.ID) string {
	for k := range st.balances {
		if k.productID == productID {
			return "warehouse_stock"
		}
	}
	for _, m := range st.movements {
		if m.ProductID == productID {
			return "stock_movements"
		}
	}
	for _, it := range st.issueItems {
		if it.ProductID == productID {
			return "issue_items"
		}
	}
	for _, it := range st.receiptItems {
		if it.ProductID == productID {
			return "receipt_items"
		}
	}
	for _, it := range st.pendingItems {
		if it.ProductID != nil && *it.ProductID == productID {
			return "pending_receipt_items"
		}
	}
	return ""
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	var (
		p  product.Product
		ok bool
	)
	r.s.read(func(st *state) { p, ok = st.products[productID] })
	if !ok {
		return nil, apperror.NewNotFound("product", productID)
	}
	return &p, nil
}

func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*product.Product, error) {
	var found *product.Product
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if p.Code == code {
				found = &p
				return
			}
		}
	})
	if found == nil {
		return nil, apperror.NewNotFound("product", code)
	}
	return found, nil
}

func (r *ProductRepo) ListByCodes(ctx context.Context, codes []string) (map[string]product.Product, error) {
	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	out := make(map[string]product.Product)
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if _, ok := want[p.Code]; ok {
				out[p.Code] = p
			}
		}
	})
	return out, nil
}

func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) (domain.ListResult[product.Product], error) {
	search := strings.ToLower(filter.Search)
	var items []product.Product
	r.s.read(func(st *state) {
		for _, p := range st.products {
			if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Code+" "+p.Name), search) {
				continue
			}
			items = append(items, p)
		}
	})
	slices.SortFunc(items, func(a, b product.Product) int { return cmp.Compare(a.Code, b.Code) })
	return domain.Page(items, filter.ListFilter), nil
}

func (r *ProductRepo) IsReferenced(ctx context.Context, productID id.ID) (bool, error) {
	var referenced bool
	r.s.read(func(st *state) { referenced = productDependency(st, productID) != "" })
	return referenced, nil
}

func (r *ProductRepo) CreateCategory(ctx context.Context, c *product.Category) error {
	return r.s.write(ctx, func(st *state) error {
		for _, existing := range st.categories {
			if existing.Name == c.Name && existing.Type == c.Type {
				return apperror.NewDuplicate("product_category", "name", c.Name)
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *ProductRepo) GetCategory(ctx context.Context, categoryID id.ID) (*product.Category, error) {
	var (
		c  product.Category
		ok bool
	)
	r.s.read(func(st *state) { c, ok = st.categories[categoryID] })
	if !ok {
		return nil, apperror.NewNotFound("product_category", categoryID)
	}
	return &c, nil
}

func (r *ProductRepo) FindCategory(ctx context.Context, name string, categoryType product.CategoryType) (*product.Category, error) {
	var found *product.Category
	r.s.read(func(st *state) {
		for _, c := range st.categories {
			if c.Name == name && c.Type == categoryType {
				found = &c
				return
			}
		}
	})
	return found, nil
}

func (r *ProductRepo) ListCategories(ctx context.Context) ([]product.Category, error) {
	var out []product.Category
	r.s.read(func(st *state) {
		for _, c := range st.categories {
			out = append(out, c)
		}
	})
	slices.SortFunc(out, func(a, b product.Category) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return out, nil
}

// DictionaryRepo implements dictionary.Repository.
type DictionaryRepo struct{ s *Store }

// Dictionaries returns the dictionary repository.
func (s *Store) Dictionaries() *DictionaryRepo { return &DictionaryRepo{s: s} }

func (r *DictionaryRepo) Create(ctx context.Context, e *dictionary.Entry) error {
	return r.s.write(ctx, func(st *state) error {
		table, ok := st.dict[e.Kind]
		if !ok {
			return apperror.NewValidation("unknown dictionary").WithDetail("kind", e.Kind)
		}
		for _, existing := range table {
			if existing.Name == e.Name {
				return apperror.NewDuplicate(string(e.Kind), "name", e.Name)
			}
		}
		table[e.ID] = *e
		return nil
	})
}

func (r *DictionaryRepo) GetByID(ctx context.Context, kind dictionary.Kind, entryID id.ID) (*dictionary.Entry, error) {
	var (
		e  dictionary.Entry
		ok bool
	)
	r.s.read(func(st *state) { e, ok = st.dict[kind][entryID] })
	if !ok {
		return nil, apperror.NewNotFound(string(kind), entryID)
	}
	return &e, nil
}

func (r *DictionaryRepo) FindByName(ctx context.Context, kind dictionary.Kind, name string) (*dictionary.Entry, error) {
	var found *dictionary.Entry
	r.s.read(func(st *state) {
		for _, e := range st.dict[kind] {
			if strings.EqualFold(e.Name, name) {
				found = &e
				return
			}
		}
	})
	return found, nil
}

func (r *DictionaryRepo) List(ctx context.Context, kind dictionary.Kind) ([]dictionary.Entry, error) {
	var out []dictionary.Entry
	r.s.read(func(st *state) {
		for _, e := range st.dict[kind] {
			out = append(out, e)
		}
	})
	slices.SortFunc(out, func(a, b dictionary.Entry) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *DictionaryRepo) Delete(ctx context.Context, kind dictionary.Kind, entryID id.ID) error {
	return r.s.write(ctx, func(st *state) error {
		if _, ok := st.dict[kind][entryID]; !ok {
			return apperror.NewNotFound(string(kind), entryID)
		}
		if dep := dictionaryDependency(st, kind, entryID); dep != "" {
			return apperror.NewProtected(string(kind), dep)
		}
		delete(st.dict[kind], entryID)
		for docID, d := range st.pendingDocs {
			if d.SupplierID != nil && *d.SupplierID == entryID {
				d.SupplierID = nil
			}
			if d.RecipientID != nil && *d.RecipientID == entryID {
				d.RecipientID = nil
			}
			st.pendingDocs[docID] = d
		}
		return nil
	})
}

func dictionaryDependency(st *state, kind dictionary.Kind, entryID id.ID) string {
	for _, e := range st.employees {
		switch {
		case kind == dictionary.KindCompany && e.CompanyID == entryID,
			kind == dictionary.KindDepartment && e.DepartmentID == entryID,
			kind == dictionary.KindPosition && e.PositionID == entryID:
			return "employees"
		}
	}
	for _, d := range st.receiptDocs {
		switch {
		case kind == dictionary.KindSupplier && d.SupplierID == entryID,
			kind == dictionary.KindCompany && d.RecipientID == entryID:
			return "receipt_documents"
		}
	}
	return ""
}
