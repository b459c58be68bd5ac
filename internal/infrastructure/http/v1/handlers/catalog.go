package handlers

import (
	"github.com/gin-gonic/gin"

	"szafa/internal/core/apperror"
	"szafa/internal/domain/catalogs/dictionary"
	"szafa/internal/domain/catalogs/product"
	"szafa/internal/infrastructure/http/v1/dto"
)

// CatalogHandler serves products, categories and dictionaries.
type CatalogHandler struct {
	*BaseHandler
	products     *product.Service
	dictionaries *dictionary.Service
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(base *BaseHandler, products *product.Service, dictionaries *dictionary.Service) *CatalogHandler {
	return &CatalogHandler{BaseHandler: base, products: products, dictionaries: dictionaries}
}

// CreateProduct handles POST /products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p := req.ToEntity()
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// GetProduct handles GET /products/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.products.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// UpdateProduct handles PUT /products/:id.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	ctx := c.Request.Context()
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(p)
	if err := h.products.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// DeleteProduct handles DELETE /products/:id.
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	productID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListProducts handles GET /products?search=&categoryId=&limit=&offset=.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	categoryID, ok := h.ParseIDQuery(c, "categoryId")
	if !ok {
		return
	}
	filter := product.ListFilter{ListFilter: h.ListFilter(c), CategoryID: categoryID}

	result, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// CreateCategory handles POST /categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	cat := req.ToEntity()
	if err := h.products.CreateCategory(c.Request.Context(), cat); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, cat)
}

// ListCategories handles GET /categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.products.ListCategories(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": cats})
}

func (h *CatalogHandler) dictionaryKind(c *gin.Context) (dictionary.Kind, bool) {
	kind := dictionary.Kind(c.Param("kind"))
	if !kind.Valid() {
		h.Error(c, apperror.NewNotFound("dictionary", c.Param("kind")))
		return "", false
	}
	return kind, true
}

// CreateDictionaryEntry handles POST /dictionaries/:kind.
func (h *CatalogHandler) CreateDictionaryEntry(c *gin.Context) {
	kind, ok := h.dictionaryKind(c)
	if !ok {
		return
	}
	var req dto.DictionaryEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	entry := req.ToEntity(kind)
	if err := h.dictionaries.Create(c.Request.Context(), entry); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry)
}

// ListDictionary handles GET /dictionaries/:kind.
func (h *CatalogHandler) ListDictionary(c *gin.Context) {
	kind, ok := h.dictionaryKind(c)
	if !ok {
		return
	}
	entries, err := h.dictionaries.List(c.Request.Context(), kind)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": entries})
}

// DeleteDictionaryEntry handles DELETE /dictionaries/:kind/:id.
func (h *CatalogHandler) DeleteDictionaryEntry(c *gin.Context) {
	kind, ok := h.dictionaryKind(c)
	if !ok {
		return
	}
	entryID, ok := h.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.dictionaries.Delete(c.Request.Context(), kind, entryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
