package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	catalogmapper "github.com/Apurer/storekeeper/internal/domains/catalog/adapters/http/mapper"
	apierrors "github.com/Apurer/storekeeper/internal/shared/errors"
)

// Get /v1/owners/:ownerId/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.services.Catalog.ListCategories(c.Request.Context(), ownerID(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromCategories(categories))
}

// Post /v1/owners/:ownerId/categories
func (h *Handler) CreateCategory(c *gin.Context) {
	var payload catalogmapper.CategoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := h.services.Catalog.CreateCategory(c.Request.Context(), ownerID(c), catalogmapper.ToCreateCategoryInput(payload))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromCategory(category))
}

// Get /v1/owners/:ownerId/categories/:categoryId
func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	category, err := h.services.Catalog.GetCategory(c.Request.Context(), ownerID(c), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromCategory(category))
}

// Patch /v1/owners/:ownerId/categories/:categoryId
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	var payload catalogmapper.CategoryPatch
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	category, err := h.services.Catalog.UpdateCategory(c.Request.Context(), ownerID(c), id, catalogmapper.ToUpdateCategoryInput(payload))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromCategory(category))
}

// Delete /v1/owners/:ownerId/categories/:categoryId
// Fails with a conflict while the category still holds products
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteCategory(c.Request.Context(), ownerID(c), id); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/owners/:ownerId/products
// Lists products in catalog order, optionally narrowed by ?categoryId=
func (h *Handler) ListProducts(c *gin.Context) {
	var categoryID *int64
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			apierrors.Respond(c, apierrors.NewFieldProblem("categoryId", "must be a positive integer"))
			return
		}
		categoryID = &id
	}
	products, err := h.services.Catalog.ListProducts(c.Request.Context(), ownerID(c), categoryID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProducts(products))
}

// Post /v1/owners/:ownerId/products
func (h *Handler) CreateProduct(c *gin.Context) {
	var payload catalogmapper.ProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	product, err := h.services.Catalog.CreateProduct(c.Request.Context(), ownerID(c), catalogmapper.ToCreateProductInput(payload))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, catalogmapper.FromProduct(product))
}

// Get /v1/owners/:ownerId/products/:productId
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	product, err := h.services.Catalog.GetProduct(c.Request.Context(), ownerID(c), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProduct(product))
}

// Patch /v1/owners/:ownerId/products/:productId
// Applies every field of the body or none of them
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload catalogmapper.ProductPatch
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	edits, err := catalogmapper.ToEdits(payload)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	product, err := h.services.Catalog.UpdateProduct(c.Request.Context(), ownerID(c), id, edits...)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.FromProduct(product))
}

// Delete /v1/owners/:ownerId/products/:productId
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	if err := h.services.Catalog.DeleteProduct(c.Request.Context(), ownerID(c), id); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Post /v1/owners/:ownerId/products/:productId/adjustments
// Adds or removes stock; the quantity never drops below zero
func (h *Handler) AdjustProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}
	var payload catalogmapper.AdjustmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	quantity, err := h.services.Catalog.AdjustQuantity(c.Request.Context(), ownerID(c), id, payload.Delta)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalogmapper.Adjustment{ProductID: id, Quantity: quantity})
}
