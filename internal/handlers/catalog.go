// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CatalogHandler struct {
	categoryService   *services.CategoryService
	collectionService *services.CollectionService
}

func NewCatalogHandler(categoryService *services.CategoryService, collectionService *services.CollectionService) *CatalogHandler {
	return &CatalogHandler{
		categoryService:   categoryService,
		collectionService: collectionService,
	}
}

// GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.categoryService.Tree(c.Request.Context())
	if err != nil {
		respondError(c, err, "category")
		return
	}

	utils.SuccessResponse(c, gin.H{"categories": categories})
}

// GET /categories/:slug
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "category")
		return
	}

	utils.SuccessResponse(c, gin.H{"category": category})
}

// POST /admin/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Create(c.Request.Context(), &req)
	if err != nil {
		if isConflict(err) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCategorySlugTaken))
			return
		}
		respondError(c, err, "category")
		return
	}

	utils.CreatedResponse(c, gin.H{"category": category})
}

// PUT /admin/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if isConflict(err) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCategorySlugTaken))
			return
		}
		respondError(c, err, "category")
		return
	}

	utils.SuccessResponse(c, gin.H{"category": category})
}

// DELETE /admin/categories/:id
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "category")
		return
	}

	utils.MessageResponse(c, i18n.KeyCategoryDeleted)
}

// GET /collections
func (h *CatalogHandler) GetCollections(c *gin.Context) {
	collections, err := h.collectionService.List(c.Request.Context(), false)
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.SuccessResponse(c, gin.H{"collections": collections})
}

// GET /collections/:slug
func (h *CatalogHandler) GetCollection(c *gin.Context) {
	collection, err := h.collectionService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.SuccessResponse(c, gin.H{"collection": collection})
}

// GET /admin/collections
func (h *CatalogHandler) AdminGetCollections(c *gin.Context) {
	collections, err := h.collectionService.List(c.Request.Context(), true)
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.SuccessResponse(c, gin.H{"collections": collections})
}

// GET /admin/collections/:id
func (h *CatalogHandler) AdminGetCollection(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	collection, err := h.collectionService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.SuccessResponse(c, gin.H{"collection": collection})
}

// POST /admin/collections
func (h *CatalogHandler) CreateCollection(c *gin.Context) {
	var req services.CollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	collection, err := h.collectionService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.CreatedResponse(c, gin.H{"collection": collection})
}

// PUT /admin/collections/:id
func (h *CatalogHandler) UpdateCollection(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CollectionRequest
	if !bindJSON(c, &req) {
		return
	}

	collection, err := h.collectionService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.SuccessResponse(c, gin.H{"collection": collection})
}

// DELETE /admin/collections/:id
func (h *CatalogHandler) DeleteCollection(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.collectionService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "collection")
		return
	}

	utils.MessageResponse(c, i18n.KeyCollectionDeleted)
}
