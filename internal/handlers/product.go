// internal/handlers/product.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

func searchParamsFromQuery(c *gin.Context) services.ProductSearchParams {
	return services.ProductSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		CategoryID:       queryUUID(c, "category_id"),
		CategorySlug:     c.Query("category"),
		CollectionID:     queryUUID(c, "collection_id"),
		PriceMin:         queryDecimal(c, "price_min"),
		PriceMax:         queryDecimal(c, "price_max"),
		InStock:          queryBool(c, "in_stock"),
		FreeShipping:     queryBool(c, "free_shipping"),
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	h.search(c, searchParamsFromQuery(c))
}

// GET /admin/products
func (h *ProductHandler) AdminGetProducts(c *gin.Context) {
	params := searchParamsFromQuery(c)
	params.IncludeInactive = true
	h.search(c, params)
}

func (h *ProductHandler) search(c *gin.Context, params services.ProductSearchParams) {
	products, total, err := h.productService.Search(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	result := utils.CreatePaginationResult(products, total, params.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id, isStaff(c))
	if err != nil {
		respondError(c, err, "product")
		return
	}
	h.productService.RecordView(c.Request.Context(), id)

	utils.SuccessResponse(c, gin.H{"product": product})
}

// GET /products/:id/related
func (h *ProductHandler) GetRelatedProducts(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "4"))
	if err != nil || limit < 1 || limit > 20 {
		limit = 4
	}

	products, err := h.productService.Related(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// POST /products/:id/favorite
func (h *ProductHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	favorited, err := h.productService.ToggleFavorite(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.SuccessResponse(c, gin.H{"favorited": favorited})
}

// GET /favorites
func (h *ProductHandler) GetFavorites(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	products, err := h.productService.Favorites(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.SuccessResponse(c, gin.H{"products": products})
}

// GET /admin/products/:id
func (h *ProductHandler) AdminGetProduct(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), id, true)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.CreatedResponse(c, gin.H{"product": product})
}

// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "product")
		return
	}

	utils.MessageResponse(c, i18n.KeyProductDeleted)
}

// POST /admin/uploads/:category
func (h *ProductHandler) UploadMedia(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), nil)
		return
	}

	options := h.storageService.GetDefaultUploadOptions(c.Param("category"))
	results := make([]*services.UploadResult, 0, len(files))
	for _, file := range files {
		result, err := h.storageService.UploadFile(c.Request.Context(), file, options)
		if err != nil {
			respondError(c, err, "file")
			return
		}
		results = append(results, result)
	}

	utils.CreatedResponse(c, gin.H{"files": results})
}

// DELETE /admin/uploads/*key
func (h *ProductHandler) DeleteMedia(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "key"), nil)
		return
	}

	if err := h.storageService.DeleteFile(c.Request.Context(), key); err != nil {
		respondError(c, err, "file")
		return
	}

	utils.MessageResponse(c, i18n.KeyFileDeleted)
}
