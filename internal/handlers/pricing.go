// internal/handlers/pricing.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// PricingHandler serves discounts and shipping settings.
type PricingHandler struct {
	discountService *services.DiscountService
	shippingService *services.ShippingService
}

func NewPricingHandler(discountService *services.DiscountService, shippingService *services.ShippingService) *PricingHandler {
	return &PricingHandler{
		discountService: discountService,
		shippingService: shippingService,
	}
}

// GET /discounts/active
func (h *PricingHandler) GetActiveDiscount(c *gin.Context) {
	discount, err := h.discountService.ResolveActive(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err, "discount")
		return
	}

	utils.SuccessResponse(c, gin.H{"discount": discount})
}

// GET /shipping
func (h *PricingHandler) GetShippingSettings(c *gin.Context) {
	settings, err := h.shippingService.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err, "shipping")
		return
	}

	utils.SuccessResponse(c, gin.H{"shipping": settings})
}

// PUT /admin/shipping
func (h *PricingHandler) UpdateShippingSettings(c *gin.Context) {
	var req services.ShippingSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.shippingService.Update(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "shipping")
		return
	}

	utils.SuccessResponse(c, gin.H{"shipping": settings})
}

// GET /admin/discounts
func (h *PricingHandler) GetDiscounts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	discounts, total, err := h.discountService.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "discount")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(discounts, total, params))
}

// GET /admin/discounts/:id
func (h *PricingHandler) GetDiscount(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	discount, err := h.discountService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "discount")
		return
	}

	utils.SuccessResponse(c, gin.H{"discount": discount})
}

// POST /admin/discounts
func (h *PricingHandler) CreateDiscount(c *gin.Context) {
	var req services.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}

	discount, err := h.discountService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "discount")
		return
	}

	utils.CreatedResponse(c, gin.H{"discount": discount})
}

// PUT /admin/discounts/:id
func (h *PricingHandler) UpdateDiscount(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}

	discount, err := h.discountService.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "discount")
		return
	}

	utils.SuccessResponse(c, gin.H{"discount": discount})
}

// DELETE /admin/discounts/:id
func (h *PricingHandler) DeleteDiscount(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.discountService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "discount")
		return
	}

	utils.MessageResponse(c, i18n.KeyDiscountDeleted)
}
