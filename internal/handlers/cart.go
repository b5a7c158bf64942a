// internal/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "cart")
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.AddToCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.Add(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}

// PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.UpdateQuantity(c.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		respondError(c, err, "cart")
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}

// DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "productId")
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err, "cart")
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.cartService.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, err, "cart")
		return
	}

	utils.MessageResponse(c, i18n.KeyCartCleared)
}

// POST /cart/merge
func (h *CartHandler) MergeGuestCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.GuestCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.Merge(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "cart")
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}

// POST /cart/guest/totals
func (h *CartHandler) GuestTotals(c *gin.Context) {
	var req services.GuestCartRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.GuestTotals(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "cart")
		return
	}

	utils.SuccessResponse(c, gin.H{"cart": cart})
}
