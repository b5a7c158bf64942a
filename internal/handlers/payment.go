// internal/handlers/payment.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// POST /payments/intent
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req services.CreatePaymentIntentRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.paymentService.CreateIntent(c.Request.Context(), utils.GetOptionalUserID(c), &req)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.SuccessResponse(c, response)
}

// POST /payments/confirm
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	var req services.ConfirmPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	transaction, err := h.paymentService.Confirm(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "payment")
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction": transaction})
}

// POST /admin/payments/refund
func (h *PaymentHandler) ProcessRefund(c *gin.Context) {
	var req services.RefundRequest
	if !bindJSON(c, &req) {
		return
	}

	transaction, err := h.paymentService.Refund(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "payment")
		return
	}

	utils.SuccessResponse(c, gin.H{"transaction": transaction})
}

// GET /admin/orders/:id/payments
func (h *PaymentHandler) GetOrderPayments(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	transactions, err := h.paymentService.ForOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.SuccessResponse(c, gin.H{"transactions": transactions})
}
