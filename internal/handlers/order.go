// internal/handlers/order.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrderHandler struct {
	orderService  *services.OrderService
	reportService *services.ReportService
}

func NewOrderHandler(orderService *services.OrderService, reportService *services.ReportService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		reportService: reportService,
	}
}

// POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), utils.GetOptionalUserID(c), &req)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.CreatedResponse(c, gin.H{"order": order})
}

// GET /orders
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderService.ListForUser(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, params))
}

// GET /orders/:id
func (h *OrderHandler) GetMyOrder(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /orders/:id/invoice
func (h *OrderHandler) GetMyInvoice(c *gin.Context) {
	order, ok := h.ownOrder(c)
	if !ok {
		return
	}
	h.sendInvoice(c, order)
}

func (h *OrderHandler) ownOrder(c *gin.Context) (*models.Order, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return nil, false
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return nil, false
	}

	order, err := h.orderService.GetForUser(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "order")
		return nil, false
	}
	return order, true
}

func (h *OrderHandler) sendInvoice(c *gin.Context, order *models.Order) {
	pdf, err := h.reportService.Invoice(c.Request.Context(), order)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, order.ID.String()[:8]))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func orderFiltersFromQuery(c *gin.Context) services.OrderFilters {
	return services.OrderFilters{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           c.Query("status"),
		PaymentStatus:    c.Query("payment_status"),
		From:             queryDate(c, "from"),
		To:               queryDateEnd(c, "to"),
	}
}

// GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	filters := orderFiltersFromQuery(c)

	orders, total, err := h.orderService.List(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(orders, total, filters.PaginationParams))
}

// GET /admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /admin/orders/:id/invoice
func (h *OrderHandler) AdminGetInvoice(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "order")
		return
	}
	h.sendInvoice(c, order)
}

// PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ID = id
	h.updateStatus(c, &req)
}

// PUT /admin/orders/status with the order id in the body.
func (h *OrderHandler) UpdateOrderStatusByBody(c *gin.Context) {
	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ID == uuid.Nil {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "id"), nil)
		return
	}
	h.updateStatus(c, &req)
}

func (h *OrderHandler) updateStatus(c *gin.Context, req *services.UpdateOrderStatusRequest) {
	order, err := h.orderService.UpdateStatus(c.Request.Context(), req.ID, req.Status)
	if err != nil {
		respondError(c, err, "order")
		return
	}

	utils.SuccessResponse(c, gin.H{"order": order})
}

// GET /admin/orders/export
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reportService.ExportOrders(c.Request.Context(), h.orderService, orderFiltersFromQuery(c), &buf); err != nil {
		respondError(c, err, "order")
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
