// internal/services/order_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// OrderNotifier is told about new orders after they are committed.
type OrderNotifier interface {
	SendOrderConfirmation(order *models.Order) error
}

type OrderService struct {
	db       *gorm.DB
	cart     *CartService
	notifier OrderNotifier
}

type CheckoutItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

type CreateOrderRequest struct {
	CustomerName     string               `json:"customer_name" validate:"required,max=255"`
	CustomerEmail    string               `json:"customer_email" validate:"required,email"`
	Address          string               `json:"address" validate:"required,max=1000"`
	Phone            string               `json:"phone,omitempty" validate:"omitempty,max=30"`
	PaymentMethod    models.PaymentMethod `json:"payment_method" validate:"required,oneof=CREDIT_CARD CASH_ON_DELIVERY BANK_TRANSFER"`
	PaymentReference string               `json:"payment_reference,omitempty" validate:"omitempty,max=255"`
	Items            []CheckoutItem       `json:"items,omitempty" validate:"omitempty,max=100,dive"`
	ClientTotal      *decimal.Decimal     `json:"total,omitempty"`
}

type UpdateOrderStatusRequest struct {
	ID     uuid.UUID          `json:"id"`
	Status models.OrderStatus `json:"status" validate:"required,order_status"`
}

type OrderFilters struct {
	utils.PaginationParams
	Status        string
	PaymentStatus string
	From          *time.Time
	To            *time.Time // exclusive
}

func NewOrderService(db *gorm.DB, cart *CartService, notifier OrderNotifier) *OrderService {
	return &OrderService{
		db:       db,
		cart:     cart,
		notifier: notifier,
	}
}

// CreateOrder checks out the user's server cart, or the request's items for
// guests and for callers that send items explicitly.
func (s *OrderService) CreateOrder(ctx context.Context, userID *uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	fromCart := userID != nil && len(req.Items) == 0
	discount, settings := s.cart.Policy(ctx)

	var order *models.Order
	err := database.WithTransaction(db, func(tx *gorm.DB) error {
		var lines []PricedLine
		var err error
		if fromCart {
			lines, err = s.cartLines(tx, *userID)
		} else {
			lines, err = s.catalogLines(tx, req.Items)
		}
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		totals := ComputeTotals(lines, discount, settings)
		if req.ClientTotal != nil && !req.ClientTotal.Equal(totals.Total) {
			logrus.WithFields(logrus.Fields{
				"client_total": req.ClientTotal.String(),
				"server_total": totals.Total.String(),
				"email":        req.CustomerEmail,
			}).Warn("Client order total differs from server total")
		}
		order = newOrder(userID, req, lines, totals)

		for _, line := range lines {
			if err := decrementStock(tx, line); err != nil {
				return err
			}
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if fromCart {
			if err := s.removeOrderedLines(tx, *userID, lines); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"total":          order.Total.String(),
		"payment_method": order.PaymentMethod,
	}).Info("Order created")

	if s.notifier != nil {
		go func(o models.Order) {
			if err := s.notifier.SendOrderConfirmation(&o); err != nil {
				logrus.WithError(err).WithField("order_id", o.ID).Warn("Failed to send order confirmation")
			}
		}(*order)
	}

	return order, nil
}

func newOrder(userID *uuid.UUID, req *CreateOrderRequest, lines []PricedLine, totals Totals) *models.Order {
	order := &models.Order{
		UserID:           userID,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		Address:          req.Address,
		Phone:            req.Phone,
		Subtotal:         totals.Subtotal,
		DiscountAmount:   totals.DiscountAmount,
		ShippingTotal:    totals.ShippingCost,
		Total:            totals.Total,
		Status:           models.OrderStatusPreparing,
		PaymentMethod:    req.PaymentMethod,
		PaymentStatus:    models.PaymentStatusFor(req.PaymentMethod),
		PaymentReference: req.PaymentReference,
	}
	for _, line := range lines {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			Price:       line.Price,
		})
	}
	return order
}

// UpdateStatus moves an order along the status machine. Cancelling restores
// the stock the order took.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, next)
	}

	var order models.Order
	err := database.WithTransaction(s.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			return notFoundOr(err)
		}

		if order.Status == next {
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{"status": next, "updated_at": time.Now().UTC()})
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: order status changed concurrently", ErrConflict)
		}

		if next == models.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
					UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
					return fmt.Errorf("failed to restore stock: %w", err)
				}
			}
		}

		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &order, nil
}

// GetForUser hides orders owned by someone else behind ErrNotFound.
func (s *OrderService) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").
		First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	return s.list(ctx, OrderFilters{PaginationParams: params}, &userID)
}

func (s *OrderService) List(ctx context.Context, filters OrderFilters) ([]models.Order, int64, error) {
	return s.list(ctx, filters, nil)
}

func (s *OrderService) list(ctx context.Context, filters OrderFilters, userID *uuid.UUID) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filters.PaymentStatus)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("LOWER(customer_email) LIKE LOWER(?) OR LOWER(customer_name) LIKE LOWER(?)", like, like)
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", filters.From.UTC())
	}
	if filters.To != nil {
		query = query.Where("created_at < ?", filters.To.UTC())
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query = utils.ApplySort(query, filters.PaginationParams, []string{"created_at", "total", "status"})
	query = utils.ApplyPagination(query, filters.PaginationParams)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// AttachPaymentReference records the provider reference on an order.
func (s *OrderService) AttachPaymentReference(ctx context.Context, id uuid.UUID, reference string) error {
	result := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("payment_reference", reference)
	if result.Error != nil {
		return fmt.Errorf("failed to store payment reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// cartLines reads the user's cart through tx so the lines ordered are the
// lines removed.
func (s *OrderService) cartLines(tx *gorm.DB, userID uuid.UUID) ([]PricedLine, error) {
	items, err := s.cart.Lines(tx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]PricedLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil || !item.Product.IsActive {
			return nil, fmt.Errorf("%w: product %s is no longer available", ErrNotFound, item.ProductID)
		}
		lines = append(lines, toPricedLine(item))
	}
	return lines, nil
}

// catalogLines prices explicit checkout items from the catalog, merging
// repeated products into one line.
func (s *OrderService) catalogLines(db *gorm.DB, items []CheckoutItem) ([]PricedLine, error) {
	quantities := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.cart.activeProducts(db, order)
	if err != nil {
		return nil, err
	}

	lines := make([]PricedLine, 0, len(order))
	for _, id := range order {
		product, ok := products[id]
		if !ok {
			return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
		}
		lines = append(lines, PricedLine{
			ProductID:    product.ID,
			Name:         product.Name,
			Quantity:     quantities[id],
			Price:        product.Price,
			FreeShipping: product.FreeShipping,
		})
	}
	return lines, nil
}

func (s *OrderService) removeOrderedLines(tx *gorm.DB, userID uuid.UUID, lines []PricedLine) error {
	cart, err := s.cart.cartFor(tx, userID)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	if err := tx.Where("cart_id = ? AND product_id IN ?", cart.ID, ids).
		Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func decrementStock(tx *gorm.DB, line PricedLine) error {
	result := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to reserve stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, line.Name)
	}
	return nil
}
