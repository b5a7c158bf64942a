// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// PaymentGateway is the part of the card processor the shop uses.
type PaymentGateway interface {
	CreateIntent(amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error)
	GetIntent(id string) (*stripe.PaymentIntent, error)
	Refund(intentID string, amount int64) error
}

type stripeGateway struct{}

func (stripeGateway) CreateIntent(amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return paymentintent.New(params)
}

func (stripeGateway) GetIntent(id string) (*stripe.PaymentIntent, error) {
	return paymentintent.Get(id, nil)
}

func (stripeGateway) Refund(intentID string, amount int64) error {
	_, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amount),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	})
	return err
}

type PaymentService struct {
	db      *gorm.DB
	config  *config.Config
	orders  *OrderService
	gateway PaymentGateway
}

type CreatePaymentIntentRequest struct {
	OrderID       uuid.UUID `json:"order_id" validate:"required"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
}

type PaymentIntentResponse struct {
	ClientSecret   string          `json:"client_secret"`
	PaymentID      string          `json:"payment_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PublishableKey string          `json:"publishable_key"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type RefundRequest struct {
	TransactionID uuid.UUID        `json:"transaction_id" validate:"required"`
	Amount        *decimal.Decimal `json:"amount,omitempty" validate:"omitempty,money"`
	Reason        string           `json:"reason" validate:"required,max=500"`
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, orders *OrderService) *PaymentService {
	s := &PaymentService{
		db:     db,
		config: cfg,
		orders: orders,
	}
	if cfg.Payment.StripeSecretKey != "" {
		stripe.Key = cfg.Payment.StripeSecretKey
		s.gateway = stripeGateway{}
	}
	return s
}

// WithGateway replaces the Stripe client.
func (s *PaymentService) WithGateway(g PaymentGateway) *PaymentService {
	s.gateway = g
	return s
}

// toMinorUnits converts an amount to the processor's smallest currency unit.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateIntent opens a card payment for a credit card order. Guests identify
// the order with the email it was placed under.
func (s *PaymentService) CreateIntent(ctx context.Context, userID *uuid.UUID, req *CreatePaymentIntentRequest) (*PaymentIntentResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	order, err := s.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !s.canPay(order, userID, req.CustomerEmail) {
		return nil, ErrNotFound
	}
	if order.PaymentMethod != models.PaymentMethodCreditCard || order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order is not payable by card", ErrInvalidInput)
	}

	currency := strings.ToLower(s.config.Payment.Currency)
	pi, err := s.gateway.CreateIntent(toMinorUnits(order.Total), currency, map[string]string{
		"order_id": order.ID.String(),
		"email":    order.CustomerEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	transaction := &models.PaymentTransaction{
		OrderID:          order.ID,
		UserID:           order.UserID,
		Amount:           order.Total,
		Currency:         currency,
		Provider:         "stripe",
		PaymentReference: pi.ID,
		ClientSecret:     pi.ClientSecret,
		Status:           models.TransactionStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if err := s.orders.AttachPaymentReference(ctx, order.ID, pi.ID); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Failed to store payment reference on order")
	}

	return &PaymentIntentResponse{
		ClientSecret:   pi.ClientSecret,
		PaymentID:      pi.ID,
		Status:         string(pi.Status),
		Amount:         order.Total,
		Currency:       currency,
		PublishableKey: s.config.Payment.StripePublishableKey,
	}, nil
}

// Confirm syncs the recorded transaction with the processor's view of the intent.
func (s *PaymentService) Confirm(ctx context.Context, req *ConfirmPaymentRequest) (*models.PaymentTransaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	var transaction models.PaymentTransaction
	if err := s.db.WithContext(ctx).Where("payment_reference = ?", req.PaymentIntentID).
		First(&transaction).Error; err != nil {
		return nil, notFoundOr(err)
	}

	pi, err := s.gateway.GetIntent(req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		now := time.Now().UTC()
		transaction.Status = models.TransactionStatusCompleted
		transaction.ProcessedAt = &now
		transaction.FailureReason = ""
	case stripe.PaymentIntentStatusCanceled:
		transaction.Status = models.TransactionStatusFailed
		transaction.FailureReason = "canceled"
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		transaction.Status = models.TransactionStatusFailed
		if pi.LastPaymentError != nil {
			transaction.FailureReason = pi.LastPaymentError.Msg
		}
	default:
		transaction.Status = models.TransactionStatusPending
	}

	if err := s.db.WithContext(ctx).Save(&transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return &transaction, nil
}

func (s *PaymentService) Refund(ctx context.Context, req *RefundRequest) (*models.PaymentTransaction, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}

	var transaction models.PaymentTransaction
	if err := s.db.WithContext(ctx).First(&transaction, "id = ?", req.TransactionID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if transaction.Status != models.TransactionStatusCompleted {
		return nil, fmt.Errorf("%w: only completed payments can be refunded", ErrInvalidInput)
	}

	amount := transaction.Amount
	if req.Amount != nil && req.Amount.IsPositive() && req.Amount.LessThan(amount) {
		amount = *req.Amount
	}
	if err := s.gateway.Refund(transaction.PaymentReference, toMinorUnits(amount)); err != nil {
		return nil, fmt.Errorf("failed to process refund: %w", err)
	}

	transaction.Status = models.TransactionStatusRefunded
	transaction.FailureReason = req.Reason
	if err := s.db.WithContext(ctx).Save(&transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}
	return &transaction, nil
}

func (s *PaymentService) ForOrder(ctx context.Context, orderID uuid.UUID) ([]models.PaymentTransaction, error) {
	var transactions []models.PaymentTransaction
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}
	return transactions, nil
}

func (s *PaymentService) canPay(order *models.Order, userID *uuid.UUID, email string) bool {
	if order.UserID != nil {
		return userID != nil && *userID == *order.UserID
	}
	return email != "" && strings.EqualFold(email, order.CustomerEmail)
}
