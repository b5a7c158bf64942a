// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// PaymentTransaction records a card payment attempt for an order.
type PaymentTransaction struct {
	BaseModel
	OrderID          uuid.UUID         `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID           *uuid.UUID        `json:"user_id" gorm:"type:uuid;index"`
	Amount           decimal.Decimal   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency         string            `json:"currency" gorm:"size:3;not null"`
	Provider         string            `json:"provider" gorm:"size:20;not null"`
	PaymentReference string            `json:"payment_reference" gorm:"size:255;index"`
	ClientSecret     string            `json:"-" gorm:"size:255"`
	Status           TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	ProcessedAt      *time.Time        `json:"processed_at"`
	FailureReason    string            `json:"failure_reason,omitempty" gorm:"type:text"`

	// Relationships
	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}
