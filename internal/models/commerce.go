// internal/models/commerce.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Discount struct {
	BaseModel
	Name       string          `json:"name" gorm:"size:255;not null"`
	Percentage decimal.Decimal `json:"percentage" gorm:"type:decimal(5,2);not null"`
	IsActive   bool            `json:"is_active" gorm:"not null;index"`
	StartDate  time.Time       `json:"start_date" gorm:"not null;index"`
	EndDate    time.Time       `json:"end_date" gorm:"not null;index"`
}

// ShippingSettings is a singleton row.
type ShippingSettings struct {
	BaseModel
	ShippingCost          decimal.Decimal     `json:"shipping_cost" gorm:"type:decimal(10,2);not null;default:0"`
	FreeShippingThreshold decimal.NullDecimal `json:"free_shipping_threshold" gorm:"type:decimal(10,2)"`
	IsActive              bool                `json:"is_active" gorm:"not null"`
}

type Cart struct {
	BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`

	// Relationships
	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID"`
}

// CartItem has no soft delete so the (cart_id, product_id) key stays usable
// as an upsert target.
type CartItem struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	CartID    uuid.UUID       `json:"cart_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type Order struct {
	BaseModel
	UserID           *uuid.UUID      `json:"user_id" gorm:"type:uuid;index"`
	CustomerName     string          `json:"customer_name" gorm:"size:255;not null"`
	CustomerEmail    string          `json:"customer_email" gorm:"size:255;not null;index"`
	Address          string          `json:"address" gorm:"type:text;not null"`
	Phone            string          `json:"phone,omitempty" gorm:"size:30"`
	Subtotal         decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DiscountAmount   decimal.Decimal `json:"discount_amount" gorm:"type:decimal(10,2);not null;default:0"`
	ShippingTotal    decimal.Decimal `json:"shipping_total" gorm:"type:decimal(10,2);not null;default:0"`
	Total            decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	Status           OrderStatus     `json:"status" gorm:"type:varchar(20);not null;index"`
	PaymentMethod    PaymentMethod   `json:"payment_method" gorm:"type:varchar(30);not null"`
	PaymentStatus    PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;index"`
	PaymentReference string          `json:"payment_reference,omitempty" gorm:"size:255"`

	// Relationships
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem snapshots the product at purchase time and is never updated.
type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// LineTotal is price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
