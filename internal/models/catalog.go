// internal/models/catalog.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name          string              `json:"name" gorm:"size:255;not null;index"`
	Description   string              `json:"description" gorm:"type:text"`
	Price         decimal.Decimal     `json:"price" gorm:"type:decimal(10,2);not null"`
	SalePrice     decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(10,2)"`
	Stock         int                 `json:"stock" gorm:"not null;default:0"`
	FreeShipping  bool                `json:"free_shipping" gorm:"not null"`
	Rating        float64             `json:"rating" gorm:"type:decimal(3,2);default:0"`
	FavoriteCount int64               `json:"favorite_count" gorm:"default:0"`
	ViewCount     int64               `json:"view_count" gorm:"default:0"`
	IsActive      bool                `json:"is_active" gorm:"not null;index"`
	Color         string              `json:"color,omitempty" gorm:"size:7"`
	CategoryID    *uuid.UUID          `json:"category_id" gorm:"type:uuid;index"`

	// Relationships
	Category *Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Options  []ProductOption  `json:"options,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Features []ProductFeature `json:"features,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Media    []ProductMedia   `json:"media,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// EffectivePrice is the sale price when one is set below the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.LessThan(p.Price) {
		return p.SalePrice.Decimal
	}
	return p.Price
}

type ProductOption struct {
	BaseModel
	ProductID       uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Name            string          `json:"name" gorm:"size:100;not null"`
	AdditionalPrice decimal.Decimal `json:"additional_price" gorm:"type:decimal(10,2);default:0"`
}

type ProductFeature struct {
	BaseModel
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
}

type ProductMedia struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	URL       string    `json:"url" gorm:"size:500;not null"`
	Kind      MediaType `json:"kind" gorm:"type:varchar(10);default:'image'"`
	Position  int       `json:"position" gorm:"default:0"`
}

type Category struct {
	BaseModel
	Name     string     `json:"name" gorm:"size:100;not null"`
	Slug     string     `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	ParentID *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`

	// Relationships
	Parent   *Category  `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

type Collection struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url,omitempty" gorm:"size:500"`
	IsActive    bool   `json:"is_active" gorm:"not null"`

	// Relationships
	Products []Product `json:"products,omitempty" gorm:"many2many:collection_products;"`
}

type Favorite struct {
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
