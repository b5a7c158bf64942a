// internal/models/content.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Review struct {
	BaseModel
	ProductID  uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
	IsApproved bool      `json:"is_approved" gorm:"not null;index"`

	// Relationships
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type Question struct {
	BaseModel
	ProductID   uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	UserID      *uuid.UUID `json:"user_id" gorm:"type:uuid;index"`
	AuthorName  string     `json:"author_name" gorm:"size:100;not null"`
	Body        string     `json:"body" gorm:"type:text;not null"`
	Answer      string     `json:"answer,omitempty" gorm:"type:text"`
	AnsweredAt  *time.Time `json:"answered_at"`
	IsPublished bool       `json:"is_published" gorm:"not null;index"`

	// Relationships
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

type HeroSlide struct {
	BaseModel
	Title     string    `json:"title" gorm:"size:255;not null"`
	Subtitle  string    `json:"subtitle" gorm:"size:500"`
	MediaURL  string    `json:"media_url" gorm:"size:500;not null"`
	MediaType MediaType `json:"media_type" gorm:"type:varchar(10);not null"`
	LinkURL   string    `json:"link_url,omitempty" gorm:"size:500"`
	Position  int       `json:"position" gorm:"default:0;index"`
	IsActive  bool      `json:"is_active" gorm:"not null"`
}

type STLModel struct {
	BaseModel
	Name          string          `json:"name" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	FileURL       string          `json:"file_url" gorm:"size:500;not null"`
	PreviewURL    string          `json:"preview_url,omitempty" gorm:"size:500"`
	DownloadCount int64           `json:"download_count" gorm:"default:0"`
	IsActive      bool            `json:"is_active" gorm:"not null;index"`
	CategoryID    *uuid.UUID      `json:"category_id" gorm:"type:uuid;index"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

type QRCode struct {
	BaseModel
	OwnerID         uuid.UUID `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	Content         string    `json:"content" gorm:"type:text;not null"`
	ForegroundColor string    `json:"foreground_color" gorm:"size:7;default:'#000000'"`
	BackgroundColor string    `json:"background_color" gorm:"size:7;default:'#FFFFFF'"`
	Size            int       `json:"size" gorm:"default:256"`
	RecoveryLevel   string    `json:"recovery_level" gorm:"size:10;default:'medium'"`
	DisableBorder   bool      `json:"disable_border" gorm:"not null"`
}
