// internal/services/shipping_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type ShippingService struct {
	db *gorm.DB
}

type ShippingSettingsRequest struct {
	ShippingCost          decimal.Decimal  `json:"shipping_cost" validate:"money"`
	FreeShippingThreshold *decimal.Decimal `json:"free_shipping_threshold" validate:"omitempty,money"`
	IsActive              bool             `json:"is_active"`
}

func NewShippingService(db *gorm.DB) *ShippingService {
	return &ShippingService{db: db}
}

// Settings returns the singleton row, or nil when it has never been created.
func (s *ShippingService) Settings(ctx context.Context) (*models.ShippingSettings, error) {
	var settings models.ShippingSettings
	err := s.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load shipping settings: %w", err)
	}
	return &settings, nil
}

func (s *ShippingService) Update(ctx context.Context, req *ShippingSettingsRequest) (*models.ShippingSettings, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &models.ShippingSettings{}
	}

	settings.ShippingCost = req.ShippingCost
	settings.IsActive = req.IsActive
	settings.FreeShippingThreshold = decimal.NullDecimal{}
	if req.FreeShippingThreshold != nil {
		settings.FreeShippingThreshold = decimal.NewNullDecimal(*req.FreeShippingThreshold)
	}

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to save shipping settings: %w", err)
	}
	return settings, nil
}
