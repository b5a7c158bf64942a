// internal/services/discount_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type DiscountService struct {
	db *gorm.DB
}

type DiscountRequest struct {
	Name       string          `json:"name" validate:"required,max=255"`
	Percentage decimal.Decimal `json:"percentage" validate:"percentage"`
	IsActive   bool            `json:"is_active"`
	StartDate  time.Time       `json:"start_date" validate:"required"`
	EndDate    time.Time       `json:"end_date" validate:"required"`
}

func NewDiscountService(db *gorm.DB) *DiscountService {
	return &DiscountService{db: db}
}

// ResolveActive returns the highest-percentage discount whose window contains
// now, or nil when none applies.
func (s *DiscountService) ResolveActive(ctx context.Context, now time.Time) (*models.Discount, error) {
	now = now.UTC()
	var discount models.Discount
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND start_date <= ? AND end_date >= ?", true, now, now).
		Order("percentage DESC").
		First(&discount).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve discount: %w", err)
	}
	return &discount, nil
}

// ResolveActiveOrNone logs lookup failures and prices without a discount.
func (s *DiscountService) ResolveActiveOrNone(ctx context.Context, now time.Time) *models.Discount {
	discount, err := s.ResolveActive(ctx, now)
	if err != nil {
		logrus.WithError(err).Warn("Discount lookup failed, pricing without discount")
		return nil
	}
	return discount
}

func (s *DiscountService) List(ctx context.Context, params utils.PaginationParams) ([]models.Discount, int64, error) {
	var discounts []models.Discount
	var total int64

	query := s.db.WithContext(ctx).Model(&models.Discount{})
	if params.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+params.Search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count discounts: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "name", "percentage", "start_date", "end_date"})
	query = utils.ApplyPagination(query, params)
	if err := query.Find(&discounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list discounts: %w", err)
	}
	return discounts, total, nil
}

func (s *DiscountService) Get(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	if err := s.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &discount, nil
}

func (s *DiscountService) Create(ctx context.Context, req *DiscountRequest) (*models.Discount, error) {
	if err := validateDiscount(req); err != nil {
		return nil, err
	}

	discount := &models.Discount{
		Name:       req.Name,
		Percentage: req.Percentage,
		IsActive:   req.IsActive,
		StartDate:  req.StartDate.UTC(),
		EndDate:    req.EndDate.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(discount).Error; err != nil {
		return nil, fmt.Errorf("failed to create discount: %w", err)
	}
	return discount, nil
}

func (s *DiscountService) Update(ctx context.Context, id uuid.UUID, req *DiscountRequest) (*models.Discount, error) {
	if err := validateDiscount(req); err != nil {
		return nil, err
	}

	discount, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":       req.Name,
		"percentage": req.Percentage,
		"is_active":  req.IsActive,
		"start_date": req.StartDate.UTC(),
		"end_date":   req.EndDate.UTC(),
	}
	if err := s.db.WithContext(ctx).Model(discount).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update discount: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *DiscountService) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete discount: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func validateDiscount(req *DiscountRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if !req.EndDate.After(req.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrInvalidInput)
	}
	return nil
}
