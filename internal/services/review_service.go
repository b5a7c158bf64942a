// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// ReviewService handles product reviews and customer questions.
type ReviewService struct {
	db       *gorm.DB
	products *ProductService
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ModerateReviewRequest struct {
	IsApproved bool `json:"is_approved"`
}

type AskQuestionRequest struct {
	AuthorName string `json:"author_name" validate:"required,min=2,max=100"`
	Body       string `json:"body" validate:"required,min=5,max=2000"`
}

type AnswerQuestionRequest struct {
	Answer      string `json:"answer" validate:"required,max=4000"`
	IsPublished bool   `json:"is_published"`
}

type ModerationFilters struct {
	utils.PaginationParams
	ProductID *uuid.UUID
	Pending   bool
}

func NewReviewService(db *gorm.DB, products *ProductService) *ReviewService {
	return &ReviewService{db: db, products: products}
}

// ProductReviews lists approved reviews, newest first.
func (s *ReviewService) ProductReviews(ctx context.Context, productID uuid.UUID, params utils.PaginationParams) ([]models.Review, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("product_id = ? AND is_approved = ?", productID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	if err := utils.ApplyPagination(query.Preload("User").Order("created_at DESC"), params).
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, total, nil
}

// CreateReview stores a review awaiting moderation. A user reviews a product
// once; a second submission replaces the first and sends it back to moderation.
func (s *ReviewService) CreateReview(ctx context.Context, userID, productID uuid.UUID, req *CreateReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, productID, false); err != nil {
		return nil, err
	}

	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		wasApproved := review.IsApproved

		review.UserID = userID
		review.ProductID = productID
		review.Rating = req.Rating
		review.Comment = strings.TrimSpace(req.Comment)
		review.IsApproved = false
		if err := tx.Save(&review).Error; err != nil {
			return fmt.Errorf("failed to save review: %w", err)
		}
		if wasApproved {
			return s.products.RefreshRating(tx, productID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, filters ModerationFilters) ([]models.Review, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{})
	if filters.ProductID != nil {
		query = query.Where("product_id = ?", *filters.ProductID)
	}
	if filters.Pending {
		query = query.Where("is_approved = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, filters.PaginationParams, []string{"created_at", "rating"})
	query = utils.ApplyPagination(query, filters.PaginationParams)

	var reviews []models.Review
	if err := query.Preload("User").Preload("Product").Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	return reviews, total, nil
}

// ModerateReview approves or hides a review and refreshes the product rating.
func (s *ReviewService) ModerateReview(ctx context.Context, id uuid.UUID, req *ModerateReviewRequest) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			return notFoundOr(err)
		}
		if err := tx.Model(&review).Update("is_approved", req.IsApproved).Error; err != nil {
			return fmt.Errorf("failed to moderate review: %w", err)
		}
		review.IsApproved = req.IsApproved
		return s.products.RefreshRating(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			return notFoundOr(err)
		}
		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return s.products.RefreshRating(tx, review.ProductID)
	})
}

// ProductQuestions lists answered, published questions.
func (s *ReviewService) ProductQuestions(ctx context.Context, productID uuid.UUID) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.WithContext(ctx).
		Where("product_id = ? AND is_published = ?", productID, true).
		Order("answered_at DESC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}
	return questions, nil
}

func (s *ReviewService) AskQuestion(ctx context.Context, userID *uuid.UUID, productID uuid.UUID, req *AskQuestionRequest) (*models.Question, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.products.Get(ctx, productID, false); err != nil {
		return nil, err
	}

	question := &models.Question{
		ProductID:  productID,
		UserID:     userID,
		AuthorName: strings.TrimSpace(req.AuthorName),
		Body:       strings.TrimSpace(req.Body),
	}
	if err := s.db.WithContext(ctx).Create(question).Error; err != nil {
		return nil, fmt.Errorf("failed to save question: %w", err)
	}
	return question, nil
}

func (s *ReviewService) ListQuestions(ctx context.Context, filters ModerationFilters) ([]models.Question, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Question{})
	if filters.ProductID != nil {
		query = query.Where("product_id = ?", *filters.ProductID)
	}
	if filters.Pending {
		query = query.Where("answered_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = utils.ApplySort(query, filters.PaginationParams, []string{"created_at", "answered_at"})
	query = utils.ApplyPagination(query, filters.PaginationParams)

	var questions []models.Question
	if err := query.Preload("Product").Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch questions: %w", err)
	}
	return questions, total, nil
}

func (s *ReviewService) AnswerQuestion(ctx context.Context, id uuid.UUID, req *AnswerQuestionRequest) (*models.Question, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&question).Updates(map[string]interface{}{
		"answer":       strings.TrimSpace(req.Answer),
		"answered_at":  now,
		"is_published": req.IsPublished,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to answer question: %w", err)
	}

	question.Answer = strings.TrimSpace(req.Answer)
	question.AnsweredAt = &now
	question.IsPublished = req.IsPublished
	return &question, nil
}

func (s *ReviewService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&models.Question{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete question: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
