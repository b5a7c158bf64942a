// internal/services/content_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// ContentService manages the storefront's editorial content: hero slides,
// the STL model marketplace and the contact page.
type ContentService struct {
	db       *gorm.DB
	notifier *NotificationService
}

type HeroSlideRequest struct {
	Title     string           `json:"title" validate:"required,max=255"`
	Subtitle  string           `json:"subtitle" validate:"max=500"`
	MediaURL  string           `json:"media_url" validate:"required,max=500"`
	MediaType models.MediaType `json:"media_type" validate:"required,oneof=image video"`
	LinkURL   string           `json:"link_url" validate:"omitempty,max=500"`
	Position  int              `json:"position" validate:"min=0"`
	IsActive  bool             `json:"is_active"`
}

type ReorderSlidesRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type STLModelRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"money"`
	FileURL     string          `json:"file_url" validate:"required,max=500"`
	PreviewURL  string          `json:"preview_url" validate:"omitempty,max=500"`
	IsActive    bool            `json:"is_active"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

type ContactSettingsRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=1000"`
	MapURL   string `json:"map_url" validate:"omitempty,url,max=1000"`
	WhatsApp string `json:"whatsapp" validate:"max=30"`
}

type ContactMessageRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=255"`
	Message string `json:"message" validate:"required,min=5,max=5000"`
}

func NewContentService(db *gorm.DB, notifier *NotificationService) *ContentService {
	return &ContentService{db: db, notifier: notifier}
}

// Hero slides

func (s *ContentService) HeroSlides(ctx context.Context, includeInactive bool) ([]models.HeroSlide, error) {
	query := s.db.WithContext(ctx).Order("position ASC, created_at ASC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var slides []models.HeroSlide
	if err := query.Find(&slides).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch hero slides: %w", err)
	}
	return slides, nil
}

func (s *ContentService) CreateHeroSlide(ctx context.Context, req *HeroSlideRequest) (*models.HeroSlide, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	slide := &models.HeroSlide{}
	applyHeroSlideRequest(slide, req)
	if err := s.db.WithContext(ctx).Create(slide).Error; err != nil {
		return nil, fmt.Errorf("failed to create hero slide: %w", err)
	}
	return slide, nil
}

func (s *ContentService) UpdateHeroSlide(ctx context.Context, id uuid.UUID, req *HeroSlideRequest) (*models.HeroSlide, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var slide models.HeroSlide
	if err := s.db.WithContext(ctx).First(&slide, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	applyHeroSlideRequest(&slide, req)
	if err := s.db.WithContext(ctx).Save(&slide).Error; err != nil {
		return nil, fmt.Errorf("failed to update hero slide: %w", err)
	}
	return &slide, nil
}

// ReorderHeroSlides assigns positions in the order the ids are given.
func (s *ContentService) ReorderHeroSlides(ctx context.Context, req *ReorderSlidesRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range req.IDs {
			if err := tx.Model(&models.HeroSlide{}).Where("id = ?", id).
				Update("position", position).Error; err != nil {
				return fmt.Errorf("failed to reorder hero slides: %w", err)
			}
		}
		return nil
	})
}

func (s *ContentService) DeleteHeroSlide(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.HeroSlide{}, id)
}

func applyHeroSlideRequest(slide *models.HeroSlide, req *HeroSlideRequest) {
	slide.Title = strings.TrimSpace(req.Title)
	slide.Subtitle = req.Subtitle
	slide.MediaURL = req.MediaURL
	slide.MediaType = req.MediaType
	slide.LinkURL = req.LinkURL
	slide.Position = req.Position
	slide.IsActive = req.IsActive
}

// STL models

type STLModelFilters struct {
	utils.PaginationParams
	CategoryID      *uuid.UUID
	IncludeInactive bool
}

func (s *ContentService) STLModels(ctx context.Context, filters STLModelFilters) ([]models.STLModel, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.STLModel{})
	if !filters.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Search != "" {
		searchTerm := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count models: %w", err)
	}

	query = utils.ApplySort(query, filters.PaginationParams, []string{"created_at", "name", "price", "download_count"})
	query = utils.ApplyPagination(query, filters.PaginationParams)

	var items []models.STLModel
	if err := query.Preload("Category").Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch models: %w", err)
	}
	return items, total, nil
}

func (s *ContentService) STLModel(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.STLModel, error) {
	var item models.STLModel
	if err := s.db.WithContext(ctx).Preload("Category").First(&item, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if !item.IsActive && !includeInactive {
		return nil, ErrNotFound
	}
	return &item, nil
}

// DownloadSTLModel counts the download and returns the file URL.
func (s *ContentService) DownloadSTLModel(ctx context.Context, id uuid.UUID) (string, error) {
	item, err := s.STLModel(ctx, id, false)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&models.STLModel{}).Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error; err != nil {
		logrus.WithError(err).WithField("model_id", id).Warn("Failed to count model download")
	}
	return item.FileURL, nil
}

func (s *ContentService) CreateSTLModel(ctx context.Context, req *STLModelRequest) (*models.STLModel, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	item := &models.STLModel{}
	applySTLModelRequest(item, req)
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create model: %w", err)
	}
	return item, nil
}

func (s *ContentService) UpdateSTLModel(ctx context.Context, id uuid.UUID, req *STLModelRequest) (*models.STLModel, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var item models.STLModel
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	applySTLModelRequest(&item, req)
	if err := s.db.WithContext(ctx).Omit("Category").Save(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to update model: %w", err)
	}
	return &item, nil
}

func (s *ContentService) DeleteSTLModel(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.STLModel{}, id)
}

func applySTLModelRequest(item *models.STLModel, req *STLModelRequest) {
	item.Name = strings.TrimSpace(req.Name)
	item.Description = req.Description
	item.Price = req.Price
	item.FileURL = req.FileURL
	item.PreviewURL = req.PreviewURL
	item.IsActive = req.IsActive
	item.CategoryID = req.CategoryID
}

// Contact

func (s *ContentService) ContactSettings(ctx context.Context) (*models.ContactSettings, error) {
	var settings models.ContactSettings
	err := s.db.WithContext(ctx).Order("created_at ASC").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.ContactSettings{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact settings: %w", err)
	}
	return &settings, nil
}

func (s *ContentService) UpdateContactSettings(ctx context.Context, req *ContactSettingsRequest) (*models.ContactSettings, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	settings, err := s.ContactSettings(ctx)
	if err != nil {
		return nil, err
	}
	settings.Email = req.Email
	settings.Phone = req.Phone
	settings.Address = req.Address
	settings.MapURL = req.MapURL
	settings.WhatsApp = req.WhatsApp

	if err := s.db.WithContext(ctx).Save(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact settings: %w", err)
	}
	return settings, nil
}

// SubmitContactMessage stores the message and forwards it to the shop inbox.
func (s *ContentService) SubmitContactMessage(ctx context.Context, req *ContactMessageRequest) (*models.ContactMessage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}

	inbox := ""
	if settings, err := s.ContactSettings(ctx); err == nil {
		inbox = settings.Email
	}
	go func() {
		if err := s.notifier.SendContactMessage(inbox, msg); err != nil {
			logrus.WithError(err).WithField("message_id", msg.ID).Warn("Failed to forward contact message")
		}
	}()

	return msg, nil
}

func (s *ContentService) ContactMessages(ctx context.Context, params utils.PaginationParams, unreadOnly bool) ([]models.ContactMessage, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.ContactMessage{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at"})
	query = utils.ApplyPagination(query, params)

	var messages []models.ContactMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return messages, total, nil
}

func (s *ContentService) MarkContactMessageRead(ctx context.Context, id uuid.UUID, read bool) error {
	result := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", read)
	if result.Error != nil {
		return fmt.Errorf("failed to update message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ContentService) DeleteContactMessage(ctx context.Context, id uuid.UUID) error {
	return deleteByID(s.db.WithContext(ctx), &models.ContactMessage{}, id)
}

// deleteByID soft-deletes one row of model's table.
func deleteByID(db *gorm.DB, model interface{}, id uuid.UUID) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
