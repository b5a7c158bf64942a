// internal/services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CategoryRequest struct {
	Name     string     `json:"name" validate:"required,min=2,max=100"`
	Slug     string     `json:"slug" validate:"omitempty,max=120"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// Tree returns top-level categories with their children.
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Parent").Preload("Children").
		First(&category, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &category, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Preload("Children").
		First(&category, "slug = ?", slug).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &category, nil
}

func (s *CategoryService) Create(ctx context.Context, req *CategoryRequest) (*models.Category, error) {
	if err := s.validate(ctx, uuid.Nil, req); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:     strings.TrimSpace(req.Name),
		Slug:     slugFor(req.Slug, req.Name),
		ParentID: req.ParentID,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := s.validate(ctx, id, req); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":      strings.TrimSpace(req.Name),
		"slug":      slugFor(req.Slug, req.Name),
		"parent_id": req.ParentID,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a category and detaches its products and children.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Category{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		if err := tx.Model(&models.STLModel{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach models: %w", err)
		}
		return tx.Model(&models.Category{}).Where("parent_id = ?", id).Update("parent_id", nil).Error
	})
}

// validate keeps the tree one level deep.
func (s *CategoryService) validate(ctx context.Context, id uuid.UUID, req *CategoryRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if req.ParentID == nil {
		return nil
	}
	if *req.ParentID == id {
		return fmt.Errorf("%w: category cannot be its own parent", ErrInvalidInput)
	}

	var parent models.Category
	err := s.db.WithContext(ctx).First(&parent, "id = ?", *req.ParentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: unknown parent category", ErrInvalidInput)
	}
	if err != nil {
		return err
	}
	if parent.ParentID != nil {
		return fmt.Errorf("%w: only one level of sub-categories is supported", ErrInvalidInput)
	}
	return nil
}

type CollectionService struct {
	db *gorm.DB
}

type CollectionRequest struct {
	Name        string      `json:"name" validate:"required,min=2,max=255"`
	Slug        string      `json:"slug" validate:"omitempty,max=255"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url" validate:"omitempty,max=500"`
	IsActive    bool        `json:"is_active"`
	ProductIDs  []uuid.UUID `json:"product_ids" validate:"omitempty,max=500"`
}

func NewCollectionService(db *gorm.DB) *CollectionService {
	return &CollectionService{db: db}
}

func (s *CollectionService) List(ctx context.Context, includeInactive bool) ([]models.Collection, error) {
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var collections []models.Collection
	if err := query.Find(&collections).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch collections: %w", err)
	}
	return collections, nil
}

// GetBySlug returns an active collection with its active products.
func (s *CollectionService) GetBySlug(ctx context.Context, slug string) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.WithContext(ctx).
		Preload("Products", "is_active = ?", true).
		Preload("Products.Media", orderByPosition).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&collection).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &collection, nil
}

func (s *CollectionService) Get(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var collection models.Collection
	if err := s.db.WithContext(ctx).Preload("Products").First(&collection, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &collection, nil
}

func (s *CollectionService) Create(ctx context.Context, req *CollectionRequest) (*models.Collection, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	collection := &models.Collection{}
	applyCollectionRequest(collection, req)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Products").Create(collection).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return s.replaceProducts(tx, collection, req.ProductIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, collection.ID)
}

func (s *CollectionService) Update(ctx context.Context, id uuid.UUID, req *CollectionRequest) (*models.Collection, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := tx.First(&collection, "id = ?", id).Error; err != nil {
			return notFoundOr(err)
		}
		applyCollectionRequest(&collection, req)
		if err := tx.Omit("Products").Save(&collection).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("failed to update collection: %w", err)
		}
		if req.ProductIDs == nil {
			return nil
		}
		return s.replaceProducts(tx, &collection, req.ProductIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CollectionService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		collection := models.Collection{BaseModel: models.BaseModel{ID: id}}
		if err := tx.Model(&collection).Association("Products").Clear(); err != nil {
			return fmt.Errorf("failed to detach products: %w", err)
		}
		result := tx.Delete(&models.Collection{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete collection: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *CollectionService) replaceProducts(tx *gorm.DB, collection *models.Collection, ids []uuid.UUID) error {
	association := tx.Model(collection).Association("Products")
	if len(ids) == 0 {
		return association.Clear()
	}

	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	if err := association.Replace(products); err != nil {
		return fmt.Errorf("failed to set collection products: %w", err)
	}
	return nil
}

func applyCollectionRequest(collection *models.Collection, req *CollectionRequest) {
	collection.Name = strings.TrimSpace(req.Name)
	collection.Slug = slugFor(req.Slug, req.Name)
	collection.Description = req.Description
	collection.ImageURL = req.ImageURL
	collection.IsActive = req.IsActive
}

func slugFor(slug, name string) string {
	if slug = utils.Slugify(slug); slug != "" {
		return slug
	}
	return utils.Slugify(name)
}
