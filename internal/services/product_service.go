// internal/services/product_service.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type ProductOptionInput struct {
	Name            string          `json:"name" validate:"required,max=100"`
	AdditionalPrice decimal.Decimal `json:"additional_price" validate:"money"`
}

type ProductFeatureInput struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
}

type ProductMediaInput struct {
	URL  string           `json:"url" validate:"required,max=500"`
	Kind models.MediaType `json:"kind" validate:"omitempty,oneof=image video"`
}

// ProductRequest carries the full admin form. Nil child slices leave the
// existing options, features or media untouched on update.
type ProductRequest struct {
	Name         string                `json:"name" validate:"required,min=2,max=255"`
	Description  string                `json:"description"`
	Price        decimal.Decimal       `json:"price" validate:"money"`
	SalePrice    *decimal.Decimal      `json:"sale_price" validate:"omitempty,money"`
	Stock        int                   `json:"stock" validate:"min=0"`
	FreeShipping bool                  `json:"free_shipping"`
	IsActive     bool                  `json:"is_active"`
	Color        string                `json:"color" validate:"omitempty,hexcolor6"`
	CategoryID   *uuid.UUID            `json:"category_id"`
	Options      []ProductOptionInput  `json:"options" validate:"omitempty,max=50,dive"`
	Features     []ProductFeatureInput `json:"features" validate:"omitempty,max=50,dive"`
	Media        []ProductMediaInput   `json:"media" validate:"omitempty,max=20,dive"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	CategoryID      *uuid.UUID       `json:"category_id,omitempty"`
	CategorySlug    string           `json:"category,omitempty"`
	CollectionID    *uuid.UUID       `json:"collection_id,omitempty"`
	PriceMin        *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax        *decimal.Decimal `json:"price_max,omitempty"`
	InStock         bool             `json:"in_stock,omitempty"`
	FreeShipping    bool             `json:"free_shipping,omitempty"`
	IncludeInactive bool             `json:"-"`
}

var productSortFields = []string{"created_at", "updated_at", "name", "price", "rating", "favorite_count", "view_count", "stock"}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) Search(ctx context.Context, params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{})

	if !params.IncludeInactive {
		query = query.Where("products.is_active = ?", true)
	}
	if params.CategoryID != nil {
		query = query.Where("products.category_id = ?", *params.CategoryID)
	}
	if params.CategorySlug != "" {
		// A parent category also matches its direct children.
		query = query.Where(
			"products.category_id IN (SELECT id FROM categories WHERE deleted_at IS NULL AND (slug = ? OR parent_id IN (SELECT id FROM categories WHERE slug = ?)))",
			params.CategorySlug, params.CategorySlug,
		)
	}
	if params.CollectionID != nil {
		query = query.Where("products.id IN (SELECT product_id FROM collection_products WHERE collection_id = ?)", *params.CollectionID)
	}
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", searchTerm, searchTerm)
	}
	if params.PriceMin != nil {
		query = query.Where("products.price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		query = query.Where("products.price <= ?", *params.PriceMax)
	}
	if params.InStock {
		query = query.Where("products.stock > 0")
	}
	if params.FreeShipping {
		query = query.Where("products.free_shipping = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params.PaginationParams, productSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Preload("Category").Preload("Media", orderByPosition).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// Get loads a product with its children. Inactive products are only visible
// to staff.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error) {
	product, err := s.load(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive && !includeInactive {
		return nil, ErrNotFound
	}
	return product, nil
}

// RecordView bumps the view counter of a storefront product page.
func (s *ProductService) RecordView(ctx context.Context, id uuid.UUID) {
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error; err != nil {
		logrus.WithError(err).WithField("product_id", id).Warn("Failed to record product view")
	}
}

// Related lists other active products of the same category.
func (s *ProductService) Related(ctx context.Context, id uuid.UUID, limit int) ([]models.Product, error) {
	product, err := s.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if product.CategoryID == nil {
		return []models.Product{}, nil
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Media", orderByPosition).
		Where("category_id = ? AND id <> ? AND is_active = ?", *product.CategoryID, id, true).
		Order("favorite_count DESC").Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch related products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Create(ctx context.Context, req *ProductRequest) (*models.Product, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	product := &models.Product{}
	applyProductRequest(product, req)
	product.Options = buildOptions(req.Options)
	product.Features = buildFeatures(req.Features)
	product.Media = buildMedia(req.Media)

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.load(s.db.WithContext(ctx), product.ID)
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			return notFoundOr(err)
		}

		applyProductRequest(&product, req)
		if err := tx.Omit(clause.Associations).Save(&product).Error; err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if req.Options != nil {
			if err := tx.Unscoped().Where("product_id = ?", id).Delete(&models.ProductOption{}).Error; err != nil {
				return err
			}
			if options := buildOptions(req.Options); len(options) > 0 {
				for i := range options {
					options[i].ProductID = id
				}
				if err := tx.Create(&options).Error; err != nil {
					return fmt.Errorf("failed to save options: %w", err)
				}
			}
		}
		if req.Features != nil {
			if err := tx.Unscoped().Where("product_id = ?", id).Delete(&models.ProductFeature{}).Error; err != nil {
				return err
			}
			if features := buildFeatures(req.Features); len(features) > 0 {
				for i := range features {
					features[i].ProductID = id
				}
				if err := tx.Create(&features).Error; err != nil {
					return fmt.Errorf("failed to save features: %w", err)
				}
			}
		}
		if req.Media != nil {
			if err := tx.Unscoped().Where("product_id = ?", id).Delete(&models.ProductMedia{}).Error; err != nil {
				return err
			}
			if media := buildMedia(req.Media); len(media) > 0 {
				for i := range media {
					media[i].ProductID = id
				}
				if err := tx.Create(&media).Error; err != nil {
					return fmt.Errorf("failed to save media: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.load(s.db.WithContext(ctx), id)
}

// Delete soft-deletes the product and drops it from carts and favorites.
// Order items keep their own snapshot.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to remove product from carts: %w", err)
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return fmt.Errorf("failed to remove product from favorites: %w", err)
		}
		return nil
	})
}

// ToggleFavorite adds the product to the user's favorites or removes it, and
// keeps favorite_count in step. It reports whether the product is now a favorite.
func (s *ProductService) ToggleFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var favorited bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").Where("id = ? AND is_active = ?", productID, true).First(&product).Error; err != nil {
			return notFoundOr(err)
		}

		removed := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
		if removed.Error != nil {
			return fmt.Errorf("failed to remove favorite: %w", removed.Error)
		}
		if removed.RowsAffected > 0 {
			return tx.Model(&models.Product{}).Where("id = ? AND favorite_count > 0", productID).
				UpdateColumn("favorite_count", gorm.Expr("favorite_count - 1")).Error
		}

		added := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Favorite{UserID: userID, ProductID: productID})
		if added.Error != nil {
			return fmt.Errorf("failed to add favorite: %w", added.Error)
		}
		favorited = true
		if added.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Product{}).Where("id = ?", productID).
			UpdateColumn("favorite_count", gorm.Expr("favorite_count + 1")).Error
	})
	if err != nil {
		return false, err
	}
	return favorited, nil
}

func (s *ProductService) Favorites(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Preload("Media", orderByPosition).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ? AND products.is_active = ?", userID, true).
		Order("favorites.created_at DESC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}
	return products, nil
}

// RefreshRating recomputes the average of approved reviews.
func (s *ProductService) RefreshRating(tx *gorm.DB, productID uuid.UUID) error {
	var avg struct {
		Rating float64
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS rating").
		Where("product_id = ? AND is_approved = ?", productID, true).
		Scan(&avg).Error; err != nil {
		return fmt.Errorf("failed to compute rating: %w", err)
	}
	rating := decimal.NewFromFloat(avg.Rating).Round(2).InexactFloat64()
	return tx.Model(&models.Product{}).Where("id = ?", productID).UpdateColumn("rating", rating).Error
}

func (s *ProductService) validate(ctx context.Context, req *ProductRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}
	if !req.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if req.CategoryID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: unknown category", ErrInvalidInput)
		}
	}
	return nil
}

func (s *ProductService) load(db *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := db.Preload("Category").
		Preload("Options").
		Preload("Features").
		Preload("Media", orderByPosition).
		First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &product, nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func applyProductRequest(product *models.Product, req *ProductRequest) {
	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.Price = req.Price
	product.SalePrice = decimal.NullDecimal{}
	if req.SalePrice != nil {
		product.SalePrice = decimal.NewNullDecimal(*req.SalePrice)
	}
	product.Stock = req.Stock
	product.FreeShipping = req.FreeShipping
	product.IsActive = req.IsActive
	product.Color = req.Color
	product.CategoryID = req.CategoryID
}

func buildOptions(inputs []ProductOptionInput) []models.ProductOption {
	options := make([]models.ProductOption, 0, len(inputs))
	for _, in := range inputs {
		options = append(options, models.ProductOption{Name: in.Name, AdditionalPrice: in.AdditionalPrice})
	}
	return options
}

func buildFeatures(inputs []ProductFeatureInput) []models.ProductFeature {
	features := make([]models.ProductFeature, 0, len(inputs))
	for _, in := range inputs {
		features = append(features, models.ProductFeature{Title: in.Title, Description: in.Description})
	}
	return features
}

func buildMedia(inputs []ProductMediaInput) []models.ProductMedia {
	media := make([]models.ProductMedia, 0, len(inputs))
	for i, in := range inputs {
		kind := in.Kind
		if kind == "" {
			kind = models.MediaTypeImage
		}
		media = append(media, models.ProductMedia{URL: in.URL, Kind: kind, Position: i})
	}
	return media
}
