// internal/services/cart_service.go
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
	"gorm.io/gorm/clause"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// maxLineQuantity caps a single cart line, however it is reached.
const maxLineQuantity = 999

type CartService struct {
	db        *gorm.DB
	discounts *DiscountService
	shipping  *ShippingService
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1,max=999"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"max=999"`
}

type GuestCartLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=999"`
}

type GuestCartRequest struct {
	Items []GuestCartLine `json:"items" validate:"max=100,dive"`
}

type CartLine struct {
	PricedLine
	ImageURL  string          `json:"image_url,omitempty"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartView struct {
	CartID  *uuid.UUID  `json:"cart_id,omitempty"`
	Items   []CartLine  `json:"items"`
	Totals  Totals      `json:"totals"`
	Missing []uuid.UUID `json:"missing,omitempty"`
}

func NewCartService(db *gorm.DB, discounts *DiscountService, shipping *ShippingService) *CartService {
	return &CartService{
		db:        db,
		discounts: discounts,
		shipping:  shipping,
	}
}

// Get returns the user's cart with freshly computed totals.
func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	cart, err := s.cartFor(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	items, err := s.loadItems(s.db.WithContext(ctx), cart.ID)
	if err != nil {
		return nil, err
	}

	view := s.buildView(ctx, items)
	view.CartID = &cart.ID
	return view, nil
}

// Add inserts the product or increments the existing line in one statement.
func (s *CartService) Add(ctx context.Context, userID uuid.UUID, req *AddToCartRequest) (*CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	db := s.db.WithContext(ctx)
	if err := s.addLine(db, userID, req.ProductID, quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateQuantity sets a line's quantity; zero or less removes it.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartView, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	if quantity > maxLineQuantity {
		return nil, fmt.Errorf("%w: quantity too large", ErrInvalidInput)
	}

	db := s.db.WithContext(ctx)
	cart, err := s.cartFor(db, userID)
	if err != nil {
		return nil, err
	}

	result := db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Updates(map[string]interface{}{"quantity": quantity, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) (*CartView, error) {
	db := s.db.WithContext(ctx)
	cart, err := s.cartFor(db, userID)
	if err != nil {
		return nil, err
	}

	if err := db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.Get(ctx, userID)
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.clear(s.db.WithContext(ctx), userID)
}

// GuestTotals prices a client-held cart against the current catalog.
func (s *CartService) GuestTotals(ctx context.Context, req *GuestCartRequest) (*CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, line := range req.Items {
		ids = append(ids, line.ProductID)
	}

	products, err := s.activeProducts(s.db.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	var missing []uuid.UUID
	for _, line := range req.Items {
		product, ok := products[line.ProductID]
		if !ok {
			missing = append(missing, line.ProductID)
			continue
		}
		items = append(items, models.CartItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     product.Price,
			Product:   product,
		})
	}

	view := s.buildView(ctx, items)
	view.Missing = missing
	return view, nil
}

// Merge folds guest lines into the user's cart through the same upsert as Add.
func (s *CartService) Merge(ctx context.Context, userID uuid.UUID, req *GuestCartRequest) (*CartView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range req.Items {
			err := s.addLine(tx, userID, line.ProductID, line.Quantity)
			if errors.Is(err, ErrNotFound) {
				logrus.WithField("product_id", line.ProductID).Info("Skipping unavailable product during cart merge")
				continue
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Lines returns the user's cart lines for checkout, reading through tx.
func (s *CartService) Lines(tx *gorm.DB, userID uuid.UUID) ([]models.CartItem, error) {
	cart, err := s.cartFor(tx, userID)
	if err != nil {
		return nil, err
	}
	return s.loadItems(tx, cart.ID)
}

// Quote computes totals for lines using the current discount and shipping policy.
func (s *CartService) Quote(ctx context.Context, lines []PricedLine) Totals {
	discount, settings := s.Policy(ctx)
	return ComputeTotals(lines, discount, settings)
}

// Policy loads the active discount and shipping settings. Lookup failures
// are logged and priced as no discount and free shipping.
func (s *CartService) Policy(ctx context.Context) (*models.Discount, *models.ShippingSettings) {
	discount := s.discounts.ResolveActiveOrNone(ctx, time.Now())

	settings, err := s.shipping.Settings(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Shipping settings lookup failed, waiving shipping")
		settings = nil
	}
	return discount, settings
}

func (s *CartService) addLine(db *gorm.DB, userID, productID uuid.UUID, quantity int) error {
	var product models.Product
	if err := db.Where("id = ? AND is_active = ?", productID, true).First(&product).Error; err != nil {
		return notFoundOr(err)
	}

	cart, err := s.cartFor(db, userID)
	if err != nil {
		return err
	}

	item := models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
	}
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr(
				"CASE WHEN cart_items.quantity + excluded.quantity > ? THEN ? ELSE cart_items.quantity + excluded.quantity END",
				maxLineQuantity, maxLineQuantity,
			),
			"updated_at": time.Now().UTC(),
		}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (s *CartService) clear(db *gorm.DB, userID uuid.UUID) error {
	cart, err := s.cartFor(db, userID)
	if err != nil {
		return err
	}
	if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// cartFor returns the user's cart, creating it when missing.
func (s *CartService) cartFor(db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	created := models.Cart{UserID: userID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

func (s *CartService) loadItems(db *gorm.DB, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := db.Preload("Product").Preload("Product.Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("cart_id = ?", cartID).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	return items, nil
}

func (s *CartService) activeProducts(db *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	found := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var products []models.Product
	if err := db.Preload("Media", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id IN ? AND is_active = ?", ids, true).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	for i := range products {
		found[products[i].ID] = &products[i]
	}
	return found, nil
}

func (s *CartService) buildView(ctx context.Context, items []models.CartItem) *CartView {
	lines := make([]CartLine, 0, len(items))
	priced := make([]PricedLine, 0, len(items))
	for _, item := range items {
		line := toPricedLine(item)
		priced = append(priced, line)

		cartLine := CartLine{PricedLine: line, LineTotal: line.LineTotal()}
		if item.Product != nil && len(item.Product.Media) > 0 {
			cartLine.ImageURL = item.Product.Media[0].URL
		}
		lines = append(lines, cartLine)
	}

	return &CartView{
		Items:  lines,
		Totals: s.Quote(ctx, priced),
	}
}

func toPricedLine(item models.CartItem) PricedLine {
	line := PricedLine{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Price:     item.Price,
	}
	if item.Product != nil {
		line.Name = item.Product.Name
		line.FreeShipping = item.Product.FreeShipping
	}
	return line
}
