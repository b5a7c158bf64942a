package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createProduct(t *testing.T, db *gorm.DB, name, price string, stock int, opts ...func(*models.Product)) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Price:    dec(price),
		Stock:    stock,
		IsActive: true,
	}
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func freeShipping(p *models.Product) { p.FreeShipping = true }

func createUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Name:     "Test User",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, user.SetPassword("Password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createDiscount(t *testing.T, db *gorm.DB, percentage string, active bool, start, end time.Time) *models.Discount {
	t.Helper()

	discount := &models.Discount{
		Name:       "Sale " + percentage,
		Percentage: dec(percentage),
		IsActive:   active,
		StartDate:  start.UTC(),
		EndDate:    end.UTC(),
	}
	require.NoError(t, db.Create(discount).Error)
	return discount
}

func createShipping(t *testing.T, db *gorm.DB, cost string, threshold *string, active bool) *models.ShippingSettings {
	t.Helper()

	settings := &models.ShippingSettings{
		ShippingCost: dec(cost),
		IsActive:     active,
	}
	if threshold != nil {
		settings.FreeShippingThreshold = decimal.NewNullDecimal(dec(*threshold))
	}
	require.NoError(t, db.Create(settings).Error)
	return settings
}

func strPtr(s string) *string { return &s }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }

func reloadStock(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
