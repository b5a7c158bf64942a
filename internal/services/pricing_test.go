package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/javajoker/storefront-backend/internal/models"
)

func line(price string, quantity int, free bool) PricedLine {
	return PricedLine{
		ProductID:    uuid.New(),
		Name:         "item",
		Quantity:     quantity,
		Price:        dec(price),
		FreeShipping: free,
	}
}

func shippingSettings(cost string, threshold string, active bool) *models.ShippingSettings {
	settings := &models.ShippingSettings{ShippingCost: dec(cost), IsActive: active}
	if threshold != "" {
		settings.FreeShippingThreshold = decimal.NewNullDecimal(dec(threshold))
	}
	return settings
}

func TestComputeTotals(t *testing.T) {
	tenPercent := &models.Discount{Name: "Ten", Percentage: dec("10"), IsActive: true, StartDate: time.Now(), EndDate: time.Now()}

	tests := []struct {
		name         string
		lines        []PricedLine
		discount     *models.Discount
		settings     *models.ShippingSettings
		subtotal     string
		discountAmt  string
		shipping     string
		total        string
		freeShipping bool
	}{
		{
			name:         "no discount and no shipping settings",
			lines:        []PricedLine{line("50", 2, false)},
			subtotal:     "100",
			discountAmt:  "0",
			shipping:     "0",
			total:        "100",
			freeShipping: true,
		},
		{
			name:        "percentage discount with flat shipping",
			lines:       []PricedLine{line("100", 2, false)},
			discount:    tenPercent,
			settings:    shippingSettings("29.90", "", true),
			subtotal:    "200",
			discountAmt: "20",
			shipping:    "29.90",
			total:       "209.90",
		},
		{
			name:         "threshold reached",
			lines:        []PricedLine{line("150", 1, false)},
			settings:     shippingSettings("29.90", "150", true),
			subtotal:     "150",
			discountAmt:  "0",
			shipping:     "0",
			total:        "150",
			freeShipping: true,
		},
		{
			name:        "below threshold",
			lines:       []PricedLine{line("149.99", 1, false)},
			settings:    shippingSettings("29.90", "150", true),
			subtotal:    "149.99",
			discountAmt: "0",
			shipping:    "29.90",
			total:       "179.89",
		},
		{
			name:         "threshold is checked before the discount",
			lines:        []PricedLine{line("100", 1, false)},
			discount:     tenPercent,
			settings:     shippingSettings("15", "100", true),
			subtotal:     "100",
			discountAmt:  "10",
			shipping:     "0",
			total:        "90",
			freeShipping: true,
		},
		{
			name:         "every line ships free",
			lines:        []PricedLine{line("10", 1, true), line("5", 3, true)},
			settings:     shippingSettings("15", "", true),
			subtotal:     "25",
			discountAmt:  "0",
			shipping:     "0",
			total:        "25",
			freeShipping: true,
		},
		{
			name:        "one line without free shipping",
			lines:       []PricedLine{line("10", 1, true), line("5", 1, false)},
			settings:    shippingSettings("15", "", true),
			subtotal:    "15",
			discountAmt: "0",
			shipping:    "15",
			total:       "30",
		},
		{
			name:         "inactive settings waive shipping",
			lines:        []PricedLine{line("10", 1, false)},
			settings:     shippingSettings("15", "", false),
			subtotal:     "10",
			discountAmt:  "0",
			shipping:     "0",
			total:        "10",
			freeShipping: true,
		},
		{
			name:         "discount rounds to cents",
			lines:        []PricedLine{line("33.33", 1, false)},
			discount:     &models.Discount{Percentage: dec("15")},
			subtotal:     "33.33",
			discountAmt:  "5",
			shipping:     "0",
			total:        "28.33",
			freeShipping: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := ComputeTotals(tt.lines, tt.discount, tt.settings)

			assert.True(t, totals.Subtotal.Equal(dec(tt.subtotal)), "subtotal %s", totals.Subtotal)
			assert.True(t, totals.DiscountAmount.Equal(dec(tt.discountAmt)), "discount %s", totals.DiscountAmount)
			assert.True(t, totals.ShippingCost.Equal(dec(tt.shipping)), "shipping %s", totals.ShippingCost)
			assert.True(t, totals.Total.Equal(dec(tt.total)), "total %s", totals.Total)
			assert.Equal(t, tt.freeShipping, totals.FreeShipping)

			// total is always subtotal - discount + shipping
			assert.True(t, totals.Total.Equal(totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.ShippingCost)))
		})
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, nil, shippingSettings("15", "", true))

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.ShippingCost.IsZero(), "shipping %s", totals.ShippingCost)
	assert.True(t, totals.Total.IsZero(), "total %s", totals.Total)
	assert.True(t, totals.FreeShipping)
}

func TestComputeTotalsReportsAppliedDiscount(t *testing.T) {
	discount := &models.Discount{Name: "Spring", Percentage: dec("25")}

	totals := ComputeTotals([]PricedLine{line("40", 1, false)}, discount, nil)

	assert.Same(t, discount, totals.AppliedDiscount)
	assert.True(t, totals.DiscountPercentage.Equal(dec("25")))
	assert.True(t, totals.DiscountAmount.Equal(dec("10")))
}
