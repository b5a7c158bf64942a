// internal/services/pricing.go
package services

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/javajoker/storefront-backend/internal/models"
)

var hundred = decimal.NewFromInt(100)

// PricedLine is one cart line as seen by the totals computation.
type PricedLine struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	FreeShipping bool            `json:"free_shipping"`
}

func (l PricedLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Totals struct {
	Subtotal           decimal.Decimal     `json:"subtotal"`
	DiscountPercentage decimal.Decimal     `json:"discount_percentage"`
	DiscountAmount     decimal.Decimal     `json:"discount_amount"`
	ShippingCost       decimal.Decimal     `json:"shipping_cost"`
	FreeShipping       bool                `json:"free_shipping"`
	Total              decimal.Decimal     `json:"total"`
	AppliedDiscount    *models.Discount    `json:"applied_discount,omitempty"`
	Threshold          decimal.NullDecimal `json:"free_shipping_threshold"`
}

// EvaluateShipping returns the shipping charge for a subtotal. Shipping is
// waived when no active settings exist, when every line ships free (an empty
// cart included), or when the subtotal reaches the configured threshold.
func EvaluateShipping(subtotal decimal.Decimal, lines []PricedLine, settings *models.ShippingSettings) decimal.Decimal {
	if settings == nil || !settings.IsActive {
		return decimal.Zero
	}

	allFree := true
	for _, line := range lines {
		if !line.FreeShipping {
			allFree = false
			break
		}
	}
	if allFree {
		return decimal.Zero
	}

	if settings.FreeShippingThreshold.Valid && subtotal.GreaterThanOrEqual(settings.FreeShippingThreshold.Decimal) {
		return decimal.Zero
	}

	return settings.ShippingCost
}

// ComputeTotals prices lines under an optional discount and shipping settings.
// Shipping is evaluated on the subtotal before discount.
func ComputeTotals(lines []PricedLine, discount *models.Discount, settings *models.ShippingSettings) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	totals := Totals{
		Subtotal:           subtotal,
		DiscountPercentage: decimal.Zero,
		DiscountAmount:     decimal.Zero,
	}

	if discount != nil {
		totals.AppliedDiscount = discount
		totals.DiscountPercentage = discount.Percentage
		totals.DiscountAmount = subtotal.Mul(discount.Percentage).Div(hundred).Round(2)
	}

	totals.ShippingCost = EvaluateShipping(subtotal, lines, settings)
	totals.FreeShipping = totals.ShippingCost.IsZero()
	if settings != nil {
		totals.Threshold = settings.FreeShippingThreshold
	}

	totals.Total = subtotal.Sub(totals.DiscountAmount).Add(totals.ShippingCost)
	return totals
}
