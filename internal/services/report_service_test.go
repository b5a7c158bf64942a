package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/testutil"
)

func TestReportService(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	cfg := testConfig()
	cfg.Email.FromName = "Atölye Şahin"

	content := NewContentService(db, NewNotificationService(cfg))
	_, err := content.UpdateContactSettings(ctx, &ContactSettingsRequest{Email: "info@example.com", Address: "Kadıköy, İstanbul"})
	require.NoError(t, err)

	cart := NewCartService(db, NewDiscountService(db), NewShippingService(db))
	orders := NewOrderService(db, cart, nil)
	reports := NewReportService(cfg, content)

	lamp := createProduct(t, db, "Gece Lambası", "120.50", 5)
	vase := createProduct(t, db, "Vazo", "80", 5)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := orders.CreateOrder(ctx, nil, &CreateOrderRequest{
			CustomerName:  "Müşteri",
			CustomerEmail: email,
			Address:       "Şişli, İstanbul",
			PaymentMethod: models.PaymentMethodBankTransfer,
			Items: []CheckoutItem{
				{ProductID: lamp.ID, Quantity: 1},
				{ProductID: vase.ID, Quantity: 2},
			},
		})
		require.NoError(t, err)
	}

	t.Run("invoice", func(t *testing.T) {
		list, _, err := orders.List(ctx, OrderFilters{PaginationParams: firstPage})
		require.NoError(t, err)
		require.NotEmpty(t, list)

		pdf, err := reports.Invoice(ctx, &list[0])
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	})

	t.Run("export", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, reports.ExportOrders(ctx, orders, OrderFilters{}, &buf))

		file, err := xlsx.OpenBinary(buf.Bytes())
		require.NoError(t, err)
		require.Len(t, file.Sheets, 1)

		rows := file.Sheets[0].Rows
		require.Len(t, rows, 3)
		assert.Equal(t, "Order ID", rows[0].Cells[0].String())
		assert.Contains(t, rows[1].Cells[9].String(), "Vazo x2")
		total, err := rows[1].Cells[13].Float()
		require.NoError(t, err)
		assert.InDelta(t, 280.50, total, 0.001)
	})
}
