package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/testutil"
)

func TestQRCodeLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewQRCodeService(db)
	ctx := context.Background()
	owner := createUser(t, db, "owner@example.com", models.UserRoleAdmin)
	other := createUser(t, db, "other@example.com", models.UserRoleAdmin)

	code, err := svc.Create(ctx, owner.ID, &QRCodeRequest{Name: " Menu ", Content: "https://shop.test/menu"})
	require.NoError(t, err)
	assert.Equal(t, "Menu", code.Name)
	assert.Equal(t, "#000000", code.ForegroundColor)
	assert.Equal(t, "#FFFFFF", code.BackgroundColor)
	assert.Equal(t, 256, code.Size)
	assert.Equal(t, "medium", code.RecoveryLevel)

	raw, err := svc.RenderPNG(ctx, owner.ID, code.ID)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())

	// codes are private to their owner
	_, err = svc.Get(ctx, other.ID, code.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, other.ID, code.ID), ErrNotFound)

	updated, err := svc.Update(ctx, owner.ID, code.ID, &QRCodeRequest{
		Name:            "Menu",
		Content:         "https://shop.test/menu?v=2",
		ForegroundColor: "#1A2B3C",
		Size:            128,
		RecoveryLevel:   "high",
	})
	require.NoError(t, err)
	assert.Equal(t, "#1A2B3C", updated.ForegroundColor)

	codes, err := svc.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, codes, 1)

	require.NoError(t, svc.Delete(ctx, owner.ID, code.ID))
	_, err = svc.RenderPNG(ctx, owner.ID, code.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQRCodeValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewQRCodeService(db)

	tests := []struct {
		name string
		req  QRCodeRequest
	}{
		{"missing content", QRCodeRequest{Name: "x"}},
		{"bad color", QRCodeRequest{Name: "x", Content: "y", ForegroundColor: "red"}},
		{"tiny size", QRCodeRequest{Name: "x", Content: "y", Size: 10}},
		{"unknown level", QRCodeRequest{Name: "x", Content: "y", RecoveryLevel: "max"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), &tt.req)
			assert.Error(t, err)
		})
	}
}

func TestRenderQRCodeBorder(t *testing.T) {
	code := &models.QRCode{Content: "hello", ForegroundColor: "#000000", BackgroundColor: "#FFFFFF", Size: 200}
	withBorder, err := RenderQRCode(code)
	require.NoError(t, err)

	code.DisableBorder = true
	withoutBorder, err := RenderQRCode(code)
	require.NoError(t, err)
	assert.NotEqual(t, withBorder, withoutBorder)

	code.BackgroundColor = "#GGGGGG"
	_, err = RenderQRCode(code)
	assert.Error(t, err)
}
