// internal/services/qrcode_service.go
package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type QRCodeService struct {
	db *gorm.DB
}

type QRCodeRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Content         string `json:"content" validate:"required,max=2048"`
	ForegroundColor string `json:"foreground_color" validate:"omitempty,hexcolor6"`
	BackgroundColor string `json:"background_color" validate:"omitempty,hexcolor6"`
	Size            int    `json:"size" validate:"omitempty,min=64,max=2048"`
	RecoveryLevel   string `json:"recovery_level" validate:"omitempty,oneof=low medium high highest"`
	DisableBorder   bool   `json:"disable_border"`
}

var recoveryLevels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}

func NewQRCodeService(db *gorm.DB) *QRCodeService {
	return &QRCodeService{db: db}
}

func (s *QRCodeService) List(ctx context.Context, ownerID uuid.UUID) ([]models.QRCode, error) {
	var codes []models.QRCode
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&codes).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch qr codes: %w", err)
	}
	return codes, nil
}

func (s *QRCodeService) Get(ctx context.Context, ownerID, id uuid.UUID) (*models.QRCode, error) {
	var code models.QRCode
	if err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).
		First(&code).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &code, nil
}

func (s *QRCodeService) Create(ctx context.Context, ownerID uuid.UUID, req *QRCodeRequest) (*models.QRCode, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	code := &models.QRCode{OwnerID: ownerID}
	applyQRCodeRequest(code, req)
	if _, err := RenderQRCode(code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.db.WithContext(ctx).Create(code).Error; err != nil {
		return nil, fmt.Errorf("failed to create qr code: %w", err)
	}
	return code, nil
}

func (s *QRCodeService) Update(ctx context.Context, ownerID, id uuid.UUID, req *QRCodeRequest) (*models.QRCode, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	code, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	applyQRCodeRequest(code, req)
	if _, err := RenderQRCode(code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.db.WithContext(ctx).Save(code).Error; err != nil {
		return nil, fmt.Errorf("failed to update qr code: %w", err)
	}
	return code, nil
}

func (s *QRCodeService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.QRCode{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete qr code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RenderPNG draws a stored code as a PNG image.
func (s *QRCodeService) RenderPNG(ctx context.Context, ownerID, id uuid.UUID) ([]byte, error) {
	code, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return RenderQRCode(code)
}

// RenderQRCode draws code with its colors, size, recovery level and border setting.
func RenderQRCode(code *models.QRCode) ([]byte, error) {
	level, ok := recoveryLevels[code.RecoveryLevel]
	if !ok {
		level = qrcode.Medium
	}

	qr, err := qrcode.New(code.Content, level)
	if err != nil {
		return nil, err
	}

	fg, err := parseHexColor(code.ForegroundColor)
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(code.BackgroundColor)
	if err != nil {
		return nil, err
	}
	qr.ForegroundColor = fg
	qr.BackgroundColor = bg
	qr.DisableBorder = code.DisableBorder

	size := code.Size
	if size <= 0 {
		size = 256
	}
	return qr.PNG(size)
}

func applyQRCodeRequest(code *models.QRCode, req *QRCodeRequest) {
	code.Name = strings.TrimSpace(req.Name)
	code.Content = req.Content
	code.ForegroundColor = defaultString(req.ForegroundColor, "#000000")
	code.BackgroundColor = defaultString(req.BackgroundColor, "#FFFFFF")
	code.Size = req.Size
	if code.Size == 0 {
		code.Size = 256
	}
	code.RecoveryLevel = defaultString(req.RecoveryLevel, "medium")
	code.DisableBorder = req.DisableBorder
}

func parseHexColor(s string) (color.Color, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "#"))
	if err != nil || len(raw) != 3 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
