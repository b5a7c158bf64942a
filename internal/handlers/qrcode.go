// internal/handlers/qrcode.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type QRCodeHandler struct {
	qrCodeService *services.QRCodeService
}

func NewQRCodeHandler(qrCodeService *services.QRCodeService) *QRCodeHandler {
	return &QRCodeHandler{qrCodeService: qrCodeService}
}

// GET /qr-codes
func (h *QRCodeHandler) GetQRCodes(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	codes, err := h.qrCodeService.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "qr_code")
		return
	}

	utils.SuccessResponse(c, gin.H{"qr_codes": codes})
}

// GET /qr-codes/:id
func (h *QRCodeHandler) GetQRCode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	code, err := h.qrCodeService.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "qr_code")
		return
	}

	utils.SuccessResponse(c, gin.H{"qr_code": code})
}

// GET /qr-codes/:id/image
func (h *QRCodeHandler) GetQRCodeImage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	png, err := h.qrCodeService.RenderPNG(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, err, "qr_code")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// POST /qr-codes
func (h *QRCodeHandler) CreateQRCode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.QRCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	code, err := h.qrCodeService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "qr_code")
		return
	}

	utils.CreatedResponse(c, gin.H{"qr_code": code})
}

// PUT /qr-codes/:id
func (h *QRCodeHandler) UpdateQRCode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.QRCodeRequest
	if !bindJSON(c, &req) {
		return
	}

	code, err := h.qrCodeService.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err, "qr_code")
		return
	}

	utils.SuccessResponse(c, gin.H{"qr_code": code})
}

// DELETE /qr-codes/:id
func (h *QRCodeHandler) DeleteQRCode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.qrCodeService.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "qr_code")
		return
	}

	utils.MessageResponse(c, i18n.KeyQRCodeDeleted)
}
