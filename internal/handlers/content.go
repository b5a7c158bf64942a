// internal/handlers/content.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// ContentHandler serves hero slides, STL models and the contact page.
type ContentHandler struct {
	contentService *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// GET /hero-slides
func (h *ContentHandler) GetHeroSlides(c *gin.Context) {
	h.heroSlides(c, false)
}

// GET /admin/hero-slides
func (h *ContentHandler) AdminGetHeroSlides(c *gin.Context) {
	h.heroSlides(c, true)
}

func (h *ContentHandler) heroSlides(c *gin.Context, includeInactive bool) {
	slides, err := h.contentService.HeroSlides(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, err, "hero_slide")
		return
	}

	utils.SuccessResponse(c, gin.H{"slides": slides})
}

// POST /admin/hero-slides
func (h *ContentHandler) CreateHeroSlide(c *gin.Context) {
	var req services.HeroSlideRequest
	if !bindJSON(c, &req) {
		return
	}

	slide, err := h.contentService.CreateHeroSlide(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "hero_slide")
		return
	}

	utils.CreatedResponse(c, gin.H{"slide": slide})
}

// PUT /admin/hero-slides/:id
func (h *ContentHandler) UpdateHeroSlide(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.HeroSlideRequest
	if !bindJSON(c, &req) {
		return
	}

	slide, err := h.contentService.UpdateHeroSlide(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "hero_slide")
		return
	}

	utils.SuccessResponse(c, gin.H{"slide": slide})
}

// PUT /admin/hero-slides/order
func (h *ContentHandler) ReorderHeroSlides(c *gin.Context) {
	var req services.ReorderSlidesRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.contentService.ReorderHeroSlides(c.Request.Context(), &req); err != nil {
		respondError(c, err, "hero_slide")
		return
	}
	h.heroSlides(c, true)
}

// DELETE /admin/hero-slides/:id
func (h *ContentHandler) DeleteHeroSlide(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.DeleteHeroSlide(c.Request.Context(), id); err != nil {
		respondError(c, err, "hero_slide")
		return
	}

	utils.MessageResponse(c, i18n.KeyHeroSlideDeleted)
}

// GET /stl-models
func (h *ContentHandler) GetSTLModels(c *gin.Context) {
	h.stlModels(c, false)
}

// GET /admin/stl-models
func (h *ContentHandler) AdminGetSTLModels(c *gin.Context) {
	h.stlModels(c, true)
}

func (h *ContentHandler) stlModels(c *gin.Context, includeInactive bool) {
	filters := services.STLModelFilters{
		PaginationParams: utils.GetPaginationParams(c),
		CategoryID:       queryUUID(c, "category_id"),
		IncludeInactive:  includeInactive,
	}

	items, total, err := h.contentService.STLModels(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "stl_model")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, filters.PaginationParams))
}

// GET /stl-models/:id
func (h *ContentHandler) GetSTLModel(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.STLModel(c.Request.Context(), id, isStaff(c))
	if err != nil {
		respondError(c, err, "stl_model")
		return
	}

	utils.SuccessResponse(c, gin.H{"model": item})
}

// GET /stl-models/:id/download
func (h *ContentHandler) DownloadSTLModel(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	url, err := h.contentService.DownloadSTLModel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "stl_model")
		return
	}

	utils.SuccessResponse(c, gin.H{"url": url})
}

// POST /admin/stl-models
func (h *ContentHandler) CreateSTLModel(c *gin.Context) {
	var req services.STLModelRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.CreateSTLModel(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "stl_model")
		return
	}

	utils.CreatedResponse(c, gin.H{"model": item})
}

// PUT /admin/stl-models/:id
func (h *ContentHandler) UpdateSTLModel(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.STLModelRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.contentService.UpdateSTLModel(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "stl_model")
		return
	}

	utils.SuccessResponse(c, gin.H{"model": item})
}

// DELETE /admin/stl-models/:id
func (h *ContentHandler) DeleteSTLModel(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.DeleteSTLModel(c.Request.Context(), id); err != nil {
		respondError(c, err, "stl_model")
		return
	}

	utils.MessageResponse(c, i18n.KeySTLModelDeleted)
}

// GET /contact
func (h *ContentHandler) GetContactSettings(c *gin.Context) {
	settings, err := h.contentService.ContactSettings(c.Request.Context())
	if err != nil {
		respondError(c, err, "contact")
		return
	}

	utils.SuccessResponse(c, gin.H{"contact": settings})
}

// PUT /admin/contact
func (h *ContentHandler) UpdateContactSettings(c *gin.Context) {
	var req services.ContactSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, err := h.contentService.UpdateContactSettings(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "contact")
		return
	}

	utils.SuccessResponse(c, gin.H{"contact": settings})
}

// POST /contact
func (h *ContentHandler) SubmitContactMessage(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ContactMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := h.contentService.SubmitContactMessage(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "message")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyContactSent),
		"id":      msg.ID,
	})
}

// GET /admin/messages
func (h *ContentHandler) GetContactMessages(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	messages, total, err := h.contentService.ContactMessages(c.Request.Context(), params, queryBool(c, "unread"))
	if err != nil {
		respondError(c, err, "message")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(messages, total, params))
}

type markReadRequest struct {
	IsRead bool `json:"is_read"`
}

// PUT /admin/messages/:id
func (h *ContentHandler) MarkContactMessage(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req markReadRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.contentService.MarkContactMessageRead(c.Request.Context(), id, req.IsRead); err != nil {
		respondError(c, err, "message")
		return
	}

	utils.SuccessResponse(c, gin.H{"id": id, "is_read": req.IsRead})
}

// DELETE /admin/messages/:id
func (h *ContentHandler) DeleteContactMessage(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.DeleteContactMessage(c.Request.Context(), id); err != nil {
		respondError(c, err, "message")
		return
	}

	utils.SuccessResponse(c, gin.H{"id": id})
}
