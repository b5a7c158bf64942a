// internal/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// ReviewHandler serves product reviews and questions.
type ReviewHandler struct {
	reviewService *services.ReviewService
}

func NewReviewHandler(reviewService *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// GET /products/:id/reviews
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	reviews, total, err := h.reviewService.ProductReviews(c.Request.Context(), productID, params)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reviews, total, params))
}

// POST /products/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	productID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.CreatedResponse(c, gin.H{"review": review})
}

// GET /products/:id/questions
func (h *ReviewHandler) GetProductQuestions(c *gin.Context) {
	productID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	questions, err := h.reviewService.ProductQuestions(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err, "question")
		return
	}

	utils.SuccessResponse(c, gin.H{"questions": questions})
}

// POST /products/:id/questions
func (h *ReviewHandler) AskQuestion(c *gin.Context) {
	productID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AskQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.reviewService.AskQuestion(c.Request.Context(), utils.GetOptionalUserID(c), productID, &req)
	if err != nil {
		respondError(c, err, "product")
		return
	}

	utils.CreatedResponse(c, gin.H{"question": question})
}

func moderationFiltersFromQuery(c *gin.Context) services.ModerationFilters {
	return services.ModerationFilters{
		PaginationParams: utils.GetPaginationParams(c),
		ProductID:        queryUUID(c, "product_id"),
		Pending:          queryBool(c, "pending"),
	}
}

// GET /admin/reviews
func (h *ReviewHandler) AdminGetReviews(c *gin.Context) {
	filters := moderationFiltersFromQuery(c)

	reviews, total, err := h.reviewService.ListReviews(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(reviews, total, filters.PaginationParams))
}

// PUT /admin/reviews/:id
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.ModerateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.ModerateReview(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "review")
		return
	}

	utils.SuccessResponse(c, gin.H{"review": review})
}

// DELETE /admin/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), id); err != nil {
		respondError(c, err, "review")
		return
	}

	utils.MessageResponse(c, i18n.KeyReviewDeleted)
}

// GET /admin/questions
func (h *ReviewHandler) AdminGetQuestions(c *gin.Context) {
	filters := moderationFiltersFromQuery(c)

	questions, total, err := h.reviewService.ListQuestions(c.Request.Context(), filters)
	if err != nil {
		respondError(c, err, "question")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(questions, total, filters.PaginationParams))
}

// PUT /admin/questions/:id
func (h *ReviewHandler) AnswerQuestion(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.AnswerQuestionRequest
	if !bindJSON(c, &req) {
		return
	}

	question, err := h.reviewService.AnswerQuestion(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "question")
		return
	}

	utils.SuccessResponse(c, gin.H{"question": question})
}

// DELETE /admin/questions/:id
func (h *ReviewHandler) DeleteQuestion(c *gin.Context) {
	id, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.reviewService.DeleteQuestion(c.Request.Context(), id); err != nil {
		respondError(c, err, "question")
		return
	}

	utils.MessageResponse(c, i18n.KeyQuestionDeleted)
}
