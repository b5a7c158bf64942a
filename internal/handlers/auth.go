// internal/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AuthHandler struct {
	authService    *services.AuthService
	storageService *services.StorageService
	session        config.SessionConfig
}

func NewAuthHandler(authService *services.AuthService, storageService *services.StorageService, session config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		storageService: storageService,
		session:        session,
	}
}

func sessionMeta(c *gin.Context) services.SessionMeta {
	return services.SessionMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", h.session.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.session.CookieName, "", -1, "/", "", h.session.Secure, true)
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), &req, sessionMeta(c))
	if errors.Is(err, services.ErrConflict) {
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
		return
	}
	if err != nil {
		respondError(c, err, "user")
		return
	}

	h.setSessionCookie(c, authResponse.Token, authResponse.ExpiresAt)
	utils.CreatedResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthRegisterSuccess),
		"user":       authResponse.User,
		"token":      authResponse.Token,
		"expires_at": authResponse.ExpiresAt,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req, sessionMeta(c))
	if errors.Is(err, services.ErrForbidden) {
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountDisabled))
		return
	}
	if err != nil {
		respondError(c, err, "user")
		return
	}

	h.setSessionCookie(c, authResponse.Token, authResponse.ExpiresAt)
	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthLoginSuccess),
		"user":       authResponse.User,
		"token":      authResponse.Token,
		"expires_at": authResponse.ExpiresAt,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := middleware.SessionToken(c, h.session.CookieName); token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			respondError(c, err, "user")
			return
		}
	}

	h.clearSessionCookie(c)
	utils.MessageResponse(c, i18n.KeyAuthLogoutSuccess)
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// PUT /auth/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// POST /auth/me/avatar
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}

	result, err := h.storageService.UploadFile(c.Request.Context(), file, h.storageService.GetDefaultUploadOptions("avatars"))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &services.UpdateProfileRequest{Image: &result.URL})
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user, "file": result})
}

// POST /auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.ChangePassword(c.Request.Context(), userID, &req, sessionMeta(c))
	if err != nil {
		respondError(c, err, "user")
		return
	}

	h.setSessionCookie(c, authResponse.Token, authResponse.ExpiresAt)
	utils.SuccessResponse(c, gin.H{
		"message":    i18n.T(lang, i18n.KeyAuthPasswordChanged),
		"token":      authResponse.Token,
		"expires_at": authResponse.ExpiresAt,
	})
}

// DELETE /auth/me
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.DeleteAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.DeleteAccount(c.Request.Context(), userID, &req)
	if errors.Is(err, services.ErrConflict) {
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthOpenOrders))
		return
	}
	if err != nil {
		respondError(c, err, "user")
		return
	}

	h.clearSessionCookie(c)
	utils.MessageResponse(c, i18n.KeyAuthAccountDeleted)
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondError(c, err, "user")
		return
	}

	utils.MessageResponse(c, i18n.KeyAuthResetEmailSent)
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), &req)
	if errors.Is(err, services.ErrUnauthorized) {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyAuthInvalidResetToken), nil)
		return
	}
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.MessageResponse(c, i18n.KeyAuthPasswordReset)
}
