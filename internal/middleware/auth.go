// internal/middleware/auth.go
package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.SessionInfo, error)
}

// SessionToken reads the session cookie, falling back to a Bearer header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	// Extract token from "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func AuthRequired(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := utils.GetLangFromContext(c)

		token := SessionToken(c, cookieName)
		if token == "" {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthRequired))
			c.Abort()
			return
		}

		info, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidSession))
			c.Abort()
			return
		}

		setSession(c, info)
		c.Next()
	}
}

func OptionalAuth(auth Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		// An invalid session is treated as a guest request
		if info, err := auth.Authenticate(c.Request.Context(), token); err == nil {
			setSession(c, info)
		}
		c.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return requireRole(func(role models.UserRole) bool {
		return role == models.UserRoleAdmin
	})
}

// StaffRequired admits admins and editors.
func StaffRequired() gin.HandlerFunc {
	return requireRole(models.UserRole.IsStaff)
}

func requireRole(allowed func(models.UserRole) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := utils.GetUserRoleFromContext(c)
		if !exists || !allowed(models.UserRole(role)) {
			utils.ForbiddenResponse(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func setSession(c *gin.Context, info *services.SessionInfo) {
	c.Set(utils.ContextUserID, info.UserID)
	c.Set(utils.ContextUserRole, string(info.Role))
	c.Set(utils.ContextUserEmail, info.Email)
}
