// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	sessions SessionStore
	notifier *NotificationService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
	Reason   string `json:"reason,omitempty" validate:"max=500"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,strong_password"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=30"`
	Image *string `json:"image" validate:"omitempty,url"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, sessions SessionStore, notifier *NotificationService) *AuthService {
	return &AuthService{
		db:       db,
		cfg:      cfg,
		sessions: sessions,
		notifier: notifier,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Normalize trims and lowercases the email so validation sees the stored form.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

func (r *LoginRequest) Normalize() { r.Email = normalizeEmail(r.Email) }

func (r *ForgotPasswordRequest) Normalize() { r.Email = normalizeEmail(r.Email) }

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest, meta SessionMeta) (*AuthResponse, error) {
	req.Normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     models.UserRoleCustomer,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Send welcome email (async)
	go func() {
		if err := s.notifier.SendWelcomeEmail(user); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to send welcome email")
		}
	}()

	return s.startSession(ctx, user, meta)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest, meta SessionMeta) (*AuthResponse, error) {
	req.Normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrForbidden
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}
	user.LastLoginAt = &now

	return s.startSession(ctx, &user, meta)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolves a session token for the auth middleware.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*SessionInfo, error) {
	return s.sessions.Lookup(ctx, token)
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}
	return s.Me(ctx, userID)
}

// ChangePassword replaces the password and ends every other session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest, meta SessionMeta) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.setPassword(ctx, user, req.NewPassword); err != nil {
		return nil, err
	}
	return s.startSession(ctx, user, meta)
}

// DeleteAccount closes the caller's account after re-checking the password.
// Accounts with orders still in progress are kept until those orders settle.
// The email is released so it can register again.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID, req *DeleteAccountRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.CheckPassword(req.Password); err != nil {
		return ErrInvalidCredentials
	}

	var openOrders int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND status IN ?", userID, []models.OrderStatus{models.OrderStatusPreparing, models.OrderStatusShipped}).
		Count(&openOrders).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if openOrders > 0 {
		return fmt.Errorf("%w: account has orders in progress", ErrConflict)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Updates(map[string]interface{}{
			"email":     fmt.Sprintf("deleted+%s@invalid", user.ID),
			"is_active": false,
		}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if err := s.sessions.DeleteForUser(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to revoke sessions of deleted account")
	}
	logrus.WithFields(logrus.Fields{"user_id": userID, "reason": req.Reason}).Info("Account deleted")
	return nil
}

// ForgotPassword mails a reset link when the address is known. Unknown
// addresses succeed silently so the endpoint does not reveal which accounts exist.
func (s *AuthService) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	req.Normalize()
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logrus.WithField("email", req.Email).Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	ttl := time.Duration(s.cfg.JWT.ResetTokenTTL) * time.Minute
	token, err := utils.GenerateResetToken(user.ID, user.PasswordHash, ttl)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	go func() {
		if err := s.notifier.SendPasswordResetEmail(&user, token); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to send password reset email")
		}
	}()
	return nil
}

// ResetPassword accepts a reset token only while the password it was issued
// against is still current, which makes every token single use.
func (s *AuthService) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return err
	}

	claims, err := utils.ValidateResetToken(req.Token)
	if err != nil {
		return ErrUnauthorized
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrUnauthorized
	}

	user, err := s.Me(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if utils.PasswordFingerprint(user.PasswordHash) != claims.Fingerprint {
		return ErrUnauthorized
	}

	return s.setPassword(ctx, user, req.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, user *models.User, password string) error {
	if err := user.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.sessions.DeleteForUser(ctx, user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to revoke sessions after password change")
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User, meta SessionMeta) (*AuthResponse, error) {
	token, expiresAt, err := s.sessions.Create(ctx, user, meta)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:      user,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
