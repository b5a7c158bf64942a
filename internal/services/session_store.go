// internal/services/session_store.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// SessionInfo is what an authenticated request knows about its caller.
type SessionInfo struct {
	UserID    uuid.UUID       `json:"user_id"`
	Role      models.UserRole `json:"role"`
	Email     string          `json:"email"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type SessionMeta struct {
	IPAddress string
	UserAgent string
}

// SessionStore keeps server-side sessions keyed by the hash of an opaque token.
type SessionStore interface {
	Create(ctx context.Context, user *models.User, meta SessionMeta) (token string, expiresAt time.Time, err error)
	// Lookup returns ErrUnauthorized for unknown, expired or disabled sessions.
	Lookup(ctx context.Context, token string) (*SessionInfo, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

type DBSessionStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewDBSessionStore(db *gorm.DB, ttl time.Duration) *DBSessionStore {
	return &DBSessionStore{db: db, ttl: ttl}
}

func (s *DBSessionStore) Create(ctx context.Context, user *models.User, meta SessionMeta) (string, time.Time, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	session := &models.Session{
		UserID:    user.ID,
		TokenHash: utils.HashString(token),
		ExpiresAt: expiresAt,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}
	return token, expiresAt, nil
}

// Lookup reads the user alongside the session so role changes and
// deactivation take effect on the next request.
func (s *DBSessionStore) Lookup(ctx context.Context, token string) (*SessionInfo, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	var session models.Session
	err := s.db.WithContext(ctx).Preload("User").
		Where("token_hash = ? AND expires_at > ?", utils.HashString(token), time.Now().UTC()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.User == nil || !session.User.IsActive {
		return nil, ErrUnauthorized
	}

	return &SessionInfo{
		UserID:    session.UserID,
		Role:      session.User.Role,
		Email:     session.User.Email,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *DBSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Unscoped().
		Where("token_hash = ?", utils.HashString(token)).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *DBSessionStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// PurgeExpired removes sessions past their expiry.
func (s *DBSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Unscoped().
		Where("expires_at <= ?", time.Now().UTC()).
		Delete(&models.Session{})
	return result.RowsAffected, result.Error
}

// RedisSessionStore keeps each session under session:<hash> with a TTL and
// indexes a user's sessions in the set user_sessions:<user_id>.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(hash string) string {
	return "session:" + hash
}

func userSessionsKey(userID uuid.UUID) string {
	return "user_sessions:" + userID.String()
}

func (s *RedisSessionStore) Create(ctx context.Context, user *models.User, meta SessionMeta) (string, time.Time, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	payload, err := json.Marshal(SessionInfo{
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	hash := utils.HashString(token)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(hash), payload, s.ttl)
	pipe.SAdd(ctx, userSessionsKey(user.ID), hash)
	pipe.Expire(ctx, userSessionsKey(user.ID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}
	return token, expiresAt, nil
}

func (s *RedisSessionStore) Lookup(ctx context.Context, token string) (*SessionInfo, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	raw, err := s.client.Get(ctx, sessionKey(utils.HashString(token))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var info SessionInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("corrupt session payload: %w", err)
	}
	return &info, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	hash := utils.HashString(token)
	info, err := s.Lookup(ctx, token)
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(hash))
	if info != nil {
		pipe.SRem(ctx, userSessionsKey(info.UserID), hash)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	hashes, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, sessionKey(hash))
	}
	keys = append(keys, userSessionsKey(userID))

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}
