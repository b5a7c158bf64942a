package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "user_session", cfg.Session.CookieName)
	assert.Equal(t, 168, cfg.Session.TTLHours)
	assert.Equal(t, "database", cfg.Session.Store)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.False(t, cfg.IsProduction())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_TTL_HOURS", "24")
	t.Setenv("SESSION_COOKIE_SECURE", "TRUE")
	t.Setenv("RATE_LIMIT_GENERAL_RPS", "2.5")
	t.Setenv("SMTP_PORT", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24, cfg.Session.TTLHours)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 2.5, cfg.RateLimit.GeneralPerSecond)
	assert.Equal(t, 587, cfg.Email.SMTPPort)
	assert.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.Frontend.AllowedOrigins)
}

func TestValidateRejectsUnsafeProductionConfig(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Database:    DatabaseConfig{Password: "secret"},
		Session:     SessionConfig{Store: "database", TTLHours: 168},
		Storage:     StorageConfig{Driver: "local"},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	assert.NoError(t, cfg.Validate())

	cfg.Session.Store = "memcached"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable TimeZone=UTC", d.DSN())
}
