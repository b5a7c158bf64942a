// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/database"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/router"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}
	if err := database.SeedInitialData(db, cfg.Seed); err != nil {
		logrus.WithError(err).Fatal("Failed to seed initial data")
	}

	// Initialize i18n
	if err := i18n.Initialize(cfg.I18n.LocalesPath, cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, closeSessions := newSessionStore(ctx, db, cfg)
	defer closeSessions()

	storageService, err := services.NewStorageService(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage")
	}

	general, auth, upload := router.NewLimiters(cfg.RateLimit)
	go general.CleanupVisitors(ctx.Done())
	go auth.CleanupVisitors(ctx.Done())
	go upload.CleanupVisitors(ctx.Done())

	// Initialize router
	r := router.Initialize(db, cfg, router.Dependencies{
		Sessions:     sessions,
		Storage:      storageService,
		Notifier:     services.NewNotificationService(cfg),
		GeneralLimit: general,
		AuthLimit:    auth,
		UploadLimit:  upload,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
	}

	logrus.Info("Server exited")
}

// newSessionStore picks Redis when SESSION_STORE=redis, else the sessions table.
func newSessionStore(ctx context.Context, db *gorm.DB, cfg *config.Config) (services.SessionStore, func()) {
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour

	if cfg.Session.Store == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Fatal("Failed to connect to redis")
		}
		logrus.WithField("addr", cfg.Redis.Addr()).Info("Using redis session store")
		return services.NewRedisSessionStore(client, ttl), func() { client.Close() }
	}

	store := services.NewDBSessionStore(db, ttl)
	go purgeSessions(ctx, store)
	return store, func() {}
}

func purgeSessions(ctx context.Context, store *services.DBSessionStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := store.PurgeExpired(ctx)
			if err != nil {
				logrus.WithError(err).Warn("Failed to purge expired sessions")
				continue
			}
			if purged > 0 {
				logrus.WithField("count", purged).Info("Purged expired sessions")
			}
		}
	}
}
