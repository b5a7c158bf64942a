// internal/database/connection.go
package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(cfg.LogLevel)),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithField("host", cfg.Host).Info("Database connection established")
	return db, nil
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Session{},
		&models.Category{},
		&models.Product{},
		&models.ProductOption{},
		&models.ProductFeature{},
		&models.ProductMedia{},
		&models.Collection{},
		&models.Favorite{},
		&models.Discount{},
		&models.ShippingSettings{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentTransaction{},
		&models.Review{},
		&models.Question{},
		&models.HeroSlide{},
		&models.STLModel{},
		&models.QRCode{},
		&models.ContactSettings{},
		&models.ContactMessage{},
		&models.AuditLog{},
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_favorite_count ON products(favorite_count DESC)",

		// Discounts are always looked up by activity window
		"CREATE INDEX IF NOT EXISTS idx_discounts_window ON discounts(is_active, start_date, end_date)",

		// Orders
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",

		// Content
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_approved ON reviews(product_id, is_approved)",
		"CREATE INDEX IF NOT EXISTS idx_questions_product_published ON questions(product_id, is_published)",
		"CREATE INDEX IF NOT EXISTS idx_hero_slides_active_position ON hero_slides(is_active, position)",

		// Admin
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at)",

		// Full-text search (PostgreSQL only)
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('simple', name || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}

// SeedInitialData creates the admin account and the singleton settings rows.
func SeedInitialData(db *gorm.DB, seed config.SeedConfig) error {
	logrus.Info("Seeding initial data...")

	var adminCount int64
	if err := db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount).Error; err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}

	if adminCount == 0 {
		if seed.AdminPassword == "" {
			logrus.Warn("No admin user exists and SEED_ADMIN_PASSWORD is empty, skipping admin seed")
		} else {
			admin := &models.User{
				Email:    seed.AdminEmail,
				Name:     "Administrator",
				Role:     models.UserRoleAdmin,
				IsActive: true,
			}
			if err := admin.SetPassword(seed.AdminPassword); err != nil {
				return fmt.Errorf("failed to set admin password: %w", err)
			}
			if err := db.Create(admin).Error; err != nil {
				return fmt.Errorf("failed to create admin user: %w", err)
			}
			logrus.WithField("email", admin.Email).Info("Default admin user created")
		}
	}

	var shipping models.ShippingSettings
	err := db.First(&shipping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		shipping = models.ShippingSettings{
			ShippingCost:          decimal.NewFromInt(30),
			FreeShippingThreshold: decimal.NewNullDecimal(decimal.NewFromInt(500)),
			IsActive:              true,
		}
		if err := db.Create(&shipping).Error; err != nil {
			return fmt.Errorf("failed to create shipping settings: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load shipping settings: %w", err)
	}

	var contact models.ContactSettings
	err = db.First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := db.Create(&models.ContactSettings{}).Error; err != nil {
			return fmt.Errorf("failed to create contact settings: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to load contact settings: %w", err)
	}

	logrus.Info("Initial data seeding completed")
	return nil
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
