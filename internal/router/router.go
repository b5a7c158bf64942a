// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/handlers"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/services"
)

// Dependencies carries the long-lived infrastructure built in main.
type Dependencies struct {
	Sessions     services.SessionStore
	Storage      *services.StorageService
	Notifier     *services.NotificationService
	GeneralLimit *middleware.RateLimiter
	AuthLimit    *middleware.RateLimiter
	UploadLimit  *middleware.RateLimiter
}

// NewLimiters builds the general, auth and upload limiters from config.
func NewLimiters(cfg config.RateLimitConfig) (general, auth, upload *middleware.RateLimiter) {
	general = middleware.NewRateLimiter(middleware.PerSecond(cfg.GeneralPerSecond), cfg.GeneralBurst)
	auth = middleware.NewRateLimiter(middleware.PerMinute(cfg.AuthPerMinute), cfg.AuthBurst)
	upload = middleware.NewRateLimiter(middleware.PerMinute(cfg.UploadPerMinute), cfg.UploadBurst)
	return general, auth, upload
}

func Initialize(db *gorm.DB, cfg *config.Config, deps Dependencies) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(db, cfg, deps.Sessions, deps.Notifier)
	discountService := services.NewDiscountService(db)
	shippingService := services.NewShippingService(db)
	cartService := services.NewCartService(db, discountService, shippingService)
	orderService := services.NewOrderService(db, cartService, deps.Notifier)
	paymentService := services.NewPaymentService(db, cfg, orderService)
	productService := services.NewProductService(db)
	reviewService := services.NewReviewService(db, productService)
	categoryService := services.NewCategoryService(db)
	collectionService := services.NewCollectionService(db)
	contentService := services.NewContentService(db, deps.Notifier)
	reportService := services.NewReportService(cfg, contentService)
	qrCodeService := services.NewQRCodeService(db)
	adminService := services.NewAdminService(db, deps.Sessions)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, deps.Storage, cfg.Session)
	productHandler := handlers.NewProductHandler(productService, deps.Storage)
	catalogHandler := handlers.NewCatalogHandler(categoryService, collectionService)
	cartHandler := handlers.NewCartHandler(cartService)
	pricingHandler := handlers.NewPricingHandler(discountService, shippingService)
	orderHandler := handlers.NewOrderHandler(orderService, reportService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	contentHandler := handlers.NewContentHandler(contentService)
	qrCodeHandler := handlers.NewQRCodeHandler(qrCodeService)
	adminHandler := handlers.NewAdminHandler(adminService)

	cookie := cfg.Session.CookieName
	authRequired := middleware.AuthRequired(authService, cookie)
	optionalAuth := middleware.OptionalAuth(authService, cookie)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	if deps.GeneralLimit != nil {
		r.Use(deps.GeneralLimit.Middleware())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	if cfg.Storage.Driver == "local" && cfg.Storage.LocalDir != "" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		if deps.AuthLimit != nil {
			auth.Use(deps.AuthLimit.Middleware())
		}
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", authRequired, authHandler.GetProfile)
			auth.PUT("/me", authRequired, authHandler.UpdateProfile)
			auth.DELETE("/me", authRequired, authHandler.DeleteAccount)
			auth.POST("/me/avatar", authRequired, uploadLimit(deps), authHandler.UploadAvatar)
			auth.POST("/change-password", authRequired, authHandler.ChangePassword)
		}

		// Catalog routes
		products := v1.Group("/products")
		products.Use(optionalAuth)
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/related", productHandler.GetRelatedProducts)
			products.GET("/:id/reviews", reviewHandler.GetProductReviews)
			products.GET("/:id/questions", reviewHandler.GetProductQuestions)
			products.POST("/:id/questions", reviewHandler.AskQuestion)
			products.POST("/:id/reviews", authRequired, reviewHandler.CreateReview)
			products.POST("/:id/favorite", authRequired, productHandler.ToggleFavorite)
		}
		v1.GET("/favorites", authRequired, productHandler.GetFavorites)

		v1.GET("/categories", catalogHandler.GetCategories)
		v1.GET("/categories/:slug", catalogHandler.GetCategory)
		v1.GET("/collections", catalogHandler.GetCollections)
		v1.GET("/collections/:slug", catalogHandler.GetCollection)

		// Storefront content
		v1.GET("/hero-slides", contentHandler.GetHeroSlides)
		stlModels := v1.Group("/stl-models")
		stlModels.Use(optionalAuth)
		{
			stlModels.GET("", contentHandler.GetSTLModels)
			stlModels.GET("/:id", contentHandler.GetSTLModel)
			stlModels.GET("/:id/download", contentHandler.DownloadSTLModel)
		}
		v1.GET("/contact", contentHandler.GetContactSettings)
		v1.POST("/contact", contentHandler.SubmitContactMessage)

		// Pricing
		v1.GET("/shipping", pricingHandler.GetShippingSettings)
		v1.GET("/discounts/active", pricingHandler.GetActiveDiscount)

		// Cart routes
		v1.POST("/cart/guest/totals", cartHandler.GuestTotals)
		cart := v1.Group("/cart")
		cart.Use(authRequired)
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:productId", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
			cart.POST("/merge", cartHandler.MergeGuestCart)
		}

		// Order routes
		v1.POST("/orders", optionalAuth, orderHandler.CreateOrder)
		orders := v1.Group("/orders")
		orders.Use(authRequired)
		{
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetMyOrder)
			orders.GET("/:id/invoice", orderHandler.GetMyInvoice)
		}

		// Payment routes
		payments := v1.Group("/payments")
		payments.Use(optionalAuth)
		{
			payments.POST("/intent", paymentHandler.CreatePaymentIntent)
			payments.POST("/confirm", paymentHandler.ConfirmPayment)
		}

		// QR codes
		qrCodes := v1.Group("/qr-codes")
		qrCodes.Use(authRequired)
		{
			qrCodes.GET("", qrCodeHandler.GetQRCodes)
			qrCodes.POST("", qrCodeHandler.CreateQRCode)
			qrCodes.GET("/:id", qrCodeHandler.GetQRCode)
			qrCodes.GET("/:id/image", qrCodeHandler.GetQRCodeImage)
			qrCodes.PUT("/:id", qrCodeHandler.UpdateQRCode)
			qrCodes.DELETE("/:id", qrCodeHandler.DeleteQRCode)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(authRequired, middleware.StaffRequired(), middleware.AuditLogMiddleware(adminService))
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/analytics", adminHandler.GetAnalytics)

			admin.GET("/products", productHandler.AdminGetProducts)
			admin.POST("/products", productHandler.CreateProduct)
			admin.GET("/products/:id", productHandler.AdminGetProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.DELETE("/products/:id", productHandler.DeleteProduct)
			admin.POST("/uploads/:category", uploadLimit(deps), productHandler.UploadMedia)
			admin.DELETE("/uploads/*key", productHandler.DeleteMedia)

			admin.POST("/categories", catalogHandler.CreateCategory)
			admin.PUT("/categories/:id", catalogHandler.UpdateCategory)
			admin.DELETE("/categories/:id", catalogHandler.DeleteCategory)

			admin.GET("/collections", catalogHandler.AdminGetCollections)
			admin.POST("/collections", catalogHandler.CreateCollection)
			admin.GET("/collections/:id", catalogHandler.AdminGetCollection)
			admin.PUT("/collections/:id", catalogHandler.UpdateCollection)
			admin.DELETE("/collections/:id", catalogHandler.DeleteCollection)

			admin.GET("/orders", orderHandler.AdminGetOrders)
			admin.GET("/orders/export", orderHandler.ExportOrders)
			admin.PUT("/orders/status", orderHandler.UpdateOrderStatusByBody)
			admin.GET("/orders/:id", orderHandler.AdminGetOrder)
			admin.GET("/orders/:id/invoice", orderHandler.AdminGetInvoice)
			admin.GET("/orders/:id/payments", paymentHandler.GetOrderPayments)
			admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

			admin.GET("/reviews", reviewHandler.AdminGetReviews)
			admin.PUT("/reviews/:id", reviewHandler.ModerateReview)
			admin.DELETE("/reviews/:id", reviewHandler.DeleteReview)
			admin.GET("/questions", reviewHandler.AdminGetQuestions)
			admin.PUT("/questions/:id", reviewHandler.AnswerQuestion)
			admin.DELETE("/questions/:id", reviewHandler.DeleteQuestion)

			admin.GET("/hero-slides", contentHandler.AdminGetHeroSlides)
			admin.POST("/hero-slides", contentHandler.CreateHeroSlide)
			admin.PUT("/hero-slides/order", contentHandler.ReorderHeroSlides)
			admin.PUT("/hero-slides/:id", contentHandler.UpdateHeroSlide)
			admin.DELETE("/hero-slides/:id", contentHandler.DeleteHeroSlide)

			admin.GET("/stl-models", contentHandler.AdminGetSTLModels)
			admin.POST("/stl-models", contentHandler.CreateSTLModel)
			admin.PUT("/stl-models/:id", contentHandler.UpdateSTLModel)
			admin.DELETE("/stl-models/:id", contentHandler.DeleteSTLModel)

			admin.PUT("/contact", contentHandler.UpdateContactSettings)
			admin.GET("/messages", contentHandler.GetContactMessages)
			admin.PUT("/messages/:id", contentHandler.MarkContactMessage)
			admin.DELETE("/messages/:id", contentHandler.DeleteContactMessage)

			// Admin-only: money and accounts
			adminOnly := admin.Group("")
			adminOnly.Use(middleware.AdminRequired())
			{
				adminOnly.GET("/discounts", pricingHandler.GetDiscounts)
				adminOnly.POST("/discounts", pricingHandler.CreateDiscount)
				adminOnly.GET("/discounts/:id", pricingHandler.GetDiscount)
				adminOnly.PUT("/discounts/:id", pricingHandler.UpdateDiscount)
				adminOnly.DELETE("/discounts/:id", pricingHandler.DeleteDiscount)
				adminOnly.PUT("/shipping", pricingHandler.UpdateShippingSettings)
				adminOnly.POST("/payments/refund", paymentHandler.ProcessRefund)

				adminOnly.GET("/users", adminHandler.GetUsers)
				adminOnly.GET("/users/:id", adminHandler.GetUser)
				adminOnly.PUT("/users/:id/role", adminHandler.UpdateUserRole)
				adminOnly.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
				adminOnly.GET("/audit-logs", adminHandler.GetAuditLogs)
			}
		}
	}

	return r
}

func uploadLimit(deps Dependencies) gin.HandlerFunc {
	if deps.UploadLimit == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return deps.UploadLimit.Middleware()
}
