// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess       = "success"
	KeyInternalError = "error.internal"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidSession     = "auth.invalid_session"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthInvalidResetToken  = "auth.invalid_reset_token"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountDisabled    = "auth.account_disabled"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAuthPasswordChanged    = "auth.password_changed"
	KeyAuthPasswordReset      = "auth.password_reset"
	KeyAuthResetEmailSent     = "auth.reset_email_sent"
	KeyAuthAccountDeleted     = "auth.account_deleted"
	KeyAuthOpenOrders         = "auth.open_orders"

	// Users
	KeyUserNotFound         = "user.not_found"
	KeyUserRoleUpdated      = "user.role_updated"
	KeyUserStatusUpdated    = "user.status_updated"
	KeyUserSelfDemotion     = "user.self_demotion"
	KeyUserSelfDeactivation = "user.self_deactivation"

	// Catalog
	KeyProductNotFound    = "product.not_found"
	KeyProductDeleted     = "product.deleted"
	KeyProductOutOfStock  = "product.out_of_stock"
	KeyCategoryNotFound   = "category.not_found"
	KeyCategoryDeleted    = "category.deleted"
	KeyCategorySlugTaken  = "category.slug_taken"
	KeyCollectionNotFound = "collection.not_found"
	KeyCollectionDeleted  = "collection.deleted"

	// Pricing
	KeyDiscountNotFound = "discount.not_found"
	KeyDiscountDeleted  = "discount.deleted"
	KeyDiscountWindow   = "discount.invalid_window"

	// Cart
	KeyCartNotFound    = "cart.not_found"
	KeyCartItemRemoved = "cart.item_removed"
	KeyCartCleared     = "cart.cleared"
	KeyCartEmpty       = "cart.empty"

	// Orders
	KeyOrderNotFound          = "order.not_found"
	KeyOrderInvalidTransition = "order.invalid_transition"

	// Payments
	KeyPaymentUnavailable = "payment.unavailable"
	KeyPaymentFailed      = "payment.failed"
	KeyPaymentNotFound    = "payment.not_found"

	// Content
	KeyReviewNotFound    = "review.not_found"
	KeyReviewDeleted     = "review.deleted"
	KeyQuestionNotFound  = "question.not_found"
	KeyQuestionDeleted   = "question.deleted"
	KeyHeroSlideNotFound = "hero_slide.not_found"
	KeyHeroSlideDeleted  = "hero_slide.deleted"
	KeySTLModelNotFound  = "stl_model.not_found"
	KeySTLModelDeleted   = "stl_model.deleted"
	KeyQRCodeNotFound    = "qr_code.not_found"
	KeyQRCodeDeleted     = "qr_code.deleted"
	KeyContactSent       = "contact.message_sent"
	KeyMessageNotFound   = "message.not_found"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"
	KeyFileDeleted      = "file.deleted"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
