// internal/services/admin_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

// lowStockThreshold is the stock level at which the dashboard flags a product.
const lowStockThreshold = 5

type AdminService struct {
	db       *gorm.DB
	sessions SessionStore
}

type AdminDashboardStats struct {
	TotalOrders           int64            `json:"total_orders"`
	OrdersThisMonth       int64            `json:"orders_this_month"`
	OrdersByStatus        map[string]int64 `json:"orders_by_status"`
	TotalRevenue          decimal.Decimal  `json:"total_revenue"`
	MonthlyRevenue        decimal.Decimal  `json:"monthly_revenue"`
	RevenueGrowth         float64          `json:"revenue_growth"`
	TotalCustomers        int64            `json:"total_customers"`
	NewCustomersThisMonth int64            `json:"new_customers_this_month"`
	CustomerGrowth        float64          `json:"customer_growth"`
	TotalProducts         int64            `json:"total_products"`
	ActiveProducts        int64            `json:"active_products"`
	LowStockProducts      int64            `json:"low_stock_products"`
	PendingReviews        int64            `json:"pending_reviews"`
	UnansweredQuestions   int64            `json:"unanswered_questions"`
	UnreadMessages        int64            `json:"unread_messages"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role          *models.UserRole `json:"role,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	CreatedAfter  *time.Time       `json:"created_after,omitempty"`
	CreatedBefore *time.Time       `json:"created_before,omitempty"` // exclusive
}

type AuditLogFilter struct {
	utils.PaginationParams
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	ResourceType string     `json:"resource_type,omitempty"`
}

type UpdateUserRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=CUSTOMER ADMIN EDITOR"`
}

type UpdateUserStatusRequest struct {
	IsActive bool `json:"is_active"`
}

func NewAdminService(db *gorm.DB, sessions SessionStore) *AdminService {
	return &AdminService{
		db:       db,
		sessions: sessions,
	}
}

// revenueStatuses are the order states that count as sales.
var revenueStatuses = []models.OrderStatus{
	models.OrderStatusPreparing,
	models.OrderStatusShipped,
	models.OrderStatusDelivered,
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats(ctx context.Context) (*AdminDashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &AdminDashboardStats{OrdersByStatus: map[string]int64{}}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	// Order statistics
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	db.Model(&models.Order{}).Where("created_at >= ?", monthStart).Count(&stats.OrdersThisMonth)

	var byStatus []struct {
		Status string
		Count  int64
	}
	if err := db.Model(&models.Order{}).Select("status, COUNT(*) AS count").Group("status").Scan(&byStatus).Error; err != nil {
		return nil, fmt.Errorf("failed to group orders: %w", err)
	}
	for _, row := range byStatus {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	// Revenue statistics
	var err error
	if stats.TotalRevenue, err = s.revenue(db, time.Time{}, now); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.revenue(db, monthStart, now); err != nil {
		return nil, err
	}
	lastMonthRevenue, err := s.revenue(db, lastMonthStart, monthStart)
	if err != nil {
		return nil, err
	}
	if lastMonthRevenue.IsPositive() {
		stats.RevenueGrowth = stats.MonthlyRevenue.Sub(lastMonthRevenue).
			Div(lastMonthRevenue).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}

	// Customer statistics
	customers := db.Model(&models.User{}).Where("role = ?", models.UserRoleCustomer)
	customers.Session(&gorm.Session{}).Count(&stats.TotalCustomers)
	customers.Session(&gorm.Session{}).Where("created_at >= ?", monthStart).Count(&stats.NewCustomersThisMonth)
	var lastMonthCustomers int64
	customers.Session(&gorm.Session{}).
		Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthCustomers)
	if lastMonthCustomers > 0 {
		stats.CustomerGrowth = float64(stats.NewCustomersThisMonth-lastMonthCustomers) / float64(lastMonthCustomers) * 100
	}

	// Catalog statistics
	db.Model(&models.Product{}).Count(&stats.TotalProducts)
	db.Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.ActiveProducts)
	db.Model(&models.Product{}).Where("is_active = ? AND stock <= ?", true, lowStockThreshold).Count(&stats.LowStockProducts)

	// Moderation queues
	db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&stats.PendingReviews)
	db.Model(&models.Question{}).Where("answered_at IS NULL").Count(&stats.UnansweredQuestions)
	db.Model(&models.ContactMessage{}).Where("is_read = ?", false).Count(&stats.UnreadMessages)

	return stats, nil
}

// revenue sums the totals of non-cancelled orders created in [from, to).
func (s *AdminService) revenue(db *gorm.DB, from, to time.Time) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := db.Model(&models.Order{}).
		Select("SUM(total)").
		Where("status IN ? AND created_at >= ? AND created_at < ?", revenueStatuses, from, to).
		Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// Analytics and Reporting

// GetAnalytics reports metrics for created_at in [startDate, endDate).
func (s *AdminService) GetAnalytics(ctx context.Context, startDate, endDate time.Time, metrics []string) (map[string]interface{}, error) {
	db := s.db.WithContext(ctx)
	startDate, endDate = startDate.UTC(), endDate.UTC()
	analytics := make(map[string]interface{})

	for _, metric := range metrics {
		switch metric {
		case "registrations":
			var count int64
			db.Model(&models.User{}).
				Where("created_at >= ? AND created_at < ?", startDate, endDate).
				Count(&count)
			analytics["registrations"] = count

		case "orders":
			var count int64
			db.Model(&models.Order{}).
				Where("created_at >= ? AND created_at < ?", startDate, endDate).
				Count(&count)
			analytics["orders"] = count

		case "items_sold":
			var count int64
			db.Model(&models.OrderItem{}).
				Joins("JOIN orders ON orders.id = order_items.order_id").
				Where("orders.status IN ? AND orders.created_at >= ? AND orders.created_at < ?", revenueStatuses, startDate, endDate).
				Select("COALESCE(SUM(order_items.quantity), 0)").
				Row().Scan(&count)
			analytics["items_sold"] = count

		case "revenue":
			revenue, err := s.revenue(db, startDate, endDate)
			if err != nil {
				return nil, err
			}
			analytics["revenue"] = revenue
		}
	}

	return analytics, nil
}

// User Management
func (s *AdminService) GetUsers(ctx context.Context, filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?)", searchTerm, searchTerm)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", filter.CreatedAfter.UTC())
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", filter.CreatedBefore.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	allowedSortFields := []string{"created_at", "updated_at", "name", "email", "role", "last_login_at"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// UpdateUserRole changes a user's role and ends their sessions so the new
// role applies on their next login. Admins cannot change their own role.
func (s *AdminService) UpdateUserRole(ctx context.Context, adminID, userID uuid.UUID, req *UpdateUserRoleRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if adminID == userID {
		return nil, ErrForbidden
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldRole := user.Role
	if oldRole == req.Role {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Update("role", req.Role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	s.revokeSessions(ctx, userID)

	s.createAuditLog(ctx, adminID, "UPDATE_USER_ROLE", "user", &userID,
		map[string]interface{}{"role": oldRole},
		map[string]interface{}{"role": req.Role})

	user.Role = req.Role
	return user, nil
}

// UpdateUserStatus activates or deactivates an account. Deactivation ends
// every session of the user.
func (s *AdminService) UpdateUserStatus(ctx context.Context, adminID, userID uuid.UUID, req *UpdateUserStatusRequest) (*models.User, error) {
	if adminID == userID && !req.IsActive {
		return nil, ErrForbidden
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	oldStatus := user.IsActive

	if err := s.db.WithContext(ctx).Model(user).Update("is_active", req.IsActive).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	if !req.IsActive {
		s.revokeSessions(ctx, userID)
	}

	s.createAuditLog(ctx, adminID, "UPDATE_USER_STATUS", "user", &userID,
		map[string]interface{}{"is_active": oldStatus},
		map[string]interface{}{"is_active": req.IsActive})

	user.IsActive = req.IsActive
	return user, nil
}

// Audit log
func (s *AdminService) GetAuditLogs(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ResourceType != "" {
		query = query.Where("resource_type = ?", filter.ResourceType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "action"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var logs []models.AuditLog
	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, total, nil
}

// RecordAudit persists an audit entry built by the HTTP layer.
func (s *AdminService) RecordAudit(ctx context.Context, entry *models.AuditLog) {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logrus.WithError(err).WithField("action", entry.Action).Error("Failed to write audit log")
	}
}

// Helper methods
func (s *AdminService) createAuditLog(ctx context.Context, userID uuid.UUID, action, resourceType string, resourceID *uuid.UUID, oldValues, newValues map[string]interface{}) {
	s.RecordAudit(ctx, &models.AuditLog{
		UserID:       &userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		OldValues:    models.JSONB(oldValues),
		NewValues:    models.JSONB(newValues),
	})
}

func (s *AdminService) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.DeleteForUser(ctx, userID); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to revoke user sessions")
	}
}
