package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/testutil"
)

type AdminServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	sessions *DBSessionStore
	admin    *AdminService
	owner    *models.User
	ctx      context.Context
}

func (suite *AdminServiceTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.sessions = NewDBSessionStore(suite.db, time.Hour)
	suite.admin = NewAdminService(suite.db, suite.sessions)
	suite.owner = createUser(suite.T(), suite.db, "owner@example.com", models.UserRoleAdmin)
	suite.ctx = context.Background()
}

func (suite *AdminServiceTestSuite) TestDashboardStats() {
	cart := NewCartService(suite.db, NewDiscountService(suite.db), NewShippingService(suite.db))
	orders := NewOrderService(suite.db, cart, nil)
	product := createProduct(suite.T(), suite.db, "Mug", "25", 6)
	createProduct(suite.T(), suite.db, "Plate", "40", 0)
	createUser(suite.T(), suite.db, "buyer@example.com", models.UserRoleCustomer)

	place := func() *models.Order {
		order, err := orders.CreateOrder(suite.ctx, nil, &CreateOrderRequest{
			CustomerName:  "Buyer",
			CustomerEmail: "buyer@example.com",
			Address:       "Somewhere 1",
			PaymentMethod: models.PaymentMethodCashOnDelivery,
			Items:         []CheckoutItem{{ProductID: product.ID, Quantity: 1}},
		})
		suite.Require().NoError(err)
		return order
	}
	place()
	cancelled := place()
	_, err := orders.UpdateStatus(suite.ctx, cancelled.ID, models.OrderStatusCancelled)
	suite.Require().NoError(err)

	stats, err := suite.admin.GetDashboardStats(suite.ctx)
	suite.Require().NoError(err)
	suite.EqualValues(2, stats.TotalOrders)
	suite.EqualValues(1, stats.OrdersByStatus[string(models.OrderStatusPreparing)])
	suite.EqualValues(1, stats.OrdersByStatus[string(models.OrderStatusCancelled)])
	suite.True(dec("25").Equal(stats.TotalRevenue), stats.TotalRevenue.String())
	suite.EqualValues(1, stats.TotalCustomers)
	suite.EqualValues(2, stats.TotalProducts)
	// mug is back at 5 after the cancellation, plate is at 0
	suite.EqualValues(2, stats.LowStockProducts)

	analytics, err := suite.admin.GetAnalytics(suite.ctx,
		time.Now().UTC().Add(-time.Hour), time.Now().UTC().Add(time.Hour),
		[]string{"orders", "items_sold", "unknown"})
	suite.Require().NoError(err)
	suite.EqualValues(2, analytics["orders"])
	suite.EqualValues(1, analytics["items_sold"])
	suite.NotContains(analytics, "unknown")
}

func (suite *AdminServiceTestSuite) TestRoleChangeRevokesSessions() {
	editor := createUser(suite.T(), suite.db, "editor@example.com", models.UserRoleCustomer)
	token, _, err := suite.sessions.Create(suite.ctx, editor, SessionMeta{})
	suite.Require().NoError(err)

	updated, err := suite.admin.UpdateUserRole(suite.ctx, suite.owner.ID, editor.ID, &UpdateUserRoleRequest{Role: models.UserRoleEditor})
	suite.Require().NoError(err)
	suite.Equal(models.UserRoleEditor, updated.Role)

	_, err = suite.sessions.Lookup(suite.ctx, token)
	suite.ErrorIs(err, ErrUnauthorized)

	logs, total, err := suite.admin.GetAuditLogs(suite.ctx, AuditLogFilter{PaginationParams: firstPage, Action: "UPDATE_USER_ROLE"})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Equal(editor.ID, *logs[0].ResourceID)
	suite.Equal(suite.owner.ID, *logs[0].UserID)

	_, err = suite.admin.UpdateUserRole(suite.ctx, suite.owner.ID, suite.owner.ID, &UpdateUserRoleRequest{Role: models.UserRoleCustomer})
	suite.ErrorIs(err, ErrForbidden)

	_, err = suite.admin.UpdateUserRole(suite.ctx, suite.owner.ID, editor.ID, &UpdateUserRoleRequest{Role: "ROOT"})
	suite.Error(err)
}

func (suite *AdminServiceTestSuite) TestDeactivation() {
	customer := createUser(suite.T(), suite.db, "c@example.com", models.UserRoleCustomer)
	token, _, err := suite.sessions.Create(suite.ctx, customer, SessionMeta{})
	suite.Require().NoError(err)

	_, err = suite.admin.UpdateUserStatus(suite.ctx, suite.owner.ID, customer.ID, &UpdateUserStatusRequest{IsActive: false})
	suite.Require().NoError(err)
	_, err = suite.sessions.Lookup(suite.ctx, token)
	suite.ErrorIs(err, ErrUnauthorized)

	inactive := false
	users, total, err := suite.admin.GetUsers(suite.ctx, AdminUserFilter{PaginationParams: firstPage, IsActive: &inactive})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Equal(customer.ID, users[0].ID)

	_, err = suite.admin.UpdateUserStatus(suite.ctx, suite.owner.ID, suite.owner.ID, &UpdateUserStatusRequest{IsActive: false})
	suite.ErrorIs(err, ErrForbidden)

	role := models.UserRoleAdmin
	_, total, err = suite.admin.GetUsers(suite.ctx, AdminUserFilter{PaginationParams: firstPage, Role: &role})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
