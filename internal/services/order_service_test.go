package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/testutil"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type recordingNotifier struct {
	mu     sync.Mutex
	orders []uuid.UUID
	done   chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) SendOrderConfirmation(order *models.Order) error {
	n.mu.Lock()
	n.orders = append(n.orders, order.ID)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

type OrderServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	cart     *CartService
	orders   *OrderService
	notifier *recordingNotifier
	user     *models.User
	ctx      context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.cart = NewCartService(suite.db, NewDiscountService(suite.db), NewShippingService(suite.db))
	suite.notifier = newRecordingNotifier()
	suite.orders = NewOrderService(suite.db, suite.cart, suite.notifier)
	suite.user = createUser(suite.T(), suite.db, "buyer@example.com", models.UserRoleCustomer)
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) checkout(method models.PaymentMethod, items ...CheckoutItem) *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName:  "Ada Buyer",
		CustomerEmail: "buyer@example.com",
		Address:       "1 Market Street",
		PaymentMethod: method,
		Items:         items,
	}
}

func (suite *OrderServiceTestSuite) TestCreateFromCartClearsCartAndTakesStock() {
	product := createProduct(suite.T(), suite.db, "Bowl", "50", 5)
	_, err := suite.cart.Add(suite.ctx, suite.user.ID, &AddToCartRequest{ProductID: product.ID, Quantity: 2})
	suite.Require().NoError(err)

	order, err := suite.orders.CreateOrder(suite.ctx, &suite.user.ID, suite.checkout(models.PaymentMethodCashOnDelivery))
	suite.Require().NoError(err)

	suite.Equal(models.OrderStatusPreparing, order.Status)
	suite.Equal(models.PaymentStatusPending, order.PaymentStatus)
	suite.True(order.Subtotal.Equal(dec("100")))
	suite.True(order.Total.Equal(dec("100")))
	suite.Require().Len(order.Items, 1)
	suite.Equal("Bowl", order.Items[0].ProductName)

	suite.Equal(3, reloadStock(suite.T(), suite.db, product.ID))

	view, err := suite.cart.Get(suite.ctx, suite.user.ID)
	suite.Require().NoError(err)
	suite.Empty(view.Items)

	select {
	case <-suite.notifier.done:
	case <-time.After(2 * time.Second):
		suite.Fail("order confirmation was not sent")
	}
}

func (suite *OrderServiceTestSuite) TestCreateForGuestUsesCatalogPrices() {
	product := createProduct(suite.T(), suite.db, "Print", "19.99", 10)

	req := suite.checkout(models.PaymentMethodCreditCard,
		CheckoutItem{ProductID: product.ID, Quantity: 1},
		CheckoutItem{ProductID: product.ID, Quantity: 2},
	)
	wrong := dec("1")
	req.ClientTotal = &wrong

	order, err := suite.orders.CreateOrder(suite.ctx, nil, req)
	suite.Require().NoError(err)

	suite.Nil(order.UserID)
	suite.Equal(models.PaymentStatusPaid, order.PaymentStatus)
	suite.Require().Len(order.Items, 1)
	suite.Equal(3, order.Items[0].Quantity)
	suite.True(order.Total.Equal(dec("59.97")))
}

func (suite *OrderServiceTestSuite) TestCreateRejectsEmptyCart() {
	_, err := suite.orders.CreateOrder(suite.ctx, &suite.user.ID, suite.checkout(models.PaymentMethodBankTransfer))
	suite.ErrorIs(err, ErrEmptyCart)

	_, err = suite.orders.CreateOrder(suite.ctx, nil, suite.checkout(models.PaymentMethodBankTransfer))
	suite.ErrorIs(err, ErrEmptyCart)
}

func (suite *OrderServiceTestSuite) TestCreateRejectsInsufficientStock() {
	product := createProduct(suite.T(), suite.db, "Rare", "80", 1)

	_, err := suite.orders.CreateOrder(suite.ctx, nil, suite.checkout(models.PaymentMethodCreditCard,
		CheckoutItem{ProductID: product.ID, Quantity: 2}))
	suite.ErrorIs(err, ErrInsufficientStock)

	suite.Equal(1, reloadStock(suite.T(), suite.db, product.ID))
	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	suite.Zero(count)
}

func (suite *OrderServiceTestSuite) TestCreateRejectsUnknownProduct() {
	_, err := suite.orders.CreateOrder(suite.ctx, nil, suite.checkout(models.PaymentMethodCreditCard,
		CheckoutItem{ProductID: uuid.New(), Quantity: 1}))
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestCreateFromCartRejectsDeactivatedProduct() {
	product := createProduct(suite.T(), suite.db, "Retired", "30", 5)
	_, err := suite.cart.Add(suite.ctx, suite.user.ID, &AddToCartRequest{ProductID: product.ID})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.Model(product).Update("is_active", false).Error)

	_, err = suite.orders.CreateOrder(suite.ctx, &suite.user.ID, suite.checkout(models.PaymentMethodCashOnDelivery))
	suite.ErrorIs(err, ErrNotFound)

	suite.Equal(5, reloadStock(suite.T(), suite.db, product.ID))
	var count int64
	suite.db.Model(&models.Order{}).Count(&count)
	suite.Zero(count)
}

func (suite *OrderServiceTestSuite) TestConcurrentAddDuringCheckoutIsKept() {
	product := createProduct(suite.T(), suite.db, "Cup", "5", 100)
	add := &AddToCartRequest{ProductID: product.ID, Quantity: 1}

	const rounds = 5
	for i := 0; i < rounds; i++ {
		_, err := suite.cart.Add(suite.ctx, suite.user.ID, add)
		suite.Require().NoError(err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = suite.orders.CreateOrder(suite.ctx, &suite.user.ID, suite.checkout(models.PaymentMethodCashOnDelivery))
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = suite.cart.Add(suite.ctx, suite.user.ID, add)
		}()
		wg.Wait()
		suite.Require().NoError(errs[0])
		suite.Require().NoError(errs[1])
	}

	var ordered int64
	suite.Require().NoError(suite.db.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(quantity), 0)").Row().Scan(&ordered))

	view, err := suite.cart.Get(suite.ctx, suite.user.ID)
	suite.Require().NoError(err)
	inCart := 0
	for _, item := range view.Items {
		inCart += item.Quantity
	}

	// every unit added was either ordered or is still in the cart
	suite.Equal(2*rounds, int(ordered)+inCart)
	suite.Equal(100-int(ordered), reloadStock(suite.T(), suite.db, product.ID))
}

func (suite *OrderServiceTestSuite) TestStatusTransitions() {
	product := createProduct(suite.T(), suite.db, "Mug", "15", 4)
	order, err := suite.orders.CreateOrder(suite.ctx, nil, suite.checkout(models.PaymentMethodCreditCard,
		CheckoutItem{ProductID: product.ID, Quantity: 1}))
	suite.Require().NoError(err)

	_, err = suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatusDelivered)
	suite.ErrorIs(err, ErrInvalidTransition)

	updated, err := suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatusShipped)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusShipped, updated.Status)

	// same status is a no-op
	updated, err = suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatusShipped)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusShipped, updated.Status)

	updated, err = suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatusDelivered)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusDelivered, updated.Status)

	_, err = suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatusCancelled)
	suite.ErrorIs(err, ErrInvalidTransition)

	_, err = suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatus("Lost"))
	suite.ErrorIs(err, ErrInvalidInput)

	_, err = suite.orders.UpdateStatus(suite.ctx, uuid.New(), models.OrderStatusShipped)
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestCancelRestoresStock() {
	product := createProduct(suite.T(), suite.db, "Tile", "5", 10)
	order, err := suite.orders.CreateOrder(suite.ctx, nil, suite.checkout(models.PaymentMethodCashOnDelivery,
		CheckoutItem{ProductID: product.ID, Quantity: 4}))
	suite.Require().NoError(err)
	suite.Equal(6, reloadStock(suite.T(), suite.db, product.ID))

	_, err = suite.orders.UpdateStatus(suite.ctx, order.ID, models.OrderStatusCancelled)
	suite.Require().NoError(err)
	suite.Equal(10, reloadStock(suite.T(), suite.db, product.ID))
}

func (suite *OrderServiceTestSuite) TestOwnershipAndListing() {
	product := createProduct(suite.T(), suite.db, "Frame", "30", 10)
	other := createUser(suite.T(), suite.db, "other@example.com", models.UserRoleCustomer)

	mine, err := suite.orders.CreateOrder(suite.ctx, &suite.user.ID, suite.checkout(models.PaymentMethodCreditCard,
		CheckoutItem{ProductID: product.ID, Quantity: 1}))
	suite.Require().NoError(err)
	_, err = suite.orders.CreateOrder(suite.ctx, &other.ID, suite.checkout(models.PaymentMethodBankTransfer,
		CheckoutItem{ProductID: product.ID, Quantity: 1}))
	suite.Require().NoError(err)

	_, err = suite.orders.GetForUser(suite.ctx, other.ID, mine.ID)
	suite.ErrorIs(err, ErrNotFound)

	found, err := suite.orders.GetForUser(suite.ctx, suite.user.ID, mine.ID)
	suite.Require().NoError(err)
	suite.Equal(mine.ID, found.ID)

	params := utils.PaginationParams{Page: 1, Limit: 10, Sort: "created_at", Order: "desc"}
	orders, total, err := suite.orders.ListForUser(suite.ctx, suite.user.ID, params)
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Len(orders, 1)

	_, total, err = suite.orders.List(suite.ctx, OrderFilters{PaginationParams: params, PaymentStatus: string(models.PaymentStatusPending)})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
}

func (suite *OrderServiceTestSuite) TestListDateWindowCoversWholeDay() {
	product := createProduct(suite.T(), suite.db, "Tile", "12", 10)
	_, err := suite.orders.CreateOrder(suite.ctx, nil, suite.checkout(models.PaymentMethodCreditCard,
		CheckoutItem{ProductID: product.ID, Quantity: 1}))
	suite.Require().NoError(err)

	now := time.Now().UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)
	params := utils.PaginationParams{Page: 1, Limit: 10}

	orders, total, err := suite.orders.List(suite.ctx, OrderFilters{PaginationParams: params, From: &day, To: &nextDay})
	suite.Require().NoError(err)
	suite.EqualValues(1, total)
	suite.Len(orders, 1)

	// the upper bound is exclusive
	_, total, err = suite.orders.List(suite.ctx, OrderFilters{PaginationParams: params, From: &day, To: &day})
	suite.Require().NoError(err)
	suite.Zero(total)
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func TestCreateOrderValidatesRequest(t *testing.T) {
	db := testutil.NewDB(t)
	cart := NewCartService(db, NewDiscountService(db), NewShippingService(db))
	orders := NewOrderService(db, cart, nil)

	_, err := orders.CreateOrder(context.Background(), nil, &CreateOrderRequest{
		CustomerName:  "No Email",
		Address:       "Somewhere",
		PaymentMethod: models.PaymentMethodCreditCard,
	})
	require.Error(t, err)
	assert.NotEmpty(t, utils.GetValidationErrors(err))
}
