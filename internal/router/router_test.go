package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/services"
	"github.com/javajoker/storefront-backend/internal/testutil"
	"github.com/javajoker/storefront-backend/internal/utils"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta map[string]interface{} `json:"meta"`
}

type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	cfg    *config.Config
	router *gin.Engine
}

func (suite *RouterTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(i18n.Initialize("../i18n/locales", "en"))
}

func (suite *RouterTestSuite) SetupTest() {
	suite.cfg = &config.Config{
		Environment: "test",
		JWT:         config.JWTConfig{SecretKey: "test-secret", ResetTokenTTL: 30},
		Session:     config.SessionConfig{CookieName: "user_session", TTLHours: 1},
		Payment:     config.PaymentConfig{Currency: "try"},
		Frontend:    config.FrontendConfig{BaseURL: "http://shop.test", AllowedOrigins: []string{"http://shop.test"}},
		I18n:        config.I18nConfig{DefaultLocale: "en"},
		Storage:     config.StorageConfig{Driver: "local", LocalDir: suite.T().TempDir(), LocalBaseURL: "/uploads"},
	}
	utils.SetJWTSecret(suite.cfg.JWT.SecretKey)

	suite.db = testutil.NewDB(suite.T())
	storage, err := services.NewStorageService(context.Background(), suite.cfg)
	suite.Require().NoError(err)

	suite.router = Initialize(suite.db, suite.cfg, Dependencies{
		Sessions: services.NewDBSessionStore(suite.db, time.Hour),
		Storage:  storage,
		Notifier: services.NewNotificationService(suite.cfg),
	})
}

func (suite *RouterTestSuite) request(method, path, token string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(jsonData)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response apiResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (suite *RouterTestSuite) decode(raw json.RawMessage, v interface{}) {
	suite.Require().NoError(json.Unmarshal(raw, v))
}

// register signs a user up and returns its session token.
func (suite *RouterTestSuite) register(email string) (string, *models.User) {
	w, response := suite.request("POST", "/v1/auth/register", "", map[string]interface{}{
		"name":     "Test User",
		"email":    email,
		"password": "Password123",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	suite.decode(response.Data, &data)
	return data.Token, data.User
}

func (suite *RouterTestSuite) staff(email string, role models.UserRole) string {
	token, user := suite.register(email)
	suite.Require().NoError(suite.db.Model(&models.User{}).Where("id = ?", user.ID).Update("role", role).Error)
	return token
}

func (suite *RouterTestSuite) product(name, price string, stock int) *models.Product {
	product := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock, IsActive: true}
	suite.Require().NoError(suite.db.Create(product).Error)
	return product
}

func (suite *RouterTestSuite) TestHealth() {
	w, _ := suite.request("GET", "/health", "", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *RouterTestSuite) TestRegisterAndLogin() {
	w, response := suite.request("POST", "/v1/auth/register", "", map[string]interface{}{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "Password123",
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	suite.True(response.Success)

	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)
	suite.Equal("user_session", cookies[0].Name)
	suite.True(cookies[0].HttpOnly)

	// the cookie alone authenticates
	req, _ := http.NewRequest("GET", "/v1/auth/me", nil)
	req.AddCookie(cookies[0])
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)

	w, response = suite.request("POST", "/v1/auth/register", "", map[string]interface{}{
		"name":     "Again",
		"email":    "test@example.com",
		"password": "Password123",
	})
	suite.Equal(http.StatusConflict, w.Code)
	suite.False(response.Success)

	w, _ = suite.request("POST", "/v1/auth/login", "", map[string]interface{}{
		"email":    "  Test@Example.com ",
		"password": "Password123",
	})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w, response = suite.request("POST", "/v1/auth/login", "", map[string]interface{}{
		"email":    "test@example.com",
		"password": "WrongPass123",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("UNAUTHORIZED", response.Error.Code)
}

func (suite *RouterTestSuite) TestValidationErrors() {
	w, response := suite.request("POST", "/v1/auth/register", "", map[string]interface{}{
		"name":     "x",
		"email":    "not-an-email",
		"password": "short",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("VALIDATION_ERROR", response.Error.Code)

	w, _ = suite.request("GET", "/v1/products/not-a-uuid", "", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestLocalizedMessages() {
	req, _ := http.NewRequest("GET", "/v1/auth/me", nil)
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)

	var response apiResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.NotEqual(i18n.T("en", i18n.KeyAuthRequired), response.Error.Message)
	suite.Equal(i18n.T("tr", i18n.KeyAuthRequired), response.Error.Message)
}

func (suite *RouterTestSuite) TestCartCheckoutFlow() {
	token, _ := suite.register("buyer@example.com")
	lamp := suite.product("Lamp", "100", 5)

	suite.Require().NoError(suite.db.Create(&models.ShippingSettings{
		ShippingCost:          decimal.RequireFromString("30"),
		FreeShippingThreshold: decimal.NewNullDecimal(decimal.RequireFromString("500")),
		IsActive:              true,
	}).Error)

	w, _ := suite.request("POST", "/v1/cart/items", "", map[string]interface{}{"product_id": lamp.ID})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, response := suite.request("POST", "/v1/cart/items", token, map[string]interface{}{
		"product_id": lamp.ID,
		"quantity":   2,
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var cart struct {
		Cart services.CartView `json:"cart"`
	}
	suite.decode(response.Data, &cart)
	suite.Len(cart.Cart.Items, 1)
	suite.Equal("230", cart.Cart.Totals.Total.String())

	w, response = suite.request("POST", "/v1/orders", token, map[string]interface{}{
		"customer_name":  "Buyer",
		"customer_email": "buyer@example.com",
		"address":        "Bahariye Cd. 5, Istanbul",
		"payment_method": "CASH_ON_DELIVERY",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Order models.Order `json:"order"`
	}
	suite.decode(response.Data, &created)
	suite.Equal(models.OrderStatusPreparing, created.Order.Status)
	suite.Equal(models.PaymentStatusPending, created.Order.PaymentStatus)
	suite.Equal("230", created.Order.Total.String())

	w, response = suite.request("GET", "/v1/cart", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(response.Data, &cart)
	suite.Empty(cart.Cart.Items)

	w, response = suite.request("GET", "/v1/orders", token, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	pagination := response.Meta["pagination"].(map[string]interface{})
	suite.EqualValues(1, pagination["total"])

	w, _ = suite.request("GET", "/v1/orders/"+created.Order.ID.String()+"/invoice", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))

	// an empty cart cannot be checked out
	w, _ = suite.request("POST", "/v1/orders", token, map[string]interface{}{
		"customer_name":  "Buyer",
		"customer_email": "buyer@example.com",
		"address":        "Bahariye Cd. 5, Istanbul",
		"payment_method": "CASH_ON_DELIVERY",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *RouterTestSuite) TestGuestCheckout() {
	lamp := suite.product("Lamp", "100", 1)

	w, response := suite.request("POST", "/v1/cart/guest/totals", "", map[string]interface{}{
		"items": []map[string]interface{}{{"product_id": lamp.ID, "quantity": 1}},
	})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var cart struct {
		Cart services.CartView `json:"cart"`
	}
	suite.decode(response.Data, &cart)
	suite.Equal("100", cart.Cart.Totals.Total.String())

	order := map[string]interface{}{
		"customer_name":  "Guest",
		"customer_email": "guest@example.com",
		"address":        "Moda Cd. 1, Istanbul",
		"payment_method": "BANK_TRANSFER",
		"items":          []map[string]interface{}{{"product_id": lamp.ID, "quantity": 2}},
	}
	w, response = suite.request("POST", "/v1/orders", "", order)
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("OUT_OF_STOCK", response.Error.Code)

	order["items"] = []map[string]interface{}{{"product_id": lamp.ID, "quantity": 1}}
	w, _ = suite.request("POST", "/v1/orders", "", order)
	suite.Equal(http.StatusCreated, w.Code)
}

func (suite *RouterTestSuite) TestAdminGuards() {
	customer, _ := suite.register("customer@example.com")
	editor := suite.staff("editor@example.com", models.UserRoleEditor)

	w, _ := suite.request("GET", "/v1/admin/orders", "", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w, response := suite.request("GET", "/v1/admin/orders", customer, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal("FORBIDDEN", response.Error.Code)

	w, _ = suite.request("GET", "/v1/admin/orders", editor, nil)
	suite.Equal(http.StatusOK, w.Code)

	// editors manage the catalog but not money or accounts
	w, _ = suite.request("GET", "/v1/admin/discounts", editor, nil)
	suite.Equal(http.StatusForbidden, w.Code)
	w, _ = suite.request("GET", "/v1/admin/users", editor, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *RouterTestSuite) TestOrderStatusTransitions() {
	admin := suite.staff("admin@example.com", models.UserRoleAdmin)
	lamp := suite.product("Lamp", "100", 3)

	w, response := suite.request("POST", "/v1/orders", "", map[string]interface{}{
		"customer_name":  "Guest",
		"customer_email": "guest@example.com",
		"address":        "Moda Cd. 1, Istanbul",
		"payment_method": "CREDIT_CARD",
		"items":          []map[string]interface{}{{"product_id": lamp.ID, "quantity": 1}},
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Order models.Order `json:"order"`
	}
	suite.decode(response.Data, &created)
	suite.Equal(models.PaymentStatusPaid, created.Order.PaymentStatus)
	path := "/v1/admin/orders/" + created.Order.ID.String() + "/status"

	// a bare end date includes orders placed during that day
	today := time.Now().UTC().Format("2006-01-02")
	w, response = suite.request("GET", "/v1/admin/orders?from="+today+"&to="+today, admin, nil)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.EqualValues(1, response.Meta["pagination"].(map[string]interface{})["total"])

	w, response = suite.request("PUT", path, admin, map[string]interface{}{"status": models.OrderStatusDelivered})
	suite.Equal(http.StatusConflict, w.Code)
	suite.Equal("INVALID_TRANSITION", response.Error.Code)

	w, response = suite.request("PUT", path, admin, map[string]interface{}{"status": "Unknown"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w, _ = suite.request("PUT", "/v1/admin/orders/status", admin, map[string]interface{}{
		"id":     created.Order.ID,
		"status": models.OrderStatusShipped,
	})
	suite.Equal(http.StatusOK, w.Code)

	w, _ = suite.request("PUT", path, admin, map[string]interface{}{"status": models.OrderStatusCancelled})
	suite.Equal(http.StatusOK, w.Code)

	var restocked models.Product
	suite.Require().NoError(suite.db.First(&restocked, "id = ?", lamp.ID).Error)
	suite.Equal(3, restocked.Stock)

	// successful admin writes are audited
	w, response = suite.request("GET", "/v1/admin/audit-logs?resource_type=orders", admin, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	var logs []models.AuditLog
	suite.decode(response.Data, &logs)
	suite.Len(logs, 2)

	w, _ = suite.request("GET", "/v1/admin/orders/export", admin, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Header().Get("Content-Disposition"), ".xlsx")
}

func (suite *RouterTestSuite) TestQRCodeImage() {
	token, _ := suite.register("qr@example.com")

	w, response := suite.request("POST", "/v1/qr-codes", token, map[string]interface{}{
		"name":    "Shop",
		"content": "https://shop.test",
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		QRCode models.QRCode `json:"qr_code"`
	}
	suite.decode(response.Data, &created)

	w, _ = suite.request("GET", "/v1/qr-codes/"+created.QRCode.ID.String()+"/image", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("image/png", w.Header().Get("Content-Type"))
	suite.True(bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func TestNewLimiters(t *testing.T) {
	general, auth, upload := NewLimiters(config.RateLimitConfig{
		GeneralPerSecond: 10, GeneralBurst: 20,
		AuthPerMinute: 5, AuthBurst: 5,
		UploadPerMinute: 10, UploadBurst: 3,
	})
	require.NotNil(t, general)
	require.NotNil(t, auth)
	assert.NotNil(t, upload)
}
