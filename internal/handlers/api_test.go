// internal/handlers/api_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefront/storefront-backend/internal/cache"
	"github.com/storefront/storefront-backend/internal/config"
	"github.com/storefront/storefront-backend/internal/gateway"
	"github.com/storefront/storefront-backend/internal/middleware"
	"github.com/storefront/storefront-backend/internal/models"
	"github.com/storefront/storefront-backend/internal/services"
	"github.com/storefront/storefront-backend/internal/utils"
)

type stubGateway struct {
	orders   map[string]*gateway.OrderHandle
	payments map[string]*gateway.PaymentRecord
	seq      int
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		orders:   make(map[string]*gateway.OrderHandle),
		payments: make(map[string]*gateway.PaymentRecord),
	}
}

func (g *stubGateway) CreateOrder(_ context.Context, amount float64, currency string, _ map[string]string) (*gateway.OrderHandle, error) {
	g.seq++
	handle := &gateway.OrderHandle{
		ID:       fmt.Sprintf("gw_%d", g.seq),
		Amount:   amount,
		Currency: currency,
	}
	g.orders[handle.ID] = handle
	return handle, nil
}

func (g *stubGateway) VerifyPayment(_ context.Context, paymentID string) (*gateway.PaymentRecord, error) {
	record, ok := g.payments[paymentID]
	if !ok {
		return nil, gateway.ErrPaymentNotFound
	}
	return record, nil
}

func (g *stubGateway) settle(handleID string) string {
	handle := g.orders[handleID]
	paymentID := "pay_" + handleID
	g.payments[paymentID] = &gateway.PaymentRecord{
		ID:        paymentID,
		OrderID:   handle.ID,
		Amount:    handle.Amount,
		Currency:  handle.Currency,
		Succeeded: true,
	}
	return paymentID
}

type APITestSuite struct {
	suite.Suite
	db      *gorm.DB
	router  *gin.Engine
	gateway *stubGateway
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(suite.T(), err)
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Review{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{}, &models.CheckoutAttempt{},
	))
	suite.db = db

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "test-secret"
	cfg.JWT.AccessTokenTTL = 24
	cfg.Payment.Currency = "usd"
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	suite.gateway = newStubGateway()

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db)
	checkoutService := services.NewCheckoutService(db, cartService, orderService, suite.gateway, cache.NewMemoryCache(), "usd")

	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	productHandler := NewProductHandler(productService, nil)
	cartHandler := NewCartHandler(cartService)
	orderHandler := NewOrderHandler(orderService, checkoutService)
	paymentHandler := NewPaymentHandler(checkoutService)

	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", middleware.AuthRequired(), authHandler.Me)
		api.GET("/auth/wishlist", middleware.AuthRequired(), userHandler.GetWishlist)
		api.POST("/auth/wishlist", middleware.AuthRequired(), userHandler.AddToWishlist)
		api.DELETE("/auth/wishlist", middleware.AuthRequired(), userHandler.RemoveFromWishlist)

		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)
		api.POST("/products", middleware.AuthRequired(), middleware.AdminRequired(), productHandler.Create)
		api.POST("/products/:id/reviews", middleware.AuthRequired(), productHandler.AddReview)

		api.GET("/cart", middleware.AuthRequired(), cartHandler.Get)
		api.POST("/cart/add", middleware.AuthRequired(), cartHandler.Add)

		api.POST("/orders", middleware.AuthRequired(), orderHandler.Create)
		api.GET("/orders/myorders", middleware.AuthRequired(), orderHandler.MyOrders)
		api.GET("/orders/:id", middleware.AuthRequired(), orderHandler.Get)

		api.POST("/payment/create-order", middleware.AuthRequired(), paymentHandler.CreateOrder)
	}
	suite.router = r
}

func (suite *APITestSuite) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}

	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (suite *APITestSuite) registerUser(email string) string {
	w := suite.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(suite.T(), http.StatusCreated, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	return data["token"].(string)
}

func (suite *APITestSuite) adminToken() string {
	admin := &models.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true}
	require.NoError(suite.T(), admin.SetPassword("admin123"))
	require.NoError(suite.T(), suite.db.Create(admin).Error)

	w := suite.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "admin@example.com",
		"password": "admin123",
	})
	require.Equal(suite.T(), http.StatusOK, w.Code)

	data := suite.decode(w)["data"].(map[string]interface{})
	return data["token"].(string)
}

func (suite *APITestSuite) TestRegisterAndMe() {
	token := suite.registerUser("alice@example.com")

	w := suite.request(http.MethodGet, "/api/auth/me", token, nil)
	suite.Equal(http.StatusOK, w.Code)

	resp := suite.decode(w)
	suite.True(resp["success"].(bool))
	user := resp["data"].(map[string]interface{})["user"].(map[string]interface{})
	suite.Equal("alice@example.com", user["email"])
}

func (suite *APITestSuite) TestRegisterDuplicateEmail() {
	suite.registerUser("alice@example.com")

	w := suite.request(http.MethodPost, "/api/auth/register", "", gin.H{
		"name":     "Mallory",
		"email":    "alice@example.com",
		"password": "other456",
	})
	suite.Equal(http.StatusConflict, w.Code)

	resp := suite.decode(w)
	suite.False(resp["success"].(bool))
}

func (suite *APITestSuite) TestLoginWrongPassword() {
	suite.registerUser("alice@example.com")

	w := suite.request(http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *APITestSuite) TestProtectedRoutesRequireToken() {
	suite.Equal(http.StatusUnauthorized, suite.request(http.MethodGet, "/api/cart", "", nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.request(http.MethodGet, "/api/orders/myorders", "", nil).Code)
	suite.Equal(http.StatusUnauthorized, suite.request(http.MethodGet, "/api/auth/wishlist", "", nil).Code)
}

func (suite *APITestSuite) TestProductCreateRequiresAdmin() {
	token := suite.registerUser("alice@example.com")

	w := suite.request(http.MethodPost, "/api/products", token, gin.H{
		"name":  "Webcam",
		"price": 80,
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestWishlistFlow() {
	token := suite.registerUser("alice@example.com")

	w := suite.request(http.MethodPost, "/api/auth/wishlist", token, gin.H{"product_id": "prod-1"})
	suite.Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/wishlist", token, gin.H{"product_id": "prod-1"})
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodGet, "/api/auth/wishlist", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	data := suite.decode(w)["data"].(map[string]interface{})
	suite.Len(data["wishlist"], 1)

	w = suite.request(http.MethodDelete, "/api/auth/wishlist", token, gin.H{"product_id": "prod-1"})
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestCheckoutFlow() {
	adminToken := suite.adminToken()

	w := suite.request(http.MethodPost, "/api/products", adminToken, gin.H{
		"name":           "Keyboard",
		"price":          50,
		"count_in_stock": 10,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	product := suite.decode(w)["data"].(map[string]interface{})
	productID := product["id"].(string)

	token := suite.registerUser("buyer@example.com")

	// Add to cart at the catalog price
	w = suite.request(http.MethodPost, "/api/cart/add", token, gin.H{
		"product": productID,
		"qty":     2,
		"price":   50,
	})
	suite.Require().Equal(http.StatusOK, w.Code)

	// Wrong price is refused
	w = suite.request(http.MethodPost, "/api/cart/add", token, gin.H{
		"product": productID,
		"qty":     1,
		"price":   1,
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	// Open the gateway order
	w = suite.request(http.MethodPost, "/api/payment/create-order", token, gin.H{"amount": 100})
	suite.Require().Equal(http.StatusOK, w.Code)
	handle := suite.decode(w)["data"].(map[string]interface{})
	suite.Equal(100.0, handle["amount"])
	paymentID := suite.gateway.settle(handle["id"].(string))

	// Confirm the order
	w = suite.request(http.MethodPost, "/api/orders", token, gin.H{
		"shipping_address": gin.H{
			"name":        "Buyer",
			"street":      "1 Main St",
			"city":        "Springfield",
			"state":       "IL",
			"postal_code": "62704",
			"country":     "US",
			"phone":       "+1 555 0100",
		},
		"payment_method": "card",
		"total_price":    100,
		"payment_id":     paymentID,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	order := suite.decode(w)["data"].(map[string]interface{})
	suite.True(order["is_paid"].(bool))

	// Cart is now empty
	w = suite.request(http.MethodGet, "/api/cart", token, nil)
	suite.Equal(http.StatusOK, w.Code)
	cartData := suite.decode(w)["data"].(map[string]interface{})
	suite.Len(cartData["cart_items"], 0)

	// Order shows up for the buyer
	w = suite.request(http.MethodGet, "/api/orders/myorders", token, nil)
	suite.Equal(http.StatusOK, w.Code)

	// Review unlocks after the paid purchase
	w = suite.request(http.MethodPost, "/api/products/"+productID+"/reviews", token, gin.H{
		"rating":  5,
		"comment": "clicky",
	})
	suite.Equal(http.StatusCreated, w.Code)

	// Another user cannot read the order
	otherToken := suite.registerUser("other@example.com")
	orderID := order["id"].(string)
	w = suite.request(http.MethodGet, "/api/orders/"+orderID, otherToken, nil)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestReviewWithoutPurchaseForbidden() {
	adminToken := suite.adminToken()

	w := suite.request(http.MethodPost, "/api/products", adminToken, gin.H{
		"name":           "Monitor",
		"price":          150,
		"count_in_stock": 5,
	})
	suite.Require().Equal(http.StatusCreated, w.Code)
	productID := suite.decode(w)["data"].(map[string]interface{})["id"].(string)

	token := suite.registerUser("gazer@example.com")
	w = suite.request(http.MethodPost, "/api/products/"+productID+"/reviews", token, gin.H{
		"rating":  5,
		"comment": "nice",
	})
	suite.Equal(http.StatusForbidden, w.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
