// internal/services/helpers_test.go
package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/storefront/storefront-backend/internal/gateway"
	"github.com/storefront/storefront-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory
	// database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Review{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.CheckoutAttempt{},
	))

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string, isAdmin bool) *models.User {
	t.Helper()

	user := &models.User{
		Name:    "Test User",
		Email:   email,
		IsAdmin: isAdmin,
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:         name,
		Description:  "test product",
		Category:     "general",
		Price:        price,
		CountInStock: stock,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func createPaidOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, productID uuid.UUID, qty int, price float64) *models.Order {
	t.Helper()

	now := time.Now()
	order := &models.Order{
		UserID:        userID,
		PaymentMethod: "card",
		TotalPrice:    float64(qty) * price,
		IsPaid:        true,
		PaidAt:        &now,
		PaymentStatus: models.PaymentStatusSucceeded,
	}
	require.NoError(t, db.Create(order).Error)

	item := &models.OrderItem{
		OrderID:   order.ID,
		ProductID: productID.String(),
		Name:      "test product",
		Qty:       qty,
		Price:     price,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

// fakeGateway records created orders and serves canned payments.
type fakeGateway struct {
	orders     map[string]*gateway.OrderHandle
	payments   map[string]*gateway.PaymentRecord
	createErr  error
	nextNumber int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		orders:   make(map[string]*gateway.OrderHandle),
		payments: make(map[string]*gateway.PaymentRecord),
	}
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount float64, currency string, _ map[string]string) (*gateway.OrderHandle, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.nextNumber++
	handle := &gateway.OrderHandle{
		ID:       fmt.Sprintf("gw_order_%d", g.nextNumber),
		Amount:   amount,
		Currency: currency,
	}
	g.orders[handle.ID] = handle
	return handle, nil
}

func (g *fakeGateway) VerifyPayment(_ context.Context, paymentID string) (*gateway.PaymentRecord, error) {
	record, ok := g.payments[paymentID]
	if !ok {
		return nil, gateway.ErrPaymentNotFound
	}
	return record, nil
}

// settle registers a succeeded payment for a previously created
// gateway order.
func (g *fakeGateway) settle(handleID string) string {
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
