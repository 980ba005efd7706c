// internal/services/checkout_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/cache"
	"github.com/storefront/storefront-backend/internal/database"
	"github.com/storefront/storefront-backend/internal/gateway"
	"github.com/storefront/storefront-backend/internal/models"
	"github.com/storefront/storefront-backend/internal/utils"
)

const (
	checkoutLockTTL = 30 * time.Second
	amountTolerance = 0.01
)

// CheckoutService walks a cart through the checkout state machine:
// address validation, gateway order creation, server-side payment
// verification, order persistence with stock decrement, cart clear.
// Each pass is recorded on a CheckoutAttempt keyed by the gateway
// order handle, so a retried confirmation resumes instead of creating
// a second order. A per-user lock keeps concurrent attempts against
// the same cart from racing.
type CheckoutService struct {
	db       *gorm.DB
	carts    *CartService
	orders   *OrderService
	gateway  gateway.Gateway
	cache    cache.Cache
	currency string
}

// ConfirmCheckoutRequest is the order confirmation body. Line items
// and the paid flag are intentionally absent: items are snapshotted
// from the server-side cart and the paid state is derived from
// gateway verification, never from the client.
type ConfirmCheckoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
	TotalPrice      float64                `json:"total_price" validate:"required,gt=0"`
	PaymentID       string                 `json:"payment_id,omitempty"`
}

func NewCheckoutService(db *gorm.DB, carts *CartService, orders *OrderService, gw gateway.Gateway, c cache.Cache, currency string) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	return &CheckoutService{
		db:       db,
		carts:    carts,
		orders:   orders,
		gateway:  gw,
		cache:    c,
		currency: currency,
	}
}

// BeginCheckout prices the current cart against the catalog, creates a
// gateway order for that total and records the attempt. The declared
// amount is checked against the derived total rather than trusted.
func (s *CheckoutService) BeginCheckout(ctx context.Context, userID uuid.UUID, declaredAmount float64) (*gateway.OrderHandle, error) {
	cart, err := s.carts.Get(userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	total, _, err := s.priceCart(cart)
	if err != nil {
		return nil, err
	}

	if declaredAmount > 0 && math.Abs(declaredAmount-total) > amountTolerance {
		return nil, fmt.Errorf("%w: declared amount %.2f does not match cart total %.2f", ErrValidation, declaredAmount, total)
	}

	handle, err := s.gateway.CreateOrder(ctx, total, s.currency, map[string]string{
		"user_id": userID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	attempt := &models.CheckoutAttempt{
		UserID:         userID,
		GatewayOrderID: handle.ID,
		State:          models.CheckoutStateGatewayOrderCreated,
		Amount:         total,
		Currency:       handle.Currency,
	}
	if err := s.db.Create(attempt).Error; err != nil {
		return nil, fmt.Errorf("failed to record checkout attempt: %w", err)
	}

	// Handle goes to the client widget; payment is now client-driven
	s.setState(attempt, models.CheckoutStateAwaitingPayment, "")

	return handle, nil
}

// CompleteCheckout runs the remaining transitions once the client
// reports payment (or chooses an offline method). The payment id is
// verified against the gateway before anything is marked paid.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, userID uuid.UUID, req *ConfirmCheckoutRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := validateShippingAddress(&req.ShippingAddress); err != nil {
		return nil, err
	}

	// Single-flight per user: two concurrent confirmations of the same
	// cart must not both reach the order store.
	lockKey := "checkout:lock:" + userID.String()
	token, err := utils.GenerateRandomString(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate lock token: %w", err)
	}
	lock, ok, err := cache.AcquireLock(ctx, s.cache, lockKey, token, checkoutLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: another checkout is already in progress", ErrConflict)
	}
	defer lock.Release(ctx)

	if req.PaymentID != "" {
		return s.completePaid(ctx, userID, req)
	}
	return s.completeUnpaid(ctx, userID, req)
}

func (s *CheckoutService) completePaid(ctx context.Context, userID uuid.UUID, req *ConfirmCheckoutRequest) (*models.Order, error) {
	record, err := s.gateway.VerifyPayment(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%w: payment could not be verified", ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if !record.Succeeded {
		return nil, fmt.Errorf("%w: payment has not succeeded", ErrValidation)
	}

	attempt, err := s.findAttempt(userID, record.OrderID)
	if err != nil {
		return nil, err
	}

	// Replays: the order already exists, finish or echo as needed
	switch attempt.State {
	case models.CheckoutStateCartCleared:
		return s.attemptOrder(userID, attempt)
	case models.CheckoutStateOrderPersisted:
		order, err := s.attemptOrder(userID, attempt)
		if err != nil {
			return nil, err
		}
		s.clearCart(userID, attempt)
		return order, nil
	}

	if math.Abs(record.Amount-attempt.Amount) > amountTolerance {
		return nil, fmt.Errorf("%w: paid amount %.2f does not match checkout amount %.2f", ErrValidation, record.Amount, attempt.Amount)
	}

	outcome := &PaymentOutcome{PaymentID: record.ID, Status: models.PaymentStatusSucceeded}
	order, err := s.persistOrder(userID, req, attempt, record.Amount, outcome)
	if err != nil {
		return nil, err
	}

	s.clearCart(userID, attempt)
	return order, nil
}

// completeUnpaid covers offline payment methods: no gateway handle
// exists yet, so the attempt starts at idle and the order stays
// unpaid.
func (s *CheckoutService) completeUnpaid(ctx context.Context, userID uuid.UUID, req *ConfirmCheckoutRequest) (*models.Order, error) {
	ref, err := utils.GenerateRandomString(24)
	if err != nil {
		return nil, fmt.Errorf("failed to generate checkout reference: %w", err)
	}

	attempt := &models.CheckoutAttempt{
		UserID:         userID,
		GatewayOrderID: "offline_" + ref,
		State:          models.CheckoutStateIdle,
		Currency:       s.currency,
	}
	if err := s.db.Create(attempt).Error; err != nil {
		return nil, fmt.Errorf("failed to record checkout attempt: %w", err)
	}

	s.setState(attempt, models.CheckoutStateAddressValidated, "")

	order, err := s.persistOrder(userID, req, attempt, req.TotalPrice, nil)
	if err != nil {
		return nil, err
	}

	s.clearCart(userID, attempt)
	return order, nil
}

// persistOrder snapshots the cart, re-derives the total from the
// catalog, and writes order, line items and stock decrements in one
// transaction.
func (s *CheckoutService) persistOrder(userID uuid.UUID, req *ConfirmCheckoutRequest, attempt *models.CheckoutAttempt, paidAmount float64, outcome *PaymentOutcome) (*models.Order, error) {
	cart, err := s.carts.Get(userID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	total, items, err := s.priceCart(cart)
	if err != nil {
		return nil, err
	}

	if math.Abs(paidAmount-total) > amountTolerance {
		return nil, fmt.Errorf("%w: amount %.2f does not match cart total %.2f", ErrValidation, paidAmount, total)
	}

	var order *models.Order
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		for _, item := range cart.Items {
			result := tx.Model(&models.Product{}).
				Where("id = ? AND count_in_stock >= ?", item.ProductID, item.Qty).
				Update("count_in_stock", gorm.Expr("count_in_stock - ?", item.Qty))
			if result.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: insufficient stock for product %s", ErrConflict, item.ProductID)
			}
		}

		order, err = s.orders.Create(tx, userID, items, req.ShippingAddress, req.PaymentMethod, total, outcome)
		if err != nil {
			return err
		}

		return tx.Model(attempt).Updates(map[string]interface{}{
			"state":    models.CheckoutStateOrderPersisted,
			"order_id": order.ID,
		}).Error
	})
	if err != nil {
		s.setState(attempt, attempt.State, err.Error())
		return nil, err
	}

	attempt.State = models.CheckoutStateOrderPersisted
	attempt.OrderID = &order.ID
	return order, nil
}

// clearCart is the final transition. A failure here leaves the attempt
// at order_persisted with the error recorded, so a replayed
// confirmation finishes the clear instead of minting a second order.
func (s *CheckoutService) clearCart(userID uuid.UUID, attempt *models.CheckoutAttempt) {
	if err := s.carts.Clear(userID); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,
			"attempt_id": attempt.ID,
		}).WithError(err).Warn("Order persisted but cart clear failed")
		s.setState(attempt, attempt.State, err.Error())
		return
	}
	s.setState(attempt, models.CheckoutStateCartCleared, "")
}

// priceCart converts cart items to order line items priced from the
// catalog's current prices, not the cart's captured ones.
func (s *CheckoutService) priceCart(cart *models.Cart) (float64, []models.OrderItem, error) {
	var total float64
	items := make([]models.OrderItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		var product models.Product
		if err := s.db.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, nil, fmt.Errorf("%w: product %s is no longer available", ErrConflict, item.ProductID)
			}
			return 0, nil, fmt.Errorf("database error: %w", err)
		}
		if product.CountInStock < item.Qty {
			return 0, nil, fmt.Errorf("%w: insufficient stock for %s", ErrConflict, product.Name)
		}

		total += float64(item.Qty) * product.Price
		items = append(items, models.OrderItem{
			ProductID: item.ProductID.String(),
			Name:      product.Name,
			Qty:       item.Qty,
			Price:     product.Price,
		})
	}

	return total, items, nil
}

func (s *CheckoutService) findAttempt(userID uuid.UUID, gatewayOrderID string) (*models.CheckoutAttempt, error) {
	var attempt models.CheckoutAttempt
	err := s.db.Where("gateway_order_id = ?", gatewayOrderID).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: unknown gateway order", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: checkout belongs to another user", ErrForbidden)
	}
	return &attempt, nil
}

func (s *CheckoutService) attemptOrder(userID uuid.UUID, attempt *models.CheckoutAttempt) (*models.Order, error) {
	if attempt.OrderID == nil {
		return nil, fmt.Errorf("%w: order", ErrNotFound)
	}
	return s.orders.GetByID(*attempt.OrderID, userID, false)
}

// PayOrder settles an existing unpaid order. The payment id is
// verified with the gateway and its amount checked against the order
// total before the paid flag flips.
func (s *CheckoutService) PayOrder(ctx context.Context, orderID, requesterID uuid.UUID, isAdmin bool, paymentID string) (*models.Order, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrValidation)
	}

	order, err := s.orders.GetByID(orderID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}
	if order.IsPaid {
		return order, nil
	}

	record, err := s.gateway.VerifyPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%w: payment could not be verified", ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if !record.Succeeded {
		return nil, fmt.Errorf("%w: payment has not succeeded", ErrValidation)
	}
	if math.Abs(record.Amount-order.TotalPrice) > amountTolerance {
		return nil, fmt.Errorf("%w: paid amount %.2f does not match order total %.2f", ErrValidation, record.Amount, order.TotalPrice)
	}

	// One gateway payment settles one order
	var settled int64
	if err := s.db.Model(&models.Order{}).
		Where("payment_id = ?", record.ID).
		Count(&settled).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if settled > 0 {
		return nil, fmt.Errorf("%w: payment %s already settled another order", ErrConflict, record.ID)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"is_paid":        true,
		"paid_at":        &now,
		"payment_id":     record.ID,
		"payment_status": models.PaymentStatusSucceeded,
	}
	if err := s.db.Model(order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentID = record.ID
	order.PaymentStatus = models.PaymentStatusSucceeded
	return order, nil
}

func (s *CheckoutService) setState(attempt *models.CheckoutAttempt, state models.CheckoutState, lastError string) {
	updates := map[string]interface{}{
		"state":      state,
		"last_error": lastError,
	}
	if err := s.db.Model(attempt).Updates(updates).Error; err != nil {
		logrus.WithError(err).WithField("attempt_id", attempt.ID).
			Error("Failed to update checkout attempt state")
		return
	}
	attempt.State = state
	attempt.LastError = lastError
}

func validateShippingAddress(addr *models.ShippingAddress) error {
	fields := map[string]string{
		"name":        addr.Name,
		"street":      addr.Street,
		"city":        addr.City,
		"state":       addr.State,
		"postal code": addr.PostalCode,
		"country":     addr.Country,
		"phone":       addr.Phone,
	}

	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing shipping address fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if err := utils.ValidateField(addr.PostalCode, "postal_code"); err != nil {
		return fmt.Errorf("%w: postal code format is invalid", ErrValidation)
	}
	return nil
}
