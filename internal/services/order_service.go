// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/models"
	"github.com/storefront/storefront-backend/internal/utils"
)

type OrderService struct {
	db *gorm.DB
}

// PaymentOutcome is the verified gateway result attached to an order
// at creation. A nil outcome produces an unpaid order.
type PaymentOutcome struct {
	PaymentID string
	Status    models.PaymentStatus
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// Create persists an order from already-validated line items. Product
// ids are normalized to their string form; the paid flag is derived
// from the outcome, never from the caller.
func (s *OrderService) Create(tx *gorm.DB, userID uuid.UUID, items []models.OrderItem, address models.ShippingAddress, paymentMethod string, totalPrice float64, outcome *PaymentOutcome) (*models.Order, error) {
	if tx == nil {
		tx = s.db
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order must contain at least one line item", ErrValidation)
	}

	order := &models.Order{
		UserID:          userID,
		ShippingAddress: address,
		PaymentMethod:   paymentMethod,
		TotalPrice:      totalPrice,
	}

	if outcome != nil && outcome.PaymentID != "" {
		now := time.Now()
		order.IsPaid = true
		order.PaidAt = &now
		order.PaymentID = outcome.PaymentID
		order.PaymentStatus = outcome.Status
	}

	if err := tx.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}
	order.Items = items

	return order, nil
}

func (s *OrderService) ListForUser(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListAll(params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total_price", "is_paid", "is_delivered"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// GetByID returns the order to its owner or an admin only.
func (s *OrderService) GetByID(orderID, requesterID uuid.UUID, isAdmin bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !isAdmin && order.UserID != requesterID {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}

	return &order, nil
}

// SetDelivered flips the delivery flag, setting or clearing the
// delivered timestamp to match.
func (s *OrderService) SetDelivered(orderID uuid.UUID, delivered bool) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").Where("id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"is_delivered": delivered,
		"delivered_at": nil,
	}
	if delivered {
		now := time.Now()
		updates["delivered_at"] = &now
	}

	if err := s.db.Model(&order).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	order.IsDelivered = delivered
	if delivered {
		now := time.Now()
		order.DeliveredAt = &now
	} else {
		order.DeliveredAt = nil
	}

	return &order, nil
}
