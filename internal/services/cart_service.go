// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/storefront-backend/internal/models"
)

// priceTolerance absorbs float drift between the client's displayed
// price and the catalog's stored decimal.
const priceTolerance = 0.005

type CartService struct {
	db *gorm.DB
}

type UpsertItemRequest struct {
	ProductID uuid.UUID `json:"product" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
	Price     float64   `json:"price" validate:"required,gt=0"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// Get returns the user's cart. Absence is a valid empty state, never
// an error.
func (s *CartService) Get(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("cart_items.created_at ASC")
	}).Where("user_id = ?", userID).First(&cart).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

// UpsertItem sets the line item for a product, replacing qty and price
// wholesale when the product is already in the cart. The submitted
// price must match the catalog's current price; the stored unit price
// is always the catalog's, never the caller's.
func (s *CartService) UpsertItem(userID uuid.UUID, req *UpsertItemRequest) (*models.Cart, error) {
	if req.Qty < 1 {
		return nil, fmt.Errorf("%w: qty must be a positive integer", ErrValidation)
	}
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	var product models.Product
	if err := s.db.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if math.Abs(product.Price-req.Price) > priceTolerance {
		return nil, fmt.Errorf("%w: submitted price does not match the current product price", ErrValidation)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.findOrCreateCart(tx, userID)
		if err != nil {
			return err
		}

		item := models.CartItem{
			CartID:    cart.ID,
			ProductID: req.ProductID,
			Qty:       req.Qty,
			Price:     product.Price,
		}

		// Overwrite semantics: one line item per product id
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"qty", "price", "updated_at"}),
		}).Create(&item).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert cart item: %w", err)
	}

	return s.Get(userID)
}

// RemoveItem drops the matching line item. Removing an absent product
// is a no-op.
func (s *CartService) RemoveItem(userID, productID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.Get(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.Get(userID)
}

// Clear empties the cart. Idempotent; the cart entity itself survives.
func (s *CartService) Clear(userID uuid.UUID) error {
	var cart models.Cart
	err := s.db.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *CartService) findOrCreateCart(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := tx.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &cart, nil
}
