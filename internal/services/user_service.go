// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/storefront/storefront-backend/internal/models"
)

// UserService owns wishlist membership. The wishlist is a set: adds of
// a present id conflict, removes of an absent id are no-ops.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetWishlist(userID uuid.UUID) ([]string, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Wishlist == nil {
		return []string{}, nil
	}
	return user.Wishlist, nil
}

func (s *UserService) AddToWishlist(userID uuid.UUID, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}

	user, err := s.getUser(userID)
	if err != nil {
		return err
	}

	if user.InWishlist(productID) {
		return fmt.Errorf("%w: product already in wishlist", ErrConflict)
	}

	wishlist := append(user.Wishlist, productID)
	if err := s.db.Model(user).Update("wishlist", pq.StringArray(wishlist)).Error; err != nil {
		return fmt.Errorf("failed to update wishlist: %w", err)
	}
	return nil
}

func (s *UserService) RemoveFromWishlist(userID uuid.UUID, productID string) error {
	if productID == "" {
		return fmt.Errorf("%w: product id is required", ErrValidation)
	}

	user, err := s.getUser(userID)
	if err != nil {
		return err
	}

	wishlist := make([]string, 0, len(user.Wishlist))
	for _, id := range user.Wishlist {
		if id != productID {
			wishlist = append(wishlist, id)
		}
	}

	if len(wishlist) == len(user.Wishlist) {
		// Absent id, nothing to do
		return nil
	}

	if err := s.db.Model(user).Update("wishlist", pq.StringArray(wishlist)).Error; err != nil {
		return fmt.Errorf("failed to update wishlist: %w", err)
	}
	return nil
}

func (s *UserService) getUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
