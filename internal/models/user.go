// internal/models/user.go
package models

import (
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Name         string         `json:"name" gorm:"size:100;not null"`
	Email        string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"`
	IsAdmin      bool           `json:"is_admin" gorm:"default:false"`
	Wishlist     pq.StringArray `json:"wishlist" gorm:"type:text[]"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// InWishlist reports whether the product id is already saved.
func (u *User) InWishlist(productID string) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}
