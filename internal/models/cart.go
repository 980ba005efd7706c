// internal/models/cart.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cart is keyed 1:1 by user. It is created lazily on first add and
// never deleted; clearing just empties the item list.
type Cart struct {
	BaseModel
	UserID uuid.UUID  `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Items  []CartItem `json:"cart_items" gorm:"foreignKey:CartID"`
}

// CartItem holds the unit price captured at add-time. At most one item
// per product id exists in a cart; re-adding overwrites qty and price.
// Line items are hard-deleted, so no DeletedAt here: a tombstone would
// collide with the unique (cart_id, product_id) index on re-add.
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CartID    uuid.UUID `json:"-" gorm:"type:uuid;not null;index:idx_cart_product,unique"`
	ProductID uuid.UUID `json:"product" gorm:"type:uuid;not null;index:idx_cart_product,unique"`
	Qty       int       `json:"qty" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Total is the sum of qty x price over the cart's line items.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += float64(item.Qty) * item.Price
	}
	return total
}
