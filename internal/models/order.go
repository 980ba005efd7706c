// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	BaseModel
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Items           []OrderItem     `json:"order_items" gorm:"foreignKey:OrderID"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   string          `json:"payment_method" gorm:"size:50"`
	TotalPrice      float64         `json:"total_price" gorm:"type:decimal(10,2);not null"`
	IsPaid          bool            `json:"is_paid" gorm:"default:false"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	PaymentID       string          `json:"payment_id,omitempty" gorm:"size:255;index"`
	PaymentStatus   PaymentStatus   `json:"payment_status,omitempty" gorm:"type:varchar(20)"`
	IsDelivered     bool            `json:"is_delivered" gorm:"default:false"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// OrderItem is a line item copied from the cart at checkout time.
// ProductID is kept as a plain string so historical orders stay intact
// even if the referenced product is later removed.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	OrderID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index"`
	ProductID string    `json:"product" gorm:"size:64;not null;column:product_id"`
	Name      string    `json:"name" gorm:"size:255"`
	Qty       int       `json:"qty" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type ShippingAddress struct {
	Name       string `json:"name" gorm:"size:100"`
	Street     string `json:"street" gorm:"size:255"`
	City       string `json:"city" gorm:"size:100"`
	State      string `json:"state" gorm:"size:100"`
	PostalCode string `json:"postal_code" gorm:"size:20"`
	Country    string `json:"country" gorm:"size:100"`
	Phone      string `json:"phone" gorm:"size:30"`
}

// CheckoutAttempt is the durable record of one pass through the
// checkout state machine, keyed by the gateway order handle. A retried
// confirmation with the same handle resumes from the recorded state
// instead of creating a second order.
type CheckoutAttempt struct {
	BaseModel
	UserID         uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	GatewayOrderID string        `json:"gateway_order_id" gorm:"size:255;uniqueIndex"`
	State          CheckoutState `json:"state" gorm:"type:varchar(40);not null"`
	Amount         float64       `json:"amount" gorm:"type:decimal(10,2)"`
	Currency       string        `json:"currency" gorm:"size:10"`
	OrderID        *uuid.UUID    `json:"order_id,omitempty" gorm:"type:uuid"`
	LastError      string        `json:"last_error,omitempty" gorm:"type:text"`
}
