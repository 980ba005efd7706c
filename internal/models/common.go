// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// CheckoutState tracks how far a checkout attempt has progressed.
// States only move forward; a failed step leaves the attempt at its
// last reached state so a retry can resume instead of starting over.
type CheckoutState string

const (
	CheckoutStateIdle                CheckoutState = "idle"
	CheckoutStateAddressValidated    CheckoutState = "address_validated"
	CheckoutStateGatewayOrderCreated CheckoutState = "gateway_order_created"
	CheckoutStateAwaitingPayment     CheckoutState = "awaiting_payment_confirmation"
	CheckoutStateOrderPersisted      CheckoutState = "order_persisted"
	CheckoutStateCartCleared         CheckoutState = "cart_cleared"
)
