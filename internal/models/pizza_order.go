package models

import (
	"time"
)

// Order lifecycle statuses
const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentCreated = "created"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// OrderStatuses lists every valid order status in lifecycle order
var OrderStatuses = []string{StatusPending, StatusPreparing, StatusDelivered, StatusCancelled}

// IsValidStatus reports whether s is one of OrderStatuses
func IsValidStatus(s string) bool {
	for _, status := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// PaymentRecord is the gateway side of a paid order. The amount charged for the
// whole checkout, including tax, delivery and discount, is kept on the
// PaymentIntent with the same GatewayOrderID.
type PaymentRecord struct {
	GatewayOrderID   string     `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string     `gorm:"index" json:"gatewayPaymentId,omitempty"`
	Signature        string     `json:"-"`
	Verified         bool       `json:"verified"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
}

// PizzaOrder is a persisted pizza with its lifecycle status.
// TotalPrice is fixed at creation to UnitPrice * Quantity.
type PizzaOrder struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	UserID        uint          `gorm:"index;not null" json:"userId"`
	User          *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Crust         string        `gorm:"not null" json:"crust"`
	Sauce         string        `gorm:"not null" json:"sauce"`
	Cheeses       StringList    `json:"cheeses"`
	Toppings      StringList    `json:"toppings"`
	Size          string        `json:"size"`
	Quantity      int           `gorm:"not null;default:1" json:"quantity"`
	UnitPrice     int           `gorm:"not null" json:"unitPrice"`
	TotalPrice    int           `gorm:"not null" json:"totalPrice"`
	Status        string        `gorm:"index;default:'pending'" json:"status"`
	Payment       PaymentRecord `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`
	PaymentStatus string        `gorm:"default:'created'" json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (PizzaOrder) TableName() string {
	return "pizza_orders"
}
