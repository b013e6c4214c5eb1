package models

import (
	"time"
)

// PaymentIntent is the amount requested from the gateway for one checkout.
// Order prices exclude tax, delivery and discounts, so this is the record of
// the money actually collected. Status moves from PaymentCreated to PaymentPaid
// when the matching confirmation is verified.
type PaymentIntent struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	UserID           uint       `gorm:"index;not null" json:"userId"`
	GatewayOrderID   string     `gorm:"index;not null" json:"gatewayOrderId"`
	GatewayPaymentID string     `gorm:"index" json:"gatewayPaymentId,omitempty"`
	Receipt          string     `json:"receipt"`
	Currency         string     `json:"currency"`
	Subtotal         int        `gorm:"not null" json:"subtotal"`
	Tax              int        `gorm:"not null" json:"tax"`
	DeliveryFee      int        `gorm:"not null" json:"deliveryFee"`
	Discount         int        `gorm:"not null" json:"discount"`
	PromoCode        string     `json:"promoCode,omitempty"`
	Total            int        `gorm:"not null" json:"total"`
	Status           string     `gorm:"index;not null" json:"status"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (PaymentIntent) TableName() string {
	return "payment_intents"
}
