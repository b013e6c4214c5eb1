package models

import (
	"time"
)

// CartItem is one pending pizza configuration in a user's cart.
// Every add-to-cart call creates a new row, identical configurations are not merged.
type CartItem struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"userId"`
	Name      string     `json:"name"`
	Crust     string     `gorm:"not null" json:"crust"`
	Sauce     string     `gorm:"not null" json:"sauce"`
	Cheeses   StringList `json:"cheeses"`
	Toppings  StringList `json:"toppings"`
	Size      string     `gorm:"not null" json:"size"`
	Quantity  int        `gorm:"default:1" json:"quantity"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
