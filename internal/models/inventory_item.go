package models

import (
	"time"
)

// DefaultThreshold is applied to new items submitted without a threshold
const DefaultThreshold = 20

// InventoryItem is a tracked ingredient. CurrentStock has no floor and may go negative.
// Threshold is stored as given, zero included.
type InventoryItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name" binding:"required"`
	Category     string    `gorm:"index;not null" json:"category" binding:"required,oneof=base sauce cheese veggie"`
	CurrentStock int       `gorm:"default:0" json:"currentStock"`
	Threshold    int       `gorm:"not null" json:"threshold"`
	Unit         string    `gorm:"default:'pieces'" json:"unit"`
	LastUpdated  time.Time `json:"lastUpdated"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// IsLow reports whether stock is at or below the threshold
func (i InventoryItem) IsLow() bool {
	return i.CurrentStock <= i.Threshold
}
