package models

import "time"

// Inventory holds how much of an item is currently on hand.
type Inventory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ItemID    uint      `gorm:"uniqueIndex;not null" json:"item_id"`
	Quantity  float64   `gorm:"default:0" json:"quantity"`
	Location  string    `json:"location,omitempty"` // pantry, fridge, freezer
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	Item      Item      `gorm:"foreignKey:ItemID" json:"item"`
}

func (Inventory) TableName() string {
	return "inventory"
}
