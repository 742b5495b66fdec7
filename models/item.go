package models

import "time"

// Item is the master record for a product, keyed by barcode.
type Item struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Barcode   string     `gorm:"uniqueIndex;not null" json:"barcode" validate:"required"`
	Name      string     `gorm:"not null" json:"name" validate:"required"`
	Brand     string     `json:"brand,omitempty"`
	Category  string     `json:"category,omitempty"` // mid-level OFF category tag for similarity matching
	ImageURL  string     `json:"image_url,omitempty"`
	Unit      string     `gorm:"default:pcs" json:"unit"` // pcs, g, kg, ml, L
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	Inventory *Inventory `gorm:"foreignKey:ItemID" json:"inventory,omitempty"`
}
