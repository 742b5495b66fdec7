package models

import "time"

// ScanHistory is an append-only log of scan actions for analytics.
type ScanHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Barcode   string    `gorm:"not null" json:"barcode"`
	Action    string    `gorm:"not null" json:"action"` // add, remove, check
	Quantity  float64   `gorm:"default:1" json:"quantity"`
	Timestamp time.Time `gorm:"autoCreateTime" json:"timestamp"`
}

func (ScanHistory) TableName() string {
	return "scan_history"
}
