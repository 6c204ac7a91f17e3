package models

import (
	"time"
)

// Activity types
const (
	ActivityOrder    = "order"
	ActivityShipment = "shipment"
	ActivityReturn   = "return"
	ActivityReview   = "review"
	ActivityCatalog  = "catalog"
	ActivitySystem   = "system"
)

// Activity is an append-only log entry. The table is trimmed to a configured
// cap of most-recent entries whenever a new one is appended.
type Activity struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:20;index" json:"type"`
	Action    string    `gorm:"size:100" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	Automated bool      `gorm:"default:false" json:"automated"`
	CreatedAt time.Time `json:"timestamp"`
}
