package models

import (
	"time"
)

// Customer statuses
const (
	CustomerNew     = "new"
	CustomerActive  = "active"
	CustomerVIP     = "vip"
	CustomerBlocked = "blocked"
)

// VIPThreshold is the lifetime spend above which a customer becomes VIP.
const VIPThreshold = 10000.0

type Customer struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Email         string     `gorm:"size:150;unique;not null" json:"email"`
	Phone         string     `gorm:"size:15" json:"phone"`
	OrderCount    int        `gorm:"default:0" json:"orders"`
	TotalSpent    float64    `gorm:"type:decimal(12,2);default:0.00" json:"total_spent"`
	Status        string     `gorm:"size:20;default:'new'" json:"status"`
	JoinDate      time.Time  `json:"join_date"`
	LastOrderDate *time.Time `json:"last_order_date,omitempty"`
}

// DerivedStatus returns the status a customer should carry after an order,
// leaving blocked customers blocked.
func (c *Customer) DerivedStatus() string {
	if c.Status == CustomerBlocked {
		return CustomerBlocked
	}
	if c.TotalSpent > VIPThreshold {
		return CustomerVIP
	}
	if c.OrderCount > 0 {
		return CustomerActive
	}
	return CustomerNew
}
