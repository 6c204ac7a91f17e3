package models

import (
	"time"
)

// Review statuses
const (
	ReviewPending  = "pending"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

type Review struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"index" json:"product_id"`
	Product      Product   `gorm:"foreignKey:ProductID" json:"-"`
	CustomerName string    `gorm:"size:100" json:"customer_name"`
	Email        string    `gorm:"size:150" json:"email"`
	Rating       int       `gorm:"not null" json:"rating"`
	Title        string    `gorm:"size:150" json:"title"`
	Comment      string    `gorm:"type:text" json:"comment"`
	Status       string    `gorm:"size:20;default:'pending'" json:"status"`
	CreatedAt    time.Time `json:"date"`
}
