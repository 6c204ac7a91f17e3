package models

import (
	"time"

	"gorm.io/gorm"
)

// Product statuses
const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;unique;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Products    []Product `json:"-"`
}

type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:150;not null" json:"name"`
	CategoryID  *uint          `json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Description string         `gorm:"type:text" json:"description"`
	Price       float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	Sizes       []string       `gorm:"serializer:json" json:"sizes"`
	Stock       int            `gorm:"default:0" json:"stock"`
	Status      string         `gorm:"size:20;default:'active'" json:"status"`
	ImageURL    string         `gorm:"size:500" json:"image_url"`
	WeightKg    float64        `gorm:"type:decimal(6,2);default:0.5" json:"weight_kg"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
