package models

import (
	"time"
)

// SiteSettings is a single-row table holding the storefront's editable
// settings. Seeded with defaults on first boot so a partial update can
// never drop nested fields like the logo set.
type SiteSettings struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Name         string    `gorm:"size:100" json:"name"`
	Tagline      string    `gorm:"size:255" json:"tagline"`
	Description  string    `gorm:"type:text" json:"description"`
	Logos        Logos     `gorm:"serializer:json" json:"logos"`
	Address      string    `gorm:"type:text" json:"address"`
	Phone        string    `gorm:"size:15" json:"phone"`
	Email        string    `gorm:"size:150" json:"email"`
	Whatsapp     string    `gorm:"size:15" json:"whatsapp"`
	OpeningHours string    `gorm:"size:100" json:"opening_hours"`
	WorkingDays  []string  `gorm:"serializer:json" json:"working_days"`
	MapLink      string    `gorm:"size:500" json:"map_link"`
	Socials      Socials   `gorm:"serializer:json" json:"socials"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Logos struct {
	Header  string `json:"header"`
	Footer  string `json:"footer"`
	Invoice string `json:"invoice"`
}

type Socials struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	Linkedin  string `json:"linkedin"`
}
