package database

import (
	"log"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/utils"

	"gorm.io/gorm"
)

func SeedRolesAndAdmin() {
	// Seed Roles
	roles := []string{"admin", "manager", "support"}
	for _, r := range roles {
		var role models.Role
		if err := DB.FirstOrCreate(&role, models.Role{Name: r}).Error; err != nil {
			log.Printf("Failed to seed role %s: %v", r, err)
		}
	}

	// Seed Admin User
	var adminRole models.Role
	DB.Where("name = ?", "admin").First(&adminRole)

	var adminUser models.User
	if err := DB.Where("employee_id = ?", config.AppConfig.Defaults.AdminEmployeeID).First(&adminUser).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			hashedPassword, _ := utils.HashPassword(config.AppConfig.Defaults.AdminPassword)
			admin := models.User{
				EmployeeID:   config.AppConfig.Defaults.AdminEmployeeID,
				Username:     "Store Admin",
				PasswordHash: hashedPassword,
				RoleID:       adminRole.ID,
				IsActive:     true,
			}
			if err := DB.Create(&admin).Error; err != nil {
				log.Printf("Failed to seed admin user: %v", err)
			} else {
				log.Println("Admin user seeded successfully.")
			}
		}
	}
}

// SeedSiteSettings creates the settings row with store defaults if missing.
// Keeping the full row present means a later partial update cannot lose
// nested defaults such as the logo set.
func SeedSiteSettings() {
	var settings models.SiteSettings
	if err := DB.First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			defaults := models.SiteSettings{
				Name:    config.AppConfig.Defaults.StoreName,
				Tagline: "Authentic handloom, woven with care",
				Logos: models.Logos{
					Header:  config.AppConfig.Defaults.StoreLogo,
					Footer:  config.AppConfig.Defaults.StoreLogo,
					Invoice: config.AppConfig.Defaults.StoreLogo,
				},
				Address:      config.AppConfig.Defaults.StoreAddress,
				Phone:        config.AppConfig.Defaults.StorePhone,
				OpeningHours: "9:30 AM - 8:00 PM",
				WorkingDays:  []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
			}
			if err := DB.Create(&defaults).Error; err != nil {
				log.Printf("Failed to seed site settings: %v", err)
			} else {
				log.Println("Site settings seeded successfully.")
			}
		}
	}
}
