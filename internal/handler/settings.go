package handler

import (
	"context"
	"net/http"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/automation"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
)

// SettingsHandler covers site settings, the activity feed, and the
// lifecycle engine controls.
type SettingsHandler struct {
	Engine *automation.Engine
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	var settings models.SiteSettings
	if err := database.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings saves the whole settings document. The row is seeded at
// boot, so the update always applies over a complete set of defaults.
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var settings models.SiteSettings
	if err := database.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	var req models.SiteSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.ID = settings.ID
	if err := database.DB.Save(&req).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated"})
}

// GetActivity returns the feed, bounded by the same cap the trim uses.
func (h *SettingsHandler) GetActivity(c *gin.Context) {
	limit := config.AppConfig.Defaults.ActivityLogCap
	if limit <= 0 {
		limit = 100
	}

	var entries []models.Activity
	if err := database.DB.Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *SettingsHandler) AutomationStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.Engine.Running()})
}

func (h *SettingsHandler) StartAutomation(c *gin.Context) {
	h.Engine.Start(context.Background())
	c.JSON(http.StatusOK, gin.H{"message": "Automation started", "running": true})
}

func (h *SettingsHandler) StopAutomation(c *gin.Context) {
	h.Engine.Stop()
	c.JSON(http.StatusOK, gin.H{"message": "Automation stopped", "running": false})
}

// RunAutomationTick forces one evaluation of every lifecycle rule.
func (h *SettingsHandler) RunAutomationTick(c *gin.Context) {
	h.Engine.Tick(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Tick completed"})
}
