package handler

import (
	"fmt"
	"net/http"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
)

// ReviewsHandler covers review moderation.
type ReviewsHandler struct {
	Store repository.Store
}

func (h *ReviewsHandler) ListReviews(c *gin.Context) {
	var reviews []models.Review
	query := database.DB.Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewsHandler) moderate(c *gin.Context, status, action string) {
	var review models.Review
	if err := database.DB.First(&review, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}
	if review.Status != models.ReviewPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Review is already moderated"})
		return
	}
	if err := database.DB.Model(&review).Update("status", status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}
	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityReview,
		Action:  action,
		Details: fmt.Sprintf("Review #%d on product #%d %s", review.ID, review.ProductID, status),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Review " + status})
}

func (h *ReviewsHandler) ApproveReview(c *gin.Context) {
	h.moderate(c, models.ReviewApproved, "review_approved")
}

func (h *ReviewsHandler) RejectReview(c *gin.Context) {
	h.moderate(c, models.ReviewRejected, "review_rejected")
}
