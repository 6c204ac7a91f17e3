package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/payment"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
)

// ReturnsHandler covers back-office return processing. The lifecycle engine
// handles aged returns automatically; these endpoints cover the manual path.
type ReturnsHandler struct {
	Notifier *notify.Notifier
	Store    repository.Store
}

func (h *ReturnsHandler) ListReturns(c *gin.Context) {
	var returns []models.ReturnRequest
	query := database.DB.Order("request_date desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&returns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch returns"})
		return
	}
	c.JSON(http.StatusOK, returns)
}

func (h *ReturnsHandler) ApproveReturn(c *gin.Context) {
	var ret models.ReturnRequest
	if err := database.DB.First(&ret, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return not found"})
		return
	}
	if ret.Status != models.ReturnPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending returns can be approved"})
		return
	}

	now := time.Now()
	ret.Status = models.ReturnApproved
	ret.ApprovedDate = &now
	if err := database.DB.Save(&ret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve return"})
		return
	}

	h.Notifier.ReturnApproved(c.Request.Context(), &ret)
	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityReturn,
		Action:  "return_approved",
		Details: fmt.Sprintf("Return %s approved", ret.ReturnNo),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Return approved"})
}

type RejectReturnRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *ReturnsHandler) RejectReturn(c *gin.Context) {
	var req RejectReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ret models.ReturnRequest
	if err := database.DB.First(&ret, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return not found"})
		return
	}
	if ret.Status != models.ReturnPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending returns can be rejected"})
		return
	}

	if err := database.DB.Model(&ret).Updates(map[string]interface{}{
		"status":        models.ReturnRejected,
		"reject_reason": req.Reason,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject return"})
		return
	}

	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityReturn,
		Action:  "return_rejected",
		Details: fmt.Sprintf("Return %s rejected: %s", ret.ReturnNo, req.Reason),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Return rejected"})
}

// ProcessRefund settles an approved return immediately with a refund
// reference, ahead of the automated window.
func (h *ReturnsHandler) ProcessRefund(c *gin.Context) {
	var ret models.ReturnRequest
	if err := database.DB.First(&ret, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Return not found"})
		return
	}
	if ret.Status != models.ReturnApproved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only approved returns can be refunded"})
		return
	}

	now := time.Now()
	ret.Status = models.ReturnProcessed
	ret.RefundID = payment.NewRefundID()
	ret.ProcessedDate = &now
	if err := database.DB.Save(&ret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process refund"})
		return
	}

	h.Notifier.RefundProcessed(c.Request.Context(), &ret)
	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityReturn,
		Action:  "refund_processed",
		Details: fmt.Sprintf("Return %s refunded (%s)", ret.ReturnNo, ret.RefundID),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Refund processed", "refund_id": ret.RefundID})
}
