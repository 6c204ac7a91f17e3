package handler

import (
	"fmt"
	"net/http"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OrdersHandler covers back-office order management.
type OrdersHandler struct {
	Notifier *notify.Notifier
	Store    repository.Store
}

func (h *OrdersHandler) ListOrders(c *gin.Context) {
	page := 1
	limit := 20
	if c.Query("page") != "" {
		fmt.Sscanf(c.Query("page"), "%d", &page)
	}
	if c.Query("limit") != "" {
		fmt.Sscanf(c.Query("limit"), "%d", &limit)
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.Order{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []models.Order
	if err := query.Preload("Items").Preload("Customer").
		Order("created_at desc").Limit(limit).Offset(offset).Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  orders,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *OrdersHandler) GetOrder(c *gin.Context) {
	var order models.Order
	if err := database.DB.Preload("Items").Preload("Customer").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var shipment models.Shipment
	result := gin.H{"order": order}
	if err := database.DB.Preload("TrackingUpdates").Where("order_id = ?", order.ID).First(&shipment).Error; err == nil {
		result["shipment"] = shipment
	}
	c.JSON(http.StatusOK, result)
}

// validOrderTransitions guards manual status updates: the back office may
// only move an order forward (or cancel it before shipping).
var validOrderTransitions = map[string][]string{
	models.OrderPending:    {models.OrderProcessing, models.OrderCancelled},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled},
	models.OrderShipped:    {models.OrderDelivered},
}

func transitionAllowed(from, to string) bool {
	for _, s := range validOrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (h *OrdersHandler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := database.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if !transitionAllowed(order.Status, req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Cannot move order from %s to %s", order.Status, req.Status)})
		return
	}

	if req.Status == models.OrderCancelled {
		h.cancelOrder(c, &order, "Cancelled by back office")
		return
	}

	if err := database.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityOrder,
		Action:  "order_status_updated",
		Details: fmt.Sprintf("Order %s moved to %s", order.OrderNo, req.Status),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (h *OrdersHandler) CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	c.ShouldBindJSON(&req)

	var order models.Order
	if err := database.DB.Preload("Items").First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if order.Status == models.OrderShipped || order.Status == models.OrderDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Shipped orders cannot be cancelled; open a return instead"})
		return
	}
	if order.Status == models.OrderCancelled {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already cancelled"})
		return
	}

	reason := req.Reason
	if reason == "" {
		reason = "Cancelled by back office"
	}
	h.cancelOrder(c, &order, reason)
}

// cancelOrder restocks every item and marks the order cancelled in one
// transaction.
func (h *OrdersHandler) cancelOrder(c *gin.Context, order *models.Order, reason string) {
	if len(order.Items) == 0 {
		database.DB.Preload("Items").First(order, order.ID)
	}

	tx := database.DB.Begin()
	for _, item := range order.Items {
		if err := tx.Model(&models.Product{}).Where("id = ?", item.ProductID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restock items"})
			return
		}
	}
	if err := tx.Model(order).Updates(map[string]interface{}{
		"status":        models.OrderCancelled,
		"cancel_reason": reason,
	}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		return
	}
	tx.Commit()

	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityOrder,
		Action:  "order_cancelled",
		Details: fmt.Sprintf("Order %s cancelled: %s", order.OrderNo, reason),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

func (h *OrdersHandler) ListCustomers(c *gin.Context) {
	var customers []models.Customer
	query := database.DB.Order("total_spent desc")
	if q := c.Query("q"); q != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+q+"%", "%"+q+"%")
	}
	if err := query.Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *OrdersHandler) UpdateCustomerStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=new active vip blocked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := database.DB.Model(&models.Customer{}).Where("id = ?", c.Param("id")).
		Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer status updated"})
}
