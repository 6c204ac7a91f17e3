package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/payment"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StorefrontHandler serves the public shop surface: catalog, checkout,
// order tracking, reviews, and return requests.
type StorefrontHandler struct {
	Notifier *notify.Notifier
	Store    repository.Store
}

func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	var products []models.Product
	query := database.DB.Preload("Category").Where("status = ?", models.ProductActive)
	if cat := c.Query("category"); cat != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").Where("categories.name = ?", cat)
	}
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	var product models.Product
	if err := database.DB.Preload("Category").Where("status = ?", models.ProductActive).First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *StorefrontHandler) GetSiteInfo(c *gin.Context) {
	var settings models.SiteSettings
	if err := database.DB.First(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch site info"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

type CheckoutItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type CheckoutRequest struct {
	CustomerName     string                `json:"customer_name" binding:"required"`
	CustomerEmail    string                `json:"customer_email" binding:"required,email"`
	Phone            string                `json:"phone" binding:"required"`
	Address          string                `json:"address" binding:"required"`
	City             string                `json:"city" binding:"required"`
	State            string                `json:"state" binding:"required"`
	Pincode          string                `json:"pincode" binding:"required"`
	PaymentMethod    string                `json:"payment_method" binding:"required,oneof=prepaid cod"`
	PaymentOrderID   string                `json:"payment_order_id"`
	PaymentID        string                `json:"payment_id"`
	PaymentSignature string                `json:"payment_signature"`
	Items            []CheckoutItemRequest `json:"items" binding:"required,min=1"`
}

// Generate Order No: ORD-<unix millis>
func generateOrderNo() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
}

// Checkout creates an order. The total is recomputed server-side from the
// live product prices plus the shipping quote; stock is deducted inside the
// transaction and can never go below zero.
func (h *StorefrontHandler) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderNo := generateOrderNo()

	// Prepaid orders must carry a verified gateway signature. The gateway
	// signs its own order id plus the payment id during the client-side
	// checkout; the client relays all three and we recompute the HMAC.
	if req.PaymentMethod == models.PaymentPrepaid {
		if req.PaymentOrderID == "" || req.PaymentID == "" || req.PaymentSignature == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_order_id, payment_id and payment_signature are required for prepaid orders"})
			return
		}
		if err := payment.VerifyCheckout(req.PaymentOrderID, req.PaymentID, req.PaymentSignature, config.AppConfig.Payment.GatewaySecret); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed"})
			return
		}
	}

	// Find or Create Customer by email
	var customer models.Customer
	if err := database.DB.Where("email = ?", req.CustomerEmail).First(&customer).Error; err != nil {
		customer = models.Customer{
			Name:     req.CustomerName,
			Email:    req.CustomerEmail,
			Phone:    req.Phone,
			Status:   models.CustomerNew,
			JoinDate: time.Now(),
		}
		if err := database.DB.Create(&customer).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process customer info"})
			return
		}
	}

	tx := database.DB.Begin()

	var subtotal float64
	var weightKg float64
	items := make([]models.OrderItem, 0, len(req.Items))

	for _, itemReq := range req.Items {
		var product models.Product
		if err := tx.First(&product, itemReq.ProductID).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Product ID %d not found", itemReq.ProductID)})
			return
		}
		if product.Status != models.ProductActive {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is no longer available", product.Name)})
			return
		}

		// Deduct stock only while enough remains; a zero rows-affected result
		// means another checkout got there first.
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", product.ID, itemReq.Quantity).
			Update("stock", gorm.Expr("stock - ?", itemReq.Quantity))
		if res.Error != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update stock"})
			return
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Insufficient stock for %s", product.Name)})
			return
		}

		subtotal += product.Price * float64(itemReq.Quantity)
		weightKg += product.WeightKg * float64(itemReq.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Size:        itemReq.Size,
			Quantity:    itemReq.Quantity,
			UnitPrice:   product.Price,    // price snapshot
			WeightKg:    product.WeightKg, // weight snapshot, used at booking
		})
	}

	// The quoted carrier is persisted on the order so fulfilment ships with
	// the carrier whose rate the customer was charged.
	selectedCarrier := courier.SelectCarrier(subtotal, req.Pincode)
	rate := courier.CalculateRate(selectedCarrier, req.Pincode, weightKg, req.PaymentMethod == models.PaymentCOD)

	order := models.Order{
		OrderNo:        orderNo,
		CustomerID:     customer.ID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		Items:          items,
		Subtotal:       subtotal,
		ShippingCost:   rate.Total,
		Total:          subtotal + rate.Total,
		Status:         models.OrderPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentOrderID: req.PaymentOrderID,
		PaymentID:      req.PaymentID,
		Carrier:        selectedCarrier,
		ShipName:       req.CustomerName,
		ShipAddress:    req.Address,
		ShipCity:       req.City,
		ShipState:      req.State,
		ShipPincode:    req.Pincode,
		ShipPhone:      req.Phone,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	// Refresh customer aggregates inside the same transaction.
	now := time.Now()
	customer.OrderCount++
	customer.TotalSpent += order.Total
	customer.LastOrderDate = &now
	customer.Status = customer.DerivedStatus()
	if err := tx.Model(&models.Customer{}).Where("id = ?", customer.ID).Updates(map[string]interface{}{
		"order_count":     customer.OrderCount,
		"total_spent":     customer.TotalSpent,
		"last_order_date": customer.LastOrderDate,
		"status":          customer.Status,
	}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update customer"})
		return
	}

	tx.Commit()

	h.Notifier.OrderPlaced(c.Request.Context(), &order)
	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityOrder,
		Action:  "order_placed",
		Details: fmt.Sprintf("Order %s placed for ₹%.2f", order.OrderNo, order.Total),
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Order placed successfully",
		"order_no":      order.OrderNo,
		"subtotal":      order.Subtotal,
		"shipping_cost": order.ShippingCost,
		"total":         order.Total,
	})
}

// TrackOrder returns the order's status and its shipment trail, keyed by
// order number so customers can track without an account.
func (h *StorefrontHandler) TrackOrder(c *gin.Context) {
	orderNo := c.Param("order_no")

	var order models.Order
	if err := database.DB.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	var shipment models.Shipment
	result := gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
		"items":    order.Items,
		"total":    order.Total,
	}
	if err := database.DB.Preload("TrackingUpdates").Where("order_id = ?", order.ID).First(&shipment).Error; err == nil {
		result["shipment"] = shipment
	}

	c.JSON(http.StatusOK, result)
}

type SubmitReviewRequest struct {
	ProductID    uint   `json:"product_id" binding:"required"`
	CustomerName string `json:"customer_name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Rating       int    `json:"rating" binding:"required,gte=1,lte=5"`
	Title        string `json:"title"`
	Comment      string `json:"comment"`
}

func (h *StorefrontHandler) SubmitReview(c *gin.Context) {
	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	if err := database.DB.First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
		return
	}

	review := models.Review{
		ProductID:    req.ProductID,
		CustomerName: req.CustomerName,
		Email:        req.Email,
		Rating:       req.Rating,
		Title:        req.Title,
		Comment:      req.Comment,
		Status:       models.ReviewPending,
	}
	if err := database.DB.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted for moderation", "review_id": review.ID})
}

func (h *StorefrontHandler) ListProductReviews(c *gin.Context) {
	var reviews []models.Review
	if err := database.DB.Where("product_id = ? AND status = ?", c.Param("id"), models.ReviewApproved).
		Order("created_at desc").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}
	c.JSON(http.StatusOK, reviews)
}

type CreateReturnRequest struct {
	OrderNo string `json:"order_no" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Reason  string `json:"reason" binding:"required"`
}

// RequestReturn opens a return for a delivered order. The refundable amount
// is the order total; approval and the refund itself are handled by the
// back office or the lifecycle engine.
func (h *StorefrontHandler) RequestReturn(c *gin.Context) {
	var req CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := database.DB.Where("order_no = ? AND customer_email = ?", req.OrderNo, req.Email).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.Status != models.OrderDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only delivered orders can be returned"})
		return
	}

	var existing models.ReturnRequest
	if err := database.DB.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A return already exists for this order", "return_no": existing.ReturnNo})
		return
	}

	ret := models.ReturnRequest{
		ReturnNo:      fmt.Sprintf("RET-%d", time.Now().UnixMilli()),
		OrderID:       order.ID,
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Reason:        req.Reason,
		Status:        models.ReturnPending,
		Amount:        order.Total,
		RequestDate:   time.Now(),
	}
	if err := database.DB.Create(&ret).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create return request"})
		return
	}

	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityReturn,
		Action:  "return_requested",
		Details: fmt.Sprintf("Return %s requested for order %s", ret.ReturnNo, order.OrderNo),
	})

	c.JSON(http.StatusCreated, gin.H{"message": "Return request submitted", "return_no": ret.ReturnNo})
}

// GetPaymentConfig exposes the gateway's public key id for the checkout SDK.
func (h *StorefrontHandler) GetPaymentConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"key_id": config.AppConfig.Payment.GatewayKeyID})
}
