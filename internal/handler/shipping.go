package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShippingHandler covers back-office shipment management: booking, labels,
// rate quotes, and on-demand tracking refreshes.
type ShippingHandler struct {
	Courier  courier.Courier
	Notifier *notify.Notifier
	Store    repository.Store
}

func (h *ShippingHandler) ListShipments(c *gin.Context) {
	var shipments []models.Shipment
	query := database.DB.Preload("TrackingUpdates").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&shipments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch shipments"})
		return
	}
	c.JSON(http.StatusOK, shipments)
}

type CreateShipmentRequest struct {
	OrderID uint   `json:"order_id" binding:"required"`
	Carrier string `json:"carrier"` // optional override of the selection heuristic
}

// CreateShipment books a shipment for a processing order ahead of the
// automated window.
func (h *ShippingHandler) CreateShipment(c *gin.Context) {
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := database.DB.Preload("Items").First(&order, req.OrderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.Status != models.OrderProcessing {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only processing orders can be shipped"})
		return
	}

	var existing models.Shipment
	if err := database.DB.Where("order_id = ?", order.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Shipment already exists for this order", "shipment_no": existing.ShipmentNo})
		return
	}

	carrier := req.Carrier
	if carrier == "" {
		carrier = order.Carrier
	}
	if carrier == "" {
		carrier = courier.SelectCarrier(order.Subtotal, order.ShipPincode)
	}

	weight := order.ShippingWeightKg()
	codAmount := 0.0
	if order.PaymentMethod == models.PaymentCOD {
		codAmount = order.Total
	}

	info, err := h.Courier.CreateShipment(c.Request.Context(), courier.ShipmentRequest{
		OrderNo:        order.OrderNo,
		Carrier:        carrier,
		Name:           order.ShipName,
		Address:        order.ShipAddress,
		City:           order.ShipCity,
		State:          order.ShipState,
		Pincode:        order.ShipPincode,
		Phone:          order.ShipPhone,
		WeightKg:       weight,
		CODAmount:      codAmount,
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Courier booking failed: " + err.Error()})
		return
	}

	now := time.Now()
	shipment := models.Shipment{
		ShipmentNo:        fmt.Sprintf("SHP-%d-%d", now.UnixMilli(), order.ID),
		OrderID:           order.ID,
		TrackingNumber:    info.TrackingNumber,
		Carrier:           info.Carrier,
		Status:            models.ShipmentPending,
		ShippedDate:       &now,
		EstimatedDelivery: info.EstimatedDelivery,
	}
	if err := database.DB.Create(&shipment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record shipment"})
		return
	}
	if err := database.DB.Model(&order).Updates(map[string]interface{}{
		"status":          models.OrderShipped,
		"tracking_number": info.TrackingNumber,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	h.Notifier.OrderShipped(c.Request.Context(), &order, info.Carrier, info.TrackingNumber)
	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityShipment,
		Action:  "shipment_created",
		Details: fmt.Sprintf("Order %s shipped via %s (%s)", order.OrderNo, info.Carrier, info.TrackingNumber),
	})

	c.JSON(http.StatusCreated, shipment)
}

// CancelShipment voids a booking before it moves. The order drops back to
// processing so it can be re-shipped.
func (h *ShippingHandler) CancelShipment(c *gin.Context) {
	var shipment models.Shipment
	if err := database.DB.First(&shipment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}
	if shipment.Status != models.ShipmentPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only pending shipments can be cancelled"})
		return
	}

	if err := h.Courier.Cancel(c.Request.Context(), shipment.TrackingNumber); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Courier cancellation failed: " + err.Error()})
		return
	}

	if err := database.DB.Model(&shipment).Update("status", models.ShipmentFailed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shipment"})
		return
	}
	if err := database.DB.Model(&models.Order{}).Where("id = ?", shipment.OrderID).Updates(map[string]interface{}{
		"status":          models.OrderProcessing,
		"tracking_number": "",
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to revert order"})
		return
	}

	h.Store.AppendActivity(&models.Activity{
		Type:    models.ActivityShipment,
		Action:  "shipment_cancelled",
		Details: fmt.Sprintf("Shipment %s cancelled", shipment.ShipmentNo),
	})
	c.JSON(http.StatusOK, gin.H{"message": "Shipment cancelled"})
}

// GetLabel renders the printable HTML shipping label.
func (h *ShippingHandler) GetLabel(c *gin.Context) {
	var shipment models.Shipment
	if err := database.DB.Preload("Order").First(&shipment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}

	order := shipment.Order
	html, err := courier.RenderLabel(courier.LabelData{
		Carrier:        shipment.Carrier,
		StoreName:      config.AppConfig.Defaults.StoreName,
		StoreAddress:   config.AppConfig.Defaults.StoreAddress,
		OrderNo:        order.OrderNo,
		TrackingNumber: shipment.TrackingNumber,
		Name:           order.ShipName,
		Address:        order.ShipAddress,
		City:           order.ShipCity,
		State:          order.ShipState,
		Pincode:        order.ShipPincode,
		Phone:          order.ShipPhone,
		COD:            order.PaymentMethod == models.PaymentCOD,
		CODAmount:      order.Total,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render label"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

// RefreshTracking polls the courier once for a shipment and records any
// status change, without waiting for the next engine tick.
func (h *ShippingHandler) RefreshTracking(c *gin.Context) {
	var shipment models.Shipment
	if err := database.DB.First(&shipment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Shipment not found"})
		return
	}

	shippedAt := shipment.CreatedAt
	if shipment.ShippedDate != nil {
		shippedAt = *shipment.ShippedDate
	}

	st, err := h.Courier.Track(c.Request.Context(), courier.TrackQuery{
		TrackingNumber:    shipment.TrackingNumber,
		ShippedAt:         shippedAt,
		EstimatedDelivery: shipment.EstimatedDelivery,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Tracking failed: " + err.Error()})
		return
	}

	if st.Status != shipment.Status {
		updates := map[string]interface{}{"status": st.Status}
		if st.Status == models.ShipmentDelivered {
			updates["delivered_date"] = st.At
		}
		if err := database.DB.Model(&shipment).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shipment"})
			return
		}
		if err := database.DB.Create(&models.TrackingUpdate{
			ShipmentID: shipment.ID,
			Status:     st.Status,
			Location:   st.Location,
			Remark:     st.Remark,
			Timestamp:  st.At,
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record tracking update"})
			return
		}
		if st.Status == models.ShipmentDelivered {
			if err := database.DB.Model(&models.Order{}).Where("id = ?", shipment.OrderID).
				Update("status", models.OrderDelivered).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"tracking_number": shipment.TrackingNumber,
		"status":          st.Status,
		"location":        st.Location,
		"remark":          st.Remark,
		"checked_at":      st.At,
	})
}

type RateQuoteRequest struct {
	Pincode  string  `json:"pincode" binding:"required"`
	WeightKg float64 `json:"weight_kg" binding:"required,gt=0"`
	Subtotal float64 `json:"subtotal"` // merchandise value, same input checkout selects on
	COD      bool    `json:"cod"`
}

// QuoteRate returns the shipping-cost breakdown for a destination.
func (h *ShippingHandler) QuoteRate(c *gin.Context) {
	var req RateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrier := courier.SelectCarrier(req.Subtotal, req.Pincode)
	rate := courier.CalculateRate(carrier, req.Pincode, req.WeightKg, req.COD)
	c.JSON(http.StatusOK, gin.H{
		"carrier":      carrier,
		"breakdown":    rate,
		"transit_days": courier.TransitDays(carrier, req.Pincode),
	})
}
