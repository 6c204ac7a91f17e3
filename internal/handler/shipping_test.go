package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newShipping(db *gorm.DB) *ShippingHandler {
	return &ShippingHandler{
		Courier:  courier.NewSimulated(),
		Notifier: notify.NewNotifier(map[string]notify.Sender{}),
		Store:    repository.NewGormStore(db, 100),
	}
}

func TestCancelShipmentRevertsOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	order := models.Order{OrderNo: "ORD-1", Status: models.OrderShipped, TrackingNumber: "BD0000000001"}
	require.NoError(t, db.Create(&order).Error)
	shipment := models.Shipment{
		ShipmentNo:     "SHP-1",
		OrderID:        order.ID,
		TrackingNumber: "BD0000000001",
		Carrier:        courier.CarrierBluedart,
		Status:         models.ShipmentPending,
	}
	require.NoError(t, db.Create(&shipment).Error)

	r := gin.New()
	h := newShipping(db)
	r.POST("/shipments/:id/cancel", h.CancelShipment)

	w := performJSON(r, http.MethodPost, fmt.Sprintf("/shipments/%d/cancel", shipment.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var gotShipment models.Shipment
	require.NoError(t, db.First(&gotShipment, shipment.ID).Error)
	assert.Equal(t, models.ShipmentFailed, gotShipment.Status)

	var gotOrder models.Order
	require.NoError(t, db.First(&gotOrder, order.ID).Error)
	assert.Equal(t, models.OrderProcessing, gotOrder.Status)
	assert.Empty(t, gotOrder.TrackingNumber)
}

func TestCancelShipmentRejectsMovingShipment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	order := models.Order{OrderNo: "ORD-1", Status: models.OrderShipped}
	require.NoError(t, db.Create(&order).Error)
	shipment := models.Shipment{
		ShipmentNo:     "SHP-1",
		OrderID:        order.ID,
		TrackingNumber: "BD0000000001",
		Status:         models.ShipmentInTransit,
	}
	require.NoError(t, db.Create(&shipment).Error)

	r := gin.New()
	h := newShipping(db)
	r.POST("/shipments/:id/cancel", h.CancelShipment)

	w := performJSON(r, http.MethodPost, fmt.Sprintf("/shipments/%d/cancel", shipment.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRefreshTrackingPersistsChange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)

	order := models.Order{OrderNo: "ORD-1", Status: models.OrderShipped}
	require.NoError(t, db.Create(&order).Error)

	// Half-way through the delivery window the simulated courier reports
	// in_transit; the refresh must persist it with a tracking update.
	shipped := time.Now().Add(-50 * time.Hour)
	shipment := models.Shipment{
		ShipmentNo:        "SHP-1",
		OrderID:           order.ID,
		TrackingNumber:    "BD0000000001",
		Status:            models.ShipmentPending,
		ShippedDate:       &shipped,
		EstimatedDelivery: shipped.Add(100 * time.Hour),
	}
	require.NoError(t, db.Create(&shipment).Error)

	r := gin.New()
	h := newShipping(db)
	r.POST("/shipments/:id/refresh", h.RefreshTracking)

	w := performJSON(r, http.MethodPost, fmt.Sprintf("/shipments/%d/refresh", shipment.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var gotShipment models.Shipment
	require.NoError(t, db.Preload("TrackingUpdates").First(&gotShipment, shipment.ID).Error)
	assert.Equal(t, models.ShipmentInTransit, gotShipment.Status)
	require.Len(t, gotShipment.TrackingUpdates, 1)
	assert.Equal(t, models.ShipmentInTransit, gotShipment.TrackingUpdates[0].Status)
}
