package repository

import (
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
)

// Store is the persistence surface the lifecycle engine runs against.
// The production implementation is GORM-backed; tests use map-backed mocks.
type Store interface {
	OrdersInStatus(status string) ([]models.Order, error)
	OrderByID(orderID uint) (*models.Order, error)
	SetOrderStatus(orderID uint, status string) error
	MarkOrderShipped(orderID uint, trackingNumber string) error
	MarkOrderDelivered(orderID uint) error

	CreateShipment(s *models.Shipment) error
	ActiveShipments() ([]models.Shipment, error)
	SetShipmentStatus(shipmentID uint, status string, deliveredAt *time.Time) error
	AppendTrackingUpdate(u *models.TrackingUpdate) error

	ReturnsInStatus(status string) ([]models.ReturnRequest, error)
	SaveReturn(r *models.ReturnRequest) error

	AppendActivity(a *models.Activity) error
}
