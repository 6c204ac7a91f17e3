package repository

import (
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"

	"gorm.io/gorm"
)

// GormStore implements Store over a *gorm.DB. activityCap bounds the
// activity table to the newest N entries.
type GormStore struct {
	db          *gorm.DB
	activityCap int
}

func NewGormStore(db *gorm.DB, activityCap int) *GormStore {
	if activityCap <= 0 {
		activityCap = 100
	}
	return &GormStore{db: db, activityCap: activityCap}
}

func (s *GormStore) OrdersInStatus(status string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").Where("status = ?", status).Find(&orders).Error
	return orders, err
}

func (s *GormStore) OrderByID(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) SetOrderStatus(orderID uint, status string) error {
	return s.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status", status).Error
}

func (s *GormStore) MarkOrderShipped(orderID uint, trackingNumber string) error {
	return s.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"status":          models.OrderShipped,
		"tracking_number": trackingNumber,
	}).Error
}

func (s *GormStore) MarkOrderDelivered(orderID uint) error {
	return s.SetOrderStatus(orderID, models.OrderDelivered)
}

func (s *GormStore) CreateShipment(shp *models.Shipment) error {
	return s.db.Create(shp).Error
}

// ActiveShipments returns shipments still moving: anything not delivered
// or failed.
func (s *GormStore) ActiveShipments() ([]models.Shipment, error) {
	var shipments []models.Shipment
	err := s.db.Where("status NOT IN ?", []string{models.ShipmentDelivered, models.ShipmentFailed}).Find(&shipments).Error
	return shipments, err
}

func (s *GormStore) SetShipmentStatus(shipmentID uint, status string, deliveredAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if deliveredAt != nil {
		updates["delivered_date"] = deliveredAt
	}
	return s.db.Model(&models.Shipment{}).Where("id = ?", shipmentID).Updates(updates).Error
}

func (s *GormStore) AppendTrackingUpdate(u *models.TrackingUpdate) error {
	return s.db.Create(u).Error
}

func (s *GormStore) ReturnsInStatus(status string) ([]models.ReturnRequest, error) {
	var returns []models.ReturnRequest
	err := s.db.Where("status = ?", status).Find(&returns).Error
	return returns, err
}

func (s *GormStore) SaveReturn(r *models.ReturnRequest) error {
	return s.db.Save(r).Error
}

// AppendActivity inserts the entry and trims the table back to the cap.
func (s *GormStore) AppendActivity(a *models.Activity) error {
	if err := s.db.Create(a).Error; err != nil {
		return err
	}

	// Find the oldest id we keep, then drop everything below it. Two steps
	// because MySQL rejects a delete with a subquery on the same table.
	var cutoff models.Activity
	err := s.db.Order("id desc").Offset(s.activityCap - 1).First(&cutoff).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil // fewer rows than the cap
		}
		return err
	}
	return s.db.Where("id < ?", cutoff.ID).Delete(&models.Activity{}).Error
}
