package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestStore(t *testing.T, activityCap int) (*GormStore, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Order{},
		&models.OrderItem{},
		&models.Customer{},
		&models.Shipment{},
		&models.TrackingUpdate{},
		&models.ReturnRequest{},
		&models.Activity{},
	))
	return NewGormStore(db, activityCap), db
}

func TestActivityCapTrimsOldEntries(t *testing.T) {
	store, db := openTestStore(t, 5)

	for i := 1; i <= 12; i++ {
		require.NoError(t, store.AppendActivity(&models.Activity{
			Type:    models.ActivitySystem,
			Action:  "test",
			Details: fmt.Sprintf("entry %d", i),
		}))
	}

	var count int64
	db.Model(&models.Activity{}).Count(&count)
	assert.EqualValues(t, 5, count)

	// The survivors are the newest five.
	var entries []models.Activity
	require.NoError(t, db.Order("id asc").Find(&entries).Error)
	assert.Equal(t, "entry 8", entries[0].Details)
	assert.Equal(t, "entry 12", entries[len(entries)-1].Details)
}

func TestActivityCapLeavesSmallTablesAlone(t *testing.T) {
	store, db := openTestStore(t, 100)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendActivity(&models.Activity{Type: models.ActivitySystem, Action: "test"}))
	}

	var count int64
	db.Model(&models.Activity{}).Count(&count)
	assert.EqualValues(t, 3, count)
}

func TestOrderStatusHelpers(t *testing.T) {
	store, db := openTestStore(t, 100)

	order := models.Order{OrderNo: "ORD-1", Status: models.OrderPending, Total: 999}
	require.NoError(t, db.Create(&order).Error)

	pending, err := store.OrdersInStatus(models.OrderPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, store.SetOrderStatus(order.ID, models.OrderProcessing))
	require.NoError(t, store.MarkOrderShipped(order.ID, "BD0000000001"))

	got, err := store.OrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, got.Status)
	assert.Equal(t, "BD0000000001", got.TrackingNumber)

	require.NoError(t, store.MarkOrderDelivered(order.ID))
	got, err = store.OrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, got.Status)
}

func TestActiveShipmentsExcludesSettled(t *testing.T) {
	store, db := openTestStore(t, 100)

	require.NoError(t, db.Create(&models.Shipment{ShipmentNo: "SHP-1", Status: models.ShipmentInTransit}).Error)
	require.NoError(t, db.Create(&models.Shipment{ShipmentNo: "SHP-2", Status: models.ShipmentDelivered}).Error)
	require.NoError(t, db.Create(&models.Shipment{ShipmentNo: "SHP-3", Status: models.ShipmentFailed}).Error)

	active, err := store.ActiveShipments()
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "SHP-1", active[0].ShipmentNo)

	now := time.Now()
	require.NoError(t, store.SetShipmentStatus(active[0].ID, models.ShipmentDelivered, &now))

	active, err = store.ActiveShipments()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSaveReturnRoundTrip(t *testing.T) {
	store, db := openTestStore(t, 100)

	ret := &models.ReturnRequest{
		ReturnNo:    "RET-1",
		Status:      models.ReturnPending,
		Amount:      1499,
		RequestDate: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(ret).Error)

	pending, err := store.ReturnsInStatus(models.ReturnPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	now := time.Now()
	pending[0].Status = models.ReturnApproved
	pending[0].ApprovedDate = &now
	require.NoError(t, store.SaveReturn(&pending[0]))

	approved, err := store.ReturnsInStatus(models.ReturnApproved)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.NotNil(t, approved[0].ApprovedDate)
}
