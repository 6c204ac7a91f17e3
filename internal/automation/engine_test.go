package automation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a map-backed Store for driving the engine without a database.
type memStore struct {
	orders     map[uint]*models.Order
	shipments  map[uint]*models.Shipment
	returns    map[uint]*models.ReturnRequest
	updates    []models.TrackingUpdate
	activities []models.Activity
	nextID     uint
}

func newMemStore() *memStore {
	return &memStore{
		orders:    map[uint]*models.Order{},
		shipments: map[uint]*models.Shipment{},
		returns:   map[uint]*models.ReturnRequest{},
		nextID:    1,
	}
}

func (m *memStore) addOrder(o models.Order) *models.Order {
	o.ID = m.nextID
	m.nextID++
	m.orders[o.ID] = &o
	return &o
}

func (m *memStore) addReturn(r models.ReturnRequest) *models.ReturnRequest {
	r.ID = m.nextID
	m.nextID++
	m.returns[r.ID] = &r
	return &r
}

func (m *memStore) OrdersInStatus(status string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) OrderByID(orderID uint) (*models.Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %d not found", orderID)
	}
	return o, nil
}

func (m *memStore) SetOrderStatus(orderID uint, status string) error {
	m.orders[orderID].Status = status
	return nil
}

func (m *memStore) MarkOrderShipped(orderID uint, trackingNumber string) error {
	m.orders[orderID].Status = models.OrderShipped
	m.orders[orderID].TrackingNumber = trackingNumber
	return nil
}

func (m *memStore) MarkOrderDelivered(orderID uint) error {
	m.orders[orderID].Status = models.OrderDelivered
	return nil
}

func (m *memStore) CreateShipment(s *models.Shipment) error {
	s.ID = m.nextID
	m.nextID++
	m.shipments[s.ID] = s
	return nil
}

func (m *memStore) ActiveShipments() ([]models.Shipment, error) {
	var out []models.Shipment
	for _, s := range m.shipments {
		if s.Status != models.ShipmentDelivered && s.Status != models.ShipmentFailed {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) SetShipmentStatus(shipmentID uint, status string, deliveredAt *time.Time) error {
	m.shipments[shipmentID].Status = status
	if deliveredAt != nil {
		m.shipments[shipmentID].DeliveredDate = deliveredAt
	}
	return nil
}

func (m *memStore) AppendTrackingUpdate(u *models.TrackingUpdate) error {
	m.updates = append(m.updates, *u)
	return nil
}

func (m *memStore) ReturnsInStatus(status string) ([]models.ReturnRequest, error) {
	var out []models.ReturnRequest
	for _, r := range m.returns {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) SaveReturn(r *models.ReturnRequest) error {
	m.returns[r.ID] = r
	return nil
}

func (m *memStore) AppendActivity(a *models.Activity) error {
	m.activities = append(m.activities, *a)
	return nil
}

// fakeCourier books instantly with a fixed estimate and replays a scripted
// tracking status.
type fakeCourier struct {
	estimate    time.Time
	trackStatus string
	booked      int
	lastReq     courier.ShipmentRequest
}

func (f *fakeCourier) Name() string { return "fake" }

func (f *fakeCourier) CreateShipment(ctx context.Context, req courier.ShipmentRequest) (*courier.ShipmentInfo, error) {
	f.booked++
	f.lastReq = req
	return &courier.ShipmentInfo{
		TrackingNumber:    fmt.Sprintf("FK%010d", f.booked),
		Carrier:           req.Carrier,
		EstimatedDelivery: f.estimate,
	}, nil
}

func (f *fakeCourier) Track(ctx context.Context, q courier.TrackQuery) (*courier.TrackingStatus, error) {
	status := f.trackStatus
	if status == "" {
		// Real adapters always report one of the concrete shipment statuses;
		// default the fake to pending so an unset field can't blank a shipment.
		status = models.ShipmentPending
	}
	return &courier.TrackingStatus{Status: status, At: time.Now()}, nil
}

func (f *fakeCourier) Cancel(ctx context.Context, trackingNumber string) error { return nil }

func testConfig() config.AutomationConfig {
	return config.AutomationConfig{
		TickInterval:       time.Minute,
		ProcessingAfter:    5 * time.Minute,
		ShipAfter:          30 * time.Minute,
		DeliveryOverdue:    24 * time.Hour,
		ReturnApproveAfter: 24 * time.Hour,
		ReturnRefundAfter:  48 * time.Hour,
	}
}

func newTestEngine(store *memStore, cr courier.Courier, at time.Time) *Engine {
	notifier := notify.NewNotifier(map[string]notify.Sender{})
	e := NewEngine(store, cr, notifier, testConfig())
	e.now = func() time.Time { return at }
	return e
}

func TestConfirmPendingOrders(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	aged := store.addOrder(models.Order{OrderNo: "ORD-1", Status: models.OrderPending, CreatedAt: now.Add(-10 * time.Minute)})
	fresh := store.addOrder(models.Order{OrderNo: "ORD-2", Status: models.OrderPending, CreatedAt: now.Add(-1 * time.Minute)})

	e := newTestEngine(store, &fakeCourier{}, now)
	e.Tick(context.Background())

	assert.Equal(t, models.OrderProcessing, store.orders[aged.ID].Status)
	assert.Equal(t, models.OrderPending, store.orders[fresh.ID].Status)
}

func TestShipProcessingOrders(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	order := store.addOrder(models.Order{
		OrderNo:     "ORD-1",
		Status:      models.OrderProcessing,
		CreatedAt:   now.Add(-45 * time.Minute),
		Total:       6000,
		ShipPincode: "110001",
		Items:       []models.OrderItem{{ProductID: 1, Quantity: 2}},
	})

	cr := &fakeCourier{estimate: now.AddDate(0, 0, 5)}
	e := newTestEngine(store, cr, now)
	e.Tick(context.Background())

	assert.Equal(t, 1, cr.booked)
	assert.Equal(t, models.OrderShipped, store.orders[order.ID].Status)
	assert.NotEmpty(t, store.orders[order.ID].TrackingNumber)

	require.Len(t, store.shipments, 1)
	for _, shp := range store.shipments {
		assert.Equal(t, order.ID, shp.OrderID)
		assert.Equal(t, models.ShipmentPending, shp.Status)
		assert.Contains(t, shp.ShipmentNo, "SHP-")
	}
}

func TestShipProcessingBooksQuotedCarrierAndWeight(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	// Total crossed the high-value threshold only because of shipping; the
	// carrier quoted at checkout must still be the one booked.
	store.addOrder(models.Order{
		OrderNo:     "ORD-1",
		Status:      models.OrderProcessing,
		CreatedAt:   now.Add(-45 * time.Minute),
		Subtotal:    4998,
		Total:       5063,
		Carrier:     courier.CarrierDTDC,
		ShipPincode: "682001",
		Items: []models.OrderItem{
			{ProductID: 1, Quantity: 2, WeightKg: 1.2},
			{ProductID: 2, Quantity: 1, WeightKg: 0.3},
		},
	})

	cr := &fakeCourier{estimate: now.AddDate(0, 0, 4)}
	e := newTestEngine(store, cr, now)
	e.Tick(context.Background())

	require.Equal(t, 1, cr.booked)
	assert.Equal(t, courier.CarrierDTDC, cr.lastReq.Carrier)
	assert.InDelta(t, 2.7, cr.lastReq.WeightKg, 0.0001)
}

func TestShipProcessingWaitsForWindow(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.addOrder(models.Order{OrderNo: "ORD-1", Status: models.OrderProcessing, CreatedAt: now.Add(-10 * time.Minute)})

	cr := &fakeCourier{estimate: now.AddDate(0, 0, 5)}
	e := newTestEngine(store, cr, now)
	e.Tick(context.Background())

	assert.Zero(t, cr.booked)
	assert.Empty(t, store.shipments)
}

func TestTrackShipmentsRecordsProgress(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	order := store.addOrder(models.Order{OrderNo: "ORD-1", Status: models.OrderShipped})
	shipped := now.Add(-2 * time.Hour)
	store.CreateShipment(&models.Shipment{
		ShipmentNo:        "SHP-1",
		OrderID:           order.ID,
		TrackingNumber:    "FK0000000001",
		Status:            models.ShipmentPending,
		ShippedDate:       &shipped,
		EstimatedDelivery: now.AddDate(0, 0, 3),
	})

	cr := &fakeCourier{trackStatus: models.ShipmentInTransit}
	e := newTestEngine(store, cr, now)
	e.Tick(context.Background())

	require.Len(t, store.updates, 1)
	assert.Equal(t, models.ShipmentInTransit, store.updates[0].Status)
	assert.Equal(t, models.OrderShipped, store.orders[order.ID].Status)
}

func TestTrackShipmentsDeliversOrder(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	order := store.addOrder(models.Order{OrderNo: "ORD-1", Status: models.OrderShipped})
	shipped := now.Add(-96 * time.Hour)
	store.CreateShipment(&models.Shipment{
		ShipmentNo:        "SHP-1",
		OrderID:           order.ID,
		TrackingNumber:    "FK0000000001",
		Status:            models.ShipmentOutForDelivery,
		ShippedDate:       &shipped,
		EstimatedDelivery: now.Add(-time.Hour),
	})

	cr := &fakeCourier{trackStatus: models.ShipmentDelivered}
	e := newTestEngine(store, cr, now)
	e.Tick(context.Background())

	assert.Equal(t, models.OrderDelivered, store.orders[order.ID].Status)
	for _, shp := range store.shipments {
		assert.Equal(t, models.ShipmentDelivered, shp.Status)
		assert.NotNil(t, shp.DeliveredDate)
	}
}

func TestOverdueShipmentSettlesWithoutCourier(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	order := store.addOrder(models.Order{OrderNo: "ORD-1", Status: models.OrderShipped})
	shipped := now.Add(-10 * 24 * time.Hour)
	store.CreateShipment(&models.Shipment{
		ShipmentNo:        "SHP-1",
		OrderID:           order.ID,
		TrackingNumber:    "FK0000000001",
		Status:            models.ShipmentInTransit,
		ShippedDate:       &shipped,
		EstimatedDelivery: now.Add(-48 * time.Hour), // past estimate + overdue window
	})

	// Courier reports stale in_transit; the overdue rule must win.
	cr := &fakeCourier{trackStatus: models.ShipmentInTransit}
	e := newTestEngine(store, cr, now)
	e.Tick(context.Background())

	assert.Equal(t, models.OrderDelivered, store.orders[order.ID].Status)
}

func TestReturnLifecycle(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	ret := store.addReturn(models.ReturnRequest{
		ReturnNo:    "RET-1",
		Status:      models.ReturnPending,
		RequestDate: now.Add(-30 * time.Hour),
		Amount:      1499,
	})

	e := newTestEngine(store, &fakeCourier{}, now)
	e.Tick(context.Background())

	require.Equal(t, models.ReturnApproved, store.returns[ret.ID].Status)
	require.NotNil(t, store.returns[ret.ID].ApprovedDate)

	// Advance past the refund window and tick again.
	later := now.Add(50 * time.Hour)
	e.now = func() time.Time { return later }
	e.Tick(context.Background())

	assert.Equal(t, models.ReturnProcessed, store.returns[ret.ID].Status)
	assert.Regexp(t, `^REF-\d+$`, store.returns[ret.ID].RefundID)
	assert.NotNil(t, store.returns[ret.ID].ProcessedDate)
}

func TestFreshReturnIsLeftAlone(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	ret := store.addReturn(models.ReturnRequest{
		ReturnNo:    "RET-1",
		Status:      models.ReturnPending,
		RequestDate: now.Add(-2 * time.Hour),
	})

	e := newTestEngine(store, &fakeCourier{}, now)
	e.Tick(context.Background())

	assert.Equal(t, models.ReturnPending, store.returns[ret.ID].Status)
}

func TestStartStop(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, &fakeCourier{}, time.Now())

	assert.False(t, e.Running())
	e.Start(context.Background())
	assert.True(t, e.Running())
	e.Start(context.Background()) // idempotent
	assert.True(t, e.Running())
	e.Stop()
	assert.False(t, e.Running())
	e.Stop() // idempotent
}

func TestAutomatedTransitionsLogActivity(t *testing.T) {
	now := time.Now()
	store := newMemStore()
	store.addOrder(models.Order{OrderNo: "ORD-1", Status: models.OrderPending, CreatedAt: now.Add(-10 * time.Minute)})

	e := newTestEngine(store, &fakeCourier{}, now)
	e.Tick(context.Background())

	require.Len(t, store.activities, 1)
	assert.True(t, store.activities[0].Automated)
	assert.Equal(t, "order_confirmed", store.activities[0].Action)
}
