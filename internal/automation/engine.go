// Package automation runs the order-lifecycle engine: a single scheduler
// that re-evaluates a fixed table of named transition rules on every tick.
// Each rule guards on elapsed wall-clock time and advances orders,
// shipments, and return requests through their status machines.
package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/config"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/courier"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/models"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/notify"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/payment"
	"github.com/Adulsatl/ss-handloom-e-commerce-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type rule struct {
	name string
	run  func(ctx context.Context) (int, error)
}

// Engine evaluates all lifecycle rules from one ticker. A rule failure is
// logged and the remaining rules still run; nothing here is fatal.
type Engine struct {
	store    repository.Store
	courier  courier.Courier
	notifier *notify.Notifier
	cfg      config.AutomationConfig
	now      func() time.Time
	log      *logrus.Entry
	rules    []rule

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewEngine(store repository.Store, cr courier.Courier, notifier *notify.Notifier, cfg config.AutomationConfig) *Engine {
	e := &Engine{
		store:    store,
		courier:  cr,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		log:      logrus.WithField("component", "automation"),
	}
	e.rules = []rule{
		{name: "confirm_pending_orders", run: e.confirmPendingOrders},
		{name: "ship_processing_orders", run: e.shipProcessingOrders},
		{name: "track_shipments", run: e.trackShipments},
		{name: "approve_aged_returns", run: e.approveAgedReturns},
		{name: "refund_approved_returns", run: e.refundApprovedReturns},
	}
	return e
}

// Start launches the scheduler goroutine. Safe to call when already running.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.running = true

	go func() {
		ticker := time.NewTicker(e.cfg.TickInterval)
		defer ticker.Stop()
		e.log.WithField("interval", e.cfg.TickInterval).Info("lifecycle engine started")
		for {
			select {
			case <-runCtx.Done():
				e.log.Info("lifecycle engine stopped")
				return
			case <-ticker.C:
				e.Tick(runCtx)
			}
		}
	}()
}

// Stop halts the scheduler. Safe to call when not running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.cancel()
	e.running = false
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Tick evaluates every rule once. Exposed so the admin API can force a run
// and tests can drive the engine without the ticker.
func (e *Engine) Tick(ctx context.Context) {
	for _, r := range e.rules {
		n, err := r.run(ctx)
		if err != nil {
			e.log.WithError(err).WithField("rule", r.name).Error("rule evaluation failed")
			continue
		}
		if n > 0 {
			e.log.WithFields(logrus.Fields{"rule": r.name, "transitions": n}).Info("rule applied")
		}
	}
}

func (e *Engine) logActivity(entityType, action, details string) {
	err := e.store.AppendActivity(&models.Activity{
		Type:      entityType,
		Action:    action,
		Details:   details,
		Automated: true,
	})
	if err != nil {
		e.log.WithError(err).Warn("failed to append activity")
	}
}

// confirmPendingOrders: pending -> processing once the payment-confirmation
// window has elapsed.
func (e *Engine) confirmPendingOrders(ctx context.Context) (int, error) {
	orders, err := e.store.OrdersInStatus(models.OrderPending)
	if err != nil {
		return 0, err
	}

	count := 0
	now := e.now()
	for i := range orders {
		o := &orders[i]
		if now.Sub(o.CreatedAt) < e.cfg.ProcessingAfter {
			continue
		}
		if err := e.store.SetOrderStatus(o.ID, models.OrderProcessing); err != nil {
			e.log.WithError(err).WithField("order", o.OrderNo).Error("failed to confirm order")
			continue
		}
		e.notifier.OrderProcessing(ctx, o)
		e.logActivity(models.ActivityOrder, "order_confirmed", fmt.Sprintf("Order %s moved to processing", o.OrderNo))
		count++
	}
	return count, nil
}

// shipProcessingOrders: processing -> shipped once the fulfilment window has
// elapsed. Books the shipment with the selected carrier first; the order only
// advances when booking succeeds.
func (e *Engine) shipProcessingOrders(ctx context.Context) (int, error) {
	orders, err := e.store.OrdersInStatus(models.OrderProcessing)
	if err != nil {
		return 0, err
	}

	count := 0
	now := e.now()
	for i := range orders {
		o := &orders[i]
		if now.Sub(o.CreatedAt) < e.cfg.ShipAfter {
			continue
		}

		// Book with the carrier quoted at checkout; older orders without one
		// fall back to the selection heuristic.
		carrier := o.Carrier
		if carrier == "" {
			carrier = courier.SelectCarrier(o.Subtotal, o.ShipPincode)
		}
		weight := o.ShippingWeightKg()

		codAmount := 0.0
		if o.PaymentMethod == models.PaymentCOD {
			codAmount = o.Total
		}

		info, err := e.courier.CreateShipment(ctx, courier.ShipmentRequest{
			OrderNo:        o.OrderNo,
			Carrier:        carrier,
			Name:           o.ShipName,
			Address:        o.ShipAddress,
			City:           o.ShipCity,
			State:          o.ShipState,
			Pincode:        o.ShipPincode,
			Phone:          o.ShipPhone,
			WeightKg:       weight,
			CODAmount:      codAmount,
			IdempotencyKey: uuid.NewString(),
		})
		if err != nil {
			e.log.WithError(err).WithField("order", o.OrderNo).Error("shipment booking failed")
			continue
		}

		shippedAt := now
		shp := &models.Shipment{
			ShipmentNo:        fmt.Sprintf("SHP-%d-%d", now.UnixMilli(), o.ID),
			OrderID:           o.ID,
			TrackingNumber:    info.TrackingNumber,
			Carrier:           info.Carrier,
			Status:            models.ShipmentPending,
			ShippedDate:       &shippedAt,
			EstimatedDelivery: info.EstimatedDelivery,
		}
		if err := e.store.CreateShipment(shp); err != nil {
			e.log.WithError(err).WithField("order", o.OrderNo).Error("failed to record shipment")
			continue
		}
		if err := e.store.MarkOrderShipped(o.ID, info.TrackingNumber); err != nil {
			e.log.WithError(err).WithField("order", o.OrderNo).Error("failed to mark order shipped")
			continue
		}

		e.notifier.OrderShipped(ctx, o, info.Carrier, info.TrackingNumber)
		e.logActivity(models.ActivityShipment, "shipment_created",
			fmt.Sprintf("Order %s shipped via %s (%s)", o.OrderNo, info.Carrier, info.TrackingNumber))
		count++
	}
	return count, nil
}

// trackShipments polls the courier for every moving shipment, records status
// changes, and settles shipments that are long past their estimate.
func (e *Engine) trackShipments(ctx context.Context) (int, error) {
	shipments, err := e.store.ActiveShipments()
	if err != nil {
		return 0, err
	}

	count := 0
	now := e.now()
	for i := range shipments {
		shp := &shipments[i]

		shippedAt := shp.CreatedAt
		if shp.ShippedDate != nil {
			shippedAt = *shp.ShippedDate
		}

		status := ""
		location := ""
		remark := ""

		// A shipment this far past its estimate is settled as delivered even
		// when the carrier ping is stale.
		if now.After(shp.EstimatedDelivery.Add(e.cfg.DeliveryOverdue)) {
			status = models.ShipmentDelivered
			remark = "Settled as delivered past the estimated window"
		} else {
			st, err := e.courier.Track(ctx, courier.TrackQuery{
				TrackingNumber:    shp.TrackingNumber,
				ShippedAt:         shippedAt,
				EstimatedDelivery: shp.EstimatedDelivery,
			})
			if err != nil {
				e.log.WithError(err).WithField("tracking", shp.TrackingNumber).Warn("tracking poll failed")
				continue
			}
			status = st.Status
			location = st.Location
			remark = st.Remark
		}

		if status == shp.Status {
			continue
		}

		var deliveredAt *time.Time
		if status == models.ShipmentDelivered {
			deliveredAt = &now
		}
		if err := e.store.SetShipmentStatus(shp.ID, status, deliveredAt); err != nil {
			e.log.WithError(err).WithField("shipment", shp.ShipmentNo).Error("failed to update shipment")
			continue
		}
		if err := e.store.AppendTrackingUpdate(&models.TrackingUpdate{
			ShipmentID: shp.ID,
			Status:     status,
			Location:   location,
			Remark:     remark,
			Timestamp:  now,
		}); err != nil {
			e.log.WithError(err).Warn("failed to append tracking update")
		}

		if status == models.ShipmentDelivered {
			if err := e.store.MarkOrderDelivered(shp.OrderID); err != nil {
				e.log.WithError(err).WithField("order_id", shp.OrderID).Error("failed to mark order delivered")
			} else if order, err := e.store.OrderByID(shp.OrderID); err == nil {
				e.notifier.OrderDelivered(ctx, order)
			}
			e.logActivity(models.ActivityShipment, "shipment_delivered",
				fmt.Sprintf("Shipment %s delivered", shp.ShipmentNo))
		}
		count++
	}
	return count, nil
}

// approveAgedReturns: pending -> approved after the configured review window.
func (e *Engine) approveAgedReturns(ctx context.Context) (int, error) {
	returns, err := e.store.ReturnsInStatus(models.ReturnPending)
	if err != nil {
		return 0, err
	}

	count := 0
	now := e.now()
	for i := range returns {
		r := &returns[i]
		if now.Sub(r.RequestDate) < e.cfg.ReturnApproveAfter {
			continue
		}
		r.Status = models.ReturnApproved
		approvedAt := now
		r.ApprovedDate = &approvedAt
		if err := e.store.SaveReturn(r); err != nil {
			e.log.WithError(err).WithField("return", r.ReturnNo).Error("failed to approve return")
			continue
		}
		e.notifier.ReturnApproved(ctx, r)
		e.logActivity(models.ActivityReturn, "return_approved", fmt.Sprintf("Return %s auto-approved", r.ReturnNo))
		count++
	}
	return count, nil
}

// refundApprovedReturns: approved -> processed with a refund reference after
// the pickup window.
func (e *Engine) refundApprovedReturns(ctx context.Context) (int, error) {
	returns, err := e.store.ReturnsInStatus(models.ReturnApproved)
	if err != nil {
		return 0, err
	}

	count := 0
	now := e.now()
	for i := range returns {
		r := &returns[i]
		if r.ApprovedDate == nil || now.Sub(*r.ApprovedDate) < e.cfg.ReturnRefundAfter {
			continue
		}
		r.Status = models.ReturnProcessed
		r.RefundID = payment.NewRefundID()
		processedAt := now
		r.ProcessedDate = &processedAt
		if err := e.store.SaveReturn(r); err != nil {
			e.log.WithError(err).WithField("return", r.ReturnNo).Error("failed to process refund")
			continue
		}
		e.notifier.RefundProcessed(ctx, r)
		e.logActivity(models.ActivityReturn, "refund_processed",
			fmt.Sprintf("Return %s refunded (%s)", r.ReturnNo, r.RefundID))
		count++
	}
	return count, nil
}
