package courier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Simulated is the default courier backend. It books shipments locally and
// derives tracking progress from how far the shipment is through its
// delivery window, so repeated polls always agree with each other.
type Simulated struct {
	log *logrus.Entry
}

func NewSimulated() *Simulated {
	return &Simulated{log: logrus.WithField("courier", "simulated")}
}

func (s *Simulated) Name() string { return "simulated" }

func (s *Simulated) CreateShipment(ctx context.Context, req ShipmentRequest) (*ShipmentInfo, error) {
	prefix := map[string]string{
		CarrierDelhivery: "DL",
		CarrierDTDC:      "DT",
		CarrierBluedart:  "BD",
	}[req.Carrier]
	if prefix == "" {
		prefix = "SH"
	}

	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:12]
	info := &ShipmentInfo{
		TrackingNumber:    fmt.Sprintf("%s%s", prefix, token),
		Carrier:           req.Carrier,
		EstimatedDelivery: time.Now().AddDate(0, 0, TransitDays(req.Carrier, req.Pincode)),
	}

	s.log.WithFields(logrus.Fields{
		"order":    req.OrderNo,
		"carrier":  req.Carrier,
		"tracking": info.TrackingNumber,
	}).Info("shipment booked")

	return info, nil
}

func (s *Simulated) Cancel(ctx context.Context, trackingNumber string) error {
	s.log.WithField("tracking", trackingNumber).Info("shipment cancelled")
	return nil
}

// Track maps elapsed fraction of the delivery window onto the carrier
// status ladder: pending, in_transit, out_for_delivery, delivered.
func (s *Simulated) Track(ctx context.Context, q TrackQuery) (*TrackingStatus, error) {
	now := time.Now()
	window := q.EstimatedDelivery.Sub(q.ShippedAt)
	if window <= 0 {
		window = 24 * time.Hour
	}
	progress := float64(now.Sub(q.ShippedAt)) / float64(window)

	st := &TrackingStatus{At: now}
	switch {
	case progress >= 1.0:
		st.Status = "delivered"
		st.Location = "Destination"
		st.Remark = "Package delivered"
	case progress >= 0.75:
		st.Status = "out_for_delivery"
		st.Location = "Destination hub"
		st.Remark = "Out for delivery"
	case progress >= 0.15:
		st.Status = "in_transit"
		st.Location = "Transit hub"
		st.Remark = "Package in transit"
	default:
		st.Status = "pending"
		st.Location = "Origin facility"
		st.Remark = "Awaiting pickup"
	}
	return st, nil
}
