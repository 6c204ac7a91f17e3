package courier

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

// Carriers
const (
	CarrierDelhivery = "delhivery"
	CarrierDTDC      = "dtdc"
	CarrierBluedart  = "bluedart"
)

var ErrCarrierUnavailable = errors.New("carrier api unavailable")

// ShipmentRequest is the carrier-neutral shipment creation payload.
type ShipmentRequest struct {
	OrderNo        string
	Carrier        string
	Name           string
	Address        string
	City           string
	State          string
	Pincode        string
	Phone          string
	WeightKg       float64
	CODAmount      float64 // 0 for prepaid
	IdempotencyKey string
}

// ShipmentInfo is the result of a shipment creation call.
type ShipmentInfo struct {
	TrackingNumber    string
	Carrier           string
	EstimatedDelivery time.Time
}

// TrackQuery carries what the tracking backends need. The simulated courier
// derives progress from the shipped/estimate window; the live client only
// uses the tracking number.
type TrackQuery struct {
	TrackingNumber    string
	ShippedAt         time.Time
	EstimatedDelivery time.Time
}

type TrackingStatus struct {
	Status   string
	Location string
	Remark   string
	At       time.Time
}

// Courier is the single abstraction over shipping providers. Implementations:
// Simulated (default) and Delhivery (live REST).
type Courier interface {
	Name() string
	CreateShipment(ctx context.Context, req ShipmentRequest) (*ShipmentInfo, error)
	Track(ctx context.Context, q TrackQuery) (*TrackingStatus, error)
	Cancel(ctx context.Context, trackingNumber string) error
}

// SelectCarrier picks a carrier for an order. High-value orders go to
// Delhivery, pincodes starting with "6" (south zone) to DTDC, everything
// else to BlueDart.
func SelectCarrier(orderTotal float64, pincode string) string {
	if orderTotal > 5000 {
		return CarrierDelhivery
	}
	if strings.HasPrefix(pincode, "6") {
		return CarrierDTDC
	}
	return CarrierBluedart
}

// OriginPincode is the dispatch warehouse pincode (Kannur).
const OriginPincode = "670001"

// RateBreakdown itemises a shipping quote.
type RateBreakdown struct {
	Carrier        string  `json:"carrier"`
	BaseFee        float64 `json:"base_fee"`
	DistanceCharge float64 `json:"distance_charge"`
	WeightCharge   float64 `json:"weight_charge"`
	CODFee         float64 `json:"cod_fee"`
	Total          float64 `json:"total"`
}

// zoneDistance is a crude distance bucket: the gap between the first digits
// of the origin and destination pincodes.
func zoneDistance(pincode string) int {
	if len(pincode) == 0 || pincode[0] < '1' || pincode[0] > '9' {
		return 4
	}
	d := int(pincode[0]) - int(OriginPincode[0])
	if d < 0 {
		d = -d
	}
	return d
}

// CalculateRate quotes shipping for a destination pincode and parcel weight.
// First kilogram is included in the base fee; every further started kilogram
// costs a flat surcharge. COD adds a collection fee.
func CalculateRate(carrier, pincode string, weightKg float64, cod bool) RateBreakdown {
	base := 40.0
	if carrier == CarrierDelhivery {
		base = 60.0
	}

	distance := float64(zoneDistance(pincode)) * 15.0

	extraKg := math.Ceil(weightKg) - 1
	if extraKg < 0 {
		extraKg = 0
	}
	weight := extraKg * 20.0

	codFee := 0.0
	if cod {
		codFee = 25.0
	}

	return RateBreakdown{
		Carrier:        carrier,
		BaseFee:        base,
		DistanceCharge: distance,
		WeightCharge:   weight,
		CODFee:         codFee,
		Total:          base + distance + weight + codFee,
	}
}

// TransitDays estimates delivery time: a carrier base plus one day per zone.
func TransitDays(carrier, pincode string) int {
	base := 4
	switch carrier {
	case CarrierDelhivery:
		base = 2
	case CarrierDTDC:
		base = 3
	}
	return base + zoneDistance(pincode)
}
