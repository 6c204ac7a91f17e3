package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Delhivery talks to the Delhivery REST API. Shipment creation sends an
// Idempotency-Key header so a retried create cannot double-book.
type Delhivery struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Entry
}

func NewDelhivery(baseURL, apiKey string, timeout time.Duration) *Delhivery {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Delhivery{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		log:     logrus.WithField("courier", "delhivery"),
	}
}

func (d *Delhivery) Name() string { return "delhivery" }

type delhiveryCreateRequest struct {
	OrderNo   string  `json:"order"`
	Name      string  `json:"name"`
	Address   string  `json:"add"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	Pincode   string  `json:"pin"`
	Phone     string  `json:"phone"`
	WeightKg  float64 `json:"weight"`
	CODAmount float64 `json:"cod_amount"`
}

type delhiveryCreateResponse struct {
	Success  bool   `json:"success"`
	Waybill  string `json:"waybill"`
	Remarks  string `json:"rmk"`
	EDD      string `json:"edd"` // YYYY-MM-DD
	ErrorMsg string `json:"error"`
}

func (d *Delhivery) CreateShipment(ctx context.Context, req ShipmentRequest) (*ShipmentInfo, error) {
	payload := delhiveryCreateRequest{
		OrderNo:   req.OrderNo,
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
		Phone:     req.Phone,
		WeightKg:  req.WeightKg,
		CODAmount: req.CODAmount,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/cmu/create.json", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Token "+d.apiKey)
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.log.WithError(err).Error("create shipment call failed")
		return nil, fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		d.log.WithField("status", resp.StatusCode).Error("create shipment rejected")
		return nil, fmt.Errorf("create shipment failed with status %d", resp.StatusCode)
	}

	var out delhiveryCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("create shipment rejected: %s", out.Remarks)
	}

	edd, err := time.Parse("2006-01-02", out.EDD)
	if err != nil {
		edd = time.Now().AddDate(0, 0, TransitDays(CarrierDelhivery, req.Pincode))
	}

	d.log.WithFields(logrus.Fields{"order": req.OrderNo, "waybill": out.Waybill}).Info("shipment booked")
	return &ShipmentInfo{
		TrackingNumber:    out.Waybill,
		Carrier:           CarrierDelhivery,
		EstimatedDelivery: edd,
	}, nil
}

// Cancel voids a booked waybill. Delhivery models this as an edit with the
// cancellation flag set.
func (d *Delhivery) Cancel(ctx context.Context, trackingNumber string) error {
	body, err := json.Marshal(map[string]interface{}{
		"waybill":      trackingNumber,
		"cancellation": true,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/p/edit", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Token "+d.apiKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.log.WithError(err).Error("cancel call failed")
		return fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cancel failed with status %d", resp.StatusCode)
	}

	d.log.WithField("waybill", trackingNumber).Info("shipment cancelled")
	return nil
}

type delhiveryTrackResponse struct {
	ShipmentData []struct {
		Shipment struct {
			Status struct {
				Status       string `json:"Status"`
				Location     string `json:"StatusLocation"`
				Instructions string `json:"Instructions"`
				DateTime     string `json:"StatusDateTime"`
			} `json:"Status"`
		} `json:"Shipment"`
	} `json:"ShipmentData"`
}

// statusMap normalizes Delhivery scan statuses onto our shipment enum.
var statusMap = map[string]string{
	"Manifested":      "pending",
	"In Transit":      "in_transit",
	"Pending":         "in_transit",
	"Dispatched":      "out_for_delivery",
	"Out for Deliver": "out_for_delivery",
	"Delivered":       "delivered",
	"RTO":             "failed",
	"Lost":            "failed",
}

func (d *Delhivery) Track(ctx context.Context, q TrackQuery) (*TrackingStatus, error) {
	url := fmt.Sprintf("%s/api/v1/packages/json/?waybill=%s", d.baseURL, q.TrackingNumber)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Token "+d.apiKey)

	resp, err := d.client.Do(httpReq)
	if err != nil {
		d.log.WithError(err).Error("track call failed")
		return nil, fmt.Errorf("%w: %v", ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("track failed with status %d", resp.StatusCode)
	}

	var out delhiveryTrackResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.ShipmentData) == 0 {
		return nil, fmt.Errorf("no tracking data for waybill %s", q.TrackingNumber)
	}

	raw := out.ShipmentData[0].Shipment.Status
	status, ok := statusMap[raw.Status]
	if !ok {
		status = "in_transit"
	}

	at, err := time.Parse(time.RFC3339, raw.DateTime)
	if err != nil {
		at = time.Now()
	}

	return &TrackingStatus{
		Status:   status,
		Location: raw.Location,
		Remark:   raw.Instructions,
		At:       at,
	}, nil
}
