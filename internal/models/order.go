package models

import (
	"time"
)

// Order statuses
const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

// Payment methods
const (
	PaymentPrepaid = "prepaid"
	PaymentCOD     = "cod"
)

type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	OrderNo        string      `gorm:"size:50;unique;not null" json:"order_no"`
	CustomerID     uint        `json:"customer_id"`
	Customer       Customer    `gorm:"foreignKey:CustomerID" json:"customer"`
	CustomerName   string      `gorm:"size:100" json:"customer_name"`
	CustomerEmail  string      `gorm:"size:150" json:"customer_email"`
	Items          []OrderItem `gorm:"foreignKey:OrderID" json:"items"`
	Subtotal       float64     `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	ShippingCost   float64     `gorm:"type:decimal(10,2);default:0.00" json:"shipping_cost"`
	Total          float64     `gorm:"type:decimal(10,2);not null" json:"total"`
	Status         string      `gorm:"size:20;default:'pending'" json:"status"`
	PaymentMethod  string      `gorm:"size:20;default:'cod'" json:"payment_method"`
	PaymentOrderID string      `gorm:"size:100" json:"payment_order_id,omitempty"`
	PaymentID      string      `gorm:"size:100" json:"payment_id,omitempty"`
	Carrier        string      `gorm:"size:30" json:"carrier,omitempty"`
	ShipName       string      `gorm:"size:100" json:"ship_name"`
	ShipAddress    string      `gorm:"type:text" json:"ship_address"`
	ShipCity       string      `gorm:"size:100" json:"ship_city"`
	ShipState      string      `gorm:"size:100" json:"ship_state"`
	ShipPincode    string      `gorm:"size:10" json:"ship_pincode"`
	ShipPhone      string      `gorm:"size:15" json:"ship_phone"`
	TrackingNumber string      `gorm:"size:60" json:"tracking_number,omitempty"`
	CancelReason   string      `gorm:"size:255" json:"cancel_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem holds price and weight snapshots, not a live product reference.
type OrderItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderID     uint    `json:"order_id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `gorm:"size:150" json:"product_name"`
	Size        string  `gorm:"size:20" json:"size,omitempty"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	WeightKg    float64 `gorm:"type:decimal(6,2);default:0.5" json:"weight_kg"`
}

// ShippingWeightKg sums the snapshotted item weights. Items persisted before
// the snapshot existed fall back to the catalog default of half a kilogram.
func (o *Order) ShippingWeightKg() float64 {
	total := 0.0
	for _, item := range o.Items {
		w := item.WeightKg
		if w == 0 {
			w = 0.5
		}
		total += w * float64(item.Quantity)
	}
	return total
}
