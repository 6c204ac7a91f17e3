package models

import (
	"time"
)

// Shipment statuses
const (
	ShipmentPending        = "pending"
	ShipmentInTransit      = "in_transit"
	ShipmentOutForDelivery = "out_for_delivery"
	ShipmentDelivered      = "delivered"
	ShipmentFailed         = "failed"
)

// Return request statuses
const (
	ReturnPending   = "pending"
	ReturnApproved  = "approved"
	ReturnRejected  = "rejected"
	ReturnProcessed = "processed"
)

type Shipment struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	ShipmentNo        string           `gorm:"size:50;unique;not null" json:"shipment_no"`
	OrderID           uint             `gorm:"index" json:"order_id"`
	Order             Order            `gorm:"foreignKey:OrderID" json:"-"`
	TrackingNumber    string           `gorm:"size:60;index" json:"tracking_number"`
	Carrier           string           `gorm:"size:30" json:"carrier"`
	Status            string           `gorm:"size:20;default:'pending'" json:"status"`
	ShippedDate       *time.Time       `json:"shipped_date,omitempty"`
	EstimatedDelivery time.Time        `json:"estimated_delivery"`
	DeliveredDate     *time.Time       `json:"delivered_date,omitempty"`
	TrackingUpdates   []TrackingUpdate `gorm:"foreignKey:ShipmentID" json:"tracking_updates"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

type TrackingUpdate struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ShipmentID uint      `gorm:"index" json:"shipment_id"`
	Status     string    `gorm:"size:20" json:"status"`
	Location   string    `gorm:"size:100" json:"location"`
	Remark     string    `gorm:"size:255" json:"remark"`
	Timestamp  time.Time `json:"timestamp"`
}

type ReturnRequest struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ReturnNo      string     `gorm:"size:50;unique;not null" json:"return_no"`
	OrderID       uint       `gorm:"index" json:"order_id"`
	Order         Order      `gorm:"foreignKey:OrderID" json:"-"`
	CustomerID    uint       `json:"customer_id"`
	CustomerName  string     `gorm:"size:100" json:"customer_name"`
	CustomerEmail string     `gorm:"size:150" json:"customer_email"`
	Reason        string     `gorm:"type:text" json:"reason"`
	Status        string     `gorm:"size:20;default:'pending'" json:"status"`
	Amount        float64    `gorm:"type:decimal(10,2)" json:"amount"`
	RequestDate   time.Time  `json:"request_date"`
	ApprovedDate  *time.Time `json:"approved_date,omitempty"`
	ProcessedDate *time.Time `json:"processed_date,omitempty"`
	RefundID      string     `gorm:"size:50" json:"refund_id,omitempty"`
	RejectReason  string     `gorm:"size:255" json:"reject_reason,omitempty"`
}
