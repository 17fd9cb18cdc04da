package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderShipper records which shipper was assigned to an order and when.
type OrderShipper struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	ShipperID  int64     `json:"shipper_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// Delivery tracks the physical hand-off of a DELIVERY order.
type Delivery struct {
	ID             int64              `json:"id"`
	OrderID        int64              `json:"order_id"`
	OrderShipperID int64              `json:"order_shipper_id"`
	ShipperID      int64              `json:"shipper_id"`
	StatusID       int64              `json:"-"`
	Status         DeliveryStatusCode `json:"status"`
	DeliveryFee    decimal.Decimal    `json:"delivery_fee"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`

	DeliveryInfo *OrderDeliveryInfo `json:"delivery_info,omitempty"`
}
