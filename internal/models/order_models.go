package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed order. TotalAmount is fixed when the order is created.
type Order struct {
	ID          int64           `json:"id"`
	OrderCode   string          `json:"order_code"`
	UserID      *int64          `json:"user_id,omitempty"`
	TableID     *int64          `json:"table_id,omitempty"`
	OrderTypeID int64           `json:"-"`
	OrderType   OrderTypeCode   `json:"order_type"`
	StatusID    int64           `json:"-"`
	Status      OrderStatusCode `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Note        *string         `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Items        []OrderItem        `json:"items,omitempty"`
	DeliveryInfo *OrderDeliveryInfo `json:"delivery_info,omitempty"`
}

// OrderItem is a line of an order. Its status lives in the status ledger.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	MenuItemID   int64           `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Note         string          `json:"note"`
	CreatedAt    time.Time       `json:"created_at"`

	// Status, StatusEntryID and StatusChangedAt come from the latest ledger entry.
	Status          OrderItemStatusCode `json:"status,omitempty"`
	StatusEntryID   int64               `json:"status_entry_id,omitempty"`
	StatusChangedAt time.Time           `json:"status_changed_at"`
}

// LineTotal is UnitPrice multiplied by Quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItemStatusEntry is one append-only row of the item status ledger.
type OrderItemStatusEntry struct {
	ID          int64               `json:"id"`
	OrderItemID int64               `json:"order_item_id"`
	StatusID    int64               `json:"-"`
	Status      OrderItemStatusCode `json:"status"`
	ChangedBy   *int64              `json:"changed_by,omitempty"`
	Note        *string             `json:"note,omitempty"`
	ChangedAt   time.Time           `json:"changed_at"`
}

// OrderDeliveryInfo holds receiver details of a DELIVERY order.
type OrderDeliveryInfo struct {
	ID            int64   `json:"id"`
	OrderID       int64   `json:"order_id"`
	ReceiverName  string  `json:"receiver_name"`
	ReceiverPhone string  `json:"receiver_phone"`
	Address       string  `json:"address"`
	Note          *string `json:"note,omitempty"`
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	UserID    *int64     `form:"user_id"`
	TableID   *int64     `form:"table_id"`
	Status    *string    `form:"status"`
	OrderType *string    `form:"order_type"`
	Date      *string    `form:"date"` // Expected format YYYY-MM-DD
	Since     *time.Time `form:"-"`
	Page      int        `form:"page"`
	PageSize  int        `form:"page_size"`
}
