package models

import "time"

// Station is a kitchen preparation area.
type Station string

const (
	StationCold  Station = "COLD"
	StationHot   Station = "HOT"
	StationDrink Station = "DRINK"
)

// Stations lists the stations in display order.
var Stations = []Station{StationCold, StationHot, StationDrink}

// Valid reports whether s is one of the known stations.
func (s Station) Valid() bool {
	switch s {
	case StationCold, StationHot, StationDrink:
		return true
	}
	return false
}

// StationQueues names a station and the statuses its terminal shows as queues.
type StationQueues struct {
	Station  Station               `json:"station"`
	Statuses []OrderItemStatusCode `json:"statuses"`
}

// KitchenItemView is one line of a station queue.
type KitchenItemView struct {
	OrderItemID   int64               `json:"order_item_id" db:"order_item_id"`
	OrderID       int64               `json:"order_id" db:"order_id"`
	OrderCode     string              `json:"order_code" db:"order_code"`
	OrderType     OrderTypeCode       `json:"order_type" db:"order_type"`
	MenuItemID    int64               `json:"menu_item_id" db:"menu_item_id"`
	MenuItemName  string              `json:"menu_item_name" db:"menu_item_name"`
	CategoryName  string              `json:"category_name" db:"category_name"`
	Station       Station             `json:"station" db:"station"`
	Quantity      int                 `json:"quantity" db:"quantity"`
	Note          string              `json:"note" db:"note"`
	Status        OrderItemStatusCode `json:"status" db:"status"`
	StatusEntryID int64               `json:"status_entry_id" db:"status_entry_id"`
	StatusSince   time.Time           `json:"status_since" db:"status_since"`
	TableID       *int64              `json:"table_id,omitempty" db:"table_id"`
	TableName     *string             `json:"table_name,omitempty" db:"table_name"`
	CustomerName  *string             `json:"customer_name,omitempty" db:"customer_name"`
}

// CategoryStation maps a menu category to the station that prepares it.
type CategoryStation struct {
	CategoryID   int64     `json:"category_id" db:"category_id"`
	CategoryName string    `json:"category_name,omitempty" db:"category_name"`
	Station      Station   `json:"station" db:"station"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Category is the part of a menu category the kitchen needs.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
