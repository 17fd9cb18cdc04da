package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartOwner identifies whose cart it is. Exactly one field is set.
type CartOwner struct {
	UserID  *int64
	TableID *int64
}

// CustomerOwner returns the owner key of a logged-in customer's cart.
func CustomerOwner(userID int64) CartOwner {
	return CartOwner{UserID: &userID}
}

// TableOwner returns the owner key of a dining table's shared cart.
func TableOwner(tableID int64) CartOwner {
	return CartOwner{TableID: &tableID}
}

// Valid reports whether exactly one owner is set.
func (o CartOwner) Valid() bool {
	return (o.UserID == nil) != (o.TableID == nil)
}

// IsTable reports whether the cart belongs to a dining table.
func (o CartOwner) IsTable() bool {
	return o.TableID != nil
}

// Cart is the pre-order basket.
type Cart struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	TableID   *int64     `json:"table_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	OrderedAt *time.Time `json:"ordered_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Items []CartItem `json:"items"`
}

// Owner returns the owner key stored on the cart.
func (c *Cart) Owner() CartOwner {
	return CartOwner{UserID: c.UserID, TableID: c.TableID}
}

// CartItem is a cart line. Price and availability are read live from the menu.
type CartItem struct {
	ID         int64     `json:"id"`
	CartID     int64     `json:"cart_id"`
	MenuItemID int64     `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	MenuItemName string          `json:"menu_item_name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	IsAvailable  bool            `json:"is_available"`
}
