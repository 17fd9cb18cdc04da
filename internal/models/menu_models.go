package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MenuItem is a dish or drink that can be ordered.
type MenuItem struct {
	ID           int64           `json:"id" db:"id"`
	CategoryID   int64           `json:"category_id" db:"category_id"`
	CategoryName string          `json:"category_name,omitempty" db:"category_name"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	IsAvailable  bool            `json:"is_available" db:"is_available"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// DiningTable is a physical table in the restaurant.
type DiningTable struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Seats     int       `json:"seats" db:"seats"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
