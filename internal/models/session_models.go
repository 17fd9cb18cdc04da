package models

import "time"

// OrderSession is a time-limited capability granting a QR visitor access to one table.
type OrderSession struct {
	ID        int64     `json:"id"`
	TableID   int64     `json:"table_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidAt reports whether the session authorises requests at t.
func (s *OrderSession) ValidAt(t time.Time) bool {
	return s.IsActive && t.Before(s.ExpiresAt)
}
