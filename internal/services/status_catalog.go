package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"
)

// StatusCatalog maps stable status codes to their storage ids.
// Order, item and order-type codes are fixed and loaded once; delivery codes
// are an open set and are looked up lazily.
type StatusCatalog struct {
	orderStatusIDs map[models.OrderStatusCode]int64
	itemStatusIDs  map[models.OrderItemStatusCode]int64
	orderTypeIDs   map[models.OrderTypeCode]int64

	repo           repositories.StatusRepository
	mu             sync.RWMutex
	deliveryStatus map[models.DeliveryStatusCode]int64
}

// LoadStatusCatalog reads every lookup table and fails if a fixed code is missing.
func LoadStatusCatalog(ctx context.Context, repo repositories.StatusRepository) (*StatusCatalog, error) {
	c := &StatusCatalog{
		orderStatusIDs: map[models.OrderStatusCode]int64{},
		itemStatusIDs:  map[models.OrderItemStatusCode]int64{},
		orderTypeIDs:   map[models.OrderTypeCode]int64{},
		deliveryStatus: map[models.DeliveryStatusCode]int64{},
		repo:           repo,
	}

	orderRows, err := repo.ListOrderStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading order statuses: %w", err)
	}
	for _, r := range orderRows {
		c.orderStatusIDs[models.OrderStatusCode(r.Code)] = r.ID
	}
	for _, code := range models.OrderStatusCodes {
		if _, ok := c.orderStatusIDs[code]; !ok {
			return nil, fmt.Errorf("order status %s is missing from storage", code)
		}
	}

	itemRows, err := repo.ListOrderItemStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading order item statuses: %w", err)
	}
	for _, r := range itemRows {
		c.itemStatusIDs[models.OrderItemStatusCode(r.Code)] = r.ID
	}
	for _, code := range models.OrderItemStatusCodes {
		if _, ok := c.itemStatusIDs[code]; !ok {
			return nil, fmt.Errorf("order item status %s is missing from storage", code)
		}
	}

	typeRows, err := repo.ListOrderTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading order types: %w", err)
	}
	for _, r := range typeRows {
		c.orderTypeIDs[models.OrderTypeCode(r.Code)] = r.ID
	}
	for _, code := range models.OrderTypeCodes {
		if _, ok := c.orderTypeIDs[code]; !ok {
			return nil, fmt.Errorf("order type %s is missing from storage", code)
		}
	}

	deliveryRows, err := repo.ListDeliveryStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading delivery statuses: %w", err)
	}
	for _, r := range deliveryRows {
		c.deliveryStatus[models.DeliveryStatusCode(r.Code)] = r.ID
	}

	return c, nil
}

// OrderStatusID returns the id of an order status code.
func (c *StatusCatalog) OrderStatusID(code models.OrderStatusCode) (int64, error) {
	id, ok := c.orderStatusIDs[code]
	if !ok {
		return 0, fmt.Errorf("%w: order status %q", ErrUnknownStatus, code)
	}
	return id, nil
}

// ItemStatusID returns the id of an order item status code.
func (c *StatusCatalog) ItemStatusID(code models.OrderItemStatusCode) (int64, error) {
	id, ok := c.itemStatusIDs[code]
	if !ok {
		return 0, fmt.Errorf("%w: order item status %q", ErrUnknownStatus, code)
	}
	return id, nil
}

// OrderTypeID returns the id of an order type code.
func (c *StatusCatalog) OrderTypeID(code models.OrderTypeCode) (int64, error) {
	id, ok := c.orderTypeIDs[code]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrderType, code)
	}
	return id, nil
}

// DeliveryStatusID resolves a delivery status code, consulting storage for codes
// added after startup.
func (c *StatusCatalog) DeliveryStatusID(ctx context.Context, code models.DeliveryStatusCode) (int64, error) {
	c.mu.RLock()
	id, ok := c.deliveryStatus[code]
	c.mu.RUnlock()
	if ok {
		return id, nil
	}

	row, err := c.repo.FindDeliveryStatusByCode(ctx, string(code))
	if err != nil {
		if isNotFound(err) {
			return 0, fmt.Errorf("%w: delivery status %q", ErrUnknownStatus, code)
		}
		return 0, fmt.Errorf("looking up delivery status %q: %w", code, err)
	}

	c.mu.Lock()
	c.deliveryStatus[code] = row.ID
	c.mu.Unlock()
	return row.ID, nil
}

// normalizeCode upper-cases client input so "cooking" and "COOKING" match.
func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
