package services

import (
	"errors"
	"fmt"

	"restaurant_backend/internal/repositories"
)

// --- Custom Service Errors ---
var (
	ErrValidation = errors.New("validation error") // Generic validation error
	ErrForbidden  = errors.New("operation not permitted for this caller")

	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrTableNotFound     = errors.New("dining table not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrDeliveryNotFound  = errors.New("delivery not found")
	ErrUserNotFound      = errors.New("user not found")

	ErrUnknownStatus        = errors.New("unknown status code")
	ErrUnknownStation       = errors.New("unknown station")
	ErrUnknownOrderType     = errors.New("unknown or disallowed order type")
	ErrIllegalTransition    = errors.New("illegal status transition")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrItemUnavailable      = errors.New("menu item is not available")
	ErrDeliveryInfoRequired = errors.New("delivery orders need receiver name, phone and address")
	ErrNotAShipper          = errors.New("user is not a shipper")

	ErrConflict                = errors.New("state changed concurrently")
	ErrDeliveryAlreadyAssigned = errors.New("order already has an active delivery")

	ErrInvalidOrExpiredSession = errors.New("table session is invalid or expired")
	ErrSessionCacheUnavailable = errors.New("session cache unavailable")
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrTokenGeneration         = errors.New("failed to generate token")
)

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

// mapRepoConflict lifts a lost compare-and-swap or lock timeout into ErrConflict.
func mapRepoConflict(err error) error {
	if errors.Is(err, repositories.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
