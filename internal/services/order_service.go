package services

import (
	"context"
	"fmt"
	"time"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// --- Data Transfer Objects (DTOs) ---

// TransitionItemRequest moves one order item to a new status.
// ExpectedStatus and ExpectedEntryID let a client assert what it last saw;
// a mismatch is reported as a conflict instead of overwriting someone else's change.
type TransitionItemRequest struct {
	Status          string  `json:"status" binding:"required"`
	ExpectedStatus  string  `json:"expected_status"`
	ExpectedEntryID int64   `json:"expected_entry_id"`
	Note            *string `json:"note"`
}

// UpdateOrderStatusRequest is used for updating the status of an order.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- End of DTOs ---

// OrderService owns the order aggregate and the item status ledger.
type OrderService interface {
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error)
	ListTableOrders(ctx context.Context, tableID int64, since *time.Time) ([]models.Order, error)
	ListCustomerOrders(ctx context.Context, userID int64) ([]models.Order, error)
	ItemHistory(ctx context.Context, orderID, itemID int64) ([]models.OrderItemStatusEntry, error)

	TransitionItem(ctx context.Context, itemID int64, req TransitionItemRequest, actorID *int64) (*models.OrderItemStatusEntry, error)
	ConfirmOrder(ctx context.Context, orderID int64, actorID *int64) (*models.Order, error)
	CancelOrder(ctx context.Context, orderID int64, actorID *int64) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateOrderStatusRequest, actorID *int64) (*models.Order, error)
	RequestPayment(ctx context.Context, tableID, orderID int64, seatedAt time.Time) (*models.Order, error)
}

type orderService struct {
	orderRepo  repositories.OrderRepository
	ledgerRepo repositories.LedgerRepository
	catalog    *StatusCatalog
	tx         repositories.Transactor
	db         repositories.SQLExecutor
	now        func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	lr repositories.LedgerRepository,
	catalog *StatusCatalog,
	tx repositories.Transactor,
	db repositories.SQLExecutor,
) OrderService {
	return &orderService{
		orderRepo:  or,
		ledgerRepo: lr,
		catalog:    catalog,
		tx:         tx,
		db:         db,
		now:        time.Now,
	}
}

// --- Reads ---

func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, s.db, orderID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to retrieve order %d: %w", orderID, err)
	}
	if err := s.loadDetails(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) loadDetails(ctx context.Context, order *models.Order) error {
	items, err := s.orderRepo.GetOrderItems(ctx, s.db, order.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve items for order %d: %w", order.ID, err)
	}
	order.Items = items

	if order.OrderType == models.OrderTypeDelivery {
		info, err := s.orderRepo.GetDeliveryInfo(ctx, s.db, order.ID)
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to retrieve delivery info for order %d: %w", order.ID, err)
		}
		order.DeliveryInfo = info
	}
	return nil
}

func (s *orderService) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = defaultPageSize
	}
	if filters.PageSize > maxPageSize {
		filters.PageSize = maxPageSize
	}

	orders, total, err := s.orderRepo.GetOrders(ctx, s.db, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

// ListTableOrders returns the table's orders with items, newest first.
// since narrows the list to the current seating.
func (s *orderService) ListTableOrders(ctx context.Context, tableID int64, since *time.Time) ([]models.Order, error) {
	return s.listWithItems(ctx, models.OrderFilters{TableID: &tableID, Since: since})
}

func (s *orderService) ListCustomerOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.listWithItems(ctx, models.OrderFilters{UserID: &userID, PageSize: maxPageSize})
}

func (s *orderService) listWithItems(ctx context.Context, filters models.OrderFilters) ([]models.Order, error) {
	orders, _, err := s.orderRepo.GetOrders(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	for i := range orders {
		if err := s.loadDetails(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (s *orderService) ItemHistory(ctx context.Context, orderID, itemID int64) ([]models.OrderItemStatusEntry, error) {
	item, err := s.orderRepo.GetOrderItem(ctx, s.db, itemID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrOrderItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to retrieve order item %d: %w", itemID, err)
	}
	if item.OrderID != orderID {
		return nil, fmt.Errorf("%w: item %d does not belong to order %d", ErrOrderItemNotFound, itemID, orderID)
	}
	history, err := s.ledgerRepo.StatusHistory(ctx, s.db, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve status history of item %d: %w", itemID, err)
	}
	return history, nil
}

// --- Item transitions ---

// TransitionItem appends one ledger entry moving the item to req.Status.
// Locks are always taken order first, then item.
func (s *orderService) TransitionItem(ctx context.Context, itemID int64, req TransitionItemRequest, actorID *int64) (*models.OrderItemStatusEntry, error) {
	target := models.OrderItemStatusCode(normalizeCode(req.Status))
	targetID, err := s.catalog.ItemStatusID(target)
	if err != nil {
		return nil, err
	}

	var appended *models.OrderItemStatusEntry
	var from models.OrderItemStatusCode
	err = s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		item, err := s.orderRepo.GetOrderItem(ctx, tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrOrderItemNotFound, itemID)
			}
			return fmt.Errorf("failed to retrieve order item %d: %w", itemID, err)
		}

		order, err := s.orderRepo.LockOrder(ctx, tx, item.OrderID)
		if err != nil {
			return mapRepoConflict(fmt.Errorf("failed to lock order %d: %w", item.OrderID, err))
		}
		if _, err := s.orderRepo.LockOrderItem(ctx, tx, itemID); err != nil {
			return mapRepoConflict(fmt.Errorf("failed to lock order item %d: %w", itemID, err))
		}

		latest, err := s.ledgerRepo.LatestStatus(ctx, tx, itemID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: order item %d has no status", ErrIllegalTransition, itemID)
			}
			return fmt.Errorf("failed to read status of order item %d: %w", itemID, err)
		}
		from = latest.Status

		if req.ExpectedStatus != "" && models.OrderItemStatusCode(normalizeCode(req.ExpectedStatus)) != latest.Status {
			return fmt.Errorf("%w: item %d is %s, expected %s", ErrConflict, itemID, latest.Status, normalizeCode(req.ExpectedStatus))
		}
		if req.ExpectedEntryID != 0 && req.ExpectedEntryID != latest.ID {
			return fmt.Errorf("%w: item %d latest entry is %d, expected %d", ErrConflict, itemID, latest.ID, req.ExpectedEntryID)
		}
		if latest.Status == target {
			return fmt.Errorf("%w: item %d is already %s", ErrConflict, itemID, target)
		}
		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order %d is cancelled", ErrIllegalTransition, order.ID)
		}
		if !CanTransitionItem(latest.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, latest.Status, target)
		}

		entry := &models.OrderItemStatusEntry{
			OrderItemID: itemID,
			StatusID:    targetID,
			Status:      target,
			ChangedBy:   actorID,
			Note:        req.Note,
			ChangedAt:   s.stamp(latest.ChangedAt),
		}
		if err := s.ledgerRepo.AppendStatusIfLatest(ctx, tx, entry, latest.ID); err != nil {
			return mapRepoConflict(fmt.Errorf("failed to append status for item %d: %w", itemID, err))
		}
		appended = entry

		// Kitchen work on an unconfirmed order implicitly confirms it.
		if order.Status == models.OrderStatusPending &&
			(target == models.ItemStatusCooking || target == models.ItemStatusReadyToServe) {
			if err := s.moveOrder(ctx, tx, order, models.OrderStatusConfirmed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order item status changed", map[string]interface{}{
		"order_item_id": itemID,
		"from":          from,
		"to":            target,
		"entry_id":      appended.ID,
	})
	return appended, nil
}

// stamp returns the current time, never earlier than the item's latest entry.
func (s *orderService) stamp(latest time.Time) time.Time {
	now := s.now()
	if now.Before(latest) {
		return latest
	}
	return now
}

// moveOrder validates and applies an order status change inside tx.
func (s *orderService) moveOrder(ctx context.Context, tx repositories.SQLExecutor, order *models.Order, to models.OrderStatusCode) error {
	return applyOrderTransition(ctx, tx, s.orderRepo, s.catalog, order, to, s.now())
}

// applyOrderTransition is shared by every service that changes an order's status.
func applyOrderTransition(
	ctx context.Context,
	tx repositories.SQLExecutor,
	orderRepo repositories.OrderRepository,
	catalog *StatusCatalog,
	order *models.Order,
	to models.OrderStatusCode,
	at time.Time,
) error {
	if order.Status == to {
		return fmt.Errorf("%w: order %d is already %s", ErrConflict, order.ID, to)
	}
	if !CanTransitionOrder(order.OrderType, order.Status, to) {
		return fmt.Errorf("%w: %s order %s -> %s", ErrIllegalTransition, order.OrderType, order.Status, to)
	}
	statusID, err := catalog.OrderStatusID(to)
	if err != nil {
		return err
	}
	if err := orderRepo.UpdateOrderStatus(ctx, tx, order.ID, statusID, at); err != nil {
		return fmt.Errorf("failed to update status of order %d: %w", order.ID, err)
	}

	utils.LogInfo("Order status changed", map[string]interface{}{
		"order_id": order.ID,
		"from":     order.Status,
		"to":       to,
	})
	order.Status = to
	order.StatusID = statusID
	order.UpdatedAt = at
	return nil
}

// --- Order transitions ---

// ConfirmOrder confirms a PENDING order and every item still PENDING, atomically.
func (s *orderService) ConfirmOrder(ctx context.Context, orderID int64, actorID *int64) (*models.Order, error) {
	return s.fanOut(ctx, orderID, models.OrderStatusConfirmed, models.ItemStatusConfirmed, actorID,
		func(st models.OrderItemStatusCode) bool { return st == models.ItemStatusPending })
}

// CancelOrder cancels the order and voids every item that has not been served.
func (s *orderService) CancelOrder(ctx context.Context, orderID int64, actorID *int64) (*models.Order, error) {
	return s.fanOut(ctx, orderID, models.OrderStatusCancelled, models.ItemStatusCancelled, actorID,
		func(st models.OrderItemStatusCode) bool { return cancellableItemStatuses[st] })
}

// fanOut moves the order to orderTo and appends itemTo for each item selected by pick.
func (s *orderService) fanOut(
	ctx context.Context,
	orderID int64,
	orderTo models.OrderStatusCode,
	itemTo models.OrderItemStatusCode,
	actorID *int64,
	pick func(models.OrderItemStatusCode) bool,
) (*models.Order, error) {
	itemStatusID, err := s.catalog.ItemStatusID(itemTo)
	if err != nil {
		return nil, err
	}

	touched := 0
	err = s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		order, err := s.orderRepo.LockOrder(ctx, tx, orderID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
			}
			return mapRepoConflict(fmt.Errorf("failed to lock order %d: %w", orderID, err))
		}
		if err := s.moveOrder(ctx, tx, order, orderTo); err != nil {
			return err
		}

		items, err := s.orderRepo.LockOrderItems(ctx, tx, orderID)
		if err != nil {
			return mapRepoConflict(fmt.Errorf("failed to lock items of order %d: %w", orderID, err))
		}
		for _, item := range items {
			if !pick(item.Status) {
				continue
			}
			entry := &models.OrderItemStatusEntry{
				OrderItemID: item.ID,
				StatusID:    itemStatusID,
				Status:      itemTo,
				ChangedBy:   actorID,
				ChangedAt:   s.stamp(item.StatusChangedAt),
			}
			if err := s.ledgerRepo.AppendStatusIfLatest(ctx, tx, entry, item.StatusEntryID); err != nil {
				return mapRepoConflict(fmt.Errorf("failed to append %s for item %d: %w", itemTo, item.ID, err))
			}
			touched++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Order items updated with order", map[string]interface{}{
		"order_id":    orderID,
		"order_to":    orderTo,
		"item_to":     itemTo,
		"items_moved": touched,
	})
	return s.GetOrder(ctx, orderID)
}

// UpdateOrderStatus applies a cashier action through the order transition table.
// CONFIRMED and CANCELLED fan out to the items like ConfirmOrder and CancelOrder.
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID int64, req UpdateOrderStatusRequest, actorID *int64) (*models.Order, error) {
	target := models.OrderStatusCode(normalizeCode(req.Status))
	if _, err := s.catalog.OrderStatusID(target); err != nil {
		return nil, err
	}

	switch target {
	case models.OrderStatusConfirmed:
		return s.ConfirmOrder(ctx, orderID, actorID)
	case models.OrderStatusCancelled:
		return s.CancelOrder(ctx, orderID, actorID)
	}

	err := s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		order, err := s.orderRepo.LockOrder(ctx, tx, orderID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
			}
			return mapRepoConflict(fmt.Errorf("failed to lock order %d: %w", orderID, err))
		}
		return s.moveOrder(ctx, tx, order, target)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// RequestPayment lets a seated table ask for the bill on one of its own orders.
// Orders placed before seatedAt belong to an earlier party; a zero seatedAt disables the bound.
func (s *orderService) RequestPayment(ctx context.Context, tableID, orderID int64, seatedAt time.Time) (*models.Order, error) {
	err := s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		order, err := s.orderRepo.LockOrder(ctx, tx, orderID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
			}
			return mapRepoConflict(fmt.Errorf("failed to lock order %d: %w", orderID, err))
		}
		// Another table's order is reported as missing.
		if order.TableID == nil || *order.TableID != tableID {
			return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
		}
		if !seatedAt.IsZero() && order.CreatedAt.Before(seatedAt) {
			return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
		}
		return s.moveOrder(ctx, tx, order, models.OrderStatusRequestPayment)
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}
