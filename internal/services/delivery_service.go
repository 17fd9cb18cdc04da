package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// AssignShipperRequest names the shipper for a DELIVERY order.
type AssignShipperRequest struct {
	ShipperID int64 `json:"shipper_id" binding:"required,gt=0"`
}

// UpdateDeliveryStatusRequest moves a delivery to a status code.
type UpdateDeliveryStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Actor is the authenticated caller of a staff operation.
type Actor struct {
	UserID int64
	Role   string
}

// IsShipper reports whether the caller acts as a shipper.
func (a Actor) IsShipper() bool {
	return strings.EqualFold(a.Role, models.RoleShipper)
}

// DeliveryService attaches shippers to delivery orders and tracks hand-off.
type DeliveryService interface {
	AssignShipper(ctx context.Context, orderID int64, req AssignShipperRequest) (*models.Delivery, error)
	AdvanceDelivery(ctx context.Context, deliveryID int64, req UpdateDeliveryStatusRequest, actor Actor) (*models.Delivery, error)
	ListShipperDeliveries(ctx context.Context, shipperID int64) ([]models.Delivery, error)
}

type deliveryService struct {
	deliveryRepo repositories.DeliveryRepository
	orderRepo    repositories.OrderRepository
	authRepo     repositories.AuthRepository
	catalog      *StatusCatalog
	tx           repositories.Transactor
	db           repositories.SQLExecutor
	now          func() time.Time
}

// NewDeliveryService creates a new instance of DeliveryService.
func NewDeliveryService(
	dr repositories.DeliveryRepository,
	or repositories.OrderRepository,
	ar repositories.AuthRepository,
	catalog *StatusCatalog,
	tx repositories.Transactor,
	db repositories.SQLExecutor,
) DeliveryService {
	return &deliveryService{
		deliveryRepo: dr,
		orderRepo:    or,
		authRepo:     ar,
		catalog:      catalog,
		tx:           tx,
		db:           db,
		now:          time.Now,
	}
}

// AssignShipper records the assignment and opens a PENDING delivery.
// A FAILED delivery is handed to the new shipper; any other existing delivery blocks reassignment.
func (s *deliveryService) AssignShipper(ctx context.Context, orderID int64, req AssignShipperRequest) (*models.Delivery, error) {
	pendingID, err := s.catalog.DeliveryStatusID(ctx, models.DeliveryStatusPending)
	if err != nil {
		return nil, err
	}

	var deliveryID int64
	err = s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		shipper, err := s.authRepo.FindUserByID(ctx, tx, req.ShipperID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, req.ShipperID)
			}
			return fmt.Errorf("failed to retrieve user %d: %w", req.ShipperID, err)
		}
		if !shipper.IsActive || !strings.EqualFold(shipper.RoleName(), models.RoleShipper) {
			return fmt.Errorf("%w: user %d", ErrNotAShipper, req.ShipperID)
		}

		order, err := s.orderRepo.LockOrder(ctx, tx, orderID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrOrderNotFound, orderID)
			}
			return mapRepoConflict(fmt.Errorf("failed to lock order %d: %w", orderID, err))
		}
		if order.OrderType != models.OrderTypeDelivery {
			return fmt.Errorf("%w: order %d is %s, not %s", ErrValidation, orderID, order.OrderType, models.OrderTypeDelivery)
		}
		if order.Status != models.OrderStatusPaid {
			return fmt.Errorf("%w: order %d is %s, shippers are assigned once it is %s", ErrIllegalTransition, orderID, order.Status, models.OrderStatusPaid)
		}

		existing, err := s.deliveryRepo.GetDeliveryByOrderID(ctx, tx, orderID, true)
		if err != nil && !isNotFound(err) {
			return mapRepoConflict(fmt.Errorf("failed to look up delivery of order %d: %w", orderID, err))
		}
		if existing != nil && existing.Status != models.DeliveryStatusFailed {
			return fmt.Errorf("%w: order %d delivery %d is %s", ErrDeliveryAlreadyAssigned, orderID, existing.ID, existing.Status)
		}

		now := s.now()
		assignment := &models.OrderShipper{OrderID: orderID, ShipperID: req.ShipperID, AssignedAt: now}
		if err := s.deliveryRepo.CreateOrderShipper(ctx, tx, assignment); err != nil {
			return fmt.Errorf("failed to record shipper assignment: %w", err)
		}

		if existing != nil {
			if err := s.deliveryRepo.ReassignDelivery(ctx, tx, existing.ID, assignment.ID, pendingID, now); err != nil {
				return fmt.Errorf("failed to reassign delivery %d: %w", existing.ID, err)
			}
			deliveryID = existing.ID
			return nil
		}

		delivery := &models.Delivery{
			OrderID:        orderID,
			OrderShipperID: assignment.ID,
			ShipperID:      req.ShipperID,
			StatusID:       pendingID,
			Status:         models.DeliveryStatusPending,
			DeliveryFee:    decimal.Zero,
			CreatedAt:      now,
		}
		if err := s.deliveryRepo.CreateDelivery(ctx, tx, delivery); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return fmt.Errorf("%w: order %d", ErrDeliveryAlreadyAssigned, orderID)
			}
			return fmt.Errorf("failed to create delivery for order %d: %w", orderID, err)
		}
		deliveryID = delivery.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Shipper assigned", map[string]interface{}{
		"order_id":    orderID,
		"shipper_id":  req.ShipperID,
		"delivery_id": deliveryID,
	})
	return s.getDelivery(ctx, deliveryID)
}

// AdvanceDelivery sets the delivery status. DELIVERING and DELIVERED are mirrored
// onto the order in the same transaction.
func (s *deliveryService) AdvanceDelivery(ctx context.Context, deliveryID int64, req UpdateDeliveryStatusRequest, actor Actor) (*models.Delivery, error) {
	target := models.DeliveryStatusCode(normalizeCode(req.Status))
	targetID, err := s.catalog.DeliveryStatusID(ctx, target)
	if err != nil {
		return nil, err
	}

	var from models.DeliveryStatusCode
	err = s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		// Read without a lock to learn the order, then lock order before delivery
		// like AssignShipper does.
		peek, err := s.deliveryRepo.GetDeliveryByID(ctx, tx, deliveryID, false)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrDeliveryNotFound, deliveryID)
			}
			return fmt.Errorf("failed to retrieve delivery %d: %w", deliveryID, err)
		}
		order, err := s.orderRepo.LockOrder(ctx, tx, peek.OrderID)
		if err != nil {
			return mapRepoConflict(fmt.Errorf("failed to lock order %d: %w", peek.OrderID, err))
		}
		delivery, err := s.deliveryRepo.GetDeliveryByID(ctx, tx, deliveryID, true)
		if err != nil {
			return mapRepoConflict(fmt.Errorf("failed to lock delivery %d: %w", deliveryID, err))
		}
		from = delivery.Status

		if actor.IsShipper() && delivery.ShipperID != actor.UserID {
			return fmt.Errorf("%w: delivery %d is assigned to another shipper", ErrForbidden, deliveryID)
		}
		if delivery.Status == models.DeliveryStatusDelivered {
			return fmt.Errorf("%w: delivery %d is already %s", ErrConflict, deliveryID, models.DeliveryStatusDelivered)
		}
		if delivery.Status == target {
			return fmt.Errorf("%w: delivery %d is already %s", ErrConflict, deliveryID, target)
		}

		now := s.now()
		if err := s.deliveryRepo.UpdateDeliveryStatus(ctx, tx, deliveryID, targetID, now); err != nil {
			return fmt.Errorf("failed to update delivery %d: %w", deliveryID, err)
		}
		return s.syncOrder(ctx, tx, order, target, now)
	})
	if err != nil {
		return nil, err
	}

	utils.LogInfo("Delivery status changed", map[string]interface{}{
		"delivery_id": deliveryID,
		"from":        from,
		"to":          target,
		"actor_id":    actor.UserID,
	})
	return s.getDelivery(ctx, deliveryID)
}

// syncOrder walks the order forward to match a DELIVERING or DELIVERED delivery.
func (s *deliveryService) syncOrder(ctx context.Context, tx repositories.SQLExecutor, order *models.Order, target models.DeliveryStatusCode, at time.Time) error {
	var path []models.OrderStatusCode
	switch target {
	case models.DeliveryStatusDelivering:
		path = []models.OrderStatusCode{models.OrderStatusDelivering}
	case models.DeliveryStatusDelivered:
		path = []models.OrderStatusCode{models.OrderStatusDelivering, models.OrderStatusDelivered}
	default:
		return nil
	}

	for _, step := range path {
		if order.Status == step {
			continue
		}
		if order.Status == models.OrderStatusDelivered {
			break
		}
		if err := applyOrderTransition(ctx, tx, s.orderRepo, s.catalog, order, step, at); err != nil {
			return err
		}
	}
	return nil
}

func (s *deliveryService) getDelivery(ctx context.Context, deliveryID int64) (*models.Delivery, error) {
	d, err := s.deliveryRepo.GetDeliveryByID(ctx, s.db, deliveryID, false)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrDeliveryNotFound, deliveryID)
		}
		return nil, fmt.Errorf("failed to retrieve delivery %d: %w", deliveryID, err)
	}
	info, err := s.orderRepo.GetDeliveryInfo(ctx, s.db, d.OrderID)
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to retrieve delivery info for order %d: %w", d.OrderID, err)
	}
	d.DeliveryInfo = info
	return d, nil
}

func (s *deliveryService) ListShipperDeliveries(ctx context.Context, shipperID int64) ([]models.Delivery, error) {
	deliveries, err := s.deliveryRepo.ListShipperDeliveries(ctx, s.db, shipperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries of shipper %d: %w", shipperID, err)
	}
	for i := range deliveries {
		info, err := s.orderRepo.GetDeliveryInfo(ctx, s.db, deliveries[i].OrderID)
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to retrieve delivery info for order %d: %w", deliveries[i].OrderID, err)
		}
		deliveries[i].DeliveryInfo = info
	}
	return deliveries, nil
}
