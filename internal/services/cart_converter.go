package services

import (
	"context"
	"fmt"
	"strings"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newOrderCode() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Checkout converts the owner's active cart into a PENDING order in one transaction.
// Prices are read once; the total and every unit price snapshot come from that read.
func (s *cartService) Checkout(ctx context.Context, owner models.CartOwner, req CheckoutRequest) (*CheckoutResponse, error) {
	if !owner.Valid() {
		return nil, errOwnerRequired
	}

	pendingOrderID, err := s.catalog.OrderStatusID(models.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	pendingItemID, err := s.catalog.ItemStatusID(models.ItemStatusPending)
	if err != nil {
		return nil, err
	}

	var resp *CheckoutResponse
	err = s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		cart, err := s.cartRepo.GetActiveCart(ctx, tx, owner, true)
		if err != nil {
			if isNotFound(err) {
				return ErrEmptyCart
			}
			return mapRepoConflict(fmt.Errorf("failed to lock cart: %w", err))
		}
		lines, err := s.cartRepo.ListCartItems(ctx, tx, cart.ID)
		if err != nil {
			return fmt.Errorf("failed to retrieve items of cart %d: %w", cart.ID, err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		total := decimal.Zero
		for _, line := range lines {
			if !line.IsAvailable {
				return fmt.Errorf("%w: %s", ErrItemUnavailable, line.MenuItemName)
			}
			total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		orderType, err := resolveOrderType(owner, req.OrderType)
		if err != nil {
			return err
		}
		orderTypeID, err := s.catalog.OrderTypeID(orderType)
		if err != nil {
			return err
		}
		var deliveryInfo *models.OrderDeliveryInfo
		if orderType == models.OrderTypeDelivery {
			if deliveryInfo, err = validateDeliveryInfo(req.DeliveryInfo); err != nil {
				return err
			}
		}

		now := s.now()
		order := &models.Order{
			OrderCode:   s.newCode(),
			UserID:      owner.UserID,
			TableID:     owner.TableID,
			OrderTypeID: orderTypeID,
			OrderType:   orderType,
			StatusID:    pendingOrderID,
			Status:      models.OrderStatusPending,
			TotalAmount: total,
			Note:        optionalNote(req.Note),
			CreatedAt:   now,
		}
		if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range lines {
			item := &models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				Note:       line.Note,
				CreatedAt:  now,
			}
			if err := s.orderRepo.CreateOrderItem(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to create order item for menu item %d: %w", line.MenuItemID, err)
			}
			entry := &models.OrderItemStatusEntry{
				OrderItemID: item.ID,
				StatusID:    pendingItemID,
				Status:      models.ItemStatusPending,
				ChangedBy:   owner.UserID,
				ChangedAt:   now,
			}
			if err := s.ledgerRepo.AppendStatus(ctx, tx, entry); err != nil {
				return fmt.Errorf("failed to record initial status of order item %d: %w", item.ID, err)
			}
		}

		if deliveryInfo != nil {
			deliveryInfo.OrderID = order.ID
			if err := s.orderRepo.CreateDeliveryInfo(ctx, tx, deliveryInfo); err != nil {
				return fmt.Errorf("failed to save delivery info: %w", err)
			}
		}

		if err := s.cartRepo.MarkCartOrdered(ctx, tx, cart.ID, now); err != nil {
			return fmt.Errorf("failed to close cart %d: %w", cart.ID, err)
		}

		resp = &CheckoutResponse{
			OrderID:   order.ID,
			OrderCode: order.OrderCode,
			OrderType: orderType,
			Status:    models.OrderStatusPending,
			Total:     total,
			ItemCount: len(lines),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCheckout(resp, owner)
	return resp, nil
}

// resolveOrderType picks the order type: tables always eat in, customers choose
// between takeout and delivery.
func resolveOrderType(owner models.CartOwner, requested string) (models.OrderTypeCode, error) {
	code := models.OrderTypeCode(normalizeCode(requested))
	if owner.IsTable() {
		if code != "" && code != models.OrderTypeDineIn {
			return "", fmt.Errorf("%w: table orders are %s, got %q", ErrUnknownOrderType, models.OrderTypeDineIn, requested)
		}
		return models.OrderTypeDineIn, nil
	}
	switch code {
	case models.OrderTypeTakeout, models.OrderTypeDelivery:
		return code, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOrderType, requested)
}

func validateDeliveryInfo(req *DeliveryInfoRequest) (*models.OrderDeliveryInfo, error) {
	if req == nil {
		return nil, ErrDeliveryInfoRequired
	}
	info := &models.OrderDeliveryInfo{
		ReceiverName:  strings.TrimSpace(req.ReceiverName),
		ReceiverPhone: strings.TrimSpace(req.ReceiverPhone),
		Address:       strings.TrimSpace(req.Address),
		Note:          optionalNote(req.Note),
	}
	if info.ReceiverName == "" || info.ReceiverPhone == "" || info.Address == "" {
		return nil, ErrDeliveryInfoRequired
	}
	return info, nil
}

// optionalNote trims a client note; blank notes are stored as NULL.
func optionalNote(note *string) *string {
	if note == nil {
		return nil
	}
	return utils.NewNullString(strings.TrimSpace(*note))
}
