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

// --- Data Transfer Objects (DTOs) ---

// AddCartItemRequest adds a menu item to the caller's cart.
type AddCartItemRequest struct {
	MenuItemID int64  `json:"menu_item_id" binding:"required,gt=0"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Note       string `json:"note"`
}

// UpdateCartItemRequest changes the quantity and, optionally, the note of a cart line.
type UpdateCartItemRequest struct {
	Quantity int     `json:"quantity" binding:"required,gt=0"`
	Note     *string `json:"note"`
}

// DeliveryInfoRequest carries receiver details for DELIVERY orders.
type DeliveryInfoRequest struct {
	ReceiverName  string  `json:"receiver_name"`
	ReceiverPhone string  `json:"receiver_phone"`
	Address       string  `json:"address"`
	Note          *string `json:"note"`
}

// CheckoutRequest converts the active cart into an order.
// Table carts ignore OrderType and always become DINE_IN.
type CheckoutRequest struct {
	OrderType    string               `json:"order_type"`
	Note         *string              `json:"note"`
	DeliveryInfo *DeliveryInfoRequest `json:"delivery_info"`
}

// CheckoutResponse identifies the order that was created.
type CheckoutResponse struct {
	OrderID   int64                  `json:"order_id"`
	OrderCode string                 `json:"order_code"`
	OrderType models.OrderTypeCode   `json:"order_type"`
	Status    models.OrderStatusCode `json:"status"`
	Total     decimal.Decimal        `json:"total"`
	ItemCount int                    `json:"item_count"`
}

// --- End of DTOs ---

// CartService manages carts and turns them into orders.
type CartService interface {
	GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error)
	AddItem(ctx context.Context, owner models.CartOwner, req AddCartItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, owner models.CartOwner, cartItemID int64, req UpdateCartItemRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner models.CartOwner, cartItemID int64) (*models.Cart, error)
	Checkout(ctx context.Context, owner models.CartOwner, req CheckoutRequest) (*CheckoutResponse, error)
}

type cartService struct {
	cartRepo   repositories.CartRepository
	menuRepo   repositories.MenuRepository
	orderRepo  repositories.OrderRepository
	ledgerRepo repositories.LedgerRepository
	catalog    *StatusCatalog
	tx         repositories.Transactor
	db         repositories.SQLExecutor
	now        func() time.Time
	newCode    func() string
}

// NewCartService creates a new instance of CartService.
func NewCartService(
	cr repositories.CartRepository,
	mr repositories.MenuRepository,
	or repositories.OrderRepository,
	lr repositories.LedgerRepository,
	catalog *StatusCatalog,
	tx repositories.Transactor,
	db repositories.SQLExecutor,
) CartService {
	return &cartService{
		cartRepo:   cr,
		menuRepo:   mr,
		orderRepo:  or,
		ledgerRepo: lr,
		catalog:    catalog,
		tx:         tx,
		db:         db,
		now:        time.Now,
		newCode:    newOrderCode,
	}
}

var errOwnerRequired = fmt.Errorf("%w: cart owner must be exactly one of customer or table", ErrValidation)

// GetCart returns the active cart, or an empty one if the owner has none yet.
func (s *cartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, errOwnerRequired
	}
	return s.loadCart(ctx, s.db, owner)
}

func (s *cartService) loadCart(ctx context.Context, exec repositories.SQLExecutor, owner models.CartOwner) (*models.Cart, error) {
	cart, err := s.cartRepo.GetActiveCart(ctx, exec, owner, false)
	if err != nil {
		if isNotFound(err) {
			return &models.Cart{UserID: owner.UserID, TableID: owner.TableID, IsActive: true, Items: []models.CartItem{}}, nil
		}
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	items, err := s.cartRepo.ListCartItems(ctx, exec, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve items of cart %d: %w", cart.ID, err)
	}
	cart.Items = items
	return cart, nil
}

// AddItem adds quantity to the cart, merging with an existing line for the same item and note.
func (s *cartService) AddItem(ctx context.Context, owner models.CartOwner, req AddCartItemRequest) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, errOwnerRequired
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	note := strings.TrimSpace(req.Note)

	var cart *models.Cart
	err := s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		menuItem, err := s.menuRepo.GetMenuItem(ctx, tx, req.MenuItemID)
		if err != nil {
			if isNotFound(err) {
				return fmt.Errorf("%w: id %d", ErrMenuItemNotFound, req.MenuItemID)
			}
			return fmt.Errorf("failed to retrieve menu item %d: %w", req.MenuItemID, err)
		}
		if !menuItem.IsAvailable {
			return fmt.Errorf("%w: %s", ErrItemUnavailable, menuItem.Name)
		}

		active, err := s.activeCartForWrite(ctx, tx, owner)
		if err != nil {
			return err
		}

		line, err := s.cartRepo.FindCartLine(ctx, tx, active.ID, req.MenuItemID, note)
		switch {
		case err == nil:
			if err := s.cartRepo.UpdateCartItem(ctx, tx, line.ID, line.Quantity+req.Quantity, note, s.now()); err != nil {
				return fmt.Errorf("failed to update cart item %d: %w", line.ID, err)
			}
		case isNotFound(err):
			item := &models.CartItem{CartID: active.ID, MenuItemID: req.MenuItemID, Quantity: req.Quantity, Note: note}
			if err := s.cartRepo.CreateCartItem(ctx, tx, item); err != nil {
				return fmt.Errorf("failed to add menu item %d to cart: %w", req.MenuItemID, err)
			}
		default:
			return fmt.Errorf("failed to look up cart line: %w", err)
		}

		cart, err = s.loadCart(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// activeCartForWrite locks the owner's active cart, creating it on first use.
func (s *cartService) activeCartForWrite(ctx context.Context, tx repositories.SQLExecutor, owner models.CartOwner) (*models.Cart, error) {
	cart, err := s.cartRepo.GetActiveCart(ctx, tx, owner, true)
	if err == nil {
		return cart, nil
	}
	if !isNotFound(err) {
		return nil, mapRepoConflict(fmt.Errorf("failed to lock cart: %w", err))
	}
	cart, err = s.cartRepo.CreateCart(ctx, tx, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Another request created the cart first; the client may retry.
			return nil, fmt.Errorf("%w: cart was created concurrently", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) UpdateItem(ctx context.Context, owner models.CartOwner, cartItemID int64, req UpdateCartItemRequest) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, errOwnerRequired
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	var cart *models.Cart
	err := s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		line, err := s.lockedLine(ctx, tx, owner, cartItemID)
		if err != nil {
			return err
		}
		note := line.Note
		if req.Note != nil {
			note = strings.TrimSpace(*req.Note)
		}
		if err := s.cartRepo.UpdateCartItem(ctx, tx, cartItemID, req.Quantity, note, s.now()); err != nil {
			return fmt.Errorf("failed to update cart item %d: %w", cartItemID, err)
		}
		cart, err = s.loadCart(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, owner models.CartOwner, cartItemID int64) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, errOwnerRequired
	}

	var cart *models.Cart
	err := s.tx.WithinTx(ctx, func(tx repositories.SQLExecutor) error {
		line, err := s.lockedLine(ctx, tx, owner, cartItemID)
		if err != nil {
			return err
		}
		if err := s.cartRepo.DeleteCartItem(ctx, tx, line.CartID, cartItemID); err != nil {
			return fmt.Errorf("failed to delete cart item %d: %w", cartItemID, err)
		}
		cart, err = s.loadCart(ctx, tx, owner)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// lockedLine locks the owner's cart and returns one of its lines.
// A line of somebody else's cart is reported as missing.
func (s *cartService) lockedLine(ctx context.Context, tx repositories.SQLExecutor, owner models.CartOwner, cartItemID int64) (*models.CartItem, error) {
	cart, err := s.cartRepo.GetActiveCart(ctx, tx, owner, true)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrCartItemNotFound, cartItemID)
		}
		return nil, mapRepoConflict(fmt.Errorf("failed to lock cart: %w", err))
	}
	line, err := s.cartRepo.GetCartItem(ctx, tx, cart.ID, cartItemID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrCartItemNotFound, cartItemID)
		}
		return nil, fmt.Errorf("failed to retrieve cart item %d: %w", cartItemID, err)
	}
	return line, nil
}

func logCheckout(resp *CheckoutResponse, owner models.CartOwner) {
	fields := map[string]interface{}{
		"order_id":   resp.OrderID,
		"order_code": resp.OrderCode,
		"order_type": resp.OrderType,
		"total":      resp.Total.StringFixed(2),
		"items":      resp.ItemCount,
	}
	if owner.TableID != nil {
		fields["table_id"] = *owner.TableID
	}
	if owner.UserID != nil {
		fields["user_id"] = *owner.UserID
	}
	utils.LogInfo("Cart converted to order", fields)
}
