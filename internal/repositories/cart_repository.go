package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant_backend/internal/models"
)

// CartRepository defines the cart persistence operations.
type CartRepository interface {
	GetActiveCart(ctx context.Context, executor SQLExecutor, owner models.CartOwner, forUpdate bool) (*models.Cart, error)
	CreateCart(ctx context.Context, executor SQLExecutor, owner models.CartOwner) (*models.Cart, error)
	MarkCartOrdered(ctx context.Context, executor SQLExecutor, cartID int64, orderedAt time.Time) error

	ListCartItems(ctx context.Context, executor SQLExecutor, cartID int64) ([]models.CartItem, error)
	GetCartItem(ctx context.Context, executor SQLExecutor, cartID, cartItemID int64) (*models.CartItem, error)
	FindCartLine(ctx context.Context, executor SQLExecutor, cartID, menuItemID int64, note string) (*models.CartItem, error)
	CreateCartItem(ctx context.Context, executor SQLExecutor, item *models.CartItem) error
	UpdateCartItem(ctx context.Context, executor SQLExecutor, cartItemID int64, quantity int, note string, updatedAt time.Time) error
	DeleteCartItem(ctx context.Context, executor SQLExecutor, cartID, cartItemID int64) error
}

type cartRepository struct{}

// NewCartRepository creates a new instance of CartRepository.
func NewCartRepository() CartRepository {
	return &cartRepository{}
}

var errInvalidOwner = errors.New("cart owner must be exactly one of user or table")

func ownerCondition(owner models.CartOwner) (string, int64, error) {
	switch {
	case !owner.Valid():
		return "", 0, errInvalidOwner
	case owner.UserID != nil:
		return "user_id = $1", *owner.UserID, nil
	default:
		return "table_id = $1", *owner.TableID, nil
	}
}

func (r *cartRepository) GetActiveCart(ctx context.Context, executor SQLExecutor, owner models.CartOwner, forUpdate bool) (*models.Cart, error) {
	cond, arg, err := ownerCondition(owner)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, user_id, table_id, is_active, ordered_at, created_at, updated_at
	          FROM carts WHERE ` + cond + ` AND is_active`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var c models.Cart
	err = executor.QueryRowContext(ctx, query, arg).Scan(
		&c.ID, &c.UserID, &c.TableID, &c.IsActive, &c.OrderedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapDBError(err, "getting active cart")
	}
	return &c, nil
}

// CreateCart returns ErrDuplicateKey when the owner already has an active cart.
func (r *cartRepository) CreateCart(ctx context.Context, executor SQLExecutor, owner models.CartOwner) (*models.Cart, error) {
	if !owner.Valid() {
		return nil, errInvalidOwner
	}
	query := `INSERT INTO carts (user_id, table_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, TRUE, NOW(), NOW())
	          RETURNING id, user_id, table_id, is_active, ordered_at, created_at, updated_at`

	var c models.Cart
	err := executor.QueryRowContext(ctx, query, owner.UserID, owner.TableID).Scan(
		&c.ID, &c.UserID, &c.TableID, &c.IsActive, &c.OrderedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, mapDBError(err, "creating cart")
	}
	return &c, nil
}

func (r *cartRepository) MarkCartOrdered(ctx context.Context, executor SQLExecutor, cartID int64, orderedAt time.Time) error {
	query := `UPDATE carts SET is_active = FALSE, ordered_at = $1, updated_at = $1 WHERE id = $2 AND is_active`
	res, err := executor.ExecContext(ctx, query, orderedAt, cartID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("marking cart %d ordered", cartID))
	}
	return expectOneRow(res, "marking cart ordered")
}

// cartItemSelect reads price and availability live from the menu.
const cartItemSelect = `
	SELECT ci.id, ci.cart_id, ci.menu_item_id, ci.quantity, ci.note, ci.created_at, ci.updated_at,
	       mi.name, mi.price, mi.is_available
	FROM cart_items ci
	JOIN menu_items mi ON mi.id = ci.menu_item_id`

func scanCartItem(row scanner) (*models.CartItem, error) {
	var ci models.CartItem
	err := row.Scan(
		&ci.ID, &ci.CartID, &ci.MenuItemID, &ci.Quantity, &ci.Note, &ci.CreatedAt, &ci.UpdatedAt,
		&ci.MenuItemName, &ci.UnitPrice, &ci.IsAvailable,
	)
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

func (r *cartRepository) ListCartItems(ctx context.Context, executor SQLExecutor, cartID int64) ([]models.CartItem, error) {
	rows, err := executor.QueryContext(ctx, cartItemSelect+` WHERE ci.cart_id = $1 ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("listing items of cart %d", cartID))
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		ci, err := scanCartItem(rows)
		if err != nil {
			return nil, mapDBError(err, "scanning cart item")
		}
		items = append(items, *ci)
	}
	if err = rows.Err(); err != nil {
		return nil, mapDBError(err, "iterating cart items")
	}
	return items, nil
}

func (r *cartRepository) GetCartItem(ctx context.Context, executor SQLExecutor, cartID, cartItemID int64) (*models.CartItem, error) {
	ci, err := scanCartItem(executor.QueryRowContext(ctx, cartItemSelect+` WHERE ci.cart_id = $1 AND ci.id = $2`, cartID, cartItemID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting cart item %d", cartItemID))
	}
	return ci, nil
}

func (r *cartRepository) FindCartLine(ctx context.Context, executor SQLExecutor, cartID, menuItemID int64, note string) (*models.CartItem, error) {
	query := cartItemSelect + ` WHERE ci.cart_id = $1 AND ci.menu_item_id = $2 AND ci.note = $3 ORDER BY ci.id LIMIT 1`
	ci, err := scanCartItem(executor.QueryRowContext(ctx, query, cartID, menuItemID, note))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("finding cart line for menu item %d", menuItemID))
	}
	return ci, nil
}

func (r *cartRepository) CreateCartItem(ctx context.Context, executor SQLExecutor, item *models.CartItem) error {
	query := `INSERT INTO cart_items (cart_id, menu_item_id, quantity, note, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, NOW(), NOW())
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRowContext(ctx, query, item.CartID, item.MenuItemID, item.Quantity, item.Note).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("adding menu item %d to cart %d", item.MenuItemID, item.CartID))
	}
	return nil
}

func (r *cartRepository) UpdateCartItem(ctx context.Context, executor SQLExecutor, cartItemID int64, quantity int, note string, updatedAt time.Time) error {
	query := `UPDATE cart_items SET quantity = $1, note = $2, updated_at = $3 WHERE id = $4`
	res, err := executor.ExecContext(ctx, query, quantity, note, updatedAt, cartItemID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("updating cart item %d", cartItemID))
	}
	return expectOneRow(res, "updating cart item")
}

func (r *cartRepository) DeleteCartItem(ctx context.Context, executor SQLExecutor, cartID, cartItemID int64) error {
	res, err := executor.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND id = $2`, cartID, cartItemID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("deleting cart item %d", cartItemID))
	}
	return expectOneRow(res, "deleting cart item")
}
