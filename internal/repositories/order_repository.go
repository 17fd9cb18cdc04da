package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant_backend/internal/models"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) error
	GetOrderByID(ctx context.Context, executor SQLExecutor, orderID int64) (*models.Order, error)
	LockOrder(ctx context.Context, executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context, executor SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error) // orders, total count, error
	UpdateOrderStatus(ctx context.Context, executor SQLExecutor, orderID, statusID int64, updatedAt time.Time) error

	// OrderItem methods
	CreateOrderItem(ctx context.Context, executor SQLExecutor, item *models.OrderItem) error
	GetOrderItem(ctx context.Context, executor SQLExecutor, itemID int64) (*models.OrderItem, error)
	LockOrderItem(ctx context.Context, executor SQLExecutor, itemID int64) (*models.OrderItem, error)
	GetOrderItems(ctx context.Context, executor SQLExecutor, orderID int64) ([]models.OrderItem, error)
	LockOrderItems(ctx context.Context, executor SQLExecutor, orderID int64) ([]models.OrderItem, error)

	// Delivery info
	CreateDeliveryInfo(ctx context.Context, executor SQLExecutor, info *models.OrderDeliveryInfo) error
	GetDeliveryInfo(ctx context.Context, executor SQLExecutor, orderID int64) (*models.OrderDeliveryInfo, error)
}

type orderRepository struct{}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository() OrderRepository {
	return &orderRepository{}
}

const orderColumns = `
	o.id, o.order_code, o.user_id, o.table_id, o.order_type_id, ot.code, o.order_status_id, os.code,
	o.total_amount, o.note, o.created_at, o.updated_at`

const orderFrom = `
	FROM orders o
	JOIN order_types ot ON ot.id = o.order_type_id
	JOIN order_statuses os ON os.id = o.order_status_id`

func scanOrder(row scanner, extra ...interface{}) (*models.Order, error) {
	var o models.Order
	dest := []interface{}{
		&o.ID, &o.OrderCode, &o.UserID, &o.TableID, &o.OrderTypeID, &o.OrderType, &o.StatusID, &o.Status,
		&o.TotalAmount, &o.Note, &o.CreatedAt, &o.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &o, nil
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(ctx context.Context, executor SQLExecutor, order *models.Order) error {
	query := `INSERT INTO orders
	            (order_code, user_id, table_id, order_type_id, order_status_id, total_amount, note, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	          RETURNING id, updated_at`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}

	err := executor.QueryRowContext(ctx, query,
		order.OrderCode, order.UserID, order.TableID, order.OrderTypeID, order.StatusID,
		order.TotalAmount, order.Note, order.CreatedAt,
	).Scan(&order.ID, &order.UpdatedAt)
	if err != nil {
		return mapDBError(err, "creating order")
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, executor SQLExecutor, orderID int64) (*models.Order, error) {
	query := `SELECT` + orderColumns + orderFrom + ` WHERE o.id = $1`
	o, err := scanOrder(executor.QueryRowContext(ctx, query, orderID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting order %d", orderID))
	}
	return o, nil
}

// LockOrder reads the order row and holds its lock until the transaction ends.
func (r *orderRepository) LockOrder(ctx context.Context, executor SQLExecutor, orderID int64) (*models.Order, error) {
	query := `SELECT` + orderColumns + orderFrom + ` WHERE o.id = $1 FOR UPDATE OF o`
	o, err := scanOrder(executor.QueryRowContext(ctx, query, orderID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("locking order %d", orderID))
	}
	return o, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, executor SQLExecutor, filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT` + orderColumns + `, COUNT(*) OVER() as total_count` + orderFrom)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("o.user_id = $%d", argCounter))
		args = append(args, *filters.UserID)
		argCounter++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("os.code = $%d", argCounter))
		args = append(args, strings.ToUpper(*filters.Status))
		argCounter++
	}
	if filters.OrderType != nil && *filters.OrderType != "" {
		conditions = append(conditions, fmt.Sprintf("ot.code = $%d", argCounter))
		args = append(args, strings.ToUpper(*filters.OrderType))
		argCounter++
	}
	if filters.Since != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argCounter))
		args = append(args, *filters.Since)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d AND o.created_at < $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, startOfDay.AddDate(0, 0, 1))
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC, o.id DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := executor.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, mapDBError(err, "querying orders")
	}
	defer rows.Close()

	for rows.Next() {
		o, err := scanOrder(rows, &totalCount)
		if err != nil {
			return nil, 0, mapDBError(err, "scanning order")
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, mapDBError(err, "iterating order rows")
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, executor SQLExecutor, orderID, statusID int64, updatedAt time.Time) error {
	query := `UPDATE orders SET order_status_id = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.ExecContext(ctx, query, statusID, updatedAt, orderID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("updating status of order %d", orderID))
	}
	return expectOneRow(res, "updating order status")
}

// --- OrderItem Methods ---

// orderItemSelect joins every item with its latest ledger entry.
// Items without a ledger entry come back with an empty status.
const orderItemSelect = `
	SELECT oi.id, oi.order_id, oi.menu_item_id, mi.name, oi.quantity, oi.unit_price, oi.note, oi.created_at,
	       COALESCE(st.code, ''), COALESCE(h.id, 0), COALESCE(h.changed_at, oi.created_at)
	FROM order_items oi
	JOIN menu_items mi ON mi.id = oi.menu_item_id
	LEFT JOIN LATERAL (
	    SELECT hh.id, hh.order_item_status_id, hh.changed_at
	    FROM order_item_status_history hh
	    WHERE hh.order_item_id = oi.id
	    ORDER BY hh.changed_at DESC, hh.id DESC
	    LIMIT 1
	) h ON TRUE
	LEFT JOIN order_item_statuses st ON st.id = h.order_item_status_id`

func scanOrderItem(row scanner) (*models.OrderItem, error) {
	var it models.OrderItem
	err := row.Scan(
		&it.ID, &it.OrderID, &it.MenuItemID, &it.MenuItemName, &it.Quantity, &it.UnitPrice, &it.Note, &it.CreatedAt,
		&it.Status, &it.StatusEntryID, &it.StatusChangedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, executor SQLExecutor, item *models.OrderItem) error {
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, note, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	err := executor.QueryRowContext(ctx, query,
		item.OrderID, item.MenuItemID, item.Quantity, item.UnitPrice, item.Note, item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("creating item for order %d", item.OrderID))
	}
	return nil
}

func (r *orderRepository) GetOrderItem(ctx context.Context, executor SQLExecutor, itemID int64) (*models.OrderItem, error) {
	it, err := scanOrderItem(executor.QueryRowContext(ctx, orderItemSelect+` WHERE oi.id = $1`, itemID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting order item %d", itemID))
	}
	return it, nil
}

// LockOrderItem locks the item row; the returned status is read after the lock is granted.
func (r *orderRepository) LockOrderItem(ctx context.Context, executor SQLExecutor, itemID int64) (*models.OrderItem, error) {
	it, err := scanOrderItem(executor.QueryRowContext(ctx, orderItemSelect+` WHERE oi.id = $1 FOR UPDATE OF oi`, itemID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("locking order item %d", itemID))
	}
	return it, nil
}

func (r *orderRepository) GetOrderItems(ctx context.Context, executor SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	return r.queryOrderItems(ctx, executor, orderItemSelect+` WHERE oi.order_id = $1 ORDER BY oi.id`, orderID)
}

// LockOrderItems locks every item of the order in id order.
func (r *orderRepository) LockOrderItems(ctx context.Context, executor SQLExecutor, orderID int64) ([]models.OrderItem, error) {
	return r.queryOrderItems(ctx, executor, orderItemSelect+` WHERE oi.order_id = $1 ORDER BY oi.id FOR UPDATE OF oi`, orderID)
}

func (r *orderRepository) queryOrderItems(ctx context.Context, executor SQLExecutor, query string, orderID int64) ([]models.OrderItem, error) {
	rows, err := executor.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("querying items of order %d", orderID))
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		it, err := scanOrderItem(rows)
		if err != nil {
			return nil, mapDBError(err, "scanning order item")
		}
		items = append(items, *it)
	}
	if err = rows.Err(); err != nil {
		return nil, mapDBError(err, "iterating order item rows")
	}
	return items, nil
}

// --- Delivery info ---

func (r *orderRepository) CreateDeliveryInfo(ctx context.Context, executor SQLExecutor, info *models.OrderDeliveryInfo) error {
	query := `INSERT INTO order_delivery_infos (order_id, receiver_name, receiver_phone, address, note)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		info.OrderID, info.ReceiverName, info.ReceiverPhone, info.Address, info.Note,
	).Scan(&info.ID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("creating delivery info for order %d", info.OrderID))
	}
	return nil
}

func (r *orderRepository) GetDeliveryInfo(ctx context.Context, executor SQLExecutor, orderID int64) (*models.OrderDeliveryInfo, error) {
	query := `SELECT id, order_id, receiver_name, receiver_phone, address, note
	          FROM order_delivery_infos WHERE order_id = $1`
	var info models.OrderDeliveryInfo
	err := executor.QueryRowContext(ctx, query, orderID).Scan(
		&info.ID, &info.OrderID, &info.ReceiverName, &info.ReceiverPhone, &info.Address, &info.Note,
	)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting delivery info for order %d", orderID))
	}
	return &info, nil
}
