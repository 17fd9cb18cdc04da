package repositories

import (
	"context"
	"fmt"
	"time"

	"restaurant_backend/internal/models"
)

// DeliveryRepository persists shipper assignments and delivery progress.
type DeliveryRepository interface {
	CreateOrderShipper(ctx context.Context, executor SQLExecutor, assignment *models.OrderShipper) error
	CreateDelivery(ctx context.Context, executor SQLExecutor, delivery *models.Delivery) error
	GetDeliveryByID(ctx context.Context, executor SQLExecutor, deliveryID int64, forUpdate bool) (*models.Delivery, error)
	GetDeliveryByOrderID(ctx context.Context, executor SQLExecutor, orderID int64, forUpdate bool) (*models.Delivery, error)
	ReassignDelivery(ctx context.Context, executor SQLExecutor, deliveryID, orderShipperID, statusID int64, updatedAt time.Time) error
	UpdateDeliveryStatus(ctx context.Context, executor SQLExecutor, deliveryID, statusID int64, updatedAt time.Time) error
	ListShipperDeliveries(ctx context.Context, executor SQLExecutor, shipperID int64) ([]models.Delivery, error)
}

type deliveryRepository struct{}

// NewDeliveryRepository creates a new instance of DeliveryRepository.
func NewDeliveryRepository() DeliveryRepository {
	return &deliveryRepository{}
}

const deliverySelect = `
	SELECT d.id, d.order_id, d.order_shipper_id, s.shipper_id, d.delivery_status_id, ds.code,
	       d.delivery_fee, d.created_at, d.updated_at
	FROM deliveries d
	JOIN order_shippers s ON s.id = d.order_shipper_id
	JOIN delivery_statuses ds ON ds.id = d.delivery_status_id`

func scanDelivery(row scanner) (*models.Delivery, error) {
	var d models.Delivery
	err := row.Scan(&d.ID, &d.OrderID, &d.OrderShipperID, &d.ShipperID, &d.StatusID, &d.Status,
		&d.DeliveryFee, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepository) CreateOrderShipper(ctx context.Context, executor SQLExecutor, assignment *models.OrderShipper) error {
	query := `INSERT INTO order_shippers (order_id, shipper_id, assigned_at) VALUES ($1, $2, $3) RETURNING id`
	err := executor.QueryRowContext(ctx, query, assignment.OrderID, assignment.ShipperID, assignment.AssignedAt).Scan(&assignment.ID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("assigning shipper %d to order %d", assignment.ShipperID, assignment.OrderID))
	}
	return nil
}

func (r *deliveryRepository) CreateDelivery(ctx context.Context, executor SQLExecutor, delivery *models.Delivery) error {
	query := `INSERT INTO deliveries (order_id, order_shipper_id, delivery_status_id, delivery_fee, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          RETURNING id, updated_at`
	err := executor.QueryRowContext(ctx, query,
		delivery.OrderID, delivery.OrderShipperID, delivery.StatusID, delivery.DeliveryFee, delivery.CreatedAt,
	).Scan(&delivery.ID, &delivery.UpdatedAt)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("creating delivery for order %d", delivery.OrderID))
	}
	return nil
}

func (r *deliveryRepository) GetDeliveryByID(ctx context.Context, executor SQLExecutor, deliveryID int64, forUpdate bool) (*models.Delivery, error) {
	query := deliverySelect + ` WHERE d.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF d`
	}
	d, err := scanDelivery(executor.QueryRowContext(ctx, query, deliveryID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting delivery %d", deliveryID))
	}
	return d, nil
}

func (r *deliveryRepository) GetDeliveryByOrderID(ctx context.Context, executor SQLExecutor, orderID int64, forUpdate bool) (*models.Delivery, error) {
	query := deliverySelect + ` WHERE d.order_id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF d`
	}
	d, err := scanDelivery(executor.QueryRowContext(ctx, query, orderID))
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting delivery of order %d", orderID))
	}
	return d, nil
}

func (r *deliveryRepository) ReassignDelivery(ctx context.Context, executor SQLExecutor, deliveryID, orderShipperID, statusID int64, updatedAt time.Time) error {
	query := `UPDATE deliveries SET order_shipper_id = $1, delivery_status_id = $2, updated_at = $3 WHERE id = $4`
	res, err := executor.ExecContext(ctx, query, orderShipperID, statusID, updatedAt, deliveryID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("reassigning delivery %d", deliveryID))
	}
	return expectOneRow(res, "reassigning delivery")
}

func (r *deliveryRepository) UpdateDeliveryStatus(ctx context.Context, executor SQLExecutor, deliveryID, statusID int64, updatedAt time.Time) error {
	query := `UPDATE deliveries SET delivery_status_id = $1, updated_at = $2 WHERE id = $3`
	res, err := executor.ExecContext(ctx, query, statusID, updatedAt, deliveryID)
	if err != nil {
		return mapDBError(err, fmt.Sprintf("updating status of delivery %d", deliveryID))
	}
	return expectOneRow(res, "updating delivery status")
}

func (r *deliveryRepository) ListShipperDeliveries(ctx context.Context, executor SQLExecutor, shipperID int64) ([]models.Delivery, error) {
	rows, err := executor.QueryContext(ctx, deliverySelect+` WHERE s.shipper_id = $1 ORDER BY d.created_at DESC`, shipperID)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("listing deliveries of shipper %d", shipperID))
	}
	defer rows.Close()

	deliveries := []models.Delivery{}
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, mapDBError(err, "scanning delivery")
		}
		deliveries = append(deliveries, *d)
	}
	if err = rows.Err(); err != nil {
		return nil, mapDBError(err, "iterating deliveries")
	}
	return deliveries, nil
}
