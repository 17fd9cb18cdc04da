package repositories

import (
	"context"
	"fmt"

	"restaurant_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// StatusRepository reads the code lookup tables.
type StatusRepository interface {
	ListOrderStatuses(ctx context.Context) ([]models.StatusRow, error)
	ListOrderItemStatuses(ctx context.Context) ([]models.StatusRow, error)
	ListDeliveryStatuses(ctx context.Context) ([]models.StatusRow, error)
	ListOrderTypes(ctx context.Context) ([]models.StatusRow, error)
	FindDeliveryStatusByCode(ctx context.Context, code string) (*models.StatusRow, error)
}

type statusRepository struct {
	db *sqlx.DB
}

// NewStatusRepository creates a new instance of StatusRepository.
func NewStatusRepository(db *sqlx.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) list(ctx context.Context, table string) ([]models.StatusRow, error) {
	rows := []models.StatusRow{}
	query := fmt.Sprintf(`SELECT id, code, name FROM %s ORDER BY id`, table)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, mapDBError(err, "listing "+table)
	}
	return rows, nil
}

func (r *statusRepository) ListOrderStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return r.list(ctx, "order_statuses")
}

func (r *statusRepository) ListOrderItemStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return r.list(ctx, "order_item_statuses")
}

func (r *statusRepository) ListDeliveryStatuses(ctx context.Context) ([]models.StatusRow, error) {
	return r.list(ctx, "delivery_statuses")
}

func (r *statusRepository) ListOrderTypes(ctx context.Context) ([]models.StatusRow, error) {
	return r.list(ctx, "order_types")
}

func (r *statusRepository) FindDeliveryStatusByCode(ctx context.Context, code string) (*models.StatusRow, error) {
	var row models.StatusRow
	err := r.db.GetContext(ctx, &row, `SELECT id, code, name FROM delivery_statuses WHERE code = $1`, code)
	if err != nil {
		return nil, mapDBError(err, "finding delivery status "+code)
	}
	return &row, nil
}
