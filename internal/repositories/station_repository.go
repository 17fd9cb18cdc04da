package repositories

import (
	"context"
	"fmt"

	"restaurant_backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// StationRepository serves the kitchen read projections and the
// category → station mapping. Reads run outside any transaction.
type StationRepository interface {
	ListItemsByStation(ctx context.Context, station models.Station, status models.OrderItemStatusCode) ([]models.KitchenItemView, error)
	ListItemsByStatus(ctx context.Context, status models.OrderItemStatusCode) ([]models.KitchenItemView, error)
	ListUnmappedCategories(ctx context.Context) ([]models.Category, error)
	UpsertCategoryStation(ctx context.Context, categoryID int64, station models.Station) (*models.CategoryStation, error)
}

type stationRepository struct {
	db *sqlx.DB
}

// NewStationRepository creates a new instance of StationRepository.
func NewStationRepository(db *sqlx.DB) StationRepository {
	return &stationRepository{db: db}
}

const kitchenViewSelect = `
	SELECT oi.id AS order_item_id, o.id AS order_id, o.order_code, ot.code AS order_type,
	       mi.id AS menu_item_id, mi.name AS menu_item_name, c.name AS category_name,
	       COALESCE(cs.station, '') AS station,
	       oi.quantity, oi.note, st.code AS status, h.id AS status_entry_id, h.changed_at AS status_since,
	       o.table_id, dt.name AS table_name, u.full_name AS customer_name
	FROM order_items oi
	JOIN orders o ON o.id = oi.order_id
	JOIN order_types ot ON ot.id = o.order_type_id
	JOIN order_statuses os ON os.id = o.order_status_id
	JOIN menu_items mi ON mi.id = oi.menu_item_id
	JOIN categories c ON c.id = mi.category_id
	LEFT JOIN category_stations cs ON cs.category_id = c.id
	JOIN LATERAL (
	    SELECT hh.id, hh.order_item_status_id, hh.changed_at
	    FROM order_item_status_history hh
	    WHERE hh.order_item_id = oi.id
	    ORDER BY hh.changed_at DESC, hh.id DESC
	    LIMIT 1
	) h ON TRUE
	JOIN order_item_statuses st ON st.id = h.order_item_status_id
	LEFT JOIN dining_tables dt ON dt.id = o.table_id
	LEFT JOIN users u ON u.id = o.user_id`

// ListItemsByStation returns the queue oldest first. Items of cancelled orders never show.
func (r *stationRepository) ListItemsByStation(ctx context.Context, station models.Station, status models.OrderItemStatusCode) ([]models.KitchenItemView, error) {
	views := []models.KitchenItemView{}
	query := kitchenViewSelect + `
	WHERE cs.station = $1 AND st.code = $2 AND os.code <> 'CANCELLED'
	ORDER BY h.changed_at ASC, h.id ASC`
	if err := r.db.SelectContext(ctx, &views, query, string(station), string(status)); err != nil {
		return nil, mapDBError(err, fmt.Sprintf("listing %s items at station %s", status, station))
	}
	return views, nil
}

// ListItemsByStatus returns items of every station, newest first.
func (r *stationRepository) ListItemsByStatus(ctx context.Context, status models.OrderItemStatusCode) ([]models.KitchenItemView, error) {
	views := []models.KitchenItemView{}
	query := kitchenViewSelect + `
	WHERE st.code = $1 AND os.code <> 'CANCELLED'
	ORDER BY h.changed_at DESC, h.id DESC`
	if err := r.db.SelectContext(ctx, &views, query, string(status)); err != nil {
		return nil, mapDBError(err, fmt.Sprintf("listing %s items", status))
	}
	return views, nil
}

func (r *stationRepository) ListUnmappedCategories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	query := `SELECT c.id, c.name FROM categories c
	          LEFT JOIN category_stations cs ON cs.category_id = c.id
	          WHERE cs.category_id IS NULL
	          ORDER BY c.id`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, mapDBError(err, "listing unmapped categories")
	}
	return categories, nil
}

func (r *stationRepository) UpsertCategoryStation(ctx context.Context, categoryID int64, station models.Station) (*models.CategoryStation, error) {
	query := `
		WITH upserted AS (
		    INSERT INTO category_stations (category_id, station, updated_at)
		    VALUES ($1, $2, NOW())
		    ON CONFLICT (category_id) DO UPDATE SET station = EXCLUDED.station, updated_at = EXCLUDED.updated_at
		    RETURNING category_id, station, updated_at
		)
		SELECT u.category_id, c.name AS category_name, u.station, u.updated_at
		FROM upserted u JOIN categories c ON c.id = u.category_id`

	var cs models.CategoryStation
	if err := r.db.GetContext(ctx, &cs, query, categoryID, string(station)); err != nil {
		return nil, mapDBError(err, fmt.Sprintf("mapping category %d to station %s", categoryID, station))
	}
	return &cs, nil
}
