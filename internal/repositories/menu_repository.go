package repositories

import (
	"context"
	"fmt"

	"restaurant_backend/internal/models"
)

// MenuRepository reads menu items. Menu administration lives elsewhere.
type MenuRepository interface {
	GetMenuItem(ctx context.Context, executor SQLExecutor, menuItemID int64) (*models.MenuItem, error)
}

type menuRepository struct{}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository() MenuRepository {
	return &menuRepository{}
}

func (r *menuRepository) GetMenuItem(ctx context.Context, executor SQLExecutor, menuItemID int64) (*models.MenuItem, error) {
	query := `
		SELECT mi.id, mi.category_id, c.name, mi.name, mi.price, mi.is_available, mi.created_at, mi.updated_at
		FROM menu_items mi
		JOIN categories c ON c.id = mi.category_id
		WHERE mi.id = $1`

	var mi models.MenuItem
	err := executor.QueryRowContext(ctx, query, menuItemID).Scan(
		&mi.ID, &mi.CategoryID, &mi.CategoryName, &mi.Name, &mi.Price, &mi.IsAvailable, &mi.CreatedAt, &mi.UpdatedAt,
	)
	if err != nil {
		return nil, mapDBError(err, fmt.Sprintf("getting menu item %d", menuItemID))
	}
	return &mi, nil
}
