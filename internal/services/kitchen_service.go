package services

import (
	"context"
	"errors"
	"fmt"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/pkg/utils"
)

// AssignStationRequest maps a category to a kitchen station.
type AssignStationRequest struct {
	Station string `json:"station" binding:"required"`
}

// KitchenService serves per-station work queues.
type KitchenService interface {
	ListStations() []models.StationQueues
	ListByStation(ctx context.Context, station, status string) ([]models.KitchenItemView, error)
	ReadyToServe(ctx context.Context) ([]models.KitchenItemView, error)
	AdvanceItem(ctx context.Context, itemID int64, req TransitionItemRequest, actorID *int64) (*models.OrderItemStatusEntry, error)
	AssignCategoryStation(ctx context.Context, categoryID int64, req AssignStationRequest) (*models.CategoryStation, error)
	SyncDefaultStations(ctx context.Context) (int, error)
}

type kitchenService struct {
	stationRepo repositories.StationRepository
	orders      OrderService
	catalog     *StatusCatalog
}

// NewKitchenService creates a new instance of KitchenService.
func NewKitchenService(sr repositories.StationRepository, orders OrderService, catalog *StatusCatalog) KitchenService {
	return &kitchenService{stationRepo: sr, orders: orders, catalog: catalog}
}

// stationQueueStatuses are the queues every station terminal opens with.
var stationQueueStatuses = []models.OrderItemStatusCode{models.ItemStatusPending, models.ItemStatusCooking}

// ListStations lists every station with its default queues, in display order.
func (s *kitchenService) ListStations() []models.StationQueues {
	out := make([]models.StationQueues, 0, len(models.Stations))
	for _, st := range models.Stations {
		statuses := make([]models.OrderItemStatusCode, len(stationQueueStatuses))
		copy(statuses, stationQueueStatuses)
		out = append(out, models.StationQueues{Station: st, Statuses: statuses})
	}
	return out
}

// ListByStation returns the station's items currently in status, oldest first.
func (s *kitchenService) ListByStation(ctx context.Context, station, status string) ([]models.KitchenItemView, error) {
	st, err := ParseStation(station)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, station)
	}
	code := models.OrderItemStatusCode(normalizeCode(status))
	if _, err := s.catalog.ItemStatusID(code); err != nil {
		return nil, err
	}

	views, err := s.stationRepo.ListItemsByStation(ctx, st, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s items for station %s: %w", code, st, err)
	}
	return views, nil
}

// ReadyToServe returns items of every station waiting to be carried out, newest first.
func (s *kitchenService) ReadyToServe(ctx context.Context) ([]models.KitchenItemView, error) {
	views, err := s.stationRepo.ListItemsByStatus(ctx, models.ItemStatusReadyToServe)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready items: %w", err)
	}
	return views, nil
}

// AdvanceItem is TransitionItem as seen from the kitchen.
func (s *kitchenService) AdvanceItem(ctx context.Context, itemID int64, req TransitionItemRequest, actorID *int64) (*models.OrderItemStatusEntry, error) {
	return s.orders.TransitionItem(ctx, itemID, req, actorID)
}

func (s *kitchenService) AssignCategoryStation(ctx context.Context, categoryID int64, req AssignStationRequest) (*models.CategoryStation, error) {
	st, err := ParseStation(req.Station)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, req.Station)
	}
	cs, err := s.stationRepo.UpsertCategoryStation(ctx, categoryID, st)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidReference) || isNotFound(err) {
			return nil, fmt.Errorf("%w: id %d", ErrCategoryNotFound, categoryID)
		}
		return nil, fmt.Errorf("failed to map category %d to station %s: %w", categoryID, st, err)
	}

	utils.LogInfo("Category station assigned", map[string]interface{}{"category_id": categoryID, "station": st})
	return cs, nil
}

// SyncDefaultStations maps every unmapped category whose name matches a default rule.
// Existing mappings, including admin overrides, are left alone.
func (s *kitchenService) SyncDefaultStations(ctx context.Context) (int, error) {
	categories, err := s.stationRepo.ListUnmappedCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list unmapped categories: %w", err)
	}

	mapped := 0
	for _, c := range categories {
		st, ok := StationOf(c.Name)
		if !ok {
			utils.LogDebug("Category has no default station", map[string]interface{}{"category_id": c.ID, "name": c.Name})
			continue
		}
		if _, err := s.stationRepo.UpsertCategoryStation(ctx, c.ID, st); err != nil {
			return mapped, fmt.Errorf("failed to map category %d to station %s: %w", c.ID, st, err)
		}
		mapped++
	}
	if mapped > 0 {
		utils.LogInfo("Default stations applied", map[string]interface{}{"categories_mapped": mapped})
	}
	return mapped, nil
}
