package handlers

import (
	"context"
	"time"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/services"

	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, int, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Order), args.Int(1), args.Error(2)
}

func (m *MockOrderService) ListTableOrders(ctx context.Context, tableID int64, since *time.Time) ([]models.Order, error) {
	args := m.Called(ctx, tableID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) ListCustomerOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) ItemHistory(ctx context.Context, orderID, itemID int64) ([]models.OrderItemStatusEntry, error) {
	args := m.Called(ctx, orderID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.OrderItemStatusEntry), args.Error(1)
}

func (m *MockOrderService) TransitionItem(ctx context.Context, itemID int64, req services.TransitionItemRequest, actorID *int64) (*models.OrderItemStatusEntry, error) {
	args := m.Called(ctx, itemID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItemStatusEntry), args.Error(1)
}

func (m *MockOrderService) ConfirmOrder(ctx context.Context, orderID int64, actorID *int64) (*models.Order, error) {
	args := m.Called(ctx, orderID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) CancelOrder(ctx context.Context, orderID int64, actorID *int64) (*models.Order, error) {
	args := m.Called(ctx, orderID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID int64, req services.UpdateOrderStatusRequest, actorID *int64) (*models.Order, error) {
	args := m.Called(ctx, orderID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) RequestPayment(ctx context.Context, tableID, orderID int64, seatedAt time.Time) (*models.Order, error) {
	args := m.Called(ctx, tableID, orderID, seatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, owner models.CartOwner) (*models.Cart, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, owner models.CartOwner, req services.AddCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, owner models.CartOwner, cartItemID int64, req services.UpdateCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, owner, cartItemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, owner models.CartOwner, cartItemID int64) (*models.Cart, error) {
	args := m.Called(ctx, owner, cartItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartService) Checkout(ctx context.Context, owner models.CartOwner, req services.CheckoutRequest) (*services.CheckoutResponse, error) {
	args := m.Called(ctx, owner, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckoutResponse), args.Error(1)
}

type MockKitchenService struct {
	mock.Mock
}

func (m *MockKitchenService) ListStations() []models.StationQueues {
	args := m.Called()
	return args.Get(0).([]models.StationQueues)
}

func (m *MockKitchenService) ListByStation(ctx context.Context, station, status string) ([]models.KitchenItemView, error) {
	args := m.Called(ctx, station, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KitchenItemView), args.Error(1)
}

func (m *MockKitchenService) ReadyToServe(ctx context.Context) ([]models.KitchenItemView, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KitchenItemView), args.Error(1)
}

func (m *MockKitchenService) AdvanceItem(ctx context.Context, itemID int64, req services.TransitionItemRequest, actorID *int64) (*models.OrderItemStatusEntry, error) {
	args := m.Called(ctx, itemID, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderItemStatusEntry), args.Error(1)
}

func (m *MockKitchenService) AssignCategoryStation(ctx context.Context, categoryID int64, req services.AssignStationRequest) (*models.CategoryStation, error) {
	args := m.Called(ctx, categoryID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CategoryStation), args.Error(1)
}

func (m *MockKitchenService) SyncDefaultStations(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) StartSession(ctx context.Context, tableID int64) (*services.SessionResponse, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionResponse), args.Error(1)
}

func (m *MockSessionService) Resolve(ctx context.Context, token string) (*models.OrderSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderSession), args.Error(1)
}

func (m *MockSessionService) EndTableSessions(ctx context.Context, tableID int64) (int, error) {
	args := m.Called(ctx, tableID)
	return args.Int(0), args.Error(1)
}

type MockDeliveryService struct {
	mock.Mock
}

func (m *MockDeliveryService) AssignShipper(ctx context.Context, orderID int64, req services.AssignShipperRequest) (*models.Delivery, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *MockDeliveryService) AdvanceDelivery(ctx context.Context, deliveryID int64, req services.UpdateDeliveryStatusRequest, actor services.Actor) (*models.Delivery, error) {
	args := m.Called(ctx, deliveryID, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *MockDeliveryService) ListShipperDeliveries(ctx context.Context, shipperID int64) ([]models.Delivery, error) {
	args := m.Called(ctx, shipperID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Delivery), args.Error(1)
}

var (
	_ services.OrderService    = (*MockOrderService)(nil)
	_ services.CartService     = (*MockCartService)(nil)
	_ services.KitchenService  = (*MockKitchenService)(nil)
	_ services.SessionService  = (*MockSessionService)(nil)
	_ services.DeliveryService = (*MockDeliveryService)(nil)
)
