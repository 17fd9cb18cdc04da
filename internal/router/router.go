package router

import (
	"time"

	"restaurant_backend/internal/handlers"
	"restaurant_backend/internal/middleware"
	"restaurant_backend/internal/repositories"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// Deps are the process-wide resources the services are built from.
type Deps struct {
	DB           *sqlx.DB
	Catalog      *services.StatusCatalog
	SessionCache repositories.SessionCache
	JWT          *utils.JWTManager
	SessionTTL   time.Duration
}

// Services is the wired service layer.
type Services struct {
	Auth     services.AuthService
	Orders   services.OrderService
	Kitchen  services.KitchenService
	Sessions services.SessionService
	Carts    services.CartService
	Delivery services.DeliveryService
}

// NewServices initializes repositories and services over one database handle.
func NewServices(d Deps) *Services {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository()
	menuRepo := repositories.NewMenuRepository()
	orderRepo := repositories.NewOrderRepository()
	ledgerRepo := repositories.NewLedgerRepository()
	cartRepo := repositories.NewCartRepository()
	sessionRepo := repositories.NewSessionRepository()
	deliveryRepo := repositories.NewDeliveryRepository()
	stationRepo := repositories.NewStationRepository(d.DB)
	tx := repositories.NewTransactor(d.DB)

	// Initialize Services
	orderService := services.NewOrderService(orderRepo, ledgerRepo, d.Catalog, tx, d.DB)
	return &Services{
		Auth:     services.NewAuthService(authRepo, d.DB, d.JWT),
		Orders:   orderService,
		Kitchen:  services.NewKitchenService(stationRepo, orderService, d.Catalog),
		Sessions: services.NewSessionService(sessionRepo, d.SessionCache, d.DB, d.SessionTTL),
		Carts:    services.NewCartService(cartRepo, menuRepo, orderRepo, ledgerRepo, d.Catalog, tx, d.DB),
		Delivery: services.NewDeliveryService(deliveryRepo, orderRepo, authRepo, d.Catalog, tx, d.DB),
	}
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, svc *Services, jwt *utils.JWTManager) {
	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(svc.Auth)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	kitchenHandler := handlers.NewKitchenHandler(svc.Kitchen)
	tableHandler := handlers.NewTableHandler(svc.Sessions, svc.Orders)
	cartHandler := handlers.NewCartHandler(svc.Carts)
	deliveryHandler := handlers.NewDeliveryHandler(svc.Delivery)

	apiV1 := engine.Group("/api/v1")

	// Public routes: staff/customer login and the QR landing page.
	SetupPublicAuthRoutes(apiV1.Group("/auth"), authHandler)
	apiV1.POST("/sessions", tableHandler.StartSession)

	// Dine-in devices authenticate with the table token, not a JWT.
	table := apiV1.Group("/table")
	table.Use(middleware.TableSessionMiddleware(svc.Sessions))
	SetupTableRoutes(table, cartHandler, tableHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(jwt))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupTableAdminRoutes(authenticated, tableHandler)
		SetupCustomerRoutes(authenticated, cartHandler, orderHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupKitchenRoutes(authenticated, kitchenHandler)
		SetupDeliveryRoutes(authenticated, deliveryHandler)
	}
}
