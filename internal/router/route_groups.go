package router

import (
	"restaurant_backend/internal/handlers"
	"restaurant_backend/internal/middleware"
	"restaurant_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the login route.
func SetupPublicAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.POST("/login", authHandler.LoginUser)
}

// SetupAuthenticatedAuthRoutes sets up routes for any logged-in user.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.GetCurrentUser)
}

// SetupTableRoutes sets up the dine-in routes behind TableSessionMiddleware.
func SetupTableRoutes(tableGroup *gin.RouterGroup, cartHandler *handlers.CartHandler, tableHandler *handlers.TableHandler) {
	cartRoutes := tableGroup.Group("/cart")
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddItem)
		cartRoutes.PUT("/items/:id", cartHandler.UpdateItem)
		cartRoutes.DELETE("/items/:id", cartHandler.RemoveItem)
	}
	orderRoutes := tableGroup.Group("/orders")
	{
		orderRoutes.POST("", cartHandler.Checkout)
		orderRoutes.GET("", tableHandler.ListOrders)
		orderRoutes.POST("/:id/request-payment", tableHandler.RequestPayment)
	}
}

// SetupTableAdminRoutes sets up the cashier's table controls.
func SetupTableAdminRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	tableRoutes := authenticatedGroup.Group("/tables")
	tableRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		tableRoutes.DELETE("/:id/sessions", tableHandler.EndTableSessions)
	}
}

// SetupCustomerRoutes sets up the routes of logged-in customers.
func SetupCustomerRoutes(authenticatedGroup *gin.RouterGroup, cartHandler *handlers.CartHandler, orderHandler *handlers.OrderHandler) {
	cartRoutes := authenticatedGroup.Group("/cart")
	cartRoutes.Use(middleware.RoleAuthMiddleware(models.RoleCustomer))
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddItem)
		cartRoutes.PUT("/items/:id", cartHandler.UpdateItem)
		cartRoutes.DELETE("/items/:id", cartHandler.RemoveItem)
	}

	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware(models.RoleCustomer))
	{
		orderRoutes.POST("", cartHandler.Checkout)
		orderRoutes.GET("/mine", orderHandler.ListMyOrders)
	}
}

// SetupOrderRoutes sets up the cashier order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	orderRoutes := authenticatedGroup.Group("/orders")
	orderRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier))
	{
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.GET("/:id/items/:itemId/history", orderHandler.GetItemHistory)
		orderRoutes.POST("/:id/confirm", orderHandler.ConfirmOrder)
		orderRoutes.POST("/:id/cancel", orderHandler.CancelOrder)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
	}
}

// SetupKitchenRoutes sets up the station terminal routes.
func SetupKitchenRoutes(authenticatedGroup *gin.RouterGroup, kitchenHandler *handlers.KitchenHandler) {
	kitchenRoutes := authenticatedGroup.Group("/kitchen")
	kitchenRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleKitchen, models.RoleCashier))
	{
		kitchenRoutes.GET("/stations", kitchenHandler.ListStations)
		kitchenRoutes.GET("/ready", kitchenHandler.ReadyToServe)
		kitchenRoutes.GET("/:station/:status", kitchenHandler.ListByStation)
		kitchenRoutes.POST("/items/:id/status", kitchenHandler.AdvanceItem)
	}

	adminRoutes := authenticatedGroup.Group("/kitchen/categories")
	adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		adminRoutes.PUT("/:id/station", kitchenHandler.AssignCategoryStation)
	}
}

// SetupDeliveryRoutes sets up shipper assignment and hand-off routes.
func SetupDeliveryRoutes(authenticatedGroup *gin.RouterGroup, deliveryHandler *handlers.DeliveryHandler) {
	deliveryRoutes := authenticatedGroup.Group("/deliveries")
	{
		deliveryRoutes.POST("/:id/assign", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier), deliveryHandler.AssignShipper)
		deliveryRoutes.PUT("/:id/status", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleCashier, models.RoleShipper), deliveryHandler.UpdateStatus)
		deliveryRoutes.GET("/mine", middleware.RoleAuthMiddleware(models.RoleShipper), deliveryHandler.ListMine)
	}
}
