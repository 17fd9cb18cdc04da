package handlers

import (
	"net/http"
	"strconv"

	"restaurant_backend/internal/middleware"
	"restaurant_backend/internal/models"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// OrderListResponse is one page of orders.
type OrderListResponse struct {
	Orders     []models.Order `json:"orders"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
}

// GetOrders handles fetching all orders with filters
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters

	// Parse query parameters
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := utils.ParsePositiveID(userIDStr)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid user_id format: "+err.Error())
			return
		}
		filters.UserID = &userID
	}
	if tableIDStr := c.Query("table_id"); tableIDStr != "" {
		tableID, err := utils.ParsePositiveID(tableIDStr)
		if err != nil {
			utils.RespondValidationFailed(c, "Invalid table_id format: "+err.Error())
			return
		}
		filters.TableID = &tableID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if orderType := c.Query("order_type"); orderType != "" {
		filters.OrderType = &orderType
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}
	if pageStr := c.Query("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			utils.RespondValidationFailed(c, "page must be a positive integer")
			return
		}
		filters.Page = page
	}
	if pageSizeStr := c.Query("page_size"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize <= 0 {
			utils.RespondValidationFailed(c, "page_size must be a positive integer")
			return
		}
		filters.PageSize = pageSize
	}

	orders, totalCount, err := h.orderService.GetOrders(c.Request.Context(), filters)
	if err != nil {
		respondServiceError(c, err, "fetch orders")
		return
	}

	page, pageSize := filters.Page, filters.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = len(orders)
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", OrderListResponse{
		Orders:     orders,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// GetOrderByID returns one order with its items and their current status.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondServiceError(c, err, "fetch order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", order)
}

// GetItemHistory returns the status ledger of one order item, oldest first.
func (h *OrderHandler) GetItemHistory(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemId")
	if !ok {
		return
	}
	history, err := h.orderService.ItemHistory(c.Request.Context(), orderID, itemID)
	if err != nil {
		respondServiceError(c, err, "fetch item history")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", history)
}

// ConfirmOrder handles the cashier confirming a pending order.
func (h *OrderHandler) ConfirmOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.ConfirmOrder(c.Request.Context(), orderID, actorID(c))
	if err != nil {
		respondServiceError(c, err, "confirm order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Order confirmed", order)
}

// CancelOrder handles the cashier cancelling an order before payment.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.CancelOrder(c.Request.Context(), orderID, actorID(c))
	if err != nil {
		respondServiceError(c, err, "cancel order")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Order cancelled", order)
}

// UpdateOrderStatus handles updating the status of an order
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateOrderStatus")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "update order status")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Order status updated", order)
}

// ListMyOrders returns the authenticated customer's orders.
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	orders, err := h.orderService.ListCustomerOrders(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "fetch orders")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", orders)
}

// actorID is the staff member recorded on ledger entries, if any.
func actorID(c *gin.Context) *int64 {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}
