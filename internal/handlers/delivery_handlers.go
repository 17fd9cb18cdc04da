package handlers

import (
	"net/http"

	"restaurant_backend/internal/middleware"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DeliveryHandler holds the delivery service.
type DeliveryHandler struct {
	deliveryService services.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(ds services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: ds}
}

// AssignShipper handles POST /deliveries/:id/assign where :id is the order id.
func (h *DeliveryHandler) AssignShipper(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AssignShipperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "AssignShipper")
		return
	}
	delivery, err := h.deliveryService.AssignShipper(c.Request.Context(), orderID, req)
	if err != nil {
		respondServiceError(c, err, "assign shipper")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Shipper assigned", delivery)
}

// UpdateStatus handles PUT /deliveries/:id/status where :id is the delivery id.
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	deliveryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "UpdateDeliveryStatus")
		return
	}

	actor := services.Actor{UserID: userID, Role: middleware.UserRole(c)}
	delivery, err := h.deliveryService.AdvanceDelivery(c.Request.Context(), deliveryID, req, actor)
	if err != nil {
		respondServiceError(c, err, "update delivery status")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Delivery status updated", delivery)
}

// ListMine returns the deliveries assigned to the calling shipper.
func (h *DeliveryHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	deliveries, err := h.deliveryService.ListShipperDeliveries(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "list deliveries")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", deliveries)
}
