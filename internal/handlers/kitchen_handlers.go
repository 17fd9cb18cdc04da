package handlers

import (
	"net/http"

	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// KitchenHandler serves the station terminals.
type KitchenHandler struct {
	kitchenService services.KitchenService
}

// NewKitchenHandler creates a new KitchenHandler.
func NewKitchenHandler(ks services.KitchenService) *KitchenHandler {
	return &KitchenHandler{kitchenService: ks}
}

// ListStations handles GET /kitchen/stations.
func (h *KitchenHandler) ListStations(c *gin.Context) {
	utils.RespondWithSuccess(c, http.StatusOK, "", h.kitchenService.ListStations())
}

// ListByStation handles GET /kitchen/:station/:status, e.g. /kitchen/hot/pending.
func (h *KitchenHandler) ListByStation(c *gin.Context) {
	items, err := h.kitchenService.ListByStation(c.Request.Context(), c.Param("station"), c.Param("status"))
	if err != nil {
		respondServiceError(c, err, "list station items")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", items)
}

// ReadyToServe lists finished items across all stations.
func (h *KitchenHandler) ReadyToServe(c *gin.Context) {
	items, err := h.kitchenService.ReadyToServe(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list ready items")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", items)
}

// AdvanceItem moves one item along its status chain.
// 409 means somebody else moved it first; 400 ILLEGAL_TRANSITION means the move is not allowed.
func (h *KitchenHandler) AdvanceItem(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.TransitionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "AdvanceItem")
		return
	}

	entry, err := h.kitchenService.AdvanceItem(c.Request.Context(), itemID, req, actorID(c))
	if err != nil {
		respondServiceError(c, err, "advance order item")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Item status updated", entry)
}

// AssignCategoryStation maps a menu category to a station.
func (h *KitchenHandler) AssignCategoryStation(c *gin.Context) {
	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AssignStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "AssignCategoryStation")
		return
	}

	mapping, err := h.kitchenService.AssignCategoryStation(c.Request.Context(), categoryID, req)
	if err != nil {
		respondServiceError(c, err, "assign category station")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Category station updated", mapping)
}
