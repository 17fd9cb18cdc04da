package handlers

import (
	"net/http"
	"time"

	"restaurant_backend/internal/middleware"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandler serves QR-code table sessions and the dine-in order endpoints.
type TableHandler struct {
	sessionService services.SessionService
	orderService   services.OrderService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ss services.SessionService, os services.OrderService) *TableHandler {
	return &TableHandler{sessionService: ss, orderService: os}
}

// StartSession mints a table token after a QR scan.
func (h *TableHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "StartSession")
		return
	}
	resp, err := h.sessionService.StartSession(c.Request.Context(), req.TableID)
	if err != nil {
		respondServiceError(c, err, "start table session")
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, "Table session started", resp)
}

// EndTableSessions closes every open session of a table.
func (h *TableHandler) EndTableSessions(c *gin.Context) {
	tableID, ok := pathID(c, "id")
	if !ok {
		return
	}
	closed, err := h.sessionService.EndTableSessions(c.Request.Context(), tableID)
	if err != nil {
		respondServiceError(c, err, "end table sessions")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Table sessions ended", gin.H{"table_id": tableID, "sessions_closed": closed})
}

// ListOrders returns the orders placed during the current table session, newest first.
// ?since=RFC3339 narrows the list further but never reaches back before the session started.
func (h *TableHandler) ListOrders(c *gin.Context) {
	session, ok := middleware.TableSession(c)
	if !ok {
		respondServiceError(c, services.ErrInvalidOrExpiredSession, "list table orders")
		return
	}

	since := session.CreatedAt
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondValidationFailed(c, "since must be an RFC3339 timestamp")
			return
		}
		if t.After(since) {
			since = t
		}
	}

	orders, err := h.orderService.ListTableOrders(c.Request.Context(), session.TableID, &since)
	if err != nil {
		respondServiceError(c, err, "list table orders")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", orders)
}

// RequestPayment asks for the bill on one of the current session's orders.
func (h *TableHandler) RequestPayment(c *gin.Context) {
	session, ok := middleware.TableSession(c)
	if !ok {
		respondServiceError(c, services.ErrInvalidOrExpiredSession, "request payment")
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.RequestPayment(c.Request.Context(), session.TableID, orderID, session.CreatedAt)
	if err != nil {
		respondServiceError(c, err, "request payment")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "Payment requested", order)
}
