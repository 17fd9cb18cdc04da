package handlers

import (
	"errors"
	"net/http"

	"restaurant_backend/internal/middleware"
	"restaurant_backend/internal/models"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

var notFoundErrors = []error{
	services.ErrOrderNotFound,
	services.ErrOrderItemNotFound,
	services.ErrMenuItemNotFound,
	services.ErrCartItemNotFound,
	services.ErrTableNotFound,
	services.ErrCategoryNotFound,
	services.ErrDeliveryNotFound,
	services.ErrUserNotFound,
}

var validationErrors = []error{
	services.ErrValidation,
	services.ErrEmptyCart,
	services.ErrUnknownOrderType,
	services.ErrDeliveryInfoRequired,
	services.ErrItemUnavailable,
	services.ErrUnknownStatus,
	services.ErrUnknownStation,
	services.ErrNotAShipper,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// respondServiceError maps a service error onto the API error envelope.
// Client errors carry the message verbatim; anything unexpected is logged and hidden.
func respondServiceError(c *gin.Context, err error, op string) {
	switch {
	case isAny(err, notFoundErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
	case errors.Is(err, services.ErrIllegalTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeIllegalTransition, err.Error(), ""))
	case isAny(err, validationErrors):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrDeliveryAlreadyAssigned):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), "Re-read the current state and retry."))
	case errors.Is(err, services.ErrInvalidOrExpiredSession):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeSessionExpired, err.Error(), ""))
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid username or password.", ""))
	case errors.Is(err, services.ErrSessionCacheUnavailable):
		utils.LogError(err, op+": session cache unavailable")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable,
			"Sessions were closed but may still be accepted for a while. Please retry.", ""))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
	default:
		utils.LogError(err, op+": unexpected error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to "+op+".", "Internal error"))
	}
}

func respondBindError(c *gin.Context, err error, op string) {
	utils.LogDebug(op+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
	utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
}

// pathID parses a positive id path parameter, answering 400 itself on failure.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.ParsePositiveID(c.Param(name))
	if err != nil {
		utils.RespondValidationFailed(c, "Invalid "+name+": "+err.Error())
		return 0, false
	}
	return id, true
}

// currentUserID reads the authenticated user, answering 401 itself if it is missing.
func currentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", "Missing user ID in context"))
		return 0, false
	}
	return id, true
}

// cartOwner picks the table resolved from the session token first, then the authenticated customer.
func cartOwner(c *gin.Context) (models.CartOwner, bool) {
	if tableID, ok := middleware.TableID(c); ok {
		return models.TableOwner(tableID), true
	}
	if userID, ok := middleware.UserID(c); ok {
		return models.CustomerOwner(userID), true
	}
	utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No table session or customer login.", ""))
	return models.CartOwner{}, false
}
