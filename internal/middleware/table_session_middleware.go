package middleware

import (
	"errors"
	"net/http"

	"restaurant_backend/internal/models"
	"restaurant_backend/internal/services"
	"restaurant_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableTokenHeader carries the token minted by POST /sessions.
const TableTokenHeader = "X-Table-Token"

// TableSessionMiddleware resolves the table token on every dine-in request.
// Downstream handlers read the table id from the context only, never from the client.
func TableSessionMiddleware(sessions services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(TableTokenHeader)
		if token == "" {
			token = c.Query("token")
		}

		session, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidOrExpiredSession) {
				utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeSessionExpired,
					"Table session is invalid or expired. Please scan the QR code again.", ""))
				return
			}
			utils.LogError(err, "TableSessionMiddleware: failed to resolve session")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resolve table session.", "Internal error"))
			return
		}

		c.Set(ContextTableID, session.TableID)
		c.Set(ContextTableSession, session)
		c.Next()
	}
}

// TableID returns the table resolved by TableSessionMiddleware.
func TableID(c *gin.Context) (int64, bool) {
	raw, exists := c.Get(ContextTableID)
	if !exists {
		return 0, false
	}
	id, ok := raw.(int64)
	return id, ok
}

// TableSession returns the session resolved by TableSessionMiddleware.
func TableSession(c *gin.Context) (*models.OrderSession, bool) {
	raw, exists := c.Get(ContextTableSession)
	if !exists {
		return nil, false
	}
	s, ok := raw.(*models.OrderSession)
	return s, ok
}
