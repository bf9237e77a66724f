package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"holiday-service/internal/middleware"
	"holiday-service/internal/observability"
	"holiday-service/internal/services"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(middleware.RequestIDKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}
	return observability.RequestIDFromRequest(c.Request)
}

// callerID returns the authenticated user or answers 401.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		writeError(c, services.ErrNotAuthenticated)
		return uuid.Nil, false
	}
	return id, true
}
