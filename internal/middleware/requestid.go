package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"holiday-service/internal/observability"
)

// RequestIDKey is the gin context key for the request id.
const RequestIDKey = "request_id"

// RequestID reuses the caller's X-Request-Id or mints one, echoes it back and
// stores it on the request context for audit and event envelopes.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(observability.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(observability.RequestIDHeader, id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
