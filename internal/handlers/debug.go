package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"holiday-service/internal/middleware"
	"holiday-service/internal/telemetry"
)

// Auditor emits audit records.
type Auditor interface {
	Emit(ctx context.Context, ev telemetry.AuditEvent)
}

// RegisterDebugRoutes mounts GET /debug/audit-test, which emits one audit
// record so operators can check the broker path end to end.
func RegisterDebugRoutes(router gin.IRouter, auditor Auditor, enabled bool) {
	if !enabled || auditor == nil {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		ev := telemetry.AuditEvent{
			Action:    c.DefaultQuery("action", "debug.audit_test"),
			RequestID: requestIDFromContext(c),
		}
		if id, ok := middleware.UserID(c); ok {
			ev.UserID = id.String()
		}
		auditor.Emit(c.Request.Context(), ev)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "action": ev.Action})
	})
}
