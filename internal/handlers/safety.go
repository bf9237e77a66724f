package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"holiday-service/internal/services"
)

// SafetyHandler serves blocks and reports.
type SafetyHandler struct {
	safety *services.SafetyService
}

func NewSafetyHandler(safety *services.SafetyService) *SafetyHandler {
	return &SafetyHandler{safety: safety}
}

func (h *SafetyHandler) Block(c *gin.Context) {
	blockerID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		UserID uuid.UUID `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.safety.Block(c.Request.Context(), blockerID, req.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SafetyHandler) Unblock(c *gin.Context) {
	blockerID, ok := callerID(c)
	if !ok {
		return
	}
	blockedID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}

	if err := h.safety.Unblock(c.Request.Context(), blockerID, blockedID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SafetyHandler) ListBlocked(c *gin.Context) {
	blockerID, ok := callerID(c)
	if !ok {
		return
	}

	blocks, err := h.safety.ListBlocked(c.Request.Context(), blockerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

func (h *SafetyHandler) Report(c *gin.Context) {
	reporterID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.ReportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.safety.Report(c.Request.Context(), reporterID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
