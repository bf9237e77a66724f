package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"holiday-service/internal/services"
)

// GatheringHandler manages group holiday gatherings.
type GatheringHandler struct {
	gatherings *services.GatheringService
}

// NewGatheringHandler builds a GatheringHandler.
func NewGatheringHandler(gatherings *services.GatheringService) *GatheringHandler {
	return &GatheringHandler{gatherings: gatherings}
}

// Create creates a gathering owned by the caller.
func (h *GatheringHandler) Create(c *gin.Context) {
	ownerID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Name      string      `json:"name" binding:"required"`
		Date      string      `json:"date"`
		MemberIDs []uuid.UUID `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.gatherings.Create(c.Request.Context(), ownerID, req.Name, req.Date, req.MemberIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// List returns gatherings the caller owns or belongs to.
func (h *GatheringHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	views, err := h.gatherings.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gatherings": views})
}
