package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"holiday-service/internal/services"
)

// ConnectionHandler manages holiday invitations.
type ConnectionHandler struct {
	connections *services.ConnectionService
}

// NewConnectionHandler builds a ConnectionHandler.
func NewConnectionHandler(connections *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

// Propose sends an invitation for a date.
func (h *ConnectionHandler) Propose(c *gin.Context) {
	senderID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		RecipientID uuid.UUID `json:"recipient_id" binding:"required"`
		Date        string    `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conn, err := h.connections.Propose(c.Request.Context(), senderID, req.RecipientID, req.Date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conn)
}

// List returns the caller's connections in both directions.
func (h *ConnectionHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	views, err := h.connections.MyConnections(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"connections": views})
}

// Status reports the relationship between the caller and another user.
func (h *ConnectionHandler) Status(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	otherID, ok := uuidParam(c, "user_id")
	if !ok {
		return
	}

	status, err := h.connections.Status(c.Request.Context(), userID, otherID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Respond accepts or declines a pending invitation.
func (h *ConnectionHandler) Respond(c *gin.Context) {
	recipientID, ok := callerID(c)
	if !ok {
		return
	}
	connectionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Accept *bool `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conn, err := h.connections.Respond(c.Request.Context(), recipientID, connectionID, *req.Accept)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}

// Withdraw removes a pending invitation the caller sent.
func (h *ConnectionHandler) Withdraw(c *gin.Context) {
	senderID, ok := callerID(c)
	if !ok {
		return
	}
	connectionID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.connections.Withdraw(c.Request.Context(), senderID, connectionID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
