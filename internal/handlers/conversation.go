package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"holiday-service/internal/services"
)

// ConversationHandler serves conversations and their messages.
type ConversationHandler struct {
	conversations *services.ConversationService
}

// NewConversationHandler builds a ConversationHandler.
func NewConversationHandler(conversations *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// RequestJoin opens a join request towards a host, or returns the existing
// conversation for the pair.
func (h *ConversationHandler) RequestJoin(c *gin.Context) {
	guestID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		HostID  uuid.UUID `json:"host_id" binding:"required"`
		Message string    `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	conv, created, err := h.conversations.RequestJoin(c.Request.Context(), guestID, req.HostID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, conv)
}

// Inbox lists the caller's conversations, most recent activity first.
func (h *ConversationHandler) Inbox(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	entries, err := h.conversations.Inbox(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": entries})
}

// ListMessages returns a conversation's messages in ascending order.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	userID, conversationID, ok := h.ids(c)
	if !ok {
		return
	}

	msgs, err := h.conversations.ListMessages(c.Request.Context(), userID, conversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage admits a message into the conversation.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	senderID, conversationID, ok := h.ids(c)
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	msg, err := h.conversations.SendMessage(c.Request.Context(), senderID, conversationID, req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkAsRead marks the counterpart's messages as read.
func (h *ConversationHandler) MarkAsRead(c *gin.Context) {
	userID, conversationID, ok := h.ids(c)
	if !ok {
		return
	}

	n, err := h.conversations.MarkAsRead(c.Request.Context(), userID, conversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// Accept lets the host accept a join request.
func (h *ConversationHandler) Accept(c *gin.Context) {
	hostID, conversationID, ok := h.ids(c)
	if !ok {
		return
	}

	conv, err := h.conversations.AcceptRequest(c.Request.Context(), hostID, conversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Decline lets the host decline a join request.
func (h *ConversationHandler) Decline(c *gin.Context) {
	hostID, conversationID, ok := h.ids(c)
	if !ok {
		return
	}

	conv, err := h.conversations.DeclineRequest(c.Request.Context(), hostID, conversationID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := callerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	conversationID, ok := uuidParam(c, "id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return userID, conversationID, true
}
