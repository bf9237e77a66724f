package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"holiday-service/internal/services"
)

// DeletionQueue schedules the account deletion cascade.
type DeletionQueue interface {
	EnqueueAccountDeletion(ctx context.Context, userID uuid.UUID) error
}

// AccountHandler serves the caller's own user record and the identity
// provider's deletion hook.
type AccountHandler struct {
	identities *services.IdentityResolver
	queue      DeletionQueue
}

// NewAccountHandler builds an AccountHandler.
func NewAccountHandler(identities *services.IdentityResolver, queue DeletionQueue) *AccountHandler {
	return &AccountHandler{identities: identities, queue: queue}
}

// Me returns the resolved internal user.
func (h *AccountHandler) Me(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	user, err := h.identities.Get(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// IdentityDeleted enqueues the deletion cascade for a destroyed upstream
// identity. Unknown identities are acknowledged so the provider stops retrying.
func (h *AccountHandler) IdentityDeleted(c *gin.Context) {
	var req struct {
		StableID string `json:"stable_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := h.identities.Lookup(c.Request.Context(), req.StableID)
	if errors.Is(err, services.ErrNotFound) {
		log.Info().Str("stable_id", req.StableID).Msg("identity deleted: no local user")
		c.JSON(http.StatusAccepted, gin.H{"status": "unknown"})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.queue.EnqueueAccountDeletion(c.Request.Context(), user.ID); err != nil {
		writeError(c, err)
		return
	}
	log.Info().
		Str("user_id", user.ID.String()).
		Str("request_id", requestIDFromContext(c)).
		Msg("account deletion enqueued")
	c.JSON(http.StatusAccepted, gin.H{"status": "enqueued", "user_id": user.ID})
}
