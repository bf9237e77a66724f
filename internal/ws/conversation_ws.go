package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"holiday-service/internal/auth"
	"holiday-service/internal/models"
	"holiday-service/internal/observability"
)

// TokenVerifier turns a bearer token into the asserted identity.
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// IdentityResolver maps the asserted identity to the internal user.
type IdentityResolver interface {
	Resolve(ctx context.Context, identity models.Identity) (models.User, error)
}

// ParticipantChecker reports whether a user belongs to a conversation.
type ParticipantChecker interface {
	IsParticipant(ctx context.Context, conversationID uuid.UUID, userID uuid.UUID) (bool, error)
}

// ConversationWebSocketHandler subscribes participants to conversation events.
type ConversationWebSocketHandler struct {
	hub           *Hub
	verifier      TokenVerifier
	resolver      IdentityResolver
	conversations ParticipantChecker
}

// NewConversationWebSocketHandler constructs a ConversationWebSocketHandler.
func NewConversationWebSocketHandler(hub *Hub, verifier TokenVerifier, resolver IdentityResolver, conversations ParticipantChecker) *ConversationWebSocketHandler {
	return &ConversationWebSocketHandler{hub: hub, verifier: verifier, resolver: resolver, conversations: conversations}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, checks participation, then upgrades and registers
// the connection. The token comes from the Authorization header or ?token=.
func (h *ConversationWebSocketHandler) Handle(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	ctx, span := otel.Tracer("holiday-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, err := h.authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.conversations.IsParticipant(ctx, conversationID, userID)
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a conversation participant"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws: upgrade failed")
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Add(conversationID, conn, info)

	observability.IncWSActive(wsKind)
	// The request context ends with the handler; lifecycle events outlive it.
	eventCtx := context.WithoutCancel(ctx)
	publishWSEvent(eventCtx, "ws_connect", conversationID, info, "")

	go h.readLoop(eventCtx, conversationID, conn, info)
}

// readLoop discards client frames and cleans up once the peer goes away.
func (h *ConversationWebSocketHandler) readLoop(ctx context.Context, conversationID uuid.UUID, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.Remove(conversationID, conn)
		observability.DecWSActive(wsKind)
		publishWSEvent(ctx, "ws_disconnect", conversationID, info, closeReason)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishWSEvent(ctx, "ws_error", conversationID, info, closeReason)
			}
			return
		}
	}
}

func (h *ConversationWebSocketHandler) authenticate(c *gin.Context) (uuid.UUID, error) {
	token, ok := auth.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		return uuid.Nil, auth.ErrInvalidToken
	}
	identity, err := h.verifier.Verify(token)
	if err != nil {
		return uuid.Nil, err
	}
	user, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}
