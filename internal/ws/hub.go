package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"holiday-service/internal/models"
	"holiday-service/internal/observability"
)

const (
	wsKind       = "conversation"
	wsRoutingKey = "ws_events.conversations"
	writeTimeout = 5 * time.Second
	sendBuffer   = 32
)

// client owns one connection. A single writer goroutine drains send, so
// gorilla's one-writer rule holds and a slow peer never stalls a broadcast.
type client struct {
	conn *websocket.Conn
	info ConnInfo
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub keeps the websocket subscribers of each conversation. Delivery is best
// effort: a failed write or a full send buffer drops the subscriber.
type Hub struct {
	rooms map[uuid.UUID]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*websocket.Conn]*client)}
}

// Add subscribes conn to a conversation and starts its writer.
func (h *Hub) Add(conversationID uuid.UUID, conn *websocket.Conn, info ConnInfo) {
	c := &client{conn: conn, info: info, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*websocket.Conn]*client)
	}
	if prev, ok := h.rooms[conversationID][conn]; ok {
		prev.close()
	}
	h.rooms[conversationID][conn] = c
	h.mu.Unlock()

	if conn != nil {
		go h.writeLoop(conversationID, c)
	}
}

// Remove unsubscribes conn, stops its writer and drops empty rooms.
func (h *Hub) Remove(conversationID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[conversationID]
	if !ok {
		return
	}
	if c, ok := clients[conn]; ok {
		c.close()
		delete(clients, conn)
	}
	if len(clients) == 0 {
		delete(h.rooms, conversationID)
	}
}

// Subscribers reports how many connections watch a conversation.
func (h *Hub) Subscribers(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// BroadcastConversationEvent queues event for every subscriber of the
// conversation and returns without waiting for any write.
func (h *Hub) BroadcastConversationEvent(conversationID uuid.UUID, event models.ConversationEvent) {
	if h.Subscribers(conversationID) == 0 {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("conversation_id", conversationID.String()).Msg("ws: encode event failed")
		return
	}

	var slow []*client
	h.mu.RLock()
	for _, c := range h.rooms[conversationID] {
		if c.conn == nil {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.drop(conversationID, c, "send buffer full")
	}
	observability.IncWSEvent(wsKind, event.Type)
}

func (h *Hub) writeLoop(conversationID uuid.UUID, c *client) {
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(conversationID, c, err.Error())
			return
		}
	}
}

func (h *Hub) drop(conversationID uuid.UUID, c *client, reason string) {
	log.Warn().
		Str("conversation_id", conversationID.String()).
		Str("conn_id", c.info.ConnID).
		Str("reason", reason).
		Msg("websocket subscriber dropped")
	c.conn.Close()
	h.Remove(conversationID, c.conn)
	publishWSEvent(context.Background(), "ws_error", conversationID, c.info, reason)
}

// publishWSEvent emits a connection lifecycle event on the event bus.
func publishWSEvent(ctx context.Context, name string, conversationID uuid.UUID, info ConnInfo, reason string) {
	var durationMS int64
	if name != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        wsKind,
			"resource_id": conversationID,
			"event":       name,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	err := observability.PublishEvent(ctx, wsRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		RequestID: info.RequestID,
		TraceID:   info.TraceID,
		Payload:   payload,
	})
	if err != nil {
		log.Debug().Err(err).Str("event", name).Msg("ws: publish lifecycle event failed")
	}
	observability.IncWSEvent(wsKind, name)
}
