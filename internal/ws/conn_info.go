package ws

import (
	"time"

	"github.com/google/uuid"
)

// ConnInfo identifies one subscriber for ws lifecycle events.
type ConnInfo struct {
	ConnID      string
	UserID      uuid.UUID
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	return uuid.NewString()
}
