package models

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// Connection is a directed, datestamped invitation from one user to another.
type Connection struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	SenderID    uuid.UUID        `db:"sender_id" json:"sender_id"`
	RecipientID uuid.UUID        `db:"recipient_id" json:"recipient_id"`
	Date        string           `db:"requested_date" json:"date"`
	Status      ConnectionStatus `db:"status" json:"status"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	RespondedAt *time.Time       `db:"responded_at" json:"responded_at,omitempty"`
}

// Counterpart returns the other user on the edge.
func (c Connection) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.SenderID == userID {
		return c.RecipientID
	}
	return c.SenderID
}

type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// ConnectionView is a connection enriched for one of its two users.
type ConnectionView struct {
	Connection
	Direction   Direction     `json:"direction"`
	Counterpart PublicSummary `json:"counterpart"`
}

// RelationshipStatus is the single logical relationship between two users.
type RelationshipStatus string

const (
	RelationshipMatched         RelationshipStatus = "matched"
	RelationshipPendingSent     RelationshipStatus = "pending_sent"
	RelationshipPendingReceived RelationshipStatus = "pending_received"
	RelationshipDeclinedByThem  RelationshipStatus = "declined_by_them"
	RelationshipDeclinedByMe    RelationshipStatus = "declined_by_me"
	RelationshipNone            RelationshipStatus = "none"
)
