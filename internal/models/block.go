package models

import (
	"time"

	"github.com/google/uuid"
)

// Block is a directed blocker -> blocked edge; it is checked in both directions.
type Block struct {
	BlockerID uuid.UUID `db:"blocker_id" json:"blocker_id"`
	BlockedID uuid.UUID `db:"blocked_id" json:"blocked_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Report is a user report kept for the admin surface.
type Report struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ReporterID     uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	ReportedID     uuid.UUID  `db:"reported_id" json:"reported_id"`
	ConversationID *uuid.UUID `db:"conversation_id" json:"conversation_id,omitempty"`
	Reason         string     `db:"reason" json:"reason"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
