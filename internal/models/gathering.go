package models

import (
	"time"

	"github.com/google/uuid"
)

// Gathering is a host-owned event with collaborating members.
type Gathering struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Date      string    `db:"event_date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
