package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the internal identity mapped from the identity provider.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ExternalRef string    `db:"external_ref" json:"-"`
	StableID    string    `db:"stable_id" json:"-"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Name        *string   `db:"name" json:"name,omitempty"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Summary builds the public summary from the identity provider fields alone.
func (u User) Summary() PublicSummary {
	out := PublicSummary{UserID: u.ID, AvatarURL: u.AvatarURL}
	if u.Name != nil {
		out.Name = *u.Name
	}
	return out
}

// Identity is the caller as asserted by the identity provider.
type Identity struct {
	ExternalRef string
	StableID    string
	Email       string
	Name        string
	AvatarURL   string
}
