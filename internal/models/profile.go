package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Role string

const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
	RoleBoth  Role = "both"
)

type Intent string

const (
	IntentYes   Intent = "yes"
	IntentMaybe Intent = "maybe"
	IntentNo    Intent = "no"
)

func (i Intent) Valid() bool {
	switch i {
	case IntentYes, IntentMaybe, IntentNo:
		return true
	}
	return false
}

// DeriveRole computes the profile role from the hosting and guest intents.
func DeriveRole(hosting, guest Intent) Role {
	hosts := hosting == IntentYes || hosting == IntentMaybe
	joins := guest == IntentYes || guest == IntentMaybe
	switch {
	case hosts && joins:
		return RoleBoth
	case hosts:
		return RoleHost
	default:
		return RoleGuest
	}
}

// Profile is the one-per-user profile record. Surname, Phone and Address form
// the private field group and are only disclosed to the owner and matched users.
type Profile struct {
	UserID        uuid.UUID      `db:"user_id" json:"user_id"`
	Role          Role           `db:"role" json:"role"`
	HostingIntent Intent         `db:"hosting_intent" json:"hosting_intent"`
	GuestIntent   Intent         `db:"guest_intent" json:"guest_intent"`
	OfferedDates  pq.StringArray `db:"offered_dates" json:"offered_dates"`
	DesiredDates  pq.StringArray `db:"desired_dates" json:"desired_dates"`
	Locale        string         `db:"locale" json:"locale"`
	Name          string         `db:"name" json:"name"`
	Age           *int           `db:"age" json:"age,omitempty"`
	City          string         `db:"city" json:"city"`
	Bio           string         `db:"bio" json:"bio"`
	Languages     pq.StringArray `db:"languages" json:"languages"`
	DietaryTags   pq.StringArray `db:"dietary_tags" json:"dietary_tags"`
	PhotoURL      *string        `db:"photo_url" json:"photo_url,omitempty"`
	Photos        pq.StringArray `db:"photos" json:"photos"`

	Surname *string `db:"surname" json:"surname,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`

	IsVisible bool      `db:"is_visible" json:"is_visible"`
	Verified  bool      `db:"verified" json:"verified"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// IsDraft reports whether the profile was created as a side effect and has
// never been saved by its owner.
func (p Profile) IsDraft() bool {
	return !p.IsVisible
}

// NewDraftProfile builds the invisible placeholder profile used to hold
// collaborator-written data (photos) before onboarding completes.
func NewDraftProfile(userID uuid.UUID, now time.Time) Profile {
	return Profile{
		UserID:        userID,
		Role:          RoleGuest,
		HostingIntent: IntentNo,
		GuestIntent:   IntentYes,
		OfferedDates:  pq.StringArray{},
		DesiredDates:  pq.StringArray{},
		Languages:     pq.StringArray{},
		DietaryTags:   pq.StringArray{},
		Photos:        pq.StringArray{},
		IsVisible:     false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// PublicSummary is the subset of a profile shown next to connections and
// conversations. It never carries the private field group.
type PublicSummary struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	City      string    `json:"city"`
}

// Summary projects the public summary of the profile. The owner's provider
// fields fill in when the profile has no photo or no name yet.
func (p Profile) Summary(owner *User) PublicSummary {
	out := PublicSummary{UserID: p.UserID, Name: p.Name, AvatarURL: p.PhotoURL, City: p.City}
	if owner == nil {
		return out
	}
	fallback := owner.Summary()
	if out.AvatarURL == nil {
		out.AvatarURL = fallback.AvatarURL
	}
	if out.Name == "" {
		out.Name = fallback.Name
	}
	return out
}

// BrowseFilter narrows browse results.
type BrowseFilter struct {
	City   string
	Role   Role
	Limit  int
	Offset int
}
