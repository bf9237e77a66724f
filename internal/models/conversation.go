package models

import (
	"time"

	"github.com/google/uuid"
)

type ConversationStatus string

const (
	ConversationRequested ConversationStatus = "requested"
	ConversationAccepted  ConversationStatus = "accepted"
	ConversationDeclined  ConversationStatus = "declined"
	ConversationInvited   ConversationStatus = "invited"
	ConversationConfirmed ConversationStatus = "confirmed"
)

// Conversation is the messaging channel between exactly two users. Guest is
// whoever initiated contact; the roles never change after creation.
type Conversation struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	GuestID       uuid.UUID          `db:"guest_id" json:"guest_id"`
	HostID        uuid.UUID          `db:"host_id" json:"host_id"`
	Status        ConversationStatus `db:"status" json:"status"`
	LastMessageAt *time.Time         `db:"last_message_at" json:"last_message_at,omitempty"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
}

// HasParticipant checks whether the user belongs to the conversation.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.GuestID == userID || c.HostID == userID
}

// Counterpart returns the other participant.
func (c Conversation) Counterpart(userID uuid.UUID) uuid.UUID {
	if c.GuestID == userID {
		return c.HostID
	}
	return c.GuestID
}

// ActivityAt is the inbox ordering key.
func (c Conversation) ActivityAt() time.Time {
	if c.LastMessageAt != nil {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}

// InboxRow is one conversation as seen by a reader: its latest message and
// how many messages from the other participant are still unread.
type InboxRow struct {
	Conversation Conversation
	LastMessage  *Message
	UnreadCount  int
}

// InboxEntry provides the API view of a conversation for one participant.
type InboxEntry struct {
	Conversation Conversation  `json:"conversation"`
	Counterpart  PublicSummary `json:"counterpart"`
	LastMessage  *Message      `json:"last_message,omitempty"`
	UnreadCount  int           `json:"unread_count"`
}
