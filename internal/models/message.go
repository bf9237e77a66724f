package models

import (
	"time"

	"github.com/google/uuid"
)

type ModerationStatus string

const (
	ModerationPending ModerationStatus = "pending"
	ModerationClean   ModerationStatus = "clean"
	ModerationFlagged ModerationStatus = "flagged"
	ModerationBlocked ModerationStatus = "blocked"
)

type MessageKind string

const (
	MessageText   MessageKind = "text"
	MessageSystem MessageKind = "system"
)

// Message represents a conversation message. Read means read by the non-sender.
type Message struct {
	ID                 uuid.UUID        `db:"id" json:"id"`
	ConversationID     uuid.UUID        `db:"conversation_id" json:"conversation_id"`
	SenderID           uuid.UUID        `db:"sender_id" json:"sender_id"`
	Kind               MessageKind      `db:"kind" json:"kind"`
	Content            string           `db:"content" json:"content"`
	Read               bool             `db:"read" json:"read"`
	ModerationStatus   ModerationStatus `db:"moderation_status" json:"moderation_status"`
	ModerationCategory *string          `db:"moderation_category" json:"moderation_category,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
}

// ConversationEvent is broadcasted through websockets.
type ConversationEvent struct {
	Type           string             `json:"type"`
	ConversationID uuid.UUID          `json:"conversation_id"`
	Message        *Message           `json:"message,omitempty"`
	ReaderID       uuid.UUID          `json:"reader_id,omitempty"`
	ReadCount      int                `json:"read_count,omitempty"`
	Status         ConversationStatus `json:"status,omitempty"`
}
