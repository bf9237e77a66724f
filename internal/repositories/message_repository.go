package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"holiday-service/internal/models"
)

// MessageRepository defines interactions for conversation messages.
type MessageRepository interface {
	Create(ctx context.Context, msg models.Message) (models.Message, error)
	ListForConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID uuid.UUID, readerID uuid.UUID) (int64, error)
	DeleteForConversation(ctx context.Context, conversationID uuid.UUID) error
}

const messageColumns = `id, conversation_id, sender_id, kind, content, read, moderation_status, moderation_category, created_at`

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	q sqlx.ExtContext
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(q sqlx.ExtContext) *MessageRepo {
	return &MessageRepo{q: q}
}

// Create stores a message.
func (r *MessageRepo) Create(ctx context.Context, msg models.Message) (models.Message, error) {
	var out models.Message
	err := sqlx.GetContext(ctx, r.q, &out, `INSERT INTO messages (conversation_id, sender_id, kind, content, read, moderation_status, moderation_category, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+messageColumns,
		msg.ConversationID, msg.SenderID, msg.Kind, msg.Content, msg.Read, msg.ModerationStatus, msg.ModerationCategory, msg.CreatedAt)
	return out, err
}

// ListForConversation returns messages ordered by creation.
func (r *MessageRepo) ListForConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var msgs []models.Message
	err := sqlx.SelectContext(ctx, r.q, &msgs, `SELECT `+messageColumns+` FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC`, conversationID)
	return msgs, err
}

// MarkRead flips read on every unread message authored by the other participant.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID uuid.UUID, readerID uuid.UUID) (int64, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE messages SET read = TRUE WHERE conversation_id=$1 AND sender_id<>$2 AND read = FALSE`, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteForConversation removes every message of the conversation.
func (r *MessageRepo) DeleteForConversation(ctx context.Context, conversationID uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM messages WHERE conversation_id=$1`, conversationID)
	return err
}
