package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"holiday-service/internal/models"
)

// ConversationRepository abstracts conversation persistence.
type ConversationRepository interface {
	CreateIfAbsent(ctx context.Context, guestID, hostID uuid.UUID, status models.ConversationStatus, at time.Time) (models.Conversation, bool, error)
	Get(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (models.Conversation, error)
	GetByPair(ctx context.Context, userID, otherID uuid.UUID) (models.Conversation, error)
	IsParticipant(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	ListInbox(ctx context.Context, userID uuid.UUID) ([]models.InboxRow, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.ConversationStatus) error
	TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const conversationColumns = `id, guest_id, host_id, status, last_message_at, created_at`

// ConversationRepo is a sqlx implementation of ConversationRepository.
type ConversationRepo struct {
	q sqlx.ExtContext
}

// NewConversationRepo constructs a ConversationRepo.
func NewConversationRepo(q sqlx.ExtContext) *ConversationRepo {
	return &ConversationRepo{q: q}
}

// CreateIfAbsent creates the conversation for the unordered pair unless one
// exists. The boolean reports whether this call created it. The unique pair
// index makes concurrent callers converge on a single row.
func (r *ConversationRepo) CreateIfAbsent(ctx context.Context, guestID, hostID uuid.UUID, status models.ConversationStatus, at time.Time) (models.Conversation, bool, error) {
	if guestID == hostID {
		return models.Conversation{}, false, errors.New("cannot create conversation with self")
	}

	var conv models.Conversation
	err := sqlx.GetContext(ctx, r.q, &conv, `INSERT INTO conversations (guest_id, host_id, status, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (LEAST(guest_id, host_id), GREATEST(guest_id, host_id)) DO NOTHING
        RETURNING `+conversationColumns, guestID, hostID, status, at)
	if err == nil {
		return conv, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, false, err
	}

	conv, err = r.GetByPair(ctx, guestID, hostID)
	return conv, false, err
}

// Get fetches a conversation by id.
func (r *ConversationRepo) Get(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	return r.getOne(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1`, id)
}

// GetForUpdate fetches and row-locks a conversation for the rest of the transaction.
func (r *ConversationRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Conversation, error) {
	return r.getOne(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id=$1 FOR UPDATE`, id)
}

// GetByPair fetches the conversation between two users regardless of roles.
func (r *ConversationRepo) GetByPair(ctx context.Context, userID, otherID uuid.UUID) (models.Conversation, error) {
	return r.getOne(ctx, `SELECT `+conversationColumns+` FROM conversations
        WHERE LEAST(guest_id, host_id) = LEAST($1::uuid, $2::uuid)
        AND GREATEST(guest_id, host_id) = GREATEST($1::uuid, $2::uuid)`, userID, otherID)
}

func (r *ConversationRepo) getOne(ctx context.Context, query string, args ...any) (models.Conversation, error) {
	var conv models.Conversation
	err := sqlx.GetContext(ctx, r.q, &conv, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrNotFound
	}
	return conv, err
}

// IsParticipant checks whether a user belongs to the conversation.
func (r *ConversationRepo) IsParticipant(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS(SELECT 1 FROM conversations WHERE id=$1 AND (guest_id=$2 OR host_id=$2))`, id, userID)
	return exists, err
}

// ListForUser returns the user's conversations, most recent activity first.
func (r *ConversationRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var out []models.Conversation
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+conversationColumns+` FROM conversations
        WHERE guest_id=$1 OR host_id=$1
        ORDER BY COALESCE(last_message_at, created_at) DESC`, userID)
	return out, err
}

type inboxScan struct {
	models.Conversation
	LastID         *uuid.UUID               `db:"lm_id"`
	LastSenderID   *uuid.UUID               `db:"lm_sender_id"`
	LastKind       *models.MessageKind      `db:"lm_kind"`
	LastContent    *string                  `db:"lm_content"`
	LastRead       *bool                    `db:"lm_read"`
	LastModeration *models.ModerationStatus `db:"lm_moderation_status"`
	LastCategory   *string                  `db:"lm_moderation_category"`
	LastCreatedAt  *time.Time               `db:"lm_created_at"`
	UnreadCount    int                      `db:"unread_count"`
}

func (s inboxScan) row() models.InboxRow {
	out := models.InboxRow{Conversation: s.Conversation, UnreadCount: s.UnreadCount}
	if s.LastID == nil {
		return out
	}
	msg := &models.Message{ID: *s.LastID, ConversationID: s.Conversation.ID, ModerationCategory: s.LastCategory}
	if s.LastSenderID != nil {
		msg.SenderID = *s.LastSenderID
	}
	if s.LastKind != nil {
		msg.Kind = *s.LastKind
	}
	if s.LastContent != nil {
		msg.Content = *s.LastContent
	}
	if s.LastRead != nil {
		msg.Read = *s.LastRead
	}
	if s.LastModeration != nil {
		msg.ModerationStatus = *s.LastModeration
	}
	if s.LastCreatedAt != nil {
		msg.CreatedAt = *s.LastCreatedAt
	}
	out.LastMessage = msg
	return out
}

// ListInbox returns the user's conversations with the latest message and the
// unread count of each, most recent activity first, in a single round trip.
func (r *ConversationRepo) ListInbox(ctx context.Context, userID uuid.UUID) ([]models.InboxRow, error) {
	var rows []inboxScan
	err := sqlx.SelectContext(ctx, r.q, &rows, `SELECT c.id, c.guest_id, c.host_id, c.status, c.last_message_at, c.created_at,
            lm.id AS lm_id, lm.sender_id AS lm_sender_id, lm.kind AS lm_kind, lm.content AS lm_content,
            lm.read AS lm_read, lm.moderation_status AS lm_moderation_status,
            lm.moderation_category AS lm_moderation_category, lm.created_at AS lm_created_at,
            unread.n AS unread_count
        FROM conversations c
        LEFT JOIN LATERAL (
            SELECT m.id, m.sender_id, m.kind, m.content, m.read, m.moderation_status, m.moderation_category, m.created_at
            FROM messages m
            WHERE m.conversation_id = c.id
            ORDER BY m.created_at DESC
            LIMIT 1
        ) lm ON TRUE
        CROSS JOIN LATERAL (
            SELECT COUNT(*)::int AS n
            FROM messages m
            WHERE m.conversation_id = c.id AND m.sender_id <> $1 AND m.read = FALSE
        ) unread
        WHERE c.guest_id = $1 OR c.host_id = $1
        ORDER BY COALESCE(c.last_message_at, c.created_at) DESC`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.InboxRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.row())
	}
	return out, nil
}

// SetStatus moves the conversation to a new status.
func (r *ConversationRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.ConversationStatus) error {
	return r.execOne(ctx, `UPDATE conversations SET status=$2 WHERE id=$1`, id, status)
}

// TouchLastMessage records the latest message time used for inbox ordering.
func (r *ConversationRepo) TouchLastMessage(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.execOne(ctx, `UPDATE conversations SET last_message_at=$2 WHERE id=$1`, id, at)
}

func (r *ConversationRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a conversation; deleting an absent conversation is not an error.
func (r *ConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM conversations WHERE id=$1`, id)
	return err
}
