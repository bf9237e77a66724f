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

// ConnectionRepository abstracts invitation persistence.
type ConnectionRepository interface {
	Create(ctx context.Context, senderID, recipientID uuid.UUID, date string, at time.Time) (models.Connection, error)
	Get(ctx context.Context, id uuid.UUID) (models.Connection, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (models.Connection, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Connection, error)
	Between(ctx context.Context, userID, otherID uuid.UUID) ([]models.Connection, error)
	HasAccepted(ctx context.Context, userID, otherID uuid.UUID) (bool, error)
	AcceptedCounterparts(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

const connectionColumns = `id, sender_id, recipient_id, requested_date, status, created_at, responded_at`

// ConnectionRepo is a sqlx implementation of ConnectionRepository.
type ConnectionRepo struct {
	q sqlx.ExtContext
}

// NewConnectionRepo constructs a ConnectionRepo.
func NewConnectionRepo(q sqlx.ExtContext) *ConnectionRepo {
	return &ConnectionRepo{q: q}
}

// Create inserts a pending edge. A second edge for the same ordered pair yields ErrDuplicate.
func (r *ConnectionRepo) Create(ctx context.Context, senderID, recipientID uuid.UUID, date string, at time.Time) (models.Connection, error) {
	var conn models.Connection
	err := sqlx.GetContext(ctx, r.q, &conn, `INSERT INTO connections (sender_id, recipient_id, requested_date, status, created_at)
        VALUES ($1, $2, $3, 'pending', $4)
        RETURNING `+connectionColumns, senderID, recipientID, date, at)
	if isUniqueViolation(err, "connections_pair_uq") {
		return models.Connection{}, ErrDuplicate
	}
	return conn, err
}

// Get fetches a connection by id.
func (r *ConnectionRepo) Get(ctx context.Context, id uuid.UUID) (models.Connection, error) {
	return r.get(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id=$1`, id)
}

// GetForUpdate fetches and row-locks a connection for the rest of the transaction.
func (r *ConnectionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (models.Connection, error) {
	return r.get(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id=$1 FOR UPDATE`, id)
}

func (r *ConnectionRepo) get(ctx context.Context, query string, id uuid.UUID) (models.Connection, error) {
	var conn models.Connection
	err := sqlx.GetContext(ctx, r.q, &conn, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Connection{}, ErrNotFound
	}
	return conn, err
}

// SetStatus records the recipient's response.
func (r *ConnectionRepo) SetStatus(ctx context.Context, id uuid.UUID, status models.ConnectionStatus, at time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE connections SET status=$2, responded_at=$3 WHERE id=$1`, id, status, at)
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

// Delete removes a connection.
func (r *ConnectionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM connections WHERE id=$1`, id)
	return err
}

// ListForUser returns every edge the user sent or received, newest first.
func (r *ConnectionRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Connection, error) {
	var out []models.Connection
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+connectionColumns+` FROM connections
        WHERE sender_id=$1 OR recipient_id=$1
        ORDER BY created_at DESC`, userID)
	return out, err
}

// Between returns the edges between two users in both directions.
func (r *ConnectionRepo) Between(ctx context.Context, userID, otherID uuid.UUID) ([]models.Connection, error) {
	var out []models.Connection
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+connectionColumns+` FROM connections
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)`, userID, otherID)
	return out, err
}

// HasAccepted reports whether an accepted edge exists in either direction.
func (r *ConnectionRepo) HasAccepted(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS(SELECT 1 FROM connections
        WHERE status='accepted'
        AND ((sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)))`, userID, otherID)
	return exists, err
}

// AcceptedCounterparts lists every user matched with userID.
func (r *ConnectionRepo) AcceptedCounterparts(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT DISTINCT CASE WHEN sender_id=$1 THEN recipient_id ELSE sender_id END
        FROM connections
        WHERE status='accepted' AND (sender_id=$1 OR recipient_id=$1)`, userID)
	return out, err
}

// DeleteForUser removes every edge the user sent or received.
func (r *ConnectionRepo) DeleteForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM connections WHERE sender_id=$1 OR recipient_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
