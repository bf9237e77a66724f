package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"holiday-service/internal/models"
)

// BlockRepository persists blocks and reports.
type BlockRepository interface {
	Create(ctx context.Context, blockerID, blockedID uuid.UUID) error
	Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error
	ExistsBetween(ctx context.Context, userID, otherID uuid.UUID) (bool, error)
	ListByBlocker(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error)
	CreateReport(ctx context.Context, report models.Report) (models.Report, error)
	DeleteForUser(ctx context.Context, userID uuid.UUID) error
}

// BlockRepo is a sqlx implementation of BlockRepository.
type BlockRepo struct {
	q sqlx.ExtContext
}

// NewBlockRepo constructs a BlockRepo.
func NewBlockRepo(q sqlx.ExtContext) *BlockRepo {
	return &BlockRepo{q: q}
}

// Create records a block; blocking twice is a no-op.
func (r *BlockRepo) Create(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO blocks (blocker_id, blocked_id) VALUES ($1, $2)
        ON CONFLICT (blocker_id, blocked_id) DO NOTHING`, blockerID, blockedID)
	return err
}

// Delete lifts a block.
func (r *BlockRepo) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM blocks WHERE blocker_id=$1 AND blocked_id=$2`, blockerID, blockedID)
	return err
}

// ExistsBetween reports a block in either direction.
func (r *BlockRepo) ExistsBetween(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS(SELECT 1 FROM blocks
        WHERE (blocker_id=$1 AND blocked_id=$2) OR (blocker_id=$2 AND blocked_id=$1))`, userID, otherID)
	return exists, err
}

// ListByBlocker returns the users blocked by blockerID.
func (r *BlockRepo) ListByBlocker(ctx context.Context, blockerID uuid.UUID) ([]models.Block, error) {
	var out []models.Block
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT blocker_id, blocked_id, created_at FROM blocks WHERE blocker_id=$1 ORDER BY created_at DESC`, blockerID)
	return out, err
}

// CreateReport stores a report.
func (r *BlockRepo) CreateReport(ctx context.Context, report models.Report) (models.Report, error) {
	var out models.Report
	err := sqlx.GetContext(ctx, r.q, &out, `INSERT INTO reports (reporter_id, reported_id, conversation_id, reason)
        VALUES ($1, $2, $3, $4)
        RETURNING id, reporter_id, reported_id, conversation_id, reason, created_at`,
		report.ReporterID, report.ReportedID, report.ConversationID, report.Reason)
	return out, err
}

// DeleteForUser removes blocks and reports involving the user in either role.
func (r *BlockRepo) DeleteForUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM blocks WHERE blocker_id=$1 OR blocked_id=$1`, userID); err != nil {
		return err
	}
	_, err := r.q.ExecContext(ctx, `DELETE FROM reports WHERE reporter_id=$1 OR reported_id=$1`, userID)
	return err
}
