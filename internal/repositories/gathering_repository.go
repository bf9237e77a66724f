package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"holiday-service/internal/models"
)

// GatheringRepository abstracts gathering persistence.
type GatheringRepository interface {
	CreateGathering(ctx context.Context, ownerID uuid.UUID, name, date string, memberIDs []uuid.UUID) (models.Gathering, error)
	ListGatheringsForUser(ctx context.Context, userID uuid.UUID) ([]models.Gathering, error)
	ListMembers(ctx context.Context, gatheringID uuid.UUID) ([]uuid.UUID, error)
	IsMember(ctx context.Context, gatheringID uuid.UUID, userID uuid.UUID) (bool, error)
	GetGathering(ctx context.Context, gatheringID uuid.UUID) (models.Gathering, error)
	RemoveMemberFromOthers(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// GatheringRepo is a sqlx implementation of GatheringRepository.
type GatheringRepo struct {
	q sqlx.ExtContext
}

// NewGatheringRepo constructs a GatheringRepo.
func NewGatheringRepo(q sqlx.ExtContext) *GatheringRepo {
	return &GatheringRepo{q: q}
}

// CreateGathering creates a gathering and its members. Callers run it inside
// WithinTx so the parent and member rows land together.
func (r *GatheringRepo) CreateGathering(ctx context.Context, ownerID uuid.UUID, name, date string, memberIDs []uuid.UUID) (models.Gathering, error) {
	var g models.Gathering
	if err := sqlx.GetContext(ctx, r.q, &g, `INSERT INTO gatherings (name, owner_id, event_date) VALUES ($1, $2, $3)
        RETURNING id, name, owner_id, event_date, created_at`, name, ownerID, date); err != nil {
		return models.Gathering{}, err
	}

	// ensure owner present and dedupe members
	memberSet := map[uuid.UUID]struct{}{ownerID: {}}
	for _, id := range memberIDs {
		memberSet[id] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(memberSet))
	for id := range memberSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if _, err := r.q.ExecContext(ctx, `INSERT INTO gathering_members (gathering_id, user_id) VALUES ($1, $2)`, g.ID, id); err != nil {
			return models.Gathering{}, err
		}
	}
	return g, nil
}

// ListGatheringsForUser returns gatherings that include the user.
func (r *GatheringRepo) ListGatheringsForUser(ctx context.Context, userID uuid.UUID) ([]models.Gathering, error) {
	var out []models.Gathering
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT g.id, g.name, g.owner_id, g.event_date, g.created_at
        FROM gatherings g INNER JOIN gathering_members gm ON gm.gathering_id = g.id
        WHERE gm.user_id=$1 ORDER BY g.created_at DESC`, userID)
	return out, err
}

// ListMembers returns the member ids of a gathering.
func (r *GatheringRepo) ListMembers(ctx context.Context, gatheringID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT user_id FROM gathering_members WHERE gathering_id=$1`, gatheringID)
	return out, err
}

// IsMember checks membership.
func (r *GatheringRepo) IsMember(ctx context.Context, gatheringID uuid.UUID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, r.q, &exists, `SELECT EXISTS(SELECT 1 FROM gathering_members WHERE gathering_id=$1 AND user_id=$2)`, gatheringID, userID)
	return exists, err
}

// GetGathering fetches a single gathering.
func (r *GatheringRepo) GetGathering(ctx context.Context, gatheringID uuid.UUID) (models.Gathering, error) {
	var g models.Gathering
	err := sqlx.GetContext(ctx, r.q, &g, `SELECT id, name, owner_id, event_date, created_at FROM gatherings WHERE id=$1`, gatheringID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Gathering{}, ErrNotFound
	}
	return g, err
}

// RemoveMemberFromOthers strips the user from gatherings owned by someone else.
func (r *GatheringRepo) RemoveMemberFromOthers(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM gathering_members gm USING gatherings g
        WHERE gm.gathering_id = g.id AND gm.user_id=$1 AND g.owner_id<>$1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteOwnedBy removes the gatherings the user owns along with their members.
func (r *GatheringRepo) DeleteOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM gathering_members WHERE gathering_id IN (SELECT id FROM gatherings WHERE owner_id=$1)`, ownerID); err != nil {
		return 0, err
	}
	res, err := r.q.ExecContext(ctx, `DELETE FROM gatherings WHERE owner_id=$1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
