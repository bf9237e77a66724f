package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"holiday-service/internal/models"
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
	GetByExternalRef(ctx context.Context, ref string) (models.User, error)
	GetByStableID(ctx context.Context, stableID string) (models.User, error)
	Create(ctx context.Context, identity models.Identity) (models.User, error)
	UpdateIdentity(ctx context.Context, id uuid.UUID, identity models.Identity) (models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

const userColumns = `id, external_ref, stable_id, email, name, avatar_url, created_at`

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	q sqlx.ExtContext
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(q sqlx.ExtContext) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.q, &user, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// GetByID fetches a user by internal id.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

// ListByIDs returns the users that still exist among ids, in no particular order.
func (r *UserRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var out []models.User
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, uuidStrings(ids))
	return out, err
}

// GetByExternalRef fetches a user by the provider token identifier.
func (r *UserRepo) GetByExternalRef(ctx context.Context, ref string) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE external_ref=$1`, ref)
}

// GetByStableID fetches a user by the provider's stable account id.
func (r *UserRepo) GetByStableID(ctx context.Context, stableID string) (models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE stable_id=$1`, stableID)
}

// Create inserts a user. Two concurrent first contacts for the same stable id
// converge on one row.
func (r *UserRepo) Create(ctx context.Context, identity models.Identity) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.q, &user, `INSERT INTO users (external_ref, stable_id, email, name, avatar_url)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (stable_id) DO UPDATE SET external_ref = EXCLUDED.external_ref
        RETURNING `+userColumns,
		identity.ExternalRef, identity.StableID, nullString(identity.Email), nullString(identity.Name), nullString(identity.AvatarURL))
	if isUniqueViolation(err, "users_external_ref_key") {
		return models.User{}, ErrDuplicate
	}
	return user, err
}

// UpdateIdentity refreshes the external reference and optional provider fields.
func (r *UserRepo) UpdateIdentity(ctx context.Context, id uuid.UUID, identity models.Identity) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, r.q, &user, `UPDATE users SET
            external_ref = $2,
            email = COALESCE($3, email),
            name = COALESCE($4, name),
            avatar_url = COALESCE($5, avatar_url)
        WHERE id=$1
        RETURNING `+userColumns,
		id, identity.ExternalRef, nullString(identity.Email), nullString(identity.Name), nullString(identity.AvatarURL))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// Delete removes the user; deleting an absent user is not an error.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
