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

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (models.Profile, error)
	ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.Profile, error)
	Browse(ctx context.Context, viewerID uuid.UUID, filter models.BrowseFilter) ([]models.Profile, error)
	Upsert(ctx context.Context, profile models.Profile) (models.Profile, error)
	EnsureDraft(ctx context.Context, draft models.Profile) (models.Profile, error)
	AddPhoto(ctx context.Context, userID uuid.UUID, url string, at time.Time) (models.Profile, error)
	SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

const profileColumns = `user_id, role, hosting_intent, guest_intent, offered_dates, desired_dates,
        locale, name, age, city, bio, languages, dietary_tags, photo_url, photos,
        surname, phone, address, is_visible, verified, created_at, updated_at`

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	q sqlx.ExtContext
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(q sqlx.ExtContext) *ProfileRepo {
	return &ProfileRepo{q: q}
}

// Get fetches the profile owned by userID.
func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	var p models.Profile
	err := sqlx.GetContext(ctx, r.q, &p, `SELECT `+profileColumns+` FROM profiles WHERE user_id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound
	}
	return p, err
}

// ListByUserIDs returns the profiles that exist for the given users, in no particular order.
func (r *ProfileRepo) ListByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return []models.Profile{}, nil
	}
	var out []models.Profile
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1::uuid[])`, uuidStrings(userIDs))
	return out, err
}

// Browse lists visible profiles plus the viewer's own, whatever its visibility.
func (r *ProfileRepo) Browse(ctx context.Context, viewerID uuid.UUID, filter models.BrowseFilter) ([]models.Profile, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + profileColumns + ` FROM profiles
        WHERE (is_visible = TRUE OR user_id = $1)
        AND ($2::text = '' OR lower(city) = lower($2::text))
        AND ($3::text = '' OR role = $3::text OR role = 'both')
        ORDER BY updated_at DESC
        LIMIT $4 OFFSET $5`
	var out []models.Profile
	err := sqlx.SelectContext(ctx, r.q, &out, query, viewerID, filter.City, string(filter.Role), limit, offset)
	return out, err
}

// Upsert writes the full profile, keeping collaborator-owned fields (photos, verified).
func (r *ProfileRepo) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	var out models.Profile
	err := sqlx.GetContext(ctx, r.q, &out, `INSERT INTO profiles (user_id, role, hosting_intent, guest_intent,
            offered_dates, desired_dates, locale, name, age, city, bio, languages, dietary_tags,
            surname, phone, address, is_visible, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)
        ON CONFLICT (user_id) DO UPDATE SET
            role = EXCLUDED.role,
            hosting_intent = EXCLUDED.hosting_intent,
            guest_intent = EXCLUDED.guest_intent,
            offered_dates = EXCLUDED.offered_dates,
            desired_dates = EXCLUDED.desired_dates,
            locale = EXCLUDED.locale,
            name = EXCLUDED.name,
            age = EXCLUDED.age,
            city = EXCLUDED.city,
            bio = EXCLUDED.bio,
            languages = EXCLUDED.languages,
            dietary_tags = EXCLUDED.dietary_tags,
            surname = EXCLUDED.surname,
            phone = EXCLUDED.phone,
            address = EXCLUDED.address,
            is_visible = EXCLUDED.is_visible,
            updated_at = EXCLUDED.updated_at
        RETURNING `+profileColumns,
		p.UserID, p.Role, p.HostingIntent, p.GuestIntent, p.OfferedDates, p.DesiredDates,
		p.Locale, p.Name, p.Age, p.City, p.Bio, p.Languages, p.DietaryTags,
		p.Surname, p.Phone, p.Address, p.IsVisible, p.UpdatedAt)
	return out, err
}

// EnsureDraft inserts the draft unless a profile already exists, and returns the stored profile.
func (r *ProfileRepo) EnsureDraft(ctx context.Context, d models.Profile) (models.Profile, error) {
	_, err := r.q.ExecContext(ctx, `INSERT INTO profiles (user_id, role, hosting_intent, guest_intent, is_visible, created_at, updated_at)
        VALUES ($1, $2, $3, $4, FALSE, $5, $5)
        ON CONFLICT (user_id) DO NOTHING`, d.UserID, d.Role, d.HostingIntent, d.GuestIntent, d.CreatedAt)
	if err != nil {
		return models.Profile{}, err
	}
	return r.Get(ctx, d.UserID)
}

// AddPhoto appends a photo and makes it the primary photo when none is set.
func (r *ProfileRepo) AddPhoto(ctx context.Context, userID uuid.UUID, url string, at time.Time) (models.Profile, error) {
	var out models.Profile
	err := sqlx.GetContext(ctx, r.q, &out, `UPDATE profiles SET
            photos = array_append(photos, $2),
            photo_url = COALESCE(photo_url, $2),
            updated_at = $3
        WHERE user_id=$1
        RETURNING `+profileColumns, userID, url, at)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrNotFound
	}
	return out, err
}

// SetVerified writes the verification flag owned by the verification collaborator.
func (r *ProfileRepo) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	res, err := r.q.ExecContext(ctx, `UPDATE profiles SET verified=$2 WHERE user_id=$1`, userID, verified)
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

// Delete removes the profile; deleting an absent profile is not an error.
func (r *ProfileRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM profiles WHERE user_id=$1`, userID)
	return err
}
