package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"holiday-service/internal/models"
)

// BannedWordRepo stores moderation rules and serves them to the moderation gate.
type BannedWordRepo struct {
	q sqlx.ExtContext
}

// NewBannedWordRepo constructs a BannedWordRepo.
func NewBannedWordRepo(q sqlx.ExtContext) *BannedWordRepo {
	return &BannedWordRepo{q: q}
}

// Rules returns every rule in insertion order, which is also match priority.
func (r *BannedWordRepo) Rules(ctx context.Context) ([]models.BannedWord, error) {
	var out []models.BannedWord
	err := sqlx.SelectContext(ctx, r.q, &out, `SELECT id, pattern, category, is_regex FROM banned_words ORDER BY id ASC`)
	return out, err
}

// Upsert inserts a rule or updates the category and regex flag of an existing pattern.
func (r *BannedWordRepo) Upsert(ctx context.Context, w models.BannedWord) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO banned_words (pattern, category, is_regex) VALUES ($1, $2, $3)
        ON CONFLICT (pattern) DO UPDATE SET category = EXCLUDED.category, is_regex = EXCLUDED.is_regex`,
		w.Pattern, w.Category, w.IsRegex)
	return err
}
