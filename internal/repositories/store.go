package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Repos groups the repositories bound to one connection or transaction.
type Repos struct {
	Users         UserRepository
	Profiles      ProfileRepository
	Connections   ConnectionRepository
	Conversations ConversationRepository
	Messages      MessageRepository
	Blocks        BlockRepository
	Gatherings    GatheringRepository
}

// UnitOfWork hands out repositories, optionally scoped to a single transaction.
type UnitOfWork interface {
	Repos() Repos
	WithinTx(ctx context.Context, fn func(Repos) error) error
}

// Store is the sqlx-backed UnitOfWork.
type Store struct {
	db *sqlx.DB
}

// NewStore constructs a Store.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories running outside any transaction.
func (s *Store) Repos() Repos {
	return newRepos(s.db)
}

// WithinTx runs fn inside one transaction, committing only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(Repos) error) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("tx rollback failed")
			}
		}
	}()

	if err = fn(newRepos(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func newRepos(q sqlx.ExtContext) Repos {
	return Repos{
		Users:         &UserRepo{q: q},
		Profiles:      &ProfileRepo{q: q},
		Connections:   &ConnectionRepo{q: q},
		Conversations: &ConversationRepo{q: q},
		Messages:      &MessageRepo{q: q},
		Blocks:        &BlockRepo{q: q},
		Gatherings:    &GatheringRepo{q: q},
	}
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func uuidStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
