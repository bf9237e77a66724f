// Package jobs runs durable background work on River.
package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/zerolog/log"
)

const deleteAccountMaxAttempts = 10

// DeleteAccountArgs enqueues the deletion cascade for one user.
type DeleteAccountArgs struct {
	UserID uuid.UUID `json:"user_id"`
}

func (DeleteAccountArgs) Kind() string { return "delete_account" }

// InsertOpts dedupes pending deletions of the same user.
func (DeleteAccountArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: deleteAccountMaxAttempts,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}
}

// AccountDeleter is the cascade the worker runs.
type AccountDeleter interface {
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
}

// DeleteAccountWorker runs the cascade; River retries it on error.
type DeleteAccountWorker struct {
	river.WorkerDefaults[DeleteAccountArgs]
	deleter AccountDeleter
}

func NewDeleteAccountWorker(deleter AccountDeleter) *DeleteAccountWorker {
	return &DeleteAccountWorker{deleter: deleter}
}

func (w *DeleteAccountWorker) Work(ctx context.Context, job *river.Job[DeleteAccountArgs]) error {
	logger := log.With().
		Int64("job_id", job.ID).
		Int("attempt", job.Attempt).
		Str("user_id", job.Args.UserID.String()).
		Logger()

	if job.Args.UserID == uuid.Nil {
		logger.Error().Msg("delete_account job without user id, cancelling")
		return river.JobCancel(fmt.Errorf("missing user id"))
	}
	if err := w.deleter.DeleteAccount(ctx, job.Args.UserID); err != nil {
		logger.Warn().Err(err).Msg("delete_account attempt failed, will retry")
		return err
	}
	logger.Info().Msg("delete_account job completed")
	return nil
}

// Queue owns the River client and its pgx pool.
type Queue struct {
	client *river.Client[pgx.Tx]
	pool   *pgxpool.Pool
}

// NewQueue connects to Postgres and builds a client that works deletion jobs.
func NewQueue(ctx context.Context, databaseURL string, maxWorkers int, deleter AccountDeleter) (*Queue, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	workers := river.NewWorkers()
	river.AddWorker(workers, NewDeleteAccountWorker(deleter))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}
	return &Queue{client: client, pool: pool}, nil
}

// Start starts the job workers.
func (q *Queue) Start(ctx context.Context) error {
	return q.client.Start(ctx)
}

// Stop waits for running jobs and releases the pool.
func (q *Queue) Stop(ctx context.Context) error {
	err := q.client.Stop(ctx)
	q.pool.Close()
	return err
}

// EnqueueAccountDeletion schedules the cascade for userID.
func (q *Queue) EnqueueAccountDeletion(ctx context.Context, userID uuid.UUID) error {
	if _, err := q.client.Insert(ctx, DeleteAccountArgs{UserID: userID}, nil); err != nil {
		return fmt.Errorf("failed to queue account deletion: %w", err)
	}
	log.Info().Str("user_id", userID.String()).Msg("account deletion queued")
	return nil
}

// Migrate applies River's own schema.
func Migrate(ctx context.Context, databaseURL string) error {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	if err != nil {
		return fmt.Errorf("river migrate: %w", err)
	}
	log.Info().Int("versions", len(res.Versions)).Msg("river migrations applied")
	return nil
}
