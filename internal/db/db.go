package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connect opens the Postgres connection pool.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	return db, nil
}

// ConnectAndMigrate opens the pool and applies the schema.
func ConnectAndMigrate(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        external_ref TEXT NOT NULL UNIQUE,
        stable_id TEXT NOT NULL UNIQUE,
        email TEXT,
        name TEXT,
        avatar_url TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS profiles (
        user_id UUID PRIMARY KEY REFERENCES users(id),
        role TEXT NOT NULL,
        hosting_intent TEXT NOT NULL,
        guest_intent TEXT NOT NULL,
        offered_dates TEXT[] NOT NULL DEFAULT '{}',
        desired_dates TEXT[] NOT NULL DEFAULT '{}',
        locale TEXT NOT NULL DEFAULT '',
        name TEXT NOT NULL DEFAULT '',
        age INT,
        city TEXT NOT NULL DEFAULT '',
        bio TEXT NOT NULL DEFAULT '',
        languages TEXT[] NOT NULL DEFAULT '{}',
        dietary_tags TEXT[] NOT NULL DEFAULT '{}',
        photo_url TEXT,
        photos TEXT[] NOT NULL DEFAULT '{}',
        surname TEXT,
        phone TEXT,
        address TEXT,
        is_visible BOOLEAN NOT NULL DEFAULT FALSE,
        verified BOOLEAN NOT NULL DEFAULT FALSE,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS profiles_visible_city_idx ON profiles (is_visible, city);`,
	`CREATE TABLE IF NOT EXISTS connections (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        sender_id UUID NOT NULL REFERENCES users(id),
        recipient_id UUID NOT NULL REFERENCES users(id),
        requested_date TEXT NOT NULL,
        status TEXT NOT NULL CHECK (status IN ('pending', 'accepted', 'declined')),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        responded_at TIMESTAMPTZ,
        CONSTRAINT connections_pair_uq UNIQUE (sender_id, recipient_id),
        CONSTRAINT connections_no_self CHECK (sender_id <> recipient_id)
    );`,
	`CREATE INDEX IF NOT EXISTS connections_recipient_idx ON connections (recipient_id);`,
	`CREATE TABLE IF NOT EXISTS conversations (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        guest_id UUID NOT NULL REFERENCES users(id),
        host_id UUID NOT NULL REFERENCES users(id),
        status TEXT NOT NULL CHECK (status IN ('requested', 'accepted', 'declined', 'invited', 'confirmed')),
        last_message_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        CHECK (guest_id <> host_id)
    );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS conversations_pair_uq
        ON conversations (LEAST(guest_id, host_id), GREATEST(guest_id, host_id));`,
	`CREATE INDEX IF NOT EXISTS conversations_host_idx ON conversations (host_id);`,
	`CREATE TABLE IF NOT EXISTS messages (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
        sender_id UUID NOT NULL,
        kind TEXT NOT NULL DEFAULT 'text',
        content TEXT NOT NULL,
        read BOOLEAN NOT NULL DEFAULT FALSE,
        moderation_status TEXT NOT NULL CHECK (moderation_status IN ('pending', 'clean', 'flagged', 'blocked')),
        moderation_category TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS messages_conversation_created_idx ON messages (conversation_id, created_at);`,
	`CREATE TABLE IF NOT EXISTS blocks (
        blocker_id UUID NOT NULL,
        blocked_id UUID NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        PRIMARY KEY (blocker_id, blocked_id)
    );`,
	`CREATE TABLE IF NOT EXISTS reports (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        reporter_id UUID NOT NULL,
        reported_id UUID NOT NULL,
        conversation_id UUID,
        reason TEXT NOT NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS gatherings (
        id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
        name TEXT NOT NULL,
        owner_id UUID NOT NULL,
        event_date TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS gathering_members (
        gathering_id UUID NOT NULL REFERENCES gatherings(id) ON DELETE CASCADE,
        user_id UUID NOT NULL,
        PRIMARY KEY (gathering_id, user_id)
    );`,
	`CREATE TABLE IF NOT EXISTS banned_words (
        id SERIAL PRIMARY KEY,
        pattern TEXT NOT NULL UNIQUE,
        category TEXT NOT NULL,
        is_regex BOOLEAN NOT NULL DEFAULT FALSE
    );`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	log.Info().Int("statements", len(migrations)).Msg("database migrations applied")
	return nil
}
