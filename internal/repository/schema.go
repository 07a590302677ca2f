package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                  TEXT PRIMARY KEY,
		username            TEXT NOT NULL,
		full_name           TEXT NOT NULL,
		email               TEXT NOT NULL UNIQUE,
		phone_number        TEXT NOT NULL DEFAULT '',
		city                TEXT NOT NULL DEFAULT '',
		profile_picture_url TEXT NOT NULL DEFAULT '',
		password_hash       TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id                      TEXT PRIMARY KEY,
		user_id                 TEXT,
		title                   TEXT,
		category                TEXT,
		description             TEXT,
		price_per_day           DOUBLE PRECISION,
		availability_start_date TIMESTAMPTZ,
		availability_end_date   TIMESTAMPTZ,
		location                TEXT,
		photos                  TEXT[],
		is_rented               BOOLEAN,
		is_active               BOOLEAN,
		average_rating          NUMERIC(3,2) DEFAULT 0,
		created_at              TIMESTAMPTZ DEFAULT now(),
		updated_at              TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS listings_user_id_idx ON listings (user_id)`,
	`CREATE INDEX IF NOT EXISTS listings_created_at_idx ON listings (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id            TEXT PRIMARY KEY,
		listing_id    TEXT NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
		rater_id      TEXT NOT NULL,
		rated_user_id TEXT NOT NULL,
		rating        INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		review        TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ratings_rated_user_id_idx ON ratings (rated_user_id)`,
}

// Migrate creates the tables the repositories use if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("repository.Migrate: %w", err)
		}
	}
	return nil
}
