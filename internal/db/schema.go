package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables if they are missing. Statements are
// idempotent so repeated startups are safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL,
			is_active     BOOLEAN NOT NULL DEFAULT TRUE,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id            UUID PRIMARY KEY,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			department    TEXT NOT NULL,
			join_date     TIMESTAMPTZ NOT NULL,
			phone         TEXT NOT NULL DEFAULT '',
			profile_photo TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leave_requests (
			id                 UUID PRIMARY KEY,
			employee_id        UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			submitted_by       UUID NOT NULL REFERENCES users(id),
			from_date          TIMESTAMPTZ NOT NULL,
			to_date            TIMESTAMPTZ NOT NULL,
			reason             TEXT NOT NULL,
			status             TEXT NOT NULL DEFAULT 'pending',
			applied_date       TIMESTAMPTZ NOT NULL,
			approved_by        UUID REFERENCES users(id),
			approved_date      TIMESTAMPTZ,
			rejected_by        UUID REFERENCES users(id),
			rejected_date      TIMESTAMPTZ,
			is_edited          BOOLEAN NOT NULL DEFAULT FALSE,
			edited_date        TIMESTAMPTZ,
			original_from_date TIMESTAMPTZ,
			original_to_date   TIMESTAMPTZ,
			original_reason    TEXT,
			created_at         TIMESTAMPTZ NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS leave_requests_employee_idx ON leave_requests (employee_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS leave_requests_submitter_idx ON leave_requests (submitted_by, created_at DESC)`,
	}

	for _, stmt := range stmts {
		_, err := pool.Exec(ctx, stmt)

		if err != nil {
			return err
		}
	}

	return nil
}
