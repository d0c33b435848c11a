// Package db provides PostgreSQL storage for resume records and run history.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// schemaStatements create the tables used by this package. Each is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS resume_records (
		account     TEXT NOT NULL,
		profile_id  TEXT NOT NULL,
		status      TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (account, profile_id)
	)`,
	`CREATE TABLE IF NOT EXISTS invite_runs (
		id                UUID PRIMARY KEY,
		account           TEXT NOT NULL,
		phase             TEXT NOT NULL,
		status            TEXT NOT NULL,
		total_profiles    INTEGER NOT NULL DEFAULT 0,
		already_connected INTEGER NOT NULL DEFAULT 0,
		attempted         INTEGER NOT NULL DEFAULT 0,
		succeeded         INTEGER NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at      TIMESTAMPTZ
	)`,
}

// EnsureSchema creates the tables if they do not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
