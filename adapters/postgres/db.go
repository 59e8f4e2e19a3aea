// Package postgres implements the rule and feedback store ports over
// PostgreSQL.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	apperrors "github.com/dtjohnson83/sheet-speak-visualizer-sub002/internal/errors"
)

// Connect opens and pings a postgres connection
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "failed to ping database")
	}
	return db, nil
}

// Migrate creates the learning tables when they do not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS feedback_records (
			id TEXT PRIMARY KEY,
			column_name TEXT NOT NULL,
			original_type TEXT NOT NULL,
			corrected_type TEXT NOT NULL DEFAULT '',
			corrected_chart_type TEXT NOT NULL DEFAULT '',
			sample_values JSONB NOT NULL DEFAULT '[]',
			dataset_context TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_records_created_at
			ON feedback_records (created_at)`,
		`CREATE TABLE IF NOT EXISTS learned_rules (
			id TEXT PRIMARY KEY,
			name_pattern TEXT NOT NULL,
			shape_pattern TEXT NOT NULL DEFAULT '',
			target_type TEXT NOT NULL DEFAULT '',
			target_chart_type TEXT NOT NULL DEFAULT '',
			confidence_score DOUBLE PRECISION NOT NULL,
			success_rate DOUBLE PRECISION NOT NULL,
			usage_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return apperrors.Wrap(err, "migration failed")
		}
	}
	return nil
}
