package repository

import (
	"context"
	"fmt"
)

// schemaStatements create the tables used by the repository
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS data`,
	`CREATE TABLE IF NOT EXISTS data.quarterly_performance (
		symbol                  TEXT        NOT NULL,
		quarter                 TEXT        NOT NULL,
		quarter_year            INTEGER     NOT NULL,
		quarter_month           INTEGER     NOT NULL,
		final_performance_score DOUBLE PRECISION,
		final_price_score       DOUBLE PRECISION,
		payload                 JSONB       NOT NULL,
		evaluated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (symbol, quarter)
	)`,
	`CREATE TABLE IF NOT EXISTS data.evaluation_runs (
		run_id         UUID        PRIMARY KEY,
		watchlist_hash TEXT,
		started_at     TIMESTAMPTZ NOT NULL,
		finished_at    TIMESTAMPTZ NOT NULL,
		total          INTEGER     NOT NULL,
		succeeded      INTEGER     NOT NULL,
		failed         INTEGER     NOT NULL,
		items          JSONB       NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_evaluation_runs_started ON data.evaluation_runs (started_at DESC)`,
}

// EnsureSchema creates missing tables (idempotent)
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
