package migration

import (
	"context"

	"tseval/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createMetricSamplesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create metric_samples table")
	}

	if err := r.createLearningCurvePointsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create learning_curve_points table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createMetricSamplesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS metric_samples (
			id BIGSERIAL PRIMARY KEY,
			session_id VARCHAR(255) NOT NULL,
			technique VARCHAR(255) NOT NULL,
			metric VARCHAR(50) NOT NULL,
			iteration INTEGER NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func (r *MigrationRunner) createLearningCurvePointsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS learning_curve_points (
			id BIGSERIAL PRIMARY KEY,
			session_id VARCHAR(255) NOT NULL,
			technique VARCHAR(255) NOT NULL,
			iteration INTEGER NOT NULL,
			apfd DOUBLE PRECISION NOT NULL,
			accuracy DOUBLE PRECISION NOT NULL,
			reduction_ratio DOUBLE PRECISION NOT NULL,
			execution_time_ms DOUBLE PRECISION NOT NULL,
			adaptation_count INTEGER NOT NULL DEFAULT 0,
			UNIQUE (session_id, technique, iteration)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_metric_samples_lookup
			ON metric_samples (session_id, technique, metric, iteration);
		CREATE INDEX IF NOT EXISTS idx_learning_curve_lookup
			ON learning_curve_points (session_id, technique, iteration)
	`)
	return err
}
