package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"fastfisher/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the run history schema. Statements use only types
// and clauses shared by PostgreSQL and SQLite.
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

// Run executes all database migrations in order. It is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createComparisonRunsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create comparison_runs table")
	}

	if err := r.createBenchReportsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bench_reports table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createComparisonRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comparison_runs (
			run_id VARCHAR(64) PRIMARY KEY,
			fingerprint VARCHAR(64) NOT NULL,
			oracle VARCHAR(64) NOT NULL,
			alternative VARCHAR(16) NOT NULL,
			started_at BIGINT NOT NULL,
			duration_ns BIGINT NOT NULL,
			samples INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failures INTEGER NOT NULL,
			fail_ratio DOUBLE PRECISION NOT NULL,
			significant_ratio DOUBLE PRECISION NOT NULL,
			not_identical_min_p DOUBLE PRECISION NOT NULL,
			mean_diff DOUBLE PRECISION NOT NULL,
			max_diff DOUBLE PRECISION NOT NULL,
			p99_diff DOUBLE PRECISION NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createBenchReportsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS bench_reports (
			id VARCHAR(64) PRIMARY KEY,
			started_at BIGINT NOT NULL,
			duration_ns BIGINT NOT NULL,
			iterations INTEGER NOT NULL,
			implementations TEXT NOT NULL,
			markdown TEXT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_comparison_runs_started_at ON comparison_runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_comparison_runs_fingerprint ON comparison_runs(fingerprint)`,
		`CREATE INDEX IF NOT EXISTS idx_bench_reports_started_at ON bench_reports(started_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
