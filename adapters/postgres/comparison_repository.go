package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"fastfisher/domain/core"
	"fastfisher/internal/errors"
	"fastfisher/internal/referee"
)

// ComparisonRunRepository stores comparison summaries
type ComparisonRunRepository struct {
	db *sqlx.DB
}

// NewComparisonRunRepository creates a new comparison run repository
func NewComparisonRunRepository(db *sqlx.DB) *ComparisonRunRepository {
	return &ComparisonRunRepository{db: db}
}

type comparisonRunRow struct {
	RunID            string  `db:"run_id"`
	Fingerprint      string  `db:"fingerprint"`
	Oracle           string  `db:"oracle"`
	Alternative      string  `db:"alternative"`
	StartedAt        int64   `db:"started_at"`
	DurationNs       int64   `db:"duration_ns"`
	Samples          int     `db:"samples"`
	Skipped          int     `db:"skipped"`
	Failures         int     `db:"failures"`
	FailRatio        float64 `db:"fail_ratio"`
	SignificantRatio float64 `db:"significant_ratio"`
	NotIdenticalMinP float64 `db:"not_identical_min_p"`
	MeanDiff         float64 `db:"mean_diff"`
	MaxDiff          float64 `db:"max_diff"`
	P99Diff          float64 `db:"p99_diff"`
}

const comparisonColumns = `run_id, fingerprint, oracle, alternative, started_at, duration_ns,
	samples, skipped, failures, fail_ratio, significant_ratio, not_identical_min_p,
	mean_diff, max_diff, p99_diff`

func toComparisonRow(s *referee.Summary) comparisonRunRow {
	return comparisonRunRow{
		RunID:            s.RunID.String(),
		Fingerprint:      s.Fingerprint.String(),
		Oracle:           s.Oracle,
		Alternative:      s.Alternative,
		StartedAt:        s.StartedAt.UnixNano(),
		DurationNs:       int64(s.Duration),
		Samples:          s.Samples,
		Skipped:          s.Skipped,
		Failures:         s.Failures,
		FailRatio:        s.FailRatio,
		SignificantRatio: s.SignificantRatio,
		NotIdenticalMinP: s.NotIdenticalMinP,
		MeanDiff:         s.MeanDiff,
		MaxDiff:          s.MaxDiff,
		P99Diff:          s.P99Diff,
	}
}

func (row comparisonRunRow) summary() *referee.Summary {
	return &referee.Summary{
		RunID:            core.RunID(row.RunID),
		Fingerprint:      core.Hash(row.Fingerprint),
		Oracle:           row.Oracle,
		Alternative:      row.Alternative,
		StartedAt:        core.FromUnixNano(row.StartedAt),
		Duration:         time.Duration(row.DurationNs),
		Samples:          row.Samples,
		Skipped:          row.Skipped,
		Failures:         row.Failures,
		FailRatio:        row.FailRatio,
		SignificantRatio: row.SignificantRatio,
		NotIdenticalMinP: row.NotIdenticalMinP,
		MeanDiff:         row.MeanDiff,
		MaxDiff:          row.MaxDiff,
		P99Diff:          row.P99Diff,
	}
}

// Save inserts a summary
func (r *ComparisonRunRepository) Save(ctx context.Context, s *referee.Summary) error {
	query := `INSERT INTO comparison_runs (` + comparisonColumns + `) VALUES (
		:run_id, :fingerprint, :oracle, :alternative, :started_at, :duration_ns,
		:samples, :skipped, :failures, :fail_ratio, :significant_ratio, :not_identical_min_p,
		:mean_diff, :max_diff, :p99_diff
	)`
	if _, err := r.db.NamedExecContext(ctx, query, toComparisonRow(s)); err != nil {
		return fmt.Errorf("failed to save comparison run: %w", err)
	}
	return nil
}

// GetByID retrieves a summary by run ID
func (r *ComparisonRunRepository) GetByID(ctx context.Context, id core.RunID) (*referee.Summary, error) {
	query := r.db.Rebind(`SELECT ` + comparisonColumns + ` FROM comparison_runs WHERE run_id = ?`)

	var row comparisonRunRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("comparison run %s", id))
		}
		return nil, fmt.Errorf("failed to get comparison run: %w", err)
	}
	return row.summary(), nil
}

// ListRecent returns up to limit summaries, newest first
func (r *ComparisonRunRepository) ListRecent(ctx context.Context, limit int) ([]*referee.Summary, error) {
	query := r.db.Rebind(`SELECT ` + comparisonColumns + ` FROM comparison_runs ORDER BY started_at DESC LIMIT ?`)

	var rows []comparisonRunRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list comparison runs: %w", err)
	}

	out := make([]*referee.Summary, len(rows))
	for i, row := range rows {
		out[i] = row.summary()
	}
	return out, nil
}

// ListByFingerprint returns every run of the same configuration, oldest first
func (r *ComparisonRunRepository) ListByFingerprint(ctx context.Context, fingerprint core.Hash) ([]*referee.Summary, error) {
	query := r.db.Rebind(`SELECT ` + comparisonColumns + ` FROM comparison_runs WHERE fingerprint = ? ORDER BY started_at`)

	var rows []comparisonRunRow
	if err := r.db.SelectContext(ctx, &rows, query, fingerprint.String()); err != nil {
		return nil, fmt.Errorf("failed to list comparison runs: %w", err)
	}

	out := make([]*referee.Summary, len(rows))
	for i, row := range rows {
		out[i] = row.summary()
	}
	return out, nil
}
