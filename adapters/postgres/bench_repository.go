package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"fastfisher/domain/core"
	"fastfisher/internal/errors"
	"fastfisher/internal/profiling"
)

// BenchReportRepository stores rendered benchmark reports
type BenchReportRepository struct {
	db *sqlx.DB
}

// NewBenchReportRepository creates a new bench report repository
func NewBenchReportRepository(db *sqlx.DB) *BenchReportRepository {
	return &BenchReportRepository{db: db}
}

// StoredBenchReport is a report as persisted: its metadata plus the rendered
// Markdown table. Per-call timings are not kept.
type StoredBenchReport struct {
	ID              core.BenchID
	StartedAt       core.Timestamp
	Duration        time.Duration
	Iterations      int
	Implementations []string
	Markdown        string
}

type benchReportRow struct {
	ID              string `db:"id"`
	StartedAt       int64  `db:"started_at"`
	DurationNs      int64  `db:"duration_ns"`
	Iterations      int    `db:"iterations"`
	Implementations string `db:"implementations"`
	Markdown        string `db:"markdown"`
}

// Save inserts a report
func (r *BenchReportRepository) Save(ctx context.Context, report *profiling.Report) error {
	row := benchReportRow{
		ID:              report.ID.String(),
		StartedAt:       report.StartedAt.UnixNano(),
		DurationNs:      int64(report.Duration),
		Iterations:      report.Iterations,
		Implementations: strings.Join(report.Implementations, ","),
		Markdown:        report.Markdown(),
	}
	query := `INSERT INTO bench_reports (id, started_at, duration_ns, iterations, implementations, markdown)
		VALUES (:id, :started_at, :duration_ns, :iterations, :implementations, :markdown)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save bench report: %w", err)
	}
	return nil
}

// GetByID retrieves a stored report
func (r *BenchReportRepository) GetByID(ctx context.Context, id core.BenchID) (*StoredBenchReport, error) {
	query := r.db.Rebind(`SELECT id, started_at, duration_ns, iterations, implementations, markdown
		FROM bench_reports WHERE id = ?`)

	var row benchReportRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound(fmt.Sprintf("bench report %s", id))
		}
		return nil, fmt.Errorf("failed to get bench report: %w", err)
	}

	stored := &StoredBenchReport{
		ID:         core.BenchID(row.ID),
		StartedAt:  core.FromUnixNano(row.StartedAt),
		Duration:   time.Duration(row.DurationNs),
		Iterations: row.Iterations,
		Markdown:   row.Markdown,
	}
	if row.Implementations != "" {
		stored.Implementations = strings.Split(row.Implementations, ",")
	}
	return stored, nil
}
