package profiling

import (
	"context"
	"fmt"
	"time"

	"fastfisher/adapters/stats/fisher"
	"fastfisher/domain/core"
	"fastfisher/domain/stats"
	"fastfisher/internal"
)

// Case is one benchmarked call: a table and an alternative
type Case struct {
	Table       stats.ContingencyTable `json:"table"`
	Alternative stats.Alternative      `json:"alternative"`
}

// DefaultCases returns the comparative benchmark: a small table, two skewed
// large tables and a large balanced one, each under every alternative.
func DefaultCases() []Case {
	tables := []stats.ContingencyTable{
		stats.MustTable(8, 2, 1, 5),
		stats.MustTable(100, 1000, 10000, 100000),
		stats.MustTable(10000, 100, 1000, 100000),
		stats.MustTable(10000, 10000, 10000, 10000),
	}
	cases := make([]Case, 0, len(tables)*len(stats.Alternatives))
	for _, t := range tables {
		for _, alt := range stats.Alternatives {
			cases = append(cases, Case{Table: t, Alternative: alt})
		}
	}
	return cases
}

// Implementation is a named way of computing a p-value
type Implementation struct {
	Name   string
	PValue func(t stats.ContingencyTable, alt stats.Alternative) (float64, error)
}

// EngineImplementation benchmarks a Fisher engine's single-alternative path.
func EngineImplementation(name string, e *fisher.Engine) Implementation {
	return Implementation{
		Name: name,
		PValue: func(t stats.ContingencyTable, alt stats.Alternative) (float64, error) {
			return e.PValue(t, alt), nil
		},
	}
}

// Timing is the measurement of one implementation on one case
type Timing struct {
	Implementation string              `json:"implementation"`
	PValue         float64             `json:"p_value"`
	Latency        LatencyDistribution `json:"latency"`
}

// Row collects every implementation's timing for a case
type Row struct {
	Case    Case     `json:"case"`
	Timings []Timing `json:"timings"`
}

// Runner times implementations over benchmark cases
type Runner struct {
	impls      []Implementation
	iterations int
	logger     *internal.Logger
}

// NewRunner creates a runner that calls each implementation iterations times per
// case. A nil logger selects internal.DefaultLogger.
func NewRunner(iterations int, logger *internal.Logger, impls ...Implementation) *Runner {
	if iterations <= 0 {
		iterations = 100
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Runner{impls: impls, iterations: iterations, logger: logger}
}

// Run measures every implementation on every case. Each measurement is
// preceded by one untimed warm-up call so that cache growth is not counted.
func (r *Runner) Run(ctx context.Context, cases []Case) (*Report, error) {
	report := &Report{
		ID:         core.NewBenchID(),
		StartedAt:  core.Now(),
		Iterations: r.iterations,
	}
	for _, impl := range r.impls {
		report.Implementations = append(report.Implementations, impl.Name)
	}

	log := r.logger.With("bench", report.ID.String())
	log.Info("benchmark started", "cases", len(cases), "implementations", len(r.impls), "iterations", r.iterations)

	for _, c := range cases {
		row := Row{Case: c}
		for _, impl := range r.impls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			timing, err := r.measure(impl, c)
			if err != nil {
				return nil, fmt.Errorf("%s on %s %s: %w", impl.Name, c.Table, c.Alternative, err)
			}
			log.Debug("measured", "impl", impl.Name, "table", c.Table.String(),
				"alternative", c.Alternative.String(), "mean_us", timing.Latency.Mean)
			row.Timings = append(row.Timings, timing)
		}
		report.Rows = append(report.Rows, row)
	}

	report.Duration = report.StartedAt.Since()
	log.Info("benchmark finished", "duration", report.Duration)
	return report, nil
}

func (r *Runner) measure(impl Implementation, c Case) (Timing, error) {
	p, err := impl.PValue(c.Table, c.Alternative)
	if err != nil {
		return Timing{}, err
	}

	micros := make([]float64, r.iterations)
	for i := range micros {
		start := time.Now()
		_, _ = impl.PValue(c.Table, c.Alternative)
		micros[i] = float64(time.Since(start).Nanoseconds()) / 1e3
	}

	latency, err := AnalyzeLatency(micros)
	if err != nil {
		return Timing{}, err
	}
	return Timing{Implementation: impl.Name, PValue: p, Latency: latency}, nil
}
