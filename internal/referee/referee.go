package referee

import (
	"context"
	"errors"
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"fastfisher/adapters/stats/fisher"
	"fastfisher/domain/core"
	"fastfisher/domain/stats"
	"fastfisher/internal"
)

// Options tune a comparison run. Zero values select the package constants.
type Options struct {
	Alternative  stats.Alternative // drives the significance and min-p statistics
	AbsTolerance float64
	RelTolerance float64
	Alpha        float64
	Workers      int
	Logger       *internal.Logger
}

func (o Options) withDefaults() Options {
	if o.AbsTolerance <= 0 {
		o.AbsTolerance = ABS_TOLERANCE
	}
	if o.RelTolerance <= 0 {
		o.RelTolerance = REL_TOLERANCE
	}
	if o.Alpha <= 0 {
		o.Alpha = SIGNIFICANCE_ALPHA
	}
	if o.Workers <= 0 {
		o.Workers = DEFAULT_WORKERS
	}
	if o.Logger == nil {
		o.Logger = internal.DefaultLogger
	}
	return o
}

// Comparison is the verdict for one table across all three alternatives
type Comparison struct {
	Table     stats.ContingencyTable `json:"table"`
	Engine    stats.PValues          `json:"engine"`
	Reference stats.PValues          `json:"reference"`
	Diff      float64                `json:"diff"` // largest absolute difference
	Agree     bool                   `json:"agree"`
	Skipped   bool                   `json:"skipped,omitempty"` // oracle declined the table
}

// Summary aggregates a comparison run
type Summary struct {
	RunID       core.RunID     `json:"run_id"`
	Fingerprint core.Hash      `json:"fingerprint"`
	Oracle      string         `json:"oracle"`
	Alternative string         `json:"alternative"`
	StartedAt   core.Timestamp `json:"started_at"`
	Duration    time.Duration  `json:"duration"`

	Samples  int `json:"samples"`
	Skipped  int `json:"skipped"`
	Failures int `json:"failures"`

	FailRatio        float64 `json:"fail_ratio"`
	SignificantRatio float64 `json:"significant_ratio"`
	NotIdenticalMinP float64 `json:"not_identical_min_p"` // 1 when everything agrees

	MeanDiff float64 `json:"mean_diff"`
	MaxDiff  float64 `json:"max_diff"`
	P99Diff  float64 `json:"p99_diff"`
}

// Referee judges an engine against an oracle
type Referee struct {
	engine *fisher.Engine
	oracle Oracle
	opts   Options
}

// New creates a referee. A nil engine selects fisher.Default.
func New(engine *fisher.Engine, oracle Oracle, opts Options) *Referee {
	if engine == nil {
		engine = fisher.Default
	}
	return &Referee{engine: engine, oracle: oracle, opts: opts.withDefaults()}
}

// Oracle returns the reference implementation in use.
func (r *Referee) Oracle() Oracle {
	return r.oracle
}

// Judge compares a single table.
func (r *Referee) Judge(t stats.ContingencyTable) (Comparison, error) {
	c := Comparison{Table: t, Engine: r.engine.Test(t)}

	ref, err := r.oracle.PValues(t)
	if errors.Is(err, core.ErrOracleUnsupported) {
		c.Skipped = true
		c.Agree = true
		return c, nil
	}
	if err != nil {
		return c, err
	}
	c.Reference = ref

	c.Agree = true
	for _, alt := range stats.Alternatives {
		got, want := c.Engine.Get(alt), ref.Get(alt)
		if d := math.Abs(got - want); d > c.Diff {
			c.Diff = d
		}
		if !r.close(got, want) {
			c.Agree = false
		}
	}
	return c, nil
}

func (r *Referee) close(got, want float64) bool {
	return math.Abs(got-want) <= r.opts.AbsTolerance+r.opts.RelTolerance*math.Abs(want)
}

// Compare judges every table concurrently and summarises the run. Results keep
// the order of tables. Cancelling ctx stops scheduling and returns ctx.Err().
func (r *Referee) Compare(ctx context.Context, tables []stats.ContingencyTable) (*Summary, []Comparison, error) {
	started := core.Now()
	summary := &Summary{
		RunID:       core.NewRunID(),
		Fingerprint: r.fingerprint(tables),
		Oracle:      r.oracle.Name(),
		Alternative: r.opts.Alternative.String(),
		StartedAt:   started,
	}
	log := r.opts.Logger.With("run", summary.RunID.String(), "oracle", summary.Oracle)
	log.Info("comparison started", "tables", len(tables), "workers", r.opts.Workers)

	results := make([]Comparison, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i := range tables {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := r.Judge(tables[i])
			if err != nil {
				return err
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("comparison aborted", "error", err)
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	r.summarise(summary, results)
	summary.Duration = started.Since()

	log.Info("comparison finished",
		"samples", summary.Samples,
		"failures", summary.Failures,
		"max_diff", summary.MaxDiff,
		"duration", summary.Duration)
	return summary, results, nil
}

func (r *Referee) summarise(s *Summary, results []Comparison) {
	s.NotIdenticalMinP = 1
	alt := r.opts.Alternative

	diffs := make(mstats.Float64Data, 0, len(results))
	significant := 0
	for _, c := range results {
		if c.Skipped {
			s.Skipped++
			continue
		}
		s.Samples++
		diffs = append(diffs, c.Diff)

		if c.Engine.Get(alt) < r.opts.Alpha {
			significant++
		}
		if !c.Agree {
			s.Failures++
			s.NotIdenticalMinP = math.Min(s.NotIdenticalMinP, math.Min(c.Engine.Get(alt), c.Reference.Get(alt)))
		}
	}
	if s.Samples == 0 {
		return
	}

	s.FailRatio = float64(s.Failures) / float64(s.Samples)
	s.SignificantRatio = float64(significant) / float64(s.Samples)
	s.MeanDiff, _ = mstats.Mean(diffs)
	s.MaxDiff, _ = mstats.Max(diffs)
	if p, err := mstats.Percentile(diffs, 99); err == nil {
		s.P99Diff = p
	} else {
		s.P99Diff = s.MaxDiff
	}
}

func (r *Referee) fingerprint(tables []stats.ContingencyTable) core.Hash {
	params := map[string]interface{}{
		"oracle":      r.oracle.Name(),
		"alternative": r.opts.Alternative.String(),
		"abs":         r.opts.AbsTolerance,
		"rel":         r.opts.RelTolerance,
		"tolerance":   r.engine.Tolerance(),
		"samples":     len(tables),
	}
	cells := make([]string, len(tables))
	for i, t := range tables {
		cells[i] = t.String()
	}
	params["tables"] = core.ComputeSequenceHash(cells).String()
	return core.ComputeParamsHash(params)
}
