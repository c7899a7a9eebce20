package ui

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"fastfisher/domain/stats"
	"fastfisher/internal/profiling"
	"fastfisher/internal/referee"
	"fastfisher/internal/testkit"
)

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	md := fmt.Sprintf(`Fisher exact test on 2×2 tables.

- two-sided tolerance: %g
- oracle: %s
- [bench](/bench): mean latency per call over %d iterations
- [compare](/compare): agreement with the oracle on %d log-uniform tables
- [exceptions](/exceptions): tables where float implementations are known to disagree
`, a.engine.Tolerance(), a.oracleName(), a.config.BenchIterations, a.config.CompareSamples)
	a.render(w, "fastfisher", markdownToHTML(md))
}

func (a *App) oracleName() string {
	if a.referee == nil {
		return "none"
	}
	return a.referee.Oracle().Name()
}

func (a *App) handleBench(w http.ResponseWriter, r *http.Request) {
	iterations, ok := intParam(w, r, "iterations", a.config.BenchIterations, 10000)
	if !ok {
		return
	}

	impls := []profiling.Implementation{profiling.EngineImplementation("engine", a.engine)}
	if a.referee != nil {
		oracle := a.referee.Oracle()
		impls = append(impls, profiling.Implementation{
			Name: oracle.Name(),
			PValue: func(t stats.ContingencyTable, alt stats.Alternative) (float64, error) {
				p, err := oracle.PValues(t)
				return p.Get(alt), err
			},
		})
	}

	report, err := profiling.NewRunner(iterations, a.logger, impls...).Run(r.Context(), profiling.DefaultCases())
	if err != nil {
		a.logger.Error("bench failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a.render(w, "bench "+report.ID.String(), report.HTML())
}

func (a *App) handleCompare(w http.ResponseWriter, r *http.Request) {
	if a.referee == nil {
		http.Error(w, "no oracle configured", http.StatusNotFound)
		return
	}
	samples, ok := intParam(w, r, "samples", a.config.CompareSamples, maxCompareSamples)
	if !ok {
		return
	}
	seed, ok := intParam(w, r, "seed", int(a.config.Seed), math.MaxInt)
	if !ok {
		return
	}

	cfg := testkit.DefaultGeneratorConfig()
	cfg.Seed = int64(seed)
	tables := testkit.NewGenerator(cfg).Tables(samples)

	summary, results, err := a.referee.Compare(r.Context(), tables)
	if err != nil {
		a.logger.Error("comparison failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var md strings.Builder
	md.WriteString(summary.Markdown())
	md.WriteString("\n")
	for _, alt := range stats.Alternatives {
		rank := referee.RankAgreement(results, alt)
		fmt.Fprintf(&md, "- %s: %d of %d tables ranked differently", alt.Tail(), rank.Disagreements, rank.Ranked)
		if rank.Disagreements > 0 {
			fmt.Fprintf(&md, ", first at rank %d by %s", rank.FirstDisagreement, rank.Table)
		}
		md.WriteString("\n")
	}
	a.render(w, "compare", markdownToHTML(md.String()))
}

func (a *App) handleExceptions(w http.ResponseWriter, r *http.Request) {
	if a.referee == nil {
		http.Error(w, "no oracle configured", http.StatusNotFound)
		return
	}
	results, err := a.referee.CheckDocumented(r.Context())
	if err != nil {
		a.logger.Error("documented check failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	a.render(w, "exceptions", markdownToHTML(referee.DocumentedMarkdown(results)))
}

// intParam reads a positive integer query parameter, writing a 400 on failure.
func intParam(w http.ResponseWriter, r *http.Request, name string, def, limit int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > limit {
		http.Error(w, fmt.Sprintf("%s must be an integer in [1, %d]", name, limit), http.StatusBadRequest)
		return 0, false
	}
	return v, true
}
