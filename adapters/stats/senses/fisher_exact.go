package senses

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"fastfisher/adapters/stats/fisher"
	"fastfisher/domain/stats"
)

// FisherExactSense tests association between two binarized series with the
// Fisher exact test. It stays exact for the small samples where chi-square
// approximations break down.
type FisherExactSense struct {
	engine *fisher.Engine
}

// NewFisherExactSense creates a new Fisher exact sense
func NewFisherExactSense(engine *fisher.Engine) *FisherExactSense {
	if engine == nil {
		engine = fisher.Default
	}
	return &FisherExactSense{engine: engine}
}

// Name returns the sense name
func (s *FisherExactSense) Name() string {
	return "fisher_exact"
}

// Description returns a human-readable description
func (s *FisherExactSense) Description() string {
	return "Exact test of association between two binary (or median-split) variables"
}

// Analyze builds the 2×2 table of the paired series and reports the two-sided
// p-value with the log odds ratio as effect size.
func (s *FisherExactSense) Analyze(ctx context.Context, x, y []float64, varX, varY string) SenseResult {
	if len(x) != len(y) || len(x) < 2 {
		return insufficientResult(s.Name(), "Insufficient paired data for Fisher exact test")
	}

	table := pairTable(x, y)
	p := s.engine.Test(table)
	effect := logOddsRatio(table)

	return SenseResult{
		SenseName:   s.Name(),
		EffectSize:  effect,
		PValue:      p.TwoSided,
		Confidence:  calculateConfidence(p.TwoSided),
		Signal:      classifySignal(effect, s.Name()),
		Description: s.generateDescription(table, p, effect, varX, varY),
		Metadata: map[string]interface{}{
			"table":      table.Cells(),
			"p_less":     p.Less,
			"p_greater":  p.Greater,
			"odds_ratio": formatRatio(table.OddsRatio()),
			"variable_x": varX,
			"variable_y": varY,
		},
	}
}

// logOddsRatio is ln((a+½)(d+½)/((b+½)(c+½))), finite for every table.
func logOddsRatio(t stats.ContingencyTable) float64 {
	if t.Marginals().Degenerate() {
		return 0
	}
	a, b, c, d := float64(t.A)+0.5, float64(t.B)+0.5, float64(t.C)+0.5, float64(t.D)+0.5
	return math.Log(a) + math.Log(d) - math.Log(b) - math.Log(c)
}

// formatRatio keeps non-finite odds ratios JSON-safe.
func formatRatio(r float64) string {
	switch {
	case math.IsNaN(r):
		return "nan"
	case math.IsInf(r, 1):
		return "inf"
	default:
		return strconv.FormatFloat(r, 'g', 6, 64)
	}
}

func (s *FisherExactSense) generateDescription(t stats.ContingencyTable, p stats.PValues, effect float64, varX, varY string) string {
	if t.Marginals().Degenerate() {
		return fmt.Sprintf("%s or %s takes a single level; no association can be tested", varX, varY)
	}
	direction := "positive"
	if effect < 0 {
		direction = "negative"
	}
	significance := "not significant"
	if p.TwoSided < 0.05 {
		significance = "significant"
	}
	return fmt.Sprintf("%s association between %s and %s (table %s, two-sided p=%.4g, %s)",
		direction, varX, varY, t, p.TwoSided, significance)
}
