package senses

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"fastfisher/domain/stats"
)

// minChiSquareSamples is the sample size below which the chi-square
// approximation is not attempted.
const minChiSquareSamples = 10

// ChiSquareSense is the large-sample counterpart of FisherExactSense: Pearson's
// chi-square on the same 2×2 table.
type ChiSquareSense struct{}

// NewChiSquareSense creates a new Chi-Square sense
func NewChiSquareSense() *ChiSquareSense {
	return &ChiSquareSense{}
}

// Name returns the sense name
func (s *ChiSquareSense) Name() string {
	return "chi_square"
}

// Description returns a human-readable description
func (s *ChiSquareSense) Description() string {
	return "Pearson chi-square test of independence on the binarized 2×2 table"
}

// Analyze performs Chi-Square test of independence
func (s *ChiSquareSense) Analyze(ctx context.Context, x, y []float64, varX, varY string) SenseResult {
	if len(x) != len(y) || len(x) < minChiSquareSamples {
		return insufficientResult(s.Name(), "Insufficient data for Chi-Square analysis")
	}

	table := pairTable(x, y)
	chiSq, pValue, phi := s.computeChiSquare(table)

	return SenseResult{
		SenseName:   s.Name(),
		EffectSize:  phi,
		PValue:      pValue,
		Confidence:  calculateConfidence(pValue),
		Signal:      classifySignal(phi, s.Name()),
		Description: s.generateDescription(chiSq, pValue, phi, varX, varY),
		Metadata: map[string]interface{}{
			"chi_square_stat": chiSq,
			"degrees_freedom": 1,
			"table":           table.Cells(),
			"min_expected":    minExpected(table),
			"variable_x":      varX,
			"variable_y":      varY,
		},
	}
}

// computeChiSquare returns the statistic n(ad−bc)²/(r1·r2·c1·c2), its
// upper-tail p-value on one degree of freedom, and the signed phi coefficient.
func (s *ChiSquareSense) computeChiSquare(t stats.ContingencyTable) (float64, float64, float64) {
	m := t.Marginals()
	if m.Degenerate() {
		return 0, 1.0, 0
	}

	a, b, c, d := float64(t.A), float64(t.B), float64(t.C), float64(t.D)
	denom := float64(m.Row1) * float64(m.Row2) * float64(m.Col1) * float64(m.Col2)
	diff := a*d - b*c

	chiSq := float64(m.N) * diff * diff / denom
	phi := diff / math.Sqrt(denom)

	chiDist := distuv.ChiSquared{K: 1}
	pValue := chiDist.Survival(chiSq)
	return chiSq, pValue, phi
}

// minExpected is the smallest expected cell count under independence; below
// five the approximation is unreliable.
func minExpected(t stats.ContingencyTable) float64 {
	m := t.Marginals()
	if m.N == 0 {
		return 0
	}
	n := float64(m.N)
	return math.Min(
		math.Min(float64(m.Row1)*float64(m.Col1), float64(m.Row1)*float64(m.Col2)),
		math.Min(float64(m.Row2)*float64(m.Col1), float64(m.Row2)*float64(m.Col2)),
	) / n
}

func (s *ChiSquareSense) generateDescription(chiSq, pValue, phi float64, varX, varY string) string {
	strength := classifySignal(phi, s.Name())
	return fmt.Sprintf("%s association between %s and %s (χ²=%.3f, p=%.4g, φ=%.3f)",
		strength, varX, varY, chiSq, pValue, phi)
}
