package fisher

import (
	"fastfisher/domain/stats"
)

// Exact mirrors the reference-library call shape fisher_exact(table, alternative):
// a row-major 2×2 matrix and one of "less", "greater", "two-sided". It returns
// the sample odds ratio (a·d)/(b·c) and the p-value. A zero row or column sum
// gives (NaN, 1); otherwise a zero denominator gives +Inf.
func (e *Engine) Exact(m [][]float64, alternative string) (oddsRatio, pValue float64, err error) {
	alt, err := stats.ParseAlternative(alternative)
	if err != nil {
		return 0, 0, err
	}
	t, err := stats.TableFromMatrix(m)
	if err != nil {
		return 0, 0, err
	}
	return t.OddsRatio(), e.PValue(t, alt), nil
}

// Exact runs the compatibility entry point on the Default engine.
func Exact(m [][]float64, alternative string) (oddsRatio, pValue float64, err error) {
	return Default.Exact(m, alternative)
}
