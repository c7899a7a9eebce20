package fisher

import (
	"math"

	"fastfisher/domain/stats"
)

// Engine computes Fisher exact p-values. It holds no per-call state and is safe
// for concurrent use as long as its LogFactorials source is.
type Engine struct {
	lf        LogFactorials
	tolerance float64
}

// Option configures an Engine
type Option func(*Engine)

// WithLogFactorials injects the ln(k!) source. The default is SharedCache().
func WithLogFactorials(src LogFactorials) Option {
	return func(e *Engine) {
		if src != nil {
			e.lf = src
		}
	}
}

// WithTolerance sets the relative two-sided tie tolerance ε. Negative or NaN
// values are ignored.
func WithTolerance(eps float64) Option {
	return func(e *Engine) {
		if eps >= 0 && !math.IsInf(eps, 0) {
			e.tolerance = eps
		}
	}
}

// New returns an engine with the given options applied over the defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		lf:        sharedCache,
		tolerance: DefaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tolerance reports the two-sided relative tolerance.
func (e *Engine) Tolerance() float64 {
	return e.tolerance
}

// Distribution returns the hypergeometric null distribution for the marginals.
func (e *Engine) Distribution(m stats.Marginals) Hypergeometric {
	return newHypergeometric(m, e.lf)
}

// Test returns all three p-values of a validated table from one support walk.
func (e *Engine) Test(t stats.ContingencyTable) stats.PValues {
	h := newHypergeometric(t.Marginals(), e.lf)
	return walk(&h, t.A, e.tolerance, tailAll)
}

// PValue returns the p-value of a validated table for one alternative. It is
// bit-identical to the matching field of Test.
func (e *Engine) PValue(t stats.ContingencyTable, alt stats.Alternative) float64 {
	h := newHypergeometric(t.Marginals(), e.lf)
	return walk(&h, t.A, e.tolerance, tailsFor(alt)).Get(alt)
}

// All validates the counts and returns the left, right and two-sided p-values.
func (e *Engine) All(a, b, c, d int) (stats.PValues, error) {
	t, err := stats.NewTable(a, b, c, d)
	if err != nil {
		return stats.PValues{}, err
	}
	return e.Test(t), nil
}

// Less returns P(a' <= a).
func (e *Engine) Less(a, b, c, d int) (float64, error) {
	return e.single(a, b, c, d, stats.LessEqual)
}

// Greater returns P(a' >= a).
func (e *Engine) Greater(a, b, c, d int) (float64, error) {
	return e.single(a, b, c, d, stats.GreaterEqual)
}

// TwoSided returns the sum of P(a') over tables no more likely than the observed one.
func (e *Engine) TwoSided(a, b, c, d int) (float64, error) {
	return e.single(a, b, c, d, stats.TwoSided)
}

func (e *Engine) single(a, b, c, d int, alt stats.Alternative) (float64, error) {
	t, err := stats.NewTable(a, b, c, d)
	if err != nil {
		return 0, err
	}
	return e.PValue(t, alt), nil
}

// Default is the engine behind the package-level functions: shared cache,
// DefaultTolerance.
var Default = New()

// All returns the three p-values of (a,b,c,d) using the Default engine.
func All(a, b, c, d int) (stats.PValues, error) { return Default.All(a, b, c, d) }

// Less returns the left-tailed p-value using the Default engine.
func Less(a, b, c, d int) (float64, error) { return Default.Less(a, b, c, d) }

// Greater returns the right-tailed p-value using the Default engine.
func Greater(a, b, c, d int) (float64, error) { return Default.Greater(a, b, c, d) }

// TwoSided returns the two-sided p-value using the Default engine.
func TwoSided(a, b, c, d int) (float64, error) { return Default.TwoSided(a, b, c, d) }
