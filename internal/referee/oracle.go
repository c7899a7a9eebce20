package referee

import (
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/stat/combin"

	"fastfisher/domain/core"
	"fastfisher/domain/stats"
)

// Oracle is an independent implementation of the Fisher exact test that the
// engine is judged against.
type Oracle interface {
	Name() string
	PValues(t stats.ContingencyTable) (stats.PValues, error)
}

// RationalOracle computes p-values in exact integer arithmetic. The weight of
// each support point is C(r1,a')·C(r2,c1−a'); their sum is C(n,c1), so every
// p-value is a ratio of two integers rounded once to float64.
type RationalOracle struct {
	// MaxTotal bounds n; larger tables return ErrOracleUnsupported. Zero means
	// no bound.
	MaxTotal int
	// Tolerance is the relative two-sided slack ε, applied exactly:
	// w(a') <= w(a)·(1+ε). Zero selects the strict rule.
	Tolerance float64
}

func (o RationalOracle) Name() string {
	if o.Tolerance == 0 {
		return "rational"
	}
	return fmt.Sprintf("rational(ε=%g)", o.Tolerance)
}

// PValues implements Oracle.
func (o RationalOracle) PValues(t stats.ContingencyTable) (stats.PValues, error) {
	m := t.Marginals()
	if o.MaxTotal > 0 && m.N > o.MaxTotal {
		return stats.PValues{}, fmt.Errorf("%w: n=%d exceeds %d", core.ErrOracleUnsupported, m.N, o.MaxTotal)
	}

	eps := new(big.Rat)
	if o.Tolerance > 0 && !math.IsInf(o.Tolerance, 0) {
		eps.SetFloat64(o.Tolerance)
	}
	// w(x)·den <= w(a)·(den+num)
	num, den := eps.Num(), eps.Denom()
	limit := new(big.Int).Add(den, num)
	limit.Mul(limit, weight(m, t.A))

	lo, hi := m.Support()
	w := weight(m, lo)
	var total, left, right, two, lhs, step big.Int
	for x := lo; ; x++ {
		total.Add(&total, w)
		if x <= t.A {
			left.Add(&left, w)
		}
		if x >= t.A {
			right.Add(&right, w)
		}
		if lhs.Mul(w, den).Cmp(limit) <= 0 {
			two.Add(&two, w)
		}
		if x == hi {
			break
		}
		// C(r1,x+1) = C(r1,x)·(r1−x)/(x+1) and C(r2,c'−1) = C(r2,c')·c'/(d'+1);
		// each quotient is exact
		w.Mul(w, step.SetInt64(int64(m.Row1-x)))
		w.Quo(w, step.SetInt64(int64(x+1)))
		w.Mul(w, step.SetInt64(int64(m.Col1-x)))
		w.Quo(w, step.SetInt64(int64(m.Col2-m.Row1+x+1)))
	}

	return stats.PValues{
		Less:     ratio(&left, &total),
		Greater:  ratio(&right, &total),
		TwoSided: ratio(&two, &total),
	}, nil
}

// Total returns C(n, c1), the number of ways to realise the marginals.
func (o RationalOracle) Total(m stats.Marginals) *big.Int {
	return new(big.Int).Binomial(int64(m.N), int64(m.Col1))
}

func weight(m stats.Marginals, x int) *big.Int {
	w := new(big.Int).Binomial(int64(m.Row1), int64(x))
	return w.Mul(w, new(big.Int).Binomial(int64(m.Row2), int64(m.Col1-x)))
}

func ratio(num, den *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}

// LogBinomialOracle is a float implementation built on gonum's log binomial
// coefficients, independent of the engine's log-factorial tables. It follows
// the common library convention of a 1+1e-7 relative tie tolerance.
type LogBinomialOracle struct {
	// Tolerance overrides the relative tie tolerance when positive.
	Tolerance float64
}

// defaultOracleTolerance is the tie slack used by widely deployed float
// implementations of the test.
const defaultOracleTolerance = 1e-7

func (o LogBinomialOracle) Name() string { return "log-binomial" }

// PValues implements Oracle.
func (o LogBinomialOracle) PValues(t stats.ContingencyTable) (stats.PValues, error) {
	m := t.Marginals()
	lo, hi := m.Support()
	if lo == hi {
		return stats.PValues{Less: 1, Greater: 1, TwoSided: 1}, nil
	}

	eps := o.Tolerance
	if eps <= 0 {
		eps = defaultOracleTolerance
	}

	logTotal := combin.LogGeneralizedBinomial(float64(m.N), float64(m.Col1))
	pmf := func(x int) float64 {
		return math.Exp(combin.LogGeneralizedBinomial(float64(m.Row1), float64(x)) +
			combin.LogGeneralizedBinomial(float64(m.Row2), float64(m.Col1-x)) - logTotal)
	}

	pObs := pmf(t.A)
	threshold := pObs * (1 + eps)

	var left, right, two float64
	for x := lo; x <= t.A; x++ {
		left += pmf(x)
	}
	for x := hi; x >= t.A; x-- {
		right += pmf(x)
	}
	for x := lo; x <= hi; x++ {
		if p := pmf(x); p <= threshold {
			two += p
		}
	}

	return stats.PValues{
		Less:     math.Min(left, 1),
		Greater:  math.Min(right, 1),
		TwoSided: math.Min(two, 1),
	}, nil
}
