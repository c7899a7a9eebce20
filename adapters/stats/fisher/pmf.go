package fisher

import (
	"math"

	"fastfisher/domain/stats"
)

// Hypergeometric is the null distribution of the top-left cell for one set of
// marginals. The marginal term is computed once and shared by every support point.
type Hypergeometric struct {
	m    stats.Marginals
	lo   int
	hi   int
	base float64   // lf(r1)+lf(r2)+lf(c1)+lf(c2)-lf(n)
	dOff int       // d' = dOff + a'
	lf   []float64 // nil: evaluate math.Lgamma per point
}

func newHypergeometric(m stats.Marginals, src LogFactorials) Hypergeometric {
	h := Hypergeometric{
		m:    m,
		dOff: m.Col2 - m.Row1,
		lf:   src.Upto(m.N),
	}
	h.lo, h.hi = m.Support()
	h.base = h.logFact(m.Row1) + h.logFact(m.Row2) + h.logFact(m.Col1) + h.logFact(m.Col2) - h.logFact(m.N)
	return h
}

func (h *Hypergeometric) logFact(k int) float64 {
	if h.lf != nil {
		return h.lf[k]
	}
	return logFactorial(k)
}

// logPMF is ln P(a'). The caller guarantees lo <= x <= hi.
func (h *Hypergeometric) logPMF(x int) float64 {
	if h.lf != nil {
		lf := h.lf
		return h.base - lf[x] - lf[h.m.Row1-x] - lf[h.m.Col1-x] - lf[h.dOff+x]
	}
	return h.base - logFactorial(x) - logFactorial(h.m.Row1-x) - logFactorial(h.m.Col1-x) - logFactorial(h.dOff+x)
}

// pmf is P(a') for lo <= x <= hi.
func (h *Hypergeometric) pmf(x int) float64 {
	return math.Exp(h.logPMF(x))
}

// Marginals returns the marginals the distribution was built for.
func (h Hypergeometric) Marginals() stats.Marginals {
	return h.m
}

// Support returns the inclusive range of admissible top-left values.
func (h Hypergeometric) Support() (lo, hi int) {
	return h.lo, h.hi
}

// Prob returns P(a'), or 0 outside the support.
func (h Hypergeometric) Prob(x int) float64 {
	if x < h.lo || x > h.hi {
		return 0
	}
	if h.lo == h.hi {
		return 1
	}
	return h.pmf(x)
}

// LogProb returns ln P(a'), or -Inf outside the support.
func (h Hypergeometric) LogProb(x int) float64 {
	if x < h.lo || x > h.hi {
		return math.Inf(-1)
	}
	if h.lo == h.hi {
		return 0
	}
	return h.logPMF(x)
}

// Mode returns the most likely top-left value.
func (h Hypergeometric) Mode() int {
	// floor((r1+1)(c1+1)/(n+2)), clamped into the support
	mode := int((float64(h.m.Row1) + 1) * (float64(h.m.Col1) + 1) / (float64(h.m.N) + 2))
	if mode < h.lo {
		mode = h.lo
	}
	if mode > h.hi {
		mode = h.hi
	}
	// the float product can land one below an exact integer boundary
	if mode < h.hi && h.logPMF(mode+1) > h.logPMF(mode) {
		mode++
	}
	return mode
}

// Mean returns the expected top-left value r1·c1/n (0 for the empty table).
func (h Hypergeometric) Mean() float64 {
	if h.m.N == 0 {
		return 0
	}
	return float64(h.m.Row1) * float64(h.m.Col1) / float64(h.m.N)
}
