package fisher

import (
	"fastfisher/domain/stats"
)

// DefaultTolerance is the relative slack ε of the two-sided inclusion test
// P(a') <= P(a)·(1+ε).
const DefaultTolerance = 1e-7

// tails selects which sums a walk accumulates.
type tails uint8

const (
	tailLeft tails = 1 << iota
	tailRight
	tailTwo

	tailAll = tailLeft | tailRight | tailTwo
)

// walk sums the support of h around the observed top-left value a.
//
// Points below a are visited from the support minimum upward and points above a
// from the support maximum downward, so the large terms near the observed value
// are added last. The left sum never depends on the right walk and vice versa,
// which keeps the single-alternative results identical to the combined one.
func walk(h *Hypergeometric, a int, eps float64, want tails) stats.PValues {
	if h.lo == h.hi {
		// a zero row or column: the observed table is the only one
		return mask(stats.PValues{Less: 1, Greater: 1, TwoSided: 1}, want)
	}

	pObs := h.pmf(a)
	threshold := pObs * (1 + eps)
	two := want&tailTwo != 0

	var lowSum, lowTwo float64
	if want&(tailLeft|tailTwo) != 0 {
		for x := h.lo; x < a; x++ {
			p := h.pmf(x)
			lowSum += p
			if two && p <= threshold {
				lowTwo += p
			}
		}
	}

	var highSum, highTwo float64
	if want&(tailRight|tailTwo) != 0 {
		for x := h.hi; x > a; x-- {
			p := h.pmf(x)
			highSum += p
			if two && p <= threshold {
				highTwo += p
			}
		}
	}

	var out stats.PValues
	if want&tailLeft != 0 {
		out.Less = clamp(lowSum + pObs)
	}
	if want&tailRight != 0 {
		out.Greater = clamp(highSum + pObs)
	}
	if two {
		out.TwoSided = clamp(lowTwo + highTwo + pObs)
	}
	return out
}

func mask(p stats.PValues, want tails) stats.PValues {
	var out stats.PValues
	if want&tailLeft != 0 {
		out.Less = p.Less
	}
	if want&tailRight != 0 {
		out.Greater = p.Greater
	}
	if want&tailTwo != 0 {
		out.TwoSided = p.TwoSided
	}
	return out
}

// clamp caps a probability sum at 1; the full support sums to 1 up to rounding.
func clamp(p float64) float64 {
	if p > 1 {
		return 1
	}
	return p
}

func tailsFor(alt stats.Alternative) tails {
	switch alt {
	case stats.LessEqual:
		return tailLeft
	case stats.GreaterEqual:
		return tailRight
	default:
		return tailTwo
	}
}
