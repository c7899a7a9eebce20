package senses

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"fastfisher/domain/stats"
)

// binarize maps a series to 0/1 indicators. A series with exactly two distinct
// values keeps them as the two levels; anything else is split at the median
// (values above it become 1). NaN becomes -1 and is ignored by crosstab.
func binarize(data []float64) []int {
	out := make([]int, len(data))

	clean := make(mstats.Float64Data, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		for i := range out {
			out[i] = -1
		}
		return out
	}

	lo, hi, distinct := clean[0], clean[0], 1
	for _, v := range clean[1:] {
		if v != lo && v != hi {
			distinct++
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	cut := lo
	if distinct > 2 {
		cut, _ = mstats.Median(clean)
	}
	for i, v := range data {
		switch {
		case math.IsNaN(v):
			out[i] = -1
		case v > cut:
			out[i] = 1
		}
	}
	return out
}

// crosstab counts paired indicators into a table laid out
//
//	x=1,y=1  x=1,y=0
//	x=0,y=1  x=0,y=0
//
// so positive association puts the mass on the diagonal a, d.
func crosstab(x, y []int) stats.ContingencyTable {
	var t stats.ContingencyTable
	for i := range x {
		if x[i] < 0 || y[i] < 0 {
			continue
		}
		switch {
		case x[i] == 1 && y[i] == 1:
			t.A++
		case x[i] == 1:
			t.B++
		case y[i] == 1:
			t.C++
		default:
			t.D++
		}
	}
	return t
}

// pairTable binarizes both series and cross-tabulates them.
func pairTable(x, y []float64) stats.ContingencyTable {
	return crosstab(binarize(x), binarize(y))
}
