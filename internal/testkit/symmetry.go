package testkit

import (
	"fastfisher/domain/stats"
)

// PermutationNames lists the cell orders that leave the two-sided p-value
// unchanged, in the order Permutations returns them.
var PermutationNames = [8]string{"abcd", "acbd", "badc", "bdac", "cadb", "cdab", "dbca", "dcba"}

// mirrored marks the permutations that swap exactly one pair of rows or
// columns. They map a' to r1-a', so the one-sided p-values trade places.
var mirrored = [8]bool{false, false, true, true, true, true, false, false}

// Permutations returns the eight equivalent rearrangements of t: identity,
// transpose, the row and column swaps, and their compositions.
func Permutations(t stats.ContingencyTable) [8]stats.ContingencyTable {
	a, b, c, d := t.A, t.B, t.C, t.D
	return [8]stats.ContingencyTable{
		{A: a, B: b, C: c, D: d},
		{A: a, B: c, C: b, D: d},
		{A: b, B: a, C: d, D: c},
		{A: b, B: d, C: a, D: c},
		{A: c, B: a, C: d, D: b},
		{A: c, B: d, C: a, D: b},
		{A: d, B: b, C: c, D: a},
		{A: d, B: c, C: b, D: a},
	}
}

// FlipsTails reports whether permutation i exchanges the less and greater
// p-values.
func FlipsTails(i int) bool {
	return mirrored[i]
}

// Canonical returns the lexicographically largest permutation of t. Equivalent
// tables share a canonical form, so results can be cached per family.
func Canonical(t stats.ContingencyTable) stats.ContingencyTable {
	perms := Permutations(t)
	best := perms[0]
	for _, p := range perms[1:] {
		if lexGreater(p, best) {
			best = p
		}
	}
	return best
}

func lexGreater(x, y stats.ContingencyTable) bool {
	xs, ys := x.Cells(), y.Cells()
	for i := range xs {
		if xs[i] != ys[i] {
			return xs[i] > ys[i]
		}
	}
	return false
}

// Combinations returns every strictly increasing 4-tuple drawn from [0, limit),
// in lexicographic order.
func Combinations(limit int) []stats.ContingencyTable {
	var out []stats.ContingencyTable
	for a := 0; a < limit; a++ {
		for b := a + 1; b < limit; b++ {
			for c := b + 1; c < limit; c++ {
				for d := c + 1; d < limit; d++ {
					out = append(out, stats.ContingencyTable{A: a, B: b, C: c, D: d})
				}
			}
		}
	}
	return out
}

// ConstantRowSumTables returns every table (i, r1-i, j, r2-j) with
// 0 <= i < r1 and 0 <= j < r2.
func ConstantRowSumTables(r1, r2 int) []stats.ContingencyTable {
	out := make([]stats.ContingencyTable, 0, max(r1, 0)*max(r2, 0))
	for i := 0; i < r1; i++ {
		for j := 0; j < r2; j++ {
			out = append(out, stats.ContingencyTable{A: i, B: r1 - i, C: j, D: r2 - j})
		}
	}
	return out
}
