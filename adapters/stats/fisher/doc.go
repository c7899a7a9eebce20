// Package fisher computes exact p-values of Fisher's test on 2×2 contingency tables.
//
// The probability of a table with fixed marginals is hypergeometric:
//
//	P(a) = r1! r2! c1! c2! / (n! a! b! c! d!)
//
// and is evaluated in log space from a table of ln(k!) so that no factorial is
// ever formed. One walk over the support yields the left-tailed, right-tailed
// and two-sided p-values together:
//
//	p, err := fisher.All(8, 2, 1, 5)
//	// p.Less, p.Greater, p.TwoSided
//
// The two-sided p-value sums every table whose probability does not exceed the
// observed one by more than a relative tolerance (DefaultTolerance), so
// mathematically tied tables are not lost to rounding.
package fisher
