package stats

import (
	"fmt"
	"strings"

	"fastfisher/domain/core"
)

// ============================================================================
// STABLE PRIMITIVES (Canonical, never change)
// ============================================================================

// ContingencyTable is a 2×2 table of non-negative counts laid out as
//
//	a b
//	c d
//
// Build one through NewTable or TableFromMatrix; the zero value is the empty table.
type ContingencyTable struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
	D int `json:"d"`
}

// Marginals are the row and column sums of a table. Tables sharing marginals
// are support-equivalent.
type Marginals struct {
	Row1 int `json:"row1"` // a+b
	Row2 int `json:"row2"` // c+d
	Col1 int `json:"col1"` // a+c
	Col2 int `json:"col2"` // b+d
	N    int `json:"n"`
}

// Marginals returns the row sums, column sums and total of the table.
func (t ContingencyTable) Marginals() Marginals {
	return Marginals{
		Row1: t.A + t.B,
		Row2: t.C + t.D,
		Col1: t.A + t.C,
		Col2: t.B + t.D,
		N:    t.A + t.B + t.C + t.D,
	}
}

// Support returns the inclusive range of top-left values reachable with these marginals.
func (m Marginals) Support() (lo, hi int) {
	lo = m.Row1 - m.Col2
	if lo < 0 {
		lo = 0
	}
	hi = m.Row1
	if m.Col1 < hi {
		hi = m.Col1
	}
	return lo, hi
}

// SupportSize is the number of tables sharing these marginals.
func (m Marginals) SupportSize() int {
	lo, hi := m.Support()
	return hi - lo + 1
}

// TableAt returns the member of the fixed-marginal family whose top-left cell is a.
// a must lie inside Support.
func (m Marginals) TableAt(a int) ContingencyTable {
	return ContingencyTable{
		A: a,
		B: m.Row1 - a,
		C: m.Col1 - a,
		D: m.Col2 - m.Row1 + a,
	}
}

// Degenerate reports whether any row or column sum is zero. Such tables carry
// no detectable association.
func (m Marginals) Degenerate() bool {
	return m.Row1 == 0 || m.Row2 == 0 || m.Col1 == 0 || m.Col2 == 0
}

// String renders the table as (a,b,c,d)
func (t ContingencyTable) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", t.A, t.B, t.C, t.D)
}

// Cells returns the counts in row-major order
func (t ContingencyTable) Cells() [4]int {
	return [4]int{t.A, t.B, t.C, t.D}
}

// Matrix returns the table as a row-major 2×2 matrix
func (t ContingencyTable) Matrix() [][]int {
	return [][]int{{t.A, t.B}, {t.C, t.D}}
}

// ============================================================================
// ALTERNATIVES
// ============================================================================

// Alternative selects the tail of the test. The set is closed.
type Alternative int

const (
	// LessEqual is the left-tailed test: P(a' <= a)
	LessEqual Alternative = iota
	// GreaterEqual is the right-tailed test: P(a' >= a)
	GreaterEqual
	// TwoSided sums every table at most as likely as the observed one
	TwoSided
)

// Alternatives lists every alternative in canonical order
var Alternatives = []Alternative{LessEqual, GreaterEqual, TwoSided}

// String returns the reference-library name of the alternative
func (a Alternative) String() string {
	switch a {
	case LessEqual:
		return "less"
	case GreaterEqual:
		return "greater"
	case TwoSided:
		return "two-sided"
	default:
		return fmt.Sprintf("Alternative(%d)", int(a))
	}
}

// Tail returns the benchmark label of the alternative
func (a Alternative) Tail() string {
	switch a {
	case LessEqual:
		return "left-tailed"
	case GreaterEqual:
		return "right-tailed"
	case TwoSided:
		return "two-tailed"
	default:
		return a.String()
	}
}

// ParseAlternative accepts the reference names ("less", "greater", "two-sided")
// and the tail labels ("left", "right", "two").
func ParseAlternative(s string) (Alternative, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "less", "left", "left-tailed", "l":
		return LessEqual, nil
	case "greater", "right", "right-tailed", "r":
		return GreaterEqual, nil
	case "two-sided", "two_sided", "two", "two-tailed", "t":
		return TwoSided, nil
	default:
		return 0, core.NewInvalidAlternativeError(s)
	}
}

// ============================================================================
// RESULTS
// ============================================================================

// PValues holds the three p-values of one support walk
type PValues struct {
	Less     float64 `json:"less"`
	Greater  float64 `json:"greater"`
	TwoSided float64 `json:"two_sided"`
}

// Get returns the p-value for an alternative
func (p PValues) Get(alt Alternative) float64 {
	switch alt {
	case LessEqual:
		return p.Less
	case GreaterEqual:
		return p.Greater
	default:
		return p.TwoSided
	}
}
