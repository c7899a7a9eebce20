package stats

import (
	"math"
	"strconv"

	"fastfisher/domain/core"
)

// MaxCount bounds a single cell so that every count and marginal is exactly
// representable as a float64.
const MaxCount = 1 << 50

var cellNames = [4]string{"a", "b", "c", "d"}

// NewTable validates four counts and returns the table they describe.
func NewTable(a, b, c, d int) (ContingencyTable, error) {
	cells := [4]int{a, b, c, d}
	for i, v := range cells {
		if err := checkCount(cellNames[i], int64(v)); err != nil {
			return ContingencyTable{}, err
		}
	}
	return ContingencyTable{A: a, B: b, C: c, D: d}, nil
}

// MustTable is NewTable for literals known to be valid; it panics otherwise.
func MustTable(a, b, c, d int) ContingencyTable {
	t, err := NewTable(a, b, c, d)
	if err != nil {
		panic(err)
	}
	return t
}

// TableFromInts validates a row-major 2×2 integer matrix.
func TableFromInts(m [][]int) (ContingencyTable, error) {
	if err := checkShape(len(m), func(i int) int { return len(m[i]) }); err != nil {
		return ContingencyTable{}, err
	}
	return NewTable(m[0][0], m[0][1], m[1][0], m[1][1])
}

// TableFromMatrix validates a row-major 2×2 matrix of float counts, the shape
// reference libraries accept. Anything but 2×2 is rejected rather than reinterpreted.
func TableFromMatrix(m [][]float64) (ContingencyTable, error) {
	if err := checkShape(len(m), func(i int) int { return len(m[i]) }); err != nil {
		return ContingencyTable{}, err
	}

	var cells [4]int
	for i, v := range [4]float64{m[0][0], m[0][1], m[1][0], m[1][1]} {
		n, err := floatCount(cellNames[i], v)
		if err != nil {
			return ContingencyTable{}, err
		}
		cells[i] = n
	}
	return ContingencyTable{A: cells[0], B: cells[1], C: cells[2], D: cells[3]}, nil
}

// OddsRatio returns (a·d)/(b·c). A zero row or column sum yields NaN; otherwise
// a zero denominator yields +Inf.
func (t ContingencyTable) OddsRatio() float64 {
	if t.Marginals().Degenerate() {
		return math.NaN()
	}
	den := float64(t.B) * float64(t.C)
	if den == 0 {
		return math.Inf(1)
	}
	return float64(t.A) * float64(t.D) / den
}

func checkShape(rows int, cols func(int) int) error {
	if rows != 2 {
		return core.NewInvalidTableError("table", strconv.Itoa(rows)+" rows", "must have exactly 2 rows")
	}
	for i := 0; i < rows; i++ {
		if n := cols(i); n != 2 {
			return core.NewInvalidTableError("row "+strconv.Itoa(i+1), strconv.Itoa(n)+" columns", "must have exactly 2 columns")
		}
	}
	return nil
}

func checkCount(name string, v int64) error {
	if v < 0 {
		return core.NewInvalidTableError(name, strconv.FormatInt(v, 10), "must be non-negative")
	}
	if v > MaxCount {
		return core.NewInvalidTableError(name, strconv.FormatInt(v, 10), "exceeds maximum count "+strconv.FormatInt(MaxCount, 10))
	}
	return nil
}

func floatCount(name string, v float64) (int, error) {
	value := strconv.FormatFloat(v, 'g', -1, 64)
	switch {
	case math.IsNaN(v):
		return 0, core.NewInvalidTableError(name, value, "must be a number")
	case math.IsInf(v, 0):
		return 0, core.NewInvalidTableError(name, value, "must be finite")
	case v != math.Trunc(v):
		return 0, core.NewInvalidTableError(name, value, "must be an integer")
	case v < 0:
		return 0, core.NewInvalidTableError(name, value, "must be non-negative")
	case v > MaxCount:
		return 0, core.NewInvalidTableError(name, value, "exceeds maximum count "+strconv.FormatInt(MaxCount, 10))
	}
	return int(v), nil
}
