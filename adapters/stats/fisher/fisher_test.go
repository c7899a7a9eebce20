package fisher

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastfisher/domain/core"
	"fastfisher/domain/stats"
)

func TestAll_KnownTable(t *testing.T) {
	// support weights for (8,2,1,5) over C(16,10) = 8008:
	// a'=3..9 -> 84 882 2646 2940 1260 189 7
	p, err := All(8, 2, 1, 5)
	require.NoError(t, err)

	assert.InDelta(t, 8001.0/8008, p.Less, 1e-12)
	assert.InDelta(t, 196.0/8008, p.Greater, 1e-12)
	assert.InDelta(t, 280.0/8008, p.TwoSided, 1e-12)
}

func TestAll_EmptyTable(t *testing.T) {
	p, err := All(0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, stats.PValues{Less: 1, Greater: 1, TwoSided: 1}, p)
}

func TestTwoSided_ZeroRowOrColumn(t *testing.T) {
	tables := [][4]int{
		{0, 0, 5, 9},
		{5, 9, 0, 0},
		{0, 4, 0, 7},
		{4, 0, 7, 0},
		{0, 0, 0, 12},
	}
	for _, c := range tables {
		p, err := TwoSided(c[0], c[1], c[2], c[3])
		require.NoError(t, err)
		assert.Equal(t, 1.0, p, "table %v", c)
	}
}

func TestSingleAlternativesMatchAll(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	e := New()

	for i := 0; i < 500; i++ {
		a, b, c, d := rng.Intn(500), rng.Intn(500), rng.Intn(500), rng.Intn(500)

		all, err := e.All(a, b, c, d)
		require.NoError(t, err)

		less, _ := e.Less(a, b, c, d)
		greater, _ := e.Greater(a, b, c, d)
		two, _ := e.TwoSided(a, b, c, d)

		// bit-identical, not approximately equal
		if less != all.Less || greater != all.Greater || two != all.TwoSided {
			t.Fatalf("(%d,%d,%d,%d): singles (%v,%v,%v) != all %+v", a, b, c, d, less, greater, two, all)
		}
	}
}

func TestPValueInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New()

	for i := 0; i < 2000; i++ {
		cells := [4]int{}
		for j := range cells {
			cells[j] = int(math.Pow(10, rng.Float64()*4)) - 1
		}
		p, err := e.All(cells[0], cells[1], cells[2], cells[3])
		require.NoError(t, err)

		for _, v := range []float64{p.Less, p.Greater, p.TwoSided} {
			require.False(t, math.IsNaN(v), "table %v", cells)
			require.GreaterOrEqual(t, v, 0.0, "table %v", cells)
			require.LessOrEqual(t, v, 1.0, "table %v", cells)
		}
		// the tail pointing away from the mode is fully contained in the two-sided sum
		require.GreaterOrEqual(t, p.TwoSided, math.Min(p.Less, p.Greater), "table %v", cells)
		// both tails contain the observed point
		require.GreaterOrEqual(t, p.Less+p.Greater, 1.0-1e-9, "table %v", cells)
	}
}

func TestTwoSided_CanBeBelowOppositeTail(t *testing.T) {
	// support a'=0..2 with weights 1,4,1 over 6; observed a'=0
	p, err := All(0, 2, 2, 0)
	require.NoError(t, err)

	assert.InDelta(t, 1.0/6, p.Less, 1e-14)
	assert.InDelta(t, 1.0, p.Greater, 1e-14)
	assert.InDelta(t, 2.0/6, p.TwoSided, 1e-14)
	assert.Less(t, p.TwoSided, p.Greater)
}

func TestTwoSided_TiesAreIncluded(t *testing.T) {
	// (2,3,0,2): weights over C(7,5)=21 are 1, 10, 10; a'=1 ties the observed a'=2
	p, err := TwoSided(2, 3, 0, 2)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p, 1e-12)
}

func TestTolerance(t *testing.T) {
	assert.Equal(t, DefaultTolerance, New().Tolerance())
	assert.Equal(t, 1e-4, New(WithTolerance(1e-4)).Tolerance())
	assert.Equal(t, 0.0, New(WithTolerance(0)).Tolerance())
	assert.Equal(t, DefaultTolerance, New(WithTolerance(-1)).Tolerance())
	assert.Equal(t, DefaultTolerance, New(WithTolerance(math.NaN())).Tolerance())
	assert.Equal(t, DefaultTolerance, New(WithTolerance(math.Inf(1))).Tolerance())
}

func TestBackendsAgreeBitForBit(t *testing.T) {
	engines := map[string]*Engine{
		"shared":  New(),
		"fresh":   New(WithLogFactorials(NewLogFactorialCache(0))),
		"private": New(WithLogFactorials(NewPrivateLogFactorials(0))),
		"direct":  New(WithLogFactorials(DirectLogFactorials{})),
		"capped":  New(WithLogFactorials(NewLogFactorialCache(100))),
	}

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 200; i++ {
		tbl := stats.MustTable(rng.Intn(2000), rng.Intn(2000), rng.Intn(2000), rng.Intn(2000))
		want := engines["shared"].Test(tbl)
		for name, e := range engines {
			if got := e.Test(tbl); got != want {
				t.Fatalf("%s: table %s got %+v want %+v", name, tbl, got, want)
			}
		}
	}
}

func TestLargeBalancedTable(t *testing.T) {
	start := time.Now()
	p, err := All(10000, 10000, 10000, 10000)
	require.NoError(t, err)
	elapsed := time.Since(start)

	assert.InDelta(t, 1.0, p.TwoSided, 1e-6)
	assert.Greater(t, p.Less, 0.5)
	assert.Greater(t, p.Greater, 0.5)
	assert.InDelta(t, p.Less, p.Greater, 1e-9, "balanced table is symmetric")
	assert.Less(t, elapsed, 5*time.Second)
}

func TestLargeSkewedTables(t *testing.T) {
	for _, c := range [][4]int{
		{100, 1000, 10000, 100000},
		{10000, 100, 1000, 100000},
	} {
		p, err := All(c[0], c[1], c[2], c[3])
		require.NoError(t, err)
		for _, v := range []float64{p.Less, p.Greater, p.TwoSided} {
			assert.False(t, math.IsNaN(v))
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	// strong positive association: far right tail
	p, err := All(10000, 100, 1000, 100000)
	require.NoError(t, err)
	assert.Less(t, p.Greater, 1e-300)
	assert.InDelta(t, 1.0, p.Less, 1e-9)
}

func TestLargeTotalSmallSupport(t *testing.T) {
	// n = 1.2e8 but only three admissible top-left values
	start := time.Now()
	p, err := All(1, 60_000_000, 1, 60_000_000)
	require.NoError(t, err)
	elapsed := time.Since(start)

	direct, err := New(WithLogFactorials(DirectLogFactorials{})).All(1, 60_000_000, 1, 60_000_000)
	require.NoError(t, err)
	assert.Equal(t, direct, p)
	for _, v := range []float64{p.Less, p.Greater, p.TwoSided} {
		assert.Greater(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Less(t, elapsed, 500*time.Millisecond)
	assert.LessOrEqual(t, SharedCache().Len(), DefaultCacheLimit+1)
}

func TestInvalidCounts(t *testing.T) {
	_, err := All(1, -1, 2, 3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidTable))
	assert.Contains(t, err.Error(), "b=-1")

	_, err = Less(-5, 0, 0, 0)
	assert.True(t, core.IsInvalidTableError(err))
	_, err = Greater(0, 0, 0, -5)
	assert.True(t, core.IsInvalidTableError(err))
	_, err = TwoSided(0, 0, -5, 0)
	assert.True(t, core.IsInvalidTableError(err))
}

func TestExact(t *testing.T) {
	tests := []struct {
		name        string
		matrix      [][]float64
		alternative string
		wantOR      float64
		wantP       float64
	}{
		{"two-sided", [][]float64{{8, 2}, {1, 5}}, "two-sided", 20, 280.0 / 8008},
		{"less", [][]float64{{8, 2}, {1, 5}}, "less", 20, 8001.0 / 8008},
		{"greater", [][]float64{{8, 2}, {1, 5}}, "greater", 20, 196.0 / 8008},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			or, p, err := Exact(tt.matrix, tt.alternative)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantOR, or, 1e-12)
			assert.InDelta(t, tt.wantP, p, 1e-12)
		})
	}
}

func TestExact_DegenerateOddsRatios(t *testing.T) {
	or, p, err := Exact([][]float64{{4, 0}, {3, 7}}, "two-sided")
	require.NoError(t, err)
	assert.True(t, math.IsInf(or, 1))
	assert.Greater(t, p, 0.0)

	or, p, err = Exact([][]float64{{0, 0}, {3, 7}}, "two-sided")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(or))
	assert.Equal(t, 1.0, p)
}

func TestExact_RejectsBadInput(t *testing.T) {
	_, _, err := Exact([][]float64{{1, 2}}, "less")
	assert.True(t, core.IsInvalidTableError(err))

	_, _, err = Exact([][]float64{{1, 2}, {3, 4.5}}, "less")
	assert.True(t, core.IsInvalidTableError(err))

	_, _, err = Exact([][]float64{{1, 2}, {3, 4}}, "sideways")
	assert.True(t, errors.Is(err, core.ErrInvalidAlternative))
}

func BenchmarkAll(b *testing.B) {
	cases := []struct {
		name  string
		cells [4]int
	}{
		{"small", [4]int{8, 2, 1, 5}},
		{"skewed", [4]int{100, 1000, 10000, 100000}},
		{"balanced", [4]int{10000, 10000, 10000, 10000}},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = All(c.cells[0], c.cells[1], c.cells[2], c.cells[3])
			}
		})
	}
}
