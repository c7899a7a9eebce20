package referee

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastfisher/adapters/stats/fisher"
	"fastfisher/domain/core"
	"fastfisher/domain/stats"
	"fastfisher/internal/testkit"
)

func TestRationalOracle_KnownTable(t *testing.T) {
	// weights C(10,a')·C(6,9−a') for a'=3..9 over C(16,9) = 11440 are
	// 120 1260 3780 4200 1800 270 10, i.e. 10/7 of the C(16,10) = 8008 weights
	p, err := RationalOracle{}.PValues(stats.MustTable(8, 2, 1, 5))
	require.NoError(t, err)

	assert.Equal(t, 8001.0/8008, p.Less)
	assert.Equal(t, 196.0/8008, p.Greater)
	assert.Equal(t, 280.0/8008, p.TwoSided)

	total := RationalOracle{}.Total(stats.MustTable(8, 2, 1, 5).Marginals())
	assert.Equal(t, 0, total.Cmp(big.NewInt(11440)))
}

func TestRationalOracle_Degenerate(t *testing.T) {
	for _, tbl := range []stats.ContingencyTable{
		stats.MustTable(0, 0, 0, 0),
		stats.MustTable(0, 0, 4, 9),
		stats.MustTable(3, 0, 8, 0),
	} {
		p, err := RationalOracle{}.PValues(tbl)
		require.NoError(t, err)
		assert.Equal(t, stats.PValues{Less: 1, Greater: 1, TwoSided: 1}, p, "table %s", tbl)
	}
}

func TestRationalOracle_StrictVersusTolerant(t *testing.T) {
	// (2,3,0,2): weights 1, 10, 10; the tie is exact so both rules include it
	tbl := stats.MustTable(2, 3, 0, 2)
	strict, err := RationalOracle{}.PValues(tbl)
	require.NoError(t, err)
	tolerant, err := RationalOracle{Tolerance: 1e-7}.PValues(tbl)
	require.NoError(t, err)

	assert.Equal(t, 1.0, strict.TwoSided)
	assert.Equal(t, strict, tolerant)
}

func TestRationalOracle_MaxTotal(t *testing.T) {
	_, err := RationalOracle{MaxTotal: 100}.PValues(stats.MustTable(50, 50, 1, 0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrOracleUnsupported))

	_, err = RationalOracle{MaxTotal: 100}.PValues(stats.MustTable(25, 25, 25, 25))
	assert.NoError(t, err)
}

func TestEngineMatchesRationalOracle(t *testing.T) {
	oracle := RationalOracle{Tolerance: fisher.DefaultTolerance}
	approx := cmpopts.EquateApprox(1e-10, 1e-15)

	for _, tbl := range testkit.Combinations(20) {
		want, err := oracle.PValues(tbl)
		require.NoError(t, err)
		got := fisher.Default.Test(tbl)
		if diff := cmp.Diff(want, got, approx); diff != "" {
			t.Fatalf("table %s (-rational +engine):\n%s", tbl, diff)
		}
	}
}

func TestEngineMatchesLogBinomialOracle(t *testing.T) {
	gen := testkit.NewGenerator(testkit.DefaultGeneratorConfig())
	approx := cmpopts.EquateApprox(1e-6, 1e-9)

	for _, tbl := range gen.Tables(500) {
		want, err := LogBinomialOracle{}.PValues(tbl)
		require.NoError(t, err)
		got := fisher.Default.Test(tbl)
		if diff := cmp.Diff(want, got, approx); diff != "" {
			t.Fatalf("table %s (-log-binomial +engine):\n%s", tbl, diff)
		}
	}
}

func TestLogBinomialOracle_Degenerate(t *testing.T) {
	p, err := LogBinomialOracle{}.PValues(stats.MustTable(0, 7, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, stats.PValues{Less: 1, Greater: 1, TwoSided: 1}, p)
}

func TestGetOracleByName(t *testing.T) {
	tests := []struct {
		name     string
		wantName string
		wantErr  bool
	}{
		{"rational", "rational", false},
		{" Exact ", "rational", false},
		{"rational-tolerant", "rational(ε=1e-07)", false},
		{"gonum", "log-binomial", false},
		{"abacus", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := GetOracleByName(tt.name, 0)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, o.Name())
		})
	}

	o, _ := GetOracleByName("rational", 0)
	assert.Equal(t, RATIONAL_MAX_TOTAL, o.(RationalOracle).MaxTotal)
	assert.Len(t, GetOracleConfigs(), 3)
}
