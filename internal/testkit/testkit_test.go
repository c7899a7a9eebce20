package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastfisher/domain/stats"
)

func TestGenerator_Deterministic(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	a := NewGenerator(cfg).Tables(100)
	b := NewGenerator(cfg).Tables(100)
	assert.Equal(t, a, b)

	cfg.Seed = 2
	c := NewGenerator(cfg).Tables(100)
	assert.NotEqual(t, a, c)
}

func TestGenerator_LogUniformRange(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Distribution: LogUniform, Decades: 4, Seed: 3})
	small, large := 0, 0
	for _, tbl := range g.Tables(5000) {
		for _, v := range tbl.Cells() {
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, 9999)
			if v < 10 {
				small++
			}
			if v >= 1000 {
				large++
			}
		}
	}
	// each decade holds about a quarter of the draws
	assert.Greater(t, small, 3000)
	assert.Greater(t, large, 3000)
}

func TestGenerator_Uniform(t *testing.T) {
	g := NewGenerator(GeneratorConfig{Distribution: Uniform, Max: 10, Seed: 5})
	seen := map[int]bool{}
	for _, tbl := range g.Tables(500) {
		for _, v := range tbl.Cells() {
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, 10)
			seen[v] = true
		}
	}
	assert.Len(t, seen, 11)
}

func TestPermutations(t *testing.T) {
	perms := Permutations(stats.MustTable(1, 2, 3, 4))
	letters := map[int]byte{1: 'a', 2: 'b', 3: 'c', 4: 'd'}

	for i, p := range perms {
		var name []byte
		for _, v := range p.Cells() {
			name = append(name, letters[v])
		}
		assert.Equal(t, PermutationNames[i], string(name))
	}
}

func TestPermutations_PreserveFamilyPosition(t *testing.T) {
	for _, tbl := range Combinations(9) {
		lo, hi := tbl.Marginals().Support()
		rank := tbl.A - lo
		size := hi - lo

		for i, p := range Permutations(tbl) {
			plo, phi := p.Marginals().Support()
			require.Equal(t, size, phi-plo, "perm %s of %s", PermutationNames[i], tbl)
			if FlipsTails(i) {
				assert.Equal(t, rank, phi-p.A, "perm %s of %s", PermutationNames[i], tbl)
			} else {
				assert.Equal(t, rank, p.A-plo, "perm %s of %s", PermutationNames[i], tbl)
			}
		}
	}
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, stats.MustTable(4, 3, 2, 1), Canonical(stats.MustTable(1, 2, 3, 4)))

	for _, tbl := range Combinations(7) {
		want := Canonical(tbl)
		for _, p := range Permutations(tbl) {
			assert.Equal(t, want, Canonical(p))
		}
	}
}

func TestCombinations(t *testing.T) {
	all := Combinations(20)
	require.Len(t, all, 4845)
	assert.Equal(t, stats.MustTable(0, 1, 2, 3), all[0])
	assert.Equal(t, stats.MustTable(16, 17, 18, 19), all[len(all)-1])
	assert.Empty(t, Combinations(3))
}

func TestConstantRowSumTables(t *testing.T) {
	tables := ConstantRowSumTables(10, 20)
	require.Len(t, tables, 200)
	for _, tbl := range tables {
		m := tbl.Marginals()
		assert.Equal(t, 10, m.Row1)
		assert.Equal(t, 20, m.Row2)
	}
	assert.Empty(t, ConstantRowSumTables(0, 5))
}

func TestDocumentedDisagreements(t *testing.T) {
	docs, err := DocumentedDisagreements()
	require.NoError(t, err)
	require.Len(t, docs, 8)
	assert.Equal(t, stats.MustTable(2, 3, 0, 2), docs[0].Table)
	assert.Equal(t, stats.MustTable(7, 3, 0, 4), docs[7].Table)
	for _, d := range docs {
		assert.NotEmpty(t, d.Note)
	}

	// callers get their own copy
	docs[0].Note = "changed"
	again, _ := DocumentedDisagreements()
	assert.NotEqual(t, "changed", again[0].Note)
}

func TestParseDocumented_Errors(t *testing.T) {
	_, err := ParseDocumented([]byte("tables:\n  - cells: [1, 2, 3]\n"))
	assert.ErrorContains(t, err, "want 4 cells")

	_, err = ParseDocumented([]byte("tables:\n  - cells: [1, -2, 3, 4]\n"))
	assert.ErrorContains(t, err, "b=-2")

	_, err = ParseDocumented([]byte("tables: [[["))
	assert.Error(t, err)
}
