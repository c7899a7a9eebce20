package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastfisher/internal/referee"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "ERROR")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTestCmd(t *testing.T) {
	out, err := run(t, "test", "8", "2", "1", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "table       (8,2,1,5)")
	assert.Contains(t, out, "odds ratio  20")

	out, err = run(t, "test", "8", "2", "1", "5", "--alternative", "greater")
	require.NoError(t, err)
	p, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.024475524475524476, p, 1e-12)

	out, err = run(t, "test", "8", "2", "1", "5", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"two_sided"`)
}

func TestTestCmd_Errors(t *testing.T) {
	_, err := run(t, "test", "--", "8", "-2", "1", "5")
	assert.ErrorContains(t, err, "b=-2")

	_, err = run(t, "test", "8", "two", "1", "5")
	assert.ErrorContains(t, err, `b="two"`)

	_, err = run(t, "test", "8", "2", "1")
	assert.Error(t, err)

	_, err = run(t, "test", "8", "2", "1", "5", "--alternative", "up")
	assert.Error(t, err)
}

func TestExactCmd(t *testing.T) {
	out, err := run(t, "exact", "[[8, 2], [1, 5]]")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "odds_ratio=20 p_value=0.0349650349650"), out)

	out, err = run(t, "exact", `{"table": [[8, 2], [1, 5]], "alternative": "less"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "p_value=0.99912587412587")

	out, err = run(t, "exact", "[[0, 0], [3, 7]]")
	require.NoError(t, err)
	assert.Equal(t, "odds_ratio=NaN p_value=1\n", out)

	_, err = run(t, "exact", "[[8, 2], [1]]")
	assert.Error(t, err)
	_, err = run(t, "exact", "[[8, 2], [1, 5]")
	assert.ErrorContains(t, err, "not valid JSON")
}

func TestBatchCmd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "tables.csv")
	require.NoError(t, os.WriteFile(input, []byte("label,a,b,c,d\ntea,8,2,1,5\nzero,4,0,3,7\n"), 0o644))

	out, err := run(t, "batch", input)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "label,a,b,c,d,odds_ratio,p_less,p_greater,p_two_sided", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "tea,8,2,1,5,20,"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "zero,4,0,3,7,inf,"), lines[2])

	output := filepath.Join(dir, "results.xlsx")
	_, err = run(t, "batch", input, output)
	require.NoError(t, err)
	assert.FileExists(t, output)
}

func TestCompareCmd(t *testing.T) {
	out, err := run(t, "compare", "--samples", "200", "--strict")
	require.NoError(t, err)
	assert.Contains(t, out, "| samples | 200 |")
	assert.Contains(t, out, "| failures | 0 |")
	assert.Contains(t, out, "two-tailed")

	out, err = run(t, "compare", "--samples", "100", "--uniform-max", "30", "--oracle", "rational-tolerant")
	require.NoError(t, err)
	assert.Contains(t, out, "| oracle | rational(ε=1e-07) |")

	_, err = run(t, "compare", "--oracle", "abacus")
	assert.ErrorContains(t, err, "unknown oracle")
}

func TestExceptionsCmd(t *testing.T) {
	out, err := run(t, "exceptions")
	require.NoError(t, err)
	assert.Contains(t, out, "(2,3,0,2)")
	assert.Contains(t, out, "(7,3,0,4)")
}

func TestBenchCmd(t *testing.T) {
	htmlPath := filepath.Join(t.TempDir(), "bench.html")
	out, err := run(t, "bench", "--iterations", "2", "--oracles", "log-binomial", "--html", htmlPath)
	require.NoError(t, err)
	for _, name := range []string{"table", "local", "lgamma", "private", "log-binomial", "right-tailed"} {
		assert.Contains(t, out, name)
	}

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<table>")
}

func TestSensesCmd(t *testing.T) {
	var b strings.Builder
	b.WriteString("treated,recovered\n")
	for i := 0; i < 40; i++ {
		treated := i % 2
		recovered := treated
		if i%5 == 0 {
			recovered = 1 - treated
		}
		b.WriteString(strconv.Itoa(treated) + "," + strconv.Itoa(recovered) + "\n")
	}
	path := filepath.Join(t.TempDir(), "trial.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	out, err := run(t, "senses", path, "treated", "recovered")
	require.NoError(t, err)
	assert.Contains(t, out, "fisher_exact")
	assert.Contains(t, out, "chi_square")

	_, err = run(t, "senses", path, "treated", "dose")
	assert.Error(t, err)
}

func TestOraclesCmd(t *testing.T) {
	out, err := run(t, "oracles")
	require.NoError(t, err)
	assert.Contains(t, out, "rational-tolerant")
	assert.Contains(t, out, "log-binomial")
}

func TestCompareCmd_JSON(t *testing.T) {
	out, err := run(t, "compare", "--samples", "30", "--json")
	require.NoError(t, err)

	var summary referee.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 30, summary.Samples+summary.Skipped)
	assert.Equal(t, "log-binomial", summary.Oracle)
	assert.NotEmpty(t, summary.RunID)
}
