package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fastfisher/adapters/postgres"
	"fastfisher/internal"
	"fastfisher/internal/referee"
	"fastfisher/internal/testkit"
)

func TestImportSummaries(t *testing.T) {
	ctx := context.Background()
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError, true)

	summary, _, err := referee.New(nil, referee.LogBinomialOracle{}, referee.Options{Logger: logger}).
		Compare(ctx, testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Tables(25))
	require.NoError(t, err)
	data, err := json.Marshal(summary)
	require.NoError(t, err)

	dir := t.TempDir()
	nested := filepath.Join(dir, "nightly")
	require.NoError(t, os.Mkdir(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "run.json"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "legacy.json"), []byte(`{"oracle":"rational","samples":10}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"oracle":`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	db, err := postgres.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewComparisonRunRepository(db)

	migrated, skipped, err := importSummaries(ctx, repo, dir, logger)
	require.NoError(t, err)
	assert.Equal(t, 2, migrated)
	assert.Equal(t, 1, skipped)

	stored, err := repo.GetByID(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, summary.Fingerprint, stored.Fingerprint)

	// a second pass finds everything already stored
	migrated, skipped, err = importSummaries(ctx, repo, dir, logger)
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)
	assert.Equal(t, 3, skipped)

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestImportSummaries_MissingDir(t *testing.T) {
	_, _, err := importSummaries(context.Background(), nil, filepath.Join(t.TempDir(), "absent"),
		internal.NewLoggerTo(io.Discard, internal.LogLevelError, true))
	assert.ErrorContains(t, err, "failed to find summary files")
}
