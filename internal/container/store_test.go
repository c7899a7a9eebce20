package container

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"fastfisher/internal/config"
	"fastfisher/internal/errors"
	"fastfisher/internal/testkit"
)

func TestOpenStore(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "ERROR"
	cfg.Database = config.DatabaseConfig{Driver: "sqlite", URL: filepath.Join(t.TempDir(), "store.db")}

	c, err := New(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	store, err := c.OpenStore(ctx)
	require.NoError(t, err)
	defer store.Close()

	summary, _, err := c.Referee.Compare(ctx, testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Tables(20))
	require.NoError(t, err)
	require.NoError(t, store.Runs.Save(ctx, summary))

	got, err := store.Runs.GetByID(ctx, summary.RunID)
	require.NoError(t, err)
	assert.Equal(t, summary.Fingerprint, got.Fingerprint)
	assert.Equal(t, 20, got.Samples)
}

func TestOpenStore_RequiresURL(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "ERROR"

	c, err := New(cfg)
	require.NoError(t, err)

	_, err = c.OpenStore(context.Background())
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
