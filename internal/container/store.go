package container

import (
	"context"

	"github.com/jmoiron/sqlx"

	"fastfisher/adapters/postgres"
)

// Store bundles the run history repositories over one connection pool.
type Store struct {
	DB      *sqlx.DB
	Runs    *postgres.ComparisonRunRepository
	Benches *postgres.BenchReportRepository
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// OpenStore connects to the configured database and migrates it. It fails
// with CONFIG_INVALID when no DATABASE_URL is set.
func (c *Container) OpenStore(ctx context.Context) (*Store, error) {
	db, err := postgres.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("run store opened", "driver", c.Config.Database.Driver)
	return &Store{
		DB:      db,
		Runs:    postgres.NewComparisonRunRepository(db),
		Benches: postgres.NewBenchReportRepository(db),
	}, nil
}
