package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"fastfisher/internal/errors"
	"fastfisher/internal/migration"
)

// DefaultDriver is the database/sql driver registered by this package.
const DefaultDriver = "postgres"

// Open connects to the database, verifies the connection and runs the
// migrations. Any registered sqlx-compatible driver may be named; an empty
// driver selects DefaultDriver.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	if dsn == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}
