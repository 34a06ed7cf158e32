package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Drivers accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// OpenOptions selects and configures a backend.
type OpenOptions struct {
	Driver     string
	DSN        string
	SQLitePath string
	Timeout    time.Duration
	// Migrate applies pending Postgres migrations. SQLite is always migrated.
	Migrate bool
}

// Open returns the Store for opts.Driver.
func Open(ctx context.Context, opts OpenOptions) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, opts.SQLitePath, opts.Timeout)
	case DriverPostgres, "":
		pool, err := pgxpool.New(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("create db pool: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if opts.Migrate {
			if err := MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return NewPostgres(pool, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
