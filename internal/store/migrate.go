package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"libraryapi/internal/store/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// NewPostgresMigrator returns a goose provider over the embedded Postgres
// migrations. The returned *sql.DB borrows connections from pool; closing it
// leaves the pool open.
func NewPostgresMigrator(pool *pgxpool.Pool) (*goose.Provider, *sql.DB, error) {
	db := stdlib.OpenDBFromPool(pool)
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Postgres())
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, db, nil
}

// MigratePostgres applies every pending Postgres migration.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	provider, db, err := NewPostgresMigrator(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply postgres migrations: %w", err)
	}
	return nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	return migrateFS(ctx, goose.DialectSQLite3, db, migrations.SQLite())
}

func migrateFS(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
