package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"libraryapi/internal/platform/config"
	"libraryapi/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, cfgErr := loadConfig()

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the library database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfgErr
		},
	}
	root.PersistentFlags().StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "Postgres connection string (DB_DSN)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProvider(cmd.Context(), cfg.DatabaseDSN, func(p *goose.Provider) error {
					results, err := p.Up(cmd.Context())
					if err != nil {
						return fmt.Errorf("run migrations: %w", err)
					}
					printResults(cmd.OutOrStdout(), results)
					fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProvider(cmd.Context(), cfg.DatabaseDSN, func(p *goose.Provider) error {
					result, err := p.Down(cmd.Context())
					if err != nil {
						if errors.Is(err, goose.ErrNoNextVersion) {
							fmt.Fprintln(cmd.OutOrStdout(), "Nothing to roll back")
							return nil
						}
						return fmt.Errorf("rollback migrations: %w", err)
					}
					printResults(cmd.OutOrStdout(), []*goose.MigrationResult{result})
					fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back successfully")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withProvider(cmd.Context(), cfg.DatabaseDSN, func(p *goose.Provider) error {
					statuses, err := p.Status(cmd.Context())
					if err != nil {
						return fmt.Errorf("check migration status: %w", err)
					}
					printStatus(cmd.OutOrStdout(), statuses)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a new SQL migration in MIGRATIONS_DIR",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				goose.SetSequential(true)
				if err := goose.Create(nil, cfg.MigrationsDir, args[0], "sql"); err != nil {
					return fmt.Errorf("create migration: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Migration created: %s\n", args[0])
				return nil
			},
		},
		newSQLiteCmd(&cfg),
	)
	return root
}

func newSQLiteCmd(cfg *migrateConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlite",
		Short: "Create or upgrade a SQLite database file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.OpenSQLite(cmd.Context(), cfg.SQLitePath, 5*time.Second)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "SQLite schema ready at %s\n", cfg.SQLitePath)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.SQLitePath, "path", cfg.SQLitePath, "SQLite database file (SQLITE_PATH)")
	return cmd
}

func withProvider(ctx context.Context, dsn string, fn func(*goose.Provider) error) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to database (%s): %w", config.RedactDSN(dsn), err)
	}
	defer pool.Close()

	provider, db, err := store.NewPostgresMigrator(pool)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(provider)
}

func printResults(w io.Writer, results []*goose.MigrationResult) {
	for _, r := range results {
		if r == nil || r.Source == nil {
			continue
		}
		fmt.Fprintf(w, "%-4s %05d %s (%s)\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration.Round(time.Millisecond))
	}
}

func printStatus(w io.Writer, statuses []*goose.MigrationStatus) {
	fmt.Fprintf(w, "%-8s %-10s %-20s %s\n", "VERSION", "STATE", "APPLIED AT", "FILE")
	for _, s := range statuses {
		appliedAt := "-"
		if !s.AppliedAt.IsZero() {
			appliedAt = s.AppliedAt.UTC().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%-8d %-10s %-20s %s\n", s.Source.Version, s.State, appliedAt, s.Source.Path)
	}
}
