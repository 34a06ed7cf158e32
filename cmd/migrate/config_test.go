package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "/custom/migrations")
	t.Setenv("DB_DSN", "postgres://u:p@db:5432/x")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MigrationsDir != "/custom/migrations" {
		t.Fatalf("expected MIGRATIONS_DIR override, got %q", cfg.MigrationsDir)
	}
	if cfg.DatabaseDSN != "postgres://u:p@db:5432/x" {
		t.Fatalf("expected DB_DSN override, got %q", cfg.DatabaseDSN)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	t.Setenv("MIGRATIONS_DIR", "")
	_ = os.Unsetenv("MIGRATIONS_DIR")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MigrationsDir != "internal/store/migrations/postgres" {
		t.Fatalf("expected default migrations dir, got %q", cfg.MigrationsDir)
	}
}

func TestLoadConfig_DoesNotOverrideExistingEnv(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, ".env")

	if err := os.WriteFile(p, []byte("DB_DSN=from_file\nSQLITE_PATH=from_file.db\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	t.Setenv("DB_DSN", "from_env")
	t.Setenv("SQLITE_PATH", "")
	_ = os.Unsetenv("SQLITE_PATH")

	cwd, _ := os.Getwd()
	_ = os.Chdir(tmp)
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DatabaseDSN != "from_env" {
		t.Fatalf("expected existing env to win, got %q", cfg.DatabaseDSN)
	}
	if cfg.SQLitePath != "from_file.db" {
		t.Fatalf("expected .env value to fill unset vars, got %q", cfg.SQLitePath)
	}
}
