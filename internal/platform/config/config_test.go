package config

import (
	"testing"
	"time"

	"libraryapi/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, store.DriverPostgres, cfg.StorageDriver)
	assert.Equal(t, 3*time.Second, cfg.DBTimeout)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.False(t, cfg.AdminSignupEnabled, "self-service admin signup is opt-in")
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/lib.db")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("ADMIN_SIGNUP_ENABLED", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1,192.168.0.0/16")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, store.DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/lib.db", cfg.SQLitePath)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.True(t, cfg.AdminSignupEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.TrustedProxies)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}, "parse env:"},
		{"bad duration", map[string]string{"JWT_SECRET": "x", "DB_TIMEOUT": "soon"}, "parse env:"},
		{"unknown driver", map[string]string{"JWT_SECRET": "x", "STORAGE_DRIVER": "mongo"}, "unknown STORAGE_DRIVER"},
		{"blank secret", map[string]string{"JWT_SECRET": "   "}, "JWT_SECRET"},
		{"zero ttl", map[string]string{"JWT_SECRET": "x", "ACCESS_TOKEN_TTL": "0s"}, "ACCESS_TOKEN_TTL"},
		{"bad proxy", map[string]string{"JWT_SECRET": "x", "TRUSTED_PROXIES": "10.0.0.0/8,proxy.local"}, "TRUSTED_PROXIES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@localhost:5432/library", RedactDSN("postgres://user:pw@localhost:5432/library"))
	assert.Equal(t, "library.db", RedactDSN("library.db"))
	assert.Equal(t, "postgres://localhost/library", RedactDSN("postgres://localhost/library"))
}
