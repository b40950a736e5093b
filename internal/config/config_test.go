package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BLUEPRINT_DB_USERNAME", "todo")
	t.Setenv("BLUEPRINT_DB_PASSWORD", "secret")
	t.Setenv("BLUEPRINT_DB_DATABASE", "todos")
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredDBEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, EnvLocal, cfg.Env)
		assert.Equal(t, 8080, cfg.HTTP.Port)
		assert.Equal(t, ":8080", cfg.HTTP.Addr())
		assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
		assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
		assert.Equal(t, time.Minute, cfg.HTTP.IdleTimeout)
		assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
		assert.Equal(t, []string{"https://*", "http://*"}, cfg.HTTP.AllowedOrigins)

		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "public", cfg.Database.Schema)
		assert.Equal(t, 100, cfg.Database.MaxOpenConns)
		assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
		assert.True(t, cfg.Database.AutoMigrate)
	})

	t.Run("overrides", func(t *testing.T) {
		setRequiredDBEnv(t)
		t.Setenv("APP_ENV", "prod")
		t.Setenv("PORT", "9090")
		t.Setenv("BLUEPRINT_DB_PORT", "6543")
		t.Setenv("DB_AUTO_MIGRATE", "false")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, EnvProd, cfg.Env)
		assert.Equal(t, ":9090", cfg.HTTP.Addr())
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.False(t, cfg.Database.AutoMigrate)
		assert.Equal(t, []string{"https://example.com"}, cfg.HTTP.AllowedOrigins)
	})

	t.Run("unknown env", func(t *testing.T) {
		setRequiredDBEnv(t)
		t.Setenv("APP_ENV", "staging")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "staging")
	})

	t.Run("invalid port", func(t *testing.T) {
		setRequiredDBEnv(t)
		t.Setenv("PORT", "eighty")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		Username: "u",
		Password: "p",
		Database: "todos",
		Schema:   "app",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	for _, part := range []string{"host=db", "user=u", "password=p", "dbname=todos", "port=5433", "sslmode=disable", "search_path=app", "TimeZone=UTC"} {
		assert.True(t, strings.Contains(dsn, part), "dsn %q missing %q", dsn, part)
	}
}
