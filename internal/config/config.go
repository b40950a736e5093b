package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config is the application configuration read from the environment.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"local"`
	HTTP     HTTPConfig
	Database DatabaseConfig
}

type HTTPConfig struct {
	Port            int           `env:"PORT" env-default:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"1m"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"https://*,http://*" env-separator:","`
}

// Addr returns the listen address for the HTTP server.
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// DatabaseConfig holds the PostgreSQL connection and pool settings.
type DatabaseConfig struct {
	Host            string        `env:"BLUEPRINT_DB_HOST" env-default:"localhost"`
	Port            int           `env:"BLUEPRINT_DB_PORT" env-default:"5432"`
	Username        string        `env:"BLUEPRINT_DB_USERNAME" env-required:"true"`
	Password        string        `env:"BLUEPRINT_DB_PASSWORD" env-required:"true"`
	Database        string        `env:"BLUEPRINT_DB_DATABASE" env-required:"true"`
	Schema          string        `env:"BLUEPRINT_DB_SCHEMA" env-default:"public"`
	SSLMode         string        `env:"BLUEPRINT_DB_SSLMODE" env-default:"disable"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"100"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" env-default:"true"`
}

// DSN builds a key/value connection string understood by both the GORM
// postgres driver and the pgx stdlib driver. Sessions always run in UTC so
// that DATE columns round-trip without a day shift.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s search_path=%s TimeZone=UTC",
		c.Host, c.Username, c.Password, c.Database, c.Port, c.SSLMode, c.Schema)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first by godotenv.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	switch cfg.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return nil, fmt.Errorf("unknown env: %q", cfg.Env)
	}

	return cfg, nil
}
