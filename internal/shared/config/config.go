package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds every runtime setting of the auction engine process.
type Config struct {
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":9000"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"`

	DB DBConfig

	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"true"`

	SweepInterval       time.Duration `env:"SWEEP_INTERVAL" envDefault:"5s"`
	EndingSoonInterval  time.Duration `env:"ENDING_SOON_INTERVAL" envDefault:"30m"`
	EndingSoonLookahead time.Duration `env:"ENDING_SOON_LOOKAHEAD" envDefault:"1h"`
	SweepItemTimeout    time.Duration `env:"SWEEP_ITEM_TIMEOUT" envDefault:"3s"`
	SweepConcurrency    int           `env:"SWEEP_CONCURRENCY" envDefault:"8"`

	// StartGrace is how far in the past a new auction's start time may be.
	StartGrace  time.Duration `env:"START_GRACE" envDefault:"1m"`
	EventBuffer int           `env:"EVENT_BUFFER" envDefault:"1024"`
}

// DBConfig keeps the postgres connection variables. URL wins over the discrete fields.
type DBConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"auctions"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

// DSN builds the postgres connection string.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Load reads an optional .env file and then parses the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.StoreBackend != BackendPostgres && c.StoreBackend != BackendMemory {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.StoreBackend))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("SWEEP_INTERVAL must be positive"))
	}
	if c.EndingSoonInterval <= 0 {
		errs = append(errs, errors.New("ENDING_SOON_INTERVAL must be positive"))
	}
	if c.EndingSoonLookahead <= 0 {
		errs = append(errs, errors.New("ENDING_SOON_LOOKAHEAD must be positive"))
	}
	if c.SweepItemTimeout <= 0 {
		errs = append(errs, errors.New("SWEEP_ITEM_TIMEOUT must be positive"))
	}
	if c.SweepConcurrency <= 0 {
		errs = append(errs, errors.New("SWEEP_CONCURRENCY must be positive"))
	}
	if c.StartGrace < 0 {
		errs = append(errs, errors.New("START_GRACE cannot be negative"))
	}
	if c.EventBuffer <= 0 {
		errs = append(errs, errors.New("EVENT_BUFFER must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
