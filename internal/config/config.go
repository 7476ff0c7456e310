// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevJWTSecret signs tokens when DEV is set and no JWT_SECRET is configured.
const DevJWTSecret = "splitledger-dev-secret"

// Config holds the server settings.
type Config struct {
	Port            int           `env:"PORT"             envDefault:"8080"`
	DBPath          string        `env:"DB_PATH"          envDefault:"./data/ledger.db"`
	JWTSecret       string        `env:"JWT_SECRET"`
	TokenTTL        time.Duration `env:"TOKEN_TTL"        envDefault:"24h"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	Dev             bool          `env:"DEV"`
}

// Load reads Config from the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads Config from environ instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.JWTSecret == "" {
		if !cfg.Dev {
			return Config{}, errors.New("JWT_SECRET is required unless DEV is set")
		}
		cfg.JWTSecret = DevJWTSecret
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, errors.New("TOKEN_TTL must be positive")
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
