// Package config loads command defaults from the environment.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds settings shared by the oneinf commands. Flags override it.
type Config struct {
	DB                string  `env:"ONEINF_DB"`
	Model             string  `env:"ONEINF_MODEL"              envDefault:"one-inflated"`
	Link              string  `env:"ONEINF_LINK"               envDefault:"logit"`
	Method            string  `env:"ONEINF_METHOD"             envDefault:"bfgs"`
	Workers           int     `env:"ONEINF_WORKERS"            envDefault:"0"`
	MaxIterations     int     `env:"ONEINF_MAX_ITERATIONS"     envDefault:"0"`
	GradientThreshold float64 `env:"ONEINF_GRADIENT_THRESHOLD" envDefault:"1e-6"`
	LogLevel          string  `env:"ONEINF_LOG_LEVEL"          envDefault:"info"`
}

// Load parses Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level converts LogLevel to a slog level.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
