// Package config loads server configuration from an optional YAML file with
// environment variable overrides (prefix TALLY_).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds everything the serve command needs.
type Config struct {
	Listen   string        `yaml:"listen" env:"LISTEN"`
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL"`
	Store    StoreConfig   `yaml:"store" envPrefix:"STORE_"`
	Engine   EngineConfig  `yaml:"engine" envPrefix:"ENGINE_"`
	Shutdown time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// StoreConfig selects and parameterizes the account store backend.
type StoreConfig struct {
	Backend string      `yaml:"backend" env:"BACKEND"`
	Redis   RedisConfig `yaml:"redis" envPrefix:"REDIS_"`
}

// RedisConfig carries the connection settings for the redis backend. The
// same connection doubles as the distributed locker.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	Prefix   string `yaml:"prefix" env:"PREFIX"`
}

// EngineConfig tunes transition execution.
type EngineConfig struct {
	RentPerByte uint64        `yaml:"rent_per_byte" env:"RENT_PER_BYTE"`
	LockTTL     time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Listen:   ":8372",
		LogLevel: "info",
		Store: StoreConfig{
			Backend: BackendMemory,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "tally:",
			},
		},
		Engine: EngineConfig{
			RentPerByte: 20,
			LockTTL:     5 * time.Second,
		},
		Shutdown: 10 * time.Second,
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty or the file does not exist), then
// TALLY_* environment variables on top.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// No file is fine; env and defaults still apply.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TALLY_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	return nil
}
