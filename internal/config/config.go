// Package config loads isoscene settings from an optional YAML file and ISOSCENE_*
// environment variables, and builds the snapshot store they describe.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/isoscene/internal/logging"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config holds process-wide settings. Environment variables override the file.
type Config struct {
	Backend    string      `yaml:"backend" env:"ISOSCENE_BACKEND"`
	DataDir    string      `yaml:"data_dir" env:"ISOSCENE_DATA_DIR"`
	SQLitePath string      `yaml:"sqlite_path" env:"ISOSCENE_SQLITE_PATH"`
	Redis      RedisConfig `yaml:"redis" envPrefix:"ISOSCENE_REDIS_"`

	// EncryptionKey is a hex encoded AES-256 key. Empty disables encryption at rest.
	EncryptionKey string   `yaml:"encryption_key" env:"ISOSCENE_ENCRYPTION_KEY"`
	FallbackKeys  []string `yaml:"fallback_keys" env:"ISOSCENE_FALLBACK_KEYS" envSeparator:","`

	HistorySize int           `yaml:"history_size" env:"ISOSCENE_HISTORY_SIZE"`
	LockTTL     time.Duration `yaml:"lock_ttl" env:"ISOSCENE_LOCK_TTL"`

	LogLevel         string `yaml:"log_level" env:"ISOSCENE_LOG_LEVEL"`
	Port             int    `yaml:"port" env:"ISOSCENE_PORT"`
	Metrics          bool   `yaml:"metrics" env:"ISOSCENE_METRICS"`
	ValidateRequests bool   `yaml:"validate_requests" env:"ISOSCENE_VALIDATE_REQUESTS"`
}

// RedisConfig addresses the Redis backend.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Backend:     BackendMemory,
		DataDir:     ".isoscene",
		SQLitePath:  "isoscene.db",
		Redis:       RedisConfig{Addr: "localhost:6379", Prefix: "isoscene:"},
		HistorySize: 50,
		LockTTL:     30 * time.Second,
		LogLevel:    "info",
		Port:        8080,
	}
}

// Load reads path (skipped when empty), applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}
	if c.Backend == BackendFile && strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir is required for the file backend"))
	}
	if c.Backend == BackendSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		errs = append(errs, errors.New("sqlite_path is required for the sqlite backend"))
	}
	if c.Backend == BackendRedis && strings.TrimSpace(c.Redis.Addr) == "" {
		errs = append(errs, errors.New("redis.addr is required for the redis backend"))
	}
	if c.EncryptionKey != "" {
		if _, err := decodeKey(c.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("encryption_key: %w", err))
		}
	}
	for i, k := range c.FallbackKeys {
		if _, err := decodeKey(k); err != nil {
			errs = append(errs, fmt.Errorf("fallback_keys[%d]: %w", i, err))
		}
	}
	if c.HistorySize < 0 {
		errs = append(errs, errors.New("history_size must not be negative"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("not hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}
