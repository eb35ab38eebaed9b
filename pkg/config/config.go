// Copyright 2025 Certen Protocol
//
// Configuration loading for the verifying client.

package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// WaypointConfig is the pinned bootstrap anchor: an epoch number and
// the one-way digest of the validator set that starts it.
type WaypointConfig struct {
	Epoch uint64 `yaml:"epoch"`
	Hash  string `yaml:"hash"` // hex-encoded, 32 bytes
}

// LoggingConfig controls the embedded pkg/logging.Logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// WaitForTransactionConfig carries the defaults spec.md §4.E names
// explicitly: 5s timeout, 50ms poll delay.
type WaitForTransactionConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	Delay   time.Duration `yaml:"delay"`
}

// Config is the explicit configuration root. Per spec §9's design note
// on "cyclic ownership of configuration", there is no shared mutable
// config singleton: a Config value is read once at startup by
// cmd/verifying-client, which passes the individual values it needs
// explicitly to constructors.
type Config struct {
	ServerURL          string                   `yaml:"server_url"`
	Waypoint           WaypointConfig           `yaml:"waypoint"`
	WaitForTransaction WaitForTransactionConfig `yaml:"wait_for_transaction"`
	Logging            LoggingConfig            `yaml:"logging"`
	StorageFile        string                   `yaml:"storage_file"`
}

func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://127.0.0.1:8080",
		WaitForTransaction: WaitForTransactionConfig{
			Timeout: 5 * time.Second,
			Delay:   50 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

const envPrefix = "VERIFYING_CLIENT_"

// Load builds a Config starting from DefaultConfig, overlaying an
// optional YAML file (named by VERIFYING_CLIENT_CONFIG_FILE), then
// overlaying individual environment variables.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(envPrefix + "CONFIG_FILE"); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file %q: %w", path, err)
		}
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv(envPrefix + "SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(envPrefix + "WAYPOINT_EPOCH"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Waypoint.Epoch = n
		}
	}
	if v := os.Getenv(envPrefix + "WAYPOINT_HASH"); v != "" {
		cfg.Waypoint.Hash = v
	}
	if v := os.Getenv(envPrefix + "WAIT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WaitForTransaction.Timeout = d
		}
	}
	if v := os.Getenv(envPrefix + "WAIT_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.WaitForTransaction.Delay = d
		}
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "STORAGE_FILE"); v != "" {
		cfg.StorageFile = v
	}
}

// Validate rejects a Config that cannot bootstrap a client.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url must not be empty")
	}
	if c.Waypoint.Hash != "" {
		raw, err := hex.DecodeString(c.Waypoint.Hash)
		if err != nil {
			return fmt.Errorf("waypoint.hash is not valid hex: %w", err)
		}
		if len(raw) != 32 {
			return fmt.Errorf("waypoint.hash must decode to 32 bytes, got %d", len(raw))
		}
	}
	if c.WaitForTransaction.Timeout <= 0 {
		return fmt.Errorf("wait_for_transaction.timeout must be positive")
	}
	if c.WaitForTransaction.Delay <= 0 {
		return fmt.Errorf("wait_for_transaction.delay must be positive")
	}
	return nil
}

// SlogLevel parses Logging.Level into a slog.Level, defaulting to Info
// on an unrecognized value.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
