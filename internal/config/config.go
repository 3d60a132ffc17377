// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

// Package config loads trainer configuration with koanf, layering defaults,
// an optional YAML file, and TRAINER_-prefixed environment variables, in
// ascending precedence.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the root trainer configuration.
type Config struct {
	Store    StoreConfig    `koanf:"store"`
	Training TrainingConfig `koanf:"training"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// StoreConfig selects and configures the data backend.
type StoreConfig struct {
	// Backend is one of "memory", "badger", "mongo".
	Backend string `koanf:"backend"`

	Badger BadgerConfig `koanf:"badger"`
	Mongo  MongoConfig  `koanf:"mongo"`
}

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	Path string `koanf:"path"`
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI            string        `koanf:"uri"`
	Database       string        `koanf:"database"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// TrainingConfig holds the pipeline thresholds and SVD settings.
type TrainingConfig struct {
	// MinUsers and MinInteractions gate training: below either threshold the
	// run is skipped.
	MinUsers        int `koanf:"min_users"`
	MinInteractions int `koanf:"min_interactions"`

	// Components is the requested factorization rank; the effective rank is
	// clamped to the matrix dimensions.
	Components int `koanf:"components"`

	// Seed makes factorization deterministic across runs.
	Seed int64 `koanf:"seed"`

	// MaxIterations bounds the per-component power iteration.
	MaxIterations int `koanf:"max_iterations"`
}

// MetricsConfig configures the optional Pushgateway export. An empty URL
// disables metrics entirely.
type MetricsConfig struct {
	PushgatewayURL string `koanf:"pushgateway_url"`
	Job            string `koanf:"job"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format"`

	// Caller adds file:line to each event.
	Caller bool `koanf:"caller"`
}

// defaultConfig returns the built-in defaults, the lowest configuration layer.
func defaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "memory",
			Badger: BadgerConfig{
				Path: "./data/trainer",
			},
			Mongo: MongoConfig{
				ConnectTimeout: 10 * time.Second,
			},
		},
		Training: TrainingConfig{
			MinUsers:        2,
			MinInteractions: 3,
			Components:      10,
			Seed:            42,
			MaxIterations:   200,
		},
		Metrics: MetricsConfig{
			Job: "newslens_trainer",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables. Returns an error if any layer fails to load or the
// final configuration is invalid.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("TRAINER_", ".", envKeyTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// findConfigFile returns the first config file that exists: the CONFIG_PATH
// environment variable, then the conventional locations. Empty when none.
func findConfigFile() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"config.yaml",
		"/etc/trainer/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
