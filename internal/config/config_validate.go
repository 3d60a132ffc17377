// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package config

import (
	"fmt"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks the configuration for internal consistency. Backend
// settings are only validated for the selected backend.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory":
	case "badger":
		if c.Store.Badger.Path == "" {
			return fmt.Errorf("store.badger.path is required for the badger backend")
		}
	case "mongo":
		if c.Store.Mongo.URI == "" {
			return fmt.Errorf("store.mongo.uri is required for the mongo backend")
		}
		if c.Store.Mongo.Database == "" {
			return fmt.Errorf("store.mongo.database is required for the mongo backend")
		}
		if c.Store.Mongo.ConnectTimeout < 0 {
			return fmt.Errorf("store.mongo.connect_timeout must not be negative")
		}
	default:
		return fmt.Errorf("store.backend must be one of memory, badger, mongo; got %q", c.Store.Backend)
	}

	if c.Training.MinUsers < 1 {
		return fmt.Errorf("training.min_users must be >= 1, got %d", c.Training.MinUsers)
	}
	if c.Training.MinInteractions < 1 {
		return fmt.Errorf("training.min_interactions must be >= 1, got %d", c.Training.MinInteractions)
	}
	if c.Training.Components < 1 {
		return fmt.Errorf("training.components must be >= 1, got %d", c.Training.Components)
	}
	if c.Training.MaxIterations < 1 {
		return fmt.Errorf("training.max_iterations must be >= 1, got %d", c.Training.MaxIterations)
	}

	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return fmt.Errorf("metrics.job is required when metrics.pushgateway_url is set")
	}

	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}
