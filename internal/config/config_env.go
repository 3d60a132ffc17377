// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package config

// envKeyMap maps TRAINER_-prefixed environment variables to koanf paths.
// An explicit table keeps the environment surface small and documented;
// unknown variables are ignored rather than guessed at.
var envKeyMap = map[string]string{
	"TRAINER_STORE_BACKEND":               "store.backend",
	"TRAINER_STORE_BADGER_PATH":           "store.badger.path",
	"TRAINER_STORE_MONGO_URI":             "store.mongo.uri",
	"TRAINER_STORE_MONGO_DATABASE":        "store.mongo.database",
	"TRAINER_STORE_MONGO_CONNECT_TIMEOUT": "store.mongo.connect_timeout",
	"TRAINER_TRAINING_MIN_USERS":          "training.min_users",
	"TRAINER_TRAINING_MIN_INTERACTIONS":   "training.min_interactions",
	"TRAINER_TRAINING_COMPONENTS":         "training.components",
	"TRAINER_TRAINING_SEED":               "training.seed",
	"TRAINER_TRAINING_MAX_ITERATIONS":     "training.max_iterations",
	"TRAINER_METRICS_PUSHGATEWAY_URL":     "metrics.pushgateway_url",
	"TRAINER_METRICS_JOB":                 "metrics.job",
	"TRAINER_LOGGING_LEVEL":               "logging.level",
	"TRAINER_LOGGING_FORMAT":              "logging.format",
	"TRAINER_LOGGING_CALLER":              "logging.caller",
}

// envKeyTransform maps an environment variable name to its configuration
// path. Returning "" drops the variable.
func envKeyTransform(name string) string {
	return envKeyMap[name]
}
