// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

// Command trainer runs the recommendation model training pipeline once and
// exits. It fetches interaction signals from the configured store, trains a
// truncated SVD factor model, and publishes the versioned artifact back to
// the store.
//
// Exit codes: 0 when a model was trained or the run was skipped for
// insufficient data, 1 on any failure.
//
// Configuration is loaded from defaults, an optional config.yaml, and
// TRAINER_-prefixed environment variables. A skipped run is a normal outcome
// for young deployments that have not accumulated enough interactions yet.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/newslens/trainer/internal/config"
	"github.com/newslens/trainer/internal/logging"
	"github.com/newslens/trainer/internal/metrics"
	"github.com/newslens/trainer/internal/store"
	"github.com/newslens/trainer/internal/training"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		logging.Err(err).Msg("failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithNewRunID(ctx)

	logger := logging.Ctx(ctx)
	logger.Info().
		Str("backend", cfg.Store.Backend).
		Int("components", cfg.Training.Components).
		Msg("trainer starting")

	recorder := metrics.NewRecorder()

	result, err := runPipeline(ctx, cfg, *logger)
	if err != nil {
		logger.Err(err).Msg("training run failed")
		recorder.ObserveFailure()
		pushMetrics(cfg, recorder, logger)
		return 1
	}

	recorder.ObserveRun(result)
	pushMetrics(cfg, recorder, logger)

	switch result.Outcome {
	case training.OutcomeTrained:
		logger.Info().
			Str("version", result.Version).
			Int("users", result.Users).
			Int("articles", result.Articles).
			Int("rank", result.Rank).
			Float64("explained_variance", result.ExplainedVariance).
			Dur("duration", result.Duration).
			Msg("training run complete")
	case training.OutcomeSkipped:
		logger.Info().
			Str("reason", result.SkipReason).
			Msg("training run skipped")
	}

	return 0
}

// runPipeline opens the configured backend, runs the pipeline once, and
// closes the backend before returning.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func runPipeline(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*training.Result, error) {
	provider, publisher, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pipeline, err := training.NewPipeline(provider, publisher, &training.Config{
		MinUsers:        cfg.Training.MinUsers,
		MinInteractions: cfg.Training.MinInteractions,
		SVD: training.SVDConfig{
			Components:    cfg.Training.Components,
			Seed:          cfg.Training.Seed,
			MaxIterations: cfg.Training.MaxIterations,
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.Run(ctx)
}

// openStore constructs the configured backend and returns its two
// capabilities plus a cleanup function.
func openStore(ctx context.Context, cfg *config.Config) (training.DataProvider, training.ModelPublisher, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		s := store.NewMemoryStore()
		return s, s, func() {}, nil

	case "badger":
		s, err := store.OpenBadger(store.BadgerConfig{Path: cfg.Store.Badger.Path})
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := s.Close(); err != nil {
				logging.Err(err).Msg("failed to close badger store")
			}
		}
		return s, s, cleanup, nil

	case "mongo":
		s, err := store.OpenMongo(ctx, store.MongoConfig{
			URI:            cfg.Store.Mongo.URI,
			Database:       cfg.Store.Mongo.Database,
			ConnectTimeout: cfg.Store.Mongo.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			if err := s.Close(context.Background()); err != nil {
				logging.Err(err).Msg("failed to disconnect mongodb")
			}
		}
		return s, s, cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// pushMetrics exports run metrics when a Pushgateway is configured. A push
// failure is logged but never changes the exit code; observability must not
// fail the batch.
func pushMetrics(cfg *config.Config, recorder *metrics.Recorder, logger *zerolog.Logger) {
	if cfg.Metrics.PushgatewayURL == "" {
		return
	}
	if err := recorder.Push(cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); err != nil {
		logger.Warn().Err(err).Msg("failed to push metrics")
	}
}
