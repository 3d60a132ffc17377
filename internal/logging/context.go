// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// runIDKey is the context key for the training run ID.
	runIDKey contextKey = "run_id"
)

// GenerateRunID creates a new unique run ID. Returns the first 8 characters
// of a UUID; enough to tie together one batch run's log lines.
func GenerateRunID() string {
	return uuid.New().String()[:8]
}

// ContextWithRunID returns a new context carrying the given run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// ContextWithNewRunID returns a context with a freshly generated run ID.
func ContextWithNewRunID(ctx context.Context) context.Context {
	return ContextWithRunID(ctx, GenerateRunID())
}

// RunIDFromContext retrieves the run ID from context.
// Returns empty string if not present.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger with the run ID from context attached, when present.
//
//	logging.Ctx(ctx).Info().Msg("training started")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if runID := RunIDFromContext(ctx); runID != "" {
		logger = logger.With().Str("run_id", runID).Logger()
	}
	return &logger
}
