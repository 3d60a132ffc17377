// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/newslens/trainer/internal/validation"
)

// Config holds pipeline configuration.
type Config struct {
	// MinUsers is the minimum number of distinct users with interactions
	// required before training proceeds.
	MinUsers int

	// MinInteractions is the minimum total interaction event count required
	// before training proceeds.
	MinInteractions int

	// SVD configures the factorization engine.
	SVD SVDConfig
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		MinUsers:        2,
		MinInteractions: 3,
		SVD:             DefaultSVDConfig(),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.MinUsers < 1 {
		return fmt.Errorf("min_users must be >= 1, got %d", c.MinUsers)
	}
	if c.MinInteractions < 1 {
		return fmt.Errorf("min_interactions must be >= 1, got %d", c.MinInteractions)
	}
	if c.SVD.Components < 1 {
		return fmt.Errorf("components must be >= 1, got %d", c.SVD.Components)
	}
	return nil
}

// Outcome is the terminal state of a pipeline run that did not fail.
type Outcome int

const (
	// OutcomeTrained means a model was trained and published.
	OutcomeTrained Outcome = iota

	// OutcomeSkipped means the data-volume gate was not met. This is a
	// normal early termination, not a failure: no training happened and
	// nothing was published.
	OutcomeSkipped
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeTrained:
		return "trained"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result summarizes a completed pipeline run.
type Result struct {
	Outcome Outcome

	// Version is the published model version; empty when skipped.
	Version string

	// SkipReason names the failing gate threshold when skipped.
	SkipReason string

	// Users and Articles are the trained matrix dimensions; Interactions is
	// the raw fetched event count.
	Users        int
	Articles     int
	Interactions int

	// Rank is the achieved factorization rank.
	Rank int

	// ExplainedVariance is the factorization quality metric, [0, 1].
	ExplainedVariance float64

	// Duration is the total wall-clock run time.
	Duration time.Duration
}

// Pipeline wires the training stages together. It is constructed once per
// run; external capabilities (fetch and publish) are injected rather than
// reached through process-wide state so tests can substitute fakes.
type Pipeline struct {
	provider  DataProvider
	publisher ModelPublisher
	config    *Config
	svd       *TruncatedSVD
	logger    zerolog.Logger

	// now is the clock used for artifact versioning; replaceable in tests.
	now func() time.Time
}

// NewPipeline creates a pipeline over the given store capabilities.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(provider DataProvider, publisher ModelPublisher, cfg *Config, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("data provider not set")
	}
	if publisher == nil {
		return nil, fmt.Errorf("model publisher not set")
	}

	return &Pipeline{
		provider:  provider,
		publisher: publisher,
		config:    cfg,
		svd:       NewTruncatedSVD(cfg.SVD),
		logger:    logger.With().Str("component", "training").Logger(),
		now:       time.Now,
	}, nil
}

// Run executes the pipeline once: fetch, aggregate, factorize, publish.
//
// A run that skips training because of the data-volume gate returns a Result
// with OutcomeSkipped and a nil error. Any stage error aborts the run before
// the publish step, leaving external state untouched; the single publish call
// is the only external mutation.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	interactions, bookmarks, preferences, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	gate := Gate{MinUsers: p.config.MinUsers, MinInteractions: p.config.MinInteractions}
	check := gate.Check(interactions)
	if !check.Passed {
		p.logger.Warn().
			Str("reason", check.Reason).
			Int("users", check.DistinctUsers).
			Int("min_users", p.config.MinUsers).
			Int("interactions", check.InteractionsLen).
			Int("min_interactions", p.config.MinInteractions).
			Msg("skipping training: insufficient data")

		return &Result{
			Outcome:      OutcomeSkipped,
			SkipReason:   check.Reason,
			Interactions: len(interactions),
			Duration:     time.Since(start),
		}, nil
	}

	scores := AggregateScores(interactions, bookmarks)
	categoryTotals := AggregateCategoryTotals(preferences)
	p.logger.Info().
		Int("pairs", len(scores)).
		Int("categories", len(categoryTotals)).
		Msg("aggregated interaction signals")

	matrix, err := BuildMatrix(scores)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}
	p.logger.Info().
		Int("users", matrix.NumUsers()).
		Int("articles", matrix.NumArticles()).
		Msg("built interaction matrix")

	model, err := p.svd.Fit(matrix)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}
	p.logger.Info().
		Int("rank", model.Rank).
		Float64("explained_variance", model.ExplainedVariance).
		Msg("trained SVD model")

	artifact := BuildArtifact(matrix, model, categoryTotals, p.now())
	if err := validation.ValidateStruct(artifact); err != nil {
		return nil, fmt.Errorf("validate artifact: %w", err)
	}

	if err := p.publisher.Put(ctx, ModelCollection, ModelDocumentID, artifact); err != nil {
		return nil, fmt.Errorf("publish model: %w", err)
	}

	result := &Result{
		Outcome:           OutcomeTrained,
		Version:           artifact.Version,
		Users:             matrix.NumUsers(),
		Articles:          matrix.NumArticles(),
		Interactions:      len(interactions),
		Rank:              model.Rank,
		ExplainedVariance: model.ExplainedVariance,
		Duration:          time.Since(start),
	}

	p.logger.Info().
		Str("version", result.Version).
		Str("slot", ModelCollection+"/"+ModelDocumentID).
		Dur("duration", result.Duration).
		Msg("model published")

	return result, nil
}

// fetch reads the three event streams. The calls are synchronous and carry no
// internal timeout; cancellation is the caller's responsibility.
func (p *Pipeline) fetch(ctx context.Context) ([]InteractionEvent, []BookmarkEvent, []PreferenceRecord, error) {
	interactions, err := p.provider.Interactions(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch interactions: %w", err)
	}
	p.logger.Info().Int("count", len(interactions)).Msg("fetched interaction events")

	bookmarks, err := p.provider.Bookmarks(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch bookmarks: %w", err)
	}
	p.logger.Info().Int("count", len(bookmarks)).Msg("fetched bookmark events")

	preferences, err := p.provider.Preferences(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fetch preferences: %w", err)
	}
	p.logger.Info().Int("count", len(preferences)).Msg("fetched preference records")

	return interactions, bookmarks, preferences, nil
}
