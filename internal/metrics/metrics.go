// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

// Package metrics instruments training runs with Prometheus metrics.
//
// The trainer is a batch job, so metrics are collected in a private registry
// during the run and pushed to a Pushgateway once at the end, instead of
// being scraped from a long-lived endpoint.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/newslens/trainer/internal/training"
)

// Recorder collects training run metrics into its own registry.
type Recorder struct {
	registry *prometheus.Registry

	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Gauge
	trainedUsers      prometheus.Gauge
	trainedArticles   prometheus.Gauge
	interactionEvents prometheus.Gauge
	modelRank         prometheus.Gauge
	explainedVariance prometheus.Gauge
}

// NewRecorder creates a recorder with a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trainer_runs_total",
				Help: "Total training runs by outcome",
			},
			[]string{"outcome"},
		),
		runDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trainer_run_duration_seconds",
				Help: "Wall-clock duration of the last training run",
			},
		),
		trainedUsers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trainer_matrix_users",
				Help: "Distinct users in the last trained interaction matrix",
			},
		),
		trainedArticles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trainer_matrix_articles",
				Help: "Distinct articles in the last trained interaction matrix",
			},
		),
		interactionEvents: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trainer_interaction_events",
				Help: "Interaction events fetched in the last run",
			},
		),
		modelRank: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trainer_model_rank",
				Help: "Achieved factorization rank of the last trained model",
			},
		),
		explainedVariance: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "trainer_model_explained_variance",
				Help: "Explained variance ratio of the last trained model",
			},
		),
	}
}

// ObserveRun records the metrics of a completed (trained or skipped) run.
func (r *Recorder) ObserveRun(result *training.Result) {
	r.runsTotal.WithLabelValues(result.Outcome.String()).Inc()
	r.runDuration.Set(result.Duration.Seconds())
	r.interactionEvents.Set(float64(result.Interactions))

	if result.Outcome != training.OutcomeTrained {
		return
	}
	r.trainedUsers.Set(float64(result.Users))
	r.trainedArticles.Set(float64(result.Articles))
	r.modelRank.Set(float64(result.Rank))
	r.explainedVariance.Set(result.ExplainedVariance)
}

// ObserveFailure records a failed run.
func (r *Recorder) ObserveFailure() {
	r.runsTotal.WithLabelValues("failed").Inc()
}

// Registry exposes the underlying registry, for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Push sends all collected metrics to the Pushgateway in a single grouping
// keyed by job name. Overwrites the previous push for the same job.
func (r *Recorder) Push(url, job string) error {
	if err := push.New(url, job).Gatherer(r.registry).Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
