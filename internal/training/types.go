// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"context"
)

// InteractionEvent is a single recorded user action on an article. Events are
// immutable once fetched; missing store fields are defaulted at the fetch
// boundary (see internal/store), so every field here is total.
type InteractionEvent struct {
	// UserID identifies the user who interacted.
	UserID string `json:"userId"`

	// ArticleID identifies the article interacted with.
	ArticleID string `json:"articleId"`

	// ClickCount is the number of recorded clicks (>= 0).
	ClickCount int `json:"clickCount"`

	// TimeSpentSeconds is the accumulated reading time in seconds (>= 0).
	TimeSpentSeconds float64 `json:"timeSpentSeconds"`

	// IsBookmarked reports whether the article was bookmarked from within
	// this interaction record.
	IsBookmarked bool `json:"isBookmarked"`

	// Category is the article's category, "unknown" when absent upstream.
	Category string `json:"category"`
}

// BookmarkEvent is an independent bookmark signal. A bookmark may or may not
// have a corresponding InteractionEvent; when both exist the bookmark weight
// is counted twice, which is intentional and must be preserved.
type BookmarkEvent struct {
	UserID    string `json:"userId"`
	ArticleID string `json:"articleId"`
	Category  string `json:"category"`
}

// PreferenceRecord is a per-user rollup of derived category preferences.
// At most one record exists per user; absence is valid.
type PreferenceRecord struct {
	UserID            string             `json:"userId"`
	CategoryScores    map[string]float64 `json:"categoryScores"`
	TotalInteractions int                `json:"totalInteractions"`
}

// ScoreKey identifies a (user, article) pair in the aggregated score map.
type ScoreKey struct {
	UserID    string
	ArticleID string
}

// FactorModel holds the output of the factorization engine. Row i of
// UserFactors corresponds to the i-th user of the matrix that produced it;
// likewise for ArticleFactors and articles.
type FactorModel struct {
	// UserFactors is a dense numUsers x Rank matrix.
	UserFactors [][]float64

	// ArticleFactors is a dense numArticles x Rank matrix.
	ArticleFactors [][]float64

	// Rank is the achieved rank after dimensionality clamping.
	Rank int

	// ExplainedVariance is the fraction of matrix energy captured by the
	// retained components, in [0, 1]. Reported for observability only.
	ExplainedVariance float64
}

// DataProvider fetches the three event streams the pipeline trains on.
// The interface is defined here, consumer-side, so storage backends depend
// on this package and not the other way around.
type DataProvider interface {
	// Interactions returns all recorded interaction events.
	Interactions(ctx context.Context) ([]InteractionEvent, error)

	// Bookmarks returns all recorded bookmark events.
	Bookmarks(ctx context.Context) ([]BookmarkEvent, error)

	// Preferences returns the per-user category preference rollups.
	Preferences(ctx context.Context) ([]PreferenceRecord, error)
}

// ModelPublisher writes the trained artifact to the external store.
//
// Put fully overwrites the document at (collection, docID): last writer wins,
// no merge semantics. The pipeline performs no retries; a failed Put fails
// the run.
type ModelPublisher interface {
	Put(ctx context.Context, collection, docID string, doc any) error
}

// Store keys for the published model. Downstream consumers read exactly this
// slot, so the values are part of the wire contract.
const (
	ModelCollection = "ml_models"
	ModelDocumentID = "recommendation_model_v1"
)
