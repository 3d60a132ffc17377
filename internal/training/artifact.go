// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"sort"
	"time"
)

// AlgorithmType is the fixed tag identifying how the published model was
// produced. Consumers branch on it, so the value is part of the wire contract.
const AlgorithmType = "collaborative_filtering_svd"

// versionLayout formats the build time so that lexicographic and
// chronological ordering coincide.
const versionLayout = "20060102_150405"

// ModelArtifact is the versioned document consumed by the client application.
// Field names and nesting are a compatibility contract; renaming any tag
// breaks the consumer.
type ModelArtifact struct {
	Version         string           `json:"version" bson:"version" validate:"required"`
	CreatedAt       string           `json:"createdAt" bson:"createdAt" validate:"required"`
	AlgorithmType   string           `json:"algorithmType" bson:"algorithmType" validate:"required"`
	NComponents     int              `json:"nComponents" bson:"nComponents" validate:"min=1"`
	TrainingStats   TrainingStats    `json:"trainingStats" bson:"trainingStats"`
	CategoryWeights []CategoryWeight `json:"categoryWeights" bson:"categoryWeights"`
	UserFactors     []UserFactors    `json:"userFactors" bson:"userFactors" validate:"required,dive"`
	ArticleFactors  []ArticleFactors `json:"articleFactors" bson:"articleFactors" validate:"required,dive"`
}

// TrainingStats summarizes the training run inside the artifact.
type TrainingStats struct {
	TotalUsers    int `json:"totalUsers" bson:"totalUsers" validate:"min=1"`
	TotalArticles int `json:"totalArticles" bson:"totalArticles" validate:"min=1"`

	// TotalInteractions is NOT a count of raw events: it is the sum of the
	// factor-vector lengths over all users, i.e. totalUsers * nComponents.
	// The definition is almost certainly an accident of how the original
	// aggregation was computed, but consumers may depend on it, so it is
	// preserved verbatim.
	TotalInteractions int `json:"totalInteractions" bson:"totalInteractions"`
}

// CategoryWeight is one entry of the normalized category preference list.
type CategoryWeight struct {
	Category string  `json:"category" bson:"category" validate:"required"`
	Weight   float64 `json:"weight" bson:"weight" validate:"min=0,max=1"`
}

// UserFactors pairs a user with their latent factor vector.
type UserFactors struct {
	UserID  string    `json:"userId" bson:"userId" validate:"required"`
	Factors []float64 `json:"factors" bson:"factors" validate:"required"`
}

// ArticleFactors pairs an article with its latent factor vector.
type ArticleFactors struct {
	ArticleID string    `json:"articleId" bson:"articleId" validate:"required"`
	Factors   []float64 `json:"factors" bson:"factors" validate:"required"`
}

// BuildArtifact assembles the publishable model document from the matrix
// orderings, the factor model and the raw category totals. The identifier
// slices must be the ones the matrix was built with: row i of the model's
// factors is paired with element i of the corresponding slice.
func BuildArtifact(m *Matrix, model *FactorModel, categoryTotals map[string]float64, now time.Time) *ModelArtifact {
	userFactors := make([]UserFactors, len(m.Users))
	for i, userID := range m.Users {
		userFactors[i] = UserFactors{UserID: userID, Factors: model.UserFactors[i]}
	}

	articleFactors := make([]ArticleFactors, len(m.Articles))
	for i, articleID := range m.Articles {
		articleFactors[i] = ArticleFactors{ArticleID: articleID, Factors: model.ArticleFactors[i]}
	}

	return &ModelArtifact{
		Version:       "v" + now.Format(versionLayout),
		CreatedAt:     now.Format(time.RFC3339),
		AlgorithmType: AlgorithmType,
		NComponents:   model.Rank,
		TrainingStats: TrainingStats{
			TotalUsers:        len(m.Users),
			TotalArticles:     len(m.Articles),
			TotalInteractions: len(m.Users) * model.Rank,
		},
		CategoryWeights: NormalizeCategoryWeights(categoryTotals),
		UserFactors:     userFactors,
		ArticleFactors:  articleFactors,
	}
}

// NormalizeCategoryWeights divides every raw total by the maximum so that the
// top category has weight exactly 1.0. An empty input yields an empty (not
// nil) list and no division ever happens on it. Entries are sorted by
// category name to keep the artifact stable across runs.
func NormalizeCategoryWeights(totals map[string]float64) []CategoryWeight {
	weights := make([]CategoryWeight, 0, len(totals))
	if len(totals) == 0 {
		return weights
	}

	var maxTotal float64
	for _, v := range totals {
		if v > maxTotal {
			maxTotal = v
		}
	}

	for category, v := range totals {
		w := v
		if maxTotal > 0 {
			w = v / maxTotal
		}
		weights = append(weights, CategoryWeight{Category: category, Weight: w})
	}

	sort.Slice(weights, func(i, j int) bool {
		return weights[i].Category < weights[j].Category
	})

	return weights
}
