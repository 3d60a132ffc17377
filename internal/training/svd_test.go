// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"math"
	"testing"
)

func TestClampRank(t *testing.T) {
	tests := []struct {
		name                  string
		requested             int
		numUsers, numArticles int
		want                  int
	}{
		{"request fits", 2, 5, 5, 2},
		{"request clamps to min dimension minus one", 10, 3, 2, 1},
		{"square matrix clamp", 10, 4, 4, 3},
		{"floor at one for tiny matrices", 10, 1, 1, 1},
		{"exact boundary", 3, 4, 5, 3},
		{"one above boundary", 4, 4, 5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampRank(tt.requested, tt.numUsers, tt.numArticles)
			if got != tt.want {
				t.Errorf("ClampRank(%d, %d, %d) = %d, want %d",
					tt.requested, tt.numUsers, tt.numArticles, got, tt.want)
			}
		})
	}
}

func TestNewTruncatedSVDDefaults(t *testing.T) {
	s := NewTruncatedSVD(SVDConfig{})
	def := DefaultSVDConfig()

	if s.config.Components != def.Components {
		t.Errorf("Components = %d, want default %d", s.config.Components, def.Components)
	}
	if s.config.Seed != def.Seed {
		t.Errorf("Seed = %d, want default %d", s.config.Seed, def.Seed)
	}
	if s.config.MaxIterations != def.MaxIterations {
		t.Errorf("MaxIterations = %d, want default %d", s.config.MaxIterations, def.MaxIterations)
	}
	if s.config.Tolerance != def.Tolerance {
		t.Errorf("Tolerance = %v, want default %v", s.config.Tolerance, def.Tolerance)
	}
}

func testMatrix() *Matrix {
	return &Matrix{
		Users:    []string{"u1", "u2", "u3"},
		Articles: []string{"a1", "a2", "a3", "a4"},
		Rows: [][]float64{
			{2, 7, 0, 1},
			{2, 0, 3, 0},
			{0, 1, 5, 4},
		},
	}
}

func TestFitDimensions(t *testing.T) {
	m := testMatrix()
	s := NewTruncatedSVD(SVDConfig{Components: 2})

	model, err := s.Fit(m)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if model.Rank != 2 {
		t.Fatalf("Rank = %d, want 2", model.Rank)
	}
	if len(model.UserFactors) != m.NumUsers() {
		t.Errorf("UserFactors rows = %d, want %d", len(model.UserFactors), m.NumUsers())
	}
	if len(model.ArticleFactors) != m.NumArticles() {
		t.Errorf("ArticleFactors rows = %d, want %d", len(model.ArticleFactors), m.NumArticles())
	}
	for i, f := range model.UserFactors {
		if len(f) != model.Rank {
			t.Errorf("UserFactors[%d] length = %d, want %d", i, len(f), model.Rank)
		}
	}
	for i, f := range model.ArticleFactors {
		if len(f) != model.Rank {
			t.Errorf("ArticleFactors[%d] length = %d, want %d", i, len(f), model.Rank)
		}
	}
}

func TestFitClampsOversizedRank(t *testing.T) {
	m := &Matrix{
		Users:    []string{"u1", "u2", "u3"},
		Articles: []string{"a1", "a2"},
		Rows: [][]float64{
			{2, 0},
			{0, 7},
			{2, 0},
		},
	}
	s := NewTruncatedSVD(SVDConfig{Components: 10})

	model, err := s.Fit(m)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if model.Rank != 1 {
		t.Errorf("Rank = %d, want 1 (min(3,2)-1)", model.Rank)
	}
}

func TestFitDeterministic(t *testing.T) {
	cfg := SVDConfig{Components: 2, Seed: 42}

	first, err := NewTruncatedSVD(cfg).Fit(testMatrix())
	if err != nil {
		t.Fatalf("first Fit() error = %v", err)
	}
	second, err := NewTruncatedSVD(cfg).Fit(testMatrix())
	if err != nil {
		t.Fatalf("second Fit() error = %v", err)
	}

	for u := range first.UserFactors {
		for k := range first.UserFactors[u] {
			if first.UserFactors[u][k] != second.UserFactors[u][k] {
				t.Fatalf("UserFactors[%d][%d] differs across runs: %v vs %v",
					u, k, first.UserFactors[u][k], second.UserFactors[u][k])
			}
		}
	}
	for a := range first.ArticleFactors {
		for k := range first.ArticleFactors[a] {
			if first.ArticleFactors[a][k] != second.ArticleFactors[a][k] {
				t.Fatalf("ArticleFactors[%d][%d] differs across runs: %v vs %v",
					a, k, first.ArticleFactors[a][k], second.ArticleFactors[a][k])
			}
		}
	}
	if first.ExplainedVariance != second.ExplainedVariance {
		t.Errorf("ExplainedVariance differs: %v vs %v",
			first.ExplainedVariance, second.ExplainedVariance)
	}
}

func TestFitArticleFactorsUnitNorm(t *testing.T) {
	model, err := NewTruncatedSVD(SVDConfig{Components: 2}).Fit(testMatrix())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// Each retained component is a unit-norm column of the article factors.
	for k := 0; k < model.Rank; k++ {
		var sq float64
		for _, f := range model.ArticleFactors {
			sq += f[k] * f[k]
		}
		if math.Abs(math.Sqrt(sq)-1) > 1e-6 {
			t.Errorf("component %d norm = %v, want 1", k, math.Sqrt(sq))
		}
	}
}

func TestFitRankOneMatrixFullyExplained(t *testing.T) {
	// Outer product of two vectors: a true rank-1 matrix, so one component
	// captures all the energy.
	m := &Matrix{
		Users:    []string{"u1", "u2", "u3"},
		Articles: []string{"a1", "a2"},
		Rows: [][]float64{
			{2, 4},
			{1, 2},
			{3, 6},
		},
	}

	model, err := NewTruncatedSVD(SVDConfig{Components: 1}).Fit(m)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if math.Abs(model.ExplainedVariance-1) > 1e-6 {
		t.Errorf("ExplainedVariance = %v, want ~1 for a rank-1 matrix", model.ExplainedVariance)
	}
}

func TestFitReconstructionAtFullClampedRank(t *testing.T) {
	m := testMatrix()
	// Rank 3 is the clamp limit for 3x4; the truncation error should be small
	// but reconstruction is not exact because one singular value is dropped.
	model, err := NewTruncatedSVD(SVDConfig{Components: 3}).Fit(m)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if model.ExplainedVariance <= 0.5 || model.ExplainedVariance > 1 {
		t.Errorf("ExplainedVariance = %v, want in (0.5, 1]", model.ExplainedVariance)
	}

	// UserFactors * ArticleFactors^T should approximate the matrix with the
	// captured energy fraction.
	var errSq, totalSq float64
	for u := range m.Rows {
		for a := range m.Rows[u] {
			var approx float64
			for k := 0; k < model.Rank; k++ {
				approx += model.UserFactors[u][k] * model.ArticleFactors[a][k]
			}
			diff := m.Rows[u][a] - approx
			errSq += diff * diff
			totalSq += m.Rows[u][a] * m.Rows[u][a]
		}
	}
	if errSq/totalSq > 0.5 {
		t.Errorf("relative reconstruction error = %v, want <= 0.5", errSq/totalSq)
	}
}

func TestFitEmptyMatrix(t *testing.T) {
	_, err := NewTruncatedSVD(SVDConfig{}).Fit(&Matrix{})
	if err == nil {
		t.Fatal("Fit(empty) expected error")
	}
}
