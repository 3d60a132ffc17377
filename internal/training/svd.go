// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"fmt"
	"math"
	"math/rand"
)

// SVDConfig contains configuration for the truncated SVD engine.
type SVDConfig struct {
	// Components is the requested rank (embedding dimension). The achieved
	// rank is clamped to min(numUsers, numArticles) - 1, floor 1.
	Components int

	// Seed seeds the power-iteration start vectors. Fixed seeding makes the
	// decomposition reproducible for identical input.
	Seed int64

	// MaxIterations bounds the power iterations per component.
	MaxIterations int

	// Tolerance is the relative eigenvalue change at which a component is
	// considered converged.
	Tolerance float64
}

// DefaultSVDConfig returns the default SVD configuration.
func DefaultSVDConfig() SVDConfig {
	return SVDConfig{
		Components:    10,
		Seed:          42,
		MaxIterations: 200,
		Tolerance:     1e-10,
	}
}

// TruncatedSVD computes a rank-reduced decomposition of the interaction
// matrix: A ~ UserFactors * ArticleFactors^T.
//
// The implementation runs power iteration with Gram-Schmidt deflation on the
// Gram matrix A^T A. Eigenvectors of A^T A are the right singular vectors of
// A; the user factors are then A*v per component, which equals U*Sigma. This
// mirrors the fit-transform convention of common SVD libraries: user factors
// carry the singular values, article factors are unit-norm directions.
//
// No reconstruction-error threshold is enforced. Any rank that satisfies the
// clamp is accepted; the explained-variance ratio is reported for
// observability only.
type TruncatedSVD struct {
	config SVDConfig
}

// NewTruncatedSVD creates a truncated SVD engine with the given
// configuration, applying defaults for zero values.
func NewTruncatedSVD(cfg SVDConfig) *TruncatedSVD {
	def := DefaultSVDConfig()
	if cfg.Components <= 0 {
		cfg.Components = def.Components
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	return &TruncatedSVD{config: cfg}
}

// ClampRank applies the dimensionality safety constraint: a truncated
// decomposition with rank >= min(dimensions) is undefined, so the effective
// rank is min(requested, min(numUsers, numArticles)-1), floor 1.
func ClampRank(requested, numUsers, numArticles int) int {
	limit := numUsers
	if numArticles < limit {
		limit = numArticles
	}
	rank := requested
	if rank > limit-1 {
		rank = limit - 1
	}
	if rank < 1 {
		rank = 1
	}
	return rank
}

// Fit decomposes the matrix and returns the factor model.
func (s *TruncatedSVD) Fit(m *Matrix) (*FactorModel, error) {
	numUsers := m.NumUsers()
	numArticles := m.NumArticles()
	if numUsers == 0 || numArticles == 0 {
		return nil, fmt.Errorf("svd: empty matrix (%dx%d)", numUsers, numArticles)
	}

	rank := ClampRank(s.config.Components, numUsers, numArticles)

	gram := gramMatrix(m.Rows, numArticles)

	// Total energy is the squared Frobenius norm, equal to trace(A^T A).
	var totalEnergy float64
	for i := 0; i < numArticles; i++ {
		totalEnergy += gram[i][i]
	}

	rng := rand.New(rand.NewSource(s.config.Seed)) //nolint:gosec // deterministic seeding is the point

	rightVectors := make([][]float64, 0, rank)
	eigenvalues := make([]float64, 0, rank)

	for k := 0; k < rank; k++ {
		v, lambda := s.dominantEigenvector(gram, rightVectors, rng)
		rightVectors = append(rightVectors, v)
		eigenvalues = append(eigenvalues, lambda)
	}

	userFactors := make([][]float64, numUsers)
	for u := 0; u < numUsers; u++ {
		userFactors[u] = make([]float64, rank)
		for k, v := range rightVectors {
			var dot float64
			for i, a := range m.Rows[u] {
				dot += a * v[i]
			}
			userFactors[u][k] = dot
		}
	}

	articleFactors := make([][]float64, numArticles)
	for i := 0; i < numArticles; i++ {
		articleFactors[i] = make([]float64, rank)
		for k, v := range rightVectors {
			articleFactors[i][k] = v[i]
		}
	}

	var explained float64
	if totalEnergy > 0 {
		var captured float64
		for _, lambda := range eigenvalues {
			captured += math.Max(lambda, 0)
		}
		explained = captured / totalEnergy
		if explained > 1 {
			explained = 1
		}
	}

	return &FactorModel{
		UserFactors:       userFactors,
		ArticleFactors:    articleFactors,
		Rank:              rank,
		ExplainedVariance: explained,
	}, nil
}

// dominantEigenvector finds the largest eigenpair of gram restricted to the
// orthogonal complement of the previously found vectors.
func (s *TruncatedSVD) dominantEigenvector(gram, previous [][]float64, rng *rand.Rand) (v []float64, lambda float64) {
	n := len(gram)

	v = make([]float64, n)
	for i := range v {
		v[i] = rng.Float64() - 0.5
	}
	orthogonalize(v, previous)
	if normalize(v) == 0 {
		// Degenerate start vector; fall back to a unit basis vector.
		for i := range v {
			v[i] = 0
		}
		v[len(previous)%n] = 1
		orthogonalize(v, previous)
		normalize(v)
	}

	w := make([]float64, n)
	var prevLambda float64

	for iter := 0; iter < s.config.MaxIterations; iter++ {
		matVec(gram, v, w)
		orthogonalize(w, previous)

		norm := normalize(w)
		if norm == 0 {
			// v lies in the null space of the deflated matrix: the matrix
			// has lower effective rank than requested. Keep the current
			// orthonormal v with a zero eigenvalue.
			return v, 0
		}
		copy(v, w)

		lambda = rayleighQuotient(gram, v)
		if math.Abs(lambda-prevLambda) <= s.config.Tolerance*math.Max(1, math.Abs(lambda)) {
			break
		}
		prevLambda = lambda
	}

	return v, lambda
}

// gramMatrix computes A^T A for the row-major matrix rows.
func gramMatrix(rows [][]float64, numCols int) [][]float64 {
	gram := make([][]float64, numCols)
	for i := range gram {
		gram[i] = make([]float64, numCols)
	}
	for _, row := range rows {
		for i := 0; i < numCols; i++ {
			if row[i] == 0 {
				continue
			}
			for j := i; j < numCols; j++ {
				gram[i][j] += row[i] * row[j]
			}
		}
	}
	for i := 0; i < numCols; i++ {
		for j := i + 1; j < numCols; j++ {
			gram[j][i] = gram[i][j]
		}
	}
	return gram
}

// matVec computes dst = m * v.
func matVec(m [][]float64, v, dst []float64) {
	for i, row := range m {
		var sum float64
		for j, x := range row {
			sum += x * v[j]
		}
		dst[i] = sum
	}
}

// orthogonalize removes from v its projections onto the given orthonormal
// basis vectors (classical Gram-Schmidt).
func orthogonalize(v []float64, basis [][]float64) {
	for _, b := range basis {
		var dot float64
		for i := range v {
			dot += v[i] * b[i]
		}
		for i := range v {
			v[i] -= dot * b[i]
		}
	}
}

// normalize scales v to unit length and returns the original norm.
// Vectors with negligible norm are left untouched and report 0.
func normalize(v []float64) float64 {
	var sq float64
	for _, x := range v {
		sq += x * x
	}
	norm := math.Sqrt(sq)
	if norm < 1e-12 {
		return 0
	}
	for i := range v {
		v[i] /= norm
	}
	return norm
}

// rayleighQuotient computes v^T m v for unit-norm v.
func rayleighQuotient(m [][]float64, v []float64) float64 {
	var sum float64
	for i, row := range m {
		var dot float64
		for j, x := range row {
			dot += x * v[j]
		}
		sum += v[i] * dot
	}
	return sum
}
