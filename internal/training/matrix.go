// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"errors"
	"sort"
)

// ErrNoInteractions indicates that the aggregated score map was empty at
// matrix-build time. With the gate in place this should be unreachable; it is
// reported as a hard failure rather than a skip.
var ErrNoInteractions = errors.New("training: no interaction data to build matrix")

// Matrix is the dense user x article interaction matrix. Cell (u, a) holds
// the aggregated score for (Users[u], Articles[a]), 0 for unobserved pairs.
//
// Users and Articles are the single source of identifier ordering: row i of
// the factor model's UserFactors corresponds to Users[i], and the artifact
// builder reuses these slices rather than re-deriving an order.
type Matrix struct {
	Users    []string
	Articles []string
	Rows     [][]float64
}

// NumUsers returns the number of matrix rows.
func (m *Matrix) NumUsers() int { return len(m.Users) }

// NumArticles returns the number of matrix columns.
func (m *Matrix) NumArticles() int { return len(m.Articles) }

// Sum returns the sum of all cells. Because unobserved pairs are exactly
// zero, this equals the sum of all aggregated scores.
func (m *Matrix) Sum() float64 {
	var total float64
	for _, row := range m.Rows {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// BuildMatrix converts the sparse score map into a dense matrix with sorted,
// deterministic user and article orderings. Sorting makes the output
// independent of map iteration order and of the order events were fetched.
func BuildMatrix(scores map[ScoreKey]float64) (*Matrix, error) {
	if len(scores) == 0 {
		return nil, ErrNoInteractions
	}

	userSet := make(map[string]struct{})
	articleSet := make(map[string]struct{})
	for key := range scores {
		userSet[key.UserID] = struct{}{}
		articleSet[key.ArticleID] = struct{}{}
	}

	users := sortedKeys(userSet)
	articles := sortedKeys(articleSet)

	userIndex := make(map[string]int, len(users))
	for i, u := range users {
		userIndex[u] = i
	}
	articleIndex := make(map[string]int, len(articles))
	for i, a := range articles {
		articleIndex[a] = i
	}

	rows := make([][]float64, len(users))
	for i := range rows {
		rows[i] = make([]float64, len(articles))
	}
	for key, score := range scores {
		rows[userIndex[key.UserID]][articleIndex[key.ArticleID]] = score
	}

	return &Matrix{Users: users, Articles: articles, Rows: rows}, nil
}

// sortedKeys returns the set's members in lexicographic order.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
