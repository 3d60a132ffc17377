// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

const (
	// bookmarkWeight is the score contribution of a bookmark, whether it
	// arrives as an interaction flag or as a standalone bookmark event.
	bookmarkWeight = 5.0

	// timeSpentDivisor converts reading seconds into score units.
	timeSpentDivisor = 30.0
)

// InteractionScore computes the score contribution of a single interaction
// event: clicks + 5 if bookmarked + reading time / 30. The formula is fixed;
// downstream models are trained against exactly these weights.
func InteractionScore(ev InteractionEvent) float64 {
	score := float64(ev.ClickCount) + ev.TimeSpentSeconds/timeSpentDivisor
	if ev.IsBookmarked {
		score += bookmarkWeight
	}
	return score
}

// AggregateScores merges interaction and bookmark events into a single
// per-(user, article) score map. Accumulation is associative and commutative,
// so the event order does not affect the result beyond floating-point
// tolerance.
//
// A standalone bookmark event adds bookmarkWeight on top of any interaction
// score for the same pair, including an interaction's own bookmark flag. The
// double counting matches the deployed scoring and must not be "fixed".
func AggregateScores(interactions []InteractionEvent, bookmarks []BookmarkEvent) map[ScoreKey]float64 {
	scores := make(map[ScoreKey]float64, len(interactions))

	for _, ev := range interactions {
		key := ScoreKey{UserID: ev.UserID, ArticleID: ev.ArticleID}
		scores[key] += InteractionScore(ev)
	}

	for _, bm := range bookmarks {
		key := ScoreKey{UserID: bm.UserID, ArticleID: bm.ArticleID}
		scores[key] += bookmarkWeight
	}

	return scores
}

// AggregateCategoryTotals sums raw category scores across all users'
// preference records. The totals are unnormalized; normalization happens in
// the artifact builder so that an empty map never reaches a division.
func AggregateCategoryTotals(preferences []PreferenceRecord) map[string]float64 {
	totals := make(map[string]float64)

	for _, pref := range preferences {
		for category, score := range pref.CategoryScores {
			totals[category] += score
		}
	}

	return totals
}

// Gate is the minimum-data threshold check that decides whether training
// proceeds. Both thresholds are configured constants, never computed.
type Gate struct {
	// MinUsers is the minimum number of distinct users with at least one
	// interaction event.
	MinUsers int

	// MinInteractions is the minimum total interaction event count.
	MinInteractions int
}

// GateResult reports the outcome of the gate check. When Passed is false,
// Reason names the failing threshold for the skip status line.
type GateResult struct {
	Passed          bool
	Reason          string
	DistinctUsers   int
	InteractionsLen int
}

// Check evaluates the gate against the fetched interaction events.
func (g Gate) Check(interactions []InteractionEvent) GateResult {
	users := make(map[string]struct{}, len(interactions))
	for _, ev := range interactions {
		users[ev.UserID] = struct{}{}
	}

	res := GateResult{
		DistinctUsers:   len(users),
		InteractionsLen: len(interactions),
	}

	switch {
	case len(users) < g.MinUsers:
		res.Reason = "not enough distinct users"
	case len(interactions) < g.MinInteractions:
		res.Reason = "not enough interaction events"
	default:
		res.Passed = true
	}

	return res
}
