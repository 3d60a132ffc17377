// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package store

import (
	"github.com/newslens/trainer/internal/training"
)

// Store document field names. These match the documents the client
// application writes, so they are part of the ingestion contract.
const (
	fieldClickCount        = "clickCount"
	fieldTimeSpentReading  = "timeSpentReading"
	fieldIsBookmarked      = "isBookmarked"
	fieldCategory          = "category"
	fieldCategoryScores    = "categoryScores"
	fieldTotalInteractions = "totalInteractions"
)

// defaultCategory is used when a document carries no category.
const defaultCategory = "unknown"

// DecodeInteraction converts a raw interaction document into a typed event,
// applying defaults for missing fields: clickCount 0, timeSpentReading 0,
// isBookmarked false, category "unknown".
func DecodeInteraction(userID, articleID string, doc map[string]any) training.InteractionEvent {
	return training.InteractionEvent{
		UserID:           userID,
		ArticleID:        articleID,
		ClickCount:       docInt(doc, fieldClickCount, 0),
		TimeSpentSeconds: docFloat(doc, fieldTimeSpentReading, 0),
		IsBookmarked:     docBool(doc, fieldIsBookmarked, false),
		Category:         docString(doc, fieldCategory, defaultCategory),
	}
}

// DecodeBookmark converts a raw bookmark document into a typed event.
func DecodeBookmark(userID, articleID string, doc map[string]any) training.BookmarkEvent {
	return training.BookmarkEvent{
		UserID:    userID,
		ArticleID: articleID,
		Category:  docString(doc, fieldCategory, defaultCategory),
	}
}

// DecodePreference converts a raw preference document into a typed record,
// defaulting categoryScores to an empty map and totalInteractions to 0.
func DecodePreference(userID string, doc map[string]any) training.PreferenceRecord {
	return training.PreferenceRecord{
		UserID:            userID,
		CategoryScores:    docFloatMap(doc, fieldCategoryScores),
		TotalInteractions: docInt(doc, fieldTotalInteractions, 0),
	}
}

// docString reads a string field with a default.
func docString(doc map[string]any, key, def string) string {
	if v, ok := doc[key].(string); ok && v != "" {
		return v
	}
	return def
}

// docBool reads a boolean field with a default.
func docBool(doc map[string]any, key string, def bool) bool {
	if v, ok := doc[key].(bool); ok {
		return v
	}
	return def
}

// docInt reads a numeric field as an int. JSON decoding yields float64 and
// BSON decoding yields int32/int64, so all numeric shapes are accepted.
func docInt(doc map[string]any, key string, def int) int {
	switch v := doc[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// docFloat reads a numeric field as a float64.
func docFloat(doc map[string]any, key string, def float64) float64 {
	switch v := doc[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// docFloatMap reads a nested document of numeric values. Missing or
// malformed fields yield an empty, non-nil map.
func docFloatMap(doc map[string]any, key string) map[string]float64 {
	out := make(map[string]float64)

	nested, ok := doc[key].(map[string]any)
	if !ok {
		return out
	}

	for k := range nested {
		out[k] = docFloat(nested, k, 0)
	}
	return out
}
