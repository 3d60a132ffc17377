// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package training

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeProvider struct {
	interactions []InteractionEvent
	bookmarks    []BookmarkEvent
	preferences  []PreferenceRecord

	interactionsErr error
	bookmarksErr    error
	preferencesErr  error
}

func (f *fakeProvider) Interactions(ctx context.Context) ([]InteractionEvent, error) {
	return f.interactions, f.interactionsErr
}

func (f *fakeProvider) Bookmarks(ctx context.Context) ([]BookmarkEvent, error) {
	return f.bookmarks, f.bookmarksErr
}

func (f *fakeProvider) Preferences(ctx context.Context) ([]PreferenceRecord, error) {
	return f.preferences, f.preferencesErr
}

type fakePublisher struct {
	collection string
	docID      string
	doc        any
	puts       int
	err        error
}

func (f *fakePublisher) Put(ctx context.Context, collection, docID string, doc any) error {
	if f.err != nil {
		return f.err
	}
	f.collection = collection
	f.docID = docID
	f.doc = doc
	f.puts++
	return nil
}

func newTestPipeline(t *testing.T, provider *fakeProvider, publisher *fakePublisher, cfg *Config) *Pipeline {
	t.Helper()

	p, err := NewPipeline(provider, publisher, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	p.now = func() time.Time {
		return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	}
	return p
}

func trainableProvider() *fakeProvider {
	return &fakeProvider{
		interactions: []InteractionEvent{
			{UserID: "u1", ArticleID: "a1", ClickCount: 2},
			{UserID: "u1", ArticleID: "a2", ClickCount: 1, IsBookmarked: true, TimeSpentSeconds: 30},
			{UserID: "u2", ArticleID: "a1", ClickCount: 2},
		},
	}
}

func TestNewPipelineRejectsBadInput(t *testing.T) {
	provider := &fakeProvider{}
	publisher := &fakePublisher{}

	if _, err := NewPipeline(nil, publisher, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := NewPipeline(provider, nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil publisher")
	}
	if _, err := NewPipeline(provider, publisher, &Config{MinUsers: 0}, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestRunTrainsAndPublishes(t *testing.T) {
	provider := trainableProvider()
	publisher := &fakePublisher{}
	p := newTestPipeline(t, provider, publisher, nil)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Outcome != OutcomeTrained {
		t.Fatalf("Outcome = %v, want trained", result.Outcome)
	}
	if result.Users != 2 || result.Articles != 2 {
		t.Errorf("dimensions = %dx%d, want 2x2", result.Users, result.Articles)
	}
	if result.Interactions != 3 {
		t.Errorf("Interactions = %d, want 3", result.Interactions)
	}
	// Requested rank 10 clamps to min(2,2)-1 = 1.
	if result.Rank != 1 {
		t.Errorf("Rank = %d, want 1", result.Rank)
	}
	if result.Version != "v20260830_120000" {
		t.Errorf("Version = %q, want v20260830_120000", result.Version)
	}

	if publisher.puts != 1 {
		t.Fatalf("publisher.puts = %d, want 1", publisher.puts)
	}
	if publisher.collection != ModelCollection || publisher.docID != ModelDocumentID {
		t.Errorf("published to %s/%s, want %s/%s",
			publisher.collection, publisher.docID, ModelCollection, ModelDocumentID)
	}

	artifact, ok := publisher.doc.(*ModelArtifact)
	if !ok {
		t.Fatalf("published doc is %T, want *ModelArtifact", publisher.doc)
	}
	if artifact.NComponents != 1 {
		t.Errorf("NComponents = %d, want 1", artifact.NComponents)
	}
	if len(artifact.CategoryWeights) != 0 {
		t.Errorf("CategoryWeights = %v, want empty without preference records", artifact.CategoryWeights)
	}
	if artifact.TrainingStats.TotalInteractions != 2 {
		t.Errorf("TotalInteractions = %d, want users*rank = 2", artifact.TrainingStats.TotalInteractions)
	}
}

func TestRunSkipsBelowGate(t *testing.T) {
	tests := []struct {
		name         string
		interactions []InteractionEvent
	}{
		{
			name: "one user with many events",
			interactions: []InteractionEvent{
				{UserID: "u1", ArticleID: "a1"},
				{UserID: "u1", ArticleID: "a2"},
				{UserID: "u1", ArticleID: "a3"},
				{UserID: "u1", ArticleID: "a4"},
				{UserID: "u1", ArticleID: "a5"},
			},
		},
		{
			name: "two users but too few events",
			interactions: []InteractionEvent{
				{UserID: "u1", ArticleID: "a1"},
				{UserID: "u2", ArticleID: "a1"},
			},
		},
		{
			name: "no events at all",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{interactions: tt.interactions}
			publisher := &fakePublisher{}
			p := newTestPipeline(t, provider, publisher, nil)

			result, err := p.Run(context.Background())
			if err != nil {
				t.Fatalf("Run() error = %v, skip must not be an error", err)
			}
			if result.Outcome != OutcomeSkipped {
				t.Fatalf("Outcome = %v, want skipped", result.Outcome)
			}
			if result.SkipReason == "" {
				t.Error("skipped result must carry a reason")
			}
			if publisher.puts != 0 {
				t.Errorf("publisher.puts = %d, want 0 on skip", publisher.puts)
			}
		})
	}
}

func TestRunFetchErrors(t *testing.T) {
	fetchErr := errors.New("store unavailable")

	tests := []struct {
		name     string
		provider *fakeProvider
		wantMsg  string
	}{
		{
			name:     "interactions fetch fails",
			provider: &fakeProvider{interactionsErr: fetchErr},
			wantMsg:  "fetch interactions",
		},
		{
			name: "bookmarks fetch fails",
			provider: func() *fakeProvider {
				p := trainableProvider()
				p.bookmarksErr = fetchErr
				return p
			}(),
			wantMsg: "fetch bookmarks",
		},
		{
			name: "preferences fetch fails",
			provider: func() *fakeProvider {
				p := trainableProvider()
				p.preferencesErr = fetchErr
				return p
			}(),
			wantMsg: "fetch preferences",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publisher := &fakePublisher{}
			p := newTestPipeline(t, tt.provider, publisher, nil)

			_, err := p.Run(context.Background())
			if !errors.Is(err, fetchErr) {
				t.Fatalf("Run() error = %v, want wrapped %v", err, fetchErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q missing stage context %q", err, tt.wantMsg)
			}
			if publisher.puts != 0 {
				t.Errorf("publisher.puts = %d, want 0 on failure", publisher.puts)
			}
		})
	}
}

func TestRunPublishFailure(t *testing.T) {
	publishErr := errors.New("write denied")
	provider := trainableProvider()
	publisher := &fakePublisher{err: publishErr}
	p := newTestPipeline(t, provider, publisher, nil)

	_, err := p.Run(context.Background())
	if !errors.Is(err, publishErr) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, publishErr)
	}
	if !strings.Contains(err.Error(), "publish model") {
		t.Errorf("error %q missing publish context", err)
	}
}

func TestRunIdempotentRepublish(t *testing.T) {
	provider := trainableProvider()
	publisher := &fakePublisher{}
	p := newTestPipeline(t, provider, publisher, nil)

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if publisher.puts != 2 {
		t.Fatalf("publisher.puts = %d, want 2", publisher.puts)
	}
	if publisher.docID != ModelDocumentID {
		t.Errorf("republish targeted %q, want the same slot %q", publisher.docID, ModelDocumentID)
	}
	if first.Version != second.Version {
		t.Errorf("versions differ under a fixed clock: %q vs %q", first.Version, second.Version)
	}
	if first.ExplainedVariance != second.ExplainedVariance {
		t.Errorf("explained variance differs across identical runs: %v vs %v",
			first.ExplainedVariance, second.ExplainedVariance)
	}
}

func TestRunUsesConfiguredThresholds(t *testing.T) {
	provider := &fakeProvider{
		interactions: []InteractionEvent{
			{UserID: "u1", ArticleID: "a1", ClickCount: 1},
			{UserID: "u1", ArticleID: "a2", ClickCount: 1},
		},
	}
	publisher := &fakePublisher{}
	cfg := &Config{MinUsers: 1, MinInteractions: 1, SVD: DefaultSVDConfig()}
	p := newTestPipeline(t, provider, publisher, cfg)

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Outcome != OutcomeTrained {
		t.Fatalf("Outcome = %v, want trained with lowered thresholds", result.Outcome)
	}
}

func TestRunCategoryWeightsFromPreferences(t *testing.T) {
	provider := trainableProvider()
	provider.preferences = []PreferenceRecord{
		{UserID: "u1", CategoryScores: map[string]float64{"tech": 20, "culture": 5}},
		{UserID: "u2", CategoryScores: map[string]float64{"politics": 10}},
	}
	publisher := &fakePublisher{}
	p := newTestPipeline(t, provider, publisher, nil)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	artifact := publisher.doc.(*ModelArtifact)
	want := []CategoryWeight{
		{Category: "culture", Weight: 0.25},
		{Category: "politics", Weight: 0.5},
		{Category: "tech", Weight: 1},
	}
	if len(artifact.CategoryWeights) != len(want) {
		t.Fatalf("CategoryWeights = %v, want %v", artifact.CategoryWeights, want)
	}
	for i := range want {
		if artifact.CategoryWeights[i] != want[i] {
			t.Errorf("CategoryWeights[%d] = %v, want %v", i, artifact.CategoryWeights[i], want[i])
		}
	}
}
