// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package store

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/newslens/trainer/internal/training"
)

// MemoryStore is an in-memory implementation of the store boundary. It backs
// the `memory` backend for local dry runs and substitutes for real backends
// in tests. Safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	interactions []training.InteractionEvent
	bookmarks    []training.BookmarkEvent
	preferences  []training.PreferenceRecord
	models       map[string][]byte
	putCount     int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		models: make(map[string][]byte),
	}
}

// AddInteraction seeds an interaction event.
func (s *MemoryStore) AddInteraction(ev training.InteractionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, ev)
}

// AddBookmark seeds a bookmark event.
func (s *MemoryStore) AddBookmark(ev training.BookmarkEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookmarks = append(s.bookmarks, ev)
}

// AddPreference seeds a preference record.
func (s *MemoryStore) AddPreference(rec training.PreferenceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preferences = append(s.preferences, rec)
}

// Interactions implements training.DataProvider.
func (s *MemoryStore) Interactions(ctx context.Context) ([]training.InteractionEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]training.InteractionEvent, len(s.interactions))
	copy(out, s.interactions)
	return out, nil
}

// Bookmarks implements training.DataProvider.
func (s *MemoryStore) Bookmarks(ctx context.Context) ([]training.BookmarkEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]training.BookmarkEvent, len(s.bookmarks))
	copy(out, s.bookmarks)
	return out, nil
}

// Preferences implements training.DataProvider.
func (s *MemoryStore) Preferences(ctx context.Context) ([]training.PreferenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]training.PreferenceRecord, len(s.preferences))
	copy(out, s.preferences)
	return out, nil
}

// Put implements training.ModelPublisher. The document is serialized on
// write, so later mutation of the caller's value cannot change the stored
// slot; a second Put fully replaces the first.
func (s *MemoryStore) Put(ctx context.Context, collection, docID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[collection+"/"+docID] = data
	s.putCount++
	return nil
}

// GetModel reads a published document into target. Returns false when the
// slot is empty.
func (s *MemoryStore) GetModel(collection, docID string, target any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.models[collection+"/"+docID]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, target)
}

// PutCount returns how many publishes have happened, for tests.
func (s *MemoryStore) PutCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.putCount
}

// Interface compliance.
var (
	_ training.DataProvider   = (*MemoryStore)(nil)
	_ training.ModelPublisher = (*MemoryStore)(nil)
)
