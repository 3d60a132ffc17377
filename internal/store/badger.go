// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/newslens/trainer/internal/training"
)

// Badger key prefixes. Interaction and bookmark keys embed the user and
// article IDs, preference keys embed the user ID. IDs therefore must not
// contain ':'.
const (
	interactionPrefix = "interaction:"
	bookmarkPrefix    = "bookmark:"
	preferencePrefix  = "preference:"
	modelPrefix       = "model:"
)

// BadgerConfig configures the embedded BadgerDB backend.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory runs the database without disk persistence; used in tests.
	InMemory bool
}

// BadgerStore reads training data from an embedded BadgerDB and publishes
// model artifacts back into it. It serves single-node deployments where the
// ingesting application and the trainer share one data directory.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database at the configured path.
func OpenBadger(cfg BadgerConfig) (*BadgerStore, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// PutInteraction writes a raw interaction document for a user/article pair.
func (s *BadgerStore) PutInteraction(userID, articleID string, doc map[string]any) error {
	return s.putDoc(interactionPrefix+userID+":"+articleID, doc)
}

// PutBookmark writes a raw bookmark document for a user/article pair.
func (s *BadgerStore) PutBookmark(userID, articleID string, doc map[string]any) error {
	return s.putDoc(bookmarkPrefix+userID+":"+articleID, doc)
}

// PutPreference writes a raw preference document for a user.
func (s *BadgerStore) PutPreference(userID string, doc map[string]any) error {
	return s.putDoc(preferencePrefix+userID, doc)
}

func (s *BadgerStore) putDoc(key string, doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write document %s: %w", key, err)
	}
	return nil
}

// Interactions implements training.DataProvider.
func (s *BadgerStore) Interactions(ctx context.Context) ([]training.InteractionEvent, error) {
	var events []training.InteractionEvent

	err := s.scanPrefix(ctx, interactionPrefix, func(suffix string, doc map[string]any) error {
		userID, articleID, ok := splitPairKey(suffix)
		if !ok {
			return fmt.Errorf("malformed interaction key suffix %q", suffix)
		}
		events = append(events, DecodeInteraction(userID, articleID, doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan interactions: %w", err)
	}
	return events, nil
}

// Bookmarks implements training.DataProvider.
func (s *BadgerStore) Bookmarks(ctx context.Context) ([]training.BookmarkEvent, error) {
	var events []training.BookmarkEvent

	err := s.scanPrefix(ctx, bookmarkPrefix, func(suffix string, doc map[string]any) error {
		userID, articleID, ok := splitPairKey(suffix)
		if !ok {
			return fmt.Errorf("malformed bookmark key suffix %q", suffix)
		}
		events = append(events, DecodeBookmark(userID, articleID, doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan bookmarks: %w", err)
	}
	return events, nil
}

// Preferences implements training.DataProvider.
func (s *BadgerStore) Preferences(ctx context.Context) ([]training.PreferenceRecord, error) {
	var records []training.PreferenceRecord

	err := s.scanPrefix(ctx, preferencePrefix, func(suffix string, doc map[string]any) error {
		records = append(records, DecodePreference(suffix, doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan preferences: %w", err)
	}
	return records, nil
}

// Put implements training.ModelPublisher. The artifact replaces any prior
// value under the same collection and document ID.
func (s *BadgerStore) Put(ctx context.Context, collection, docID string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal model document: %w", err)
	}

	key := modelPrefix + collection + ":" + docID
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("write model document %s: %w", key, err)
	}
	return nil
}

// GetModel reads a published document into target. Returns false when no
// document exists under the given slot.
func (s *BadgerStore) GetModel(collection, docID string, target any) (bool, error) {
	key := modelPrefix + collection + ":" + docID

	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, target)
		})
	})
	if err != nil {
		return false, fmt.Errorf("read model document %s: %w", key, err)
	}
	return found, nil
}

// scanPrefix iterates all documents under a key prefix, decoding each value
// as a JSON document and passing the key suffix plus document to fn.
func (s *BadgerStore) scanPrefix(ctx context.Context, prefix string, fn func(suffix string, doc map[string]any) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			suffix := strings.TrimPrefix(string(item.Key()), prefix)

			err := item.Value(func(val []byte) error {
				var doc map[string]any
				if err := json.Unmarshal(val, &doc); err != nil {
					return fmt.Errorf("decode document %s: %w", item.Key(), err)
				}
				return fn(suffix, doc)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// splitPairKey splits a "<userID>:<articleID>" key suffix.
func splitPairKey(suffix string) (userID, articleID string, ok bool) {
	userID, articleID, ok = strings.Cut(suffix, ":")
	if !ok || userID == "" || articleID == "" {
		return "", "", false
	}
	return userID, articleID, true
}

// Interface compliance.
var (
	_ training.DataProvider   = (*BadgerStore)(nil)
	_ training.ModelPublisher = (*BadgerStore)(nil)
)
