// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/newslens/trainer/internal/training"
)

// MongoDB collection names. The ingesting application owns these collections;
// the trainer only reads them, and writes solely to the model collection.
const (
	interactionsCollection = "user_interactions"
	bookmarksCollection    = "user_bookmarks"
	preferencesCollection  = "user_preferences"
)

// Document identity field names.
const (
	fieldUserID    = "userId"
	fieldArticleID = "articleId"
	fieldDocID     = "_id"
)

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database is the database holding the interaction collections.
	Database string

	// ConnectTimeout bounds the initial connect and ping. Zero means 10s.
	ConnectTimeout time.Duration
}

// MongoStore reads training data from MongoDB and publishes model artifacts
// back into it. This is the production backend.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to MongoDB and verifies the connection with a ping.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// DefaultDocumentM makes nested documents decode as map[string]any, which
	// is the shape the shared codec expects.
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Interactions implements training.DataProvider.
func (s *MongoStore) Interactions(ctx context.Context) ([]training.InteractionEvent, error) {
	var events []training.InteractionEvent

	err := s.scanCollection(ctx, interactionsCollection, func(doc bson.M) error {
		userID := docString(doc, fieldUserID, "")
		articleID := docString(doc, fieldArticleID, "")
		if userID == "" || articleID == "" {
			// Documents without identity cannot contribute a matrix cell.
			return nil
		}
		events = append(events, DecodeInteraction(userID, articleID, doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", interactionsCollection, err)
	}
	return events, nil
}

// Bookmarks implements training.DataProvider.
func (s *MongoStore) Bookmarks(ctx context.Context) ([]training.BookmarkEvent, error) {
	var events []training.BookmarkEvent

	err := s.scanCollection(ctx, bookmarksCollection, func(doc bson.M) error {
		userID := docString(doc, fieldUserID, "")
		articleID := docString(doc, fieldArticleID, "")
		if userID == "" || articleID == "" {
			return nil
		}
		events = append(events, DecodeBookmark(userID, articleID, doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", bookmarksCollection, err)
	}
	return events, nil
}

// Preferences implements training.DataProvider.
func (s *MongoStore) Preferences(ctx context.Context) ([]training.PreferenceRecord, error) {
	var records []training.PreferenceRecord

	err := s.scanCollection(ctx, preferencesCollection, func(doc bson.M) error {
		userID := docString(doc, fieldUserID, "")
		if userID == "" {
			// Fall back to the document ID when it is a plain string.
			userID = docString(doc, fieldDocID, "")
		}
		if userID == "" {
			return nil
		}
		records = append(records, DecodePreference(userID, doc))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", preferencesCollection, err)
	}
	return records, nil
}

// Put implements training.ModelPublisher using an upsert, so republishing
// overwrites the previous artifact in place.
func (s *MongoStore) Put(ctx context.Context, collection, docID string, doc any) error {
	coll := s.db.Collection(collection)

	_, err := coll.ReplaceOne(ctx,
		bson.D{{Key: fieldDocID, Value: docID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, docID, err)
	}
	return nil
}

// scanCollection runs an unfiltered find over a collection and passes each
// document to fn.
func (s *MongoStore) scanCollection(ctx context.Context, name string, fn func(doc bson.M) error) error {
	cursor, err := s.db.Collection(name).Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("find: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("decode document: %w", err)
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor: %w", err)
	}
	return nil
}

// Interface compliance.
var (
	_ training.DataProvider   = (*MongoStore)(nil)
	_ training.ModelPublisher = (*MongoStore)(nil)
)
