// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

// Package store implements the training data boundary: fetching interaction
// signals and publishing the trained model artifact.
//
// Three backends implement training.DataProvider and training.ModelPublisher:
//
//   - MemoryStore: mutex-guarded in-memory store for tests and dry runs
//   - BadgerStore: embedded BadgerDB document store for single-node setups
//   - MongoStore: MongoDB document store, the production backend
//
// Store documents are loosely typed (fields accessed by name). The codec in
// this package converts them into fully-typed records exactly once, at the
// fetch boundary, applying the documented field defaults. The rest of the
// pipeline never sees a partial record.
package store
