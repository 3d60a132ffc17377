// Newslens Trainer - Recommendation Model Training Pipeline
// Copyright 2026 Newslens Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslens/trainer

// Package training implements the data-to-model pipeline that turns sparse
// user-article interaction signals into a published latent-factor model.
//
// The pipeline is strictly linear and runs to completion in one pass:
//
//	fetch -> aggregate -> build matrix -> factorize -> build artifact -> publish
//
// Each stage fully consumes its input before the next begins. An early-exit
// gate after aggregation skips training (a normal outcome, not an error) when
// the data volume is below the configured thresholds.
//
// This package defines the DataProvider and ModelPublisher interfaces and has
// no dependency on any storage backend; implementations live in
// internal/store. This keeps the dependency direction clean and allows tests
// to substitute an in-memory store.
package training
