// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package feed implements the personalized review feed ranking engine.
//
// Given a viewer and an optional location, the engine produces a page of
// review content ordered by a five-signal weighted relevance score, with
// cursor-based pagination and exclusion of content the viewer has already
// seen. The pipeline is:
//
//	viewer context -> seen-set read -> candidate fetch -> score -> rank -> page slice
//
// Scoring is a pure function with no I/O; all store access happens through
// the ViewerStore, CandidateStore, and SeenReader interfaces injected at
// construction. Seen-set failures are absorbed (the feed degrades to no
// deduplication); primary store failures surface as ErrStoreUnavailable.
package feed
