// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastetrail/feedrank/internal/metrics"
	"github.com/tastetrail/feedrank/internal/models"
)

// ViewerStore loads a viewer's ranking inputs from the primary store.
type ViewerStore interface {
	// LoadViewerContext resolves the viewer record plus its follow and
	// preferred-category sets. Fails with ErrViewerNotFound or
	// ErrViewerInactive for missing/deactivated viewers, and
	// ErrStoreUnavailable for store failures.
	LoadViewerContext(ctx context.Context, viewerID string) (*models.ViewerContext, error)
}

// CandidateStore fetches the bounded candidate pool.
type CandidateStore interface {
	// FetchCandidates returns up to limit publicly visible candidates,
	// recency-ordered, excluding the viewer's own content and every ID in
	// exclude. An empty exclude list must not produce an invalid query.
	FetchCandidates(ctx context.Context, viewerID string, exclude []string, limit int) ([]*models.Candidate, error)
}

// SeenReader is the read side of the seen-set store consumed by the
// engine. The full read/write client lives in internal/seenstore.
type SeenReader interface {
	// SeenIDs returns the viewer's seen content IDs. A missing key is an
	// empty list, not an error.
	SeenIDs(ctx context.Context, viewerID string) ([]string, error)
}

// Request is one feed page request after transport-level parsing.
type Request struct {
	// ViewerID identifies the viewer; required.
	ViewerID string

	// Cursor is the opaque token from a previous response, empty for the
	// first page.
	Cursor string

	// Limit is the requested page size; 0 means the configured default.
	Limit int

	// Location is the caller-supplied coordinate override, nil when the
	// caller sent none.
	Location *models.Location
}

// Item is one feed entry with its score attached for observability.
type Item struct {
	*models.Candidate
	FinalScore float64 `json:"final_score"`
	Score      Score   `json:"score_breakdown"`
}

// Pagination carries cursor state for the next page.
type Pagination struct {
	NextCursor  *string `json:"next_cursor"`
	HasNextPage bool    `json:"has_next_page"`
}

// AlgorithmInfo describes the ranking inputs used for one response.
type AlgorithmInfo struct {
	FollowingCount    int    `json:"following_count"`
	CategoryCount     int    `json:"category_count"`
	LocationBased     bool   `json:"location_based"`
	SeenExcludedCount int    `json:"seen_excluded_count"`
	AlgorithmVersion  string `json:"algorithm_version"`
}

// Response is one ranked feed page.
type Response struct {
	Items         []Item        `json:"items"`
	Pagination    Pagination    `json:"pagination"`
	AlgorithmInfo AlgorithmInfo `json:"algorithm_info"`
}

// Engine coordinates the feed pipeline. It is stateless per request and
// safe for concurrent use; all mutable state lives in the caller's request
// scope or the injected stores.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	viewers    ViewerStore
	candidates CandidateStore
	seen       SeenReader

	// now is injectable for deterministic freshness scoring in tests.
	now func() time.Time
}

// NewEngine creates a feed engine with explicit dependencies. A nil config
// selects the production defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, viewers ViewerStore, candidates CandidateStore, seen SeenReader, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if viewers == nil || candidates == nil || seen == nil {
		return nil, fmt.Errorf("viewer, candidate, and seen stores are all required")
	}

	return &Engine{
		config:     cfg,
		logger:     logger.With().Str("component", "feed").Logger(),
		viewers:    viewers,
		candidates: candidates,
		seen:       seen,
		now:        time.Now,
	}, nil
}

// Config returns a copy of the engine's active configuration.
func (e *Engine) Config() Config {
	return *e.config
}

// BuildFeed runs the full pipeline for one request. Input validation
// happens before any store access: a bad cursor or coordinate pair never
// costs a query.
func (e *Engine) BuildFeed(ctx context.Context, req Request) (*Response, error) {
	start := e.now()

	limit, err := e.normalizeLimit(req.Limit)
	if err != nil {
		return nil, err
	}

	if req.Location != nil && !req.Location.Valid() {
		return nil, fmt.Errorf("%w: latitude %v, longitude %v",
			ErrInvalidCoordinates, req.Location.Latitude, req.Location.Longitude)
	}

	var (
		cursorScore float64
		cursorTime  time.Time
		hasCursor   bool
	)
	if req.Cursor != "" {
		cursorScore, cursorTime, err = DecodeCursor(req.Cursor)
		if err != nil {
			metrics.CursorDecodeFailures.Inc()
			return nil, err
		}
		hasCursor = true
	}

	viewer, err := e.viewers.LoadViewerContext(ctx, req.ViewerID)
	if err != nil {
		metrics.RecordFeedRequest("error", e.now().Sub(start), 0, 0)
		return nil, err
	}
	if req.Location != nil {
		viewer.Location = req.Location
	}

	seenIDs := e.loadSeenSet(ctx, req.ViewerID)

	pool, err := e.candidates.FetchCandidates(ctx, req.ViewerID, seenIDs, e.config.PoolSize)
	if err != nil {
		metrics.RecordFeedRequest("error", e.now().Sub(start), 0, len(seenIDs))
		return nil, err
	}

	now := e.now()
	ranked := make([]ScoredCandidate, 0, len(pool))
	for _, candidate := range pool {
		ranked = append(ranked, ScoredCandidate{
			Candidate: candidate,
			Score:     ComputeScore(viewer, candidate, now, e.config.Weights),
		})
	}
	Rank(ranked)

	page := e.slicePage(ranked, limit, hasCursor, cursorScore, cursorTime)

	resp := &Response{
		Items:      page.items,
		Pagination: page.pagination,
		AlgorithmInfo: AlgorithmInfo{
			FollowingCount:    len(viewer.Following),
			CategoryCount:     len(viewer.PreferredCategories),
			LocationBased:     viewer.Location != nil,
			SeenExcludedCount: len(seenIDs),
			AlgorithmVersion:  AlgorithmVersion,
		},
	}

	outcome := "ok"
	if len(resp.Items) == 0 {
		outcome = "empty"
	}
	metrics.RecordFeedRequest(outcome, e.now().Sub(start), len(pool), len(seenIDs))

	e.logger.Debug().
		Str("viewer_id", req.ViewerID).
		Int("pool", len(pool)).
		Int("returned", len(resp.Items)).
		Int("seen_excluded", len(seenIDs)).
		Bool("location_based", resp.AlgorithmInfo.LocationBased).
		Msg("feed ranked")

	return resp, nil
}

// normalizeLimit applies the default and enforces the configured cap.
func (e *Engine) normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return e.config.DefaultLimit, nil
	}
	if limit < 1 || limit > e.config.MaxLimit {
		return 0, fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidLimit, e.config.MaxLimit, limit)
	}
	return limit, nil
}

// loadSeenSet reads the viewer's seen-set, absorbing failures. Losing
// deduplication re-shows content once; losing the feed is worse.
func (e *Engine) loadSeenSet(ctx context.Context, viewerID string) []string {
	seenIDs, err := e.seen.SeenIDs(ctx, viewerID)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Str("viewer_id", viewerID).
			Msg("seen-set read failed, continuing without exclusion")
		return nil
	}
	return seenIDs
}

type pageResult struct {
	items      []Item
	pagination Pagination
}

// slicePage resolves the resume position and cuts one page from the ranked
// pool. With a cursor, the page starts after the matched item; when the
// match misses (pool drifted between calls) it falls back to the start.
func (e *Engine) slicePage(ranked []ScoredCandidate, limit int, hasCursor bool, cursorScore float64, cursorTime time.Time) pageResult {
	startIndex := 0
	if hasCursor {
		if idx, found := resumeIndex(ranked, cursorScore, cursorTime); found {
			startIndex = idx + 1
		} else {
			metrics.CursorResumeFallbacks.Inc()
			e.logger.Debug().
				Float64("cursor_score", cursorScore).
				Time("cursor_created_at", cursorTime).
				Msg("cursor position not found in recomputed pool, resuming from start")
		}
	}

	end := startIndex + limit
	if end > len(ranked) {
		end = len(ranked)
	}
	if startIndex > len(ranked) {
		startIndex = len(ranked)
	}

	items := make([]Item, 0, end-startIndex)
	for _, sc := range ranked[startIndex:end] {
		items = append(items, Item{
			Candidate:  sc.Candidate,
			FinalScore: sc.Score.Final,
			Score:      sc.Score,
		})
	}

	var pagination Pagination
	if len(items) == limit && len(items) > 0 {
		last := items[len(items)-1]
		cursor := EncodeCursor(last.FinalScore, last.CreatedAt)
		pagination.NextCursor = &cursor
		pagination.HasNextPage = true
	}

	return pageResult{items: items, pagination: pagination}
}
