// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tastetrail/feedrank/internal/feed"
	"github.com/tastetrail/feedrank/internal/logging"
	"github.com/tastetrail/feedrank/internal/seenstore"
)

// FeedBuilder is the engine surface the API consumes.
type FeedBuilder interface {
	BuildFeed(ctx context.Context, req feed.Request) (*feed.Response, error)
	Config() feed.Config
}

// Pinger reports backing-store health for readiness probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a bare function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

const readinessTimeout = 2 * time.Second

// Handler serves the feed endpoints.
type Handler struct {
	engine FeedBuilder
	seen   seenstore.Store
	db     Pinger
	cache  Pinger
	rw     *ResponseWriter
	logger zerolog.Logger
}

// NewHandler wires the feed endpoints. db and cache may be nil when no
// readiness dependency exists (tests, memory seen-set).
func NewHandler(engine FeedBuilder, seen seenstore.Store, db, cache Pinger, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		seen:   seen,
		db:     db,
		cache:  cache,
		rw:     NewResponseWriter(logger),
		logger: logger,
	}
}

// GetFeed handles GET /api/v1/feed.
func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	req, err := parseFeedRequest(r)
	if err != nil {
		if errors.Is(err, feed.ErrInvalidCoordinates) {
			h.rw.EngineError(w, r, err)
		} else {
			h.rw.BadRequest(w, r, err.Error())
		}
		return
	}

	ctx := logging.ContextWithViewerID(r.Context(), viewerID)
	resp, err := h.engine.BuildFeed(ctx, req)
	if err != nil {
		h.rw.EngineError(w, r, err)
		return
	}

	h.rw.SuccessWithPagination(w, r, resp, &PaginationMeta{
		Limit:      effectiveLimit(req.Limit, h.engine.Config()),
		Count:      len(resp.Items),
		HasMore:    resp.Pagination.HasNextPage,
		NextCursor: resp.Pagination.NextCursor,
	})
}

// MarkSeen handles POST /api/v1/feed/seen. Seen-set writes are advisory:
// a store failure is logged and the request still succeeds, since the
// worst outcome is content shown twice.
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	var req MarkSeenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rw.BadRequest(w, r, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.rw.Error(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "content_ids must contain 1-500 non-empty IDs")
		return
	}

	if err := h.seen.MarkSeenBatch(r.Context(), viewerID, req.ContentIDs); err != nil {
		h.logger.Warn().
			Err(err).
			Str("viewer_id", viewerID).
			Int("count", len(req.ContentIDs)).
			Msg("Seen-set write failed, continuing")
	}

	h.rw.Success(w, r, map[string]interface{}{
		"marked_count": len(req.ContentIDs),
	})
}

// GetSeen handles GET /api/v1/feed/seen.
func (h *Handler) GetSeen(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	ids, err := h.seen.SeenIDs(r.Context(), viewerID)
	if err != nil {
		h.rw.Error(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "seen store unavailable")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	h.rw.Success(w, r, map[string]interface{}{
		"content_ids": ids,
		"count":       len(ids),
	})
}

// GetSeenCount handles GET /api/v1/feed/seen/count.
func (h *Handler) GetSeenCount(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	count, err := h.seen.Count(r.Context(), viewerID)
	if err != nil {
		h.rw.Error(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "seen store unavailable")
		return
	}

	h.rw.Success(w, r, map[string]interface{}{"count": count})
}

// RemoveSeen handles DELETE /api/v1/feed/seen/{contentID}.
func (h *Handler) RemoveSeen(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	contentID := chi.URLParam(r, "contentID")
	if contentID == "" {
		h.rw.BadRequest(w, r, "contentID is required")
		return
	}

	if err := h.seen.RemoveSeen(r.Context(), viewerID, contentID); err != nil {
		h.logger.Warn().
			Err(err).
			Str("viewer_id", viewerID).
			Str("content_id", contentID).
			Msg("Seen-set removal failed, continuing")
	}

	h.rw.NoContent(w, r)
}

// ClearSeen handles DELETE /api/v1/feed/seen.
func (h *Handler) ClearSeen(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireViewer(w, r)
	if !ok {
		return
	}

	if err := h.seen.ClearSeen(r.Context(), viewerID); err != nil {
		h.logger.Warn().
			Err(err).
			Str("viewer_id", viewerID).
			Msg("Seen-set clear failed, continuing")
	}

	h.rw.NoContent(w, r)
}

// GetConfig handles GET /api/v1/feed/config, exposing the active ranking
// parameters for debugging and client display.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.Config()
	h.rw.Success(w, r, map[string]interface{}{
		"algorithm_version": feed.AlgorithmVersion,
		"weights":           cfg.Weights,
		"pool_size":         cfg.PoolSize,
		"default_limit":     cfg.DefaultLimit,
		"max_limit":         cfg.MaxLimit,
	})
}

// Healthz handles GET /healthz. Liveness only, no dependency checks.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.rw.Success(w, r, map[string]string{"status": "ok"})
}

// Readyz handles GET /readyz, pinging the primary store and the
// seen-set cache.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.rw.Error(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database not ready")
			return
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			h.rw.Error(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "seen-set cache not ready")
			return
		}
	}
	h.rw.Success(w, r, map[string]string{"status": "ready"})
}

func (h *Handler) requireViewer(w http.ResponseWriter, r *http.Request) (string, bool) {
	viewerID := r.Header.Get(viewerIDHeader)
	if viewerID == "" {
		h.rw.Unauthorized(w, r, viewerIDHeader+" header is required")
		return "", false
	}
	return viewerID, true
}

func effectiveLimit(requested int, cfg feed.Config) int {
	if requested == 0 {
		return cfg.DefaultLimit
	}
	return requested
}
