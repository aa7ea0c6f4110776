// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tastetrail/feedrank/internal/feed"
	"github.com/tastetrail/feedrank/internal/metrics"
	"github.com/tastetrail/feedrank/internal/models"
)

// LoadViewerContext resolves the viewer record plus its follow and
// preferred-category sets. The location is the viewer's most recently
// stored one; callers may override it per request.
func (s *Store) LoadViewerContext(ctx context.Context, viewerID string) (*models.ViewerContext, error) {
	viewer, err := s.loadViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	following, err := s.loadFollowing(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	categories, err := s.loadPreferredCategories(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	viewer.Following = following
	viewer.PreferredCategories = categories
	return viewer, nil
}

// loadViewer fetches the viewer row with its active flag and last known
// location.
func (s *Store) loadViewer(ctx context.Context, viewerID string) (*models.ViewerContext, error) {
	const query = `
		SELECT is_active, last_latitude, last_longitude
		FROM users
		WHERE id = $1`

	start := time.Now()

	var (
		isActive bool
		lat, lon *float64
	)
	err := s.pool.QueryRow(ctx, query, viewerID).Scan(&isActive, &lat, &lon)
	metrics.RecordStoreQuery("load_viewer", time.Since(start), err)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: viewer %s", feed.ErrViewerNotFound, viewerID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load viewer: %v", feed.ErrStoreUnavailable, err)
	}
	if !isActive {
		return nil, fmt.Errorf("%w: viewer %s", feed.ErrViewerInactive, viewerID)
	}

	viewer := &models.ViewerContext{ViewerID: viewerID}
	if lat != nil && lon != nil {
		viewer.Location = &models.Location{Latitude: *lat, Longitude: *lon}
	}
	return viewer, nil
}

// loadFollowing reads the viewer's followed-author set.
func (s *Store) loadFollowing(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	const query = `
		SELECT followee_id
		FROM follows
		WHERE follower_id = $1`

	return s.loadIDSet(ctx, "load_following", query, viewerID)
}

// loadPreferredCategories reads the viewer's preferred-category set.
func (s *Store) loadPreferredCategories(ctx context.Context, viewerID string) (map[string]struct{}, error) {
	const query = `
		SELECT category_id
		FROM user_category_preferences
		WHERE user_id = $1`

	return s.loadIDSet(ctx, "load_categories", query, viewerID)
}

// loadIDSet runs a single-column ID query into a set.
func (s *Store) loadIDSet(ctx context.Context, operation, query, viewerID string) (map[string]struct{}, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx, query, viewerID)
	if err != nil {
		metrics.RecordStoreQuery(operation, time.Since(start), err)
		return nil, fmt.Errorf("%w: %s: %v", feed.ErrStoreUnavailable, operation, err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			metrics.RecordStoreQuery(operation, time.Since(start), err)
			return nil, fmt.Errorf("%w: %s scan: %v", feed.ErrStoreUnavailable, operation, err)
		}
		set[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreQuery(operation, time.Since(start), err)
		return nil, fmt.Errorf("%w: %s rows: %v", feed.ErrStoreUnavailable, operation, err)
	}

	metrics.RecordStoreQuery(operation, time.Since(start), nil)
	return set, nil
}
