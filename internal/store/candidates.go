// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/tastetrail/feedrank/internal/feed"
	"github.com/tastetrail/feedrank/internal/metrics"
	"github.com/tastetrail/feedrank/internal/models"
)

// FetchCandidates returns up to limit publicly visible reviews with
// playable media, newest first, excluding the viewer's own content and
// every ID in exclude. Recency ordering here is only a cheap pre-filter;
// the engine re-ranks by score.
func (s *Store) FetchCandidates(ctx context.Context, viewerID string, exclude []string, limit int) ([]*models.Candidate, error) {
	// The exclusion clause is added only when the list is non-empty so an
	// empty seen-set never produces a degenerate predicate.
	query := `
		SELECT
			r.id, r.author_id, r.media_url, r.caption, r.created_at,
			r.view_count, r.like_count, r.comment_count,
			b.id, b.name, b.latitude, b.longitude,
			COALESCE(array_agg(bc.category_id) FILTER (WHERE bc.category_id IS NOT NULL), '{}')
		FROM reviews r
		LEFT JOIN businesses b ON b.id = r.business_id
		LEFT JOIN business_categories bc ON bc.business_id = b.id
		WHERE r.author_id <> $1
		  AND r.status = 'published'
		  AND r.media_url <> ''`

	args := []any{viewerID}
	if len(exclude) > 0 {
		query += fmt.Sprintf(" AND r.id <> ALL($%d)", len(args)+1)
		args = append(args, exclude)
	}

	query += fmt.Sprintf(`
		GROUP BY r.id, r.author_id, r.media_url, r.caption, r.created_at,
		         r.view_count, r.like_count, r.comment_count,
		         b.id, b.name, b.latitude, b.longitude
		ORDER BY r.created_at DESC
		LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreQuery("fetch_candidates", time.Since(start), err)
		return nil, fmt.Errorf("%w: fetch candidates: %v", feed.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	candidates := make([]*models.Candidate, 0, limit)
	for rows.Next() {
		var (
			c           models.Candidate
			bizID       *string
			bizName     *string
			bizLat      *float64
			bizLon      *float64
			categoryIDs []string
		)
		err := rows.Scan(
			&c.ContentID, &c.AuthorID, &c.MediaURL, &c.Caption, &c.CreatedAt,
			&c.ViewCount, &c.LikeCount, &c.CommentCount,
			&bizID, &bizName, &bizLat, &bizLon,
			&categoryIDs,
		)
		if err != nil {
			metrics.RecordStoreQuery("fetch_candidates", time.Since(start), err)
			return nil, fmt.Errorf("%w: scan candidate: %v", feed.ErrStoreUnavailable, err)
		}

		if bizID != nil {
			biz := &models.Business{
				BusinessID:  *bizID,
				CategoryIDs: categoryIDs,
			}
			if bizName != nil {
				biz.Name = *bizName
			}
			if bizLat != nil && bizLon != nil {
				biz.Location = &models.Location{Latitude: *bizLat, Longitude: *bizLon}
			}
			c.Business = biz
		}

		candidates = append(candidates, &c)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreQuery("fetch_candidates", time.Since(start), err)
		return nil, fmt.Errorf("%w: candidate rows: %v", feed.ErrStoreUnavailable, err)
	}

	metrics.RecordStoreQuery("fetch_candidates", time.Since(start), nil)
	return candidates, nil
}
