// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"time"

	"github.com/tastetrail/feedrank/internal/models"
)

// Signal score constants. Each component is bounded to [0,100] so the
// weighted sum stays in [0,100] when weights sum to 1.0.
const (
	socialFollowed = 100.0

	categoryMatched  = 80.0
	categoryBaseline = 10.0 // unmatched content keeps nonzero relevance

	locationNeutral    = 30.0 // either location unknown
	locationSlopePerKm = 2.0  // saturates to 0 at 50 km

	engagementViewWeight    = 0.1
	engagementLikeWeight    = 2.0
	engagementCommentWeight = 3.0
	engagementCap           = 100.0
)

// freshnessTiers maps inclusive age upper bounds to freshness scores.
// Evaluated in ascending order, first match wins; anything older than the
// last tier scores freshnessFloor.
var freshnessTiers = []struct {
	maxAge time.Duration
	score  float64
}{
	{24 * time.Hour, 100},
	{72 * time.Hour, 80},
	{168 * time.Hour, 60},
	{720 * time.Hour, 40},
}

const freshnessFloor = 20.0

// Score holds the five component values and the derived weighted final
// score for one candidate. Computed once per candidate per request; never
// persisted.
type Score struct {
	Social     float64 `json:"social"`
	Category   float64 `json:"category"`
	Location   float64 `json:"location"`
	Engagement float64 `json:"engagement"`
	Freshness  float64 `json:"freshness"`
	Final      float64 `json:"final"`
}

// ComputeScore evaluates the five-signal model for a single candidate.
// It is a pure function: no I/O, no side effects, and identical inputs
// always produce the identical score. That determinism is what makes
// cursor resume by exact score match possible at all.
func ComputeScore(viewer *models.ViewerContext, candidate *models.Candidate, now time.Time, w Weights) Score {
	s := Score{
		Social:     socialScore(viewer, candidate),
		Category:   categoryScore(viewer, candidate),
		Location:   locationScore(viewer.Location, candidate.BusinessLocation()),
		Engagement: engagementScore(candidate),
		Freshness:  freshnessScore(candidate.CreatedAt, now),
	}

	s.Final = w.Social*s.Social +
		w.Category*s.Category +
		w.Location*s.Location +
		w.Engagement*s.Engagement +
		w.Freshness*s.Freshness

	return s
}

// socialScore is 100 when the viewer follows the candidate's author.
func socialScore(viewer *models.ViewerContext, candidate *models.Candidate) float64 {
	if viewer.Follows(candidate.AuthorID) {
		return socialFollowed
	}
	return 0
}

// categoryScore is 80 when the candidate's business shares at least one
// category with the viewer's preferred set, else a nonzero baseline.
func categoryScore(viewer *models.ViewerContext, candidate *models.Candidate) float64 {
	if viewer.PrefersAnyCategory(candidate.BusinessCategoryIDs()) {
		return categoryMatched
	}
	return categoryBaseline
}

// locationScore decays linearly with distance and saturates to 0 beyond
// 50 km. When either side's location is unknown it returns a neutral
// default rather than penalizing the candidate.
func locationScore(viewerLoc, businessLoc *models.Location) float64 {
	if viewerLoc == nil || businessLoc == nil {
		return locationNeutral
	}

	score := 100 - locationSlopePerKm*DistanceKm(*viewerLoc, *businessLoc)
	if score < 0 {
		return 0
	}
	return score
}

// engagementScore weights comments most and views least, capped at 100.
func engagementScore(candidate *models.Candidate) float64 {
	raw := float64(candidate.ViewCount)*engagementViewWeight +
		float64(candidate.LikeCount)*engagementLikeWeight +
		float64(candidate.CommentCount)*engagementCommentWeight
	if raw > engagementCap {
		return engagementCap
	}
	return raw
}

// freshnessScore assigns tiered scores by age since creation.
func freshnessScore(createdAt, now time.Time) float64 {
	age := now.Sub(createdAt)
	for _, tier := range freshnessTiers {
		if age <= tier.maxAge {
			return tier.score
		}
	}
	return freshnessFloor
}
