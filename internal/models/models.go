// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package models defines the core data types shared across feedrank:
// viewers, candidates, businesses, and locations. These are read-only
// snapshots loaded per request; nothing in this package performs I/O.
package models

import "time"

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the coordinates are within WGS84 bounds.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// ViewerContext carries everything the scoring engine needs to know about
// the viewer issuing a feed request. It is loaded fresh per request and
// never mutated afterwards.
type ViewerContext struct {
	// ViewerID identifies the viewer the feed is built for.
	ViewerID string

	// Following is the set of author IDs the viewer follows.
	Following map[string]struct{}

	// PreferredCategories is the set of category IDs the viewer has
	// expressed interest in.
	PreferredCategories map[string]struct{}

	// Location is the viewer's position for proximity scoring. A
	// caller-supplied override takes precedence over the stored last
	// known location. Nil when neither is available.
	Location *Location
}

// Follows reports whether the viewer follows the given author.
func (v *ViewerContext) Follows(authorID string) bool {
	_, ok := v.Following[authorID]
	return ok
}

// PrefersAnyCategory reports whether any of the given category IDs is in
// the viewer's preferred set.
func (v *ViewerContext) PrefersAnyCategory(categoryIDs []string) bool {
	for _, id := range categoryIDs {
		if _, ok := v.PreferredCategories[id]; ok {
			return true
		}
	}
	return false
}

// Business is the venue a piece of content reviews. CategoryIDs and
// Location drive the category and proximity signals.
type Business struct {
	BusinessID  string    `json:"business_id"`
	Name        string    `json:"name"`
	CategoryIDs []string  `json:"category_ids"`
	Location    *Location `json:"location,omitempty"`
}

// Candidate is a single piece of content eligible for ranking. It is a
// read-only snapshot of the primary store at fetch time; counters are not
// refreshed during a request.
type Candidate struct {
	ContentID    string    `json:"content_id"`
	AuthorID     string    `json:"author_id"`
	Business     *Business `json:"business,omitempty"`
	MediaURL     string    `json:"media_url"`
	Caption      string    `json:"caption,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ViewCount    int64     `json:"view_count"`
	LikeCount    int64     `json:"like_count"`
	CommentCount int64     `json:"comment_count"`
}

// BusinessCategoryIDs returns the candidate's business category IDs, or
// nil when the candidate has no associated business.
func (c *Candidate) BusinessCategoryIDs() []string {
	if c.Business == nil {
		return nil
	}
	return c.Business.CategoryIDs
}

// BusinessLocation returns the candidate's business location, or nil when
// the business or its location is unknown.
func (c *Candidate) BusinessLocation() *Location {
	if c.Business == nil {
		return nil
	}
	return c.Business.Location
}
