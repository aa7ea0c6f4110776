// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package models

import "testing"

func TestLocationValid(t *testing.T) {
	tests := []struct {
		name string
		loc  Location
		want bool
	}{
		{"origin", Location{0, 0}, true},
		{"nyc", Location{40.7128, -74.0060}, true},
		{"lat north pole", Location{90, 0}, true},
		{"lat south pole", Location{-90, 0}, true},
		{"lon date line east", Location{0, 180}, true},
		{"lon date line west", Location{0, -180}, true},
		{"lat too high", Location{95, 0}, false},
		{"lat too low", Location{-90.1, 0}, false},
		{"lon too high", Location{0, 180.5}, false},
		{"lon too low", Location{0, -181}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewerContextFollows(t *testing.T) {
	vc := &ViewerContext{
		ViewerID:  "viewer-1",
		Following: map[string]struct{}{"author-1": {}, "author-2": {}},
	}

	if !vc.Follows("author-1") {
		t.Error("expected Follows(author-1) = true")
	}
	if vc.Follows("author-3") {
		t.Error("expected Follows(author-3) = false")
	}

	empty := &ViewerContext{ViewerID: "viewer-2"}
	if empty.Follows("author-1") {
		t.Error("expected Follows on nil set = false")
	}
}

func TestViewerContextPrefersAnyCategory(t *testing.T) {
	vc := &ViewerContext{
		PreferredCategories: map[string]struct{}{"sushi": {}, "ramen": {}},
	}

	if !vc.PrefersAnyCategory([]string{"bbq", "ramen"}) {
		t.Error("expected overlap to be detected")
	}
	if vc.PrefersAnyCategory([]string{"bbq", "tacos"}) {
		t.Error("expected no overlap")
	}
	if vc.PrefersAnyCategory(nil) {
		t.Error("expected empty input to report no overlap")
	}
}

func TestCandidateBusinessAccessors(t *testing.T) {
	noBiz := &Candidate{ContentID: "c1"}
	if noBiz.BusinessCategoryIDs() != nil {
		t.Error("expected nil categories without business")
	}
	if noBiz.BusinessLocation() != nil {
		t.Error("expected nil location without business")
	}

	withBiz := &Candidate{
		ContentID: "c2",
		Business: &Business{
			BusinessID:  "b1",
			CategoryIDs: []string{"sushi"},
			Location:    &Location{Latitude: 35.66, Longitude: 139.7},
		},
	}
	if got := withBiz.BusinessCategoryIDs(); len(got) != 1 || got[0] != "sushi" {
		t.Errorf("BusinessCategoryIDs() = %v", got)
	}
	if withBiz.BusinessLocation() == nil {
		t.Error("expected business location")
	}
}
