// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tastetrail/feedrank/internal/models"
)

// mockViewerStore returns a fixed viewer context and counts calls.
type mockViewerStore struct {
	viewer *models.ViewerContext
	err    error
	calls  int
}

func (m *mockViewerStore) LoadViewerContext(_ context.Context, _ string) (*models.ViewerContext, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	// Copy so the engine's location override does not leak between tests.
	vc := *m.viewer
	return &vc, nil
}

// mockCandidateStore serves a fixed pool, applying the exclusion list the
// way the real store's query would.
type mockCandidateStore struct {
	pool        []*models.Candidate
	err         error
	calls       int
	lastExclude []string
}

func (m *mockCandidateStore) FetchCandidates(_ context.Context, _ string, exclude []string, limit int) ([]*models.Candidate, error) {
	m.calls++
	m.lastExclude = exclude
	if m.err != nil {
		return nil, m.err
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	out := make([]*models.Candidate, 0, len(m.pool))
	for _, c := range m.pool {
		if _, skip := excluded[c.ContentID]; skip {
			continue
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type mockSeenReader struct {
	ids   []string
	err   error
	calls int
}

func (m *mockSeenReader) SeenIDs(_ context.Context, _ string) ([]string, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.ids, nil
}

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// testPool builds three candidates with distinct final scores under the
// default weights, all created within the freshest tier:
//
//	followed:  30 + 2.5 + 6 + 0 + 10 = 48.5
//	matched:   0 + 20 + 6 + 0 + 10  = 36.0
//	plain:     0 + 2.5 + 6 + 0 + 10 = 18.5
func testPool() []*models.Candidate {
	return []*models.Candidate{
		{
			ContentID: "followed", AuthorID: "friend",
			CreatedAt: testNow.Add(-1 * time.Hour),
		},
		{
			ContentID: "matched", AuthorID: "stranger-1",
			CreatedAt: testNow.Add(-2 * time.Hour),
			Business:  &models.Business{BusinessID: "b1", CategoryIDs: []string{"sushi"}},
		},
		{
			ContentID: "plain", AuthorID: "stranger-2",
			CreatedAt: testNow.Add(-3 * time.Hour),
		},
	}
}

func testEngine(t *testing.T, viewers *mockViewerStore, candidates *mockCandidateStore, seen *mockSeenReader) *Engine {
	t.Helper()
	engine, err := NewEngine(nil, viewers, candidates, seen, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	engine.now = func() time.Time { return testNow }
	return engine
}

func defaultMocks() (*mockViewerStore, *mockCandidateStore, *mockSeenReader) {
	viewers := &mockViewerStore{viewer: &models.ViewerContext{
		ViewerID:            "viewer-1",
		Following:           map[string]struct{}{"friend": {}},
		PreferredCategories: map[string]struct{}{"sushi": {}},
	}}
	candidates := &mockCandidateStore{pool: testPool()}
	seen := &mockSeenReader{}
	return viewers, candidates, seen
}

func TestNewEngineRequiresStores(t *testing.T) {
	if _, err := NewEngine(nil, nil, nil, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for nil stores")
	}

	bad := DefaultConfig()
	bad.Weights.Social = 0.9
	viewers, candidates, seen := defaultMocks()
	if _, err := NewEngine(bad, viewers, candidates, seen, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid weights")
	}
}

func TestBuildFeedRanksByScore(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	engine := testEngine(t, viewers, candidates, seen)

	resp, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1"})
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}

	want := []string{"followed", "matched", "plain"}
	if len(resp.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(resp.Items), len(want))
	}
	for i, id := range want {
		if resp.Items[i].ContentID != id {
			t.Errorf("items[%d] = %s, want %s", i, resp.Items[i].ContentID, id)
		}
	}
	if resp.Items[0].FinalScore <= resp.Items[1].FinalScore {
		t.Error("expected strictly descending final scores")
	}

	info := resp.AlgorithmInfo
	if info.FollowingCount != 1 || info.CategoryCount != 1 {
		t.Errorf("algorithm info counts = %+v", info)
	}
	if info.LocationBased {
		t.Error("expected locationBased=false without coordinates")
	}
	if info.AlgorithmVersion != AlgorithmVersion {
		t.Errorf("algorithm version = %q", info.AlgorithmVersion)
	}
	if resp.Pagination.HasNextPage {
		t.Error("expected no next page when pool is smaller than limit")
	}
}

func TestBuildFeedPaginationAcrossPages(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	engine := testEngine(t, viewers, candidates, seen)

	page1, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1", Limit: 2})
	if err != nil {
		t.Fatalf("page 1 failed: %v", err)
	}
	if len(page1.Items) != 2 {
		t.Fatalf("page 1 returned %d items, want 2", len(page1.Items))
	}
	if !page1.Pagination.HasNextPage || page1.Pagination.NextCursor == nil {
		t.Fatal("expected page 1 to carry a next cursor")
	}
	if page1.Items[0].ContentID != "followed" || page1.Items[1].ContentID != "matched" {
		t.Errorf("page 1 = [%s, %s]", page1.Items[0].ContentID, page1.Items[1].ContentID)
	}

	page2, err := engine.BuildFeed(context.Background(), Request{
		ViewerID: "viewer-1",
		Limit:    2,
		Cursor:   *page1.Pagination.NextCursor,
	})
	if err != nil {
		t.Fatalf("page 2 failed: %v", err)
	}
	if len(page2.Items) != 1 || page2.Items[0].ContentID != "plain" {
		t.Fatalf("page 2 = %+v, want the single remaining item", page2.Items)
	}
	if page2.Pagination.HasNextPage {
		t.Error("expected hasNextPage=false on final page")
	}
}

// Paginating an unchanged pool never returns a duplicate and terminates.
func TestBuildFeedPaginationNoDuplicates(t *testing.T) {
	viewers, candidates, seen := defaultMocks()

	// A larger pool with distinct timestamps so every (score, createdAt)
	// pair is unique.
	pool := make([]*models.Candidate, 0, 9)
	for i := 0; i < 9; i++ {
		pool = append(pool, &models.Candidate{
			ContentID: fmt.Sprintf("content-%d", i),
			AuthorID:  "stranger",
			CreatedAt: testNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	candidates.pool = pool

	engine := testEngine(t, viewers, candidates, seen)

	seenIDs := make(map[string]int)
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
		resp, err := engine.BuildFeed(context.Background(), Request{
			ViewerID: "viewer-1", Limit: 2, Cursor: cursor,
		})
		if err != nil {
			t.Fatalf("page failed: %v", err)
		}
		for _, item := range resp.Items {
			seenIDs[item.ContentID]++
		}
		if !resp.Pagination.HasNextPage {
			break
		}
		cursor = *resp.Pagination.NextCursor
	}

	if len(seenIDs) != len(pool) {
		t.Errorf("saw %d distinct items, want %d", len(seenIDs), len(pool))
	}
	for id, n := range seenIDs {
		if n != 1 {
			t.Errorf("item %s returned %d times", id, n)
		}
	}
}

func TestBuildFeedSeenExclusion(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	seen.ids = []string{"matched"}
	engine := testEngine(t, viewers, candidates, seen)

	resp, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1"})
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}

	for _, item := range resp.Items {
		if item.ContentID == "matched" {
			t.Error("seen content leaked into the feed")
		}
	}
	if resp.AlgorithmInfo.SeenExcludedCount != 1 {
		t.Errorf("seenExcludedCount = %d, want 1", resp.AlgorithmInfo.SeenExcludedCount)
	}
	if len(candidates.lastExclude) != 1 || candidates.lastExclude[0] != "matched" {
		t.Errorf("exclusion list passed to store = %v", candidates.lastExclude)
	}
}

func TestBuildFeedSeenStoreFailureDegrades(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	seen.err = errors.New("redis: connection refused")
	engine := testEngine(t, viewers, candidates, seen)

	resp, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1"})
	if err != nil {
		t.Fatalf("expected seen-set failure to be absorbed, got %v", err)
	}
	if len(resp.Items) != 3 {
		t.Errorf("got %d items, want full pool on degraded seen-set", len(resp.Items))
	}
	if resp.AlgorithmInfo.SeenExcludedCount != 0 {
		t.Errorf("seenExcludedCount = %d, want 0", resp.AlgorithmInfo.SeenExcludedCount)
	}
}

func TestBuildFeedInvalidCursorRejectedBeforeStores(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	engine := testEngine(t, viewers, candidates, seen)

	_, err := engine.BuildFeed(context.Background(), Request{
		ViewerID: "viewer-1",
		Cursor:   "not-base64!!!",
	})
	if !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
	if viewers.calls != 0 || candidates.calls != 0 || seen.calls != 0 {
		t.Error("expected no store access for an invalid cursor")
	}
}

func TestBuildFeedInvalidCoordinatesRejectedBeforeStores(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	engine := testEngine(t, viewers, candidates, seen)

	_, err := engine.BuildFeed(context.Background(), Request{
		ViewerID: "viewer-1",
		Location: &models.Location{Latitude: 95, Longitude: 0},
	})
	if !errors.Is(err, ErrInvalidCoordinates) {
		t.Fatalf("expected ErrInvalidCoordinates, got %v", err)
	}
	if viewers.calls != 0 || candidates.calls != 0 {
		t.Error("expected no store access for invalid coordinates")
	}
}

func TestBuildFeedLocationOverride(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	// Put the matched candidate's business at a known spot.
	candidates.pool[1].Business.Location = &models.Location{Latitude: 35.6595, Longitude: 139.7005}
	engine := testEngine(t, viewers, candidates, seen)

	resp, err := engine.BuildFeed(context.Background(), Request{
		ViewerID: "viewer-1",
		Location: &models.Location{Latitude: 35.6595, Longitude: 139.7005},
	})
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}
	if !resp.AlgorithmInfo.LocationBased {
		t.Error("expected locationBased=true with caller coordinates")
	}

	for _, item := range resp.Items {
		if item.ContentID == "matched" && item.Score.Location != 100 {
			t.Errorf("matched location score = %v, want 100 at distance 0", item.Score.Location)
		}
	}
}

func TestBuildFeedViewerErrorsPassThrough(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", ErrViewerNotFound},
		{"inactive", ErrViewerInactive},
		{"store down", ErrStoreUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viewers, candidates, seen := defaultMocks()
			viewers.err = tt.err
			engine := testEngine(t, viewers, candidates, seen)

			_, err := engine.BuildFeed(context.Background(), Request{ViewerID: "nobody"})
			if !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestBuildFeedCandidateStoreFailure(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	candidates.err = fmt.Errorf("%w: connection reset", ErrStoreUnavailable)
	engine := testEngine(t, viewers, candidates, seen)

	_, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1"})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestBuildFeedLimitNormalization(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	engine := testEngine(t, viewers, candidates, seen)

	// Zero limit uses the default.
	resp, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1"})
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Errorf("got %d items with default limit, want full pool", len(resp.Items))
	}

	for _, limit := range []int{-1, 51} {
		_, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1", Limit: limit})
		if !errors.Is(err, ErrInvalidLimit) {
			t.Errorf("limit %d: got %v, want ErrInvalidLimit", limit, err)
		}
	}
}

func TestBuildFeedEmptyPool(t *testing.T) {
	viewers, candidates, seen := defaultMocks()
	candidates.pool = nil
	engine := testEngine(t, viewers, candidates, seen)

	resp, err := engine.BuildFeed(context.Background(), Request{ViewerID: "viewer-1"})
	if err != nil {
		t.Fatalf("BuildFeed failed: %v", err)
	}
	if len(resp.Items) != 0 {
		t.Errorf("got %d items, want 0", len(resp.Items))
	}
	if resp.Pagination.HasNextPage {
		t.Error("expected hasNextPage=false for empty pool")
	}
}
