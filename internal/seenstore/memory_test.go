// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package seenstore

import (
	"context"
	"sort"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(Config{KeyPrefix: "test:seen:", TTL: time.Hour})
}

func TestMarkSeenIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.MarkSeen(ctx, "viewer-1", "content-a"); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := store.MarkSeen(ctx, "viewer-1", "content-a"); err != nil {
		t.Fatalf("second MarkSeen failed: %v", err)
	}

	n, err := store.Count(ctx, "viewer-1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d after double mark, want 1", n)
	}
}

func TestMarkSeenBatch(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.MarkSeenBatch(ctx, "viewer-1", []string{"a", "b", "c", "b"}); err != nil {
		t.Fatalf("MarkSeenBatch failed: %v", err)
	}

	ids, err := store.SeenIDs(ctx, "viewer-1")
	if err != nil {
		t.Fatalf("SeenIDs failed: %v", err)
	}
	sort.Strings(ids)
	want := []string{"a", "b", "c"}
	if len(ids) != len(want) {
		t.Fatalf("SeenIDs = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("SeenIDs = %v, want %v", ids, want)
			break
		}
	}
}

func TestMarkSeenBatchEmptyIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.MarkSeenBatch(ctx, "viewer-1", nil); err != nil {
		t.Fatalf("empty MarkSeenBatch errored: %v", err)
	}
	n, _ := store.Count(ctx, "viewer-1")
	if n != 0 {
		t.Errorf("Count = %d after empty batch, want 0", n)
	}
}

func TestSeenIDsMissingViewerIsEmpty(t *testing.T) {
	store := newTestStore(t)

	ids, err := store.SeenIDs(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("SeenIDs on missing key errored: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("SeenIDs = %v, want empty", ids)
	}
}

func TestIsSeen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.MarkSeen(ctx, "viewer-1", "content-a")

	seen, err := store.IsSeen(ctx, "viewer-1", "content-a")
	if err != nil || !seen {
		t.Errorf("IsSeen(content-a) = (%v, %v), want (true, nil)", seen, err)
	}
	seen, err = store.IsSeen(ctx, "viewer-1", "content-b")
	if err != nil || seen {
		t.Errorf("IsSeen(content-b) = (%v, %v), want (false, nil)", seen, err)
	}
}

func TestRemoveSeen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.MarkSeenBatch(ctx, "viewer-1", []string{"a", "b"})
	if err := store.RemoveSeen(ctx, "viewer-1", "a"); err != nil {
		t.Fatalf("RemoveSeen failed: %v", err)
	}

	seen, _ := store.IsSeen(ctx, "viewer-1", "a")
	if seen {
		t.Error("expected a to be removable")
	}
	n, _ := store.Count(ctx, "viewer-1")
	if n != 1 {
		t.Errorf("Count = %d after removal, want 1", n)
	}

	// Removing from a missing set is a no-op.
	if err := store.RemoveSeen(ctx, "nobody", "a"); err != nil {
		t.Errorf("RemoveSeen on missing set errored: %v", err)
	}
}

func TestClearSeen(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.MarkSeenBatch(ctx, "viewer-1", []string{"a", "b", "c"})
	if err := store.ClearSeen(ctx, "viewer-1"); err != nil {
		t.Fatalf("ClearSeen failed: %v", err)
	}

	ids, err := store.SeenIDs(ctx, "viewer-1")
	if err != nil {
		t.Fatalf("SeenIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("SeenIDs after clear = %v, want empty", ids)
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Config{KeyPrefix: "test:seen:", TTL: time.Hour})

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	_ = store.MarkSeen(ctx, "viewer-1", "content-a")

	// Reads within the TTL see the entry and do not extend it.
	current = current.Add(59 * time.Minute)
	if seen, _ := store.IsSeen(ctx, "viewer-1", "content-a"); !seen {
		t.Error("entry expired before TTL")
	}

	// Reads past the TTL see nothing: the read did not refresh.
	current = current.Add(2 * time.Minute)
	if seen, _ := store.IsSeen(ctx, "viewer-1", "content-a"); seen {
		t.Error("entry survived past TTL despite no writes")
	}
	if n, _ := store.Count(ctx, "viewer-1"); n != 0 {
		t.Errorf("Count = %d after expiry, want 0", n)
	}
}

func TestWriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Config{KeyPrefix: "test:seen:", TTL: time.Hour})

	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	_ = store.MarkSeen(ctx, "viewer-1", "content-a")

	// A write at 50 minutes pushes expiry out another hour.
	current = current.Add(50 * time.Minute)
	_ = store.MarkSeen(ctx, "viewer-1", "content-b")

	current = current.Add(50 * time.Minute)
	if seen, _ := store.IsSeen(ctx, "viewer-1", "content-a"); !seen {
		t.Error("write should have refreshed the whole set's TTL")
	}
}

func TestViewersAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.MarkSeen(ctx, "viewer-1", "content-a")

	if seen, _ := store.IsSeen(ctx, "viewer-2", "content-a"); seen {
		t.Error("seen-set leaked across viewers")
	}
	_ = store.ClearSeen(ctx, "viewer-2")
	if seen, _ := store.IsSeen(ctx, "viewer-1", "content-a"); !seen {
		t.Error("clearing one viewer affected another")
	}
}
