// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package seenstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development and tests. Expiry is
// evaluated lazily on access, mirroring Redis's whole-key TTL semantics:
// every write resets the set's expiry, reads leave it alone.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	cfg     Config

	// now is injectable for TTL tests.
	now func() time.Time
}

type memoryEntry struct {
	members   map[string]struct{}
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory seen-set store.
func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		cfg:     cfg,
		now:     time.Now,
	}
}

// live returns the viewer's entry, dropping it first if expired.
// Callers must hold s.mu.
func (s *MemoryStore) live(viewerID string) *memoryEntry {
	key := s.cfg.key(viewerID)
	entry, ok := s.entries[key]
	if !ok {
		return nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil
	}
	return entry
}

// MarkSeen adds a single content ID.
func (s *MemoryStore) MarkSeen(ctx context.Context, viewerID, contentID string) error {
	return s.MarkSeenBatch(ctx, viewerID, []string{contentID})
}

// MarkSeenBatch adds multiple content IDs and resets the set's expiry.
func (s *MemoryStore) MarkSeenBatch(_ context.Context, viewerID string, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(viewerID)
	if entry == nil {
		entry = &memoryEntry{members: make(map[string]struct{})}
		s.entries[s.cfg.key(viewerID)] = entry
	}
	for _, id := range contentIDs {
		entry.members[id] = struct{}{}
	}
	entry.expiresAt = s.now().Add(s.cfg.TTL)
	return nil
}

// SeenIDs returns the full membership; empty for missing or expired sets.
func (s *MemoryStore) SeenIDs(_ context.Context, viewerID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(viewerID)
	if entry == nil {
		return nil, nil
	}

	ids := make([]string, 0, len(entry.members))
	for id := range entry.members {
		ids = append(ids, id)
	}
	return ids, nil
}

// IsSeen reports membership of a single content ID.
func (s *MemoryStore) IsSeen(_ context.Context, viewerID, contentID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(viewerID)
	if entry == nil {
		return false, nil
	}
	_, seen := entry.members[contentID]
	return seen, nil
}

// RemoveSeen drops one content ID and resets the set's expiry.
func (s *MemoryStore) RemoveSeen(_ context.Context, viewerID, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(viewerID)
	if entry == nil {
		return nil
	}
	delete(entry.members, contentID)
	entry.expiresAt = s.now().Add(s.cfg.TTL)
	return nil
}

// ClearSeen deletes the viewer's entire set.
func (s *MemoryStore) ClearSeen(_ context.Context, viewerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, s.cfg.key(viewerID))
	return nil
}

// Count returns the set cardinality.
func (s *MemoryStore) Count(_ context.Context, viewerID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.live(viewerID)
	if entry == nil {
		return 0, nil
	}
	return int64(len(entry.members)), nil
}
