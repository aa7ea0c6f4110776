// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package seenstore implements the per-viewer seen-set: the ephemeral,
// TTL-bearing record of content already shown, used to keep the feed from
// repeating itself.
//
// Two implementations are provided: RedisStore for production and
// MemoryStore for development and tests. All operations are advisory to
// correctness: a missed exclusion merely re-shows content once, so callers
// absorb failures rather than failing the surrounding request.
package seenstore

import (
	"context"
	"fmt"
	"time"
)

// Store is the full read/write contract for the seen-set. The ranking
// engine consumes only the read side (feed.SeenReader); the API layer uses
// the rest for explicit seen management.
type Store interface {
	// MarkSeen adds a single content ID to the viewer's seen-set.
	// Idempotent; refreshes the set's TTL.
	MarkSeen(ctx context.Context, viewerID, contentID string) error

	// MarkSeenBatch adds multiple content IDs in one round-trip.
	// Idempotent; a no-op on empty input; refreshes the set's TTL.
	MarkSeenBatch(ctx context.Context, viewerID string, contentIDs []string) error

	// SeenIDs returns the full membership of the viewer's seen-set. A
	// missing key yields an empty slice, not an error. Does not extend
	// the TTL.
	SeenIDs(ctx context.Context, viewerID string) ([]string, error)

	// IsSeen reports whether the content ID is in the viewer's seen-set.
	IsSeen(ctx context.Context, viewerID, contentID string) (bool, error)

	// RemoveSeen drops one content ID, making it eligible to be shown
	// again. Refreshes the set's TTL.
	RemoveSeen(ctx context.Context, viewerID, contentID string) error

	// ClearSeen drops the viewer's entire seen-set.
	ClearSeen(ctx context.Context, viewerID string) error

	// Count returns the number of entries in the viewer's seen-set.
	Count(ctx context.Context, viewerID string) (int64, error)
}

// DefaultTTL is how long a seen-set survives without writes.
const DefaultTTL = 30 * 24 * time.Hour

// DefaultKeyPrefix namespaces seen-set keys in the shared cache.
const DefaultKeyPrefix = "feed:seen:"

// Config holds seen-set store parameters.
type Config struct {
	// KeyPrefix namespaces the per-viewer keys.
	KeyPrefix string `json:"key_prefix"`

	// TTL is the idle lifetime of a seen-set, refreshed on every write.
	TTL time.Duration `json:"ttl"`
}

// DefaultConfig returns the production seen-set configuration.
func DefaultConfig() Config {
	return Config{
		KeyPrefix: DefaultKeyPrefix,
		TTL:       DefaultTTL,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.KeyPrefix == "" {
		return fmt.Errorf("key_prefix must not be empty")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive, got %v", c.TTL)
	}
	return nil
}

// key returns the cache key for one viewer's seen-set.
func (c Config) key(viewerID string) string {
	return c.KeyPrefix + viewerID
}
