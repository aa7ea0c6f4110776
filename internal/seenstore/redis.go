// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package seenstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tastetrail/feedrank/internal/metrics"
)

// RedisStore implements Store on a Redis set per viewer. A circuit breaker
// wraps every call so that a dead Redis fails fast instead of stalling
// each feed request for a full connect timeout.
type RedisStore struct {
	client redis.UniversalClient
	cfg    Config
	cb     *gobreaker.CircuitBreaker[any]
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed seen-set store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRedisStore(client redis.UniversalClient, cfg Config, logger zerolog.Logger) (*RedisStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seenstore config: %w", err)
	}

	componentLogger := logger.With().Str("component", "seenstore").Logger()
	metrics.SetSeenStoreBreakerState(0)

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "seenstore-redis",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		// Open after a 60% failure rate with at least 10 requests in the
		// measurement window.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			componentLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.SetSeenStoreBreakerState(breakerStateValue(to))
		},
	})

	return &RedisStore{
		client: client,
		cfg:    cfg,
		cb:     cb,
		logger: componentLogger,
	}, nil
}

// breakerStateValue maps gobreaker states onto the gauge encoding.
func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// execute runs op through the breaker and records operation metrics.
func (s *RedisStore) execute(operation string, op func() (any, error)) (any, error) {
	start := time.Now()
	result, err := s.cb.Execute(op)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordSeenStoreOperation(operation, outcome, time.Since(start))

	return result, err
}

// MarkSeen adds one content ID and refreshes the TTL in a single pipeline.
func (s *RedisStore) MarkSeen(ctx context.Context, viewerID, contentID string) error {
	return s.MarkSeenBatch(ctx, viewerID, []string{contentID})
}

// MarkSeenBatch adds multiple content IDs in one pipelined round-trip.
func (s *RedisStore) MarkSeenBatch(ctx context.Context, viewerID string, contentIDs []string) error {
	if len(contentIDs) == 0 {
		return nil
	}

	members := make([]any, len(contentIDs))
	for i, id := range contentIDs {
		members[i] = id
	}

	key := s.cfg.key(viewerID)
	_, err := s.execute("mark_seen", func() (any, error) {
		return s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SAdd(ctx, key, members...)
			pipe.Expire(ctx, key, s.cfg.TTL)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("mark seen for viewer %s: %w", viewerID, err)
	}
	return nil
}

// SeenIDs reads the full membership without touching the TTL.
func (s *RedisStore) SeenIDs(ctx context.Context, viewerID string) ([]string, error) {
	result, err := s.execute("members", func() (any, error) {
		return s.client.SMembers(ctx, s.cfg.key(viewerID)).Result()
	})
	if err != nil {
		return nil, fmt.Errorf("read seen-set for viewer %s: %w", viewerID, err)
	}
	ids, _ := result.([]string)
	return ids, nil
}

// IsSeen reports membership of a single content ID.
func (s *RedisStore) IsSeen(ctx context.Context, viewerID, contentID string) (bool, error) {
	result, err := s.execute("is_seen", func() (any, error) {
		return s.client.SIsMember(ctx, s.cfg.key(viewerID), contentID).Result()
	})
	if err != nil {
		return false, fmt.Errorf("check seen for viewer %s: %w", viewerID, err)
	}
	seen, _ := result.(bool)
	return seen, nil
}

// RemoveSeen drops one content ID and refreshes the TTL of what remains.
func (s *RedisStore) RemoveSeen(ctx context.Context, viewerID, contentID string) error {
	key := s.cfg.key(viewerID)
	_, err := s.execute("remove", func() (any, error) {
		return s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SRem(ctx, key, contentID)
			pipe.Expire(ctx, key, s.cfg.TTL)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("remove seen for viewer %s: %w", viewerID, err)
	}
	return nil
}

// ClearSeen deletes the viewer's entire set.
func (s *RedisStore) ClearSeen(ctx context.Context, viewerID string) error {
	_, err := s.execute("clear", func() (any, error) {
		return s.client.Del(ctx, s.cfg.key(viewerID)).Result()
	})
	if err != nil {
		return fmt.Errorf("clear seen-set for viewer %s: %w", viewerID, err)
	}
	return nil
}

// Count returns the set cardinality.
func (s *RedisStore) Count(ctx context.Context, viewerID string) (int64, error) {
	result, err := s.execute("count", func() (any, error) {
		return s.client.SCard(ctx, s.cfg.key(viewerID)).Result()
	})
	if err != nil {
		return 0, fmt.Errorf("count seen-set for viewer %s: %w", viewerID, err)
	}
	n, _ := result.(int64)
	return n, nil
}
