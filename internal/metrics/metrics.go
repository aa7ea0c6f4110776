// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

// Package metrics provides Prometheus instrumentation for feedrank.
//
// All collectors are registered on the default registry via promauto and
// exposed through the /metrics endpoint. Components record through the
// helper functions rather than touching collectors directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedrank_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Feed Ranking Metrics
	FeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_feed_requests_total",
			Help: "Total number of feed ranking requests",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	FeedRankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrank_rank_duration_seconds",
			Help:    "End-to-end duration of a single feed ranking pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	FeedCandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrank_candidates_scored",
			Help:    "Number of candidates scored per feed request",
			Buckets: []float64{0, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	FeedSeenFiltered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feedrank_seen_filtered",
			Help:    "Number of candidates excluded by the seen-set per request",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	CursorDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedrank_cursor_decode_failures_total",
			Help: "Total number of pagination cursors rejected as malformed",
		},
	)

	CursorResumeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feedrank_cursor_resume_fallbacks_total",
			Help: "Total number of valid cursors whose position was no longer present in the ranked list",
		},
	)

	// Postgres Store Metrics
	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_store_query_duration_seconds",
			Help:    "Duration of Postgres queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_store_query_errors_total",
			Help: "Total number of Postgres query errors",
		},
		[]string{"operation"},
	)

	// Seen-Set Store Metrics
	SeenStoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedrank_seenstore_operations_total",
			Help: "Total number of seen-set store operations",
		},
		[]string{"operation", "outcome"}, // outcome: "ok", "error", "degraded"
	)

	SeenStoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedrank_seenstore_operation_duration_seconds",
			Help:    "Duration of seen-set store operations in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	SeenStoreBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedrank_seenstore_breaker_state",
			Help: "Circuit breaker state for the seen-set store (0=closed, 1=half-open, 2=open)",
		},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFeedRequest records the outcome of a full ranking pass.
func RecordFeedRequest(outcome string, duration time.Duration, scored, seenFiltered int) {
	FeedRequestsTotal.WithLabelValues(outcome).Inc()
	FeedRankDuration.Observe(duration.Seconds())
	FeedCandidatesScored.Observe(float64(scored))
	FeedSeenFiltered.Observe(float64(seenFiltered))
}

// RecordStoreQuery records a Postgres query with its outcome.
func RecordStoreQuery(operation string, duration time.Duration, err error) {
	StoreQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordSeenStoreOperation records a seen-set store call.
// outcome is "ok" for success, "error" for a hard failure, and "degraded"
// when the failure was absorbed and the caller continued without the store.
func RecordSeenStoreOperation(operation, outcome string, duration time.Duration) {
	SeenStoreOperations.WithLabelValues(operation, outcome).Inc()
	SeenStoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetSeenStoreBreakerState updates the breaker state gauge.
func SetSeenStoreBreakerState(state float64) {
	SeenStoreBreakerState.Set(state)
}
