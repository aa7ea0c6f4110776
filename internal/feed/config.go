// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"fmt"
	"math"
)

// AlgorithmVersion identifies the scoring model in responses so that
// client-side experiments can attribute behavior to a model revision.
const AlgorithmVersion = "weighted-5signal-v1"

// weightSumTolerance bounds float drift when validating that weights sum
// to exactly 1.0.
const weightSumTolerance = 1e-9

// Weights defines the contribution of each scoring signal to the final
// score. The five weights must sum to 1.0 so that the final score stays
// in [0,100].
type Weights struct {
	// Social is the weight of the followed-author signal.
	Social float64 `json:"social"`

	// Category is the weight of the category-relevance signal.
	Category float64 `json:"category"`

	// Location is the weight of the proximity signal.
	Location float64 `json:"location"`

	// Engagement is the weight of the view/like/comment signal.
	Engagement float64 `json:"engagement"`

	// Freshness is the weight of the age-tier signal.
	Freshness float64 `json:"freshness"`
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Social:     0.30,
		Category:   0.25,
		Location:   0.20,
		Engagement: 0.15,
		Freshness:  0.10,
	}
}

// Validate checks that every weight is non-negative and the sum is 1.0.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"social":     w.Social,
		"category":   w.Category,
		"location":   w.Location,
		"engagement": w.Engagement,
		"freshness":  w.Freshness,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, v)
		}
	}

	sum := w.Social + w.Category + w.Location + w.Engagement + w.Freshness
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0, got %v", sum)
	}
	return nil
}

// Config contains the operational parameters of the ranking engine.
type Config struct {
	// Weights are the signal weights for the scoring model.
	Weights Weights `json:"weights"`

	// PoolSize bounds the candidate pool fetched per request.
	PoolSize int `json:"pool_size"`

	// DefaultLimit is the page size used when the caller supplies none.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit caps the caller-supplied page size.
	MaxLimit int `json:"max_limit"`
}

// DefaultConfig returns the production engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Weights:      DefaultWeights(),
		PoolSize:     100,
		DefaultLimit: 10,
		MaxLimit:     50,
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", c.PoolSize)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit %d must be >= default_limit %d", c.MaxLimit, c.DefaultLimit)
	}
	return nil
}
