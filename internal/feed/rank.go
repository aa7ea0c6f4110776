// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"sort"

	"github.com/tastetrail/feedrank/internal/models"
)

// ScoredCandidate pairs a candidate with its computed score.
type ScoredCandidate struct {
	Candidate *models.Candidate
	Score     Score
}

// Rank sorts the scored pool in place: final score descending, creation
// time descending on ties (newer wins). The ordering is a strict total
// order for any two candidates with distinct (score, createdAt) pairs;
// relative order of exact duplicates is unspecified.
func Rank(pool []ScoredCandidate) {
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Score.Final != pool[j].Score.Final {
			return pool[i].Score.Final > pool[j].Score.Final
		}
		return pool[i].Candidate.CreatedAt.After(pool[j].Candidate.CreatedAt)
	})
}
