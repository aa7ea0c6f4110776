// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// cursorDelimiter separates the score and timestamp halves of the cursor
// payload. Neither strconv.FormatFloat output nor RFC3339 timestamps can
// contain an underscore, so SplitN is unambiguous.
const cursorDelimiter = "_"

// scoreResumeTolerance bounds float drift when matching a decoded score
// against a freshly recomputed one. The score text round-trips through
// FormatFloat/ParseFloat exactly, so in practice equality holds; the
// tolerance guards against future representation changes.
const scoreResumeTolerance = 1e-9

// EncodeCursor packs a (final score, creation timestamp) pair into an
// opaque base64 token. The token is not tamper-resistant and does not need
// to be: it is only ever interpreted by this engine.
func EncodeCursor(score float64, createdAt time.Time) string {
	payload := strconv.FormatFloat(score, 'f', -1, 64) +
		cursorDelimiter +
		createdAt.UTC().Format(time.RFC3339Nano)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// DecodeCursor is the inverse of EncodeCursor. Any token that does not
// decode to a numeric score and a valid timestamp fails with
// ErrInvalidCursor.
func DecodeCursor(cursor string) (float64, time.Time, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: not base64: %v", ErrInvalidCursor, err)
	}

	parts := strings.SplitN(string(raw), cursorDelimiter, 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: missing delimiter", ErrInvalidCursor)
	}

	score, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: bad score: %v", ErrInvalidCursor, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[1])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: bad timestamp: %v", ErrInvalidCursor, err)
	}

	return score, createdAt, nil
}

// resumeIndex scans the ranked pool for the item whose (final, createdAt)
// matches the decoded cursor pair. The pool is recomputed per call, so an
// exact match is not guaranteed; a miss reports found=false and the caller
// falls back to the start of the pool rather than erroring.
func resumeIndex(ranked []ScoredCandidate, score float64, createdAt time.Time) (int, bool) {
	for i := range ranked {
		if math.Abs(ranked[i].Score.Final-score) <= scoreResumeTolerance &&
			ranked[i].Candidate.CreatedAt.Equal(createdAt) {
			return i, true
		}
	}
	return 0, false
}
