// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import "errors"

// Sentinel errors forming the engine's error taxonomy. Callers classify
// failures with errors.Is and decide transport mapping themselves; the
// engine never encodes HTTP semantics.
var (
	// ErrViewerNotFound indicates the viewer does not exist.
	ErrViewerNotFound = errors.New("viewer not found")

	// ErrViewerInactive indicates the viewer exists but is deactivated.
	ErrViewerInactive = errors.New("viewer inactive")

	// ErrInvalidCursor indicates a pagination token that cannot be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrInvalidCoordinates indicates latitude/longitude out of range or
	// only one half of the pair supplied.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidLimit indicates a page size outside the configured bounds.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrStoreUnavailable indicates a primary store failure. Retryable by
	// the caller with backoff; the engine does not retry internally.
	ErrStoreUnavailable = errors.New("store unavailable")
)
