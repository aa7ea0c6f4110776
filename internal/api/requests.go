// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/tastetrail/feedrank/internal/feed"
	"github.com/tastetrail/feedrank/internal/models"
)

// viewerIDHeader identifies the authenticated viewer. Authentication
// happens upstream at the gateway; feedrank trusts this header.
const viewerIDHeader = "X-Viewer-ID"

var validate = validator.New()

// MarkSeenRequest is the body of POST /api/v1/feed/seen.
type MarkSeenRequest struct {
	ContentIDs []string `json:"content_ids" validate:"required,min=1,max=500,dive,required"`
}

// parseFeedRequest builds a feed.Request from query parameters and the
// viewer header. Latitude and longitude must be supplied together.
func parseFeedRequest(r *http.Request) (feed.Request, error) {
	req := feed.Request{
		ViewerID: r.Header.Get(viewerIDHeader),
		Cursor:   r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return feed.Request{}, fmt.Errorf("limit must be an integer: %w", err)
		}
		req.Limit = limit
	}

	lat, hasLat, err := parseCoordinate(r, "latitude")
	if err != nil {
		return feed.Request{}, err
	}
	lon, hasLon, err := parseCoordinate(r, "longitude")
	if err != nil {
		return feed.Request{}, err
	}
	if hasLat != hasLon {
		return feed.Request{}, fmt.Errorf("%w: latitude and longitude must be supplied together", feed.ErrInvalidCoordinates)
	}
	if hasLat {
		req.Location = &models.Location{Latitude: lat, Longitude: lon}
	}

	return req, nil
}

func parseCoordinate(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be a number: %w", name, err)
	}
	return v, true, nil
}
