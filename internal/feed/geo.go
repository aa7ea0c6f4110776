// TasteTrail feedrank - Personalized Review Feed Ranking Service
// Copyright 2026 TasteTrail
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastetrail/feedrank

package feed

import (
	"math"

	"github.com/tastetrail/feedrank/internal/models"
)

// earthRadiusKm is the mean Earth radius used by the equirectangular
// approximation.
const earthRadiusKm = 6371.0

// DistanceKm returns the approximate planar distance in kilometers between
// two coordinate pairs, using the equirectangular projection rather than a
// true great-circle formula.
//
// The approximation treats longitude separation as scaled by the cosine of
// the mean latitude. Error versus haversine stays well under 1% for the
// sub-50km separations the proximity signal cares about; it degrades near
// the poles and for antipodal points, neither of which matters here.
func DistanceKm(a, b models.Location) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	lonA := a.Longitude * math.Pi / 180
	lonB := b.Longitude * math.Pi / 180

	x := (lonB - lonA) * math.Cos((latA+latB)/2)
	y := latB - latA

	return math.Sqrt(x*x+y*y) * earthRadiusKm
}
