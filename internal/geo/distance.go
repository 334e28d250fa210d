// Meetra Recommend - Multi-Signal Activity Recommendation Engine
// Copyright 2026 Meetra Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/meetra-labs/recommend

// Package geo provides great-circle distance math for proximity scoring.
// All distances are expressed in meters; callers must never reintroduce
// mixed units (the original system computed kilometers in one place and
// miles in another, which this package exists to prevent).
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate pair.
type Point struct {
	// Lat is the latitude in decimal degrees (-90 to 90).
	Lat float64 `json:"lat" koanf:"lat"`

	// Lon is the longitude in decimal degrees (-180 to 180).
	Lon float64 `json:"lon" koanf:"lon"`
}

// IsZero reports whether the point is the zero value.
// The null island coordinate (0, 0) is treated as "no location" because no
// candidate or user in the system legitimately sits there.
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lon == 0
}

// Distance calculates the great-circle distance between two points using
// the haversine formula. Returns distance in meters.
func Distance(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180.0
	lon1 := a.Lon * math.Pi / 180.0
	lat2 := b.Lat * math.Pi / 180.0
	lon2 := b.Lon * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}
