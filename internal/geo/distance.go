// Package geo holds the coordinate math used by the lot queries.
package geo

import (
	"math"

	"github.com/umahmood/haversine"
)

// DistanceKm returns the great-circle distance in kilometers between two
// points given in decimal degrees. Coordinates are not range checked.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := haversine.Coord{Lat: lat1, Lon: lon1}
	p2 := haversine.Coord{Lat: lat2, Lon: lon2}
	_, km := haversine.Distance(p1, p2)
	return km
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
