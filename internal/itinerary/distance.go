package itinerary

import (
	"github.com/golang/geo/s2"

	"github.com/pkordes/itinerary-planner/backend/internal/domain"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371008.8

// SegmentDistance returns the great-circle distance in meters walked between
// consecutive activities of list that have coordinates. Activities without
// coordinates are skipped.
func SegmentDistance(list []domain.Activity) float64 {
	return pathDistance(points(list))
}

// DayDistance is the distance through every located activity of d, in
// morning, afternoon, evening order.
func DayDistance(d domain.Day) float64 {
	var pts []s2.LatLng
	for _, seg := range domain.Segments {
		pts = append(pts, points(d.Activities(seg))...)
	}
	return pathDistance(pts)
}

func points(list []domain.Activity) []s2.LatLng {
	var pts []s2.LatLng
	for _, a := range list {
		if a.Coordinates == nil {
			continue
		}
		pts = append(pts, s2.LatLngFromDegrees(a.Coordinates.Latitude, a.Coordinates.Longitude))
	}
	return pts
}

func pathDistance(pts []s2.LatLng) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i-1].Distance(pts[i]).Radians() * EarthRadiusMeters
	}
	return total
}
