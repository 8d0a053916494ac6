package geospatial

import (
	"math"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// Distance is Haversine over two locations.
func Distance(a, b domain.Location) float64 {
	return Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// AroundPoint returns a bounding box around loc with the given radius in meters.
func AroundPoint(loc domain.Location, radiusMeters float64) domain.BoundingBox {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(loc.Lat)))

	return domain.BoundingBox{
		North: loc.Lat + latDelta,
		South: loc.Lat - latDelta,
		East:  loc.Lng + lonDelta,
		West:  loc.Lng - lonDelta,
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
