package geospatial

import "github.com/samirrijal/barangaymap/internal/core/domain"

// PointInPolygon reports whether (lat, lng) lies inside ring using the
// even-odd ray casting rule. Each vertex is a [lat, lng] pair; the ring may
// be open or closed. Rings with fewer than three vertices contain nothing.
// Points exactly on an edge may fall either way.
func PointInPolygon(lat, lng float64, ring [][2]float64) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := lat, lng
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i][0], ring[i][1]
		xj, yj := ring[j][0], ring[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Contains reports whether loc lies inside the boundary.
func Contains(b domain.Boundary, loc domain.Location) bool {
	if len(b) < 3 {
		return false
	}
	return PointInPolygon(loc.Lat, loc.Lng, b.Pairs())
}
