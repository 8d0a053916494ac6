package mapview

import (
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

const (
	DefaultBoundsBuffer = 0.01
	DefaultMinZoom      = 14
	DefaultMaxZoom      = 18
)

// ViewportConstraint clamps panning to a buffered bounding box and zooming
// to a fixed range.
type ViewportConstraint struct {
	Buffer  float64 `json:"buffer"`
	MinZoom int     `json:"min_zoom"`
	MaxZoom int     `json:"max_zoom"`
}

// DefaultViewportConstraint is a 0.01° buffer and zoom 14–18.
func DefaultViewportConstraint() ViewportConstraint {
	return ViewportConstraint{Buffer: DefaultBoundsBuffer, MinZoom: DefaultMinZoom, MaxZoom: DefaultMaxZoom}
}

// MaxBounds expands bbox by buffer degrees on every side. The result always
// contains bbox; negative buffers count as zero.
func MaxBounds(bbox domain.BoundingBox, buffer float64) domain.BoundingBox {
	return bbox.Expand(buffer)
}

// Apply sets the pan limit and zoom range on the surface.
func (c ViewportConstraint) Apply(surface ports.MapSurface, bbox domain.BoundingBox) {
	surface.SetMaxBounds(MaxBounds(bbox, c.Buffer))
	surface.SetZoomRange(c.MinZoom, c.MaxZoom)
}

// Release hands bounds and zoom limits back to the map engine defaults.
func (c ViewportConstraint) Release(surface ports.MapSurface) {
	surface.ClearMaxBounds()
	surface.ClearZoomRange()
}
