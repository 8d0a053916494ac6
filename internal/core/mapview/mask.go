package mapview

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

const (
	MaskLayerID    = "boundary-mask"
	OutlineLayerID = "boundary-outline"
)

// ±85° latitude keeps the outer ring clear of the Web Mercator poles.
var worldRing = orb.Ring{{-180, 85}, {180, 85}, {180, -85}, {-180, -85}, {-180, 85}}

var (
	MaskStyle = ports.LayerStyle{
		Stroke:      false,
		Color:       "transparent",
		FillColor:   colorMask,
		FillOpacity: 0.55,
		Interactive: false,
	}
	OutlineStyle = ports.LayerStyle{
		Stroke:      true,
		Color:       colorLive,
		Weight:      3,
		DashArray:   "5, 10",
		FillColor:   "transparent",
		FillOpacity: 0,
		Interactive: false,
	}
)

// BuildMask returns a polygon covering the world with the boundary cut out
// as a hole. Rings are in GeoJSON [lng, lat] order and explicitly closed.
func BuildMask(boundary domain.Boundary) *geojson.Feature {
	outer := make(orb.Ring, len(worldRing))
	copy(outer, worldRing)

	f := geojson.NewFeature(orb.Polygon{outer, lngLatRing(boundary)})
	f.Properties["role"] = "mask"
	return f
}

// BuildOutline returns the boundary itself as a GeoJSON polygon.
func BuildOutline(boundary domain.Boundary) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{lngLatRing(boundary)})
	f.Properties["role"] = "boundary"
	return f
}

func lngLatRing(boundary domain.Boundary) orb.Ring {
	closed := boundary.Closed()
	ring := make(orb.Ring, len(closed))
	for i, v := range closed {
		ring[i] = orb.Point{v.Lng, v.Lat}
	}
	return ring
}

// MaskLayer keeps exactly one mask and one outline on the surface while mounted.
type MaskLayer struct {
	surface  ports.MapSurface
	boundary domain.Boundary
	mounted  bool
}

func newMaskLayer(surface ports.MapSurface, boundary domain.Boundary) *MaskLayer {
	return &MaskLayer{surface: surface, boundary: boundary}
}

// Mounted reports whether the overlays are on the surface.
func (m *MaskLayer) Mounted() bool { return m.mounted }

// Mount draws the mask and outline, replacing any earlier copy.
func (m *MaskLayer) Mount() {
	m.Unmount()
	m.surface.AddLayer(MaskLayerID, ports.Layer{Feature: BuildMask(m.boundary), Style: MaskStyle})
	m.surface.AddLayer(OutlineLayerID, ports.Layer{Feature: BuildOutline(m.boundary), Style: OutlineStyle})
	m.mounted = true
}

// Unmount removes both overlays.
func (m *MaskLayer) Unmount() {
	if !m.mounted {
		return
	}
	m.surface.RemoveLayer(MaskLayerID)
	m.surface.RemoveLayer(OutlineLayerID)
	m.mounted = false
}

// SetBoundary swaps the boundary and redraws if mounted.
func (m *MaskLayer) SetBoundary(boundary domain.Boundary) {
	m.boundary = boundary
	if m.mounted {
		m.Mount()
	}
}
