package usecases

import (
	"context"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
	"github.com/samirrijal/barangaymap/internal/pkg/telemetry"
)

// GeofenceCheck is the answer to "may an incident be pinned here?".
type GeofenceCheck struct {
	Location       domain.Location `json:"location"`
	Inside         bool            `json:"inside"`
	Jurisdiction   string          `json:"jurisdiction"`
	DistanceMeters float64         `json:"distance_to_center_meters"`
	Message        string          `json:"message,omitempty"`
}

// JurisdictionView is everything a client needs to draw the restricted map.
type JurisdictionView struct {
	domain.Jurisdiction
	Label       string                `json:"label"`
	MaxBounds   domain.BoundingBox    `json:"max_bounds"`
	MinZoom     int                   `json:"min_zoom"`
	MaxZoom     int                   `json:"max_zoom"`
	DefaultZoom int                   `json:"default_zoom"`
	Mask        *geojson.Feature      `json:"mask"`
	Outline     *geojson.Feature      `json:"outline"`
	Legend      []mapview.LegendEntry `json:"legend"`
}

// GeofenceService answers boundary questions for one jurisdiction.
type GeofenceService struct {
	jurisdiction domain.Jurisdiction
	viewport     mapview.ViewportConstraint
	defaultZoom  int
}

// NewGeofenceService creates a new GeofenceService.
func NewGeofenceService(j domain.Jurisdiction, viewport mapview.ViewportConstraint, defaultZoom int) *GeofenceService {
	if defaultZoom <= 0 {
		defaultZoom = mapview.DefaultZoom
	}
	return &GeofenceService{jurisdiction: j, viewport: viewport, defaultZoom: defaultZoom}
}

// Jurisdiction returns the served jurisdiction.
func (s *GeofenceService) Jurisdiction() domain.Jurisdiction {
	return s.jurisdiction
}

// Viewport returns the pan and zoom limits applied to restricted maps.
func (s *GeofenceService) Viewport() mapview.ViewportConstraint {
	return s.viewport
}

// DefaultZoom is the initial zoom of new maps.
func (s *GeofenceService) DefaultZoom() int {
	return s.defaultZoom
}

// Check reports whether loc lies inside the boundary.
func (s *GeofenceService) Check(ctx context.Context, loc domain.Location) GeofenceCheck {
	_, span := telemetry.Tracer().Start(ctx, telemetry.SpanGeofenceCheck)
	defer span.End()

	res := GeofenceCheck{
		Location:       loc,
		Inside:         geospatial.Contains(s.jurisdiction.Boundary, loc),
		Jurisdiction:   s.jurisdiction.Label(),
		DistanceMeters: geospatial.Distance(loc, s.jurisdiction.Center),
	}
	if !res.Inside {
		res.Message = "Please select a location within " + s.jurisdiction.Label()
	}
	return res
}

// View returns the drawing data for the restricted map.
func (s *GeofenceService) View() JurisdictionView {
	return JurisdictionView{
		Jurisdiction: s.jurisdiction,
		Label:        s.jurisdiction.Label(),
		MaxBounds:    mapview.MaxBounds(s.jurisdiction.Bounds, s.viewport.Buffer),
		MinZoom:      s.viewport.MinZoom,
		MaxZoom:      s.viewport.MaxZoom,
		DefaultZoom:  s.defaultZoom,
		Mask:         mapview.BuildMask(s.jurisdiction.Boundary),
		Outline:      mapview.BuildOutline(s.jurisdiction.Boundary),
		Legend:       mapview.Legend(),
	}
}
