package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
	"github.com/samirrijal/barangaymap/internal/pkg/metrics"
	"github.com/samirrijal/barangaymap/internal/pkg/telemetry"
)

// DefaultMarkerTTL is how long marker lists stay cached, in seconds.
const DefaultMarkerTTL = 30

// IncidentService turns reports into map pins.
type IncidentService struct {
	reports ports.ReportRepository
	cache   ports.CacheService
	ttl     int
}

// NewIncidentService creates a new IncidentService. cache may be nil.
func NewIncidentService(reports ports.ReportRepository, cache ports.CacheService, ttlSeconds int) *IncidentService {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultMarkerTTL
	}
	return &IncidentService{reports: reports, cache: cache, ttl: ttlSeconds}
}

// Markers returns the pins for reports matching filter. With a viewport
// only pins inside it are returned. Results are ordered by id.
func (s *IncidentService) Markers(ctx context.Context, filter domain.ReportFilter, viewport *domain.BoundingBox) ([]domain.IncidentMarker, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanMarkersQuery)
	defer span.End()

	markers, err := s.allMarkers(ctx, filter)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("markers.total", len(markers)))

	if viewport == nil {
		return markers, nil
	}
	return geospatial.NewMarkerIndex(markers).Within(*viewport)
}

// allMarkers filters the cached full report list. Only the unfiltered list
// is cached so a single delete invalidates every filter.
func (s *IncidentService) allMarkers(ctx context.Context, filter domain.ReportFilter) ([]domain.IncidentMarker, error) {
	reports, err := s.allReports(ctx)
	if err != nil {
		return nil, err
	}
	markers := make([]domain.IncidentMarker, 0, len(reports))
	for _, r := range reports {
		if filter.Match(r) {
			markers = append(markers, r.Marker())
		}
	}
	slices.SortFunc(markers, func(a, b domain.IncidentMarker) int { return strings.Compare(a.ID, b.ID) })
	return markers, nil
}

func (s *IncidentService) allReports(ctx context.Context) ([]domain.Report, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, markersCacheKey); err == nil {
			var reports []domain.Report
			if err := json.Unmarshal(data, &reports); err == nil {
				metrics.CacheHits.WithLabelValues("markers").Inc()
				return reports, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("markers").Inc()
	}

	reports, err := s.reports.List(ctx, domain.ReportFilter{})
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	for i := range reports {
		reports[i].Photos = nil
	}

	if s.cache != nil {
		if data, err := json.Marshal(reports); err == nil {
			_ = s.cache.Set(ctx, markersCacheKey, data, s.ttl)
		}
	}
	return reports, nil
}

// markersCacheKey holds the unfiltered report list behind every marker query.
const markersCacheKey = "incidents:reports"
