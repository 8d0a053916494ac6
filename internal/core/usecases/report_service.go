package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
	"github.com/samirrijal/barangaymap/internal/pkg/metrics"
	"github.com/samirrijal/barangaymap/internal/pkg/telemetry"
)

const (
	maxDescriptionLen = 2000
	maxPhotos         = 5
	anonymousReporter = "Anonymous"
)

// CreateReportInput is what a citizen submits.
type CreateReportInput struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Location    domain.Location `json:"location"`
	Reporter    string          `json:"reporter,omitempty"`
	Photos      []string        `json:"photos,omitempty"`
}

// ReportService files and queries incident reports.
type ReportService struct {
	reports      ports.ReportRepository
	jurisdiction domain.Jurisdiction
	publisher    ports.EventPublisher
	triage       ports.TriageScheduler
	cache        ports.CacheService

	now   func() time.Time
	newID func() string
}

// NewReportService creates a new ReportService. publisher, triage and cache
// are optional.
func NewReportService(
	reports ports.ReportRepository,
	jurisdiction domain.Jurisdiction,
	publisher ports.EventPublisher,
	triage ports.TriageScheduler,
	cache ports.CacheService,
) *ReportService {
	return &ReportService{
		reports:      reports,
		jurisdiction: jurisdiction,
		publisher:    publisher,
		triage:       triage,
		cache:        cache,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Create validates and stores a new report. Locations outside the
// jurisdiction boundary are refused with domain.ErrOutOfBounds.
func (s *ReportService) Create(ctx context.Context, in CreateReportInput) (*domain.Report, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanReportCreate)
	defer span.End()

	if err := validateReport(in); err != nil {
		metrics.ReportsRejected.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if !geospatial.Contains(s.jurisdiction.Boundary, in.Location) {
		metrics.ReportsRejected.WithLabelValues("out_of_bounds").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrOutOfBounds, in.Location)
	}

	reporter := strings.TrimSpace(in.Reporter)
	if reporter == "" {
		reporter = anonymousReporter
	}
	report := &domain.Report{
		ID:          s.newID(),
		Type:        strings.TrimSpace(in.Type),
		Description: strings.TrimSpace(in.Description),
		Location:    in.Location,
		Status:      domain.StatusPending,
		Reporter:    reporter,
		Photos:      in.Photos,
		ReportedAt:  s.now(),
	}
	span.SetAttributes(attribute.String("report.id", report.ID), attribute.String("report.type", report.Type))

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}
	metrics.ReportsCreated.WithLabelValues(report.Type).Inc()
	s.invalidateMarkers(ctx)

	// Fan-out is best effort; the report is already stored.
	if s.publisher != nil {
		if err := s.publisher.PublishReportCreated(ctx, report); err != nil {
			slog.WarnContext(ctx, "publish report created failed", "report_id", report.ID, "error", err)
		}
	}
	if s.triage != nil {
		if err := s.triage.ScheduleTriage(ctx, report); err != nil {
			slog.WarnContext(ctx, "schedule triage failed", "report_id", report.ID, "error", err)
		}
	}

	return report, nil
}

func validateReport(in CreateReportInput) error {
	var problems []string
	if strings.TrimSpace(in.Type) == "" {
		problems = append(problems, "type is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		problems = append(problems, "description is required")
	}
	if len(in.Description) > maxDescriptionLen {
		problems = append(problems, fmt.Sprintf("description exceeds %d characters", maxDescriptionLen))
	}
	if len(in.Photos) > maxPhotos {
		problems = append(problems, fmt.Sprintf("at most %d photos", maxPhotos))
	}
	if in.Location.Lat < -90 || in.Location.Lat > 90 || in.Location.Lng < -180 || in.Location.Lng > 180 {
		problems = append(problems, "location out of range")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidReport, strings.Join(problems, "; "))
	}
	return nil
}

// List returns reports matching filter, newest first.
func (s *ReportService) List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanReportList)
	defer span.End()
	return s.reports.List(ctx, filter)
}

// GetByID returns a single report.
func (s *ReportService) GetByID(ctx context.Context, id string) (*domain.Report, error) {
	return s.reports.GetByID(ctx, id)
}

// UpdateStatus moves a report to status and announces the change.
func (s *ReportService) UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) (*domain.Report, error) {
	if !status.Known() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidReport, status)
	}
	if err := s.reports.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateMarkers(ctx)

	if s.publisher != nil {
		if err := s.publisher.PublishStatusChanged(ctx, report); err != nil {
			slog.WarnContext(ctx, "publish status change failed", "report_id", id, "error", err)
		}
	}
	return report, nil
}

func (s *ReportService) invalidateMarkers(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, markersCacheKey)
}
