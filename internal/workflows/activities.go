package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/usecases"
	"github.com/samirrijal/barangaymap/internal/pkg/metrics"
)

// Priority orders reports for responders.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

var highPriorityKeywords = []string{"fire", "drug", "theft", "robbery", "medical", "traffic", "assault", "flood"}

// PriorityFor classifies an incident type.
func PriorityFor(incidentType string) Priority {
	t := strings.ToLower(incidentType)
	for _, k := range highPriorityKeywords {
		if strings.Contains(t, k) {
			return PriorityHigh
		}
	}
	return PriorityNormal
}

// Assessment is what responders are told about a report.
type Assessment struct {
	ReportID       string
	Type           string
	Status         domain.IncidentStatus
	Priority       Priority
	Location       domain.Location
	DistanceMeters float64
}

// TriageActivities holds the activity implementations for the triage workflow.
type TriageActivities struct {
	Reports  *usecases.ReportService
	Geofence *usecases.GeofenceService
	Logger   *slog.Logger
}

func (a *TriageActivities) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// AssessReport loads the report and ranks it.
func (a *TriageActivities) AssessReport(ctx context.Context, reportID string) (Assessment, error) {
	rep, err := a.Reports.GetByID(ctx, reportID)
	if err != nil {
		return Assessment{}, fmt.Errorf("get report %s: %w", reportID, err)
	}
	check := a.Geofence.Check(ctx, rep.Location)
	return Assessment{
		ReportID:       rep.ID,
		Type:           rep.Type,
		Status:         rep.Status,
		Priority:       PriorityFor(rep.Type),
		Location:       rep.Location,
		DistanceMeters: check.DistanceMeters,
	}, nil
}

// NotifyResponders announces the report to the barangay desk.
func (a *TriageActivities) NotifyResponders(ctx context.Context, as Assessment) error {
	a.logger().InfoContext(ctx, "responders notified",
		"report_id", as.ReportID,
		"type", as.Type,
		"priority", as.Priority,
		"location", as.Location.String(),
		"distance_to_hall_m", int(as.DistanceMeters),
	)
	return nil
}

// EscalateIfPending moves a report still Pending to Investigating.
func (a *TriageActivities) EscalateIfPending(ctx context.Context, reportID string) (bool, error) {
	rep, err := a.Reports.GetByID(ctx, reportID)
	if err != nil {
		return false, fmt.Errorf("get report %s: %w", reportID, err)
	}
	if rep.Status != domain.StatusPending {
		return false, nil
	}
	if _, err := a.Reports.UpdateStatus(ctx, reportID, domain.StatusInvestigating); err != nil {
		return false, fmt.Errorf("escalate report %s: %w", reportID, err)
	}
	metrics.TriageEscalations.Inc()
	a.logger().WarnContext(ctx, "report escalated", "report_id", reportID)
	return true, nil
}
