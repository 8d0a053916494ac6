package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// ReportRepo implements ports.ReportRepository in memory.
type ReportRepo struct {
	mu      sync.RWMutex
	reports map[string]domain.Report
}

// NewReportRepo creates a repository holding seed.
func NewReportRepo(seed []domain.Report) *ReportRepo {
	r := &ReportRepo{reports: make(map[string]domain.Report, len(seed))}
	for _, rep := range seed {
		r.reports[rep.ID] = rep
	}
	return r
}

func (r *ReportRepo) Create(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[report.ID]; ok {
		return fmt.Errorf("report %s already exists", report.ID)
	}
	r.reports[report.ID] = *report
	return nil
}

func (r *ReportRepo) GetByID(_ context.Context, id string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rep, ok := r.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rep, nil
}

// List returns matching reports, newest first.
func (r *ReportRepo) List(_ context.Context, filter domain.ReportFilter) ([]domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Report, 0, len(r.reports))
	for _, rep := range r.reports {
		if filter.Match(rep) {
			out = append(out, rep)
		}
	}
	slices.SortFunc(out, func(a, b domain.Report) int {
		if c := b.ReportedAt.Compare(a.ReportedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r *ReportRepo) UpdateStatus(_ context.Context, id string, status domain.IncidentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep, ok := r.reports[id]
	if !ok {
		return domain.ErrNotFound
	}
	rep.Status = status
	r.reports[id] = rep
	return nil
}

// AlertRepo implements ports.AlertRepository in memory.
type AlertRepo struct {
	alerts []domain.Alert
}

// NewAlertRepo creates a repository holding seed.
func NewAlertRepo(seed []domain.Alert) *AlertRepo {
	alerts := slices.Clone(seed)
	slices.SortStableFunc(alerts, func(a, b domain.Alert) int {
		return b.IssuedAt.Compare(a.IssuedAt)
	})
	return &AlertRepo{alerts: alerts}
}

// List returns up to limit alerts, newest first. limit <= 0 means all.
func (r *AlertRepo) List(_ context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 || limit > len(r.alerts) {
		limit = len(r.alerts)
	}
	return slices.Clone(r.alerts[:limit]), nil
}
