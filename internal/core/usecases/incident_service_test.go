package usecases_test

import (
	"context"
	"testing"

	"github.com/samirrijal/barangaymap/internal/adapters/memory"
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/usecases"
)

func TestIncidentService_Markers(t *testing.T) {
	svc := usecases.NewIncidentService(memory.NewReportRepo(memory.SeedReports()), nil, 0)

	markers, err := svc.Markers(context.Background(), domain.ReportFilter{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markers) != 6 {
		t.Fatalf("expected 6 markers, got %d", len(markers))
	}
	if markers[0].ID != "1" || markers[0].Title != "Theft / Robbery" || markers[0].Status != domain.StatusPending {
		t.Errorf("unexpected first marker: %+v", markers[0])
	}
}

func TestIncidentService_Markers_Viewport(t *testing.T) {
	svc := usecases.NewIncidentService(memory.NewReportRepo(memory.SeedReports()), nil, 0)

	box := domain.BoundingBox{North: 14.875, South: 14.865, East: 121.02, West: 120.995}
	markers, err := svc.Markers(context.Background(), domain.ReportFilter{}, &box)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(markers) != 2 || markers[0].ID != "4" || markers[1].ID != "6" {
		t.Errorf("expected markers 4 and 6, got %+v", markers)
	}

	bad := domain.BoundingBox{North: 1, South: 2, East: 1, West: 0}
	if _, err := svc.Markers(context.Background(), domain.ReportFilter{}, &bad); err == nil {
		t.Error("expected error for inverted viewport")
	}
}

func TestIncidentService_Markers_Cached(t *testing.T) {
	calls := 0
	repo := &mockReportRepo{
		listFn: func(ctx context.Context, f domain.ReportFilter) ([]domain.Report, error) {
			calls++
			return memory.SeedReports()[:2], nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewIncidentService(repo, cache, 30)
	filter := domain.ReportFilter{Statuses: []domain.IncidentStatus{domain.StatusPending}}

	for range 3 {
		if _, err := svc.Markers(context.Background(), filter, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected 1 repository call, got %d", calls)
	}
	if len(cache.data) != 1 {
		t.Errorf("expected 1 cache entry, got %d", len(cache.data))
	}
}

func TestIncidentService_CreateInvalidatesCache(t *testing.T) {
	repo := memory.NewReportRepo(memory.SeedReports())
	cache := newMockCache()
	incidents := usecases.NewIncidentService(repo, cache, 30)
	reports := usecases.NewReportService(repo, jurisdiction(), nil, nil, cache)

	before, _ := incidents.Markers(context.Background(), domain.ReportFilter{}, nil)
	if _, err := reports.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	after, _ := incidents.Markers(context.Background(), domain.ReportFilter{}, nil)

	if len(after) != len(before)+1 {
		t.Errorf("expected %d markers after create, got %d", len(before)+1, len(after))
	}
}
