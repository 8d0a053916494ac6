package ports

import (
	"context"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// ReportRepository persists incident reports.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByID(ctx context.Context, id string) (*domain.Report, error)
	List(ctx context.Context, filter domain.ReportFilter) ([]domain.Report, error)
	UpdateStatus(ctx context.Context, id string, status domain.IncidentStatus) error
}

// AlertRepository reads community alerts.
type AlertRepository interface {
	List(ctx context.Context, limit int) ([]domain.Alert, error)
}
