package usecases

import (
	"context"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

// AlertService reads community alerts.
type AlertService struct {
	alerts ports.AlertRepository
}

// NewAlertService creates a new AlertService.
func NewAlertService(alerts ports.AlertRepository) *AlertService {
	return &AlertService{alerts: alerts}
}

// List returns the latest alerts, newest first.
func (s *AlertService) List(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.alerts.List(ctx, limit)
}
