package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/barangaymap/internal/core/usecases"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
)

// Pinger is a backing service that can report its own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Reports   *usecases.ReportService
	Incidents *usecases.IncidentService
	Alerts    *usecases.AlertService
	Geofence  *usecases.GeofenceService

	// Map tunes the widget behind /ws/map.
	Map config.MapConfig

	// NATS and FixSubject enable device-fed tracking (?device=) on /ws/map.
	NATS       *nats.Conn
	FixSubject string

	DB    Pinger
	Cache Pinger
}
