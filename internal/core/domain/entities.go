package domain

import (
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrOutOfBounds is returned when a location lies outside the jurisdiction boundary.
	ErrOutOfBounds = errors.New("location outside jurisdiction boundary")
	// ErrInvalidReport is returned when a report fails validation.
	ErrInvalidReport = errors.New("invalid report")
)

// Jurisdiction describes the barangay the service operates in.
type Jurisdiction struct {
	Name          string      `json:"name" yaml:"name"`
	Municipality  string      `json:"municipality" yaml:"municipality"`
	Province      string      `json:"province" yaml:"province"`
	Country       string      `json:"country" yaml:"country"`
	OSMRelationID int64       `json:"osm_relation_id,omitempty" yaml:"osm_relation_id"`
	Center        Location    `json:"center" yaml:"center"`
	Boundary      Boundary    `json:"boundary" yaml:"boundary"`
	Bounds        BoundingBox `json:"bounds" yaml:"bounds"`
}

// Label is the short display name, e.g. "Brgy. Pulong Buhangin".
func (j Jurisdiction) Label() string {
	return "Brgy. " + j.Name
}

// IncidentStatus is the lifecycle state of a report.
type IncidentStatus string

const (
	StatusPending       IncidentStatus = "Pending"
	StatusInvestigating IncidentStatus = "Investigating"
	StatusResolved      IncidentStatus = "Resolved"
)

// Known reports whether s is one of the defined statuses.
func (s IncidentStatus) Known() bool {
	switch s {
	case StatusPending, StatusInvestigating, StatusResolved:
		return true
	}
	return false
}

// IncidentMarker is a read-only pin rendered on the map.
type IncidentMarker struct {
	ID       string         `json:"id"`
	Position Location       `json:"position"`
	Title    string         `json:"title"`
	Status   IncidentStatus `json:"status"`
}

// Report is a citizen-submitted incident report.
type Report struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Location    Location       `json:"location"`
	Status      IncidentStatus `json:"status"`
	Reporter    string         `json:"reporter"`
	Photos      []string       `json:"photos,omitempty"`
	ReportedAt  time.Time      `json:"reported_at"`
}

// Date returns the report date as YYYY-MM-DD.
func (r Report) Date() string { return r.ReportedAt.Format("2006-01-02") }

// Time returns the report time as HH:MM (24h).
func (r Report) Time() string { return r.ReportedAt.Format("15:04") }

// Marker converts the report into a map pin.
func (r Report) Marker() IncidentMarker {
	return IncidentMarker{ID: r.ID, Position: r.Location, Title: r.Type, Status: r.Status}
}

// ReportFilter narrows report listings. Zero values match everything.
type ReportFilter struct {
	Search   string
	Types    []string
	Statuses []IncidentStatus
	From     time.Time
	To       time.Time
}

// AlertType classifies community alerts.
type AlertType string

const (
	AlertEmergency AlertType = "emergency"
	AlertWarning   AlertType = "warning"
	AlertInfo      AlertType = "info"
)

// Alert is a read-only community broadcast.
type Alert struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Type     AlertType `json:"type"`
	Source   string    `json:"source"`
	IssuedAt time.Time `json:"issued_at"`
}

// Match reports whether r satisfies every non-empty criterion of the filter.
// Search is a case-insensitive substring match on type and description;
// From and To compare calendar dates inclusively.
func (f ReportFilter) Match(r Report) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Type), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			return false
		}
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, r.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, r.Status) {
		return false
	}
	day := r.Date()
	if !f.From.IsZero() && day < f.From.Format("2006-01-02") {
		return false
	}
	if !f.To.IsZero() && day > f.To.Format("2006-01-02") {
		return false
	}
	return true
}
