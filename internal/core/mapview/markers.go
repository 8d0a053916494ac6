package mapview

import (
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

const incidentMarkerPrefix = "incident:"

// IconFor maps a status to its pin. Unknown statuses get the selection icon.
func IconFor(status domain.IncidentStatus) ports.Icon {
	switch status {
	case domain.StatusPending:
		return PendingIcon
	case domain.StatusInvestigating:
		return InvestigatingIcon
	case domain.StatusResolved:
		return ResolvedIcon
	default:
		return SelectedIcon
	}
}

// StatusDotColor is the colour of the status dot in a pin popup.
func StatusDotColor(status domain.IncidentStatus) string {
	switch status {
	case domain.StatusPending:
		return colorPending
	case domain.StatusInvestigating:
		return colorInvestigating
	default:
		return colorResolved
	}
}

// Pin is a rendered incident marker.
type Pin struct {
	ID       string           `json:"id"`
	Position domain.Location  `json:"position"`
	Spec     ports.MarkerSpec `json:"spec"`
}

// RenderPins maps markers to pins without touching any surface.
func RenderPins(markers []domain.IncidentMarker) []Pin {
	pins := make([]Pin, len(markers))
	for i, m := range markers {
		pins[i] = renderPin(m)
	}
	return pins
}

func renderPin(m domain.IncidentMarker) Pin {
	return Pin{
		ID:       incidentMarkerPrefix + m.ID,
		Position: m.Position,
		Spec: ports.MarkerSpec{
			Icon: IconFor(m.Status),
			Popup: &ports.Popup{
				Title:    m.Title,
				Body:     string(m.Status),
				DotColor: StatusDotColor(m.Status),
			},
		},
	}
}

// MarkerLayer keeps the surface in step with a list of incident markers.
type MarkerLayer struct {
	surface  ports.MapSurface
	rendered map[string]domain.IncidentMarker
}

func newMarkerLayer(surface ports.MapSurface) *MarkerLayer {
	return &MarkerLayer{surface: surface, rendered: make(map[string]domain.IncidentMarker)}
}

// Sync draws new markers, redraws changed ones and removes the rest.
// Later duplicates of an id win.
func (l *MarkerLayer) Sync(markers []domain.IncidentMarker) {
	next := make(map[string]domain.IncidentMarker, len(markers))
	for _, m := range markers {
		next[m.ID] = m
	}

	for id := range l.rendered {
		if _, ok := next[id]; !ok {
			l.surface.RemoveMarker(incidentMarkerPrefix + id)
			delete(l.rendered, id)
		}
	}

	for id, m := range next {
		old, ok := l.rendered[id]
		if ok && old == m {
			continue
		}
		pin := renderPin(m)
		if ok {
			l.surface.RemoveMarker(pin.ID)
		}
		l.surface.AddMarker(pin.ID, pin.Position, pin.Spec)
		l.rendered[id] = m
	}
}

// Clear removes every rendered marker.
func (l *MarkerLayer) Clear() {
	l.Sync(nil)
}

// Len returns the number of rendered markers.
func (l *MarkerLayer) Len() int { return len(l.rendered) }
