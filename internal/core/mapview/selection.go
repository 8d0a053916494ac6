package mapview

import (
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

const SelectionMarkerID = "selection"

// SelectionPopup is the popup of the picked incident location.
func SelectionPopup(loc domain.Location) ports.Popup {
	return ports.Popup{Title: "Incident Location", Body: loc.String(), Mono: true}
}

// SelectionMarker owns the single incident-location pin.
type SelectionMarker struct {
	surface ports.MapSurface
	current *domain.Location
}

func newSelectionMarker(surface ports.MapSurface) *SelectionMarker {
	return &SelectionMarker{surface: surface}
}

// Set places the pin at loc, moving it if it already exists.
func (s *SelectionMarker) Set(loc domain.Location) {
	popup := SelectionPopup(loc)
	if s.current == nil {
		s.surface.AddMarker(SelectionMarkerID, loc, ports.MarkerSpec{Icon: SelectedIcon, Popup: &popup})
	} else {
		s.surface.MoveMarker(SelectionMarkerID, loc)
		s.surface.SetPopup(SelectionMarkerID, popup)
	}
	s.current = &loc
}

// Clear removes the pin.
func (s *SelectionMarker) Clear() {
	if s.current == nil {
		return
	}
	s.surface.RemoveMarker(SelectionMarkerID)
	s.current = nil
}

// Current returns the selected location, if any.
func (s *SelectionMarker) Current() (domain.Location, bool) {
	if s.current == nil {
		return domain.Location{}, false
	}
	return *s.current, true
}
