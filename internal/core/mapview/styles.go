package mapview

import "github.com/samirrijal/barangaymap/internal/core/ports"

const (
	colorSelected      = "#ef4444"
	colorPending       = "#f59e0b"
	colorInvestigating = "#8b5cf6"
	colorResolved      = "#10b981"
	colorLive          = "#3b82f6"
	colorMask          = "#1e293b"
)

// Pin glyphs. The selection icon is larger and red so it never reads as a
// status pin.
var (
	SelectedIcon      = ports.Icon{Name: "selected", Color: colorSelected, Size: 40}
	PendingIcon       = ports.Icon{Name: "pending", Color: colorPending, Size: 36}
	InvestigatingIcon = ports.Icon{Name: "investigating", Color: colorInvestigating, Size: 36}
	ResolvedIcon      = ports.Icon{Name: "resolved", Color: colorResolved, Size: 36}
	UserLocationIcon  = ports.Icon{Name: "user-location", Color: colorLive, Size: 24}
)

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	Label  string `json:"label"`
	Color  string `json:"color"`
	Dashed bool   `json:"dashed,omitempty"`
}

// Legend lists the status colours and the boundary line.
func Legend() []LegendEntry {
	return []LegendEntry{
		{Label: "Pending", Color: colorPending},
		{Label: "Investigating", Color: colorInvestigating},
		{Label: "Resolved", Color: colorResolved},
		{Label: "Brgy. Boundary", Color: colorLive, Dashed: true},
	}
}
