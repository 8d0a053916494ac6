package mapview

import (
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
)

// BoundaryPolicy decides whether a picked location is admissible.
type BoundaryPolicy struct {
	boundary domain.Boundary
	restrict bool
}

// NewBoundaryPolicy creates a policy over boundary. With restrict off every
// location is admitted.
func NewBoundaryPolicy(boundary domain.Boundary, restrict bool) BoundaryPolicy {
	return BoundaryPolicy{boundary: boundary, restrict: restrict}
}

// Restricted reports whether picks are checked against the boundary.
func (p BoundaryPolicy) Restricted() bool { return p.restrict }

// Admit reports whether loc may be selected.
func (p BoundaryPolicy) Admit(loc domain.Location) bool {
	if !p.restrict {
		return true
	}
	return geospatial.Contains(p.boundary, loc)
}

// ClickResult is the outcome of a map click.
type ClickResult int

const (
	// ClickIgnored: the map is not interactive.
	ClickIgnored ClickResult = iota
	ClickAccepted
	ClickRejected
)

func (r ClickResult) String() string {
	switch r {
	case ClickAccepted:
		return "accepted"
	case ClickRejected:
		return "rejected"
	default:
		return "ignored"
	}
}
