package geospatial

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/samirrijal/barangaymap/internal/core/domain"
)

const (
	tolerance   = 1e-6
	minChildren = 4
	maxChildren = 16
	dimensions  = 2
)

// markerItem wraps a marker for R-Tree indexing.
type markerItem struct {
	marker domain.IncidentMarker
	rect   *rtreego.Rect
}

func (m *markerItem) Bounds() *rtreego.Rect {
	return m.rect
}

// MarkerIndex is an R-Tree over incident markers, used to answer viewport
// queries without scanning every report. It is immutable once built and safe
// for concurrent reads.
type MarkerIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewMarkerIndex builds an index over markers.
func NewMarkerIndex(markers []domain.IncidentMarker) *MarkerIndex {
	idx := &MarkerIndex{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, m := range markers {
		p := rtreego.Point{m.Position.Lat, m.Position.Lng}
		idx.tree.Insert(&markerItem{marker: m, rect: p.ToRect(tolerance)})
		idx.size++
	}
	return idx
}

// Size returns the number of indexed markers.
func (idx *MarkerIndex) Size() int {
	return idx.size
}

// Within returns the markers inside box, edges included.
func (idx *MarkerIndex) Within(box domain.BoundingBox) ([]domain.IncidentMarker, error) {
	if !box.Valid() {
		return nil, fmt.Errorf("invalid bounding box: %+v", box)
	}

	rect, err := rtreego.NewRect(
		rtreego.Point{box.South, box.West},
		[]float64{box.North - box.South, box.East - box.West},
	)
	if err != nil {
		return nil, fmt.Errorf("invalid bounding box: %w", err)
	}

	hits := idx.tree.SearchIntersect(rect)
	out := make([]domain.IncidentMarker, 0, len(hits))
	for _, h := range hits {
		item, ok := h.(*markerItem)
		if !ok {
			continue
		}
		// The tolerance rect can graze the query box; confirm the point itself.
		if box.Contains(item.marker.Position) {
			out = append(out, item.marker)
		}
	}
	slices.SortFunc(out, func(a, b domain.IncidentMarker) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}
