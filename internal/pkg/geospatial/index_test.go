package geospatial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
)

func markers() []domain.IncidentMarker {
	return []domain.IncidentMarker{
		{ID: "1", Position: domain.Location{Lat: 14.8600, Lng: 120.9850}, Title: "Theft / Robbery", Status: domain.StatusPending},
		{ID: "2", Position: domain.Location{Lat: 14.8820, Lng: 120.9900}, Title: "Traffic Incident", Status: domain.StatusInvestigating},
		{ID: "3", Position: domain.Location{Lat: 14.8560, Lng: 120.9760}, Title: "Vandalism", Status: domain.StatusResolved},
		{ID: "6", Position: domain.Location{Lat: 14.8700, Lng: 121.0120}, Title: "Drug Related", Status: domain.StatusInvestigating},
	}
}

func TestMarkerIndex_Within(t *testing.T) {
	idx := geospatial.NewMarkerIndex(markers())
	assert.Equal(t, 4, idx.Size())

	got, err := idx.Within(domain.BoundingBox{North: 14.87, South: 14.85, East: 120.99, West: 120.97})
	require.NoError(t, err)

	ids := make([]string, len(got))
	for i, m := range got {
		ids[i] = m.ID
	}
	assert.Equal(t, []string{"1", "3"}, ids)
}

func TestMarkerIndex_WithinEverything(t *testing.T) {
	idx := geospatial.NewMarkerIndex(markers())

	got, err := idx.Within(domain.BoundingBox{North: 15, South: 14, East: 122, West: 120})
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestMarkerIndex_EdgeIncluded(t *testing.T) {
	idx := geospatial.NewMarkerIndex(markers())

	got, err := idx.Within(domain.BoundingBox{North: 14.8820, South: 14.88, East: 120.9900, West: 120.98})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID)
}

func TestMarkerIndex_InvalidBox(t *testing.T) {
	idx := geospatial.NewMarkerIndex(markers())

	_, err := idx.Within(domain.BoundingBox{North: 14, South: 15, East: 121, West: 120})
	assert.Error(t, err)
}

func TestMarkerIndex_Empty(t *testing.T) {
	idx := geospatial.NewMarkerIndex(nil)

	got, err := idx.Within(domain.BoundingBox{North: 1, South: 0, East: 1, West: 0})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDistanceAndAroundPoint(t *testing.T) {
	a := domain.Location{Lat: 14.87, Lng: 121.00}
	b := domain.Location{Lat: 14.88, Lng: 121.00}
	assert.InDelta(t, 1112, geospatial.Distance(a, b), 5)

	box := geospatial.AroundPoint(a, 500)
	assert.True(t, box.Valid())
	assert.True(t, box.Contains(a))
	assert.False(t, box.Contains(b))
}
