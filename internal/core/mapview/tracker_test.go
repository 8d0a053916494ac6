package mapview_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/barangaymap/internal/adapters/memory"
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
)

func TestTracking_StartUsesWatchOptions(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.m.ToggleTracking())

	w := f.source.last()
	require.NotNil(t, w)
	assert.Equal(t, mapview.DefaultWatchOptions, w.opts)
	assert.True(t, w.opts.HighAccuracy)

	s := f.m.Tracking()
	assert.True(t, s.Active)
	assert.Nil(t, s.LastPosition)
	assert.Equal(t, mapview.SignalAcquiring, s.Signal)
}

func TestTracking_FirstFixCentresOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.ToggleTracking())
	w := f.source.last()

	w.onFix(domain.Fix{Location: insideLoc, AccuracyMeters: 25})

	pin, ok := f.scene.Marker(mapview.LiveMarkerID)
	require.True(t, ok)
	assert.Equal(t, insideLoc, pin.At)
	assert.Equal(t, mapview.UserLocationIcon, pin.Spec.Icon)
	assert.Equal(t, 1000, pin.Spec.ZIndexOffset)

	circle, ok := f.scene.Circle(mapview.AccuracyCircleID)
	require.True(t, ok)
	assert.Equal(t, 25.0, circle.RadiusMeters)
	assert.Equal(t, mapview.AccuracyStyle, circle.Style)

	assert.Equal(t, 17, f.scene.Zoom())
	assert.Equal(t, insideLoc, f.scene.Center())

	f.m.ZoomOut()
	f.m.ZoomOut()
	w.onFix(domain.Fix{Location: inside2, AccuracyMeters: 8})

	assert.Equal(t, 15, f.scene.Zoom(), "later fixes do not recentre")
	assert.Equal(t, insideLoc, f.scene.Center())

	pin, _ = f.scene.Marker(mapview.LiveMarkerID)
	assert.Equal(t, inside2, pin.At)
	circle, _ = f.scene.Circle(mapview.AccuracyCircleID)
	assert.Equal(t, inside2, circle.Center)
	assert.Equal(t, 8.0, circle.RadiusMeters)
	assert.Equal(t, 1, f.scene.MarkerCount())

	require.Len(t, f.updates, 2)
	assert.Equal(t, inside2, f.updates[1].Location)

	s := f.m.Tracking()
	require.NotNil(t, s.LastPosition)
	assert.Equal(t, inside2, *s.LastPosition)
	assert.Equal(t, 8.0, s.LastAccuracyMeters)
	assert.Equal(t, mapview.SignalOK, s.Signal)
}

func TestTracking_FixesOutsideBoundaryStillShown(t *testing.T) {
	f := newFixture(t, mapview.WithRestriction(false))
	require.NoError(t, f.m.ToggleTracking())

	f.source.last().onFix(domain.Fix{Location: outsideLoc, AccuracyMeters: 5})

	_, ok := f.scene.Marker(mapview.LiveMarkerID)
	assert.True(t, ok)
	assert.Empty(t, f.selected, "tracking never selects")
}

func TestTracking_StopCleansUp(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.ToggleTracking())
	w := f.source.last()
	w.onFix(domain.Fix{Location: insideLoc, AccuracyMeters: 25})

	require.NoError(t, f.m.ToggleTracking())

	assert.True(t, w.sub.cancelled)
	_, ok := f.scene.Marker(mapview.LiveMarkerID)
	assert.False(t, ok)
	_, ok = f.scene.Circle(mapview.AccuracyCircleID)
	assert.False(t, ok)

	s := f.m.Tracking()
	assert.False(t, s.Active)
	assert.Nil(t, s.LastPosition)
	assert.Zero(t, s.LastAccuracyMeters)
	assert.Equal(t, mapview.SignalNone, s.Signal)
}

func TestTracking_LateFixAfterStopDropped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.ToggleTracking())
	old := f.source.last()
	require.NoError(t, f.m.ToggleTracking())

	old.onFix(domain.Fix{Location: insideLoc, AccuracyMeters: 10})
	old.onError(errors.New("timeout"))

	_, ok := f.scene.Marker(mapview.LiveMarkerID)
	assert.False(t, ok)
	assert.Empty(t, f.updates)
	assert.Empty(t, f.trackErrs)
}

func TestTracking_LateFixFromPreviousSessionDropped(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.ToggleTracking())
	old := f.source.last()
	require.NoError(t, f.m.ToggleTracking())
	require.NoError(t, f.m.ToggleTracking())
	current := f.source.last()
	require.NotSame(t, old, current)

	assert.True(t, old.sub.cancelled)
	assert.False(t, current.sub.cancelled)
	assert.Len(t, f.source.watches, 2)

	old.onFix(domain.Fix{Location: inside2, AccuracyMeters: 10})
	assert.Empty(t, f.updates)

	f.scene.Drain()
	current.onFix(domain.Fix{Location: insideLoc, AccuracyMeters: 10})
	current.onFix(domain.Fix{Location: inside2, AccuracyMeters: 12})
	assert.Len(t, f.updates, 2)
	assert.Equal(t, 17, f.scene.Zoom(), "a new session recentres on its first fix")

	var addedMarkers, addedCircles int
	for _, c := range f.scene.Drain() {
		switch {
		case c.Op == memory.OpAddMarker && c.ID == mapview.LiveMarkerID:
			addedMarkers++
		case c.Op == memory.OpAddCircle && c.ID == mapview.AccuracyCircleID:
			addedCircles++
		}
	}
	assert.Equal(t, 1, addedMarkers)
	assert.Equal(t, 1, addedCircles)
	assert.Equal(t, 1, f.scene.MarkerCount())
	assert.Equal(t, 1, f.scene.CircleCount())

	pin, ok := f.scene.Marker(mapview.LiveMarkerID)
	require.True(t, ok)
	assert.Equal(t, inside2, pin.At)
}

func TestTracking_StopWhenIdleIsSafe(t *testing.T) {
	f := newFixture(t)
	f.m.Unmount()
	f.m.Unmount()
	assert.False(t, f.m.Tracking().Active)
}

func TestTracking_WatchFailure(t *testing.T) {
	f := newFixture(t)
	f.source.err = errors.New("geolocation unsupported")

	err := f.m.ToggleTracking()

	assert.ErrorIs(t, err, mapview.ErrLocationUnavailable)
	s := f.m.Tracking()
	assert.True(t, s.Active)
	assert.Equal(t, mapview.SignalLost, s.Signal)
	assert.Equal(t, mapview.SignalLost, f.m.Overlays().Signal)

	require.NoError(t, f.m.ToggleTracking())
	assert.False(t, f.m.Tracking().Active)
}

func TestTracking_NoSource(t *testing.T) {
	m := mapview.New(nil, nil, domain.Jurisdiction{})
	err := m.ToggleTracking()
	assert.ErrorIs(t, err, mapview.ErrLocationUnavailable)
	m.Unmount()
}

func TestTracking_FixErrorKeepsSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.m.ToggleTracking())
	w := f.source.last()
	w.onFix(domain.Fix{Location: insideLoc, AccuracyMeters: 25})

	w.onError(errors.New("position unavailable"))

	require.Len(t, f.trackErrs, 1)
	assert.ErrorIs(t, f.trackErrs[0], mapview.ErrLocationUnavailable)
	s := f.m.Tracking()
	assert.True(t, s.Active)
	assert.Equal(t, mapview.SignalLost, s.Signal)
	require.NotNil(t, s.LastPosition)
	assert.Equal(t, insideLoc, *s.LastPosition)

	w.onFix(domain.Fix{Location: inside2, AccuracyMeters: 9})
	assert.Equal(t, mapview.SignalOK, f.m.Tracking().Signal)
}
