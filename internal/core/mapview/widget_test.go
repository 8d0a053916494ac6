package mapview_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
)

func TestMount_RestrictedViewport(t *testing.T) {
	f := newFixture(t)

	bounds, ok := f.scene.MaxBounds()
	require.True(t, ok)
	assert.InDelta(t, 14.91, bounds.North, 1e-9)
	assert.InDelta(t, 14.83, bounds.South, 1e-9)
	assert.InDelta(t, 121.035, bounds.East, 1e-9)
	assert.InDelta(t, 120.965, bounds.West, 1e-9)

	minZ, maxZ := f.scene.ZoomRange()
	assert.Equal(t, 14, minZ)
	assert.Equal(t, 18, maxZ)

	assert.Equal(t, 16, f.scene.Zoom())
	assert.Equal(t, config.DefaultJurisdiction().Center, f.scene.Center())

	assert.Equal(t, 2, f.scene.LayerCount())
	_, ok = f.scene.Layer(mapview.MaskLayerID)
	assert.True(t, ok)
	_, ok = f.scene.Layer(mapview.OutlineLayerID)
	assert.True(t, ok)

	o := f.m.Overlays()
	assert.Equal(t, "Brgy. Pulong Buhangin", o.Badge)
	assert.Equal(t, "Santa Maria, Bulacan", o.Locality)
	assert.Equal(t, "Click on map to pin incident location", o.Instruction)
}

func TestMount_Unrestricted(t *testing.T) {
	f := newFixture(t, mapview.WithRestriction(false))

	_, ok := f.scene.MaxBounds()
	assert.False(t, ok)
	assert.Zero(t, f.scene.LayerCount())
	assert.Empty(t, f.m.Overlays().Badge)
}

func TestMount_CustomCenterAndZoom(t *testing.T) {
	f := newFixture(t, mapview.WithCenter(inside2), mapview.WithZoom(15))

	assert.Equal(t, inside2, f.scene.Center())
	assert.Equal(t, 15, f.scene.Zoom())
}

func TestClick_AcceptInside(t *testing.T) {
	f := newFixture(t)

	res := f.m.Click(insideLoc)

	assert.Equal(t, mapview.ClickAccepted, res)
	assert.Equal(t, []domain.Location{insideLoc}, f.selected)
	assert.Zero(t, f.outOfBounds)

	pin, ok := f.scene.Marker(mapview.SelectionMarkerID)
	require.True(t, ok)
	assert.Equal(t, insideLoc, pin.At)
	assert.Equal(t, mapview.SelectedIcon, pin.Spec.Icon)
	require.NotNil(t, pin.Spec.Popup)
	assert.Equal(t, "Incident Location", pin.Spec.Popup.Title)
	assert.Equal(t, "14.870000, 121.000000", pin.Spec.Popup.Body)

	assert.Equal(t, insideLoc, f.scene.Center())
	assert.Equal(t, 16, f.scene.Zoom(), "fly-to keeps the current zoom")

	sel, ok := f.m.Selection()
	assert.True(t, ok)
	assert.Equal(t, insideLoc, sel)
	assert.Empty(t, f.m.Overlays().Instruction)
}

func TestClick_SecondAcceptMovesSingleMarker(t *testing.T) {
	f := newFixture(t)

	f.m.Click(insideLoc)
	f.m.Click(inside2)

	assert.Equal(t, 1, f.scene.MarkerCount())
	pin, ok := f.scene.Marker(mapview.SelectionMarkerID)
	require.True(t, ok)
	assert.Equal(t, inside2, pin.At)
	assert.Equal(t, "14.860000, 120.990000", pin.Spec.Popup.Body)
	assert.Len(t, f.selected, 2)
}

func TestClick_RejectOutside(t *testing.T) {
	f := newFixture(t)
	f.m.Click(insideLoc)

	res := f.m.Click(outsideLoc)

	assert.Equal(t, mapview.ClickRejected, res)
	assert.Equal(t, 1, f.outOfBounds)
	assert.Len(t, f.selected, 1)

	sel, _ := f.m.Selection()
	assert.Equal(t, insideLoc, sel, "rejection keeps the previous selection")

	o := f.m.Overlays()
	assert.True(t, o.OutOfBounds)
	assert.Equal(t, "Please select a location within Brgy. Pulong Buhangin", o.OutOfBoundsMessage)
}

func TestOutOfBounds_AutoClears(t *testing.T) {
	f := newFixture(t)
	f.m.Click(outsideLoc)

	f.clock.Advance(2999 * time.Millisecond)
	assert.True(t, f.m.Overlays().OutOfBounds)

	f.clock.Advance(time.Millisecond)
	assert.False(t, f.m.Overlays().OutOfBounds)
}

func TestOutOfBounds_StaleTimerDoesNotClearLaterRaise(t *testing.T) {
	f := newFixture(t)

	f.m.Click(outsideLoc)
	f.clock.Advance(2000 * time.Millisecond)
	f.m.Click(outsideLoc)

	f.clock.Advance(1500 * time.Millisecond)
	assert.True(t, f.m.Overlays().OutOfBounds, "first timer must not clear the second notice")

	f.clock.Advance(1500 * time.Millisecond)
	assert.False(t, f.m.Overlays().OutOfBounds)
	assert.Equal(t, 2, f.outOfBounds)
}

func TestOutOfBounds_AcceptClearsImmediately(t *testing.T) {
	f := newFixture(t)

	f.m.Click(outsideLoc)
	require.True(t, f.m.Overlays().OutOfBounds)
	f.m.Click(insideLoc)
	assert.False(t, f.m.Overlays().OutOfBounds)

	f.clock.Advance(5 * time.Second)
	assert.False(t, f.m.Overlays().OutOfBounds)
}

func TestClick_UnrestrictedAcceptsAnywhere(t *testing.T) {
	f := newFixture(t, mapview.WithRestriction(false))

	assert.Equal(t, mapview.ClickAccepted, f.m.Click(outsideLoc))
	assert.Zero(t, f.outOfBounds)
}

func TestClick_NonInteractiveIgnored(t *testing.T) {
	f := newFixture(t, mapview.WithInteractive(false))

	assert.Equal(t, mapview.ClickIgnored, f.m.Click(insideLoc))
	assert.Equal(t, mapview.ClickIgnored, f.m.Click(outsideLoc))
	assert.Empty(t, f.selected)
	assert.Zero(t, f.outOfBounds)
	assert.Zero(t, f.scene.MarkerCount())
	assert.Empty(t, f.m.Overlays().Instruction)
}

func TestClick_BeforeMountIgnored(t *testing.T) {
	m := mapview.New(nil, nil, config.DefaultJurisdiction())
	assert.Equal(t, mapview.ClickIgnored, m.Click(insideLoc))
}

func TestSetRestriction_Toggle(t *testing.T) {
	f := newFixture(t)

	f.m.SetRestriction(false)
	_, ok := f.scene.MaxBounds()
	assert.False(t, ok)
	assert.Zero(t, f.scene.LayerCount())
	minZ, maxZ := f.scene.ZoomRange()
	assert.Equal(t, 0, minZ)
	assert.Equal(t, 19, maxZ)
	assert.Equal(t, mapview.ClickAccepted, f.m.Click(outsideLoc))

	f.m.SetRestriction(true)
	f.m.SetRestriction(true)
	assert.Equal(t, 2, f.scene.LayerCount(), "mask is never mounted twice")
	assert.Equal(t, mapview.ClickRejected, f.m.Click(outsideLoc))
}

func TestSetJurisdiction_SwapsBoundary(t *testing.T) {
	f := newFixture(t)

	other := domain.Jurisdiction{
		Name:     "Test",
		Center:   domain.Location{Lat: 14.805, Lng: 120.905},
		Boundary: domain.Boundary{{Lat: 14.79, Lng: 120.89}, {Lat: 14.79, Lng: 120.91}, {Lat: 14.81, Lng: 120.91}, {Lat: 14.81, Lng: 120.89}},
		Bounds:   domain.BoundingBox{North: 14.81, South: 14.79, East: 120.91, West: 120.89},
	}
	f.m.SetJurisdiction(other)

	assert.Equal(t, mapview.ClickAccepted, f.m.Click(outsideLoc))
	assert.Equal(t, mapview.ClickRejected, f.m.Click(insideLoc))
	assert.Equal(t, 2, f.scene.LayerCount())
	assert.Equal(t, "Brgy. Test", f.m.Overlays().Badge)
}

func TestUnmount_RemovesEverything(t *testing.T) {
	f := newFixture(t, mapview.WithMarkers([]domain.IncidentMarker{
		{ID: "1", Position: insideLoc, Title: "Theft / Robbery", Status: domain.StatusPending},
	}))
	f.m.Click(inside2)
	require.NoError(t, f.m.ToggleTracking())
	f.source.last().onFix(domain.Fix{Location: insideLoc, AccuracyMeters: 12})
	f.m.Click(outsideLoc)

	f.m.Unmount()

	assert.Zero(t, f.scene.MarkerCount())
	assert.Zero(t, f.scene.LayerCount())
	_, ok := f.scene.Circle(mapview.AccuracyCircleID)
	assert.False(t, ok)
	_, ok = f.scene.MaxBounds()
	assert.False(t, ok)
	assert.True(t, f.source.last().sub.cancelled)

	// Pending timers are gone too.
	f.clock.Advance(5 * time.Second)
	assert.False(t, f.m.Overlays().OutOfBounds)
}

func TestSetMarkers_Resyncs(t *testing.T) {
	f := newFixture(t)

	f.m.SetMarkers([]domain.IncidentMarker{
		{ID: "1", Position: insideLoc, Title: "Theft / Robbery", Status: domain.StatusPending},
		{ID: "2", Position: inside2, Title: "Vandalism", Status: domain.StatusResolved},
	})
	assert.Equal(t, 2, f.scene.MarkerCount())

	f.m.SetMarkers([]domain.IncidentMarker{
		{ID: "2", Position: inside2, Title: "Vandalism", Status: domain.StatusInvestigating},
	})
	assert.Equal(t, 1, f.scene.MarkerCount())
	pin, ok := f.scene.Marker("incident:2")
	require.True(t, ok)
	assert.Equal(t, mapview.InvestigatingIcon, pin.Spec.Icon)
}

func TestFullscreen_FollowsPlatformConfirmation(t *testing.T) {
	platform := &fakeFullscreen{}
	f := newFixture(t, mapview.WithFullscreen(platform))

	require.NoError(t, f.m.ToggleFullscreen())
	assert.Equal(t, 1, platform.requests)
	assert.False(t, f.m.Overlays().Fullscreen, "state waits for the platform")

	platform.active = true
	f.m.FullscreenChanged(true)
	assert.True(t, f.m.Overlays().Fullscreen)

	require.NoError(t, f.m.ToggleFullscreen())
	assert.Equal(t, 1, platform.exits)

	platform.active = false
	f.m.FullscreenChanged(false)
	assert.False(t, f.m.Overlays().Fullscreen)
}

func TestFullscreen_Denied(t *testing.T) {
	platform := &fakeFullscreen{deny: true}
	f := newFixture(t, mapview.WithFullscreen(platform))

	err := f.m.ToggleFullscreen()
	assert.ErrorIs(t, err, mapview.ErrFullscreenDenied)
	assert.False(t, f.m.Overlays().Fullscreen)
}

func TestFullscreen_Unsupported(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.m.ToggleFullscreen(), mapview.ErrFullscreenDenied)
}

func TestZoomButtons_RespectRange(t *testing.T) {
	f := newFixture(t)

	for range 5 {
		f.m.ZoomIn()
	}
	assert.Equal(t, 18, f.scene.Zoom())

	for range 10 {
		f.m.ZoomOut()
	}
	assert.Equal(t, 14, f.scene.Zoom())
}

func TestButtons(t *testing.T) {
	f := newFixture(t)

	b := f.m.Buttons()
	require.Len(t, b, 4)
	assert.Equal(t, "Track My Location", b[2].Title)

	require.NoError(t, f.m.ToggleTracking())
	b = f.m.Buttons()
	assert.Equal(t, "Stop Tracking", b[2].Title)
	assert.True(t, b[2].Active)
}

func TestStateChange_Notified(t *testing.T) {
	f := newFixture(t)
	before := len(f.states)

	f.m.Click(outsideLoc)
	require.Greater(t, len(f.states), before)
	assert.True(t, f.states[len(f.states)-1].OutOfBounds)

	f.clock.Advance(3 * time.Second)
	assert.False(t, f.states[len(f.states)-1].OutOfBounds)
}
