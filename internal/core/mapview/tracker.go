package mapview

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

const (
	LiveMarkerID     = "live-location"
	AccuracyCircleID = "live-accuracy"

	// DefaultTrackZoom is the zoom used to centre on the first fix of a session.
	DefaultTrackZoom = 17
)

// DefaultWatchOptions asks for high-accuracy fixes no older than 10s.
var DefaultWatchOptions = ports.WatchOptions{
	HighAccuracy: true,
	MaximumAge:   10 * time.Second,
	Timeout:      5 * time.Second,
}

// AccuracyStyle styles the accuracy circle around the live position.
var AccuracyStyle = ports.CircleStyle{
	Color:       colorLive,
	FillColor:   colorLive,
	FillOpacity: 0.15,
	Opacity:     0.5,
	Weight:      2,
}

// TrackerState is the live-location tracking mode.
type TrackerState int

const (
	TrackerIdle TrackerState = iota
	TrackerTracking
)

func (s TrackerState) String() string {
	if s == TrackerTracking {
		return "tracking"
	}
	return "idle"
}

// Signal describes the quality of the position feed while tracking.
type Signal string

const (
	SignalNone      Signal = ""
	SignalAcquiring Signal = "acquiring"
	SignalOK        Signal = "ok"
	SignalLost      Signal = "lost"
)

// TrackingSession is a snapshot of the tracker.
type TrackingSession struct {
	Active             bool             `json:"active"`
	LastPosition       *domain.Location `json:"last_position,omitempty"`
	LastAccuracyMeters float64          `json:"last_accuracy_meters"`
	Signal             Signal           `json:"signal,omitempty"`
}

type trackerHooks struct {
	onUpdate func(domain.Fix)
	onError  func(error)
	onChange func()
}

// Tracker follows the device position while tracking is on, drawing a
// marker and an accuracy circle that are created once and then moved.
type Tracker struct {
	lock    sync.Locker
	surface ports.MapSurface
	source  ports.PositionSource
	opts    ports.WatchOptions
	zoom    int
	logger  *slog.Logger
	hooks   trackerHooks

	state    TrackerState
	signal   Signal
	session  uint64
	sub      ports.Subscription
	last     *domain.Location
	accuracy float64
	drawn    bool
}

func newTracker(lock sync.Locker, surface ports.MapSurface, source ports.PositionSource, opts ports.WatchOptions, zoom int, logger *slog.Logger, hooks trackerHooks) *Tracker {
	return &Tracker{
		lock:    lock,
		surface: surface,
		source:  source,
		opts:    opts,
		zoom:    zoom,
		logger:  logger,
		hooks:   hooks,
	}
}

// State returns the tracking mode.
func (t *Tracker) State() TrackerState { return t.state }

// Signal returns the feed quality. It is SignalNone while idle.
func (t *Tracker) Signal() Signal { return t.signal }

// Session returns a snapshot of the current session.
func (t *Tracker) Session() TrackingSession {
	s := TrackingSession{
		Active:             t.state == TrackerTracking,
		LastAccuracyMeters: t.accuracy,
		Signal:             t.signal,
	}
	if t.last != nil {
		pos := *t.last
		s.LastPosition = &pos
	}
	return s
}

// Start subscribes to the position source. Tracking stays on when the
// subscription fails; the error wraps ErrLocationUnavailable and the signal
// reads lost until a fix arrives.
func (t *Tracker) Start() error {
	if t.state == TrackerTracking {
		return nil
	}
	t.session++
	t.state = TrackerTracking
	t.signal = SignalAcquiring
	defer t.changed()

	if t.source == nil {
		t.signal = SignalLost
		return fmt.Errorf("%w: no position source", ErrLocationUnavailable)
	}

	session := t.session
	sub, err := t.source.Watch(t.opts,
		func(fix domain.Fix) {
			t.lock.Lock()
			defer t.lock.Unlock()
			t.handleFix(session, fix)
		},
		func(err error) {
			t.lock.Lock()
			defer t.lock.Unlock()
			t.handleError(session, err)
		},
	)
	if err != nil {
		t.signal = SignalLost
		t.logger.Warn("position watch failed", "error", err)
		return fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	t.sub = sub
	return nil
}

// Stop ends the session and removes the live primitives. Safe in any state.
func (t *Tracker) Stop() {
	wasActive := t.state == TrackerTracking
	t.session++
	if t.sub != nil {
		t.sub.Cancel()
		t.sub = nil
	}
	if t.drawn {
		t.surface.RemoveMarker(LiveMarkerID)
		t.surface.RemoveCircle(AccuracyCircleID)
		t.drawn = false
	}
	t.state = TrackerIdle
	t.signal = SignalNone
	t.last = nil
	t.accuracy = 0
	if wasActive {
		t.changed()
	}
}

// Toggle flips between idle and tracking.
func (t *Tracker) Toggle() error {
	if t.state == TrackerTracking {
		t.Stop()
		return nil
	}
	return t.Start()
}

func (t *Tracker) handleFix(session uint64, fix domain.Fix) {
	if session != t.session || t.state != TrackerTracking {
		return
	}
	pos := fix.Location
	first := !t.drawn
	t.last = &pos
	t.accuracy = fix.AccuracyMeters
	t.signal = SignalOK

	if first {
		t.surface.AddMarker(LiveMarkerID, pos, ports.MarkerSpec{Icon: UserLocationIcon, ZIndexOffset: 1000})
		t.surface.AddCircle(AccuracyCircleID, pos, fix.AccuracyMeters, AccuracyStyle)
		t.drawn = true
		t.surface.FlyTo(pos, t.zoom)
	} else {
		t.surface.MoveMarker(LiveMarkerID, pos)
		t.surface.UpdateCircle(AccuracyCircleID, pos, fix.AccuracyMeters)
	}

	if t.hooks.onUpdate != nil {
		t.hooks.onUpdate(fix)
	}
	t.changed()
}

func (t *Tracker) handleError(session uint64, err error) {
	if session != t.session || t.state != TrackerTracking {
		return
	}
	t.logger.Warn("position fix failed", "error", err)
	t.signal = SignalLost
	if t.hooks.onError != nil {
		t.hooks.onError(fmt.Errorf("%w: %v", ErrLocationUnavailable, err))
	}
	t.changed()
}

func (t *Tracker) changed() {
	if t.hooks.onChange != nil {
		t.hooks.onChange()
	}
}
