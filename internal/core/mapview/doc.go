// Package mapview implements the geofenced incident map widget: boundary
// enforcement for location picks, the restricted viewport, the inverse
// boundary mask, the selection pin, live location tracking and incident
// status pins.
//
// The widget never talks to a map engine directly. It issues commands to a
// ports.MapSurface and receives device fixes from a ports.PositionSource,
// so the same code drives a WebSocket client or an in-memory scene in tests.
//
// A Map and its components share one mutex. Public Map methods and the
// asynchronous entry points (auto-dismiss timers, position fixes) take it,
// which gives the single-threaded ordering the components rely on. Host
// callbacks run while it is held and must not call back into the Map.
package mapview

import (
	"errors"
	"time"

	"github.com/samirrijal/barangaymap/internal/core/ports"
)

var (
	// ErrLocationUnavailable means the device could not produce fixes.
	ErrLocationUnavailable = errors.New("device location unavailable")
	// ErrFullscreenDenied means the platform refused to enter fullscreen.
	ErrFullscreenDenied = errors.New("fullscreen request denied")
)

// SystemClock schedules timers on the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	return time.AfterFunc(d, f)
}
