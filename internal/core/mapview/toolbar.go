package mapview

import (
	"fmt"

	"github.com/samirrijal/barangaymap/internal/core/ports"
)

// Fullscreen mirrors the platform fullscreen state. The mirrored flag only
// changes when the platform reports a transition through Changed.
type Fullscreen struct {
	platform ports.FullscreenPlatform
	active   bool
	onChange func()
}

func newFullscreen(platform ports.FullscreenPlatform, onChange func()) *Fullscreen {
	return &Fullscreen{platform: platform, onChange: onChange}
}

// Active reports the last state the platform confirmed.
func (f *Fullscreen) Active() bool { return f.active }

// Toggle asks the platform to enter or leave fullscreen.
func (f *Fullscreen) Toggle() error {
	if f.platform == nil {
		return fmt.Errorf("%w: fullscreen not supported", ErrFullscreenDenied)
	}
	if f.platform.Active() {
		if err := f.platform.Exit(); err != nil {
			return fmt.Errorf("exit fullscreen: %w", err)
		}
		return nil
	}
	if err := f.platform.Request(); err != nil {
		return fmt.Errorf("%w: %v", ErrFullscreenDenied, err)
	}
	return nil
}

// Changed records a platform fullscreen notification.
func (f *Fullscreen) Changed(active bool) {
	if f.active == active {
		return
	}
	f.active = active
	if f.onChange != nil {
		f.onChange()
	}
}

// Button is one toolbar control as the client should render it.
type Button struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Active bool   `json:"active,omitempty"`
}

// Toolbar groups the zoom, tracking and fullscreen controls.
type Toolbar struct {
	surface    ports.MapSurface
	tracker    *Tracker
	fullscreen *Fullscreen
}

func (t *Toolbar) ZoomIn()  { t.surface.ZoomIn() }
func (t *Toolbar) ZoomOut() { t.surface.ZoomOut() }

func (t *Toolbar) ToggleTracking() error { return t.tracker.Toggle() }

func (t *Toolbar) ToggleFullscreen() error { return t.fullscreen.Toggle() }

// Buttons lists the controls top to bottom.
func (t *Toolbar) Buttons() []Button {
	tracking := t.tracker.State() == TrackerTracking
	trackTitle := "Track My Location"
	if tracking {
		trackTitle = "Stop Tracking"
	}
	return []Button{
		{Action: "zoom_in", Title: "Zoom In"},
		{Action: "zoom_out", Title: "Zoom Out"},
		{Action: "toggle_tracking", Title: trackTitle, Active: tracking},
		{Action: "toggle_fullscreen", Title: "Fullscreen", Active: t.fullscreen.Active()},
	}
}
