package ports

import (
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

// Icon identifies a pin glyph by name and colour.
type Icon struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Size  int    `json:"size"`
}

// Popup is the text shown when a pin is opened.
type Popup struct {
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	DotColor string `json:"dot_color,omitempty"`
	Mono     bool   `json:"mono,omitempty"`
}

// MarkerSpec describes a pin to draw.
type MarkerSpec struct {
	Icon         Icon   `json:"icon"`
	Popup        *Popup `json:"popup,omitempty"`
	ZIndexOffset int    `json:"z_index_offset,omitempty"`
}

// CircleStyle styles a radius circle.
type CircleStyle struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
	Opacity     float64 `json:"opacity"`
	Weight      int     `json:"weight"`
}

// LayerStyle styles a GeoJSON overlay.
type LayerStyle struct {
	Stroke      bool    `json:"stroke"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight,omitempty"`
	DashArray   string  `json:"dash_array,omitempty"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
	Interactive bool    `json:"interactive"`
}

// Layer is a styled GeoJSON overlay.
type Layer struct {
	Feature *geojson.Feature `json:"feature"`
	Style   LayerStyle       `json:"style"`
}

// MapSurface is the drawing target of the map widget. Implementations wrap
// a concrete map engine (or a command stream to one). Methods never fail;
// adapters log their own transport errors.
type MapSurface interface {
	SetView(center domain.Location, zoom int)
	FlyTo(center domain.Location, zoom int)
	Zoom() int
	ZoomIn()
	ZoomOut()

	SetMaxBounds(bounds domain.BoundingBox)
	ClearMaxBounds()
	SetZoomRange(minZoom, maxZoom int)
	ClearZoomRange()

	AddMarker(id string, at domain.Location, spec MarkerSpec)
	MoveMarker(id string, at domain.Location)
	SetPopup(id string, popup Popup)
	RemoveMarker(id string)

	AddCircle(id string, center domain.Location, radiusMeters float64, style CircleStyle)
	UpdateCircle(id string, center domain.Location, radiusMeters float64)
	RemoveCircle(id string)

	AddLayer(id string, layer Layer)
	RemoveLayer(id string)
}

// WatchOptions tunes a continuous position subscription.
type WatchOptions struct {
	HighAccuracy bool          `json:"high_accuracy"`
	MaximumAge   time.Duration `json:"maximum_age"`
	Timeout      time.Duration `json:"timeout"`
}

// Subscription is a live position watch. Cancel is idempotent.
type Subscription interface {
	Cancel()
}

// PositionSource delivers device fixes until the subscription is cancelled.
// Callbacks may run on any goroutine but never concurrently with each other
// for the same subscription, and never synchronously from inside Watch.
type PositionSource interface {
	Watch(opts WatchOptions, onFix func(domain.Fix), onError func(error)) (Subscription, error)
}

// Timer is a pending callback scheduled by a Clock.
type Timer interface {
	Stop() bool
}

// Clock abstracts time for timers that must be testable.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// FullscreenPlatform wraps the host's fullscreen API. Request and Exit only
// ask; the outcome is reported through the widget's FullscreenChanged.
type FullscreenPlatform interface {
	Request() error
	Exit() error
	Active() bool
}
