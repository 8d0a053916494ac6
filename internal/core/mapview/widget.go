package mapview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

// DefaultZoom is the initial zoom when none is given.
const DefaultZoom = 16

const clickInstruction = "Click on map to pin incident location"

type options struct {
	markers     []domain.IncidentMarker
	interactive bool
	center      *domain.Location
	zoom        int
	restrict    bool

	onSelect      func(domain.Location)
	onOutOfBounds func()
	onUpdate      func(domain.Fix)
	onTrackError  func(error)
	onState       func(Overlays)

	clock       ports.Clock
	platform    ports.FullscreenPlatform
	logger      *slog.Logger
	viewport    ViewportConstraint
	trackZoom   int
	oobDuration time.Duration
	watch       ports.WatchOptions
}

// Option configures a Map.
type Option func(*options)

// WithMarkers sets the incident pins drawn on mount.
func WithMarkers(markers []domain.IncidentMarker) Option {
	return func(o *options) { o.markers = markers }
}

// WithInteractive turns click-to-pick on or off. Default on.
func WithInteractive(on bool) Option {
	return func(o *options) { o.interactive = on }
}

// WithCenter overrides the initial centre. Default is the jurisdiction centre.
func WithCenter(center domain.Location) Option {
	return func(o *options) { o.center = &center }
}

func WithZoom(zoom int) Option {
	return func(o *options) { o.zoom = zoom }
}

// WithRestriction toggles the geofence, viewport clamp and mask. Default on.
func WithRestriction(on bool) Option {
	return func(o *options) { o.restrict = on }
}

func OnLocationSelect(f func(domain.Location)) Option {
	return func(o *options) { o.onSelect = f }
}

func OnOutOfBounds(f func()) Option {
	return func(o *options) { o.onOutOfBounds = f }
}

// OnLocationUpdate is called with every live fix while tracking.
func OnLocationUpdate(f func(domain.Fix)) Option {
	return func(o *options) { o.onUpdate = f }
}

// OnTrackingError is called when the position feed reports an error.
func OnTrackingError(f func(error)) Option {
	return func(o *options) { o.onTrackError = f }
}

// OnStateChange is called whenever the overlays may have changed.
func OnStateChange(f func(Overlays)) Option {
	return func(o *options) { o.onState = f }
}

func WithClock(c ports.Clock) Option {
	return func(o *options) { o.clock = c }
}

func WithFullscreen(p ports.FullscreenPlatform) Option {
	return func(o *options) { o.platform = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithViewport(c ViewportConstraint) Option {
	return func(o *options) { o.viewport = c }
}

func WithTrackZoom(zoom int) Option {
	return func(o *options) { o.trackZoom = zoom }
}

func WithOutOfBoundsDuration(d time.Duration) Option {
	return func(o *options) { o.oobDuration = d }
}

func WithWatchOptions(w ports.WatchOptions) Option {
	return func(o *options) { o.watch = w }
}

// Overlays is the chrome drawn over the map.
type Overlays struct {
	Badge              string `json:"badge,omitempty"`
	Locality           string `json:"locality,omitempty"`
	Instruction        string `json:"instruction,omitempty"`
	OutOfBounds        bool   `json:"out_of_bounds"`
	OutOfBoundsMessage string `json:"out_of_bounds_message,omitempty"`
	Tracking           bool   `json:"tracking"`
	Signal             Signal `json:"signal,omitempty"`
	Fullscreen         bool   `json:"fullscreen"`
}

// Map is the geofenced incident map widget.
type Map struct {
	mu sync.Mutex

	surface      ports.MapSurface
	jurisdiction domain.Jurisdiction
	opts         options

	policy     BoundaryPolicy
	flag       *OutOfBoundsFlag
	mask       *MaskLayer
	selection  *SelectionMarker
	tracker    *Tracker
	markers    *MarkerLayer
	fullscreen *Fullscreen
	toolbar    *Toolbar

	mounted     bool
	hasSelected bool
}

// New builds a widget drawing on surface. positions may be nil, in which
// case tracking reports the location as unavailable.
func New(surface ports.MapSurface, positions ports.PositionSource, jurisdiction domain.Jurisdiction, opts ...Option) *Map {
	o := options{
		interactive: true,
		zoom:        DefaultZoom,
		restrict:    true,
		clock:       SystemClock{},
		logger:      slog.Default(),
		viewport:    DefaultViewportConstraint(),
		trackZoom:   DefaultTrackZoom,
		oobDuration: DefaultOutOfBoundsDuration,
		watch:       DefaultWatchOptions,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Map{
		surface:      surface,
		jurisdiction: jurisdiction,
		opts:         o,
		policy:       NewBoundaryPolicy(jurisdiction.Boundary, o.restrict),
		mask:         newMaskLayer(surface, jurisdiction.Boundary),
		selection:    newSelectionMarker(surface),
		markers:      newMarkerLayer(surface),
	}
	m.flag = newOutOfBoundsFlag(o.clock, &m.mu, o.oobDuration, func(bool) { m.notify() })
	m.tracker = newTracker(&m.mu, surface, positions, o.watch, o.trackZoom, o.logger, trackerHooks{
		onUpdate: o.onUpdate,
		onError:  o.onTrackError,
		onChange: m.notify,
	})
	m.fullscreen = newFullscreen(o.platform, m.notify)
	m.toolbar = &Toolbar{surface: surface, tracker: m.tracker, fullscreen: m.fullscreen}
	return m
}

// Mount sets the initial view and draws the restriction overlays and pins.
func (m *Map) Mount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mounted {
		return
	}
	center := m.jurisdiction.Center
	if m.opts.center != nil {
		center = *m.opts.center
	}
	m.surface.SetView(center, m.opts.zoom)
	if m.policy.Restricted() {
		m.opts.viewport.Apply(m.surface, m.jurisdiction.Bounds)
		m.mask.Mount()
	}
	m.markers.Sync(m.opts.markers)
	m.mounted = true
	m.notify()
}

// Unmount stops tracking and removes everything the widget drew.
func (m *Map) Unmount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return
	}
	m.tracker.Stop()
	m.flag.Clear()
	m.selection.Clear()
	m.markers.Clear()
	m.mask.Unmount()
	if m.policy.Restricted() {
		m.opts.viewport.Release(m.surface)
	}
	m.mounted = false
}

// SetRestriction switches the geofence on or off.
func (m *Map) SetRestriction(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.policy.Restricted() == on {
		return
	}
	m.policy = NewBoundaryPolicy(m.jurisdiction.Boundary, on)
	if !m.mounted {
		return
	}
	if on {
		m.opts.viewport.Apply(m.surface, m.jurisdiction.Bounds)
		m.mask.Mount()
	} else {
		m.opts.viewport.Release(m.surface)
		m.mask.Unmount()
		m.flag.Clear()
	}
	m.notify()
}

// SetJurisdiction replaces the boundary the widget enforces.
func (m *Map) SetJurisdiction(j domain.Jurisdiction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jurisdiction = j
	m.policy = NewBoundaryPolicy(j.Boundary, m.policy.Restricted())
	m.mask.SetBoundary(j.Boundary)
	if m.mounted && m.policy.Restricted() {
		m.opts.viewport.Apply(m.surface, j.Bounds)
	}
	m.notify()
}

// SetMarkers replaces the incident pins.
func (m *Map) SetMarkers(markers []domain.IncidentMarker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts.markers = markers
	if m.mounted {
		m.markers.Sync(markers)
	}
}

// Click handles a pick at loc.
func (m *Map) Click(loc domain.Location) ClickResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted || !m.opts.interactive {
		return ClickIgnored
	}

	if !m.policy.Admit(loc) {
		m.flag.Raise()
		if m.opts.onOutOfBounds != nil {
			m.opts.onOutOfBounds()
		}
		return ClickRejected
	}

	m.selection.Set(loc)
	m.flag.Clear()
	m.hasSelected = true
	if m.opts.onSelect != nil {
		m.opts.onSelect(loc)
	}
	m.surface.FlyTo(loc, m.surface.Zoom())
	m.notify()
	return ClickAccepted
}

// ToggleTracking starts or stops live location tracking.
func (m *Map) ToggleTracking() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolbar.ToggleTracking()
}

func (m *Map) ZoomIn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolbar.ZoomIn()
}

func (m *Map) ZoomOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toolbar.ZoomOut()
}

// ToggleFullscreen asks the platform to switch fullscreen. The mirrored
// state follows FullscreenChanged, not this call.
func (m *Map) ToggleFullscreen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolbar.ToggleFullscreen()
}

// FullscreenChanged records a platform fullscreen transition.
func (m *Map) FullscreenChanged(active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fullscreen.Changed(active)
}

// Overlays returns the current chrome state.
func (m *Map) Overlays() Overlays {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlays()
}

// Buttons returns the toolbar controls.
func (m *Map) Buttons() []Button {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toolbar.Buttons()
}

// Selection returns the picked incident location, if any.
func (m *Map) Selection() (domain.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selection.Current()
}

// Tracking returns a snapshot of the live-location session.
func (m *Map) Tracking() TrackingSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tracker.Session()
}

func (m *Map) overlays() Overlays {
	o := Overlays{
		OutOfBounds: m.flag.Shown(),
		Tracking:    m.tracker.State() == TrackerTracking,
		Signal:      m.tracker.Signal(),
		Fullscreen:  m.fullscreen.Active(),
	}
	if m.policy.Restricted() {
		o.Badge = m.jurisdiction.Label()
		o.Locality = m.jurisdiction.Municipality + ", " + m.jurisdiction.Province
	}
	if m.opts.interactive && !m.hasSelected {
		o.Instruction = clickInstruction
	}
	if o.OutOfBounds {
		o.OutOfBoundsMessage = "Please select a location within " + m.jurisdiction.Label()
	}
	return o
}

func (m *Map) notify() {
	if m.opts.onState != nil {
		m.opts.onState(m.overlays())
	}
}
