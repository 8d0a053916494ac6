package memory

import (
	"sync"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

// Engine zoom limits used when no zoom range is set.
const (
	EngineMinZoom = 0
	EngineMaxZoom = 19
)

// Command is one drawing instruction recorded by a Scene. The JSON form is
// what map sessions stream to browsers.
type Command struct {
	Op      string              `json:"op"`
	ID      string              `json:"id,omitempty"`
	At      *domain.Location    `json:"at,omitempty"`
	Zoom    *int                `json:"zoom,omitempty"`
	Bounds  *domain.BoundingBox `json:"bounds,omitempty"`
	MinZoom *int                `json:"min_zoom,omitempty"`
	MaxZoom *int                `json:"max_zoom,omitempty"`
	Marker  *ports.MarkerSpec   `json:"marker,omitempty"`
	Popup   *ports.Popup        `json:"popup,omitempty"`
	Radius  *float64            `json:"radius,omitempty"`
	Circle  *ports.CircleStyle  `json:"circle,omitempty"`
	Layer   *ports.Layer        `json:"layer,omitempty"`
}

const (
	OpSetView        = "set_view"
	OpFlyTo          = "fly_to"
	OpSetMaxBounds   = "set_max_bounds"
	OpClearMaxBounds = "clear_max_bounds"
	OpSetZoomRange   = "set_zoom_range"
	OpClearZoomRange = "clear_zoom_range"
	OpAddMarker      = "add_marker"
	OpMoveMarker     = "move_marker"
	OpSetPopup       = "set_popup"
	OpRemoveMarker   = "remove_marker"
	OpAddCircle      = "add_circle"
	OpUpdateCircle   = "update_circle"
	OpRemoveCircle   = "remove_circle"
	OpAddLayer       = "add_layer"
	OpRemoveLayer    = "remove_layer"
)

// MarkerState is a marker currently on the scene.
type MarkerState struct {
	At   domain.Location
	Spec ports.MarkerSpec
}

// CircleState is a circle currently on the scene.
type CircleState struct {
	Center       domain.Location
	RadiusMeters float64
	Style        ports.CircleStyle
}

// Scene is an in-memory ports.MapSurface. It keeps the resulting map state
// and a log of commands that Drain hands out in batches.
type Scene struct {
	mu sync.Mutex

	center    domain.Location
	zoom      int
	minZoom   int
	maxZoom   int
	maxBounds *domain.BoundingBox
	markers   map[string]MarkerState
	circles   map[string]CircleState
	layers    map[string]ports.Layer
	log       []Command
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		minZoom: EngineMinZoom,
		maxZoom: EngineMaxZoom,
		markers: make(map[string]MarkerState),
		circles: make(map[string]CircleState),
		layers:  make(map[string]ports.Layer),
	}
}

func (s *Scene) SetView(center domain.Location, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(OpSetView, center, zoom)
}

func (s *Scene) FlyTo(center domain.Location, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(OpFlyTo, center, zoom)
}

func (s *Scene) moveTo(op string, center domain.Location, zoom int) {
	s.center = s.clampCenter(center)
	s.zoom = s.clampZoom(zoom)
	at, z := s.center, s.zoom
	s.record(Command{Op: op, At: &at, Zoom: &z})
}

// Observe records a view change made on the client (drag, wheel) without
// emitting a command back to it.
func (s *Scene) Observe(center domain.Location, zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = s.clampCenter(center)
	s.zoom = s.clampZoom(zoom)
}

func (s *Scene) Zoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

func (s *Scene) ZoomIn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(OpSetView, s.center, s.zoom+1)
}

func (s *Scene) ZoomOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveTo(OpSetView, s.center, s.zoom-1)
}

// SetMaxBounds limits panning and pulls the view inside the bounds.
func (s *Scene) SetMaxBounds(bounds domain.BoundingBox) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxBounds = &bounds
	s.center = s.clampCenter(s.center)
	b := bounds
	s.record(Command{Op: OpSetMaxBounds, Bounds: &b})
}

func (s *Scene) ClearMaxBounds() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxBounds = nil
	s.record(Command{Op: OpClearMaxBounds})
}

func (s *Scene) SetZoomRange(minZoom, maxZoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minZoom, s.maxZoom = minZoom, maxZoom
	s.zoom = s.clampZoom(s.zoom)
	s.record(Command{Op: OpSetZoomRange, MinZoom: &minZoom, MaxZoom: &maxZoom})
}

func (s *Scene) ClearZoomRange() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minZoom, s.maxZoom = EngineMinZoom, EngineMaxZoom
	s.record(Command{Op: OpClearZoomRange})
}

func (s *Scene) AddMarker(id string, at domain.Location, spec ports.MarkerSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers[id] = MarkerState{At: at, Spec: spec}
	s.record(Command{Op: OpAddMarker, ID: id, At: &at, Marker: &spec})
}

func (s *Scene) MoveMarker(id string, at domain.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return
	}
	m.At = at
	s.markers[id] = m
	s.record(Command{Op: OpMoveMarker, ID: id, At: &at})
}

func (s *Scene) SetPopup(id string, popup ports.Popup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return
	}
	m.Spec.Popup = &popup
	s.markers[id] = m
	s.record(Command{Op: OpSetPopup, ID: id, Popup: &popup})
}

func (s *Scene) RemoveMarker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.markers[id]; !ok {
		return
	}
	delete(s.markers, id)
	s.record(Command{Op: OpRemoveMarker, ID: id})
}

func (s *Scene) AddCircle(id string, center domain.Location, radiusMeters float64, style ports.CircleStyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.circles[id] = CircleState{Center: center, RadiusMeters: radiusMeters, Style: style}
	s.record(Command{Op: OpAddCircle, ID: id, At: &center, Radius: &radiusMeters, Circle: &style})
}

func (s *Scene) UpdateCircle(id string, center domain.Location, radiusMeters float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.circles[id]
	if !ok {
		return
	}
	c.Center, c.RadiusMeters = center, radiusMeters
	s.circles[id] = c
	s.record(Command{Op: OpUpdateCircle, ID: id, At: &center, Radius: &radiusMeters})
}

func (s *Scene) RemoveCircle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.circles[id]; !ok {
		return
	}
	delete(s.circles, id)
	s.record(Command{Op: OpRemoveCircle, ID: id})
}

func (s *Scene) AddLayer(id string, layer ports.Layer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[id] = layer
	s.record(Command{Op: OpAddLayer, ID: id, Layer: &layer})
}

func (s *Scene) RemoveLayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layers[id]; !ok {
		return
	}
	delete(s.layers, id)
	s.record(Command{Op: OpRemoveLayer, ID: id})
}

// Drain returns the commands recorded since the last call. Of several view
// changes in one batch only the last is kept.
func (s *Scene) Drain() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.log
	s.log = nil
	return coalesceViews(batch)
}

func coalesceViews(batch []Command) []Command {
	last := -1
	for i, c := range batch {
		if c.Op == OpSetView || c.Op == OpFlyTo {
			last = i
		}
	}
	out := batch[:0]
	for i, c := range batch {
		if (c.Op == OpSetView || c.Op == OpFlyTo) && i != last {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Center returns the current view centre.
func (s *Scene) Center() domain.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// ZoomRange returns the active zoom limits.
func (s *Scene) ZoomRange() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minZoom, s.maxZoom
}

// MaxBounds returns the pan limit, if one is set.
func (s *Scene) MaxBounds() (domain.BoundingBox, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxBounds == nil {
		return domain.BoundingBox{}, false
	}
	return *s.maxBounds, true
}

func (s *Scene) Marker(id string) (MarkerState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	return m, ok
}

func (s *Scene) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.markers)
}

func (s *Scene) Circle(id string) (CircleState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.circles[id]
	return c, ok
}

func (s *Scene) CircleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.circles)
}

func (s *Scene) Layer(id string) (ports.Layer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	return l, ok
}

func (s *Scene) LayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.layers)
}

func (s *Scene) record(c Command) {
	s.log = append(s.log, c)
}

func (s *Scene) clampZoom(z int) int {
	return min(max(z, s.minZoom), s.maxZoom)
}

func (s *Scene) clampCenter(c domain.Location) domain.Location {
	if s.maxBounds == nil {
		return c
	}
	b := s.maxBounds
	c.Lat = min(max(c.Lat, b.South), b.North)
	c.Lng = min(max(c.Lng, b.West), b.East)
	return c
}
