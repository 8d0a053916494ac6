package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/samirrijal/barangaymap/internal/adapters/memory"
	natsadapter "github.com/samirrijal/barangaymap/internal/adapters/nats"
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/core/ports"
	"github.com/samirrijal/barangaymap/internal/pkg/metrics"
)

const (
	wsPingInterval    = 30 * time.Second
	wsMarkerRefresh   = 30 * time.Second
	wsOutboundBacklog = 64
)

// wsInbound is a client event. Fields are used depending on Type.
type wsInbound struct {
	Type     string  `json:"type"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Accuracy float64 `json:"accuracy"`
	Zoom     int     `json:"zoom"`
	Active   bool    `json:"active"`
	Message  string  `json:"message"`
}

// wsOutbound is a server message: commands, state, event, geolocation,
// fullscreen or error.
type wsOutbound struct {
	Type     string              `json:"type"`
	Commands []memory.Command    `json:"commands,omitempty"`
	State    *mapview.Overlays   `json:"state,omitempty"`
	Buttons  []mapview.Button    `json:"buttons,omitempty"`
	Event    string              `json:"event,omitempty"`
	Location *domain.Location    `json:"location,omitempty"`
	Fix      *domain.Fix         `json:"fix,omitempty"`
	Action   string              `json:"action,omitempty"`
	Options  *ports.WatchOptions `json:"options,omitempty"`
	Message  string              `json:"message,omitempty"`
	Session  string              `json:"session,omitempty"`
}

// mapSessionParams are read from the upgrade request.
type mapSessionParams struct {
	interactive bool
	restrict    bool
	zoom        int
	center      *domain.Location
	markers     bool
	device      string
}

func parseMapSessionParams(c *fiber.Ctx) (mapSessionParams, error) {
	p := mapSessionParams{
		interactive: c.QueryBool("interactive", true),
		restrict:    c.QueryBool("restrict", true),
		zoom:        c.QueryInt("zoom", 0),
		markers:     c.Query("markers") == "incidents",
		device:      c.Query("device"),
	}
	if c.Query("lat") != "" || c.Query("lng") != "" {
		loc, err := locationQuery(c)
		if err != nil {
			return p, err
		}
		p.center = &loc
	}
	if p.zoom < 0 || p.zoom > memory.EngineMaxZoom {
		return p, fmt.Errorf("zoom must be between 0 and %d", memory.EngineMaxZoom)
	}
	return p, nil
}

// MapSessionUpgrade validates the session parameters before the upgrade so
// bad requests get a plain HTTP error.
func MapSessionUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if deps.Geofence == nil {
			return errUnavailable(c, "map sessions are not configured")
		}
		params, err := parseMapSessionParams(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if params.device != "" && deps.NATS == nil {
			return errBadRequest(c, "device tracking requires NATS")
		}
		c.Locals("map_params", params)
		return c.Next()
	}
}

// MapSessionHandler runs one map widget per connection. The browser draws
// the streamed surface commands and reports clicks, fixes and fullscreen
// changes back.
func MapSessionHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		params, _ := c.Locals("map_params").(mapSessionParams)
		s := newMapSession(c, deps, params)
		metrics.ActiveMapSessions.Inc()
		defer metrics.ActiveMapSessions.Dec()

		s.log.Info("map session opened", "remote", c.RemoteAddr().String(), "device", params.device)
		s.run()
		s.log.Info("map session closed")
	}
}

type mapSession struct {
	id   string
	conn *websocket.Conn
	deps *Dependencies
	log  *slog.Logger

	scene      *memory.Scene
	widget     *mapview.Map
	positions  *clientPositions // nil when fixes come from a device over NATS
	fullscreen *clientFullscreen
	markers    bool
	fixSource  string

	mu        sync.Mutex
	outbox    []wsOutbound
	lastState *mapview.Overlays
	kick      chan struct{}
}

func newMapSession(c *websocket.Conn, deps *Dependencies, p mapSessionParams) *mapSession {
	s := &mapSession{
		id:      uuid.NewString(),
		conn:    c,
		deps:    deps,
		scene:   memory.NewScene(),
		markers: p.markers,
		kick:    make(chan struct{}, 1),
	}
	s.log = slog.Default().With("session", s.id)
	s.fullscreen = &clientFullscreen{send: s.enqueue}

	var positions ports.PositionSource
	if p.device != "" {
		positions = natsadapter.NewFixSource(deps.NATS, deps.FixSubject, p.device)
		s.fixSource = "device"
	} else {
		s.positions = &clientPositions{send: s.enqueue}
		positions = s.positions
		s.fixSource = "client"
	}

	zoom := deps.Geofence.DefaultZoom()
	if p.zoom > 0 {
		zoom = p.zoom
	}
	opts := []mapview.Option{
		mapview.WithInteractive(p.interactive),
		mapview.WithRestriction(p.restrict),
		mapview.WithZoom(zoom),
		mapview.WithViewport(deps.Geofence.Viewport()),
		mapview.WithFullscreen(s.fullscreen),
		mapview.WithLogger(s.log),
		mapview.OnLocationSelect(func(loc domain.Location) {
			s.enqueue(wsOutbound{Type: "event", Event: "location_selected", Location: &loc})
		}),
		mapview.OnOutOfBounds(func() {
			s.enqueue(wsOutbound{Type: "event", Event: "out_of_bounds"})
		}),
		mapview.OnLocationUpdate(func(fix domain.Fix) {
			metrics.FixesReceived.WithLabelValues(s.fixSource).Inc()
			s.enqueue(wsOutbound{Type: "event", Event: "location_update", Fix: &fix})
		}),
		mapview.OnTrackingError(func(err error) {
			metrics.FixErrors.WithLabelValues(s.fixSource).Inc()
			s.enqueue(wsOutbound{Type: "event", Event: "tracking_error", Message: err.Error()})
		}),
		mapview.OnStateChange(func(mapview.Overlays) { s.signal() }),
	}
	if p.center != nil {
		opts = append(opts, mapview.WithCenter(*p.center))
	}
	if d := deps.Map.OutOfBoundsDuration; d > 0 {
		opts = append(opts, mapview.WithOutOfBoundsDuration(d))
	}
	if z := deps.Map.TrackZoom; z > 0 {
		opts = append(opts, mapview.WithTrackZoom(z))
	}
	if p.markers {
		opts = append(opts, mapview.WithMarkers(s.loadMarkers()))
	}

	s.widget = mapview.New(s.scene, positions, deps.Geofence.Jurisdiction(), opts...)
	return s
}

// run mounts the widget, starts the writer and reads client events until
// the connection drops.
func (s *mapSession) run() {
	s.widget.Mount()
	defer s.widget.Unmount()

	s.enqueue(wsOutbound{Type: "hello", Session: s.id})
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(done)
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			break
		}
		s.handle(raw)
		s.signal()
	}

	close(done)
	<-writerDone
}

// handle applies one client event. A panic in the widget ends only this
// message, not the session.
func (s *mapSession) handle(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("map session message panicked", "panic", r)
			s.enqueue(wsOutbound{Type: "error", Message: "internal error"})
		}
	}()

	var msg wsInbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.enqueue(wsOutbound{Type: "error", Message: "invalid JSON"})
		return
	}

	switch msg.Type {
	case "click":
		res := s.widget.Click(domain.Location{Lat: msg.Lat, Lng: msg.Lng})
		metrics.Selections.WithLabelValues(res.String()).Inc()
	case "toggle_tracking":
		wasTracking := s.widget.Tracking().Active
		if err := s.widget.ToggleTracking(); err != nil {
			s.enqueue(wsOutbound{Type: "error", Message: err.Error()})
		}
		if !wasTracking {
			metrics.TrackingSessions.Inc()
		}
	case "zoom_in":
		s.widget.ZoomIn()
	case "zoom_out":
		s.widget.ZoomOut()
	case "toggle_fullscreen":
		if err := s.widget.ToggleFullscreen(); err != nil {
			s.enqueue(wsOutbound{Type: "error", Message: err.Error()})
		}
	case "fullscreen_change":
		s.fullscreen.set(msg.Active)
		s.widget.FullscreenChanged(msg.Active)
	case "fullscreen_error":
		s.log.Warn("fullscreen refused by client", "message", msg.Message)
		s.enqueue(wsOutbound{Type: "error", Message: mapview.ErrFullscreenDenied.Error() + ": " + msg.Message})
	case "fix", "fix_error":
		if s.positions == nil {
			s.enqueue(wsOutbound{Type: "error", Message: "positions come from the paired device"})
			return
		}
		if msg.Type == "fix" {
			s.positions.deliver(domain.Fix{
				Location:       domain.Location{Lat: msg.Lat, Lng: msg.Lng},
				AccuracyMeters: msg.Accuracy,
			})
		} else {
			s.positions.fail(errors.New(msg.Message))
		}
	case "view":
		s.scene.Observe(domain.Location{Lat: msg.Lat, Lng: msg.Lng}, msg.Zoom)
	default:
		s.enqueue(wsOutbound{Type: "error", Message: "unknown message type: " + strconv.Quote(msg.Type)})
	}
}

func (s *mapSession) writeLoop(done <-chan struct{}) {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	var refresh <-chan time.Time
	if s.markers {
		t := time.NewTicker(wsMarkerRefresh)
		defer t.Stop()
		refresh = t.C
	}

	s.flush()
	for {
		select {
		case <-s.kick:
			if err := s.flush(); err != nil {
				return
			}
		case <-refresh:
			s.widget.SetMarkers(s.loadMarkers())
			if err := s.flush(); err != nil {
				return
			}
		case <-ping.C:
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// flush sends pending surface commands, then queued messages, then the
// overlay state if it changed.
func (s *mapSession) flush() error {
	var batch []wsOutbound
	if cmds := s.scene.Drain(); len(cmds) > 0 {
		batch = append(batch, wsOutbound{Type: "commands", Commands: cmds})
	}

	// Read widget state before taking s.mu; widget callbacks enqueue under
	// the widget lock.
	state := s.widget.Overlays()
	buttons := s.widget.Buttons()
	s.mu.Lock()
	batch = append(batch, s.outbox...)
	s.outbox = nil
	if s.lastState == nil || *s.lastState != state {
		s.lastState = &state
		batch = append(batch, wsOutbound{Type: "state", State: &state, Buttons: buttons})
	}
	s.mu.Unlock()

	for _, m := range batch {
		if err := s.conn.WriteJSON(m); err != nil {
			s.log.Debug("map session write failed", "error", err)
			return err
		}
	}
	return nil
}

// enqueue queues a message for the writer. Safe to call under the widget
// lock.
func (s *mapSession) enqueue(m wsOutbound) {
	s.mu.Lock()
	if len(s.outbox) >= wsOutboundBacklog {
		s.outbox = s.outbox[1:]
	}
	s.outbox = append(s.outbox, m)
	s.mu.Unlock()
	s.signal()
}

func (s *mapSession) signal() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *mapSession) loadMarkers() []domain.IncidentMarker {
	if s.deps.Incidents == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	markers, err := s.deps.Incidents.Markers(ctx, domain.ReportFilter{}, nil)
	if err != nil {
		s.log.Warn("load incident markers failed", "error", err)
		return nil
	}
	return markers
}

// clientPositions is a ports.PositionSource fed by "fix" messages from the
// browser's geolocation watch. Only one watch is live at a time.
type clientPositions struct {
	send func(wsOutbound)

	mu    sync.Mutex
	watch *clientWatch
}

type clientWatch struct {
	src     *clientPositions
	onFix   func(domain.Fix)
	onError func(error)
}

func (p *clientPositions) Watch(opts ports.WatchOptions, onFix func(domain.Fix), onError func(error)) (ports.Subscription, error) {
	w := &clientWatch{src: p, onFix: onFix, onError: onError}
	p.mu.Lock()
	p.watch = w
	p.mu.Unlock()
	p.send(wsOutbound{Type: "geolocation", Action: "watch", Options: &opts})
	return w, nil
}

func (w *clientWatch) Cancel() {
	p := w.src
	p.mu.Lock()
	live := p.watch == w
	if live {
		p.watch = nil
	}
	p.mu.Unlock()
	if live {
		p.send(wsOutbound{Type: "geolocation", Action: "clear"})
	}
}

// current returns the live watch. Callbacks are invoked after the lock is
// released because they take the widget lock, which Cancel may hold.
func (p *clientPositions) current() *clientWatch {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.watch
}

func (p *clientPositions) deliver(fix domain.Fix) {
	if w := p.current(); w != nil {
		w.onFix(fix)
	}
}

func (p *clientPositions) fail(err error) {
	if w := p.current(); w != nil {
		w.onError(err)
	}
}

// clientFullscreen asks the browser to change fullscreen state. The answer
// arrives as fullscreen_change or fullscreen_error.
type clientFullscreen struct {
	send func(wsOutbound)

	mu     sync.Mutex
	active bool
}

func (f *clientFullscreen) Request() error {
	f.send(wsOutbound{Type: "fullscreen", Action: "request"})
	return nil
}

func (f *clientFullscreen) Exit() error {
	f.send(wsOutbound{Type: "fullscreen", Action: "exit"})
	return nil
}

func (f *clientFullscreen) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func (f *clientFullscreen) set(active bool) {
	f.mu.Lock()
	f.active = active
	f.mu.Unlock()
}
