package mapview_test

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/barangaymap/internal/adapters/memory"
	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/mapview"
	"github.com/samirrijal/barangaymap/internal/core/ports"
	"github.com/samirrijal/barangaymap/internal/pkg/config"
)

var (
	insideLoc  = domain.Location{Lat: 14.8700, Lng: 121.0000}
	inside2    = domain.Location{Lat: 14.8600, Lng: 120.9900}
	outsideLoc = domain.Location{Lat: 14.8000, Lng: 120.9000}
)

// --- fake clock ---

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 12, 15, 14, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// --- fake position source ---

type fakeSubscription struct {
	cancelled bool
}

func (s *fakeSubscription) Cancel() { s.cancelled = true }

type watch struct {
	opts    ports.WatchOptions
	onFix   func(domain.Fix)
	onError func(error)
	sub     *fakeSubscription
}

type fakeSource struct {
	err     error
	watches []*watch
}

func (s *fakeSource) Watch(opts ports.WatchOptions, onFix func(domain.Fix), onError func(error)) (ports.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	w := &watch{opts: opts, onFix: onFix, onError: onError, sub: &fakeSubscription{}}
	s.watches = append(s.watches, w)
	return w.sub, nil
}

func (s *fakeSource) last() *watch {
	if len(s.watches) == 0 {
		return nil
	}
	return s.watches[len(s.watches)-1]
}

// --- fake fullscreen ---

type fakeFullscreen struct {
	active   bool
	deny     bool
	requests int
	exits    int
}

func (f *fakeFullscreen) Request() error {
	f.requests++
	if f.deny {
		return errors.New("permission denied")
	}
	return nil
}

func (f *fakeFullscreen) Exit() error {
	f.exits++
	return nil
}

func (f *fakeFullscreen) Active() bool { return f.active }

// --- fixture ---

type fixture struct {
	scene  *memory.Scene
	source *fakeSource
	clock  *fakeClock
	m      *mapview.Map

	selected    []domain.Location
	outOfBounds int
	updates     []domain.Fix
	trackErrs   []error
	states      []mapview.Overlays
}

func newFixture(t *testing.T, opts ...mapview.Option) *fixture {
	t.Helper()
	f := &fixture{
		scene:  memory.NewScene(),
		source: &fakeSource{},
		clock:  newFakeClock(),
	}
	base := []mapview.Option{
		mapview.WithClock(f.clock),
		mapview.OnLocationSelect(func(loc domain.Location) { f.selected = append(f.selected, loc) }),
		mapview.OnOutOfBounds(func() { f.outOfBounds++ }),
		mapview.OnLocationUpdate(func(fix domain.Fix) { f.updates = append(f.updates, fix) }),
		mapview.OnTrackingError(func(err error) { f.trackErrs = append(f.trackErrs, err) }),
		mapview.OnStateChange(func(o mapview.Overlays) { f.states = append(f.states, o) }),
	}
	f.m = mapview.New(f.scene, f.source, config.DefaultJurisdiction(), append(base, opts...)...)
	f.m.Mount()
	t.Cleanup(f.m.Unmount)
	return f
}
