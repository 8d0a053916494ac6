package http

import (
	"errors"
	"testing"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/core/ports"
)

type sent struct{ msgs []wsOutbound }

func (s *sent) send(m wsOutbound) { s.msgs = append(s.msgs, m) }

func TestClientPositions_WatchDeliverCancel(t *testing.T) {
	out := &sent{}
	p := &clientPositions{send: out.send}

	var fixes []domain.Fix
	var errs []error
	sub, err := p.Watch(ports.WatchOptions{HighAccuracy: true}, func(f domain.Fix) { fixes = append(fixes, f) }, func(err error) { errs = append(errs, err) })
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if len(out.msgs) != 1 || out.msgs[0].Type != "geolocation" || out.msgs[0].Action != "watch" {
		t.Fatalf("expected a geolocation watch request, got %+v", out.msgs)
	}
	if !out.msgs[0].Options.HighAccuracy {
		t.Error("expected watch options to be forwarded")
	}

	p.deliver(domain.Fix{Location: domain.Location{Lat: 14.87, Lng: 121}, AccuracyMeters: 12})
	p.fail(errors.New("denied"))
	if len(fixes) != 1 || len(errs) != 1 {
		t.Fatalf("expected 1 fix and 1 error, got %d and %d", len(fixes), len(errs))
	}

	sub.Cancel()
	sub.Cancel()
	if len(out.msgs) != 2 || out.msgs[1].Action != "clear" {
		t.Fatalf("expected a single clear request, got %+v", out.msgs)
	}
	p.deliver(domain.Fix{})
	if len(fixes) != 1 {
		t.Error("fix delivered after cancel")
	}
}

func TestClientPositions_StaleCancelKeepsNewWatch(t *testing.T) {
	out := &sent{}
	p := &clientPositions{send: out.send}

	first, _ := p.Watch(ports.WatchOptions{}, func(domain.Fix) {}, func(error) {})
	got := 0
	p.Watch(ports.WatchOptions{}, func(domain.Fix) { got++ }, func(error) {})

	first.Cancel()
	p.deliver(domain.Fix{})
	if got != 1 {
		t.Errorf("expected the newer watch to stay live, got %d fixes", got)
	}
	for _, m := range out.msgs {
		if m.Action == "clear" {
			t.Error("stale cancel must not clear the browser watch")
		}
	}
}

func TestClientFullscreen(t *testing.T) {
	out := &sent{}
	f := &clientFullscreen{send: out.send}

	if err := f.Request(); err != nil {
		t.Fatalf("request: %v", err)
	}
	if f.Active() {
		t.Error("request alone must not change state")
	}
	f.set(true)
	if !f.Active() {
		t.Error("expected active after confirmation")
	}
	_ = f.Exit()
	if len(out.msgs) != 2 || out.msgs[0].Action != "request" || out.msgs[1].Action != "exit" {
		t.Errorf("unexpected messages %+v", out.msgs)
	}
}

func TestCacheControlFor(t *testing.T) {
	cases := map[string]string{
		"/v1/jurisdiction": "public, max-age=3600",
		"/v1/reports/abc":  "public, max-age=15",
		"/v1/health":       "no-cache",
		"/ws/map":          "no-store",
		"/docs":            "",
	}
	for path, want := range cases {
		if got := cacheControlFor(path); got != want {
			t.Errorf("%s: expected %q, got %q", path, want, got)
		}
	}
}

func TestETagMatches(t *testing.T) {
	tag := `W/"abc"`
	if !etagMatches(`W/"x", W/"abc"`, tag) || !etagMatches("*", tag) {
		t.Error("expected match")
	}
	if etagMatches("", tag) || etagMatches(`W/"x"`, tag) {
		t.Error("unexpected match")
	}
}
