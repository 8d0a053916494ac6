package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	natsadapter "github.com/samirrijal/barangaymap/internal/adapters/nats"
)

type published struct {
	mu    sync.Mutex
	fixes map[string][]natsadapter.FixMessage
}

func (p *published) publish(device string, m natsadapter.FixMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fixes == nil {
		p.fixes = make(map[string][]natsadapter.FixMessage)
	}
	p.fixes[device] = append(p.fixes[device], m)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseManifest(t *testing.T) {
	m, err := parseManifest([]byte(`
prefix: pb.fix
devices:
  - id: tanod-01
    url: http://tracker.local/tanod-01
  - id: tanod-02
    url: http://tracker.local/tanod-02
`))
	require.NoError(t, err)
	assert.Equal(t, "pb.fix", m.Prefix)
	assert.Equal(t, 5*time.Second, m.Interval)
	assert.Len(t, m.Devices, 2)
}

func TestParseManifest_Invalid(t *testing.T) {
	cases := map[string]string{
		"missing url": "devices:\n  - id: a\n",
		"duplicate":   "devices:\n  - {id: a, url: x}\n  - {id: a, url: y}\n",
		"not yaml":    "devices: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseManifest([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRelay_PublishesNewFixesOnly(t *testing.T) {
	ts := time.Date(2024, 12, 15, 14, 30, 0, 0, time.UTC)
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"lat":14.87,"lng":121.0,"accuracy":8,"timestamp":"` + ts.Format(time.RFC3339) + `"}`))
	}))
	defer srv.Close()

	var out published
	r := newRelay(srv.Client(), out.publish, discardLogger())
	devices := []Device{{ID: "tanod-01", URL: srv.URL}}

	r.pollAll(context.Background(), devices)
	r.pollAll(context.Background(), devices)

	got := out.fixes["tanod-01"]
	require.Len(t, got, 1)
	assert.Equal(t, 14.87, got[0].Lat)
	assert.Equal(t, 8.0, got[0].Accuracy)

	mu.Lock()
	ts = ts.Add(5 * time.Second)
	mu.Unlock()
	r.pollAll(context.Background(), devices)
	assert.Len(t, out.fixes["tanod-01"], 2)
}

func TestRelay_PollErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/garbage":
			_, _ = w.Write([]byte(`not json`))
		case "/range":
			_, _ = w.Write([]byte(`{"lat":140.0,"lng":121.0}`))
		}
	}))
	defer srv.Close()

	var out published
	r := newRelay(srv.Client(), out.publish, discardLogger())

	for _, path := range []string{"/down", "/garbage", "/range"} {
		err := r.poll(context.Background(), Device{ID: "x", URL: srv.URL + path})
		assert.Error(t, err, path)
	}
	assert.Empty(t, out.fixes)
}

func TestRelay_PublishFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"lat":14.87,"lng":121.0}`))
	}))
	defer srv.Close()

	r := newRelay(srv.Client(), func(string, natsadapter.FixMessage) error {
		return errors.New("nats down")
	}, discardLogger())

	err := r.poll(context.Background(), Device{ID: "x", URL: srv.URL})
	assert.ErrorContains(t, err, "nats down")
}
