package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	natsadapter "github.com/samirrijal/barangaymap/internal/adapters/nats"
	"github.com/samirrijal/barangaymap/internal/pkg/metrics"
)

// Manifest lists the trackers the relay polls.
type Manifest struct {
	Prefix   string        `yaml:"prefix"`
	Interval time.Duration `yaml:"interval"`
	Devices  []Device      `yaml:"devices"`
}

// Device is one responder tracker exposing its last fix as JSON.
type Device struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

// trackerFix is what a tracker endpoint returns.
type trackerFix struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return parseManifest(data)
}

func parseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Interval <= 0 {
		m.Interval = 5 * time.Second
	}
	seen := make(map[string]bool, len(m.Devices))
	for i, d := range m.Devices {
		if d.ID == "" || d.URL == "" {
			return nil, fmt.Errorf("device %d: id and url are required", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("device %q listed twice", d.ID)
		}
		seen[d.ID] = true
	}
	return &m, nil
}

// publishFunc sends one fix for a device.
type publishFunc func(device string, m natsadapter.FixMessage) error

type relay struct {
	client  *http.Client
	publish publishFunc
	logger  *slog.Logger

	mu   sync.Mutex
	last map[string]time.Time // device -> timestamp of the last relayed fix
}

func newRelay(client *http.Client, publish publishFunc, logger *slog.Logger) *relay {
	return &relay{client: client, publish: publish, logger: logger, last: make(map[string]time.Time)}
}

// pollAll fetches every device with at most 8 requests in flight.
func (r *relay) pollAll(ctx context.Context, devices []Device) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)

	for _, d := range devices {
		wg.Add(1)
		go func(d Device) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := r.poll(ctx, d); err != nil {
				metrics.FixErrors.WithLabelValues("relay").Inc()
				r.logger.Warn("poll tracker", "device", d.ID, "error", err)
			}
		}(d)
	}

	wg.Wait()
}

func (r *relay) poll(ctx context.Context, d Device) error {
	fix, err := r.fetch(ctx, d.URL)
	if err != nil {
		return err
	}
	if fix.Lat < -90 || fix.Lat > 90 || fix.Lng < -180 || fix.Lng > 180 {
		return fmt.Errorf("coordinates out of range: %v,%v", fix.Lat, fix.Lng)
	}

	if !fix.Timestamp.IsZero() {
		r.mu.Lock()
		prev, ok := r.last[d.ID]
		if ok && !fix.Timestamp.After(prev) {
			r.mu.Unlock()
			r.logger.Debug("fix unchanged", "device", d.ID)
			return nil
		}
		r.last[d.ID] = fix.Timestamp
		r.mu.Unlock()
	}

	if err := r.publish(d.ID, natsadapter.FixMessage{
		Lat:       fix.Lat,
		Lng:       fix.Lng,
		Accuracy:  fix.Accuracy,
		Timestamp: fix.Timestamp,
	}); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	metrics.FixesReceived.WithLabelValues("relay").Inc()
	return nil
}

func (r *relay) fetch(ctx context.Context, url string) (*trackerFix, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var fix trackerFix
	if err := json.Unmarshal(body, &fix); err != nil {
		return nil, fmt.Errorf("decode fix: %w", err)
	}
	return &fix, nil
}
