package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samirrijal/barangaymap/internal/core/domain"
)

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "barangay", DBName: "barangaymap"},
		NATS:     NATSConfig{URL: "nats://localhost:4222"},
		Valkey:   ValkeyConfig{Addr: "localhost:6379"},
		Map: MapConfig{
			BoundsBuffer:        0.01,
			MinZoom:             14,
			MaxZoom:             18,
			DefaultZoom:         16,
			TrackZoom:           17,
			OutOfBoundsDuration: 3 * time.Second,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"valkey", func(c *Config) { c.Valkey.Addr = "" }, "valkey.addr"},
		{"temporal queue", func(c *Config) { c.Temporal.Enabled = true }, "temporal.task_queue"},
		{"negative buffer", func(c *Config) { c.Map.BoundsBuffer = -1 }, "map.bounds_buffer"},
		{"zoom range", func(c *Config) { c.Map.MinZoom = 19 }, "map.min_zoom"},
		{"default zoom", func(c *Config) { c.Map.DefaultZoom = 12 }, "map.default_zoom"},
		{"flag duration", func(c *Config) { c.Map.OutOfBoundsDuration = 0 }, "map.out_of_bounds_duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_DevSkipsBackends(t *testing.T) {
	c := validConfig()
	c.Dev = true
	c.Database = DatabaseConfig{}
	c.NATS.URL = ""
	c.Valkey.Addr = ""
	if err := c.Validate(); err != nil {
		t.Errorf("dev mode should not require backends, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("BARANGAYMAP_SERVER_PORT", "9090")
	t.Setenv("BARANGAYMAP_MAP_DEFAULT_ZOOM", "15")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Map.DefaultZoom != 15 {
		t.Errorf("expected default zoom 15, got %d", cfg.Map.DefaultZoom)
	}
	if cfg.Map.OutOfBoundsDuration != 3*time.Second {
		t.Errorf("expected 3s flag duration, got %s", cfg.Map.OutOfBoundsDuration)
	}
	if cfg.Temporal.EscalateAfter != 24*time.Hour {
		t.Errorf("expected 24h escalation, got %s", cfg.Temporal.EscalateAfter)
	}
}

func TestDefaultJurisdiction_Valid(t *testing.T) {
	j := DefaultJurisdiction()
	if err := ValidateJurisdiction(j); err != nil {
		t.Fatalf("default jurisdiction invalid: %v", err)
	}
	if !j.Boundary.IsClosed() {
		t.Error("default boundary should be closed")
	}
	if got := j.Label(); !strings.Contains(got, "Pulong Buhangin") {
		t.Errorf("unexpected label %q", got)
	}
}

func TestLoadJurisdiction_EmptyPathIsDefault(t *testing.T) {
	j, err := LoadJurisdiction("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if j.Name != DefaultJurisdiction().Name {
		t.Errorf("expected default jurisdiction, got %q", j.Name)
	}
}

func TestLoadJurisdiction_MissingFile(t *testing.T) {
	if _, err := LoadJurisdiction(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseJurisdiction_DerivesBounds(t *testing.T) {
	raw := []byte(`
name: Square
center: {lat: 0.5, lng: 0.5}
boundary:
  - [0, 0]
  - [0, 1]
  - [1, 1]
  - [1, 0]
`)
	j, err := ParseJurisdiction(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := domain.BoundingBox{North: 1, South: 0, East: 1, West: 0}
	if j.Bounds != want {
		t.Errorf("expected bounds %+v, got %+v", want, j.Bounds)
	}
	if j.Boundary[1] != (domain.Location{Lat: 0, Lng: 1}) {
		t.Errorf("vertices should be [lat, lng], got %+v", j.Boundary[1])
	}
}

func TestParseJurisdiction_Invalid(t *testing.T) {
	tests := map[string]string{
		"no name":        "center: {lat: 0.5, lng: 0.5}\nboundary: [[0,0],[0,1],[1,1]]\n",
		"two vertices":   "name: x\ncenter: {lat: 0, lng: 0}\nboundary: [[0,0],[0,1]]\n",
		"center outside": "name: x\ncenter: {lat: 5, lng: 5}\nboundary: [[0,0],[0,1],[1,1],[1,0]]\n",
		"bad yaml":       "name: [",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseJurisdiction([]byte(raw)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMarshalJurisdiction_RoundTrip(t *testing.T) {
	raw, err := MarshalJurisdiction(DefaultJurisdiction())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "j.yaml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	j, err := LoadJurisdiction(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(j.Boundary) != len(DefaultJurisdiction().Boundary) || j.Bounds != DefaultJurisdiction().Bounds {
		t.Errorf("round trip changed jurisdiction: %+v", j)
	}
}
