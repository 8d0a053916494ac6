package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/barangaymap/internal/pkg/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	jurisdictionFile = ""
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_Default(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Pulong Buhangin")
	assert.Contains(t, out, "ok")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "14.87", "121.0")
	require.NoError(t, err)
	assert.Contains(t, out, "inside")

	out, err = run(t, "check", "14.80", "120.90")
	require.NoError(t, err)
	assert.Contains(t, out, "outside")

	_, err = run(t, "check", "north", "121.0")
	assert.Error(t, err)
}

func TestMask_IsFeatureCollection(t *testing.T) {
	out, err := run(t, "mask")
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "mask", fc.Features[0].Properties["role"])
	assert.Equal(t, "boundary", fc.Features[1].Properties["role"])
}

func TestBounds_AppliesBuffer(t *testing.T) {
	out, err := run(t, "bounds", "--buffer", "0.05")
	require.NoError(t, err)

	var got map[string]struct {
		North float64 `json:"north"`
		South float64 `json:"south"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 14.95, got["max_bounds"].North, 1e-9)
	assert.InDelta(t, 14.79, got["max_bounds"].South, 1e-9)
}

func TestExport_RoundTrips(t *testing.T) {
	out, err := run(t, "export")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	j, err := config.LoadJurisdiction(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultJurisdiction().Name, j.Name)
	assert.Len(t, j.Boundary, len(config.DefaultJurisdiction().Boundary))

	out, err = run(t, "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}
