package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/barangaymap/internal/core/domain"
	"github.com/samirrijal/barangaymap/internal/pkg/geospatial"
)

// DefaultJurisdiction is Brgy. Pulong Buhangin, Santa Maria, Bulacan.
func DefaultJurisdiction() domain.Jurisdiction {
	return domain.Jurisdiction{
		Name:          "Pulong Buhangin",
		Municipality:  "Santa Maria",
		Province:      "Bulacan",
		Country:       "Philippines",
		OSMRelationID: 19556052,
		Center:        domain.Location{Lat: 14.87, Lng: 121.00},
		Bounds:        domain.BoundingBox{North: 14.90, South: 14.84, East: 121.025, West: 120.975},
		Boundary: domain.Boundary{
			{Lat: 14.8460, Lng: 120.9850}, {Lat: 14.8500, Lng: 120.9820}, {Lat: 14.8530, Lng: 120.9800},
			{Lat: 14.8560, Lng: 120.9810}, {Lat: 14.8580, Lng: 120.9790}, {Lat: 14.8620, Lng: 120.9800},
			{Lat: 14.8650, Lng: 120.9830}, {Lat: 14.8680, Lng: 120.9840}, {Lat: 14.8720, Lng: 120.9845},
			{Lat: 14.8750, Lng: 120.9820}, {Lat: 14.8780, Lng: 120.9830}, {Lat: 14.8810, Lng: 120.9860},
			{Lat: 14.8850, Lng: 120.9850}, {Lat: 14.8900, Lng: 120.9950}, {Lat: 14.8930, Lng: 121.0050},
			{Lat: 14.8980, Lng: 121.0180}, {Lat: 14.8900, Lng: 121.0200}, {Lat: 14.8800, Lng: 121.0205},
			{Lat: 14.8700, Lng: 121.0190}, {Lat: 14.8650, Lng: 121.0180}, {Lat: 14.8620, Lng: 121.0150},
			{Lat: 14.8600, Lng: 121.0160}, {Lat: 14.8580, Lng: 121.0140}, {Lat: 14.8550, Lng: 121.0100},
			{Lat: 14.8520, Lng: 121.0050}, {Lat: 14.8500, Lng: 121.0000}, {Lat: 14.8480, Lng: 120.9950},
			{Lat: 14.8470, Lng: 120.9900}, {Lat: 14.8460, Lng: 120.9850},
		},
	}
}

// jurisdictionFile is the on-disk form. Boundary vertices are [lat, lng]
// pairs, matching how boundaries are usually copied out of OSM tools.
type jurisdictionFile struct {
	Name          string             `yaml:"name"`
	Municipality  string             `yaml:"municipality"`
	Province      string             `yaml:"province"`
	Country       string             `yaml:"country"`
	OSMRelationID int64              `yaml:"osm_relation_id"`
	Center        domain.Location    `yaml:"center"`
	Bounds        domain.BoundingBox `yaml:"bounds"`
	Boundary      [][2]float64       `yaml:"boundary"`
}

// LoadJurisdiction reads a jurisdiction from a YAML file. An empty path
// returns DefaultJurisdiction. A missing bounds block is derived from the
// boundary envelope.
func LoadJurisdiction(path string) (domain.Jurisdiction, error) {
	if path == "" {
		return DefaultJurisdiction(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Jurisdiction{}, fmt.Errorf("read jurisdiction: %w", err)
	}
	return ParseJurisdiction(raw)
}

// ParseJurisdiction decodes and validates a YAML jurisdiction document.
func ParseJurisdiction(raw []byte) (domain.Jurisdiction, error) {
	var f jurisdictionFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Jurisdiction{}, fmt.Errorf("decode jurisdiction: %w", err)
	}

	j := domain.Jurisdiction{
		Name:          f.Name,
		Municipality:  f.Municipality,
		Province:      f.Province,
		Country:       f.Country,
		OSMRelationID: f.OSMRelationID,
		Center:        f.Center,
		Bounds:        f.Bounds,
		Boundary:      make(domain.Boundary, len(f.Boundary)),
	}
	for i, p := range f.Boundary {
		j.Boundary[i] = domain.Location{Lat: p[0], Lng: p[1]}
	}
	if j.Bounds == (domain.BoundingBox{}) {
		j.Bounds = j.Boundary.Envelope()
	}

	if err := ValidateJurisdiction(j); err != nil {
		return domain.Jurisdiction{}, err
	}
	return j, nil
}

// MarshalJurisdiction encodes j in the format ParseJurisdiction reads.
func MarshalJurisdiction(j domain.Jurisdiction) ([]byte, error) {
	f := jurisdictionFile{
		Name:          j.Name,
		Municipality:  j.Municipality,
		Province:      j.Province,
		Country:       j.Country,
		OSMRelationID: j.OSMRelationID,
		Center:        j.Center,
		Bounds:        j.Bounds,
		Boundary:      j.Boundary.Pairs(),
	}
	return yaml.Marshal(f)
}

// ValidateJurisdiction rejects boundaries the map cannot enforce.
func ValidateJurisdiction(j domain.Jurisdiction) error {
	var errs []string
	if strings.TrimSpace(j.Name) == "" {
		errs = append(errs, "name is required")
	}
	if len(j.Boundary) < 3 {
		errs = append(errs, fmt.Sprintf("boundary needs at least 3 vertices, got %d", len(j.Boundary)))
	}
	for i, v := range j.Boundary {
		if v.Lat < -90 || v.Lat > 90 || v.Lng < -180 || v.Lng > 180 {
			errs = append(errs, fmt.Sprintf("boundary vertex %d out of range: %s", i, v))
		}
	}
	if !j.Bounds.Valid() {
		errs = append(errs, "bounds must have north > south and east > west")
	} else {
		if !j.Bounds.Contains(j.Center) {
			errs = append(errs, fmt.Sprintf("center %s outside bounds", j.Center))
		}
		if len(j.Boundary) >= 3 && !j.Bounds.ContainsBox(j.Boundary.Envelope()) {
			errs = append(errs, "bounds do not cover the boundary")
		}
	}
	if len(j.Boundary) >= 3 && !geospatial.Contains(j.Boundary, j.Center) {
		errs = append(errs, fmt.Sprintf("center %s outside boundary", j.Center))
	}

	if len(errs) > 0 {
		return errors.New("invalid jurisdiction:\n  - " + strings.Join(errs, "\n  - "))
	}
	return nil
}
