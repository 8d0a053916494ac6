package domain

import "fmt"

// Location is a geographic coordinate in decimal degrees (WGS 84).
type Location struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// String formats the location to six decimal places, "lat, lng".
func (l Location) String() string {
	return fmt.Sprintf("%.6f, %.6f", l.Lat, l.Lng)
}

// Boundary is an ordered ring of vertices delimiting a serviceable area.
// The ring may be left open (first != last).
type Boundary []Location

// IsClosed reports whether the last vertex repeats the first one.
func (b Boundary) IsClosed() bool {
	if len(b) == 0 {
		return false
	}
	return b[0] == b[len(b)-1]
}

// Closed returns a copy of the ring with the first vertex appended when
// the ring is open.
func (b Boundary) Closed() Boundary {
	out := make(Boundary, len(b), len(b)+1)
	copy(out, b)
	if len(b) > 0 && !b.IsClosed() {
		out = append(out, b[0])
	}
	return out
}

// Pairs returns the vertices as [lat, lng] pairs.
func (b Boundary) Pairs() [][2]float64 {
	pairs := make([][2]float64, len(b))
	for i, v := range b {
		pairs[i] = [2]float64{v.Lat, v.Lng}
	}
	return pairs
}

// Envelope returns the tightest bounding box around the vertices.
func (b Boundary) Envelope() BoundingBox {
	if len(b) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{North: b[0].Lat, South: b[0].Lat, East: b[0].Lng, West: b[0].Lng}
	for _, v := range b[1:] {
		box.North = max(box.North, v.Lat)
		box.South = min(box.South, v.Lat)
		box.East = max(box.East, v.Lng)
		box.West = min(box.West, v.Lng)
	}
	return box
}

// BoundingBox is an axis-aligned geographic box.
type BoundingBox struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Valid reports whether north > south and east > west.
func (b BoundingBox) Valid() bool {
	return b.North > b.South && b.East > b.West
}

// Expand grows the box by buffer degrees on every side. Negative buffers
// are treated as zero so the result always contains b.
func (b BoundingBox) Expand(buffer float64) BoundingBox {
	if buffer < 0 {
		buffer = 0
	}
	return BoundingBox{
		North: b.North + buffer,
		South: b.South - buffer,
		East:  b.East + buffer,
		West:  b.West - buffer,
	}
}

// Contains reports whether l lies inside the box, edges included.
func (b BoundingBox) Contains(l Location) bool {
	return l.Lat >= b.South && l.Lat <= b.North && l.Lng >= b.West && l.Lng <= b.East
}

// ContainsBox reports whether other lies entirely inside b.
func (b BoundingBox) ContainsBox(other BoundingBox) bool {
	return other.North <= b.North && other.South >= b.South &&
		other.East <= b.East && other.West >= b.West
}

// Fix is a single device-reported position sample.
type Fix struct {
	Location
	AccuracyMeters float64 `json:"accuracy"`
}
