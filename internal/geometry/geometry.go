// Package geometry provides the point and outline value types shared by the
// settings model, the translator and the engine client.
//
// A Point carries no coordinate space of its own. Structures that hold points
// decide whether they are normalized (fraction of the page, 0..1) or absolute
// pixels, and never mix the two.
package geometry

import (
	"fmt"
	"math"
)

// Point is a coordinate pair in the space of its owning structure.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// InUnitSquare reports whether the point lies within [0,1] on both axes.
func (p Point) InUnitSquare() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// PixelPoint is an absolute pixel coordinate on a page image.
type PixelPoint struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// PageSize is the true pixel size of a page image.
type PageSize struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Validate returns an error unless both dimensions are finite and positive.
func (s PageSize) Validate() error {
	for _, v := range []float64{s.Width, s.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return fmt.Errorf("invalid page size %gx%g", s.Width, s.Height)
		}
	}
	return nil
}

// ToPixel converts a normalized point into absolute pixels.
// Coordinates are truncated toward zero, never rounded.
func (s PageSize) ToPixel(p Point) PixelPoint {
	return PixelPoint{X: int(p.X * s.Width), Y: int(p.Y * s.Height)}
}

// ToPixels converts every point, preserving order.
func (s PageSize) ToPixels(points []Point) []PixelPoint {
	out := make([]PixelPoint, len(points))
	for i, p := range points {
		out[i] = s.ToPixel(p)
	}
	return out
}

// ToNormalized converts an absolute pixel point back into page fractions.
// Interior pixels map to the centre of the pixel so that ToPixel truncates
// back to exactly p; the page edges map to 0 and 1.
func (s PageSize) ToNormalized(p PixelPoint) Point {
	return Point{X: toFraction(p.X, s.Width), Y: toFraction(p.Y, s.Height)}
}

func toFraction(v int, extent float64) float64 {
	if v <= 0 || float64(v) >= extent {
		return float64(v) / extent
	}
	return (float64(v) + 0.5) / extent
}

// Polygon is an ordered outline with a stable identity. The identity
// correlates edits across client/server round-trips.
type Polygon struct {
	ID     string  `json:"id" yaml:"id"`
	Points []Point `json:"points" yaml:"points"`
}

// Clone returns a deep copy.
func (p Polygon) Clone() Polygon {
	return Polygon{ID: p.ID, Points: clonePoints(p.Points)}
}

// Region is a client-facing outline: a polygon tagged with a region type,
// a fixed flag, free-form attributes and nested child outlines.
type Region struct {
	ID         string            `json:"id,omitempty" yaml:"id,omitempty"`
	Type       string            `json:"type" yaml:"type"`
	Points     []Point           `json:"points" yaml:"points"`
	Fixed      bool              `json:"fixed" yaml:"fixed"`
	Attributes map[string]string `json:"attributes" yaml:"attributes"`
	Children   []Region          `json:"children" yaml:"children"`
}

// NewRegion builds a region with empty (non-nil) attributes and children so
// it serializes the same way the client sends it.
func NewRegion(id, regionType string, points []Point, fixed bool) Region {
	return Region{
		ID:         id,
		Type:       regionType,
		Points:     points,
		Fixed:      fixed,
		Attributes: map[string]string{},
		Children:   []Region{},
	}
}

// Clone returns a deep copy, including children.
func (r Region) Clone() Region {
	out := Region{
		ID:     r.ID,
		Type:   r.Type,
		Points: clonePoints(r.Points),
		Fixed:  r.Fixed,
	}
	if r.Attributes != nil {
		out.Attributes = make(map[string]string, len(r.Attributes))
		for k, v := range r.Attributes {
			out.Attributes[k] = v
		}
	}
	if r.Children != nil {
		out.Children = make([]Region, len(r.Children))
		for i, c := range r.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Rectangle returns the 4-point outline of the axis-aligned box spanned by
// two corners, clockwise from top-left.
func Rectangle(topLeft, bottomRight Point) []Point {
	return []Point{
		{X: topLeft.X, Y: topLeft.Y},
		{X: bottomRight.X, Y: topLeft.Y},
		{X: bottomRight.X, Y: bottomRight.Y},
		{X: topLeft.X, Y: bottomRight.Y},
	}
}

func clonePoints(points []Point) []Point {
	if points == nil {
		return nil
	}
	out := make([]Point, len(points))
	copy(out, points)
	return out
}
