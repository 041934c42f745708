package regions

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"

	"github.com/jackzampolin/folio/internal/geometry"
)

// Sentinel errors for position validation.
var (
	// ErrCoordinateOutOfRange is returned when a normalized coordinate lies outside [0,1].
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")

	// ErrInvertedPosition is returned when a top-left corner lies past its bottom-right corner.
	ErrInvertedPosition = errors.New("inverted position")
)

var unit = r1.Interval{Lo: 0, Hi: 1}

// RelativePosition is a normalized box (fraction of page width/height)
// where a region type is permitted to be found.
//
// The constructor stores the four bounds exactly as given and does not
// validate them; callers at the translation boundary call Validate. The only
// mutable part is the fixed flag, set by the translator for ignore regions.
type RelativePosition struct {
	rect  r2.Rect
	fixed bool
}

// NewRelativePosition stores the four bounds without reordering or clamping.
func NewRelativePosition(topLeftX, topLeftY, bottomRightX, bottomRightY float64) RelativePosition {
	return RelativePosition{rect: r2.Rect{
		X: r1.Interval{Lo: topLeftX, Hi: bottomRightX},
		Y: r1.Interval{Lo: topLeftY, Hi: bottomRightY},
	}}
}

// PositionFromCorners builds a position from two opposite corners in any
// order. The returned flag reports whether the corners had to be swapped.
func PositionFromCorners(a, b geometry.Point) (RelativePosition, bool) {
	rect := r2.RectFromPoints(r2.Point{X: a.X, Y: a.Y}, r2.Point{X: b.X, Y: b.Y})
	swapped := rect.X.Lo != a.X || rect.Y.Lo != a.Y
	return RelativePosition{rect: rect}, swapped
}

func (p RelativePosition) TopLeftX() float64     { return p.rect.X.Lo }
func (p RelativePosition) TopLeftY() float64     { return p.rect.Y.Lo }
func (p RelativePosition) BottomRightX() float64 { return p.rect.X.Hi }
func (p RelativePosition) BottomRightY() float64 { return p.rect.Y.Hi }

// Fixed reports whether the position is mandatory geometry rather than a search hint.
func (p RelativePosition) Fixed() bool { return p.fixed }

// SetFixed marks the position as mandatory geometry.
func (p *RelativePosition) SetFixed(fixed bool) { p.fixed = fixed }

// TopLeft returns the top-left corner.
func (p RelativePosition) TopLeft() geometry.Point {
	return geometry.Point{X: p.rect.X.Lo, Y: p.rect.Y.Lo}
}

// BottomRight returns the bottom-right corner.
func (p RelativePosition) BottomRight() geometry.Point {
	return geometry.Point{X: p.rect.X.Hi, Y: p.rect.Y.Hi}
}

// Outline returns the 4-point clockwise outline used by the client.
func (p RelativePosition) Outline() []geometry.Point {
	return geometry.Rectangle(p.TopLeft(), p.BottomRight())
}

// Validate checks 0 <= topLeft <= bottomRight <= 1 on both axes.
func (p RelativePosition) Validate() error {
	for _, v := range []float64{p.rect.X.Lo, p.rect.Y.Lo, p.rect.X.Hi, p.rect.Y.Hi} {
		if !unit.Contains(v) {
			return fmt.Errorf("%w: %g not in [0,1]", ErrCoordinateOutOfRange, v)
		}
	}
	if p.rect.X.IsEmpty() || p.rect.Y.IsEmpty() {
		return fmt.Errorf("%w: (%g,%g) past (%g,%g)", ErrInvertedPosition,
			p.rect.X.Lo, p.rect.Y.Lo, p.rect.X.Hi, p.rect.Y.Hi)
	}
	return nil
}

// PixelArea returns the area the position covers on a page of the given size.
func (p RelativePosition) PixelArea(size geometry.PageSize) float64 {
	s := p.rect.Size()
	return s.X * size.Width * s.Y * size.Height
}

// ToPixels converts both corners to absolute pixels (truncating).
func (p RelativePosition) ToPixels(size geometry.PageSize) (topLeft, bottomRight geometry.PixelPoint) {
	return size.ToPixel(p.TopLeft()), size.ToPixel(p.BottomRight())
}

type positionJSON struct {
	TopLeftX     float64 `json:"topLeftX"`
	TopLeftY     float64 `json:"topLeftY"`
	BottomRightX float64 `json:"bottomRightX"`
	BottomRightY float64 `json:"bottomRightY"`
	Fixed        bool    `json:"fixed"`
}

// MarshalJSON encodes the position for the engine.
func (p RelativePosition) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{
		TopLeftX:     p.TopLeftX(),
		TopLeftY:     p.TopLeftY(),
		BottomRightX: p.BottomRightX(),
		BottomRightY: p.BottomRightY(),
		Fixed:        p.fixed,
	})
}

// UnmarshalJSON decodes a position encoded by MarshalJSON.
func (p *RelativePosition) UnmarshalJSON(data []byte) error {
	var v positionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = NewRelativePosition(v.TopLeftX, v.TopLeftY, v.BottomRightX, v.BottomRightY)
	p.fixed = v.Fixed
	return nil
}
