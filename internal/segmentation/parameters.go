// Package segmentation holds the engine-facing side of a segmentation run:
// the Parameters the engine consumes, the ExistingGeometry that makes
// re-runs incremental, and the page annotations the engine produces.
package segmentation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackzampolin/folio/internal/regions"
)

// ErrUnknownImageSegType is returned for an image segmentation mode outside the enum.
var ErrUnknownImageSegType = errors.New("unrecognized image segmentation type")

// ImageSegType selects how the engine outlines image regions.
type ImageSegType string

const (
	ImageSegNone         ImageSegType = "NONE"
	ImageSegContourOnly  ImageSegType = "CONTOUR_ONLY"
	ImageSegStraightRect ImageSegType = "STRAIGHT_RECT"
	ImageSegRotatedRect  ImageSegType = "ROTATED_RECT"
)

// ParseImageSegType resolves a mode name, case-insensitively.
func ParseImageSegType(s string) (ImageSegType, error) {
	switch t := ImageSegType(strings.ToUpper(s)); t {
	case ImageSegNone, ImageSegContourOnly, ImageSegStraightRect, ImageSegRotatedRect:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownImageSegType, s)
	}
}

// Parameters is the complete input of one engine run.
type Parameters struct {
	Regions *regions.Catalog `json:"regions"`
	// PageHeight is the page's pixel height, used by the engine for its own
	// pixel/percentage conversions.
	PageHeight            int          `json:"pageHeight"`
	TextDilationX         int          `json:"textDilationX"`
	TextDilationY         int          `json:"textDilationY"`
	ImageRemovalDilationX int          `json:"imageRemovalDilationX"`
	ImageRemovalDilationY int          `json:"imageRemovalDilationY"`
	CombineImages         bool         `json:"combineImages"`
	ImageSegType          ImageSegType `json:"imageSegType"`
	// ExistingGeometry is nil for a fresh run with no prior edits to honor.
	ExistingGeometry *ExistingGeometry `json:"existingGeometry,omitempty"`
}

// IsCombineImages reports whether adjacent image regions are merged.
func (p *Parameters) IsCombineImages() bool { return p.CombineImages }

// Knobs are the integer parameters copied verbatim between settings and
// engine parameters.
type Knobs struct {
	TextDilationX  int `json:"textdilationX" yaml:"textdilationX"`
	TextDilationY  int `json:"textdilationY" yaml:"textdilationY"`
	ImageDilationX int `json:"imagedilationX" yaml:"imagedilationX"`
	ImageDilationY int `json:"imagedilationY" yaml:"imagedilationY"`
}

// Knobs returns the integer knobs of p.
func (p *Parameters) Knobs() Knobs {
	return Knobs{
		TextDilationX:  p.TextDilationX,
		TextDilationY:  p.TextDilationY,
		ImageDilationX: p.ImageRemovalDilationX,
		ImageDilationY: p.ImageRemovalDilationY,
	}
}

// SetKnobs copies k into p.
func (p *Parameters) SetKnobs(k Knobs) {
	p.TextDilationX = k.TextDilationX
	p.TextDilationY = k.TextDilationY
	p.ImageRemovalDilationX = k.ImageDilationX
	p.ImageRemovalDilationY = k.ImageDilationY
}

// Defaults are the engine parameters a new book starts with.
type Defaults struct {
	Knobs
	CombineImages bool
	ImageSegType  ImageSegType
}

// DefaultKnobs matches the engine's built-in dilation values.
func DefaultKnobs() Knobs {
	return Knobs{TextDilationX: 1, TextDilationY: 5, ImageDilationX: 3, ImageDilationY: 3}
}

// DefaultParameters returns parameters for a page of the given pixel
// height, with the default region catalog and no existing geometry.
func DefaultParameters(pageHeight int, d Defaults) *Parameters {
	p := &Parameters{
		Regions:       regions.DefaultCatalog(),
		PageHeight:    pageHeight,
		CombineImages: d.CombineImages,
		ImageSegType:  d.ImageSegType,
	}
	if p.ImageSegType == "" {
		p.ImageSegType = ImageSegStraightRect
	}
	p.SetKnobs(d.Knobs)
	return p
}
