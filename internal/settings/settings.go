// Package settings is the client-facing, editable configuration of a book's
// segmentation: global knobs, the region catalog as outlines, and per-page
// fixed geometry and cuts. It round-trips through the client unchanged.
package settings

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/regions"
	"github.com/jackzampolin/folio/internal/segmentation"
)

// Sentinel errors.
var (
	// ErrUnknownPage is returned for a page index outside the page list.
	ErrUnknownPage = errors.New("unknown page")

	// ErrInvalidSettings is returned when a payload does not match the settings schema.
	ErrInvalidSettings = errors.New("invalid settings")
)

// GlobalPage is the page number carried by the book-wide PageSettings.
const GlobalPage = -1

// BookSettings is the top-level aggregate exchanged with the client.
type BookSettings struct {
	BookID     int                       `json:"book" yaml:"book"`
	Pages      []PageSettings            `json:"pages" yaml:"pages"`
	Parameters segmentation.Knobs        `json:"parameters" yaml:"parameters"`
	Regions    map[string]RegionSettings `json:"regions" yaml:"regions"`
	// Global holds defaults for pages that carry no geometry of their own.
	Global       PageSettings              `json:"global" yaml:"global"`
	Combine      bool                      `json:"combine" yaml:"combine"`
	ImageSegType segmentation.ImageSegType `json:"imageSegType" yaml:"imageSegType"`
}

// PageSettings is the accepted geometry of one page.
type PageSettings struct {
	Page          int                         `json:"page" yaml:"page"`
	FixedSegments map[string]geometry.Region  `json:"fixedSegments" yaml:"fixedSegments"`
	Cuts          map[string]geometry.Polygon `json:"cuts" yaml:"cuts"`
}

// NewPageSettings returns settings for a page with no accepted geometry.
func NewPageSettings(page int) PageSettings {
	return PageSettings{
		Page:          page,
		FixedSegments: map[string]geometry.Region{},
		Cuts:          map[string]geometry.Polygon{},
	}
}

// RegionSettings is a region definition in client form: each position is a
// 4-point rectangle outline keyed by id.
type RegionSettings struct {
	Type           string                     `json:"type" yaml:"type"`
	MinSize        int                        `json:"minSize" yaml:"minSize"`
	MaxOccurrences int                        `json:"maxOccurrences" yaml:"maxOccurrences"`
	Priority       regions.PriorityPosition   `json:"priorityPosition" yaml:"priorityPosition"`
	Polygons       map[string]geometry.Region `json:"polygons" yaml:"polygons"`
}

// NewRegionSettings returns region settings with no position outlines.
func NewRegionSettings(t string, minSize, maxOccurrences int, priority regions.PriorityPosition) RegionSettings {
	return RegionSettings{
		Type:           t,
		MinSize:        minSize,
		MaxOccurrences: maxOccurrences,
		Priority:       priority,
		Polygons:       map[string]geometry.Region{},
	}
}

// AddPolygon stores an outline under its id.
func (r *RegionSettings) AddPolygon(outline geometry.Region) {
	if r.Polygons == nil {
		r.Polygons = map[string]geometry.Region{}
	}
	r.Polygons[outline.ID] = outline
}

// PositionID names the ordinal-th position outline of a region type.
// Ordinals start at zero.
func PositionID(t regions.Type, ordinal int) string {
	return string(t) + strconv.Itoa(ordinal)
}

// Page returns the settings for the page at index.
func (b *BookSettings) Page(index int) (PageSettings, error) {
	if index < 0 || index >= len(b.Pages) {
		return PageSettings{}, fmt.Errorf("%w: index %d of %d pages in book %d", ErrUnknownPage, index, len(b.Pages), b.BookID)
	}
	return b.Pages[index], nil
}

// AddPage appends page settings in page order.
func (b *BookSettings) AddPage(p PageSettings) {
	b.Pages = append(b.Pages, p)
}

// SortedRegionKeys returns the region map keys in a stable order.
func (b *BookSettings) SortedRegionKeys() []string {
	return geometry.SortedKeys(b.Regions)
}
