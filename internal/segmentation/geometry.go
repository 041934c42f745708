package segmentation

import (
	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/regions"
)

// RegionSegment is an absolute-pixel outline carrying its resolved region type.
type RegionSegment struct {
	ID     string                `json:"id"`
	Type   regions.Type          `json:"type"`
	Points []geometry.PixelPoint `json:"points"`
}

// PointList is an absolute-pixel polyline, used for page cuts.
type PointList struct {
	ID     string                `json:"id"`
	Points []geometry.PixelPoint `json:"points"`
}

// ExistingGeometry is the accepted state of one page restated in pixels.
// The engine treats it as authoritative and does not re-derive it.
type ExistingGeometry struct {
	FixedRegions []RegionSegment `json:"fixedRegions"`
	Cuts         []PointList     `json:"cuts"`
}

// Empty reports whether there is nothing to preserve.
func (g *ExistingGeometry) Empty() bool {
	return g == nil || (len(g.FixedRegions) == 0 && len(g.Cuts) == 0)
}

// Result is what the engine returns for one page, in pixel space.
type Result struct {
	Regions      []RegionSegment `json:"regions"`
	ReadingOrder []string        `json:"readingOrder"`
}

// PageAnnotations is the client-facing segmentation of one page. Segment
// outlines are normalized to the page size.
type PageAnnotations struct {
	Name         string                     `json:"name"`
	Width        int                        `json:"width"`
	Height       int                        `json:"height"`
	PageID       int                        `json:"id"`
	Segments     map[string]geometry.Region `json:"segments"`
	ReadingOrder []string                   `json:"readingOrder"`
}

// NewPageAnnotations returns annotations with no segments.
func NewPageAnnotations(name string, pageID, width, height int) *PageAnnotations {
	return &PageAnnotations{
		Name:         name,
		Width:        width,
		Height:       height,
		PageID:       pageID,
		Segments:     map[string]geometry.Region{},
		ReadingOrder: []string{},
	}
}

// FromResult maps an engine result back into client space. Fixed regions
// the client sent are carried through unchanged and win over any engine
// region with the same id.
func FromResult(name string, pageID int, size geometry.PageSize, res *Result, fixed map[string]geometry.Region) *PageAnnotations {
	out := NewPageAnnotations(name, pageID, int(size.Width), int(size.Height))
	if res != nil {
		for _, seg := range res.Regions {
			points := make([]geometry.Point, len(seg.Points))
			for i, p := range seg.Points {
				points[i] = size.ToNormalized(p)
			}
			out.Segments[seg.ID] = geometry.NewRegion(seg.ID, string(seg.Type), points, false)
		}
		out.ReadingOrder = append(out.ReadingOrder, res.ReadingOrder...)
	}
	for _, id := range geometry.SortedKeys(fixed) {
		r := fixed[id].Clone()
		r.ID = id
		r.Fixed = true
		out.Segments[id] = r
	}
	return out
}
