package translate

import (
	"fmt"

	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/regions"
	"github.com/jackzampolin/folio/internal/segmentation"
)

// existingGeometry restates the page's fixed segments and cuts in pixels.
// Each collection falls back to the global settings independently when the
// page has none of its own.
func (t *translation) existingGeometry() (*segmentation.ExistingGeometry, error) {
	page, err := t.settings.Page(t.opts.page)
	if err != nil {
		return nil, err
	}

	fixed := page.FixedSegments
	if len(fixed) == 0 && len(t.settings.Global.FixedSegments) > 0 {
		fixed = t.settings.Global.FixedSegments
		t.fallback("fixed segments")
	}
	cuts := page.Cuts
	if len(cuts) == 0 && len(t.settings.Global.Cuts) > 0 {
		cuts = t.settings.Global.Cuts
		t.fallback("cuts")
	}

	geom := &segmentation.ExistingGeometry{
		FixedRegions: make([]segmentation.RegionSegment, 0, len(fixed)),
		Cuts:         make([]segmentation.PointList, 0, len(cuts)),
	}
	for _, id := range geometry.SortedKeys(fixed) {
		seg, err := t.fixedSegment(id, fixed[id])
		if err != nil {
			return nil, err
		}
		geom.FixedRegions = append(geom.FixedRegions, seg)
	}
	for _, id := range geometry.SortedKeys(cuts) {
		points, err := t.pixels(cuts[id].Points)
		if err != nil {
			return nil, fmt.Errorf("page %d cut %q: %w", page.Page, id, err)
		}
		geom.Cuts = append(geom.Cuts, segmentation.PointList{ID: id, Points: points})
	}
	return geom, nil
}

func (t *translation) fixedSegment(id string, r geometry.Region) (segmentation.RegionSegment, error) {
	regionType, err := regions.ParseType(r.Type)
	if err != nil {
		return segmentation.RegionSegment{}, fmt.Errorf("fixed segment %q: %w", id, err)
	}
	points, err := t.pixels(r.Points)
	if err != nil {
		return segmentation.RegionSegment{}, fmt.Errorf("fixed segment %q: %w", id, err)
	}
	return segmentation.RegionSegment{ID: id, Type: regionType, Points: points}, nil
}

// pixels converts normalized points, rejecting any outside the unit square.
func (t *translation) pixels(points []geometry.Point) ([]geometry.PixelPoint, error) {
	for i, p := range points {
		if !p.InUnitSquare() {
			return nil, fmt.Errorf("%w: point %d (%g, %g)", ErrCoordinateOutOfRange, i, p.X, p.Y)
		}
	}
	return t.size.ToPixels(points), nil
}

func (t *translation) fallback(what string) {
	t.note(Diagnostic{
		Severity: SeverityInfo,
		Code:     CodeGlobalFallback,
		Message:  fmt.Sprintf("page %d has no %s, using global settings", t.opts.page, what),
	})
}
