// Package translate turns client BookSettings into the Parameters consumed
// by the segmentation engine. With ForPage it also restates the page's
// accepted geometry in pixels so a re-run preserves user corrections.
//
// Translation is pure: it performs no I/O and never mutates its input, so
// it is safe to call concurrently for different books and pages.
package translate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/regions"
	"github.com/jackzampolin/folio/internal/segmentation"
	"github.com/jackzampolin/folio/internal/settings"
)

// Sentinel errors.
var (
	// ErrCoordinateOutOfRange is returned when a normalized coordinate lies outside [0,1].
	ErrCoordinateOutOfRange = regions.ErrCoordinateOutOfRange

	// ErrMalformedPosition is returned in strict mode for a position outline
	// that is not a 4-point rectangle.
	ErrMalformedPosition = errors.New("malformed position polygon")

	// ErrInvalidPageSize is returned for a non-positive or non-finite page size.
	ErrInvalidPageSize = errors.New("invalid page size")
)

// Result is the translated parameters plus everything the translator had
// to adjust or drop along the way.
type Result struct {
	Parameters  *segmentation.Parameters `json:"parameters"`
	Diagnostics []Diagnostic             `json:"diagnostics"`
}

// Warnings returns the warn-level diagnostics.
func (r *Result) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityWarn {
			out = append(out, d)
		}
	}
	return out
}

type options struct {
	page   int
	ofPage bool
	strict bool
	logger *slog.Logger
}

// Option configures a single Translate call.
type Option func(*options)

// ForPage reconstructs ExistingGeometry for the page at index.
func ForPage(index int) Option {
	return func(o *options) {
		o.page = index
		o.ofPage = true
	}
}

// Strict rejects malformed position outlines instead of dropping them.
func Strict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger sets the logger dropped positions are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Translate builds engine parameters from s for a page of the given pixel
// size. Without ForPage the result carries no ExistingGeometry.
func Translate(s *settings.BookSettings, size geometry.PageSize, opts ...Option) (*Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil settings", settings.ErrInvalidSettings)
	}
	if err := size.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPageSize, err)
	}

	t := &translation{opts: o, settings: s, size: size}
	params, err := t.parameters()
	if err != nil {
		return nil, err
	}
	if o.ofPage {
		geom, err := t.existingGeometry()
		if err != nil {
			return nil, err
		}
		params.ExistingGeometry = geom
	}

	if t.diagnostics == nil {
		t.diagnostics = []Diagnostic{}
	}
	return &Result{Parameters: params, Diagnostics: t.diagnostics}, nil
}

// translation carries the state of one Translate call.
type translation struct {
	opts        options
	settings    *settings.BookSettings
	size        geometry.PageSize
	diagnostics []Diagnostic
}

func (t *translation) note(d Diagnostic) {
	t.diagnostics = append(t.diagnostics, d)
	if d.Severity == SeverityWarn {
		t.opts.logger.Warn("settings adjusted during translation",
			"book", t.settings.BookID,
			"code", d.Code,
			"region", d.Region,
			"id", d.ID,
			"detail", d.Message)
	}
}

func (t *translation) parameters() (*segmentation.Parameters, error) {
	s := t.settings

	segType := segmentation.ImageSegStraightRect
	if s.ImageSegType != "" {
		parsed, err := segmentation.ParseImageSegType(string(s.ImageSegType))
		if err != nil {
			return nil, err
		}
		segType = parsed
	}

	catalog, err := t.catalog()
	if err != nil {
		return nil, err
	}

	params := &segmentation.Parameters{
		Regions:       catalog,
		PageHeight:    int(t.size.Height),
		CombineImages: s.Combine,
		ImageSegType:  segType,
	}
	params.SetKnobs(s.Parameters)
	return params, nil
}

// catalog rebuilds the region catalog. Types and outlines are visited in
// sorted order so the result does not depend on map iteration.
func (t *translation) catalog() (*regions.Catalog, error) {
	builder := regions.NewBuilder()
	seen := make(map[regions.Type]string)

	for _, key := range t.settings.SortedRegionKeys() {
		rs := t.settings.Regions[key]
		name := rs.Type
		if name == "" {
			name = key
		}
		regionType, err := regions.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", key, err)
		}
		priority, err := regions.ParsePriority(string(rs.Priority))
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", key, err)
		}
		if prev, ok := seen[regionType]; ok {
			t.note(Diagnostic{
				Severity: SeverityWarn,
				Code:     CodeDuplicateType,
				Region:   string(regionType),
				Message:  fmt.Sprintf("entry %q replaces entry %q for the same type", key, prev),
			})
		}
		seen[regionType] = key

		def := regions.NewDefinition(regionType, rs.MinSize, rs.MaxOccurrences, priority)
		for _, id := range geometry.SortedKeys(rs.Polygons) {
			pos, ok, err := t.position(regionType, rs, id)
			if err != nil {
				return nil, err
			}
			if ok {
				def.AddPosition(pos)
			}
		}
		builder.Add(def)
	}
	return builder.Build(), nil
}

// position converts one 4-point outline into a RelativePosition, taking
// point 0 as the top-left and point 2 as the bottom-right corner.
func (t *translation) position(regionType regions.Type, rs settings.RegionSettings, id string) (regions.RelativePosition, bool, error) {
	outline := rs.Polygons[id]
	if len(outline.Points) != 4 {
		if t.opts.strict {
			return regions.RelativePosition{}, false, fmt.Errorf("region %q polygon %q has %d points: %w",
				regionType, id, len(outline.Points), ErrMalformedPosition)
		}
		t.note(Diagnostic{
			Severity: SeverityWarn,
			Code:     CodeMalformedPosition,
			Region:   string(regionType),
			ID:       id,
			Message:  fmt.Sprintf("dropped polygon with %d points, expected a 4-point rectangle", len(outline.Points)),
		})
		return regions.RelativePosition{}, false, nil
	}

	pos, swapped := regions.PositionFromCorners(outline.Points[0], outline.Points[2])
	if err := pos.Validate(); err != nil {
		return regions.RelativePosition{}, false, fmt.Errorf("region %q polygon %q: %w", regionType, id, err)
	}
	if swapped {
		t.note(Diagnostic{
			Severity: SeverityInfo,
			Code:     CodeInvertedPosition,
			Region:   string(regionType),
			ID:       id,
			Message:  "corners were given in reverse order and have been normalized",
		})
	}
	if regionType.IsIgnore() {
		pos.SetFixed(true)
	}
	if rs.MinSize > 0 && pos.PixelArea(t.size) < float64(rs.MinSize) {
		t.note(Diagnostic{
			Severity: SeverityWarn,
			Code:     CodeBelowMinSize,
			Region:   string(regionType),
			ID:       id,
			Message:  fmt.Sprintf("position covers %.0f px, below minSize %d", pos.PixelArea(t.size), rs.MinSize),
		})
	}
	return pos, true, nil
}
