package settings

import (
	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/segmentation"
)

// Book is the minimal view of a stored book the construction path needs.
type Book interface {
	BookID() int
	PageIDs() []int
}

// FromParameters projects engine parameters into client form for a book:
// one empty PageSettings per page, the parameter knobs, and every catalog
// position as a fixed 4-point outline named by PositionID.
func FromParameters(p *segmentation.Parameters, book Book) *BookSettings {
	s := &BookSettings{
		BookID:       book.BookID(),
		Pages:        []PageSettings{},
		Parameters:   p.Knobs(),
		Regions:      map[string]RegionSettings{},
		Global:       NewPageSettings(GlobalPage),
		Combine:      p.CombineImages,
		ImageSegType: p.ImageSegType,
	}
	for _, id := range book.PageIDs() {
		s.AddPage(NewPageSettings(id))
	}
	if p.Regions == nil {
		return s
	}

	for _, def := range p.Regions.Definitions() {
		rs := NewRegionSettings(string(def.Type), def.MinSize, def.MaxOccurrences, def.Priority)
		for i, pos := range def.Positions {
			id := PositionID(def.Type, i)
			rs.AddPolygon(geometry.NewRegion(id, string(def.Type), pos.Outline(), true))
		}
		s.Regions[string(def.Type)] = rs
	}
	return s
}
