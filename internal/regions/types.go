// Package regions defines the closed catalog of layout region types, the
// relative positions where a type may be found, and the immutable Catalog of
// region definitions handed to the segmentation engine.
package regions

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownRegionType is returned when a type string is not in the catalog.
var ErrUnknownRegionType = errors.New("unrecognized region type")

// SubType classifies the structural role of a region type.
type SubType string

const (
	SubTypeText      SubType = "text"
	SubTypeImage     SubType = "image"
	SubTypeGraphic   SubType = "graphic"
	SubTypeTable     SubType = "table"
	SubTypeSeparator SubType = "separator"
	SubTypeMaths     SubType = "maths"
	SubTypeOther     SubType = "other"
	// SubTypeIgnore marks areas the engine must leave out of detection.
	// Positions of ignore regions are always fixed.
	SubTypeIgnore SubType = "ignore"
)

// Type is a layout region type as the client names it ("paragraph", "image", ...).
type Type string

// typeInfo maps a client type onto its PAGE XML element and sub-type.
type typeInfo struct {
	element string
	subType SubType
}

var known = map[Type]typeInfo{
	"paragraph":          {"TextRegion", SubTypeText},
	"heading":            {"TextRegion", SubTypeText},
	"caption":            {"TextRegion", SubTypeText},
	"header":             {"TextRegion", SubTypeText},
	"footer":             {"TextRegion", SubTypeText},
	"page-number":        {"TextRegion", SubTypeText},
	"drop-capital":       {"TextRegion", SubTypeText},
	"credit":             {"TextRegion", SubTypeText},
	"floating":           {"TextRegion", SubTypeText},
	"signature-mark":     {"TextRegion", SubTypeText},
	"catch-word":         {"TextRegion", SubTypeText},
	"marginalia":         {"TextRegion", SubTypeText},
	"footnote":           {"TextRegion", SubTypeText},
	"footnote-continued": {"TextRegion", SubTypeText},
	"endnote":            {"TextRegion", SubTypeText},
	"TOC-entry":          {"TextRegion", SubTypeText},
	"list-label":         {"TextRegion", SubTypeText},
	"other":              {"TextRegion", SubTypeText},
	"image":              {"ImageRegion", SubTypeImage},
	"graphic":            {"GraphicRegion", SubTypeGraphic},
	"line-drawing":       {"LineDrawingRegion", SubTypeGraphic},
	"chart":              {"ChartRegion", SubTypeGraphic},
	"table":              {"TableRegion", SubTypeTable},
	"separator":          {"SeparatorRegion", SubTypeSeparator},
	"maths":              {"MathsRegion", SubTypeMaths},
	"chem":               {"ChemRegion", SubTypeOther},
	"music":              {"MusicRegion", SubTypeOther},
	"advert":             {"AdvertRegion", SubTypeOther},
	"noise":              {"NoiseRegion", SubTypeOther},
	"unknown":            {"UnknownRegion", SubTypeOther},
	"ignore":             {"", SubTypeIgnore},
}

// ParseType resolves a client type string. Matching is exact first, then
// case-insensitive, so "Paragraph" and "toc-entry" are accepted.
func ParseType(s string) (Type, error) {
	if _, ok := known[Type(s)]; ok {
		return Type(s), nil
	}
	for t := range known {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegionType, s)
}

// MustParseType is ParseType for compile-time constants; it panics on error.
func MustParseType(s string) Type {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Types returns every known type in sorted order.
func Types() []Type {
	out := make([]Type, 0, len(known))
	for t := range known {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// SubType returns the structural role of t. Unknown types report SubTypeOther.
func (t Type) SubType() SubType {
	if info, ok := known[t]; ok {
		return info.subType
	}
	return SubTypeOther
}

// Element returns the PAGE XML element name, empty for ignore regions.
func (t Type) Element() string {
	return known[t].element
}

// IsIgnore reports whether t is an ignore-zone.
func (t Type) IsIgnore() bool {
	return t.SubType() == SubTypeIgnore
}

func (t Type) String() string { return string(t) }
