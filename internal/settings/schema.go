package settings

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/segmentation"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("book-settings.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to load settings schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("book-settings.json")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("failed to compile settings schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Validate checks a raw JSON payload against the settings schema. The
// schema covers shape only; region types, coordinate ranges and page
// bounds are checked by the translator.
func Validate(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	return nil
}

// Decode validates and decodes a JSON settings payload.
func Decode(data []byte) (*BookSettings, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	var s BookSettings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	s.normalize()
	return &s, nil
}

// normalize replaces nil maps so decoded settings behave like constructed ones.
func (b *BookSettings) normalize() {
	if b.Pages == nil {
		b.Pages = []PageSettings{}
	}
	if b.Regions == nil {
		b.Regions = map[string]RegionSettings{}
	}
	for k, r := range b.Regions {
		if r.Polygons == nil {
			r.Polygons = map[string]geometry.Region{}
			b.Regions[k] = r
		}
	}
	b.Global.normalize()
	for i := range b.Pages {
		b.Pages[i].normalize()
	}
	if b.ImageSegType == "" {
		b.ImageSegType = segmentation.ImageSegStraightRect
	} else if t, err := segmentation.ParseImageSegType(string(b.ImageSegType)); err == nil {
		b.ImageSegType = t
	}
}

func (p *PageSettings) normalize() {
	if p.FixedSegments == nil {
		p.FixedSegments = map[string]geometry.Region{}
	}
	if p.Cuts == nil {
		p.Cuts = map[string]geometry.Polygon{}
	}
}
