package regions

import (
	"encoding/json"
	"fmt"
)

// Definition describes one layout region type the engine should detect.
type Definition struct {
	Type Type `json:"type"`
	// MinSize is the minimum area in pixels a detected instance must cover.
	MinSize int `json:"minSize"`
	// MaxOccurrences caps detected instances; zero or negative means unbounded.
	MaxOccurrences int              `json:"maxOccurrences"`
	Priority       PriorityPosition `json:"priorityPosition"`
	// Positions are simultaneously valid search hints, in declaration order.
	// An empty list means the whole page is searched.
	Positions []RelativePosition `json:"positions"`
}

// NewDefinition creates a definition with no positions.
func NewDefinition(t Type, minSize, maxOccurrences int, priority PriorityPosition) Definition {
	return Definition{
		Type:           t,
		MinSize:        minSize,
		MaxOccurrences: maxOccurrences,
		Priority:       priority,
		Positions:      []RelativePosition{},
	}
}

// AddPosition appends a position; earlier positions are never overridden.
func (d *Definition) AddPosition(p RelativePosition) {
	d.Positions = append(d.Positions, p)
}

// Unbounded reports whether the occurrence count is uncapped.
func (d Definition) Unbounded() bool { return d.MaxOccurrences <= 0 }

func (d Definition) clone() Definition {
	out := d
	out.Positions = make([]RelativePosition, len(d.Positions))
	copy(out.Positions, d.Positions)
	return out
}

// Builder accumulates definitions into a Catalog snapshot. A Builder is not
// safe for concurrent use; the Catalog it builds is.
type Builder struct {
	defs  []Definition
	index map[Type]int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{index: make(map[Type]int)}
}

// Add inserts d, replacing any definition of the same type in place.
func (b *Builder) Add(d Definition) *Builder {
	d = d.clone()
	if i, ok := b.index[d.Type]; ok {
		b.defs[i] = d
		return b
	}
	b.index[d.Type] = len(b.defs)
	b.defs = append(b.defs, d)
	return b
}

// AddPosition appends a position to an already added definition.
func (b *Builder) AddPosition(t Type, p RelativePosition) error {
	i, ok := b.index[t]
	if !ok {
		return fmt.Errorf("%w: %q not in builder", ErrUnknownRegionType, t)
	}
	b.defs[i].AddPosition(p)
	return nil
}

// Build returns an immutable snapshot. The builder may keep being used.
func (b *Builder) Build() *Catalog {
	c := &Catalog{
		defs:  make([]Definition, len(b.defs)),
		index: make(map[Type]int, len(b.defs)),
	}
	for i, d := range b.defs {
		c.defs[i] = d.clone()
		c.index[d.Type] = i
	}
	return c
}

// Catalog is the ordered, immutable set of region definitions active for a
// book. Accessors return copies so callers cannot mutate the snapshot.
type Catalog struct {
	defs  []Definition
	index map[Type]int
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// Get returns the definition for t.
func (c *Catalog) Get(t Type) (Definition, bool) {
	i, ok := c.index[t]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i].clone(), true
}

// Definitions returns all definitions in insertion order.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.clone()
	}
	return out
}

// Types returns the catalog types in insertion order.
func (c *Catalog) Types() []Type {
	out := make([]Type, len(c.defs))
	for i, d := range c.defs {
		out[i] = d.Type
	}
	return out
}

// MarshalJSON encodes the catalog as an ordered list of definitions.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.defs)
}

// UnmarshalJSON rebuilds a catalog from an encoded list.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return err
	}
	b := NewBuilder()
	for _, d := range defs {
		if d.Positions == nil {
			d.Positions = []RelativePosition{}
		}
		b.Add(d)
	}
	*c = *b.Build()
	return nil
}

// DefaultCatalog returns the region set a new book starts with.
func DefaultCatalog() *Catalog {
	paragraph := NewDefinition("paragraph", 0, 0, PriorityNone)
	paragraph.AddPosition(NewRelativePosition(0, 0, 1, 1))

	image := NewDefinition("image", 10000, 0, PriorityLargest)
	image.AddPosition(NewRelativePosition(0, 0, 1, 1))

	marginalia := NewDefinition("marginalia", 1000, 0, PriorityNone)
	marginalia.AddPosition(NewRelativePosition(0, 0, 0.25, 1))
	marginalia.AddPosition(NewRelativePosition(0.75, 0, 1, 1))

	pageNumber := NewDefinition("page-number", 100, 1, PriorityTop)
	pageNumber.AddPosition(NewRelativePosition(0, 0, 1, 0.2))
	pageNumber.AddPosition(NewRelativePosition(0, 0.8, 1, 1))

	ignore := NewDefinition("ignore", 0, 0, PriorityNone)

	return NewBuilder().
		Add(paragraph).
		Add(image).
		Add(marginalia).
		Add(pageNumber).
		Add(ignore).
		Build()
}
