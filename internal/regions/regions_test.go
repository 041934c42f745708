package regions

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackzampolin/folio/internal/geometry"
)

func TestNewRelativePosition_AccessorsReturnInput(t *testing.T) {
	cases := [][4]float64{
		{0, 0, 1, 1},
		{0.1, 0.2, 0.5, 0.6},
		{0.3, 0.3, 0.3, 0.3},
		{0, 0.9, 0.01, 1},
	}
	for _, c := range cases {
		p := NewRelativePosition(c[0], c[1], c[2], c[3])
		got := [4]float64{p.TopLeftX(), p.TopLeftY(), p.BottomRightX(), p.BottomRightY()}
		if got != c {
			t.Errorf("accessors = %v, want %v", got, c)
		}
		if p.Fixed() {
			t.Errorf("new position %v should not be fixed", c)
		}
		if err := p.Validate(); err != nil {
			t.Errorf("Validate(%v) = %v, want nil", c, err)
		}
	}
}

func TestRelativePosition_Validate(t *testing.T) {
	tests := []struct {
		name string
		pos  RelativePosition
		want error
	}{
		{"negative x", NewRelativePosition(-0.1, 0, 0.5, 0.5), ErrCoordinateOutOfRange},
		{"y past page", NewRelativePosition(0, 0, 0.5, 1.5), ErrCoordinateOutOfRange},
		{"inverted x", NewRelativePosition(0.6, 0, 0.5, 0.5), ErrInvertedPosition},
		{"inverted y", NewRelativePosition(0, 0.6, 0.5, 0.5), ErrInvertedPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.pos.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPositionFromCorners(t *testing.T) {
	t.Run("ordered corners", func(t *testing.T) {
		p, swapped := PositionFromCorners(geometry.Point{X: 0.1, Y: 0.2}, geometry.Point{X: 0.5, Y: 0.6})
		if swapped {
			t.Error("expected no swap")
		}
		if p.TopLeftX() != 0.1 || p.BottomRightY() != 0.6 {
			t.Errorf("unexpected bounds %v %v", p.TopLeft(), p.BottomRight())
		}
	})

	t.Run("reversed corners are normalized", func(t *testing.T) {
		p, swapped := PositionFromCorners(geometry.Point{X: 0.5, Y: 0.6}, geometry.Point{X: 0.1, Y: 0.2})
		if !swapped {
			t.Error("expected swap to be reported")
		}
		if p.TopLeft() != (geometry.Point{X: 0.1, Y: 0.2}) || p.BottomRight() != (geometry.Point{X: 0.5, Y: 0.6}) {
			t.Errorf("unexpected bounds %v %v", p.TopLeft(), p.BottomRight())
		}
	})
}

func TestRelativePosition_Pixels(t *testing.T) {
	p := NewRelativePosition(0.1, 0.2, 0.5, 0.6)
	size := geometry.PageSize{Width: 1000, Height: 2000}

	tl, br := p.ToPixels(size)
	if tl != (geometry.PixelPoint{X: 100, Y: 400}) || br != (geometry.PixelPoint{X: 500, Y: 1200}) {
		t.Errorf("ToPixels() = %v %v", tl, br)
	}
	if area := p.PixelArea(size); area < 319999 || area > 320001 {
		t.Errorf("PixelArea() = %v, want ~320000", area)
	}
}

func TestRelativePosition_JSON(t *testing.T) {
	p := NewRelativePosition(0, 0, 1, 0.1)
	p.SetFixed(true)

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back RelativePosition
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != p {
		t.Errorf("decoded %+v, want %+v", back, p)
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		sub     SubType
		wantErr bool
	}{
		{"paragraph", "paragraph", SubTypeText, false},
		{"Paragraph", "paragraph", SubTypeText, false},
		{"toc-entry", "TOC-entry", SubTypeText, false},
		{"image", "image", SubTypeImage, false},
		{"ignore", "ignore", SubTypeIgnore, false},
		{"bogus", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownRegionType) {
					t.Fatalf("ParseType(%q) error = %v, want ErrUnknownRegionType", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseType(%q) error = %v", tt.in, err)
			}
			if got != tt.want || got.SubType() != tt.sub {
				t.Errorf("ParseType(%q) = %q/%q, want %q/%q", tt.in, got, got.SubType(), tt.want, tt.sub)
			}
		})
	}
}

func TestType_Element(t *testing.T) {
	if got := Type("heading").Element(); got != "TextRegion" {
		t.Errorf("heading element = %q", got)
	}
	if got := Type("ignore").Element(); got != "" {
		t.Errorf("ignore element = %q, want empty", got)
	}
	if !Type("ignore").IsIgnore() || Type("image").IsIgnore() {
		t.Error("IsIgnore mismatch")
	}
}

func TestParsePriority(t *testing.T) {
	if p, err := ParsePriority(""); err != nil || p != PriorityNone {
		t.Errorf("ParsePriority(\"\") = %q, %v", p, err)
	}
	if p, err := ParsePriority("top"); err != nil || p != PriorityTop {
		t.Errorf("ParsePriority(top) = %q, %v", p, err)
	}
	if _, err := ParsePriority("middle"); !errors.Is(err, ErrUnknownPriority) {
		t.Errorf("ParsePriority(middle) error = %v", err)
	}
}

func TestBuilder(t *testing.T) {
	t.Run("re-adding a type replaces in place", func(t *testing.T) {
		b := NewBuilder()
		b.Add(NewDefinition("paragraph", 10, 0, PriorityNone))
		b.Add(NewDefinition("image", 20, 0, PriorityNone))
		b.Add(NewDefinition("paragraph", 99, 3, PriorityTop))

		c := b.Build()
		if c.Len() != 2 {
			t.Fatalf("Len() = %d, want 2", c.Len())
		}
		types := c.Types()
		if types[0] != "paragraph" || types[1] != "image" {
			t.Errorf("Types() = %v", types)
		}
		d, _ := c.Get("paragraph")
		if d.MinSize != 99 || d.MaxOccurrences != 3 || d.Priority != PriorityTop {
			t.Errorf("paragraph = %+v", d)
		}
	})

	t.Run("positions append in order", func(t *testing.T) {
		b := NewBuilder().Add(NewDefinition("marginalia", 0, 0, PriorityNone))
		if err := b.AddPosition("marginalia", NewRelativePosition(0, 0, 0.2, 1)); err != nil {
			t.Fatal(err)
		}
		if err := b.AddPosition("marginalia", NewRelativePosition(0.8, 0, 1, 1)); err != nil {
			t.Fatal(err)
		}
		d, _ := b.Build().Get("marginalia")
		if len(d.Positions) != 2 || d.Positions[0].BottomRightX() != 0.2 || d.Positions[1].TopLeftX() != 0.8 {
			t.Errorf("positions = %+v", d.Positions)
		}
	})

	t.Run("position for missing type", func(t *testing.T) {
		err := NewBuilder().AddPosition("image", NewRelativePosition(0, 0, 1, 1))
		if !errors.Is(err, ErrUnknownRegionType) {
			t.Errorf("AddPosition() error = %v", err)
		}
	})

	t.Run("snapshot is isolated from builder", func(t *testing.T) {
		b := NewBuilder().Add(NewDefinition("image", 0, 0, PriorityNone))
		c := b.Build()
		_ = b.AddPosition("image", NewRelativePosition(0, 0, 1, 1))

		d, _ := c.Get("image")
		if len(d.Positions) != 0 {
			t.Error("snapshot changed after builder mutation")
		}

		d.Positions = append(d.Positions, NewRelativePosition(0, 0, 1, 1))
		again, _ := c.Get("image")
		if len(again.Positions) != 0 {
			t.Error("snapshot changed through returned copy")
		}
	})
}

func TestCatalog_JSON(t *testing.T) {
	c := DefaultCatalog()
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var back Catalog
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back.Len() != c.Len() {
		t.Fatalf("Len() = %d, want %d", back.Len(), c.Len())
	}
	for _, want := range c.Definitions() {
		got, ok := back.Get(want.Type)
		if !ok {
			t.Fatalf("missing %q", want.Type)
		}
		if len(got.Positions) != len(want.Positions) {
			t.Errorf("%s positions = %d, want %d", want.Type, len(got.Positions), len(want.Positions))
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	for _, d := range c.Definitions() {
		if _, err := ParseType(string(d.Type)); err != nil {
			t.Errorf("default type %q not in catalog: %v", d.Type, err)
		}
		for _, p := range d.Positions {
			if err := p.Validate(); err != nil {
				t.Errorf("%s position invalid: %v", d.Type, err)
			}
		}
	}
	ignore, ok := c.Get("ignore")
	if !ok || len(ignore.Positions) != 0 {
		t.Errorf("ignore definition = %+v, %v", ignore, ok)
	}
}
