package settings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/regions"
	"github.com/jackzampolin/folio/internal/segmentation"
)

type fakeBook struct {
	id    int
	pages []int
}

func (b fakeBook) BookID() int    { return b.id }
func (b fakeBook) PageIDs() []int { return b.pages }

const samplePayload = `{
  "book": 7,
  "pages": [
    {"page": 0, "fixedSegments": {}, "cuts": {}},
    {"page": 1,
     "fixedSegments": {"fix1": {"type": "image", "points": [{"x":0.1,"y":0.2},{"x":0.5,"y":0.2},{"x":0.5,"y":0.6},{"x":0.1,"y":0.6}], "fixed": true, "attributes": {}, "children": []}},
     "cuts": {"cut1": {"id": "cut1", "points": [{"x":0,"y":0.5},{"x":1,"y":0.5}]}}}
  ],
  "parameters": {"textdilationX": 1, "textdilationY": 5, "imagedilationX": 3, "imagedilationY": 3},
  "regions": {
    "paragraph": {"type": "paragraph", "minSize": 0, "maxOccurrences": 0, "priorityPosition": "none",
      "polygons": {"paragraph0": {"id": "paragraph0", "type": "paragraph", "points": [{"x":0,"y":0},{"x":1,"y":0},{"x":1,"y":1},{"x":0,"y":1}], "fixed": true}}}
  },
  "global": {"page": -1},
  "combine": true,
  "imageSegType": "ROTATED_RECT"
}`

func TestPositionID(t *testing.T) {
	if got := PositionID("paragraph", 0); got != "paragraph0" {
		t.Errorf("PositionID() = %q", got)
	}
	if got := PositionID("page-number", 12); got != "page-number12" {
		t.Errorf("PositionID() = %q", got)
	}
}

func TestBookSettings_Page(t *testing.T) {
	s := &BookSettings{BookID: 1}
	s.AddPage(NewPageSettings(10))
	s.AddPage(NewPageSettings(11))

	p, err := s.Page(1)
	if err != nil || p.Page != 11 {
		t.Errorf("Page(1) = %+v, %v", p, err)
	}
	for _, idx := range []int{2, -1, 100} {
		if _, err := s.Page(idx); !errors.Is(err, ErrUnknownPage) {
			t.Errorf("Page(%d) error = %v, want ErrUnknownPage", idx, err)
		}
	}
}

func TestFromParameters(t *testing.T) {
	params := segmentation.DefaultParameters(2000, segmentation.Defaults{
		Knobs:         segmentation.Knobs{TextDilationX: 2, TextDilationY: 4, ImageDilationX: 6, ImageDilationY: 8},
		CombineImages: true,
		ImageSegType:  segmentation.ImageSegContourOnly,
	})
	s := FromParameters(params, fakeBook{id: 3, pages: []int{0, 1, 2}})

	if s.BookID != 3 || len(s.Pages) != 3 || s.Pages[2].Page != 2 {
		t.Errorf("book/pages = %d %+v", s.BookID, s.Pages)
	}
	if s.Parameters != params.Knobs() {
		t.Errorf("Parameters = %+v", s.Parameters)
	}
	if !s.Combine || s.ImageSegType != segmentation.ImageSegContourOnly {
		t.Errorf("combine/imageSegType = %v/%q", s.Combine, s.ImageSegType)
	}
	if s.Global.Page != GlobalPage {
		t.Errorf("Global.Page = %d", s.Global.Page)
	}
	if len(s.Regions) != params.Regions.Len() {
		t.Fatalf("len(Regions) = %d, want %d", len(s.Regions), params.Regions.Len())
	}

	margin, ok := s.Regions["marginalia"]
	if !ok {
		t.Fatal("missing marginalia")
	}
	right, ok := margin.Polygons["marginalia1"]
	if !ok {
		t.Fatalf("polygons = %v", geometry.SortedKeys(margin.Polygons))
	}
	if len(right.Points) != 4 || !right.Fixed || right.Type != "marginalia" {
		t.Errorf("marginalia1 = %+v", right)
	}
	def, _ := params.Regions.Get("marginalia")
	if right.Points[0] != def.Positions[1].TopLeft() || right.Points[2] != def.Positions[1].BottomRight() {
		t.Errorf("outline corners %v %v do not match position", right.Points[0], right.Points[2])
	}

	ignore := s.Regions["ignore"]
	if len(ignore.Polygons) != 0 || ignore.Polygons == nil {
		t.Errorf("ignore polygons = %v", ignore.Polygons)
	}
}

func TestDecode(t *testing.T) {
	s, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.BookID != 7 || len(s.Pages) != 2 || !s.Combine || s.ImageSegType != segmentation.ImageSegRotatedRect {
		t.Errorf("decoded = %+v", s)
	}
	if s.Global.FixedSegments == nil || s.Global.Cuts == nil {
		t.Error("global maps should be normalized")
	}
	p, _ := s.Page(1)
	if fix := p.FixedSegments["fix1"]; fix.Type != "image" || len(fix.Points) != 4 {
		t.Errorf("fix1 = %+v", fix)
	}
	if cut := p.Cuts["cut1"]; len(cut.Points) != 2 {
		t.Errorf("cut1 = %+v", cut)
	}
	if r := s.Regions["paragraph"]; r.Priority != regions.PriorityNone {
		t.Errorf("priority = %q", r.Priority)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{`},
		{"missing parameters", `{"book": 1, "pages": [], "regions": {}}`},
		{"bad seg type", `{"book": 1, "pages": [], "regions": {}, "imageSegType": "CIRCLE",
			"parameters": {"textdilationX": 1, "textdilationY": 1, "imagedilationX": 1, "imagedilationY": 1}}`},
		{"page without number", `{"book": 1, "pages": [{}], "regions": {},
			"parameters": {"textdilationX": 1, "textdilationY": 1, "imagedilationX": 1, "imagedilationY": 1}}`},
		{"string size", `{"book": 1, "pages": [], "regions": {"image": {"type": "image", "minSize": "big"}},
			"parameters": {"textdilationX": 1, "textdilationY": 1, "imagedilationX": 1, "imagedilationY": 1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.payload)); !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Decode() error = %v, want ErrInvalidSettings", err)
			}
		})
	}
}

func TestDecode_DefaultsImageSegType(t *testing.T) {
	payload := `{"book": 1, "pages": [], "regions": {},
		"parameters": {"textdilationX": 1, "textdilationY": 1, "imagedilationX": 1, "imagedilationY": 1}}`
	s, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if s.ImageSegType != segmentation.ImageSegStraightRect {
		t.Errorf("ImageSegType = %q", s.ImageSegType)
	}
}

func TestDecode_ImageSegTypeAnyCase(t *testing.T) {
	tests := map[string]segmentation.ImageSegType{
		"straight_rect": segmentation.ImageSegStraightRect,
		"Contour_Only":  segmentation.ImageSegContourOnly,
		"ROTATED_RECT":  segmentation.ImageSegRotatedRect,
		"":              segmentation.ImageSegStraightRect,
	}
	for in, want := range tests {
		payload := `{"book": 1, "pages": [], "regions": {}, "imageSegType": "` + in + `",
			"parameters": {"textdilationX": 1, "textdilationY": 1, "imagedilationX": 1, "imagedilationY": 1}}`
		s, err := Decode([]byte(payload))
		if err != nil {
			t.Errorf("%q: Decode() error = %v", in, err)
			continue
		}
		if s.ImageSegType != want {
			t.Errorf("%q: ImageSegType = %q, want %q", in, s.ImageSegType, want)
		}
	}
}

func TestLoadSaveFile(t *testing.T) {
	want, err := Decode([]byte(samplePayload))
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"book.json", "book.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			if err := SaveFile(path, want); err != nil {
				t.Fatalf("SaveFile() error = %v", err)
			}
			got, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if got.BookID != want.BookID || got.Parameters != want.Parameters || got.ImageSegType != want.ImageSegType {
				t.Errorf("loaded = %+v", got)
			}
			p, _ := got.Page(1)
			if fix := p.FixedSegments["fix1"]; fix.Points[2] != (geometry.Point{X: 0.5, Y: 0.6}) {
				t.Errorf("fix1 = %+v", fix)
			}
		})
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("book: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("LoadFile() error = %v, want ErrInvalidSettings", err)
	}
}
