package segmenter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackzampolin/folio/internal/books"
	"github.com/jackzampolin/folio/internal/engine"
	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/metrics"
	"github.com/jackzampolin/folio/internal/segmentation"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/store"
	"github.com/jackzampolin/folio/internal/testutil"
)

// fakeEngine records requests and answers with a canned result.
type fakeEngine struct {
	mu       sync.Mutex
	requests []*engine.Request
	result   *segmentation.Result
	err      error
}

func (f *fakeEngine) Segment(_ context.Context, req *engine.Request) (*segmentation.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeEngine) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fixture struct {
	seg    *Segmenter
	engine *fakeEngine
	store  *store.MemoryStore
	root   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	testutil.WriteBook(t, root, "herbal", 2, 100, 200)

	settingsDir := t.TempDir()
	fe := &fakeEngine{result: &segmentation.Result{
		Regions: []segmentation.RegionSegment{{
			ID:     "r1",
			Type:   "paragraph",
			Points: []geometry.PixelPoint{{X: 10, Y: 20}, {X: 50, Y: 20}, {X: 50, Y: 100}, {X: 10, Y: 100}},
		}},
		ReadingOrder: []string{"r1"},
	}}
	ms := store.NewMemoryStore()

	seg, err := New(Config{
		Library:  books.NewLibrary(books.Config{Root: root, ImageFilter: []string{".png"}}),
		Engine:   fe,
		Store:    ms,
		Defaults: segmentation.Defaults{Knobs: segmentation.DefaultKnobs()},
		SettingsPath: func(bookID int) string {
			return filepath.Join(settingsDir, "book.yaml")
		},
		Metrics: metrics.New(),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return &fixture{seg: seg, engine: fe, store: ms, root: root}
}

func TestNew_RequiresDependencies(t *testing.T) {
	lib := books.NewLibrary(books.Config{Root: t.TempDir()})
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no library", Config{Engine: &fakeEngine{}, Store: store.NewMemoryStore()}},
		{"no engine", Config{Library: lib, Store: store.NewMemoryStore()}},
		{"no store", Config{Library: lib, Engine: &fakeEngine{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSegmenter_Settings(t *testing.T) {
	f := newFixture(t)

	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatalf("Settings() error: %v", err)
	}
	if bs.BookID != 0 {
		t.Errorf("expected book 0, got %d", bs.BookID)
	}
	if len(bs.Pages) != 2 {
		t.Errorf("expected 2 pages, got %d", len(bs.Pages))
	}
	if _, ok := bs.Regions["marginalia"]; !ok {
		t.Error("expected default marginalia region")
	}
	if bs.ImageSegType != segmentation.ImageSegStraightRect {
		t.Errorf("expected STRAIGHT_RECT, got %s", bs.ImageSegType)
	}

	if _, err := f.seg.Settings(5); !errors.Is(err, books.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestSegmenter_SaveSettings(t *testing.T) {
	f := newFixture(t)

	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}
	bs.Parameters.TextDilationX = 9
	if err := f.seg.SaveSettings(bs); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}

	loaded, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Parameters.TextDilationX != 9 {
		t.Errorf("expected saved settings, got textdilationX %d", loaded.Parameters.TextDilationX)
	}

	bs.BookID = 3
	if err := f.seg.SaveSettings(bs); !errors.Is(err, books.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestSegmenter_Segment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}
	page := bs.Pages[1]
	page.FixedSegments["fixed1"] = geometry.NewRegion("fixed1", "heading",
		geometry.Rectangle(geometry.Point{X: 0.1, Y: 0.2}, geometry.Point{X: 0.5, Y: 0.6}), true)
	bs.Pages[1] = page

	got, err := f.seg.Segment(ctx, bs, 1, false)
	if err != nil {
		t.Fatalf("Segment() error: %v", err)
	}

	if f.engine.calls() != 1 {
		t.Fatalf("expected 1 engine call, got %d", f.engine.calls())
	}
	req := f.engine.requests[0]
	if req.Image != "herbal/0002.png" {
		t.Errorf("expected image herbal/0002.png, got %q", req.Image)
	}
	if req.Width != 100 || req.Height != 200 {
		t.Errorf("expected 100x200, got %dx%d", req.Width, req.Height)
	}
	if req.RunID == "" {
		t.Error("expected a run id")
	}
	geom := req.Parameters.ExistingGeometry
	if geom == nil || len(geom.FixedRegions) != 1 {
		t.Fatalf("expected one fixed region, got %+v", geom)
	}
	if p := geom.FixedRegions[0].Points[0]; p.X != 10 || p.Y != 40 {
		t.Errorf("expected fixed region to start at (10,40), got %+v", p)
	}

	if got.Name != "0002.png" || got.PageID != 1 {
		t.Errorf("unexpected page identity: %q %d", got.Name, got.PageID)
	}
	r1, ok := got.Segments["r1"]
	if !ok {
		t.Fatal("expected segment r1")
	}
	size := geometry.PageSize{Width: 100, Height: 200}
	if p := size.ToPixel(r1.Points[0]); p != (geometry.PixelPoint{X: 10, Y: 20}) {
		t.Errorf("expected r1 to start at pixel (10,20), got %+v", p)
	}
	if fixed := got.Segments["fixed1"]; !fixed.Fixed || fixed.Type != "heading" {
		t.Errorf("expected fixed heading carried through, got %+v", fixed)
	}

	stored, err := f.store.Load(ctx, 0, 1)
	if err != nil {
		t.Fatalf("expected stored annotation: %v", err)
	}
	if len(stored.Segments) != 2 {
		t.Errorf("expected 2 stored segments, got %d", len(stored.Segments))
	}
}

func TestSegmenter_Segment_AllowLocal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}

	// Nothing stored yet, so the engine runs.
	if _, err := f.seg.Segment(ctx, bs, 0, true); err != nil {
		t.Fatal(err)
	}
	if _, err := f.seg.Segment(ctx, bs, 0, true); err != nil {
		t.Fatal(err)
	}
	if f.engine.calls() != 1 {
		t.Errorf("expected stored annotation to be reused, got %d engine calls", f.engine.calls())
	}

	if _, err := f.seg.Segment(ctx, bs, 0, false); err != nil {
		t.Fatal(err)
	}
	if f.engine.calls() != 2 {
		t.Errorf("expected engine to rerun without allowLocal, got %d calls", f.engine.calls())
	}
}

func TestSegmenter_Segment_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.seg.Segment(ctx, nil, 0, false); !errors.Is(err, settings.ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
	if _, err := f.seg.Segment(ctx, bs, 7, false); !errors.Is(err, books.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}

	other := *bs
	other.BookID = 4
	if _, err := f.seg.Segment(ctx, &other, 0, false); !errors.Is(err, books.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}

	f.engine.err = engine.ErrEngineUnavailable
	if _, err := f.seg.Segment(ctx, bs, 0, false); !errors.Is(err, engine.ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
	if _, err := f.store.Load(ctx, 0, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("failed run must not store anything, got %v", err)
	}
}

func TestSegmenter_Strict(t *testing.T) {
	f := newFixture(t)
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}
	rs := bs.Regions["paragraph"]
	rs.Polygons["bad"] = geometry.NewRegion("bad", "paragraph", []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, true)
	bs.Regions["paragraph"] = rs

	if _, err := f.seg.Segment(context.Background(), bs, 0, false); err != nil {
		t.Fatalf("lenient mode should drop the outline: %v", err)
	}

	f.seg.SetStrict(true)
	if !f.seg.Strict() {
		t.Fatal("expected strict mode")
	}
	if _, err := f.seg.Segment(context.Background(), bs, 0, false); err == nil {
		t.Error("expected strict mode to reject malformed outline")
	}
}

func TestSegmenter_SetEngine(t *testing.T) {
	f := newFixture(t)
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}

	replacement := &fakeEngine{result: &segmentation.Result{}}
	f.seg.SetEngine(replacement)
	if _, err := f.seg.Segment(context.Background(), bs, 0, false); err != nil {
		t.Fatal(err)
	}
	if replacement.calls() != 1 || f.engine.calls() != 0 {
		t.Errorf("expected replacement engine to be used, got %d/%d", replacement.calls(), f.engine.calls())
	}
}

func TestSegmenter_EmptySegment(t *testing.T) {
	f := newFixture(t)

	got, err := f.seg.EmptySegment(0, 1)
	if err != nil {
		t.Fatalf("EmptySegment() error: %v", err)
	}
	if got.Width != 100 || got.Height != 200 || len(got.Segments) != 0 {
		t.Errorf("unexpected empty annotation: %+v", got)
	}
	if _, err := f.seg.EmptySegment(0, 2); !errors.Is(err, books.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestSegmenter_SegmentedPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}

	pages, err := f.seg.SegmentedPages(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 0 {
		t.Errorf("expected no segmented pages, got %v", pages)
	}

	for _, id := range []int{1, 0} {
		if _, err := f.seg.Segment(ctx, bs, id, false); err != nil {
			t.Fatal(err)
		}
	}
	pages, err = f.seg.SegmentedPages(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pages) != 2 || pages[0] != 0 || pages[1] != 1 {
		t.Errorf("expected [0 1], got %v", pages)
	}

	if _, err := f.seg.SegmentedPages(ctx, 9); !errors.Is(err, books.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestSegmenter_Translate(t *testing.T) {
	f := newFixture(t)
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}
	size := geometry.PageSize{Width: 1000, Height: 2000}

	res, err := f.seg.Translate(bs, size, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parameters.ExistingGeometry != nil {
		t.Error("expected no existing geometry without a page")
	}
	if res.Parameters.PageHeight != 2000 {
		t.Errorf("expected page height 2000, got %d", res.Parameters.PageHeight)
	}

	first := 0
	res, err = f.seg.Translate(bs, size, &first, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Parameters.ExistingGeometry == nil {
		t.Error("expected existing geometry for a page")
	}

	for _, page := range []int{-1, len(bs.Pages)} {
		if _, err := f.seg.Translate(bs, size, &page, false); !errors.Is(err, settings.ErrUnknownPage) {
			t.Errorf("page %d: expected ErrUnknownPage, got %v", page, err)
		}
	}
}

func TestSegmenter_DeleteAnnotation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bs, err := f.seg.Settings(0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.seg.Segment(ctx, bs, 0, false); err != nil {
		t.Fatal(err)
	}

	if err := f.seg.DeleteAnnotation(ctx, 0, 0); err != nil {
		t.Fatalf("DeleteAnnotation() error: %v", err)
	}
	if _, err := f.store.Load(ctx, 0, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected annotation to be gone, got %v", err)
	}
	if err := f.seg.DeleteAnnotation(ctx, 0, 5); !errors.Is(err, books.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}
