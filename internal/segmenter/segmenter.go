// Package segmenter runs page segmentation end to end: it measures the
// page, translates the book settings, calls the engine and stores the
// accepted annotations.
package segmenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/folio/internal/books"
	"github.com/jackzampolin/folio/internal/engine"
	"github.com/jackzampolin/folio/internal/geometry"
	"github.com/jackzampolin/folio/internal/metrics"
	"github.com/jackzampolin/folio/internal/segmentation"
	"github.com/jackzampolin/folio/internal/settings"
	"github.com/jackzampolin/folio/internal/store"
	"github.com/jackzampolin/folio/internal/translate"
)

// Engine segments a single page.
type Engine interface {
	Segment(ctx context.Context, req *engine.Request) (*segmentation.Result, error)
}

// Config configures a Segmenter.
type Config struct {
	Library *books.Library
	Engine  Engine
	Store   store.Store

	// Defaults seed the settings of books that have none saved.
	Defaults segmentation.Defaults

	// Strict makes translation reject malformed position outlines.
	Strict bool

	// SettingsPath returns where a book's saved settings live. Nil disables
	// saved settings.
	SettingsPath func(bookID int) string

	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// Segmenter is safe for concurrent use. The engine and strict flag can be
// swapped at runtime when configuration changes.
type Segmenter struct {
	library      *books.Library
	store        store.Store
	defaults     segmentation.Defaults
	settingsPath func(int) string
	metrics      *metrics.Recorder
	logger       *slog.Logger

	mu     sync.RWMutex
	engine Engine
	strict bool
}

// New creates a segmenter. Library, Engine and Store are required.
func New(cfg Config) (*Segmenter, error) {
	if cfg.Library == nil {
		return nil, fmt.Errorf("library is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{
		library:      cfg.Library,
		store:        cfg.Store,
		defaults:     cfg.Defaults,
		settingsPath: cfg.SettingsPath,
		metrics:      cfg.Metrics,
		logger:       logger,
		engine:       cfg.Engine,
		strict:       cfg.Strict,
	}, nil
}

// SetEngine replaces the engine used for new segmentation runs.
func (s *Segmenter) SetEngine(e Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = e
}

// SetStrict changes the translation mode for new runs.
func (s *Segmenter) SetStrict(strict bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strict = strict
}

// Strict reports the current translation mode.
func (s *Segmenter) Strict() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strict
}

func (s *Segmenter) current() (Engine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine, s.strict
}

// Library returns the book library.
func (s *Segmenter) Library() *books.Library { return s.library }

// Segment segments page pageID of the book named by bs. When allowLocal is
// set and an accepted annotation is already stored for the page, that
// annotation is returned and the engine is not called.
func (s *Segmenter) Segment(ctx context.Context, bs *settings.BookSettings, pageID int, allowLocal bool) (*segmentation.PageAnnotations, error) {
	if bs == nil {
		return nil, fmt.Errorf("%w: nil settings", settings.ErrInvalidSettings)
	}
	logger := s.logger.With("book", bs.BookID, "page", pageID)

	if allowLocal {
		stored, err := s.store.Load(ctx, bs.BookID, pageID)
		switch {
		case err == nil:
			logger.Debug("serving stored annotation")
			s.metrics.ObserveSegmentation("stored")
			return stored, nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("failed to load stored annotation: %w", err)
		}
	}

	book, err := s.library.Book(bs.BookID)
	if err != nil {
		return nil, err
	}
	page, err := book.Page(pageID)
	if err != nil {
		return nil, err
	}
	size, err := s.library.PageSize(book, pageID)
	if err != nil {
		return nil, err
	}

	eng, strict := s.current()
	res, err := translate.Translate(bs, size,
		translate.ForPage(pageID),
		translate.Strict(strict),
		translate.WithLogger(logger),
	)
	s.metrics.ObserveTranslation("page", err)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		s.metrics.ObserveDiagnostic(string(d.Severity), string(d.Code))
	}

	runID := uuid.New().String()
	req := &engine.Request{
		RunID:      runID,
		BookID:     book.ID,
		PageID:     page.ID,
		Image:      s.relativePath(page.Path),
		PDFPage:    page.PDFPage,
		Width:      int(size.Width),
		Height:     int(size.Height),
		Parameters: res.Parameters,
	}

	logger.Info("segmenting page", "run", runID, "width", req.Width, "height", req.Height)
	start := time.Now()
	result, err := eng.Segment(ctx, req)
	s.metrics.ObserveEngine(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("segmentation run %s failed: %w", runID, err)
	}

	fixed, err := fixedSegments(bs, pageID)
	if err != nil {
		return nil, err
	}
	annotations := segmentation.FromResult(page.Name, page.ID, size, result, fixed)
	if err := s.store.Save(ctx, book.ID, page.ID, annotations); err != nil {
		return nil, fmt.Errorf("failed to store annotation: %w", err)
	}
	s.metrics.ObserveSegmentation("engine")
	logger.Info("page segmented", "run", runID, "segments", len(annotations.Segments),
		"duration", time.Since(start))
	return annotations, nil
}

// EmptySegment returns annotations for a page with no segments.
func (s *Segmenter) EmptySegment(bookID, pageID int) (*segmentation.PageAnnotations, error) {
	book, err := s.library.Book(bookID)
	if err != nil {
		return nil, err
	}
	page, err := book.Page(pageID)
	if err != nil {
		return nil, err
	}
	size, err := s.library.PageSize(book, pageID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveSegmentation("empty")
	return segmentation.NewPageAnnotations(page.Name, page.ID, int(size.Width), int(size.Height)), nil
}

// SegmentedPages returns the ids of pages with stored annotations.
func (s *Segmenter) SegmentedPages(ctx context.Context, bookID int) ([]int, error) {
	if _, err := s.library.Book(bookID); err != nil {
		return nil, err
	}
	return s.store.SegmentedPages(ctx, bookID)
}

// DeleteAnnotation forgets the stored annotation for a page so the next
// segmentation runs the engine again.
func (s *Segmenter) DeleteAnnotation(ctx context.Context, bookID, pageID int) error {
	book, err := s.library.Book(bookID)
	if err != nil {
		return err
	}
	if _, err := book.Page(pageID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, bookID, pageID); err != nil {
		return fmt.Errorf("failed to delete annotation: %w", err)
	}
	s.logger.Info("deleted stored annotation", "book", bookID, "page", pageID)
	return nil
}

// Settings returns the settings for a book: the saved settings if there are
// any, otherwise settings built from the default parameters.
func (s *Segmenter) Settings(bookID int) (*settings.BookSettings, error) {
	book, err := s.library.Book(bookID)
	if err != nil {
		return nil, err
	}

	if path := s.savedPath(bookID); path != "" {
		if _, err := os.Stat(path); err == nil {
			bs, err := settings.LoadFile(path)
			if err != nil {
				return nil, err
			}
			s.logger.Debug("loaded saved settings", "book", bookID, "path", path)
			return bs, nil
		}
	}

	height := 0
	if len(book.Pages) > 0 {
		size, err := s.library.PageSize(book, book.Pages[0].ID)
		if err != nil {
			return nil, err
		}
		height = int(size.Height)
	}
	params := segmentation.DefaultParameters(height, s.defaults)
	s.metrics.ObserveTranslation("fresh", nil)
	return settings.FromParameters(params, book), nil
}

// SaveSettings persists bs as the book's saved settings.
func (s *Segmenter) SaveSettings(bs *settings.BookSettings) error {
	if bs == nil {
		return fmt.Errorf("%w: nil settings", settings.ErrInvalidSettings)
	}
	if _, err := s.library.Book(bs.BookID); err != nil {
		return err
	}
	path := s.savedPath(bs.BookID)
	if path == "" {
		return fmt.Errorf("saved settings are disabled")
	}
	if err := settings.SaveFile(path, bs); err != nil {
		return err
	}
	s.logger.Info("saved settings", "book", bs.BookID, "path", path)
	return nil
}

// Translate runs the translator for a page of the given size without
// calling the engine. A nil page skips geometry reconstruction; any other
// index must name a page of bs.
func (s *Segmenter) Translate(bs *settings.BookSettings, size geometry.PageSize, page *int, strict bool) (*translate.Result, error) {
	opts := []translate.Option{translate.Strict(strict), translate.WithLogger(s.logger)}
	mode := "fresh"
	if page != nil {
		opts = append(opts, translate.ForPage(*page))
		mode = "page"
	}
	res, err := translate.Translate(bs, size, opts...)
	s.metrics.ObserveTranslation(mode, err)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		s.metrics.ObserveDiagnostic(string(d.Severity), string(d.Code))
	}
	return res, nil
}

func (s *Segmenter) savedPath(bookID int) string {
	if s.settingsPath == nil {
		return ""
	}
	return s.settingsPath(bookID)
}

// relativePath makes a page path relative to the books root, which is how
// the engine container sees it.
func (s *Segmenter) relativePath(path string) string {
	rel, err := filepath.Rel(s.library.Root(), path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// fixedSegments returns the fixed segments the client sent for a page,
// falling back to the global page when the page has none.
func fixedSegments(bs *settings.BookSettings, pageID int) (map[string]geometry.Region, error) {
	page, err := bs.Page(pageID)
	if err != nil {
		return nil, err
	}
	if len(page.FixedSegments) > 0 {
		return page.FixedSegments, nil
	}
	return bs.Global.FixedSegments, nil
}
