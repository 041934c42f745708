// Package books discovers books on disk and measures their pages.
//
// A book is either a directory of page images or a single PDF file directly
// under the library root. Book ids are positions in the sorted listing of
// the root; page ids are positions in the sorted page list of the book.
package books

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/jackzampolin/folio/internal/geometry"
)

// Sentinel errors.
var (
	// ErrBookNotFound is returned for a book id outside the library.
	ErrBookNotFound = errors.New("book not found")

	// ErrPageNotFound is returned for a page id outside a book.
	ErrPageNotFound = errors.New("page not found")
)

// Page is one scanned page of a book.
type Page struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// Path is the page image, or the PDF the page belongs to.
	Path string `json:"-" yaml:"-"`
	// PDFPage is the 1-based page number within Path for PDF books, else 0.
	PDFPage int `json:"pdfPage,omitempty" yaml:"pdfPage,omitempty"`
}

// Book is a named, ordered list of pages.
type Book struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"-" yaml:"-"`
	PDF   bool   `json:"pdf" yaml:"pdf"`
	Pages []Page `json:"pages" yaml:"pages"`
}

// BookID returns the book id.
func (b *Book) BookID() int { return b.ID }

// PageIDs returns the page ids in page order.
func (b *Book) PageIDs() []int {
	ids := make([]int, len(b.Pages))
	for i, p := range b.Pages {
		ids[i] = p.ID
	}
	return ids
}

// Page returns the page with the given id.
func (b *Book) Page(id int) (Page, error) {
	if id < 0 || id >= len(b.Pages) {
		return Page{}, fmt.Errorf("%w: page %d of book %d", ErrPageNotFound, id, b.ID)
	}
	return b.Pages[id], nil
}

// Config configures a Library.
type Config struct {
	// Root is the directory holding the books.
	Root string
	// ImageFilter lists accepted page image extensions, e.g. ".png".
	ImageFilter []string
	// PDFDPI is the resolution PDF pages are measured at. Zero means 300.
	PDFDPI float64
	Logger *slog.Logger
}

// Library reads books from a directory. Page sizes are cached because
// measuring a page decodes its image.
type Library struct {
	root   string
	filter map[string]bool
	dpi    float64
	logger *slog.Logger

	mu    sync.Mutex
	sizes map[string]geometry.PageSize
}

// NewLibrary creates a library over cfg.Root.
func NewLibrary(cfg Config) *Library {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dpi := cfg.PDFDPI
	if dpi <= 0 {
		dpi = 300
	}
	filter := make(map[string]bool, len(cfg.ImageFilter))
	for _, ext := range cfg.ImageFilter {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		filter[ext] = true
	}
	return &Library{
		root:   cfg.Root,
		filter: filter,
		dpi:    dpi,
		logger: logger,
		sizes:  make(map[string]geometry.PageSize),
	}
}

// Root returns the library directory.
func (l *Library) Root() string { return l.root }

func (l *Library) isImage(name string) bool {
	return l.filter[strings.ToLower(filepath.Ext(name))]
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// Books lists every book in the library.
func (l *Library) Books() ([]*Book, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read books directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() || isPDF(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, geometry.CompareIDs)

	books := make([]*Book, 0, len(names))
	for _, name := range names {
		book, err := l.load(len(books), name)
		if err != nil {
			l.logger.Warn("skipping unreadable book", "name", name, "error", err)
			continue
		}
		books = append(books, book)
	}
	return books, nil
}

// Book returns the book with the given id.
func (l *Library) Book(id int) (*Book, error) {
	books, err := l.Books()
	if err != nil {
		return nil, err
	}
	if id < 0 || id >= len(books) {
		return nil, fmt.Errorf("%w: %d", ErrBookNotFound, id)
	}
	return books[id], nil
}

func (l *Library) load(id int, name string) (*Book, error) {
	path := filepath.Join(l.root, name)
	if isPDF(name) {
		return l.loadPDF(id, name, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, e := range entries {
		if !e.IsDir() && l.isImage(e.Name()) {
			images = append(images, e.Name())
		}
	}
	slices.SortFunc(images, geometry.CompareIDs)

	book := &Book{ID: id, Name: name, Path: path, Pages: make([]Page, len(images))}
	for i, img := range images {
		book.Pages[i] = Page{ID: i, Name: img, Path: filepath.Join(path, img)}
	}
	return book, nil
}

// PageSize returns the pixel size of a page.
func (l *Library) PageSize(book *Book, pageID int) (geometry.PageSize, error) {
	page, err := book.Page(pageID)
	if err != nil {
		return geometry.PageSize{}, err
	}
	key := sizeKey(page.Path, page.PDFPage)

	l.mu.Lock()
	size, ok := l.sizes[key]
	l.mu.Unlock()
	if ok {
		return size, nil
	}

	if book.PDF {
		size, err = l.pdfPageSize(page)
	} else {
		size, err = imageSize(page.Path)
	}
	if err != nil {
		return geometry.PageSize{}, fmt.Errorf("failed to measure page %d of book %d: %w", pageID, book.ID, err)
	}

	l.mu.Lock()
	l.sizes[key] = size
	l.mu.Unlock()
	return size, nil
}

func sizeKey(path string, pdfPage int) string {
	return fmt.Sprintf("%s#%d", path, pdfPage)
}
