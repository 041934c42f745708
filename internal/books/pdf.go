package books

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/folio/internal/geometry"
)

// pointsPerInch is the PDF user space unit.
const pointsPerInch = 72.0

func (l *Library) loadPDF(id int, name, path string) (*Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get page count for %s: %w", path, err)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	book := &Book{ID: id, Name: stem, Path: path, PDF: true, Pages: make([]Page, pageCount)}
	for i := range book.Pages {
		book.Pages[i] = Page{
			ID:      i,
			Name:    fmt.Sprintf("%s_%04d", stem, i+1),
			Path:    path,
			PDFPage: i + 1,
		}
	}
	return book, nil
}

// pdfPageSize converts the page's media box from points to pixels at the
// library's DPI. All pages of the PDF are measured and cached in one pass.
func (l *Library) pdfPageSize(page Page) (geometry.PageSize, error) {
	f, err := os.Open(page.Path)
	if err != nil {
		return geometry.PageSize{}, err
	}
	defer f.Close()

	dims, err := api.PageDims(f, nil)
	if err != nil {
		return geometry.PageSize{}, fmt.Errorf("failed to read page dimensions: %w", err)
	}
	if page.PDFPage < 1 || page.PDFPage > len(dims) {
		return geometry.PageSize{}, fmt.Errorf("%w: pdf page %d of %d", ErrPageNotFound, page.PDFPage, len(dims))
	}

	scale := l.dpi / pointsPerInch
	l.mu.Lock()
	for i, d := range dims {
		l.sizes[sizeKey(page.Path, i+1)] = geometry.PageSize{Width: d.Width * scale, Height: d.Height * scale}
	}
	l.mu.Unlock()

	d := dims[page.PDFPage-1]
	return geometry.PageSize{Width: d.Width * scale, Height: d.Height * scale}, nil
}
