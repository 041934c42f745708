// Package store keeps accepted page annotations so a page that was already
// segmented can be served again without re-running the engine.
package store

import (
	"context"
	"errors"

	"github.com/jackzampolin/folio/internal/segmentation"
)

// ErrNotFound is returned when no annotation is stored for a page.
var ErrNotFound = errors.New("annotation not found")

// Store persists page annotations keyed by book and page id.
type Store interface {
	// Save stores the annotation for a page, replacing any previous one.
	Save(ctx context.Context, bookID, pageID int, a *segmentation.PageAnnotations) error

	// Load returns the stored annotation for a page or ErrNotFound.
	Load(ctx context.Context, bookID, pageID int) (*segmentation.PageAnnotations, error)

	// SegmentedPages returns the ids of pages with a stored annotation, ascending.
	SegmentedPages(ctx context.Context, bookID int) ([]int, error)

	// Delete removes the stored annotation for a page. Missing pages are not an error.
	Delete(ctx context.Context, bookID, pageID int) error

	// Close releases any connection held by the store.
	Close() error
}
