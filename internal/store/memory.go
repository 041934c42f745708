package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/jackzampolin/folio/internal/segmentation"
)

// MemoryStore keeps annotations in process memory. Annotations are stored
// encoded so callers never share state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	books map[int]map[int][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{books: make(map[int]map[int][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, bookID, pageID int, a *segmentation.PageAnnotations) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode annotation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	pages, ok := s.books[bookID]
	if !ok {
		pages = make(map[int][]byte)
		s.books[bookID] = pages
	}
	pages[pageID] = data
	return nil
}

func (s *MemoryStore) Load(_ context.Context, bookID, pageID int) (*segmentation.PageAnnotations, error) {
	s.mu.RLock()
	data, ok := s.books[bookID][pageID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: book %d page %d", ErrNotFound, bookID, pageID)
	}
	var a segmentation.PageAnnotations
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode annotation: %w", err)
	}
	return &a, nil
}

func (s *MemoryStore) SegmentedPages(_ context.Context, bookID int) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int, 0, len(s.books[bookID]))
	for id := range s.books[bookID] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) Delete(_ context.Context, bookID, pageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books[bookID], pageID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
