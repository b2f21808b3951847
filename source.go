package pdk

import (
	"io"
	"sync"
)

// Source is the interface for getting result pages one at a time.
// Implementations of Source should be thread safe and return io.EOF once
// there are no more pages.
type Source interface {
	Record() (*Page, error)
}

// SliceSource is a Source over an in-memory list of pages. It is safe for
// concurrent use.
type SliceSource struct {
	mu    sync.Mutex
	pages []*Page
	idx   int
}

// NewSliceSource returns a Source which yields pages in order.
func NewSliceSource(pages []*Page) *SliceSource {
	return &SliceSource{pages: pages}
}

// Record returns the next page, or io.EOF once all pages have been returned.
func (s *SliceSource) Record() (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idx >= len(s.pages) {
		return nil, io.EOF
	}
	p := s.pages[s.idx]
	s.idx++
	return p, nil
}

// NamedReadCloser is a ReadCloser which knows the name of the file or object
// it is reading.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
}
