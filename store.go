package planner

import (
	"slices"

	"github.com/porticus-lab/go-planner/canvas"
)

// PageStore is the ordered collection of pages and the active index.
//
// Insertion order is page order, display order and export order; the store
// never reorders pages. A PageStore is not safe for concurrent use; [Editor]
// serializes access to it.
type PageStore struct {
	newID  func() string
	pages  []Page
	active int
}

// NewPageStore returns an empty store. newID generates page ids.
func NewPageStore(newID func() string) *PageStore {
	return &PageStore{newID: newID, active: -1}
}

// NewPage returns a fresh page with a unique id and no content. The store is
// not modified.
func (s *PageStore) NewPage() Page {
	return Page{ID: s.newID()}
}

// AppendAndActivate adds p at the end and makes it the active page.
func (s *PageStore) AppendAndActivate(p Page) {
	s.pages = append(s.pages, p)
	s.active = len(s.pages) - 1
}

// ReplaceAt swaps the snapshot and thumbnail of the page at index as one
// unit. It reports false and writes nothing if index is out of range.
func (s *PageStore) ReplaceAt(index int, snap canvas.Snapshot, thumb []byte) bool {
	if index < 0 || index >= len(s.pages) {
		return false
	}
	s.pages[index].Snapshot = snap
	s.pages[index].Thumbnail = thumb
	return true
}

// SetActive changes the active page. It does not capture or restore
// anything; that is the [Controller]'s job.
func (s *PageStore) SetActive(index int) error {
	if index < 0 || index >= len(s.pages) {
		return ErrPageOutOfRange
	}
	s.active = index
	return nil
}

// Active returns the active index, or -1 for an empty store.
func (s *PageStore) Active() int {
	return s.active
}

// Len returns the number of pages.
func (s *PageStore) Len() int {
	return len(s.pages)
}

// At returns the page at index.
func (s *PageStore) At(index int) (Page, bool) {
	if index < 0 || index >= len(s.pages) {
		return Page{}, false
	}
	return s.pages[index], true
}

// Pages returns a copy of the pages in order.
func (s *PageStore) Pages() []Page {
	return slices.Clone(s.pages)
}
