package graph

import (
	"errors"
	"fmt"
)

// Default pagination values
const (
	DefaultPage    = 1
	DefaultPerPage = 50
	MaxPerPage     = 100
)

// ErrPerPageTooLarge indicates the requested page size exceeds the maximum
var ErrPerPageTooLarge = errors.New("per_page exceeds maximum limit")

// Page represents a page number (1-based)
type Page uint64

// ParsePageFromUint64 creates a Page from a uint64 value with default handling
func ParsePageFromUint64(page uint64) Page {
	if page == 0 {
		return Page(DefaultPage)
	}

	return Page(page)
}

// Uint64 returns the page number as uint64
func (p Page) Uint64() uint64 {
	return uint64(p)
}

// PerPage represents the number of items per page
type PerPage uint64

// ParsePerPageFromUint64 creates a PerPage from a uint64 value with validation
func ParsePerPageFromUint64(perPage uint64) (PerPage, error) {
	if perPage == 0 {
		return PerPage(DefaultPerPage), nil
	}

	if perPage > MaxPerPage {
		return 0, fmt.Errorf("%w: must be between 1 and %d", ErrPerPageTooLarge, MaxPerPage)
	}

	return PerPage(perPage), nil
}

// Uint64 returns the per page value as uint64
func (pp PerPage) Uint64() uint64 {
	return uint64(pp)
}

// IndexersPage represents a page of indexer results with navigation metadata
type IndexersPage struct {
	Indexers []Indexer
	HasMore  bool    // True if more results exist after this page
	Number   Page    // Current page number
	Size     PerPage // Page size
}

// HasNext returns true when more results exist after this page
func (p *IndexersPage) HasNext() bool {
	return p.HasMore
}

// HasPrevious returns true when this is not the first page
func (p *IndexersPage) HasPrevious() bool {
	return p.Number > 1
}
