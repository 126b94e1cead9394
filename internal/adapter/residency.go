package adapter

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/afero"
)

// Sentinel errors returned by residency adapters.
var (
	ErrEmptyMapping         = errors.New("cannot map a zero-length range")
	ErrResidencyUnsupported = errors.New("page residency queries are not supported on this platform")
	ErrNotMappable          = errors.New("file has no descriptor to map")
	ErrInvalidRange         = errors.New("residency range outside mapping")
)

// MappingError describes a failed mapping operation.
type MappingError struct {
	Op  string
	Err error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return "mmap: " + e.Op + ": " + e.Err.Error()
	}

	return "mmap: " + e.Op
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// pageSize is resolved on first use and never changes afterwards.
var pageSize = sync.OnceValue(systemPageSize)

// PageSize returns the system page size in bytes.
func PageSize() int {
	return pageSize()
}

// PageCount returns how many pages are needed to cover length bytes.
func PageCount(length int64) uint64 {
	if length <= 0 {
		return 0
	}

	ps := uint64(PageSize())

	return (uint64(length) + ps - 1) / ps
}

// Mapping is a read-only view of a file's bytes over [0, Len()).
// It is owned by a single scan and must be released with Unmap.
type Mapping struct {
	data     []byte
	length   int64
	released bool
}

// NewMapping wraps data mapped for a file of the given length. Adapters that
// do not map real memory may pass nil data.
func NewMapping(data []byte, length int64) *Mapping {
	return &Mapping{data: data, length: length}
}

// Len returns the mapped length in bytes.
func (m *Mapping) Len() int64 {
	return m.length
}

// Pages returns the number of pages spanned by the mapping.
func (m *Mapping) Pages() uint64 {
	return PageCount(m.length)
}

// Released reports whether the mapping has been unmapped.
func (m *Mapping) Released() bool {
	return m.released
}

// Release marks the mapping as released and hands back the mapped bytes.
// The second result is false when the mapping was already released.
func (m *Mapping) Release() ([]byte, bool) {
	if m.released {
		return nil, false
	}

	data := m.data
	m.data = nil
	m.released = true

	return data, true
}

// CheckRange validates a page range against the mapping and the bitmap.
func (m *Mapping) CheckRange(startPage, pageCount uint64, vec []byte) error {
	total := m.Pages()
	if pageCount == 0 || startPage >= total || pageCount > total-startPage {
		return fmt.Errorf("%w: pages [%d,%d) of %d", ErrInvalidRange, startPage, startPage+pageCount, total)
	}

	if uint64(len(vec)) < pageCount {
		return fmt.Errorf("%w: bitmap holds %d pages, need %d", ErrInvalidRange, len(vec), pageCount)
	}

	return nil
}

// ResidencyAdapter hides the platform primitives used to ask the kernel which
// pages of a file are in the page cache.
type ResidencyAdapter interface {
	// Map maps [0, length) of file read-only. length must be positive.
	Map(file afero.File, length int64) (*Mapping, error)

	// QueryResidency fills vec[:pageCount] with one byte per page of the
	// range starting at startPage; a nonzero byte means resident.
	QueryResidency(mapping *Mapping, startPage, pageCount uint64, vec []byte) error

	// Unmap releases the mapping. Calling it on a released mapping is a no-op.
	Unmap(mapping *Mapping) error
}
