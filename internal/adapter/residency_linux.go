//go:build linux

package adapter

import (
	"fmt"
	"unsafe"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

func systemPageSize() int {
	return unix.Getpagesize()
}

type fdFile interface {
	Fd() uintptr
}

// LocalResidencyAdapter maps files with mmap(2) and queries them with mincore(2).
type LocalResidencyAdapter struct{}

// NewLocalResidencyAdapter constructs a LocalResidencyAdapter.
func NewLocalResidencyAdapter() *LocalResidencyAdapter {
	return &LocalResidencyAdapter{}
}

// Map maps the whole file read-only and private.
func (a *LocalResidencyAdapter) Map(file afero.File, length int64) (*Mapping, error) {
	if length <= 0 {
		return nil, ErrEmptyMapping
	}

	if length > int64(^uint(0)>>1) {
		return nil, &MappingError{Op: "map", Err: fmt.Errorf("file too large to map (%d bytes)", length)}
	}

	f, ok := file.(fdFile)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotMappable, file.Name())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(length), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, &MappingError{Op: "map", Err: err}
	}

	return NewMapping(data, length), nil
}

// QueryResidency calls mincore(2) on the sub-range of the mapping. The range
// is a view into the parent mapping; it is not mapped or unmapped on its own.
func (a *LocalResidencyAdapter) QueryResidency(mapping *Mapping, startPage, pageCount uint64, vec []byte) error {
	if mapping.Released() {
		return &MappingError{Op: "mincore", Err: ErrInvalidRange}
	}

	if err := mapping.CheckRange(startPage, pageCount, vec); err != nil {
		return err
	}

	ps := uint64(PageSize())
	begin := startPage * ps
	end := min((startPage+pageCount)*ps, uint64(mapping.length))

	if err := mincore(mapping.data[begin:end], vec[:pageCount]); err != nil {
		return &MappingError{Op: "mincore", Err: err}
	}

	return nil
}

// mincore fills vec with one byte per page of b. x/sys/unix has no wrapper
// for it on linux.
func mincore(b, vec []byte) error {
	if len(b) == 0 || len(vec) == 0 {
		return unix.EINVAL
	}

	_, _, errno := unix.Syscall(
		unix.SYS_MINCORE,
		uintptr(unsafe.Pointer(&b[0])),
		uintptr(len(b)),
		uintptr(unsafe.Pointer(&vec[0])),
	)
	if errno != 0 {
		return errno
	}

	return nil
}

// Unmap releases the mapping.
func (a *LocalResidencyAdapter) Unmap(mapping *Mapping) error {
	data, live := mapping.Release()
	if !live || data == nil {
		return nil
	}

	if err := unix.Munmap(data); err != nil {
		return &MappingError{Op: "unmap", Err: err}
	}

	return nil
}
