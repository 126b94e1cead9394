//go:build !linux

package adapter

import (
	"os"

	"github.com/spf13/afero"
)

func systemPageSize() int {
	return os.Getpagesize()
}

// LocalResidencyAdapter reports ErrResidencyUnsupported on platforms without
// a wired mincore(2) implementation.
type LocalResidencyAdapter struct{}

// NewLocalResidencyAdapter constructs a LocalResidencyAdapter.
func NewLocalResidencyAdapter() *LocalResidencyAdapter {
	return &LocalResidencyAdapter{}
}

// Map always fails with ErrResidencyUnsupported.
func (a *LocalResidencyAdapter) Map(_ afero.File, length int64) (*Mapping, error) {
	if length <= 0 {
		return nil, ErrEmptyMapping
	}

	return nil, &MappingError{Op: "map", Err: ErrResidencyUnsupported}
}

// QueryResidency always fails with ErrResidencyUnsupported.
func (a *LocalResidencyAdapter) QueryResidency(_ *Mapping, _, _ uint64, _ []byte) error {
	return &MappingError{Op: "mincore", Err: ErrResidencyUnsupported}
}

// Unmap marks the mapping released.
func (a *LocalResidencyAdapter) Unmap(mapping *Mapping) error {
	mapping.Release()
	return nil
}
