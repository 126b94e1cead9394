package domain

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
)

// fakeResidency reports a fixed set of resident pages per file name and
// records how it was called.
type fakeResidency struct {
	resident map[string]map[uint64]bool
	failOn   map[string]error
	names    map[*adapter.Mapping]string
	queries  []chunkQuery
	maps     int
	unmaps   int
}

type chunkQuery struct {
	start uint64
	count uint64
}

func newFakeResidency() *fakeResidency {
	return &fakeResidency{
		resident: map[string]map[uint64]bool{},
		failOn:   map[string]error{},
		names:    map[*adapter.Mapping]string{},
	}
}

func (f *fakeResidency) setResident(name string, pages ...uint64) {
	set := make(map[uint64]bool, len(pages))
	for _, p := range pages {
		set[p] = true
	}

	f.resident[name] = set
}

func (f *fakeResidency) Map(file afero.File, length int64) (*adapter.Mapping, error) {
	if length <= 0 {
		return nil, adapter.ErrEmptyMapping
	}

	f.maps++
	mapping := adapter.NewMapping(nil, length)
	f.names[mapping] = file.Name()

	return mapping, nil
}

func (f *fakeResidency) QueryResidency(mapping *adapter.Mapping, startPage, pageCount uint64, vec []byte) error {
	if err := mapping.CheckRange(startPage, pageCount, vec); err != nil {
		return err
	}

	name := f.names[mapping]
	if err := f.failOn[name]; err != nil {
		return err
	}

	f.queries = append(f.queries, chunkQuery{start: startPage, count: pageCount})

	pages := f.resident[name]
	for i := uint64(0); i < pageCount; i++ {
		vec[i] = 0
		if pages[startPage+i] {
			vec[i] = 1
		}
	}

	return nil
}

func (f *fakeResidency) Unmap(mapping *adapter.Mapping) error {
	if _, live := mapping.Release(); live {
		f.unmaps++
	}

	delete(f.names, mapping)

	return nil
}

// writeMemFile creates a file spanning the given number of pages.
func writeMemFile(t *testing.T, fs afero.Fs, path string, pages int) {
	t.Helper()

	size := pages * adapter.PageSize()
	require.NoError(t, afero.WriteFile(fs, path, bytes.Repeat([]byte{'x'}, size), 0o644))
}
