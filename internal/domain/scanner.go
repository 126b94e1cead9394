package domain

import (
	"context"
	"fmt"
	"log/slog"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// DefaultChunkPages is the number of pages queried per residency call. At a
// 4 KiB page size one chunk covers 4 GiB of file and needs a 1 MiB bitmap.
const DefaultChunkPages uint64 = 1 << 20

// PageVisitor receives resident page indices in ascending order. Returning an
// error stops the scan.
type PageVisitor func(page m.PageIndex) error

// Scanner reports which pages of a file are resident in the page cache.
type Scanner interface {
	Scan(ctx context.Context, entry m.FileEntry, visit PageVisitor) error
}

type scanner struct {
	fsAdapter        adapter.SnapshotFSAdapter
	residencyAdapter adapter.ResidencyAdapter
	chunkPages       uint64
}

// NewScanner constructs a Scanner. A chunkPages of zero selects
// DefaultChunkPages.
func NewScanner(fsAdapter adapter.SnapshotFSAdapter, residencyAdapter adapter.ResidencyAdapter, chunkPages uint64) Scanner {
	if chunkPages == 0 {
		chunkPages = DefaultChunkPages
	}

	return &scanner{
		fsAdapter:        fsAdapter,
		residencyAdapter: residencyAdapter,
		chunkPages:       chunkPages,
	}
}

// Scan maps the file, queries residency chunk by chunk and calls visit for
// every resident page. The mapping is released exactly once on every path.
func (s *scanner) Scan(ctx context.Context, entry m.FileEntry, visit PageVisitor) (err error) {
	if entry.Size <= 0 {
		return fmt.Errorf("scan %s: %w", entry.Path, adapter.ErrEmptyMapping)
	}

	file, err := s.fsAdapter.Open(ctx, entry.Path)
	if err != nil {
		slog.Error("Failed to open file", "path", entry.Path, "error", err)
		return fmt.Errorf("open %s: %w", entry.Path, err)
	}

	defer func() {
		_ = file.Close()
	}()

	mapping, err := s.residencyAdapter.Map(file, entry.Size)
	if err != nil {
		slog.Error("Failed to map file", "path", entry.Path, "size", entry.Size, "error", err)
		return fmt.Errorf("map %s: %w", entry.Path, err)
	}

	defer func() {
		if unmapErr := s.residencyAdapter.Unmap(mapping); unmapErr != nil && err == nil {
			slog.Error("Failed to unmap file", "path", entry.Path, "error", unmapErr)
			err = fmt.Errorf("unmap %s: %w", entry.Path, unmapErr)
		}
	}()

	return s.scanChunks(entry.Path, mapping, visit)
}

func (s *scanner) scanChunks(path m.Path, mapping *adapter.Mapping, visit PageVisitor) error {
	total := mapping.Pages()
	vec := make([]byte, min(s.chunkPages, total))

	for start := uint64(0); start < total; start += s.chunkPages {
		count := min(s.chunkPages, total-start)
		chunk := vec[:count]

		if err := s.residencyAdapter.QueryResidency(mapping, start, count, chunk); err != nil {
			slog.Error("Residency query failed", "path", path, "startPage", start, "pages", count, "error", err)
			return fmt.Errorf("query residency %s pages [%d,%d): %w", path, start, start+count, err)
		}

		for offset, state := range chunk {
			if state == 0 {
				continue
			}

			if err := visit(m.PageIndex(start + uint64(offset))); err != nil {
				return err
			}
		}
	}

	return nil
}
