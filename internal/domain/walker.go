package domain

import (
	"context"
	"fmt"
	"log/slog"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// EntryVisitor receives every non-empty regular file found by the walk.
type EntryVisitor func(entry m.FileEntry) error

// WalkStats counts what the walker saw.
type WalkStats struct {
	Directories  uint64
	FilesSeen    uint64
	FilesSkipped uint64
}

// Walker enumerates a directory tree depth-first, pre-order.
type Walker interface {
	Walk(ctx context.Context, root m.Path, visit EntryVisitor) (WalkStats, error)
}

type walker struct {
	adapter.SnapshotFSAdapter
}

// NewWalker constructs a Walker backed by the filesystem adapter.
func NewWalker(fsAdapter adapter.SnapshotFSAdapter) Walker {
	return &walker{SnapshotFSAdapter: fsAdapter}
}

// Walk lists root recursively. Directories are descended into before their
// later siblings; empty files and non-regular entries are skipped. The root
// itself may be a symlink to a directory; symlinks below it are not followed.
// The first error from listing, stat or visit aborts the walk.
func (w *walker) Walk(ctx context.Context, root m.Path, visit EntryVisitor) (WalkStats, error) {
	var stats WalkStats

	info, err := w.Stat(ctx, root)
	if err != nil {
		slog.Error("Failed to stat walk root", "root", root, "error", err)
		return stats, fmt.Errorf("stat %s: %w", root, err)
	}

	if !info.IsDir() {
		return stats, fmt.Errorf("walk root %s is not a directory", root)
	}

	err = w.walkDir(ctx, root, visit, &stats)

	return stats, err
}

func (w *walker) walkDir(ctx context.Context, dir m.Path, visit EntryVisitor, stats *WalkStats) error {
	stats.Directories++

	infos, err := w.ReadDir(ctx, dir)
	if err != nil {
		slog.Error("Failed to list directory", "dir", dir, "error", err)
		return fmt.Errorf("list %s: %w", dir, err)
	}

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}

		entry := m.NewFileEntry(w.JoinPath(string(dir), info.Name()), info)

		switch {
		case entry.IsDir:
			if err := w.walkDir(ctx, entry.Path, visit, stats); err != nil {
				return err
			}
		case entry.Scannable():
			stats.FilesSeen++

			if err := visit(entry); err != nil {
				return err
			}
		default:
			if entry.IsRegular {
				stats.FilesSeen++
			}

			stats.FilesSkipped++

			slog.Debug("Skipping entry", "path", entry.Path, "mode", info.Mode().String(), "size", entry.Size)
		}
	}

	return nil
}
