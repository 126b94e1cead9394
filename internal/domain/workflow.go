// Package domain holds the snapshot pipeline: directory walking, residency
// scanning, delta encoding and the workflow that ties them together.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"cachesnap.dev/pkg/cachesnap/internal/adapter"
	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// DumpArgs holds the arguments for a dump run.
type DumpArgs struct {
	Root       m.Path
	Output     m.Path
	ChunkPages uint64
	Sink       adapter.SinkOptions

	// Exclude lists files the dump must not scan, such as its own log.
	Exclude []m.Path
}

// InspectArgs holds the arguments for decoding an existing snapshot.
type InspectArgs struct {
	Snapshot m.Path
}

// Workflow runs the user-facing operations.
type Workflow interface {
	Dump(ctx context.Context, args DumpArgs) (m.Stats, error)
	Inspect(ctx context.Context, args InspectArgs) ([]m.Block, error)
}

type workflow struct {
	adapter.SnapshotFSAdapter
	adapter.ResidencyAdapter
	adapter.SnapshotStore
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SnapshotFSAdapter,
	residencyAdapter adapter.ResidencyAdapter,
	store adapter.SnapshotStore,
) Workflow {
	return &workflow{
		SnapshotFSAdapter: fsAdapter,
		ResidencyAdapter:  residencyAdapter,
		SnapshotStore:     store,
	}
}

// Dump walks args.Root and writes a snapshot of resident pages to
// args.Output. The sink is finished only when the whole walk succeeds; any
// error aborts it and is returned unchanged.
func (w *workflow) Dump(ctx context.Context, args DumpArgs) (m.Stats, error) {
	var stats m.Stats

	slog.Info("Starting snapshot", "root", args.Root, "output", args.Output, "chunkPages", args.ChunkPages)

	sink, err := w.SnapshotStore.Create(ctx, args.Output, args.Sink)
	if err != nil {
		return stats, err
	}

	walkStats, err := w.walkInto(ctx, args, sink, &stats)
	stats.Directories = walkStats.Directories
	stats.FilesSeen = walkStats.FilesSeen
	stats.FilesSkipped = walkStats.FilesSkipped

	if err != nil {
		if abortErr := sink.Abort(); abortErr != nil {
			slog.Error("Failed to abort snapshot", "output", args.Output, "error", abortErr)
		}

		slog.Error("Snapshot failed", "root", args.Root, "error", err)

		return stats, err
	}

	if err := sink.Finish(); err != nil {
		return stats, err
	}

	slog.Info("Snapshot written",
		"output", args.Output,
		"files", stats.FilesScanned,
		"filesWithResidency", stats.FilesWithResidency,
		"residentPages", stats.ResidentPages,
	)

	return stats, nil
}

func (w *workflow) walkInto(ctx context.Context, args DumpArgs, sink adapter.SnapshotSink, stats *m.Stats) (WalkStats, error) {
	scanner := NewScanner(w.SnapshotFSAdapter, w.ResidencyAdapter, args.ChunkPages)
	walker := NewWalker(w.SnapshotFSAdapter)
	excluded := newExclusions(args)

	return walker.Walk(ctx, args.Root, func(entry m.FileEntry) error {
		if excluded.match(entry.Path) {
			slog.Debug("Skipping excluded file", "path", entry.Path)
			return nil
		}

		encoder := NewDeltaEncoder(sink, entry.Path)
		if err := scanner.Scan(ctx, entry, encoder.Encode); err != nil {
			return err
		}

		stats.FilesScanned++
		stats.ScannedBytes += uint64(entry.Size)
		stats.ResidentPages += encoder.Pages()

		if encoder.Wrote() {
			stats.FilesWithResidency++
		}

		slog.Debug("Scanned file", "path", entry.Path, "size", entry.Size, "residentPages", encoder.Pages())

		return nil
	})
}

// exclusions matches the files a dump writes while it runs. Both sides are
// compared as absolute paths so a relative --output still matches an
// absolute root.
type exclusions struct {
	exact   map[string]struct{}
	rotated []rotatedName
}

// rotatedName matches backups of a rotated log, "<stem>-<stamp><ext>" with an
// optional ".gz", in the log's directory.
type rotatedName struct {
	dir    string
	prefix string
	ext    string
}

func newExclusions(args DumpArgs) exclusions {
	out := absPath(string(args.Output))
	ex := exclusions{
		exact: map[string]struct{}{
			out:                      {},
			out + adapter.TempSuffix: {},
		},
	}

	for _, path := range args.Exclude {
		abs := absPath(string(path))
		ex.exact[abs] = struct{}{}

		base := filepath.Base(abs)
		ext := filepath.Ext(base)
		ex.rotated = append(ex.rotated, rotatedName{
			dir:    filepath.Dir(abs),
			prefix: strings.TrimSuffix(base, ext) + "-",
			ext:    ext,
		})
	}

	return ex
}

func (e exclusions) match(path m.Path) bool {
	abs := absPath(string(path))
	if _, ok := e.exact[abs]; ok {
		return true
	}

	dir, base := filepath.Split(abs)
	dir = filepath.Clean(dir)

	for _, r := range e.rotated {
		if dir != r.dir || !strings.HasPrefix(base, r.prefix) {
			continue
		}

		if strings.HasSuffix(base, r.ext) || strings.HasSuffix(base, r.ext+".gz") {
			return true
		}
	}

	return false
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}

// Inspect decompresses and decodes an existing snapshot.
func (w *workflow) Inspect(ctx context.Context, args InspectArgs) ([]m.Block, error) {
	src, err := w.SnapshotStore.Open(ctx, args.Snapshot)
	if err != nil {
		slog.Error("Failed to open snapshot", "path", args.Snapshot, "error", err)
		return nil, err
	}

	defer func() {
		_ = src.Close()
	}()

	var blocks []m.Block

	err = DecodeSnapshot(src, func(block m.Block) error {
		blocks = append(blocks, block)
		return nil
	})
	if err != nil {
		slog.Error("Failed to decode snapshot", "path", args.Snapshot, "error", err)
		return nil, fmt.Errorf("decode %s: %w", args.Snapshot, err)
	}

	return blocks, nil
}
