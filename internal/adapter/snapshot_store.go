package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// ErrSinkClosed is returned when writing to or finishing a sink that has
// already been finished or aborted.
var ErrSinkClosed = errors.New("snapshot sink already closed")

// TempSuffix is appended to the destination name while an atomic sink is open.
const TempSuffix = ".tmp"

// SnapshotSink is a write-only, gzip-compressed destination for snapshot
// records. Exactly one of Finish or Abort ends its life.
type SnapshotSink interface {
	io.Writer

	// Finish flushes the compressor, writes the gzip trailer and closes the
	// destination.
	Finish() error

	// Abort closes the destination without a trailer. The output is left
	// non-decodable, or removed when the sink is atomic.
	Abort() error
}

// SinkOptions configures a SnapshotSink.
type SinkOptions struct {
	// Level is a gzip compression level. Zero means no compression, so
	// callers wanting the default pass gzip.DefaultCompression.
	Level int

	// Atomic writes to a temporary sibling file and renames it onto the
	// destination in Finish.
	Atomic bool
}

// DefaultSinkOptions returns the options used when nothing is configured.
func DefaultSinkOptions() SinkOptions {
	return SinkOptions{Level: gzip.DefaultCompression}
}

// SnapshotStore creates snapshot sinks and opens existing snapshots.
type SnapshotStore interface {
	Create(ctx context.Context, path m.Path, opts SinkOptions) (SnapshotSink, error)
	Open(ctx context.Context, path m.Path) (io.ReadCloser, error)
}

// GzipSnapshotStore stores snapshots as gzip streams on an afero.Fs.
type GzipSnapshotStore struct {
	fs afero.Fs
}

// NewSnapshotStore constructs a store over the OS filesystem.
func NewSnapshotStore() *GzipSnapshotStore {
	return NewGzipSnapshotStore(afero.NewOsFs())
}

// NewGzipSnapshotStore constructs a store over the provided filesystem.
func NewGzipSnapshotStore(fs afero.Fs) *GzipSnapshotStore {
	return &GzipSnapshotStore{fs: fs}
}

// Create creates or truncates the destination and returns a sink over it.
func (s *GzipSnapshotStore) Create(ctx context.Context, path m.Path, opts SinkOptions) (SnapshotSink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zw, err := gzip.NewWriterLevel(nil, opts.Level)
	if err != nil {
		return nil, fmt.Errorf("snapshot compressor: %w", err)
	}

	target := string(path)
	if opts.Atomic {
		target += TempSuffix
	}

	file, err := s.fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		slog.Error("Failed to create snapshot file", "path", target, "error", err)
		return nil, fmt.Errorf("create snapshot %s: %w", target, err)
	}

	zw.Reset(file)

	slog.Debug("Opened snapshot sink", "path", target, "level", opts.Level, "atomic", opts.Atomic)

	return &gzipSink{
		fs:     s.fs,
		file:   file,
		zw:     zw,
		path:   string(path),
		target: target,
		atomic: opts.Atomic,
	}, nil
}

// Open opens an existing snapshot for decompressed reading.
func (s *GzipSnapshotStore) Open(ctx context.Context, path m.Path) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := s.fs.Open(string(path))
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}

	zr, err := gzip.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("read snapshot header %s: %w", path, err)
	}

	return &gzipSource{file: file, zr: zr}, nil
}

type gzipSink struct {
	fs     afero.Fs
	file   afero.File
	zw     *gzip.Writer
	path   string
	target string
	atomic bool
	closed bool
}

// Write implements io.Writer.
func (s *gzipSink) Write(p []byte) (int, error) {
	if s.closed {
		return 0, ErrSinkClosed
	}

	return s.zw.Write(p)
}

// Finish implements SnapshotSink.
func (s *gzipSink) Finish() error {
	if s.closed {
		return ErrSinkClosed
	}

	s.closed = true

	if err := s.zw.Close(); err != nil {
		_ = s.file.Close()
		slog.Error("Failed to finalize snapshot", "path", s.target, "error", err)

		return fmt.Errorf("finalize snapshot: %w", err)
	}

	if err := s.file.Close(); err != nil {
		slog.Error("Failed to close snapshot", "path", s.target, "error", err)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if s.atomic {
		if err := s.fs.Rename(s.target, s.path); err != nil {
			slog.Error("Failed to publish snapshot", "from", s.target, "to", s.path, "error", err)
			return fmt.Errorf("publish snapshot: %w", err)
		}
	}

	slog.Debug("Finalized snapshot", "path", s.path)

	return nil
}

// Abort implements SnapshotSink.
func (s *gzipSink) Abort() error {
	if s.closed {
		return ErrSinkClosed
	}

	s.closed = true
	err := s.file.Close()

	if s.atomic {
		if rmErr := s.fs.Remove(s.target); rmErr != nil && err == nil {
			err = rmErr
		}
	}

	slog.Debug("Aborted snapshot", "path", s.target)

	return err
}

type gzipSource struct {
	file afero.File
	zr   *gzip.Reader
}

func (s *gzipSource) Read(p []byte) (int, error) {
	return s.zr.Read(p)
}

func (s *gzipSource) Close() error {
	zerr := s.zr.Close()
	if err := s.file.Close(); err != nil {
		return err
	}

	return zerr
}
