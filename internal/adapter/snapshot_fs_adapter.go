// Package adapter contains the infrastructure adapters used by the snapshot
// pipeline: filesystem access, page residency queries and snapshot storage.
package adapter

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	m "cachesnap.dev/pkg/cachesnap/internal/model"
)

// SnapshotFSAdapter abstracts filesystem access for the walker and scanner so
// the domain logic can run against an in-memory filesystem in tests.
type SnapshotFSAdapter interface {
	// ReadDir lists the immediate entries of a directory. Entry metadata does
	// not follow symlinks.
	ReadDir(ctx context.Context, path m.Path) ([]os.FileInfo, error)

	// Lstat returns metadata for path without following a trailing symlink
	// when the underlying filesystem supports it.
	Lstat(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Stat returns metadata for path, following symlinks.
	Stat(ctx context.Context, path m.Path) (os.FileInfo, error)

	// Open opens a file for reading.
	Open(ctx context.Context, path m.Path) (afero.File, error)

	// JoinPath appends elem to dir without cleaning dir, so a relative root
	// keeps its "./" prefix.
	JoinPath(dir string, elem ...string) m.Path
}

// LocalSnapshotFSAdapter implements SnapshotFSAdapter on top of an afero.Fs.
type LocalSnapshotFSAdapter struct {
	fs afero.Fs
}

// NewLocalSnapshotFSAdapter constructs an adapter over the OS filesystem.
func NewLocalSnapshotFSAdapter() *LocalSnapshotFSAdapter {
	return NewSnapshotFSAdapter(afero.NewOsFs())
}

// NewSnapshotFSAdapter constructs an adapter over the provided filesystem.
func NewSnapshotFSAdapter(fs afero.Fs) *LocalSnapshotFSAdapter {
	return &LocalSnapshotFSAdapter{fs: fs}
}

// ReadDir lists the entries of path, sorted by name.
func (a *LocalSnapshotFSAdapter) ReadDir(ctx context.Context, path m.Path) ([]os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return afero.ReadDir(a.fs, string(path))
}

// Lstat returns metadata for path.
func (a *LocalSnapshotFSAdapter) Lstat(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if lstater, ok := a.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(string(path))
		return info, err
	}

	return a.fs.Stat(string(path))
}

// Stat returns metadata for path after resolving symlinks.
func (a *LocalSnapshotFSAdapter) Stat(ctx context.Context, path m.Path) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.fs.Stat(string(path))
}

// Open opens path for reading.
func (a *LocalSnapshotFSAdapter) Open(ctx context.Context, path m.Path) (afero.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return a.fs.Open(string(path))
}

// JoinPath appends elem to dir separated by the path separator. Unlike
// filepath.Join it leaves dir untouched: "." and "a.txt" give "./a.txt".
func (a *LocalSnapshotFSAdapter) JoinPath(dir string, elem ...string) m.Path {
	sep := string(filepath.Separator)
	path := dir

	for _, e := range elem {
		if path != "" && !strings.HasSuffix(path, sep) {
			path += sep
		}

		path += e
	}

	return m.Path(path)
}
