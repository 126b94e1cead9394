// Package model defines the data structures shared by the snapshot pipeline.
package model

import "os"

// Path represents a file system path.
type Path string

// FileEntry is a single traversal result. It is built from metadata that
// does not follow symlinks, so a symlink is neither a directory nor a
// regular file.
type FileEntry struct {
	Path      Path
	IsDir     bool
	IsRegular bool
	Size      int64
}

// NewFileEntry classifies info found at path.
func NewFileEntry(path Path, info os.FileInfo) FileEntry {
	mode := info.Mode()

	return FileEntry{
		Path:      path,
		IsDir:     mode.IsDir(),
		IsRegular: mode.IsRegular(),
		Size:      info.Size(),
	}
}

// Scannable reports whether the entry should be fed to the residency scanner.
func (e FileEntry) Scannable() bool {
	return e.IsRegular && e.Size > 0
}
