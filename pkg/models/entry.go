package models

import (
	"fmt"
	"path/filepath"
	"time"
)

// FileEntry represents a single file observed while indexing a tree.
// Entries are value objects: a re-scan produces fresh entries, it never
// mutates existing ones.
type FileEntry struct {
	// Path is the absolute path on the filesystem
	Path string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// RelativePath is the path relative to the indexed root.
	// It is the join key used to match files across the two trees.
	RelativePath string

	// Filename is the base name, used only as part of the
	// (size, filename) composite key for relocation detection.
	Filename string
}

// NewFileEntry builds a FileEntry, deriving Filename from the path.
func NewFileEntry(path string, size int64, modTime time.Time, relativePath string) *FileEntry {
	return &FileEntry{
		Path:         path,
		Size:         size,
		ModTime:      modTime,
		RelativePath: relativePath,
		Filename:     filepath.Base(path),
	}
}

// SizeString returns a human-readable file size
func (e *FileEntry) SizeString() string {
	size := float64(e.Size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f PB", size)
}

// ModTimeString returns a human-readable modification date
func (e *FileEntry) ModTimeString() string {
	return e.ModTime.Format("2006-01-02 15:04:05")
}

// FileDelta pairs a source entry and a destination entry that occupy the
// same relative path but differ in size.
type FileDelta struct {
	// Source is the file in the source tree
	Source *FileEntry

	// Dest is the file in the destination tree
	Dest *FileEntry

	// IsNewer is true when the source modification time is strictly
	// after the destination's. Equal timestamps resolve to false.
	// This is the only timestamp-derived field in the model.
	IsNewer bool
}

// NewFileDelta builds a FileDelta and derives the IsNewer flag.
func NewFileDelta(source, dest *FileEntry) *FileDelta {
	return &FileDelta{
		Source:  source,
		Dest:    dest,
		IsNewer: source.ModTime.After(dest.ModTime),
	}
}

// DuplicatePair pairs a source entry with a destination entry that matched
// on (size, filename) at a different relative path.
type DuplicatePair struct {
	Source *FileEntry
	Dest   *FileEntry
}
