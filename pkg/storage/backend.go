package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file under a backend root
type FileInfo struct {
	Path         string
	Size         int64
	ModTime      time.Time
	RelativePath string
}

// WalkFunc is called once per regular file during Walk.
// Returning an error aborts the walk.
type WalkFunc func(info FileInfo) error

// ErrorFunc is called for entries that could not be accessed during Walk.
// The failing entry is skipped and the walk continues.
type ErrorFunc func(path string, err error)

// Backend defines the interface for tree storage operations.
// The local filesystem is the only implementation today; network shares
// would slot in behind the same interface.
type Backend interface {
	// Root returns the absolute root path of the backend
	Root() string

	// Walk visits every regular file under the root in enumeration order.
	// Per-entry access failures are reported through onError and skipped;
	// they never abort the walk.
	Walk(ctx context.Context, fn WalkFunc, onError ErrorFunc) error

	// Read opens a file for reading, addressed by relative path
	Read(ctx context.Context, relPath string) (io.ReadCloser, error)

	// Write creates or overwrites a file, creating parent directories as
	// needed. If metadata is provided, the modification time is preserved
	// on the copy.
	Write(ctx context.Context, relPath string, reader io.Reader, size int64, metadata *FileInfo) error

	// Stat returns file metadata, addressed by relative path
	Stat(ctx context.Context, relPath string) (*FileInfo, error)

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, relPath string) error

	// Close releases any resources held by the backend
	Close() error
}
