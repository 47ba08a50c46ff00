package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultBufferSize is the copy buffer size used when none is configured
const DefaultBufferSize = 65536

// Local is a filesystem-based storage backend rooted at a directory
type Local struct {
	rootPath   string
	bufferSize int
}

// NewLocal creates a new local filesystem backend with the default
// copy buffer size
func NewLocal(rootPath string) (*Local, error) {
	return NewLocalBuffered(rootPath, DefaultBufferSize)
}

// NewLocalBuffered creates a local backend using the given copy buffer
// size for writes. A size of zero or less falls back to the default.
func NewLocalBuffered(rootPath string, bufferSize int) (*Local, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", absPath)
	}

	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Local{rootPath: absPath, bufferSize: bufferSize}, nil
}

// Root returns the absolute root path
func (l *Local) Root() string {
	return l.rootPath
}

// Walk visits every regular file under the root in filesystem enumeration
// order. Entries that vanish or deny access between listing and stat are
// reported through onError and skipped.
func (l *Local) Walk(ctx context.Context, fn WalkFunc, onError ErrorFunc) error {
	return filepath.WalkDir(l.rootPath, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if onError != nil {
				onError(p, err)
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if onError != nil {
				onError(p, err)
			}
			return nil
		}

		relPath, err := filepath.Rel(l.rootPath, p)
		if err != nil {
			if onError != nil {
				onError(p, err)
			}
			return nil
		}

		return fn(FileInfo{
			Path:         p,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			RelativePath: relPath,
		})
	})
}

// Read opens a file for reading
func (l *Local) Read(ctx context.Context, relPath string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(l.rootPath, relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Write creates or overwrites a file
func (l *Local) Write(ctx context.Context, relPath string, reader io.Reader, size int64, metadata *FileInfo) error {
	fullPath := filepath.Join(l.rootPath, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.CopyBuffer(file, reader, make([]byte, l.bufferSize))
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if written != size {
		return fmt.Errorf("incomplete write: expected %d bytes, wrote %d", size, written)
	}

	if metadata != nil && !metadata.ModTime.IsZero() {
		if err := os.Chtimes(fullPath, metadata.ModTime, metadata.ModTime); err != nil {
			return fmt.Errorf("failed to set modification time: %w", err)
		}
	}

	return nil
}

// Stat returns file metadata
func (l *Local) Stat(ctx context.Context, relPath string) (*FileInfo, error) {
	fullPath := filepath.Join(l.rootPath, relPath)

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return &FileInfo{
		Path:         fullPath,
		Size:         info.Size(),
		ModTime:      info.ModTime(),
		RelativePath: relPath,
	}, nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, relPath string) error {
	if err := os.MkdirAll(filepath.Join(l.rootPath, relPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}
