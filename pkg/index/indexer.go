package index

import (
	"context"
	"fmt"

	"github.com/smeyers/driftscan/pkg/logging"
	"github.com/smeyers/driftscan/pkg/models"
	"github.com/smeyers/driftscan/pkg/storage"
)

// SizeNameKey is the composite key used to detect relocated files:
// files that moved keep their size and base name.
type SizeNameKey struct {
	Size int64
	Name string
}

// Tree holds the two indices produced by indexing one root directory.
// Order records relative paths in walk discovery order; classification
// output ordering is pinned to it, never to map iteration order.
type Tree struct {
	// Root is the absolute root the tree was indexed from
	Root string

	// ByPath maps relative path to its entry. Relative path is a unique
	// key within one tree: each file yields exactly one relative path.
	ByPath map[string]*models.FileEntry

	// BySizeName maps (size, filename) to every entry with that key.
	// Collisions are expected and all surfaced.
	BySizeName map[SizeNameKey][]*models.FileEntry

	// Order lists relative paths in discovery order
	Order []string
}

// Len returns the number of indexed files
func (t *Tree) Len() int {
	return len(t.Order)
}

// Lookup returns the entry at a relative path, if present
func (t *Tree) Lookup(relPath string) (*models.FileEntry, bool) {
	entry, ok := t.ByPath[relPath]
	return entry, ok
}

// LookupSizeName returns every entry matching the composite key
func (t *Tree) LookupSizeName(size int64, name string) []*models.FileEntry {
	return t.BySizeName[SizeNameKey{Size: size, Name: name}]
}

// Indexer walks a root directory and builds its Tree.
// Indexing is a single sequential pass; per-file access failures are
// reported through the logger and skipped, never aborting the walk.
type Indexer struct {
	backend  storage.Backend
	logger   logging.Logger
	excludes []string
}

// NewIndexer creates an indexer over a storage backend
func NewIndexer(backend storage.Backend, logger logging.Logger, excludes []string) *Indexer {
	return &Indexer{
		backend:  backend,
		logger:   logger,
		excludes: excludes,
	}
}

// Index walks the backend root and returns the populated Tree.
// Cancellation is checked between files; a cancelled walk returns the
// context error and no tree.
func (ix *Indexer) Index(ctx context.Context) (*Tree, error) {
	tree := &Tree{
		Root:       ix.backend.Root(),
		ByPath:     make(map[string]*models.FileEntry),
		BySizeName: make(map[SizeNameKey][]*models.FileEntry),
	}

	err := ix.backend.Walk(ctx, func(info storage.FileInfo) error {
		if shouldExclude(info.RelativePath, ix.excludes) {
			return nil
		}

		entry := models.NewFileEntry(info.Path, info.Size, info.ModTime, info.RelativePath)
		tree.ByPath[entry.RelativePath] = entry

		key := SizeNameKey{Size: entry.Size, Name: entry.Filename}
		tree.BySizeName[key] = append(tree.BySizeName[key], entry)

		tree.Order = append(tree.Order, entry.RelativePath)
		return nil
	}, func(path string, err error) {
		if ix.logger != nil {
			ix.logger.Warn(ctx, "skipping inaccessible file", logging.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index %s: %w", ix.backend.Root(), err)
	}

	return tree, nil
}
