package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/smeyers/driftscan/pkg/index"
	"github.com/smeyers/driftscan/pkg/logging"
	"github.com/smeyers/driftscan/pkg/models"
	"github.com/smeyers/driftscan/pkg/storage"
)

// Scanner indexes two directory trees and classifies their differences.
// A scan is a single synchronous pass; the caller is responsible for
// running it off any interactive foreground context.
type Scanner struct {
	logger   logging.Logger
	excludes []string
}

// NewScanner creates a scanner. The logger receives per-file access
// warnings during indexing; a nil logger silences them.
func NewScanner(logger logging.Logger, excludes []string) *Scanner {
	return &Scanner{
		logger:   logger,
		excludes: excludes,
	}
}

// Scan indexes the destination and source roots and returns the
// classification. Cancellation is checked between files and aborts the
// scan with no result.
func (s *Scanner) Scan(ctx context.Context, destRoot, sourceRoot string, deepScan bool) (*models.ScanResult, error) {
	destTree, err := s.indexRoot(ctx, destRoot, "destination")
	if err != nil {
		return nil, err
	}

	sourceTree, err := s.indexRoot(ctx, sourceRoot, "source")
	if err != nil {
		return nil, err
	}

	result := Classify(destTree, sourceTree, deepScan, time.Now())
	result.ID = uuid.New().String()

	if s.logger != nil {
		s.logger.Info(ctx, "scan completed", logging.Fields{
			"scan_id":   result.ID,
			"new":       len(result.NewFiles),
			"modified":  len(result.ModifiedFiles),
			"missing":   len(result.MissingFiles),
			"duplicate": len(result.DuplicateLocations),
			"deep_scan": deepScan,
		})
	}

	return result, nil
}

func (s *Scanner) indexRoot(ctx context.Context, root, role string) (*index.Tree, error) {
	backend, err := storage.NewLocal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s directory: %w", role, err)
	}
	defer backend.Close()

	if s.logger != nil {
		s.logger.Info(ctx, "indexing directory", logging.Fields{
			"role": role,
			"path": backend.Root(),
		})
	}

	tree, err := index.NewIndexer(backend, s.logger, s.excludes).Index(ctx)
	if err != nil {
		return nil, err
	}

	return tree, nil
}
