package scan

import (
	"time"

	"github.com/smeyers/driftscan/pkg/index"
	"github.com/smeyers/driftscan/pkg/models"
)

// Classify compares a destination tree against a source tree and buckets
// every file into new, modified, missing, or relocated-duplicate.
//
// Matching runs in two passes. The first pass joins on relative path:
// same path with equal size is unchanged (size equality is the sole
// criterion, timestamps are ignored), same path with different size is a
// delta. The second pass, only when deepScan is set, retries source
// entries that found no path match against the destination's
// (size, filename) index; every match yields a duplicate pair, so a
// single source file can produce several. Relocation lookup never runs
// from the destination side: missing files stay missing regardless of
// composite-key matches elsewhere.
//
// Output ordering follows each tree's walk discovery order.
func Classify(dest, source *index.Tree, deepScan bool, scanTime time.Time) *models.ScanResult {
	var (
		newFiles      []*models.FileEntry
		modifiedFiles []*models.FileDelta
		duplicates    []models.DuplicatePair
		unmatched     []*models.FileEntry
	)

	// First pass: join source entries on relative path
	for _, relPath := range source.Order {
		sourceEntry := source.ByPath[relPath]
		destEntry, ok := dest.Lookup(relPath)
		if !ok {
			unmatched = append(unmatched, sourceEntry)
			continue
		}
		if sourceEntry.Size != destEntry.Size {
			modifiedFiles = append(modifiedFiles, models.NewFileDelta(sourceEntry, destEntry))
		}
	}

	// Second pass: relocation lookup for path-unmatched source entries
	if deepScan {
		for _, sourceEntry := range unmatched {
			matches := dest.LookupSizeName(sourceEntry.Size, sourceEntry.Filename)
			if len(matches) == 0 {
				newFiles = append(newFiles, sourceEntry)
				continue
			}
			for _, destEntry := range matches {
				duplicates = append(duplicates, models.DuplicatePair{
					Source: sourceEntry,
					Dest:   destEntry,
				})
			}
		}
	} else {
		newFiles = unmatched
	}

	// Missing files: destination paths absent from the source tree
	var missingFiles []*models.FileEntry
	for _, relPath := range dest.Order {
		if _, ok := source.Lookup(relPath); !ok {
			missingFiles = append(missingFiles, dest.ByPath[relPath])
		}
	}

	return &models.ScanResult{
		NewFiles:           newFiles,
		ModifiedFiles:      modifiedFiles,
		MissingFiles:       missingFiles,
		DuplicateLocations: duplicates,
		ScanTime:           scanTime.Format("2006-01-02 15:04:05"),
		DestinationPath:    dest.Root,
		SourcePath:         source.Root,
		DeepScanPerformed:  deepScan,
	}
}
