// Package update replays a scan result as copy operations against the
// destination tree. Per-file failures are collected, never raised; only
// precondition violations fail the whole call. The destination is assumed
// single-writer: concurrent applies against the same root are undefined.
package update

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/smeyers/driftscan/pkg/logging"
	"github.com/smeyers/driftscan/pkg/models"
	"github.com/smeyers/driftscan/pkg/ratelimit"
	"github.com/smeyers/driftscan/pkg/storage"
)

const (
	// UpdateLogName is the summary log written after every apply
	UpdateLogName = "update_log.txt"
	// DuplicatesLogName is the detail log written when deep scan found duplicates
	DuplicatesLogName = "duplicates_log.txt"
)

// Updater applies a scan result to the destination tree
type Updater struct {
	logger     logging.Logger
	limiter    *ratelimit.Limiter
	bufferSize int
	progress   func(relPath string)
}

// NewUpdater creates an updater. The limiter is optional and throttles
// copy throughput when set.
func NewUpdater(logger logging.Logger, limiter *ratelimit.Limiter) *Updater {
	return &Updater{
		logger:  logger,
		limiter: limiter,
	}
}

// SetBufferSize sets the copy buffer size used for file transfers.
// Zero or less means the storage default.
func (u *Updater) SetBufferSize(n int) {
	u.bufferSize = n
}

// SetProgressCallback registers a callback invoked once per attempted
// copy, successful or not. Used by front ends for progress display.
func (u *Updater) SetProgressCallback(fn func(relPath string)) {
	u.progress = fn
}

// Apply copies every new file, every selected modified file, and — when
// deep scan ran and the policy says copy — every relocated duplicate from
// the source tree to the destination tree. A nil selection means all
// modified files. It returns the count of successful copies and the
// per-file errors; partial failure never aborts the batch.
//
// Two plain-text logs are written under outputDir as side effects: the
// update summary after every apply, and the duplicate detail log whenever
// deep scan found duplicates.
func (u *Updater) Apply(ctx context.Context, result *models.ScanResult, outputDir string,
	policy models.DuplicatePolicy, selection []int) (int, []models.CopyError, error) {

	if result == nil {
		return 0, nil, &models.ValidationError{Field: "result", Message: "no scan result supplied"}
	}
	if !policy.Valid() {
		return 0, nil, &models.ValidationError{
			Field:   "policy",
			Message: fmt.Sprintf("duplicate policy must be %q or %q", models.DuplicateCopy, models.DuplicateSkip),
		}
	}

	selected, err := selectModified(result.ModifiedFiles, selection)
	if err != nil {
		return 0, nil, err
	}

	source, err := storage.NewLocalBuffered(result.SourcePath, u.bufferSize)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open source tree: %w", err)
	}
	defer source.Close()

	dest, err := storage.NewLocalBuffered(result.DestinationPath, u.bufferSize)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open destination tree: %w", err)
	}
	defer dest.Close()

	runID := uuid.New().String()
	updated := 0
	var errs []models.CopyError

	copyBatch := func(entries []*models.FileEntry, op string) error {
		for _, entry := range entries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err := u.copyFile(ctx, source, dest, entry.RelativePath); err != nil {
				errs = append(errs, models.CopyError{RelativePath: entry.RelativePath, Op: op, Err: err})
				if u.logger != nil {
					u.logger.Error(ctx, "copy failed", err, logging.Fields{
						"run_id":   runID,
						"op":       op,
						"rel_path": entry.RelativePath,
					})
				}
			} else {
				updated++
			}
			if u.progress != nil {
				u.progress(entry.RelativePath)
			}
		}
		return nil
	}

	modifiedEntries := make([]*models.FileEntry, 0, len(selected))
	for _, delta := range selected {
		modifiedEntries = append(modifiedEntries, delta.Source)
	}

	var duplicateEntries []*models.FileEntry
	if result.DeepScanPerformed && policy == models.DuplicateCopy {
		for _, pair := range result.DuplicateLocations {
			duplicateEntries = append(duplicateEntries, pair.Source)
		}
	}

	var cancelErr error
	for _, batch := range []struct {
		entries []*models.FileEntry
		op      string
	}{
		{result.NewFiles, "new"},
		{modifiedEntries, "modified"},
		{duplicateEntries, "duplicate"},
	} {
		if cancelErr = copyBatch(batch.entries, batch.op); cancelErr != nil {
			break
		}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return updated, errs, fmt.Errorf("failed to create output directory: %w", err)
	}

	if result.HasDuplicates() {
		if err := writeDuplicatesLog(outputDir, result, policy); err != nil {
			return updated, errs, err
		}
	}

	if err := writeUpdateLog(outputDir, result, runID, updated, len(selected), errs); err != nil {
		return updated, errs, err
	}

	if u.logger != nil {
		u.logger.Info(ctx, "update completed", logging.Fields{
			"run_id":  runID,
			"updated": updated,
			"errors":  len(errs),
		})
	}

	// Cancellation leaves already-copied files in place; the partial
	// count and error list still stand.
	return updated, errs, cancelErr
}

// selectModified resolves the selection against the modified list.
// A nil selection means all; an out-of-range index is caller misuse.
func selectModified(deltas []*models.FileDelta, selection []int) ([]*models.FileDelta, error) {
	if selection == nil {
		return deltas, nil
	}

	selected := make([]*models.FileDelta, 0, len(selection))
	for _, i := range selection {
		if i < 0 || i >= len(deltas) {
			return nil, &models.ValidationError{
				Field:   "selection",
				Message: fmt.Sprintf("modified file index %d out of range (0..%d)", i, len(deltas)-1),
			}
		}
		selected = append(selected, deltas[i])
	}
	return selected, nil
}

// copyFile streams one file from source to destination at the same
// relative path, creating parent directories and preserving the source
// modification time.
func (u *Updater) copyFile(ctx context.Context, source, dest storage.Backend, relPath string) error {
	info, err := source.Stat(ctx, relPath)
	if err != nil {
		return err
	}

	reader, err := source.Read(ctx, relPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	limited := ratelimit.NewReadCloser(ctx, reader, u.limiter)
	return dest.Write(ctx, relPath, limited, info.Size, info)
}

func writeDuplicatesLog(outputDir string, result *models.ScanResult, policy models.DuplicatePolicy) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Duplicate files found: %d\n\n", len(result.DuplicateLocations))
	for _, pair := range result.DuplicateLocations {
		fmt.Fprintf(&b, "File: %s (Size: %d bytes)\n", pair.Source.Filename, pair.Source.Size)
		fmt.Fprintf(&b, "  Source: %s\n", pair.Source.RelativePath)
		fmt.Fprintf(&b, "  Destination: %s\n\n", pair.Dest.RelativePath)
	}

	switch policy {
	case models.DuplicateCopy:
		b.WriteString("All duplicates were copied to their new locations.\n")
	case models.DuplicateSkip:
		b.WriteString("All duplicates were skipped (not copied).\n")
	}

	path := filepath.Join(outputDir, DuplicatesLogName)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write duplicates log: %w", err)
	}
	return nil
}

func writeUpdateLog(outputDir string, result *models.ScanResult, runID string,
	updated, modifiedSelected int, errs []models.CopyError) error {

	var b strings.Builder
	fmt.Fprintf(&b, "Update completed at: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Run ID: %s\n", runID)
	fmt.Fprintf(&b, "Files updated: %d\n", updated)
	fmt.Fprintf(&b, "New files: %d\n", len(result.NewFiles))
	fmt.Fprintf(&b, "Modified files updated: %d\n", modifiedSelected)
	if result.DeepScanPerformed {
		fmt.Fprintf(&b, "Duplicate files in different locations: %d\n", len(result.DuplicateLocations))
	}
	fmt.Fprintf(&b, "Errors encountered: %d\n\n", len(errs))

	if len(errs) > 0 {
		b.WriteString("ERROR DETAILS:\n")
		for _, e := range errs {
			fmt.Fprintf(&b, "- %s\n", e.Error())
		}
	}

	path := filepath.Join(outputDir, UpdateLogName)
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write update log: %w", err)
	}
	return nil
}
