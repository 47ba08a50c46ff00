package scan

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/smeyers/driftscan/pkg/index"
	"github.com/smeyers/driftscan/pkg/models"
)

var baseTime = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func entry(root, relPath string, size int64, modTime time.Time) *models.FileEntry {
	return models.NewFileEntry(filepath.Join(root, relPath), size, modTime, relPath)
}

func buildTree(root string, entries ...*models.FileEntry) *index.Tree {
	tree := &index.Tree{
		Root:       root,
		ByPath:     make(map[string]*models.FileEntry),
		BySizeName: make(map[index.SizeNameKey][]*models.FileEntry),
	}
	for _, e := range entries {
		tree.ByPath[e.RelativePath] = e
		key := index.SizeNameKey{Size: e.Size, Name: e.Filename}
		tree.BySizeName[key] = append(tree.BySizeName[key], e)
		tree.Order = append(tree.Order, e.RelativePath)
	}
	return tree
}

func TestClassifyUnchanged(t *testing.T) {
	// Same path, same size: no record, even with differing timestamps
	dest := buildTree("/dest", entry("/dest", "a/doc.txt", 100, baseTime))
	source := buildTree("/src", entry("/src", "a/doc.txt", 100, baseTime.Add(time.Hour)))

	result := Classify(dest, source, true, baseTime)

	if result.TotalChanges() != 0 {
		t.Errorf("TotalChanges() = %d, want 0", result.TotalChanges())
	}
}

func TestClassifyModified(t *testing.T) {
	dest := buildTree("/dest", entry("/dest", "a/doc.txt", 100, baseTime))
	source := buildTree("/src", entry("/src", "a/doc.txt", 120, baseTime.Add(time.Hour)))

	result := Classify(dest, source, true, baseTime)

	if len(result.ModifiedFiles) != 1 {
		t.Fatalf("ModifiedFiles = %d entries, want 1", len(result.ModifiedFiles))
	}
	delta := result.ModifiedFiles[0]
	if delta.Source.Size != 120 || delta.Dest.Size != 100 {
		t.Errorf("delta sizes = (%d, %d), want (120, 100)", delta.Source.Size, delta.Dest.Size)
	}
	if !delta.IsNewer {
		t.Error("IsNewer should be true when source mtime is after dest mtime")
	}
	if len(result.NewFiles) != 0 || len(result.MissingFiles) != 0 || len(result.DuplicateLocations) != 0 {
		t.Error("a size difference at the same path must only produce a delta")
	}
}

func TestClassifyRelocatedDuplicate(t *testing.T) {
	dest := buildTree("/dest", entry("/dest", "old/report.pdf", 500, baseTime))
	source := buildTree("/src", entry("/src", "new/report.pdf", 500, baseTime))

	t.Run("DeepScan", func(t *testing.T) {
		result := Classify(dest, source, true, baseTime)

		if len(result.NewFiles) != 0 {
			t.Errorf("NewFiles = %d entries, want 0", len(result.NewFiles))
		}
		if len(result.DuplicateLocations) != 1 {
			t.Fatalf("DuplicateLocations = %d entries, want 1", len(result.DuplicateLocations))
		}
		pair := result.DuplicateLocations[0]
		if pair.Source.RelativePath != "new/report.pdf" {
			t.Errorf("pair source = %s, want new/report.pdf", pair.Source.RelativePath)
		}
		if pair.Dest.RelativePath != "old/report.pdf" {
			t.Errorf("pair dest = %s, want old/report.pdf", pair.Dest.RelativePath)
		}
		// The relocated destination file still counts as missing at its path
		if len(result.MissingFiles) != 1 {
			t.Errorf("MissingFiles = %d entries, want 1", len(result.MissingFiles))
		}
	})

	t.Run("ShallowScan", func(t *testing.T) {
		result := Classify(dest, source, false, baseTime)

		if len(result.DuplicateLocations) != 0 {
			t.Errorf("DuplicateLocations = %d entries, want 0 without deep scan", len(result.DuplicateLocations))
		}
		if len(result.NewFiles) != 1 || result.NewFiles[0].RelativePath != "new/report.pdf" {
			t.Errorf("NewFiles = %v, want [new/report.pdf]", result.NewFiles)
		}
		if result.DeepScanPerformed {
			t.Error("DeepScanPerformed should be false")
		}
	})
}

func TestClassifyMultipleDuplicateMatches(t *testing.T) {
	// One source file matching two destination entries yields two pairs
	dest := buildTree("/dest",
		entry("/dest", "a/report.pdf", 500, baseTime),
		entry("/dest", "b/report.pdf", 500, baseTime),
	)
	source := buildTree("/src", entry("/src", "c/report.pdf", 500, baseTime))

	result := Classify(dest, source, true, baseTime)

	if len(result.DuplicateLocations) != 2 {
		t.Fatalf("DuplicateLocations = %d entries, want 2", len(result.DuplicateLocations))
	}
	if result.DuplicateLocations[0].Dest.RelativePath != "a/report.pdf" ||
		result.DuplicateLocations[1].Dest.RelativePath != "b/report.pdf" {
		t.Errorf("pairs out of discovery order: %s, %s",
			result.DuplicateLocations[0].Dest.RelativePath,
			result.DuplicateLocations[1].Dest.RelativePath)
	}
	if len(result.NewFiles) != 0 {
		t.Error("a source file with duplicate matches must not be classified new")
	}
}

func TestClassifyMissing(t *testing.T) {
	dest := buildTree("/dest", entry("/dest", "temp.log", 50, baseTime))
	source := buildTree("/src")

	for _, deep := range []bool{true, false} {
		result := Classify(dest, source, deep, baseTime)
		if len(result.MissingFiles) != 1 || result.MissingFiles[0].RelativePath != "temp.log" {
			t.Errorf("deepScan=%v: MissingFiles = %v, want [temp.log]", deep, result.MissingFiles)
		}
	}
}

func TestClassifyMissingNeverReclassified(t *testing.T) {
	// A dest-only file whose (size, filename) matches an unrelated source
	// file at the same path stays missing; relocation lookup only runs
	// from unmatched source entries.
	dest := buildTree("/dest", entry("/dest", "archive/data.bin", 300, baseTime))
	source := buildTree("/src", entry("/src", "other/data.bin", 300, baseTime))

	result := Classify(dest, source, true, baseTime)

	if len(result.MissingFiles) != 1 {
		t.Errorf("MissingFiles = %d entries, want 1", len(result.MissingFiles))
	}
	// The source side of that same match is a relocation candidate
	if len(result.DuplicateLocations) != 1 {
		t.Errorf("DuplicateLocations = %d entries, want 1", len(result.DuplicateLocations))
	}
}

func TestClassifyBucketsAreExclusive(t *testing.T) {
	// Every source entry lands in exactly one of new/modified/duplicate
	dest := buildTree("/dest",
		entry("/dest", "same.txt", 10, baseTime),
		entry("/dest", "changed.txt", 20, baseTime),
		entry("/dest", "old/moved.dat", 30, baseTime),
		entry("/dest", "gone.txt", 40, baseTime),
	)
	source := buildTree("/src",
		entry("/src", "same.txt", 10, baseTime),
		entry("/src", "changed.txt", 25, baseTime.Add(time.Minute)),
		entry("/src", "new/moved.dat", 30, baseTime),
		entry("/src", "brand-new.txt", 5, baseTime),
	)

	result := Classify(dest, source, true, baseTime)

	if len(result.NewFiles) != 1 || result.NewFiles[0].RelativePath != "brand-new.txt" {
		t.Errorf("NewFiles = %v", result.NewFiles)
	}
	if len(result.ModifiedFiles) != 1 || result.ModifiedFiles[0].Source.RelativePath != "changed.txt" {
		t.Errorf("ModifiedFiles unexpected")
	}
	if len(result.DuplicateLocations) != 1 || result.DuplicateLocations[0].Source.RelativePath != "new/moved.dat" {
		t.Errorf("DuplicateLocations unexpected")
	}
	if len(result.MissingFiles) != 2 {
		t.Errorf("MissingFiles = %d entries, want 2 (old/moved.dat, gone.txt)", len(result.MissingFiles))
	}
}

func TestClassifyOrderingIsDeterministic(t *testing.T) {
	entries := []*models.FileEntry{
		entry("/src", "z.txt", 1, baseTime),
		entry("/src", "a.txt", 2, baseTime),
		entry("/src", "m.txt", 3, baseTime),
	}
	source := buildTree("/src", entries...)
	dest := buildTree("/dest")

	result := Classify(dest, source, false, baseTime)

	// New-file ordering follows walk discovery order, not lexical order
	want := []string{"z.txt", "a.txt", "m.txt"}
	for i, rel := range want {
		if result.NewFiles[i].RelativePath != rel {
			t.Errorf("NewFiles[%d] = %s, want %s", i, result.NewFiles[i].RelativePath, rel)
		}
	}
}

func TestClassifyMetadata(t *testing.T) {
	dest := buildTree("/dest")
	source := buildTree("/src")

	result := Classify(dest, source, true, time.Date(2024, 5, 10, 9, 30, 15, 0, time.UTC))

	if result.ScanTime != "2024-05-10 09:30:15" {
		t.Errorf("ScanTime = %s", result.ScanTime)
	}
	if result.DestinationPath != "/dest" || result.SourcePath != "/src" {
		t.Errorf("roots = (%s, %s)", result.DestinationPath, result.SourcePath)
	}
	if !result.DeepScanPerformed {
		t.Error("DeepScanPerformed should be true")
	}
}
