// Package store persists scan results as a versioned JSON artifact.
// One artifact lives per output directory under a canonical filename;
// each save overwrites the previous one, no history is kept.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smeyers/driftscan/pkg/models"
)

// ArtifactName is the canonical artifact filename inside an output directory
const ArtifactName = "scan_result.json"

// schemaVersion identifies the current document shape. Version 1 documents
// predate the field and carried modified files as flat file records.
const schemaVersion = 2

type fileRecord struct {
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ModifiedTime time.Time `json:"modified_time"`
	RelativePath string    `json:"relative_path"`
	Filename     string    `json:"filename"`
}

type deltaRecord struct {
	SourceFile fileRecord `json:"source_file"`
	DestFile   fileRecord `json:"dest_file"`
	IsNewer    bool       `json:"is_newer"`
}

type document struct {
	SchemaVersion      int               `json:"schema_version,omitempty"`
	ScanID             string            `json:"scan_id,omitempty"`
	NewFiles           []fileRecord      `json:"new_files"`
	ModifiedFiles      []json.RawMessage `json:"modified_files"`
	MissingFiles       []fileRecord      `json:"missing_files"`
	DuplicateLocations [][2]fileRecord   `json:"duplicate_locations"`
	ScanTime           string            `json:"scan_time"`
	DestinationPath    string            `json:"destination_path"`
	SourcePath         string            `json:"source_path"`
	PerformedDeepScan  bool              `json:"performed_deep_scan"`
}

// ArtifactPath returns the canonical artifact location for an output directory
func ArtifactPath(outputDir string) string {
	return filepath.Join(outputDir, ArtifactName)
}

// Save writes the scan result to outputDir, creating the directory if
// absent, and returns the artifact path. A prior artifact is overwritten.
func Save(result *models.ScanResult, outputDir string) (string, error) {
	if result == nil {
		return "", &models.ValidationError{Field: "result", Message: "no scan result supplied"}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	doc := document{
		SchemaVersion:      schemaVersion,
		ScanID:             result.ID,
		NewFiles:           toRecords(result.NewFiles),
		ModifiedFiles:      make([]json.RawMessage, 0, len(result.ModifiedFiles)),
		MissingFiles:       toRecords(result.MissingFiles),
		DuplicateLocations: make([][2]fileRecord, 0, len(result.DuplicateLocations)),
		ScanTime:           result.ScanTime,
		DestinationPath:    result.DestinationPath,
		SourcePath:         result.SourcePath,
		PerformedDeepScan:  result.DeepScanPerformed,
	}

	for _, delta := range result.ModifiedFiles {
		raw, err := json.Marshal(deltaRecord{
			SourceFile: toRecord(delta.Source),
			DestFile:   toRecord(delta.Dest),
			IsNewer:    delta.IsNewer,
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode modified file: %w", err)
		}
		doc.ModifiedFiles = append(doc.ModifiedFiles, raw)
	}

	for _, pair := range result.DuplicateLocations {
		doc.DuplicateLocations = append(doc.DuplicateLocations,
			[2]fileRecord{toRecord(pair.Source), toRecord(pair.Dest)})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode scan result: %w", err)
	}

	path := ArtifactPath(outputDir)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}

	return path, nil
}

// Load reads a scan result from an artifact path. A missing or malformed
// document is not an error: Load returns (nil, nil) and callers proceed as
// if no prior scan exists.
//
// Two document shapes are accepted: the current one, and a legacy shape
// whose modified_files entries are flat file records. Legacy records are
// reinterpreted as deltas with both sides set to the record and the newer
// flag defaulted to false.
func Load(path string) (*models.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil
	}

	result := &models.ScanResult{
		ID:                doc.ScanID,
		NewFiles:          fromRecords(doc.NewFiles),
		MissingFiles:      fromRecords(doc.MissingFiles),
		ScanTime:          doc.ScanTime,
		DestinationPath:   doc.DestinationPath,
		SourcePath:        doc.SourcePath,
		DeepScanPerformed: doc.PerformedDeepScan,
	}

	for _, raw := range doc.ModifiedFiles {
		delta, ok := decodeDelta(raw)
		if !ok {
			return nil, nil
		}
		result.ModifiedFiles = append(result.ModifiedFiles, delta)
	}

	for _, pair := range doc.DuplicateLocations {
		result.DuplicateLocations = append(result.DuplicateLocations, models.DuplicatePair{
			Source: fromRecord(pair[0]),
			Dest:   fromRecord(pair[1]),
		})
	}

	return result, nil
}

// decodeDelta handles both the current delta shape and the legacy flat
// file-record shape.
func decodeDelta(raw json.RawMessage) (*models.FileDelta, bool) {
	var probe struct {
		SourceFile *fileRecord `json:"source_file"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}

	if probe.SourceFile != nil {
		var rec deltaRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, false
		}
		return &models.FileDelta{
			Source:  fromRecord(rec.SourceFile),
			Dest:    fromRecord(rec.DestFile),
			IsNewer: rec.IsNewer,
		}, true
	}

	var rec fileRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	entry := fromRecord(rec)
	return &models.FileDelta{Source: entry, Dest: entry, IsNewer: false}, true
}

func toRecord(entry *models.FileEntry) fileRecord {
	return fileRecord{
		Path:         entry.Path,
		Size:         entry.Size,
		ModifiedTime: entry.ModTime,
		RelativePath: entry.RelativePath,
		Filename:     entry.Filename,
	}
}

func fromRecord(rec fileRecord) *models.FileEntry {
	return &models.FileEntry{
		Path:         rec.Path,
		Size:         rec.Size,
		ModTime:      rec.ModifiedTime,
		RelativePath: rec.RelativePath,
		Filename:     rec.Filename,
	}
}

func toRecords(entries []*models.FileEntry) []fileRecord {
	records := make([]fileRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, toRecord(e))
	}
	return records
}

func fromRecords(records []fileRecord) []*models.FileEntry {
	if len(records) == 0 {
		return nil
	}
	entries := make([]*models.FileEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, fromRecord(rec))
	}
	return entries
}
