package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/smeyers/driftscan/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct{}

// JSONScanData represents a scan result summary in JSON
type JSONScanData struct {
	ScanID            string              `json:"scan_id"`
	ScanTime          string              `json:"scan_time"`
	DestinationPath   string              `json:"destination_path"`
	SourcePath        string              `json:"source_path"`
	DeepScanPerformed bool                `json:"performed_deep_scan"`
	Counts            JSONScanCounts      `json:"counts"`
	NewFiles          []JSONFileData      `json:"new_files,omitempty"`
	ModifiedFiles     []JSONDeltaData     `json:"modified_files,omitempty"`
	MissingFiles      []JSONFileData      `json:"missing_files,omitempty"`
	Duplicates        []JSONDuplicateData `json:"duplicate_locations,omitempty"`
}

// JSONScanCounts represents per-category totals
type JSONScanCounts struct {
	New        int `json:"new"`
	Modified   int `json:"modified"`
	Missing    int `json:"missing"`
	Duplicates int `json:"duplicates"`
	Total      int `json:"total"`
}

// JSONFileData represents a file entry in JSON
type JSONFileData struct {
	RelativePath string `json:"relative_path"`
	Size         int64  `json:"size"`
	ModTime      string `json:"mod_time"`
}

// JSONDeltaData represents a modified file pair in JSON
type JSONDeltaData struct {
	Source  JSONFileData `json:"source"`
	Dest    JSONFileData `json:"dest"`
	IsNewer bool         `json:"is_newer"`
}

// JSONDuplicateData represents a relocated duplicate pair in JSON
type JSONDuplicateData struct {
	Source JSONFileData `json:"source"`
	Dest   JSONFileData `json:"dest"`
}

// JSONApplyData represents an apply outcome in JSON
type JSONApplyData struct {
	Updated    int             `json:"updated"`
	Duration   string          `json:"duration"`
	DurationMs int64           `json:"duration_ms"`
	Errors     []JSONErrorData `json:"errors,omitempty"`
}

// JSONErrorData represents a per-file copy error
type JSONErrorData struct {
	RelativePath string `json:"relative_path"`
	Op           string `json:"op"`
	Error        string `json:"error"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func toFileData(entry *models.FileEntry) JSONFileData {
	return JSONFileData{
		RelativePath: entry.RelativePath,
		Size:         entry.Size,
		ModTime:      entry.ModTime.Format(time.RFC3339),
	}
}

// ScanResult renders a scan result summary as JSON
func (f *JSONFormatter) ScanResult(writer io.Writer, result *models.ScanResult) error {
	if writer == nil {
		writer = os.Stdout
	}

	data := JSONScanData{
		ScanID:            result.ID,
		ScanTime:          result.ScanTime,
		DestinationPath:   result.DestinationPath,
		SourcePath:        result.SourcePath,
		DeepScanPerformed: result.DeepScanPerformed,
		Counts: JSONScanCounts{
			New:        len(result.NewFiles),
			Modified:   len(result.ModifiedFiles),
			Missing:    len(result.MissingFiles),
			Duplicates: len(result.DuplicateLocations),
			Total:      result.TotalChanges(),
		},
	}

	for _, entry := range result.NewFiles {
		data.NewFiles = append(data.NewFiles, toFileData(entry))
	}
	for _, delta := range result.ModifiedFiles {
		data.ModifiedFiles = append(data.ModifiedFiles, JSONDeltaData{
			Source:  toFileData(delta.Source),
			Dest:    toFileData(delta.Dest),
			IsNewer: delta.IsNewer,
		})
	}
	for _, entry := range result.MissingFiles {
		data.MissingFiles = append(data.MissingFiles, toFileData(entry))
	}
	for _, pair := range result.DuplicateLocations {
		data.Duplicates = append(data.Duplicates, JSONDuplicateData{
			Source: toFileData(pair.Source),
			Dest:   toFileData(pair.Dest),
		})
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ApplyResult renders the outcome of an apply run as JSON
func (f *JSONFormatter) ApplyResult(writer io.Writer, report *ApplyReport) error {
	if writer == nil {
		writer = os.Stdout
	}

	data := JSONApplyData{
		Updated:    report.Updated,
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
	}
	for _, copyErr := range report.Errors {
		data.Errors = append(data.Errors, JSONErrorData{
			RelativePath: copyErr.RelativePath,
			Op:           copyErr.Op,
			Error:        copyErr.Err.Error(),
		})
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
