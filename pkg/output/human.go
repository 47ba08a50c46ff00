package output

import (
	"fmt"
	"io"
	"time"

	"github.com/smeyers/driftscan/pkg/models"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct{}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter() *HumanFormatter {
	return &HumanFormatter{}
}

// ScanResult renders a scan result summary
func (f *HumanFormatter) ScanResult(writer io.Writer, result *models.ScanResult) error {
	if writer == nil {
		writer = io.Discard
	}

	fmt.Fprintf(writer, "Scan completed at %s\n", result.ScanTime)
	fmt.Fprintf(writer, "Destination: %s\n", result.DestinationPath)
	fmt.Fprintf(writer, "Source:      %s\n", result.SourcePath)
	if result.DeepScanPerformed {
		fmt.Fprintf(writer, "Deep scan:   yes\n")
	} else {
		fmt.Fprintf(writer, "Deep scan:   no\n")
	}
	fmt.Fprintf(writer, "\n")
	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  New files:       %d\n", len(result.NewFiles))
	fmt.Fprintf(writer, "  Modified files:  %d\n", len(result.ModifiedFiles))
	fmt.Fprintf(writer, "  Missing files:   %d\n", len(result.MissingFiles))
	fmt.Fprintf(writer, "  Duplicates:      %d\n", len(result.DuplicateLocations))

	if len(result.NewFiles) > 0 {
		fmt.Fprintf(writer, "\nNew files:\n")
		for _, entry := range result.NewFiles {
			fmt.Fprintf(writer, "  %s (%s)\n", entry.RelativePath, entry.SizeString())
		}
	}

	if len(result.ModifiedFiles) > 0 {
		fmt.Fprintf(writer, "\nModified files:\n")
		for i, delta := range result.ModifiedFiles {
			marker := ""
			if delta.IsNewer {
				marker = " [source is newer]"
			}
			fmt.Fprintf(writer, "  [%d] %s: %s -> %s%s\n",
				i, delta.Source.RelativePath,
				delta.Dest.SizeString(), delta.Source.SizeString(), marker)
		}
	}

	if len(result.MissingFiles) > 0 {
		fmt.Fprintf(writer, "\nMissing from source:\n")
		for _, entry := range result.MissingFiles {
			fmt.Fprintf(writer, "  %s (%s)\n", entry.RelativePath, entry.SizeString())
		}
	}

	if len(result.DuplicateLocations) > 0 {
		fmt.Fprintf(writer, "\nRelocated duplicates:\n")
		for _, pair := range result.DuplicateLocations {
			fmt.Fprintf(writer, "  %s  (exists at %s)\n",
				pair.Source.RelativePath, pair.Dest.RelativePath)
		}
	}

	return nil
}

// ApplyResult renders the outcome of an apply run
func (f *HumanFormatter) ApplyResult(writer io.Writer, report *ApplyReport) error {
	if writer == nil {
		writer = io.Discard
	}

	fmt.Fprintf(writer, "Update completed in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(writer, "Files updated: %d\n", report.Updated)

	if len(report.Errors) > 0 {
		fmt.Fprintf(writer, "\nErrors (%d):\n", len(report.Errors))
		for _, copyErr := range report.Errors {
			fmt.Fprintf(writer, "  %s: %v\n", copyErr.RelativePath, copyErr.Err)
		}
	}

	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}
