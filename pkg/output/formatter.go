package output

import (
	"fmt"
	"io"
	"time"

	"github.com/smeyers/driftscan/pkg/models"
)

// ApplyReport summarizes the outcome of an apply run
type ApplyReport struct {
	Updated  int
	Errors   []models.CopyError
	Duration time.Duration
}

// Formatter defines the interface for rendering scan and apply results
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// ScanResult renders a scan result summary
	ScanResult(writer io.Writer, result *models.ScanResult) error

	// ApplyResult renders the outcome of an apply run
	ApplyResult(writer io.Writer, report *ApplyReport) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter for the given name
func NewFormatter(name string) (Formatter, error) {
	switch name {
	case "human", "":
		return NewHumanFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (valid: human, json)", name)
	}
}

// formatBytes formats bytes in human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
