package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smeyers/driftscan/internal/platform"
	"github.com/smeyers/driftscan/pkg/config"
	"github.com/smeyers/driftscan/pkg/logging"
)

// validateTreePair validates the destination/source directory pair
func validateTreePair(dest, source string) error {
	for _, pair := range []struct {
		role string
		path string
	}{
		{"destination", dest},
		{"source", source},
	} {
		if err := platform.ValidatePath(pair.path); err != nil {
			return fmt.Errorf("invalid %s path: %w", pair.role, err)
		}

		info, err := os.Stat(pair.path)
		if os.IsNotExist(err) {
			return fmt.Errorf("%s path does not exist: %s", pair.role, pair.path)
		} else if err != nil {
			return fmt.Errorf("failed to access %s path: %w", pair.role, err)
		} else if !info.IsDir() {
			return fmt.Errorf("%s path exists but is not a directory: %s", pair.role, pair.path)
		}
	}

	destAbs, err := filepath.Abs(platform.NormalizePath(dest))
	if err != nil {
		return fmt.Errorf("failed to resolve destination path: %w", err)
	}

	sourceAbs, err := filepath.Abs(platform.NormalizePath(source))
	if err != nil {
		return fmt.Errorf("failed to resolve source path: %w", err)
	}

	if destAbs == sourceAbs {
		return fmt.Errorf("destination and source cannot be the same: %s", destAbs)
	}

	if strings.HasPrefix(destAbs, sourceAbs+string(filepath.Separator)) {
		return fmt.Errorf("destination cannot be inside source directory")
	}
	if strings.HasPrefix(sourceAbs, destAbs+string(filepath.Separator)) {
		return fmt.Errorf("source cannot be inside destination directory")
	}

	return nil
}

// quietMode reports whether non-error output is suppressed, by the
// -q flag or the output.quiet config setting
func quietMode(cfg *config.Config) bool {
	return globalFlags.Quiet || cfg.Output.Quiet
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// parseBandwidth parses a bandwidth limit like "500K", "10M" or "1G"
// into bytes per second. An empty string means unlimited.
func parseBandwidth(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	multiplier := int64(1)
	num := s
	switch {
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		multiplier = 1024
		num = s[:len(s)-1]
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		multiplier = 1024 * 1024
		num = s[:len(s)-1]
	case strings.HasSuffix(s, "G"), strings.HasSuffix(s, "g"):
		multiplier = 1024 * 1024 * 1024
		num = s[:len(s)-1]
	}

	value, err := strconv.ParseInt(num, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid bandwidth limit: %s (use e.g. \"500K\", \"10M\", \"1G\")", s)
	}

	return value * multiplier, nil
}

// parseSelection parses a comma-separated list of modified file indexes
// like "0,2,5". An empty string selects all modified files (nil).
func parseSelection(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	selection := make([]int, 0, len(parts))
	for _, part := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid modified file index: %q", part)
		}
		selection = append(selection, i)
	}

	return selection, nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg *config.Config) (logging.Logger, error) {
	if !cfg.Logging.Enabled || cfg.Logging.File == "" {
		return logging.NewNullLogger(), nil
	}

	var format logging.Format
	switch cfg.Logging.Format {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	level := logging.ParseLevel(cfg.Logging.Level)
	if globalFlags.Verbose {
		level = logging.DebugLevel
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.Logging.File,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
}
