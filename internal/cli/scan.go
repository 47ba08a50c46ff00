package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smeyers/driftscan/pkg/output"
	"github.com/smeyers/driftscan/pkg/scan"
	"github.com/smeyers/driftscan/pkg/store"
)

// ScanFlags holds scan command flags
type ScanFlags struct {
	Dest      string
	Source    string
	Deep      bool
	OutputDir string
	Output    string
	Exclude   []string
	LogFile   string
	LogFormat string
	LogLevel  string
}

var scanFlags ScanFlags

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Compare a destination tree against a source tree",
		Long: `Index both directory trees, classify the differences (new, modified,
missing, relocated duplicates) and save the result for a later apply.`,
		RunE: runScan,
	}

	// Required flags
	cmd.Flags().StringVarP(&scanFlags.Dest, "dest", "d", "", "destination directory path (required)")
	cmd.Flags().StringVarP(&scanFlags.Source, "source", "s", "", "source directory path (required)")
	cmd.MarkFlagRequired("dest")
	cmd.MarkFlagRequired("source")

	// Optional flags
	cmd.Flags().BoolVar(&scanFlags.Deep, "deep", false, "detect files relocated to a different directory")
	cmd.Flags().StringVarP(&scanFlags.OutputDir, "output-dir", "O", "", "directory for the scan result and logs (default: current directory)")
	cmd.Flags().StringVarP(&scanFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringSliceVar(&scanFlags.Exclude, "exclude", []string{}, "glob patterns to exclude")

	// Logging flags
	cmd.Flags().StringVar(&scanFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&scanFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&scanFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := validateTreePair(scanFlags.Dest, scanFlags.Source); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if cmd.Flags().Changed("deep") {
		cfg.Scan.DeepScan = scanFlags.Deep
	}
	if scanFlags.OutputDir != "" {
		cfg.Scan.OutputDir = scanFlags.OutputDir
	}
	if cfg.Scan.OutputDir == "" {
		cfg.Scan.OutputDir = "."
	}
	if scanFlags.Output != "" {
		cfg.Output.Format = scanFlags.Output
	}
	if len(scanFlags.Exclude) > 0 {
		cfg.Exclude = scanFlags.Exclude
	}
	if scanFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = scanFlags.LogFile
	}
	if scanFlags.LogFormat != "" {
		cfg.Logging.Format = scanFlags.LogFormat
	}
	if scanFlags.LogLevel != "" {
		cfg.Logging.Level = scanFlags.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	formatter, err := output.NewFormatter(cfg.Output.Format)
	if err != nil {
		return err
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	scanner := scan.NewScanner(logger, cfg.Exclude)
	result, err := scanner.Scan(ctx, scanFlags.Dest, scanFlags.Source, cfg.Scan.DeepScan)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	path, err := store.Save(result, cfg.Scan.OutputDir)
	if err != nil {
		return fmt.Errorf("failed to save scan result: %w", err)
	}

	if !quietMode(cfg) {
		if err := formatter.ScanResult(os.Stdout, result); err != nil {
			return err
		}
		if formatter.Name() == "human" {
			fmt.Printf("\nScan result saved to: %s\n", path)
		}
	}

	return nil
}
