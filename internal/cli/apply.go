package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/smeyers/driftscan/pkg/models"
	"github.com/smeyers/driftscan/pkg/output"
	"github.com/smeyers/driftscan/pkg/ratelimit"
	"github.com/smeyers/driftscan/pkg/store"
	"github.com/smeyers/driftscan/pkg/update"
)

// ApplyFlags holds apply command flags
type ApplyFlags struct {
	OutputDir  string
	Duplicates string
	Modified   string
	Output     string
	Bandwidth  string
	LogFile    string
	LogFormat  string
	LogLevel   string
}

var applyFlags ApplyFlags

// NewApplyCommand creates the apply command
func NewApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Copy the changes recorded by a previous scan",
		Long: `Load the saved scan result and copy new files, selected modified files
and, depending on policy, relocated duplicates from source to destination.`,
		RunE: runApply,
	}

	cmd.Flags().StringVarP(&applyFlags.OutputDir, "output-dir", "O", "", "directory holding the scan result and logs (default: current directory)")
	cmd.Flags().StringVar(&applyFlags.Duplicates, "duplicates", "", "what to do with relocated duplicates: copy, skip")
	cmd.Flags().StringVar(&applyFlags.Modified, "modified", "", "comma-separated indexes of modified files to update (default: all)")
	cmd.Flags().StringVarP(&applyFlags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVarP(&applyFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g. \"500K\", \"10M\")")

	// Logging flags
	cmd.Flags().StringVar(&applyFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&applyFlags.LogFormat, "log-format", "", "log format: text, json")
	cmd.Flags().StringVar(&applyFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if applyFlags.OutputDir != "" {
		cfg.Scan.OutputDir = applyFlags.OutputDir
	}
	if cfg.Scan.OutputDir == "" {
		cfg.Scan.OutputDir = "."
	}
	if applyFlags.Duplicates != "" {
		cfg.Update.DuplicatePolicy = models.DuplicatePolicy(applyFlags.Duplicates)
	}
	if applyFlags.Output != "" {
		cfg.Output.Format = applyFlags.Output
	}
	if applyFlags.Bandwidth != "" {
		limit, err := parseBandwidth(applyFlags.Bandwidth)
		if err != nil {
			return err
		}
		cfg.Performance.BandwidthLimit = limit
	}
	if applyFlags.LogFile != "" {
		cfg.Logging.Enabled = true
		cfg.Logging.File = applyFlags.LogFile
	}
	if applyFlags.LogFormat != "" {
		cfg.Logging.Format = applyFlags.LogFormat
	}
	if applyFlags.LogLevel != "" {
		cfg.Logging.Level = applyFlags.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	selection, err := parseSelection(applyFlags.Modified)
	if err != nil {
		return err
	}

	formatter, err := output.NewFormatter(cfg.Output.Format)
	if err != nil {
		return err
	}

	artifactPath := store.ArtifactPath(cfg.Scan.OutputDir)
	result, err := store.Load(artifactPath)
	if err != nil {
		return fmt.Errorf("failed to load scan result: %w", err)
	}
	if result == nil {
		return fmt.Errorf("no scan result found at %s (run 'driftscan scan' first)", artifactPath)
	}

	logger, err := createLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	limiter := ratelimit.NewLimiter(cfg.Performance.BandwidthLimit)
	updater := update.NewUpdater(logger, limiter)
	updater.SetBufferSize(cfg.Performance.BufferSize)

	// Progress bar for interactive human output
	var bar *pb.ProgressBar
	if cfg.Output.Progress && !quietMode(cfg) && formatter.Name() == "human" {
		total := len(result.NewFiles)
		if selection == nil {
			total += len(result.ModifiedFiles)
		} else {
			total += len(selection)
		}
		if result.DeepScanPerformed && cfg.Update.DuplicatePolicy == models.DuplicateCopy {
			total += len(result.DuplicateLocations)
		}
		if total > 0 {
			bar = pb.StartNew(total)
			updater.SetProgressCallback(func(relPath string) {
				bar.Increment()
			})
		}
	}

	start := time.Now()
	updated, copyErrs, err := updater.Apply(ctx, result, cfg.Scan.OutputDir, cfg.Update.DuplicatePolicy, selection)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	if !quietMode(cfg) {
		report := &output.ApplyReport{
			Updated:  updated,
			Errors:   copyErrs,
			Duration: time.Since(start),
		}
		if err := formatter.ApplyResult(os.Stdout, report); err != nil {
			return err
		}
	}

	if len(copyErrs) > 0 {
		os.Exit(1)
	}
	return nil
}
