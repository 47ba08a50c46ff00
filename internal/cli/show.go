package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smeyers/driftscan/pkg/output"
	"github.com/smeyers/driftscan/pkg/store"
)

// ShowFlags holds show command flags
type ShowFlags struct {
	OutputDir string
	Output    string
}

var showFlags ShowFlags

// NewShowCommand creates the show command
func NewShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the saved scan result",
		RunE:  runShow,
	}

	cmd.Flags().StringVarP(&showFlags.OutputDir, "output-dir", "O", "", "directory holding the scan result (default: current directory)")
	cmd.Flags().StringVarP(&showFlags.Output, "output", "o", "", "output format: human, json")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if showFlags.OutputDir != "" {
		cfg.Scan.OutputDir = showFlags.OutputDir
	}
	if cfg.Scan.OutputDir == "" {
		cfg.Scan.OutputDir = "."
	}
	if showFlags.Output != "" {
		cfg.Output.Format = showFlags.Output
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

	return formatter.ScanResult(os.Stdout, result)
}
