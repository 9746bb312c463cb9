// Package cli provides the command-line interface for ssi.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/milosgajdos/go-oma/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	cfgFile string
	verbose bool

	// Global config and logger
	cfg     config.Config
	logger  *slog.Logger
	cleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ssi",
	Short: "Output-only modal identification",
	Long: `ssi identifies natural frequencies, damping ratios and mode shapes of
vibrating structures from output-only time histories using Stochastic
Subspace Identification.

It sweeps model orders, labels pole stability across consecutive orders,
builds the stabilization diagram and extracts modal estimates close to
target frequencies.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if verbose {
			cfg.Log.Level = "DEBUG"
		}

		logger, cleanup = config.SetupLogger(cfg.Log.File, cfg.LogLevel())

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cleanup != nil {
			if err := cleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
			cleanup = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML run configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(identifyCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}
