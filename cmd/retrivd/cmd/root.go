// Package cmd provides the CLI commands for retrivd.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/retrivd/retrivd/internal/bridge"
	"github.com/retrivd/retrivd/internal/config"
	"github.com/retrivd/retrivd/internal/logging"
	"github.com/retrivd/retrivd/pkg/version"
)

// NewRootCmd creates the root command for the retrivd CLI.
func NewRootCmd() *cobra.Command {
	var configPath string
	var logLevel string
	var stagingDir string

	cmd := &cobra.Command{
		Use:   "retrivd",
		Short: "Line-delimited JSON bridge to pluggable text retrieval",
		Long: `retrivd reads one JSON command per line on stdin, drives a pluggable
text-retrieval backend (sparse BM25, dense embeddings, or hybrid fusion),
and writes one JSON response per line on stdout.

Diagnostics go to stderr as JSON; stdout carries only the RETRIV_READY
sentinel and responses. The process exits when stdin closes.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if stagingDir != "" {
				cfg.StagingDir = stagingDir
			}

			logging.SetupDefault(cfg.LogLevel)

			b := bridge.New(cfg, cmd.InOrStdin(), cmd.OutOrStdout())
			return b.Run(cmd.Context())
		},
	}

	cmd.SetVersionTemplate("retrivd version {{.Version}}\n")

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Minimum diagnostic level (debug, info, warn, error)")
	cmd.Flags().StringVar(&stagingDir, "staging-dir", "", "Directory for fallback staging artifacts")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	cmd.SetIn(os.Stdin)
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
