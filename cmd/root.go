// Package cmd implements the CLI commands for docpipe using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagVerbose bool

	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "docpipe",
	Short: "docpipe — extract text and tables from price-list documents",
	Long: `docpipe is a containerized extraction pipeline: it rasterizes PDFs and
browser-rendered pages, recognizes text per page (multi-language OCR), and
extracts tabular structure with an external tool.

Usage:
  docpipe extract <url-or-path> [flags]
  docpipe collect <catalog-url> [flags]`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; real deployments configure through the
		// environment directly.
		_ = godotenv.Load()
		if flagVerbose {
			logger.SetLevel(logrus.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
