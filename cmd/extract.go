// Package cmd — extract command.
// Runs the full pipeline on one document reference and writes the results
// in every selected output format.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/Johnny-Taake/docpipe/core/output"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <url-or-path>",
	Short: "Extract text and tables from one document",
	Long: `Extract runs the pipeline on a single document reference: a local PDF
path, a direct PDF URL, or a web page that is rendered by the headless
browser first.

Examples:
  docpipe extract ./pricelists/uminers_2024-06.pdf
  docpipe extract https://vitrina.example.com/prices.pdf --xlsx
  docpipe extract https://vitrina.example.com/catalog --languages eng,rus --markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	registerPipelineFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := args[0]
	if err := validateSource(source); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	writer, err := output.New(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe := buildPipeline(cfg)
	doc, procErr := pipe.Process(ctx, source)

	// The result is written even for failed documents: the status field
	// and per-page errors are what callers reprocess from.
	if err := writeResults(writer, doc, selectRenderers()); err != nil {
		return err
	}

	switch doc.Status {
	case core.StatusSuccess:
		fmt.Fprintf(os.Stdout, "✓ %s: %d pages recognized\n", source, len(doc.Pages))
	case core.StatusPartialSuccess:
		fmt.Fprintf(os.Stdout, "◐ %s: partial success (%d pages)\n", source, len(doc.Pages))
	default:
		fmt.Fprintf(os.Stderr, "✗ %s: %s\n", source, doc.Status)
	}
	if procErr != nil && !errors.Is(procErr, context.Canceled) {
		return fmt.Errorf("document failed: %w", procErr)
	}
	return nil
}

// validateSource accepts http(s) URLs and existing local files.
func validateSource(source string) error {
	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if u.Host == "" {
			return fmt.Errorf("invalid URL: %s", source)
		}
		return nil
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("source %s: %w", source, err)
	}
	return nil
}
