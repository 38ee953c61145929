// Package cmd — collect command.
// Discovers price-list documents linked from a vendor catalog and runs the
// extraction pipeline over each of them. Document-level concurrency is
// capped by the pipeline's global limit.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/Johnny-Taake/docpipe/core/fetch"
	"github.com/Johnny-Taake/docpipe/core/output"
	"github.com/Johnny-Taake/docpipe/crawl"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var collectCmd = &cobra.Command{
	Use:   "collect <catalog-url>",
	Short: "Discover and extract all documents linked from a catalog",
	Long: `Collect crawls the catalog within its own domain, gathers links to
price-list documents, and runs the extraction pipeline over each one.

Examples:
  docpipe collect https://vitrina.example.com/ --xlsx
  docpipe collect https://vitrina.example.com/catalog --languages eng,rus`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	registerPipelineFlags(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	catalogURL := args[0]
	parsed, err := url.Parse(catalogURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid catalog URL: %s (must include scheme, e.g. https://example.com)", catalogURL)
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

	fmt.Fprintf(os.Stdout, "Discovering documents from %s...\n", catalogURL)
	fetcher := fetch.New(time.Duration(cfg.Timeouts.FetchSec) * time.Second)
	refs, err := crawl.DiscoverDocuments(ctx, catalogURL, fetcher)
	if err != nil {
		return fmt.Errorf("discovering documents: %w", err)
	}
	if len(refs) == 0 {
		fmt.Fprintln(os.Stdout, "No documents found")
		return nil
	}
	fmt.Fprintf(os.Stdout, "Found %d documents to process\n", len(refs))

	pipe := buildPipeline(cfg)
	renderers := selectRenderers()

	var failed int
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.MaxDocuments)
	results := make([]*core.Document, len(refs))
	for i, ref := range refs {
		group.Go(func() error {
			doc, _ := pipe.Process(gctx, ref)
			results[i] = doc
			return nil
		})
	}
	_ = group.Wait()

	for i, doc := range results {
		if doc == nil {
			failed++
			continue
		}
		if err := writeResults(writer, doc, renderers); err != nil {
			fmt.Fprintf(os.Stderr, "  ✗ %s: write error: %v\n", refs[i], err)
			failed++
			continue
		}
		if doc.Status == core.StatusFailed {
			fmt.Fprintf(os.Stderr, "  ✗ %s: failed\n", refs[i])
			failed++
		} else {
			fmt.Fprintf(os.Stdout, "  ✓ %s: %s\n", refs[i], doc.Status)
		}
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d/%d documents failed\n", failed, len(refs))
	}
	return nil
}
