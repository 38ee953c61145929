// Shared pipeline construction for the extract and collect commands.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/Johnny-Taake/docpipe/core/browser"
	"github.com/Johnny-Taake/docpipe/core/config"
	"github.com/Johnny-Taake/docpipe/core/display"
	"github.com/Johnny-Taake/docpipe/core/fetch"
	"github.com/Johnny-Taake/docpipe/core/ocr"
	"github.com/Johnny-Taake/docpipe/core/output"
	"github.com/Johnny-Taake/docpipe/core/pipeline"
	"github.com/Johnny-Taake/docpipe/core/raster"
	"github.com/Johnny-Taake/docpipe/core/render"
	"github.com/Johnny-Taake/docpipe/core/tabular"
)

// Flag variables shared by extract and collect.
var (
	flagLanguages        []string
	flagDPI              int
	flagMaxParallelPages int
	flagTables           bool
	flagOutputDir        string

	flagJSON     bool
	flagMarkdown bool
	flagPDF      bool
	flagXLSX     bool
)

// registerPipelineFlags attaches the ingestion option flags to a command.
func registerPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagLanguages, "languages", nil, "Ordered OCR language codes (default eng,rus)")
	cmd.Flags().IntVar(&flagDPI, "dpi", 0, "Rasterization resolution (default 150)")
	cmd.Flags().IntVar(&flagMaxParallelPages, "max_parallel_pages", 0, "OCR worker pool size (default: CPU count)")
	cmd.Flags().BoolVar(&flagTables, "tables", true, "Run structured table extraction")
	cmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: current directory)")

	cmd.Flags().BoolVar(&flagJSON, "json", false, "Write the JSON result (default when no format is chosen)")
	cmd.Flags().BoolVar(&flagMarkdown, "markdown", false, "Write a Markdown report")
	cmd.Flags().BoolVar(&flagPDF, "pdf", false, "Write a PDF report")
	cmd.Flags().BoolVar(&flagXLSX, "xlsx", false, "Write extracted tables as an Excel workbook")
}

// loadConfig resolves the effective configuration: defaults, YAML file,
// environment, then command-line flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if len(flagLanguages) > 0 {
		cfg.Languages = flagLanguages
	}
	if flagDPI > 0 {
		cfg.DPI = flagDPI
	}
	if flagMaxParallelPages > 0 {
		cfg.MaxParallelPages = flagMaxParallelPages
	}
	cfg.ExtractTables = flagTables
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildPipeline wires the concrete stages into an orchestrator.
func buildPipeline(cfg config.Config) *pipeline.Pipeline {
	stages := pipeline.Stages{
		Fetcher: fetch.New(time.Duration(cfg.Timeouts.FetchSec) * time.Second),
		Arbiter: display.New(cfg.DisplayLock,
			time.Duration(cfg.Timeouts.DisplaySec)*time.Second, logger),
		Renderer: browser.New(cfg.ChromiumPath,
			time.Duration(cfg.Timeouts.RenderSec)*time.Second, logger),
		Rasterizer: raster.New(cfg.PdftoppmPath, logger),
		Recognizer: ocr.New(logger),
		Tables: tabular.New(cfg.JavaPath, cfg.TabulaJar,
			time.Duration(cfg.Timeouts.TablesSec)*time.Second, logger),
	}
	return pipeline.New(cfg, stages, logger)
}

// selectRenderers maps the format flags to result renderers.
// JSON is the canonical output and the default.
func selectRenderers() []core.ResultRenderer {
	var renderers []core.ResultRenderer
	if flagJSON || (!flagMarkdown && !flagPDF && !flagXLSX) {
		renderers = append(renderers, render.NewJSONRenderer())
	}
	if flagMarkdown {
		renderers = append(renderers, render.NewMarkdownRenderer())
	}
	if flagPDF {
		renderers = append(renderers, render.NewPDFRenderer())
	}
	if flagXLSX {
		renderers = append(renderers, render.NewXLSXRenderer())
	}
	return renderers
}

// writeResults renders and writes the document in every selected format.
func writeResults(writer *output.Writer, doc *core.Document, renderers []core.ResultRenderer) error {
	for _, r := range renderers {
		data, err := r.Render(doc)
		if err != nil {
			return fmt.Errorf("rendering %s result: %w", r.Extension(), err)
		}
		path, err := writer.Write(doc.Source, data, r.Extension())
		if err != nil {
			return err
		}
		logger.WithField("path", path).Info("result written")
	}
	return nil
}
