// Package render provides output renderers for finished documents.
// This file implements the Markdown report: a human-readable summary of
// what was recognized, flagged, and extracted.
package render

import (
	"fmt"
	"strings"

	"github.com/Johnny-Taake/docpipe/core"
)

// MarkdownRenderer writes a readable extraction report.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render builds the Markdown report.
func (r *MarkdownRenderer) Render(doc *core.Document) ([]byte, error) {
	var b strings.Builder

	title := doc.Title
	if title == "" {
		title = doc.Source
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Source: %s\n", doc.Source)
	fmt.Fprintf(&b, "- Status: %s\n", doc.Status)
	fmt.Fprintf(&b, "- Pages: %d\n", len(doc.Pages))
	fmt.Fprintf(&b, "- Confidence: %.2f\n", doc.Confidence)
	for stage, detail := range doc.Annotations {
		fmt.Fprintf(&b, "- Degraded (%s): %s\n", stage, detail)
	}
	b.WriteString("\n")

	for _, page := range doc.Pages {
		fmt.Fprintf(&b, "## Page %d\n\n", page.Index+1)
		switch page.Status {
		case core.PageRecognized:
			if page.LowConfidence {
				fmt.Fprintf(&b, "_Low confidence (%.2f), review recommended._\n\n", page.Confidence)
			}
			b.WriteString(page.Text)
			b.WriteString("\n\n")
		case core.PageFailed:
			fmt.Fprintf(&b, "_Recognition failed: %s_\n\n", page.Error)
		default:
			b.WriteString("_Not processed._\n\n")
		}
	}

	for _, table := range doc.Tables {
		fmt.Fprintf(&b, "## Table %d (%s)\n\n", table.TableIndex+1, table.Provenance)
		writeMarkdownTable(&b, table.Rows)
		b.WriteString("\n")
	}

	if doc.RenderedText != "" {
		b.WriteString("## Rendered page text\n\n")
		b.WriteString(doc.RenderedText)
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// writeMarkdownTable renders rows as a pipe table, first row as header.
func writeMarkdownTable(b *strings.Builder, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	for i, row := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(escapeCells(row), " | "))
		b.WriteString(" |\n")
		if i == 0 {
			b.WriteString("|")
			b.WriteString(strings.Repeat(" --- |", len(row)))
			b.WriteString("\n")
		}
	}
}

func escapeCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.ReplaceAll(cell, "|", "\\|")
	}
	return out
}
