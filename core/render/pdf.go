// Package render — PDF report renderer.
// Produces a printable report of the recognized text using gofpdf.
// Text is translated through the cp1251 descriptor so Cyrillic price-list
// content survives the core-font limitation.
package render

import (
	"bytes"
	"fmt"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer renders the extraction result as a PDF report.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render converts the document result into PDF bytes.
func (r *PDFRenderer) Render(doc *core.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1251")
	pdf.AddPage()

	title := doc.Title
	if title == "" {
		title = doc.Source
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, tr(fmt.Sprintf("Source: %s — status %s, confidence %.2f",
		doc.Source, doc.Status, doc.Confidence)), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, page := range doc.Pages {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, fmt.Sprintf("Page %d", page.Index+1), "", "L", false)
		pdf.Ln(1)

		pdf.SetFont("Helvetica", "", 10)
		switch page.Status {
		case core.PageRecognized:
			if page.LowConfidence {
				pdf.SetTextColor(180, 100, 0)
				pdf.MultiCell(0, 5, tr(fmt.Sprintf("Low confidence (%.2f)", page.Confidence)), "", "L", false)
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.MultiCell(0, 5, tr(page.Text), "", "L", false)
		case core.PageFailed:
			pdf.SetTextColor(180, 0, 0)
			pdf.MultiCell(0, 5, tr("Recognition failed: "+page.Error), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(3)
	}

	for _, table := range doc.Tables {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("Table %d (%s)", table.TableIndex+1, table.Provenance)), "", "L", false)
		pdf.Ln(1)
		pdf.SetFont("Courier", "", 8)
		for _, row := range table.Rows {
			line := ""
			for i, cell := range row {
				if i > 0 {
					line += " | "
				}
				line += cell
			}
			pdf.MultiCell(0, 4, tr(line), "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}
