// Package render — XLSX renderer.
// Writes the extracted tables into a workbook, one sheet per table, the way
// the downstream price-comparison tooling consumes them.
package render

import (
	"bytes"
	"fmt"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/xuri/excelize/v2"
)

// XLSXRenderer produces an Excel workbook from the structured records.
type XLSXRenderer struct{}

// NewXLSXRenderer creates an XLSXRenderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Render builds the workbook: a summary sheet plus one sheet per table.
func (r *XLSXRenderer) Render(doc *core.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("renaming summary sheet: %w", err)
	}
	summaryRows := [][]interface{}{
		{"Document", doc.ID},
		{"Source", doc.Source},
		{"Status", string(doc.Status)},
		{"Pages", len(doc.Pages)},
		{"Tables", len(doc.Tables)},
		{"Confidence", doc.Confidence},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("writing summary row %d: %w", i+1, err)
		}
	}

	for _, table := range doc.Tables {
		sheet := fmt.Sprintf("Table %d", table.TableIndex+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		for i, row := range table.Rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return nil, err
			}
			values := make([]interface{}, len(row))
			for j, v := range row {
				values[j] = v
			}
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return nil, fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for XLSX output.
func (r *XLSXRenderer) Extension() string {
	return ".xlsx"
}
